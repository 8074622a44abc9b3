// Package matcher builds regular expressions that locate Go implementations
// of an RPC method and applies them to file text.
package matcher

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/protolink/internal/workspace"
)

// Tier orders patterns from most to least specific.
type Tier int

const (
	// TierBothTypes requires the input and output types.
	TierBothTypes Tier = iota + 1
	// TierInputType requires the input type among the parameters.
	TierInputType
	// TierOutputType requires the output type in parameters or results.
	TierOutputType
	// TierNameOnly matches by method name and receiver shape alone.
	TierNameOnly
)

func (t Tier) String() string {
	switch t {
	case TierBothTypes:
		return "both-types"
	case TierInputType:
		return "input-type"
	case TierOutputType:
		return "output-type"
	case TierNameOnly:
		return "name-only"
	default:
		return "unknown"
	}
}

// Pattern is one compiled structural pattern.
type Pattern struct {
	Name string
	Tier Tier
	re   *regexp.Regexp
}

// String returns the regular expression source.
func (p Pattern) String() string {
	return p.re.String()
}

// Match is a pattern hit at a byte offset of the scanned text.
type Match struct {
	Offset  int
	Pattern string
	Tier    Tier
}

const (
	// receiver: (s *T), (s T), (*T) or (T)
	receiverExpr = `\(\s*(?:\w+\s+)?\*?\s*\w+\s*\)`
	// a parameter list without nested parentheses
	anyParams = `\([^)]*\)`
)

// typeRef matches a base type name with an optional pointer sigil and dotted
// package qualifier, case-insensitively: HelloReq, *HelloReq, *pb.HelloReq.
func typeRef(base string) string {
	return `\*?\s*\b(?:\w+\.)*(?i:` + regexp.QuoteMeta(base) + `)\b`
}

func head(method string) string {
	return `(?m)^[ \t]*func\s+` + receiverExpr + `\s*` + regexp.QuoteMeta(method) + `\s*`
}

func paramsWith(types ...string) string {
	var b strings.Builder
	b.WriteString(`\([^)]*?`)
	for i, t := range types {
		if i > 0 {
			b.WriteString(`[^)]*?`)
		}
		b.WriteString(typeRef(t))
	}
	b.WriteString(`[^)]*\)`)
	return b.String()
}

// resultsWith matches a parenthesized result list or a single bare result.
func resultsWith(t string) string {
	return `\s*(?:\([^)]*?` + typeRef(t) + `[^)]*\)|` + typeRef(t) + `)`
}

// BuildPatterns returns the ladder of patterns for method, most specific
// first. inputType and outputType are base type names and may be empty.
//
//  1. both types: input in params with output in results, or both in params
//  2. input type in params
//  3. output type in params, or output type in results
//  4. method name only
//
// Every tier implied by the known types is included, ending with tier 4, so
// callers can either union all matches or stop at the first tier that hits.
func BuildPatterns(method, inputType, outputType string) []Pattern {
	h := head(method)
	var patterns []Pattern

	add := func(name string, tier Tier, expr string) {
		patterns = append(patterns, Pattern{Name: name, Tier: tier, re: regexp.MustCompile(expr)})
	}

	if inputType != "" && outputType != "" {
		add("input-param-output-result", TierBothTypes, h+paramsWith(inputType)+resultsWith(outputType))
		add("input-output-params", TierBothTypes, h+paramsWith(inputType, outputType))
	}
	if inputType != "" {
		add("input-param", TierInputType, h+paramsWith(inputType))
	}
	if outputType != "" {
		add("output-param", TierOutputType, h+paramsWith(outputType))
		add("output-result", TierOutputType, h+anyParams+resultsWith(outputType))
	}
	add("name-only", TierNameOnly, h+`\(`)

	return patterns
}

// Apply runs every pattern over text and returns all matches in pattern
// order, then text order. Matches from different patterns may share a line.
func Apply(patterns []Pattern, text string) []Match {
	var matches []Match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			matches = append(matches, Match{Offset: loc[0], Pattern: p.Name, Tier: p.Tier})
		}
	}
	return matches
}

// BestTier keeps only the matches of the most specific tier present.
func BestTier(matches []Match) []Match {
	if len(matches) == 0 {
		return matches
	}
	best := matches[0].Tier
	for _, m := range matches[1:] {
		if m.Tier < best {
			best = m.Tier
		}
	}
	kept := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Tier == best {
			kept = append(kept, m)
		}
	}
	return kept
}

// Locate converts matches into full-line locations of doc. Leading
// whitespace consumed by a pattern never moves a match off its line because
// patterns are anchored at line start.
func Locate(doc *workspace.Document, matches []Match) []workspace.Location {
	locations := make([]workspace.Location, 0, len(matches))
	for _, m := range matches {
		pos := doc.PositionAt(m.Offset)
		locations = append(locations, workspace.Location{
			Path:  doc.Path(),
			Range: doc.FullLineRange(pos.Line),
		})
	}
	return locations
}
