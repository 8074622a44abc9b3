// Package protoparse extracts services and RPC methods from .proto files.
//
// It is a line-oriented regex scanner, not a grammar: comments, string
// literals and RPC signatures spanning several lines are not recognized.
package protoparse

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/protolink/internal/workspace"
)

var (
	serviceRe = regexp.MustCompile(`^service\s+(\w+)\s*\{`)
	rpcRe     = regexp.MustCompile(`^rpc\s+(\w+)\s*\(([^)]*)\)\s*returns\s*\(([^)]*)\)`)
)

// Service is one `service Name { ... }` block.
type Service struct {
	Name    string
	Methods []Method
	// Range spans from the declaration line to the closing brace line.
	Range workspace.Range
}

// Method is one single-line `rpc Name(In) returns (Out)` declaration.
type Method struct {
	Name    string
	Service string
	// InputType and OutputType are the raw trimmed text between the
	// parentheses, e.g. "pb.HelloReq" or "stream Chunk".
	InputType  string
	OutputType string
	Line       int
	Column     int
	// Range is the method identifier's word range, or the full line.
	Range workspace.Range
}

// ParseText parses proto source that has no backing file.
func ParseText(text string) []Service {
	return Parse(workspace.NewDocument("", text))
}

// Parse scans doc for service blocks. Lines that do not match an expected
// shape are skipped; malformed input never produces an error.
func Parse(doc *workspace.Document) []Service {
	var (
		services   []Service
		current    *Service
		braceCount int
		startLine  int
	)

	closeService := func(endLine int) {
		current.Range = workspace.Range{
			Start: workspace.Position{Line: startLine},
			End:   workspace.Position{Line: endLine, Character: len(doc.LineAt(endLine))},
		}
		services = append(services, *current)
		current = nil
	}

	for i, line := range doc.Lines() {
		trimmed := strings.TrimSpace(line)

		if m := serviceRe.FindStringSubmatch(trimmed); m != nil {
			if current != nil {
				services = append(services, *current)
			}
			current = &Service{Name: m[1], Range: doc.FullLineRange(i)}
			startLine = i
			braceCount = countBraces(trimmed)

			// A one-line block: `service A { rpc X(Y) returns (Z); }`
			rest := strings.TrimSpace(trimmed[len(m[0]):])
			if method, ok := parseRPC(doc, i, line, rest, current.Name); ok {
				current.Methods = append(current.Methods, method)
			}
			if braceCount <= 0 {
				closeService(i)
			}
			continue
		}

		if current == nil {
			continue
		}

		braceCount += countBraces(line)

		if method, ok := parseRPC(doc, i, line, trimmed, current.Name); ok {
			current.Methods = append(current.Methods, method)
		}

		if braceCount <= 0 {
			closeService(i)
		}
	}

	// Unterminated block at EOF
	if current != nil {
		services = append(services, *current)
	}

	return services
}

// MethodAt returns the method whose range contains pos.
func MethodAt(services []Service, pos workspace.Position) (Method, bool) {
	for _, svc := range services {
		for _, m := range svc.Methods {
			if m.Range.Contains(pos) {
				return m, true
			}
		}
	}
	return Method{}, false
}

// MethodOnLine returns the first method declared on line.
func MethodOnLine(services []Service, line int) (Method, bool) {
	for _, svc := range services {
		for _, m := range svc.Methods {
			if m.Line == line {
				return m, true
			}
		}
	}
	return Method{}, false
}

func parseRPC(doc *workspace.Document, lineNo int, line, candidate, service string) (Method, bool) {
	m := rpcRe.FindStringSubmatch(candidate)
	if m == nil {
		return Method{}, false
	}
	name := m[1]

	// candidate is a substring of line starting with "rpc"
	col := 0
	if base := strings.Index(line, candidate); base >= 0 {
		col = base + len("rpc") + strings.Index(candidate[len("rpc"):], name)
	}
	pos := workspace.Position{Line: lineNo, Character: col}

	return Method{
		Name:       name,
		Service:    service,
		InputType:  strings.TrimSpace(m[2]),
		OutputType: strings.TrimSpace(m[3]),
		Line:       lineNo,
		Column:     col,
		Range:      doc.WordRangeOrLine(pos),
	}, true
}

func countBraces(s string) int {
	return strings.Count(s, "{") - strings.Count(s, "}")
}
