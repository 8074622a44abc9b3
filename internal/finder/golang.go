package finder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvp-joe/protolink/internal/batch"
	"github.com/mvp-joe/protolink/internal/matcher"
	"github.com/mvp-joe/protolink/internal/prefilter"
	"github.com/mvp-joe/protolink/internal/workspace"
)

// MatchPolicy decides how matches from the pattern ladder are combined.
type MatchPolicy string

const (
	// PolicyUnion keeps every match of every tier.
	PolicyUnion MatchPolicy = "union"
	// PolicyPrecision keeps only the most specific tier that matched anywhere.
	PolicyPrecision MatchPolicy = "precision"
)

// ParseMatchPolicy validates a policy name. Empty selects PolicyUnion.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(s) {
	case "", PolicyUnion:
		return PolicyUnion, nil
	case PolicyPrecision:
		return PolicyPrecision, nil
	default:
		return "", fmt.Errorf("unknown match policy %q", s)
	}
}

// GoOptions configures a GoFinder.
type GoOptions struct {
	Policy    MatchPolicy
	BatchSize int
	Logger    *slog.Logger
}

// GoFinder finds Go methods implementing an RPC.
type GoFinder struct {
	prefilter *prefilter.Prefilter
	policy    MatchPolicy
	batchSize int
	logger    *slog.Logger
}

// NewGoFinder creates the Go finder. pf must be restricted to Go sources.
func NewGoFinder(pf *prefilter.Prefilter, opts GoOptions) *GoFinder {
	if opts.Policy == "" {
		opts.Policy = PolicyUnion
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = batch.DefaultSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &GoFinder{
		prefilter: pf,
		policy:    opts.Policy,
		batchSize: opts.BatchSize,
		logger:    opts.Logger,
	}
}

// Language implements Finder.
func (f *GoFinder) Language() string { return DefaultLanguage }

type fileMatches struct {
	doc     *workspace.Document
	matches []matcher.Match
}

// FindImplementations implements Finder. No candidates or no matches yield
// an empty result, never an error.
func (f *GoFinder) FindImplementations(ctx context.Context, q ImplementationQuery) ([]workspace.Location, error) {
	candidates, err := f.prefilter.FindCandidates(ctx, prefilter.Query{
		Method:     q.Method,
		InputType:  q.InputType,
		OutputType: q.OutputType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find candidate files: %w", err)
	}
	if len(candidates) == 0 {
		f.logger.Info("no candidate files", "service", q.Service, "method", q.Method)
		return nil, nil
	}

	patterns := matcher.BuildPatterns(q.Method, prefilter.BaseTypeName(q.InputType), prefilter.BaseTypeName(q.OutputType))

	perFile, err := batch.Run(ctx, candidates, f.batchSize, nil, func(ctx context.Context, c prefilter.Candidate) (fileMatches, error) {
		return fileMatches{
			doc:     workspace.NewDocument(c.Path, c.Text),
			matches: matcher.Apply(patterns, c.Text),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if f.policy == PolicyPrecision {
		perFile = keepBestTier(perFile)
	}

	var locations []workspace.Location
	for _, fm := range perFile {
		locations = append(locations, matcher.Locate(fm.doc, fm.matches)...)
	}
	locations = Dedupe(locations)

	f.logger.Info("found implementations",
		"service", q.Service,
		"method", q.Method,
		"candidates", len(candidates),
		"locations", len(locations),
		"policy", string(f.policy))

	return locations, nil
}

// keepBestTier keeps the matches of the most specific tier seen in any file.
func keepBestTier(perFile []fileMatches) []fileMatches {
	var all []matcher.Match
	for _, fm := range perFile {
		all = append(all, fm.matches...)
	}
	top := matcher.BestTier(all)
	if len(top) == 0 {
		return perFile
	}
	best := top[0].Tier

	out := make([]fileMatches, len(perFile))
	for i, fm := range perFile {
		kept := make([]matcher.Match, 0, len(fm.matches))
		for _, m := range fm.matches {
			if m.Tier == best {
				kept = append(kept, m)
			}
		}
		out[i] = fileMatches{doc: fm.doc, matches: kept}
	}
	return out
}
