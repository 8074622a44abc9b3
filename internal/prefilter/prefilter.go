// Package prefilter narrows a workspace's implementation files down to the
// ones worth scanning with the expensive structural patterns.
package prefilter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mvp-joe/protolink/internal/batch"
	"github.com/mvp-joe/protolink/internal/cache"
	"github.com/mvp-joe/protolink/internal/workspace"
)

// Query describes what the caller is looking for.
type Query struct {
	Method string
	// InputType and OutputType are optional type hints, possibly
	// package-qualified.
	InputType  string
	OutputType string
}

// Candidate is a file that passed the keyword test, with its cached text.
type Candidate struct {
	Path string
	Text string
	// OptionalHits counts the optional keywords found in the text.
	OptionalHits int
}

// Options configures a Prefilter.
type Options struct {
	// Include and Exclude are the globs handed to the file enumerator.
	Include []string
	Exclude []string
	// Keyword is the implementation language's function keyword.
	Keyword string
	// BatchSize bounds concurrent file reads.
	BatchSize int
	Reporter  batch.Reporter
	Logger    *slog.Logger
}

// Prefilter selects candidate files with substring tests over cached text.
type Prefilter struct {
	files  workspace.FileEnumerator
	source workspace.TextSource
	cache  *cache.ContentCache
	opts   Options
	logger *slog.Logger
}

// New creates a Prefilter. The cache is owned by the caller so it can be
// shared across queries and invalidated by a watcher.
func New(files workspace.FileEnumerator, source workspace.TextSource, contentCache *cache.ContentCache, opts Options) *Prefilter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = batch.DefaultSize
	}
	return &Prefilter{
		files:  files,
		source: source,
		cache:  contentCache,
		opts:   opts,
		logger: logger,
	}
}

// BaseTypeName returns the last dotted segment of a type reference, with a
// leading "stream" qualifier removed: "stream pb.Chunk" -> "Chunk".
func BaseTypeName(typeName string) string {
	t := strings.TrimSpace(typeName)
	if rest, ok := strings.CutPrefix(t, "stream "); ok {
		t = strings.TrimSpace(rest)
	}
	if i := strings.LastIndex(t, "."); i >= 0 {
		t = t[i+1:]
	}
	return t
}

// Keywords returns the required and optional keyword sets for q.
func (p *Prefilter) Keywords(q Query) (required, optional []string) {
	required = []string{q.Method}
	if p.opts.Keyword != "" {
		required = append(required, p.opts.Keyword)
	}
	for _, t := range []string{q.InputType, q.OutputType} {
		if base := BaseTypeName(t); base != "" {
			optional = append(optional, base)
		}
	}
	return required, optional
}

// FindCandidates enumerates implementation files and keeps those containing
// every required keyword. Optional keywords never disqualify a file; they
// are only counted. Unreadable files are logged and skipped.
func (p *Prefilter) FindCandidates(ctx context.Context, q Query) ([]Candidate, error) {
	paths, err := p.files.FindFiles(ctx, p.opts.Include, p.opts.Exclude)
	if err != nil {
		return nil, err
	}
	return p.Filter(ctx, paths, q)
}

// Filter applies the keyword test to an explicit file list.
func (p *Prefilter) Filter(ctx context.Context, paths []string, q Query) ([]Candidate, error) {
	required, optional := p.Keywords(q)

	results, err := batch.Run(ctx, paths, p.opts.BatchSize, p.opts.Reporter, func(ctx context.Context, path string) (*Candidate, error) {
		text, err := p.Content(ctx, path)
		if err != nil {
			p.logger.Warn("failed to read candidate file", "path", path, "error", err)
			return nil, nil
		}
		if !containsAll(text, required) {
			return nil, nil
		}
		return &Candidate{Path: path, Text: text, OptionalHits: countContained(text, optional)}, nil
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(results))
	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	p.logger.Debug("prefilter complete",
		"files", len(paths),
		"candidates", len(candidates),
		"required", required,
		"optional", optional)

	return candidates, nil
}

// Content returns the text of path through the content cache.
func (p *Prefilter) Content(ctx context.Context, path string) (string, error) {
	return p.cache.GetOrLoad(ctx, path, func(ctx context.Context, key string) (string, error) {
		doc, err := p.source.Open(ctx, key)
		if err != nil {
			return "", err
		}
		return doc.Text(), nil
	})
}

func containsAll(text string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(text, k) {
			return false
		}
	}
	return true
}

func countContained(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}
