package finder

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mvp-joe/protolink/internal/batch"
	"github.com/mvp-joe/protolink/internal/cache"
	"github.com/mvp-joe/protolink/internal/protoparse"
	"github.com/mvp-joe/protolink/internal/workspace"
)

// receiverSuffixes are stripped from receiver types, longest first.
var receiverSuffixes = []string{"SrvImpl", "Server", "Service", "Impl"}

// DefinitionOptions configures a DefinitionFinder.
type DefinitionOptions struct {
	Include   []string
	Exclude   []string
	BatchSize int
	Reporter  batch.Reporter
	Logger    *slog.Logger
}

// DefinitionMatch is a proto method whose name matched the query.
type DefinitionMatch struct {
	Location workspace.Location
	Method   protoparse.Method
	// ServiceMatch reports whether the service name agreed with a name
	// inferred from the receiver type. It is informational only.
	ServiceMatch bool
}

// DefinitionFinder finds proto RPC declarations for a Go method.
type DefinitionFinder struct {
	files  workspace.FileEnumerator
	source workspace.TextSource
	cache  *cache.ContentCache
	opts   DefinitionOptions
	logger *slog.Logger
}

// NewDefinitionFinder creates a reverse finder reading proto files through
// contentCache.
func NewDefinitionFinder(files workspace.FileEnumerator, source workspace.TextSource, contentCache *cache.ContentCache, opts DefinitionOptions) *DefinitionFinder {
	if len(opts.Include) == 0 {
		opts.Include = []string{"**/*.proto"}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = batch.DefaultSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DefinitionFinder{
		files:  files,
		source: source,
		cache:  contentCache,
		opts:   opts,
		logger: logger,
	}
}

// CandidateServiceNames infers service names from a Go receiver type:
// convention suffixes are stripped until none applies and the remainder is
// title-cased, followed by the raw receiver type.
func CandidateServiceNames(receiverType string) []string {
	receiverType = strings.TrimPrefix(strings.TrimSpace(receiverType), "*")
	if receiverType == "" {
		return nil
	}

	stripped := receiverType
	for changed := true; changed; {
		changed = false
		for _, suffix := range receiverSuffixes {
			if s, ok := strings.CutSuffix(stripped, suffix); ok {
				stripped = s
				changed = true
				break
			}
		}
	}

	var names []string
	if stripped != "" {
		r, size := utf8.DecodeRuneInString(stripped)
		names = append(names, string(unicode.ToUpper(r))+stripped[size:])
	}
	return append(names, receiverType)
}

// serviceMatches is a case-insensitive containment test in either direction.
func serviceMatches(service string, candidates []string) bool {
	s := strings.ToLower(service)
	for _, c := range candidates {
		c = strings.ToLower(c)
		if strings.Contains(s, c) || strings.Contains(c, s) {
			return true
		}
	}
	return false
}

// FindDefinitions returns the locations of every RPC named method.
func (f *DefinitionFinder) FindDefinitions(ctx context.Context, method, receiverType string) ([]workspace.Location, error) {
	matches, err := f.MatchDefinitions(ctx, method, receiverType)
	if err != nil {
		return nil, err
	}
	locations := make([]workspace.Location, len(matches))
	for i, m := range matches {
		locations[i] = m.Location
	}
	return locations, nil
}

// MatchDefinitions returns every RPC whose name equals method exactly, in
// file enumeration order then declaration order. The receiver type only
// annotates matches with ServiceMatch; it never removes or reorders them.
func (f *DefinitionFinder) MatchDefinitions(ctx context.Context, method, receiverType string) ([]DefinitionMatch, error) {
	paths, err := f.files.FindFiles(ctx, f.opts.Include, f.opts.Exclude)
	if err != nil {
		return nil, err
	}

	candidates := CandidateServiceNames(receiverType)

	perFile, err := batch.Run(ctx, paths, f.opts.BatchSize, f.opts.Reporter, func(ctx context.Context, path string) ([]DefinitionMatch, error) {
		text, err := f.cache.GetOrLoad(ctx, path, func(ctx context.Context, key string) (string, error) {
			doc, err := f.source.Open(ctx, key)
			if err != nil {
				return "", err
			}
			return doc.Text(), nil
		})
		if err != nil {
			f.logger.Warn("failed to read proto file", "path", path, "error", err)
			return nil, nil
		}

		var out []DefinitionMatch
		for _, svc := range protoparse.Parse(workspace.NewDocument(path, text)) {
			for _, m := range svc.Methods {
				if m.Name != method {
					continue
				}
				out = append(out, DefinitionMatch{
					Location:     workspace.Location{Path: path, Range: m.Range},
					Method:       m,
					ServiceMatch: len(candidates) > 0 && serviceMatches(svc.Name, candidates),
				})
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	var matches []DefinitionMatch
	for _, ms := range perFile {
		matches = append(matches, ms...)
	}

	if len(candidates) > 0 {
		for _, m := range matches {
			f.logger.Debug("service name check",
				"service", m.Method.Service,
				"candidates", candidates,
				"match", m.ServiceMatch)
		}
	}
	f.logger.Info("found proto definitions", "method", method, "count", len(matches))

	return matches, nil
}
