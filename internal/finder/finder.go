// Package finder resolves RPC methods to their Go implementations and Go
// methods back to their proto definitions.
package finder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mvp-joe/protolink/internal/workspace"
)

// DefaultLanguage selects the built-in Go finder.
const DefaultLanguage = "go"

// ErrUnsupportedLanguage is returned by Registry.Lookup for unknown keys.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ImplementationQuery identifies one RPC method of a definition file.
type ImplementationQuery struct {
	Service    string
	Method     string
	InputType  string
	OutputType string
	// DefinitionPath is the proto file the query originated from. Finders
	// may ignore it.
	DefinitionPath string
}

// Finder locates implementations of an RPC method in one language.
type Finder interface {
	Language() string
	FindImplementations(ctx context.Context, q ImplementationQuery) ([]workspace.Location, error)
}

// Registry maps language keys to finders.
type Registry struct {
	mu      sync.RWMutex
	finders map[string]Finder
}

// NewRegistry creates a registry holding the given finders.
func NewRegistry(finders ...Finder) *Registry {
	r := &Registry{finders: make(map[string]Finder)}
	for _, f := range finders {
		r.Register(f)
	}
	return r
}

// Register adds f under its language key, replacing any previous finder.
func (r *Registry) Register(f Finder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finders[f.Language()] = f
}

// Lookup returns the finder for language. An empty key selects
// DefaultLanguage.
func (r *Registry) Lookup(language string) (Finder, error) {
	if language == "" {
		language = DefaultLanguage
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.finders[language]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	return f, nil
}

// Languages returns the registered keys in sorted order.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.finders))
	for k := range r.finders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dedupe drops locations sharing a file and start line with an earlier one.
// Order is preserved and the first occurrence wins.
func Dedupe(locations []workspace.Location) []workspace.Location {
	type key struct {
		path string
		line int
	}
	seen := make(map[key]struct{}, len(locations))
	out := make([]workspace.Location, 0, len(locations))
	for _, loc := range locations {
		k := key{loc.Path, loc.Range.Start.Line}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, loc)
	}
	return out
}
