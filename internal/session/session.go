// Package session wires the resolution engine to a workspace directory and a
// loaded configuration. The CLI and the MCP server both work through it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mvp-joe/protolink/internal/batch"
	"github.com/mvp-joe/protolink/internal/cache"
	"github.com/mvp-joe/protolink/internal/config"
	"github.com/mvp-joe/protolink/internal/finder"
	"github.com/mvp-joe/protolink/internal/goparse"
	"github.com/mvp-joe/protolink/internal/jump"
	"github.com/mvp-joe/protolink/internal/lens"
	"github.com/mvp-joe/protolink/internal/prefilter"
	"github.com/mvp-joe/protolink/internal/protoparse"
	"github.com/mvp-joe/protolink/internal/watcher"
	"github.com/mvp-joe/protolink/internal/workspace"
)

// ErrNoMethod is returned when a file position holds no declaration.
var ErrNoMethod = errors.New("no method declared on line")

// ErrUnsupportedFile is returned for files that are neither proto nor Go.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Options configures optional collaborators.
type Options struct {
	// Reporter receives batch progress of file scans.
	Reporter batch.Reporter
	Logger   *slog.Logger
}

// Session holds the long-lived components for one workspace root.
type Session struct {
	Root        string
	Config      *config.Config
	Cache       *cache.ContentCache
	Files       *workspace.Enumerator
	Source      workspace.TextSource
	Registry    *finder.Registry
	Definitions *finder.DefinitionFinder

	logger *slog.Logger
}

// New builds a session rooted at root.
func New(root string, cfg *config.Config, opts Options) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	policy, err := finder.ParseMatchPolicy(cfg.Search.MatchPolicy)
	if err != nil {
		return nil, err
	}

	files, err := workspace.NewEnumerator(root)
	if err != nil {
		return nil, err
	}
	source := workspace.NewFileSource()
	contentCache := cache.NewContentCache(
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithCapacity(cfg.Cache.Capacity),
	)

	pf := prefilter.New(files, source, contentCache, prefilter.Options{
		Include:   cfg.Paths.Go,
		Exclude:   cfg.Paths.Ignore,
		Keyword:   "func",
		BatchSize: cfg.Search.BatchSize,
		Reporter:  opts.Reporter,
		Logger:    logger.With("component", "prefilter"),
	})
	goFinder := finder.NewGoFinder(pf, finder.GoOptions{
		Policy:    policy,
		BatchSize: cfg.Search.BatchSize,
		Logger:    logger.With("component", "finder"),
	})
	definitions := finder.NewDefinitionFinder(files, source, contentCache, finder.DefinitionOptions{
		Include:   cfg.Paths.Proto,
		Exclude:   cfg.Paths.Ignore,
		BatchSize: cfg.Search.BatchSize,
		Reporter:  opts.Reporter,
		Logger:    logger.With("component", "definitions"),
	})

	return &Session{
		Root:        files.Root(),
		Config:      cfg,
		Cache:       contentCache,
		Files:       files,
		Source:      source,
		Registry:    finder.NewRegistry(goFinder),
		Definitions: definitions,
		logger:      logger,
	}, nil
}

// Actions returns jump actions reporting through nav.
func (s *Session) Actions(nav workspace.Navigator) *jump.Actions {
	return jump.New(s.Registry, s.Definitions, s.Files, nav, s.logger.With("component", "jump"))
}

// Path resolves p against the workspace root.
func (s *Session) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.Root, p)
}

// Open reads a workspace file, bypassing the cache so callers see the
// current text.
func (s *Session) Open(ctx context.Context, p string) (*workspace.Document, error) {
	return s.Source.Open(ctx, s.Path(p))
}

// Annotations returns the inline annotations for a proto or Go file.
func (s *Session) Annotations(ctx context.Context, p string) ([]lens.Annotation, error) {
	provider, ok := lens.ForPath(p, s.logger.With("component", "lens"))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, p)
	}
	doc, err := s.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	return provider.Provide(ctx, doc), nil
}

// ImplementationAt returns the jump arguments for the RPC declared on the
// zero-based line of a proto file.
func (s *Session) ImplementationAt(ctx context.Context, p string, line int) (jump.ImplementationArgs, error) {
	doc, err := s.Open(ctx, p)
	if err != nil {
		return jump.ImplementationArgs{}, err
	}
	m, ok := protoparse.MethodOnLine(protoparse.Parse(doc), line)
	if !ok {
		return jump.ImplementationArgs{}, fmt.Errorf("%w: %s:%d", ErrNoMethod, p, line+1)
	}
	return jump.ImplementationArgs{
		Service:        m.Service,
		Method:         m.Name,
		InputType:      m.InputType,
		OutputType:     m.OutputType,
		DefinitionPath: doc.Path(),
		Language:       s.Config.Search.Language,
	}, nil
}

// DefinitionAt returns the jump arguments for the Go method declared on the
// zero-based line of a Go file.
func (s *Session) DefinitionAt(ctx context.Context, p string, line int) (jump.DefinitionArgs, error) {
	doc, err := s.Open(ctx, p)
	if err != nil {
		return jump.DefinitionArgs{}, err
	}
	m, ok := goparse.MethodOnLine(goparse.Parse(doc), line)
	if !ok {
		return jump.DefinitionArgs{}, fmt.Errorf("%w: %s:%d", ErrNoMethod, p, line+1)
	}
	return jump.DefinitionArgs{
		Method:             m.Name,
		ReceiverType:       m.ReceiverType,
		ImplementationPath: doc.Path(),
	}, nil
}

// NewWatcher creates a watcher over the workspace that reports proto and Go
// changes, skipping ignored directories.
func (s *Session) NewWatcher() (watcher.FileWatcher, error) {
	skip, err := workspace.DirFilter(s.Config.Paths.Ignore)
	if err != nil {
		return nil, err
	}
	return watcher.NewFileWatcher(s.Root, watcher.Options{
		Extensions: s.Config.WatchExtensions(),
		Debounce:   s.Config.Watch.Debounce,
		SkipDir:    skip,
		Logger:     s.logger.With("component", "watcher"),
	})
}

// Watch starts cache invalidation on file changes. The returned stop
// function is safe to call once the context is done.
func (s *Session) Watch(ctx context.Context) (stop func() error, err error) {
	w, err := s.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx, watcher.InvalidateOnChange(s.Cache)); err != nil {
		_ = w.Stop()
		return nil, err
	}
	s.logger.Info("watching workspace", "root", s.Root)
	return w.Stop, nil
}
