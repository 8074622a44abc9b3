package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files at the root for patterns starting with "**/".
	rootGlob glob.Glob
}

// Enumerator walks a workspace root and filters files with glob patterns.
type Enumerator struct {
	rootDir string
}

// NewEnumerator creates an enumerator rooted at rootDir.
func NewEnumerator(rootDir string) (*Enumerator, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root %s: %w", rootDir, err)
	}
	return &Enumerator{rootDir: abs}, nil
}

// Root returns the absolute workspace root.
func (e *Enumerator) Root() string { return e.rootDir }

// RelativePath implements FileEnumerator.
func (e *Enumerator) RelativePath(path string) string {
	rel, err := filepath.Rel(e.rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// FindFiles implements FileEnumerator. Ignored directories are pruned rather
// than walked.
func (e *Enumerator) FindFiles(ctx context.Context, include, exclude []string) ([]string, error) {
	includes, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	excludes, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}

	files := []string{}
	err = filepath.WalkDir(e.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == e.rootDir {
				return err
			}
			// Unreadable subtrees contribute nothing
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == e.rootDir {
			return nil
		}

		relPath, err := filepath.Rel(e.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if shouldIgnoreDir(relPath, excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAnyPattern(relPath, excludes) {
			return nil
		}
		if matchesAnyPattern(relPath, includes) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", e.rootDir, err)
	}
	return files, nil
}

// CompileGlobs validates glob patterns with the same rules FindFiles uses.
func CompileGlobs(patterns []string) error {
	_, err := compilePatterns(patterns)
	return err
}

// DirFilter returns a predicate reporting whether a slash-separated directory
// path relative to the root is pruned by the exclude globs.
func DirFilter(exclude []string) (func(relDir string) bool, error) {
	excludes, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}
	return func(relDir string) bool {
		return shouldIgnoreDir(relDir, excludes)
	}, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if rg, err := glob.Compile(simplified, '/'); err == nil {
				cp.rootGlob = rg
			}
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// shouldIgnoreDir checks a directory against ignore patterns. "vendor" must
// match a pattern like "vendor/**", so the directory is also tried with a
// "/**" suffix.
func shouldIgnoreDir(relPath string, patterns []compiledPattern) bool {
	if matchesAnyPattern(relPath, patterns) {
		return true
	}
	return matchesAnyPattern(relPath+"/**", patterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
// A root-level path also matches "**/x" patterns, so "**/*.proto" matches
// both "api.proto" and "api/v1/api.proto".
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	atRoot := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if atRoot && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
