package workspace

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemoryWorkspace is an in-memory TextSource and FileEnumerator for tests.
// Files are keyed by slash-separated paths relative to Root.
type MemoryWorkspace struct {
	Root string

	mu       sync.Mutex
	files    map[string]string
	failures map[string]error
	opens    map[string]int
}

// NewMemoryWorkspace creates a workspace rooted at root holding files.
func NewMemoryWorkspace(root string, files map[string]string) *MemoryWorkspace {
	w := &MemoryWorkspace{
		Root:     root,
		files:    make(map[string]string),
		failures: make(map[string]error),
		opens:    make(map[string]int),
	}
	for rel, text := range files {
		w.files[rel] = text
	}
	return w
}

// Path returns the absolute handle for rel.
func (w *MemoryWorkspace) Path(rel string) string {
	return path.Join(w.Root, rel)
}

// SetFile creates or replaces a file.
func (w *MemoryWorkspace) SetFile(rel, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[rel] = text
}

// FailOpen makes Open of rel return err.
func (w *MemoryWorkspace) FailOpen(rel string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failures[rel] = err
}

// Opens returns how many times rel was opened.
func (w *MemoryWorkspace) Opens(rel string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opens[rel]
}

// Open implements TextSource.
func (w *MemoryWorkspace) Open(ctx context.Context, p string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rel := w.RelativePath(p)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.opens[rel]++
	if err, ok := w.failures[rel]; ok {
		return nil, err
	}
	text, ok := w.files[rel]
	if !ok {
		return nil, fmt.Errorf("failed to read %s: %w", p, os.ErrNotExist)
	}
	return NewDocument(p, text), nil
}

// FindFiles implements FileEnumerator with the same glob rules as Enumerator.
func (w *MemoryWorkspace) FindFiles(ctx context.Context, include, exclude []string) ([]string, error) {
	includes, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	excludes, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	rels := make([]string, 0, len(w.files))
	for rel := range w.files {
		rels = append(rels, rel)
	}
	w.mu.Unlock()
	sort.Strings(rels)

	var out []string
	for _, rel := range rels {
		if excludedByDir(rel, excludes) || matchesAnyPattern(rel, excludes) {
			continue
		}
		if matchesAnyPattern(rel, includes) {
			out = append(out, w.Path(rel))
		}
	}
	return out, nil
}

// RelativePath implements FileEnumerator.
func (w *MemoryWorkspace) RelativePath(p string) string {
	rel, ok := strings.CutPrefix(p, strings.TrimSuffix(w.Root, "/")+"/")
	if !ok {
		return p
	}
	return rel
}

func excludedByDir(rel string, excludes []compiledPattern) bool {
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if shouldIgnoreDir(strings.Join(parts[:i], "/"), excludes) {
			return true
		}
	}
	return false
}

// RecordingNavigator is a Navigator that records every call. Pick answers
// with Choice; a negative Choice dismisses the list.
type RecordingNavigator struct {
	Choice int

	mu           sync.Mutex
	Navigated    []Location
	Picks        [][]PickItem
	Placeholders []string
	Notices      []Notice
}

// Notice is one recorded notification.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Navigate implements Navigator.
func (n *RecordingNavigator) Navigate(ctx context.Context, loc Location) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Navigated = append(n.Navigated, loc)
	return nil
}

// Pick implements Navigator.
func (n *RecordingNavigator) Pick(ctx context.Context, placeholder string, items []PickItem) (int, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Picks = append(n.Picks, items)
	n.Placeholders = append(n.Placeholders, placeholder)
	if n.Choice < 0 || n.Choice >= len(items) {
		return -1, false, nil
	}
	return n.Choice, true, nil
}

// Notify implements Navigator.
func (n *RecordingNavigator) Notify(ctx context.Context, level NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notices = append(n.Notices, Notice{Level: level, Message: message})
}
