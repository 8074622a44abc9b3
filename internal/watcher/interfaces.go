// Package watcher reports debounced source file changes so cached file
// contents can be dropped while a long-running server is up.
package watcher

import "context"

// FileWatcher monitors a workspace for changes to source files.
type FileWatcher interface {
	// Start begins watching, calling callback with debounced batches of
	// changed absolute paths.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the watcher and releases its resources.
	Stop() error
}

// Invalidator drops cached content for a file.
type Invalidator interface {
	Invalidate(key string)
}

// InvalidateOnChange returns a callback that invalidates every changed file.
func InvalidateOnChange(inv Invalidator) func(files []string) {
	return func(files []string) {
		for _, f := range files {
			inv.Invalidate(f)
		}
	}
}
