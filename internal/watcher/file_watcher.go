package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a FileWatcher.
type Options struct {
	// Extensions limits reported files, e.g. ".go" and ".proto".
	Extensions []string
	// Debounce is the quiet period; zero selects DefaultDebounce.
	Debounce time.Duration
	// SkipDir reports whether a directory, given relative to the root with
	// forward slashes, should not be watched.
	SkipDir func(relDir string) bool
	Logger  *slog.Logger
}

// fileWatcher implements FileWatcher.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	root          string
	extensions    map[string]bool
	debounceTime  time.Duration
	skipDir       func(relDir string) bool
	logger        *slog.Logger
	callback      func(files []string)
	ctx           context.Context
	cancel        context.CancelFunc
	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	stopOnce      sync.Once
	doneCh        chan struct{}
}

// NewFileWatcher watches root recursively.
func NewFileWatcher(root string, opts Options) (FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	extMap := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extMap[ext] = true
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SkipDir == nil {
		opts.SkipDir = func(string) bool { return false }
	}

	fw := &fileWatcher{
		watcher:      w,
		root:         root,
		extensions:   extMap,
		debounceTime: opts.Debounce,
		skipDir:      opts.SkipDir,
		logger:       opts.Logger,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}

	if err := fw.addDirectoriesRecursively(root); err != nil {
		w.Close()
		return nil, err
	}

	return fw, nil
}

// Start begins watching. callback runs on the watcher goroutine.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	flushCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						fw.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(flushCh)

		case <-flushCh:
			fw.flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)
		}
	}
}

// flush hands the accumulated changes to the callback.
func (fw *fileWatcher) flush() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	fw.logger.Debug("files changed", "count", len(files))
	fw.callback(files)
}

func (fw *fileWatcher) resetDebounceTimer(flushCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case flushCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps content-affecting events on watched extensions.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return fw.extensions[filepath.Ext(event.Name)]
}

func (fw *fileWatcher) addDirectoriesRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			fw.logger.Warn("error accessing path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		if rel, err := filepath.Rel(fw.root, path); err == nil && rel != "." {
			if fw.skipDir(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}

		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}
