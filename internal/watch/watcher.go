// internal/watch/watcher.go
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 250 * time.Millisecond

// gitFiles are the entries inside .git whose changes alter status output.
var gitFiles = map[string]bool{
	"index": true,
	"HEAD":  true,
}

// Watcher calls OnChange once per burst of filesystem activity under a work
// tree, including index and HEAD updates made by other git clients.
type Watcher struct {
	root       string
	debounce   time.Duration
	onChange   func()
	fsw        *fsnotify.Watcher
	ignoreDirs map[string]bool
	logger     *zap.Logger

	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
	inflight sync.WaitGroup
}

func New(root string, debounce time.Duration, onChange func(), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		root:     abs,
		debounce: debounce,
		onChange: onChange,
		fsw:      fsw,
		ignoreDirs: map[string]bool{
			".git":         true,
			"node_modules": true,
		},
		logger: logger,
	}

	if err := w.addTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}
	// .git itself is watched flat for index and HEAD rewrites.
	if err := fsw.Add(filepath.Join(abs, ".git")); err != nil {
		w.logger.Warn("not watching .git", zap.String("root", abs), zap.Error(err))
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignoreDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("adding directory to watcher: %w", err)
		}
		return nil
	})
}

// Run dispatches events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		w.logger.Error("getting relative path", zap.Error(err))
		return
	}
	if w.ShouldIgnore(rel) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("adding new directory to watcher", zap.Error(err))
			}
		}
	}

	w.logger.Debug("change detected", zap.String("path", rel), zap.String("op", event.Op.String()))
	w.schedule()
}

// ShouldIgnore reports whether a path relative to the root is noise.
func (w *Watcher) ShouldIgnore(rel string) bool {
	if rel == "" || rel == "." {
		return true
	}

	parts := strings.Split(rel, string(filepath.Separator))
	if parts[0] == ".git" {
		return len(parts) != 2 || !gitFiles[parts[1]]
	}
	for _, part := range parts {
		if w.ignoreDirs[part] {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	if w.onChange != nil {
		w.onChange()
	}
}

// stop cancels a pending notification and waits for one already running, so
// no callback outlives Run.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.inflight.Wait()
	w.fsw.Close()
}
