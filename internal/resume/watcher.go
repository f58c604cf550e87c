package resume

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"interviewprep/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls onChange after the résumé at path has been rewritten.
// Bursts of events within the debounce delay produce one call.
type Watcher struct {
	mu sync.Mutex

	path     string
	lastMod  time.Time
	lastSize int64

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// NewWatcher creates a watcher for path. A zero debounce means 500ms.
func NewWatcher(path string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *Watcher {
	if debounceDelay == 0 {
		debounceDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Watcher{
		path:          filepath.Clean(path),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. The directory is watched as well so that editors
// replacing the file through a rename are noticed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("résumé watcher is already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		_ = fsWatcher.Close()
		return fmt.Errorf("failed to watch directory of %s: %w", w.path, err)
	}
	w.fsWatcher = fsWatcher
	w.snapshot()

	w.running = true
	go w.watchLoop()

	w.logger.Info("Résumé watcher started", "file", w.path, "debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.running = false

	if err := w.fsWatcher.Close(); err != nil {
		w.logger.LogError(err, "Failed to close file system watcher")
		return err
	}
	w.logger.Info("Résumé watcher stopped", "file", w.path)
	return nil
}

// IsRunning returns whether the watcher is currently running
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "File watcher error", "file", w.path)

		case <-w.reloadChan:
			if w.changed() {
				w.logger.Info("Résumé changed on disk", "file", w.path)
				w.onChange()
			}

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// snapshot records the current modification time and size. Callers hold mu.
func (w *Watcher) snapshot() {
	if info, err := os.Stat(w.path); err == nil {
		w.lastMod = info.ModTime()
		w.lastSize = info.Size()
	}
}

// changed reports whether the file now differs from the last snapshot.
// A file that is currently missing has not changed yet.
func (w *Watcher) changed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	if info.ModTime().Equal(w.lastMod) && info.Size() == w.lastSize {
		return false
	}
	w.lastMod = info.ModTime()
	w.lastSize = info.Size()
	return true
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}
