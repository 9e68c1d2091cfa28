// Package watcher reports changes to the dataset file so the dashboard can
// reload it. It uses fsnotify on the file's directory and falls back to
// stat polling on remote filesystems or when CDASH_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/cdash/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// ForcePollEnvVar forces polling mode when truthy.
const ForcePollEnvVar = "CDASH_FORCE_POLL"

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// sqliteCompanions are written alongside a SQLite database; a change to any
// of them is a change to the dataset.
var sqliteCompanions = []string{"-wal", "-journal"}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithOnChange sets the callback invoked after a debounced change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// Watcher monitors one dataset file.
type Watcher struct {
	path             string
	names            map[string]bool // base names that count as the dataset
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	forcePoll        bool
	fsType           FilesystemType

	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	last      fileState
	changes   int

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

type fileState struct {
	mtime time.Time
	size  int64
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{mtime: info.ModTime(), size: info.Size()}, nil
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	base := filepath.Base(absPath)
	w := &Watcher{
		path:             absPath,
		names:            map[string]bool{base: true},
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		fsType:           FSTypeUnknown,
		changeCh:         make(chan struct{}, 1),
	}
	for _, suffix := range sqliteCompanions {
		w.names[base+suffix] = true
	}

	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	st, err := statFile(w.path)
	if err != nil && os.IsPermission(err) {
		return ErrPermission
	}
	// a missing file is fine; it may appear later
	w.last = st

	w.fsType = DetectFilesystemType(w.path)
	w.polling = w.forcePoll || envBool(ForcePollEnvVar) || isRemoteFilesystem(w.fsType)

	w.ctx, w.cancel = context.WithCancel(context.Background())

	if !w.polling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			// the directory survives atomic rename-over saves, the file does not
			if err = fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable for %s: %v", w.path, err)
			w.polling = true
		} else {
			w.fsWatcher = fsw
			go w.watchEvents(fsw.Events, fsw.Errors)
		}
	}
	if w.polling {
		go w.watchPolling()
	}

	debug.Log("watcher: watching %s (fs=%s, polling=%v)", w.path, w.fsType, w.polling)
	w.started = true
	return nil
}

// Stop stops watching. The Changed channel stays open so a pending
// receiver is never woken by a close.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// IsPolling reports whether the watcher uses polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed receives once per debounced change. Bursts that arrive while
// nobody is receiving collapse into one signal.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Changes returns how many debounced changes have been reported.
func (w *Watcher) Changes() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.changes
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// FilesystemType returns the classification made at Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) watchEvents(events <-chan fsnotify.Event, errs <-chan error) {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if !w.names[filepath.Base(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				// Remove is usually the first half of a rename-over save;
				// settle decides once the burst is over.
				w.debouncer.Trigger(w.settle)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.PollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			st, err := statFile(w.path)
			if err != nil {
				w.mu.Lock()
				hadFile := !w.last.mtime.IsZero()
				w.last = fileState{}
				w.mu.Unlock()
				switch {
				case os.IsNotExist(err):
					if hadFile {
						w.onError(ErrFileRemoved)
					}
				case os.IsPermission(err):
					w.onError(ErrPermission)
				default:
					w.onError(err)
				}
				continue
			}

			w.mu.Lock()
			changed := st.mtime.After(w.last.mtime) || st.size != w.last.size
			w.last = st
			w.mu.Unlock()

			if changed {
				w.debouncer.Trigger(w.notifyChange)
			}
		}
	}
}

// settle runs after an fsnotify burst: a file that is gone is an error,
// otherwise it is a change.
func (w *Watcher) settle() {
	st, err := statFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			w.onError(ErrFileRemoved)
		} else {
			w.onError(err)
		}
		return
	}
	w.mu.Lock()
	w.last = st
	w.mu.Unlock()
	w.notifyChange()
}

func (w *Watcher) notifyChange() {
	w.mu.Lock()
	started := w.started
	if started {
		w.changes++
	}
	w.mu.Unlock()

	if !started {
		return
	}

	w.onChange()

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
