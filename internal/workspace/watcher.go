package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned when operations are attempted on a closed watcher.
var ErrWatcherClosed = errors.New("settings watcher is closed")

// DefaultDebounce is the quiet period before a settings change is reported.
const DefaultDebounce = 100 * time.Millisecond

// SettingsWatcher reports folders whose settings file was created, written,
// removed or renamed. Each folder root is watched so that a .dokd directory
// created after startup is picked up.
type SettingsWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce time.Duration

	// roots maps a cleaned folder root to the folder it came from.
	roots map[string]Folder

	changes chan Folder
	errors  chan error

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// WatcherOption configures a SettingsWatcher.
type WatcherOption func(*SettingsWatcher)

// WithDebounce sets the debounce period.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *SettingsWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewSettingsWatcher watches the settings files of the local folders given.
// Non-local folders are ignored.
func NewSettingsWatcher(folders []Folder, opts ...WatcherOption) (*SettingsWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &SettingsWatcher{
		watcher:  fsw,
		debounce: DefaultDebounce,
		roots:    make(map[string]Folder),
		changes:  make(chan Folder, 16),
		errors:   make(chan error, 16),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, folder := range folders {
		if !folder.IsLocal() {
			continue
		}
		if err := w.add(folder); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Changes delivers a folder each time its settings file changes.
// The channel is closed when the watcher is closed.
func (w *SettingsWatcher) Changes() <-chan Folder {
	return w.changes
}

// Errors delivers watch errors. Errors are dropped when nobody reads them.
func (w *SettingsWatcher) Errors() <-chan error {
	return w.errors
}

// Close stops watching. It is safe to call Close multiple times.
func (w *SettingsWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *SettingsWatcher) add(folder Folder) error {
	root := filepath.Clean(folder.FSPath())
	if err := w.watcher.Add(root); err != nil {
		return err
	}

	w.mu.Lock()
	w.roots[root] = folder
	w.mu.Unlock()

	dir := filepath.Join(root, SettingsDir)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return w.watcher.Add(dir)
	}
	return nil
}

// match maps a file system event to the folder it concerns.
func (w *SettingsWatcher) match(ev fsnotify.Event) (Folder, bool) {
	name := filepath.Clean(ev.Name)
	parent := filepath.Dir(name)

	w.mu.Lock()
	defer w.mu.Unlock()

	// <root>/.dokd appeared: start watching it.
	if filepath.Base(name) == SettingsDir {
		folder, ok := w.roots[parent]
		if !ok {
			return Folder{}, false
		}
		if ev.Has(fsnotify.Create) {
			_ = w.watcher.Add(name)
		}
		return folder, true
	}

	if filepath.Base(name) != SettingsFile || filepath.Base(parent) != SettingsDir {
		return Folder{}, false
	}
	folder, ok := w.roots[filepath.Dir(parent)]
	return folder, ok
}

func (w *SettingsWatcher) loop() {
	defer w.wg.Done()
	defer close(w.changes)

	pending := make(map[string]Folder)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var fire <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			timer.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			folder, matched := w.match(ev)
			if !matched {
				continue
			}
			pending[folder.String()] = folder
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}

		case <-fire:
			fire = nil
			for key, folder := range pending {
				select {
				case w.changes <- folder:
				case <-w.closeCh:
					return
				}
				delete(pending, key)
			}
		}
	}
}
