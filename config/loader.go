package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/OpenKneeboard/core/logging"
)

// LoaderOption configures a Loader during construction, in the
// functional-options style.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	watch bool
}

// WithWatch enables filesystem watching: callbacks registered via
// OnChange fire whenever the settings file is rewritten.
func WithWatch() LoaderOption {
	return func(o *loaderOptions) { o.watch = true }
}

// Loader reads Settings from a JSON file, optionally watching it for
// changes with fsnotify so callers can hot-reload placement without a
// process restart.
type Loader struct {
	path string

	mu       sync.Mutex
	current  *Settings
	watcher  *fsnotify.Watcher
	handlers []func(*Settings)
}

// NewLoader creates a Loader for the settings file at path.
func NewLoader(path string, opts ...LoaderOption) (*Loader, error) {
	o := loaderOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Loader{path: path}

	settings, err := l.Load()
	if err != nil {
		return nil, err
	}
	l.current = settings

	if o.watch {
		if err := l.startWatch(); err != nil {
			return nil, err
		}
	}

	return l, nil
}

// Load reads and decodes the settings file without affecting any
// registered watch.
func (l *Loader) Load() (*Settings, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", l.path, err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", l.path, err)
	}

	return &s, nil
}

// Current returns the most recently loaded Settings.
func (l *Loader) Current() *Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// OnChange registers a callback invoked with the newly loaded Settings
// whenever the watched file changes. Requires the Loader to have been
// created with WithWatch.
func (l *Loader) OnChange(fn func(*Settings)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers = append(l.handlers, fn)
}

func (l *Loader) startWatch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: creating watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return fmt.Errorf("config: watching %s: %w", l.path, err)
	}
	l.watcher = w

	go l.watchLoop()
	return nil
}

func (l *Loader) watchLoop() {
	log := logging.Logger()
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			settings, err := l.Load()
			if err != nil {
				log.Warn("config: reload failed", "path", l.path, "error", err)
				continue
			}

			l.mu.Lock()
			l.current = settings
			handlers := append([]func(*Settings){}, l.handlers...)
			l.mu.Unlock()

			for _, h := range handlers {
				h(settings)
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("config: watch error", "path", l.path, "error", err)
		}
	}
}

// Close stops watching the settings file, if a watch was started.
func (l *Loader) Close() error {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Close()
}
