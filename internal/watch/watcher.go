// Package watch observes the physical storage directory for mutations
// made by other execution contexts (another app instance, a manual
// edit) and publishes the affected storage keys, debounced, onto a
// broker for CrossContextSync to consume.
package watch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"content-studio/internal/bus"
	"content-studio/internal/storage"
)

// Event names a storage key whose bytes changed on disk.
type Event struct {
	Key string
}

type Config struct {
	// Dir is the storage directory holding one blob file per key.
	Dir string
	// DebounceDur coalesces rapid successive writes to the same key
	// into one notification.
	DebounceDur time.Duration
}

const defaultDebounce = 250 * time.Millisecond

type Watcher struct {
	cfg    Config
	fsw    *fsnotify.Watcher
	broker *bus.Broker[Event]

	mu      sync.Mutex
	timers  map[string]*time.Timer
	started bool
	done    chan struct{}
}

func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("watch: dir is required")
	}
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = defaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &Watcher{
		cfg:    cfg,
		fsw:    fsw,
		broker: bus.NewBroker[Event](),
		timers: make(map[string]*time.Timer),
		done:   make(chan struct{}),
	}, nil
}

// Broker exposes the storage-mutation feed.
func (w *Watcher) Broker() *bus.Broker[Event] { return w.broker }

func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return errors.New("watch: already started")
	}
	if err := w.fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}
	w.started = true
	go w.loop()
	return nil
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return w.fsw.Close()
	}
	w.started = false
	for key, t := range w.timers {
		t.Stop()
		delete(w.timers, key)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			key, ok := storage.KeyFromFile(evt.Name)
			if !ok {
				// temp files from atomic writes and unrelated files
				continue
			}
			w.debounce(key)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// debounce (re)arms the per-key timer; rapid writes coalesce into a
// single notification carrying the key.
func (w *Watcher) debounce(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if t, ok := w.timers[key]; ok {
		t.Reset(w.cfg.DebounceDur)
		return
	}
	w.timers[key] = time.AfterFunc(w.cfg.DebounceDur, func() {
		w.mu.Lock()
		delete(w.timers, key)
		w.mu.Unlock()
		w.broker.Publish(Event{Key: key})
	})
}
