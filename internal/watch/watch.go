// Package watch reports debounced changes to a single script file.
//
// The containing directory is watched rather than the file itself so that
// editors which save by renaming a temp file over the original keep
// producing events.
package watch

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is used when New is given a non-positive delay.
const DefaultDelay = 150 * time.Millisecond

// Event reports that the watched file settled after one or more changes.
type Event struct {
	Path string
	Time time.Time
}

// Watcher coalesces rapid writes to one file into a single Event.
type Watcher struct {
	fsw   *fsnotify.Watcher
	path  string
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	closed bool

	events  chan Event
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New starts watching path. The file itself need not exist yet, but its
// directory must.
func New(path string, delay time.Duration) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		path:    abs,
		delay:   delay,
		events:  make(chan Event, 1),
		closeCh: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Events returns the debounced change channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	close(w.events)
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("Watch error on %s: %v", w.path, err)
		}
	}
}

// schedule starts or restarts the quiet-period timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.delay)
		return
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	// A full buffer already holds an undelivered change.
	select {
	case w.events <- Event{Path: w.path, Time: time.Now()}:
	default:
	}
}
