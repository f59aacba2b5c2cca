// Package watch re-runs a callback when a file changes.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temporary file and renaming it over the original are
// still noticed. Bursts of events are coalesced by a debounce delay.
//
// The callback runs on the goroutine that called Run, never concurrently
// with itself.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when no positive delay is configured.
const DefaultDebounce = 200 * time.Millisecond

// Errors returned by the watcher.
var (
	// ErrPathNotExist is returned when the watched file does not exist.
	ErrPathNotExist = errors.New("path does not exist")

	// ErrWatcherClosed is returned by Run after Close.
	ErrWatcherClosed = errors.New("watcher is closed")
)

// Watcher watches a single file.
type Watcher struct {
	path  string
	delay time.Duration
	log   zerolog.Logger

	fsw    *fsnotify.Watcher
	closed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the delay between the last change and the callback.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// New starts watching path. Changes made after New returns are reported by
// the next Run.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotExist, path)
		}
		return nil, err
	}

	w := &Watcher{
		path:  abs,
		delay: DefaultDebounce,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.fsw = fsw
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls fn after each burst of changes to the file until ctx is done.
// It returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, fn func()) error {
	if w.closed {
		return ErrWatcherClosed
	}

	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	// fire is nil while no change is pending.
	var fire <-chan time.Time
	pending := 0

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if !w.relevant(ev) {
				continue
			}
			pending++
			timer.Reset(w.delay)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("watch error")

		case <-fire:
			fire = nil
			w.log.Debug().Str("path", w.path).Int("events", pending).Msg("file changed")
			pending = 0
			fn()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Close stops watching. Close is idempotent.
func (w *Watcher) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

// Run watches path and calls fn after each burst of changes until ctx is
// done.
func Run(ctx context.Context, path string, debounce time.Duration, fn func(), opts ...Option) error {
	w, err := New(path, append(opts, WithDebounce(debounce))...)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx, fn)
}
