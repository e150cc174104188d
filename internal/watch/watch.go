// Package watch reports changes to a single file using OS-native
// notifications.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op describes a set of file operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

func (o Op) String() string {
	var parts []string
	for _, f := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if o&f.op != 0 {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Event is one change of a watched path.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher wraps an fsnotify watcher with translated events.
type Watcher struct {
	w   *fsnotify.Watcher
	evC chan Event
	erC chan error

	done      chan struct{} // closed by Close
	stopped   chan struct{} // closed when loop returns
	closeOnce sync.Once
}

// New creates a Watcher.
func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	fw := &Watcher{
		w:       w,
		evC:     make(chan Event, 128),
		erC:     make(chan error, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go fw.loop()
	return fw, nil
}

func (fw *Watcher) loop() {
	defer close(fw.stopped)
	defer close(fw.evC)
	for {
		select {
		case <-fw.done:
			return
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			var op Op
			if ev.Op&fsnotify.Create != 0 {
				op |= OpCreate
			}
			if ev.Op&fsnotify.Write != 0 {
				op |= OpWrite
			}
			if ev.Op&fsnotify.Remove != 0 {
				op |= OpRemove
			}
			if ev.Op&fsnotify.Rename != 0 {
				op |= OpRename
			}
			if ev.Op&fsnotify.Chmod != 0 {
				op |= OpChmod
			}
			select {
			case fw.evC <- Event{Path: ev.Name, Op: op, Time: time.Now()}:
			case <-fw.done:
				return
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.erC <- err:
			default:
			}
		}
	}
}

func (fw *Watcher) Events() <-chan Event     { return fw.evC }
func (fw *Watcher) Errors() <-chan error     { return fw.erC }
func (fw *Watcher) Add(name string) error    { return fw.w.Add(name) }
func (fw *Watcher) Remove(name string) error { return fw.w.Remove(name) }

// Close stops the watcher. Events not yet received are dropped.
func (fw *Watcher) Close() error {
	fw.closeOnce.Do(func() { close(fw.done) })
	return fw.w.Close()
}

// File calls fn each time path is created or written, until ctx is done.
// Events for the same path closer together than debounce are dropped.
// The directory holding path is watched, so editors that save by
// renaming a temporary file are seen as well.
func File(ctx context.Context, path string, debounce time.Duration, fn func(Event)) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw, err := New()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			if abs, _ := filepath.Abs(ev.Path); abs != target {
				continue
			}
			if ev.Op&(OpCreate|OpWrite) == 0 {
				continue
			}
			if !last.IsZero() && ev.Time.Sub(last) < debounce {
				continue
			}
			last = ev.Time
			fn(ev)

		case err := <-fw.Errors():
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
