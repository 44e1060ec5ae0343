// Package watchers bridges host event sources onto the settings event bus.
package watchers

import (
	"log/slog"
	"sync"
	"time"
)

// Func runs until stop is closed or its source goes away. It calls ready
// once its source is subscribed, so that changes made after that are
// observed. Calling ready again is harmless.
type Func func(stop <-chan struct{}, ready func())

type entry struct {
	stop  chan struct{}
	ready chan struct{}
	once  sync.Once
}

func (e *entry) markReady() {
	e.once.Do(func() { close(e.ready) })
}

// Group supervises named watchers. A watcher that returns or panics is
// restarted after Backoff until the group is stopped.
type Group struct {
	Backoff time.Duration

	log     *slog.Logger
	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
}

func NewGroup(log *slog.Logger) *Group {
	if log == nil {
		log = slog.Default()
	}
	return &Group{
		Backoff: 2 * time.Second,
		log:     log,
		entries: make(map[string]*entry),
	}
}

// Start runs f under name unless a watcher with that name is already
// running. It reports whether f was started.
func (g *Group) Start(name string, f Func) bool {
	g.mu.Lock()
	if _, ok := g.entries[name]; ok {
		g.mu.Unlock()
		return false
	}
	e := &entry{stop: make(chan struct{}), ready: make(chan struct{})}
	g.entries[name] = e
	backoff := g.Backoff
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						g.log.Error("watcher panic", "watcher", name, "panic", r)
					}
				}()
				f(e.stop, e.markReady)
			}()
			// A watcher that gave up must not leave waiters hanging.
			e.markReady()

			select {
			case <-e.stop:
				return
			case <-time.After(backoff):
				g.log.Debug("restarting watcher", "watcher", name)
			}
		}
	}()
	return true
}

// Ready returns a channel closed once the named watcher's source is
// subscribed, or once its first run ended. For a name that is not running
// the channel is already closed.
func (g *Group) Ready(name string) <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.entries[name]; ok {
		return e.ready
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Running reports whether a watcher with name was started and not stopped.
func (g *Group) Running(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.entries[name]
	return ok
}

// StopAll stops every watcher and waits for them to return.
func (g *Group) StopAll() {
	g.mu.Lock()
	entries := g.entries
	g.entries = make(map[string]*entry)
	g.mu.Unlock()

	for _, e := range entries {
		close(e.stop)
	}
	g.wg.Wait()
}

// pump calls fn for every value from src until stop is closed or src is.
func pump[T any](stop <-chan struct{}, src <-chan T, fn func(T)) {
	for {
		select {
		case <-stop:
			return
		case v, ok := <-src:
			if !ok {
				return
			}
			fn(v)
		}
	}
}

// latest forwards only values that differ from the last one seen.
type latest[T comparable] struct {
	last    T
	known   bool
	publish func(T)
}

func dedup[T comparable](publish func(T)) *latest[T] {
	return &latest[T]{publish: publish}
}

// seed records v as seen without publishing it.
func (l *latest[T]) seed(v T) {
	l.last, l.known = v, true
}

func (l *latest[T]) set(v T) {
	if l.known && v == l.last {
		return
	}
	l.seed(v)
	l.publish(v)
}
