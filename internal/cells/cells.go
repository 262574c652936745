// Package cells models the small set of process-wide persisted values
// (authentication flag, profile record, tour-completed flag) as named,
// validated cells with get/set/subscribe, instead of ad hoc flags
// scattered over the key space.
package cells

import (
	"sync"

	"content-studio/internal/codec"
	"content-studio/internal/storage"
)

// Cell is a single named persisted value behind the same codec contract
// collections use. Reads are non-destructive: a corrupt stored value
// yields the default and is only overwritten by the next Set.
type Cell[T any] struct {
	backend  storage.Backend
	key      string
	def      T
	validate func(T) error

	mu   sync.Mutex
	subs []func(T)
}

func New[T any](backend storage.Backend, key string, def T, validate func(T) error) *Cell[T] {
	return &Cell[T]{backend: backend, key: key, def: def, validate: validate}
}

func (c *Cell[T]) Key() string { return c.key }

// Get returns the stored value and whether a valid value was present;
// absent or corrupt bytes yield the default with present == false.
func (c *Cell[T]) Get() (T, bool) {
	raw, ok, err := c.backend.Get(c.key)
	if err != nil || !ok {
		return c.def, false
	}
	v, derr := codec.Decode(raw, c.def, c.validate)
	return v, derr == nil
}

// Set persists the value and notifies subscribers synchronously.
func (c *Cell[T]) Set(v T) error {
	raw, err := codec.Encode(v)
	if err != nil {
		return err
	}
	if err := c.backend.Set(c.key, raw); err != nil {
		return err
	}
	c.notify(v)
	return nil
}

// Clear removes the stored value and notifies subscribers with the
// default.
func (c *Cell[T]) Clear() error {
	if err := c.backend.Remove(c.key); err != nil {
		return err
	}
	c.notify(c.def)
	return nil
}

// Subscribe registers fn for every subsequent Set/Clear and returns an
// unsubscribe func.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.subs[idx] = nil
	}
}

func (c *Cell[T]) notify(v T) {
	c.mu.Lock()
	subs := make([]func(T), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(v)
		}
	}
}
