// Package history implements the generic bounded collection store: an
// ordered, most-recent-first record list under an identity-namespaced
// storage key, with FIFO-cap or TTL eviction, seed records, corruption
// repair, and graceful degradation when persistence fails.
package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"content-studio/internal/codec"
	"content-studio/internal/storage"
)

var (
	errEmptyRecordID = errors.New("record has empty id")
	errBadTimestamp  = errors.New("record has non-positive timestamp")
)

// staleKeyRetries bounds how often an operation re-resolves its key
// when an identity change races the read.
const staleKeyRetries = 3

// NamespaceFunc returns the namespace partitioning a collection at call
// time; an empty string means the collection is global. Binding the
// namespace as a function (rather than a value) is what makes identity
// changes take effect on the very next operation.
type NamespaceFunc func() string

// Store is the single writer for one logical collection. All operations
// re-read the latest persisted state immediately before writing, so two
// appends racing across processes shrink the lost-update window to the
// read-write gap; this is best-effort, not transactional.
type Store[T any] struct {
	backend   storage.Backend
	prefix    string
	namespace NamespaceFunc
	policy    Policy[T]
	now       func() time.Time

	mu    sync.Mutex
	key   string
	items []Record[T]
}

func New[T any](backend storage.Backend, prefix string, namespace NamespaceFunc, policy Policy[T]) *Store[T] {
	if namespace == nil {
		namespace = func() string { return "" }
	}
	return &Store[T]{
		backend:   backend,
		prefix:    prefix,
		namespace: namespace,
		policy:    policy,
		now:       time.Now,
	}
}

// Load reads the collection under the key current at call time,
// discarding any in-memory state bound to a previous identity. Corrupt
// stored bytes are replaced with the policy default and repaired in
// place; TTL-expired records are filtered (and the seed restored if
// that empties the collection).
func (s *Store[T]) Load() ([]Record[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, items, dirty, err := s.read()
	if err != nil {
		return nil, err
	}
	s.bind(key, items)
	if dirty {
		// self-healing write; failure leaves session memory authoritative
		_ = s.persist(key, items)
	}
	return s.snapshot(), nil
}

// Append prepends a new record carrying payload and applies eviction.
// On ErrWriteFailed the record is still part of the in-memory
// collection for the rest of the session.
func (s *Store[T]) Append(payload T) (Record[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, items, _, err := s.read()
	if err != nil {
		return Record[T]{}, err
	}
	now := s.now()
	rec := NewRecord(now, payload)
	items, _ = s.policy.apply(append([]Record[T]{rec}, items...), now)
	s.bind(key, items)
	return rec, s.persist(key, items)
}

// Remove filters the record with the given id out of the collection.
// Removing an id that is not present is a no-op.
func (s *Store[T]) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, items, _, err := s.read()
	if err != nil {
		return err
	}
	kept := make([]Record[T], 0, len(items))
	for _, r := range items {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if s.policy.TTL > 0 && len(kept) == 0 && s.policy.Seed != nil {
		kept = s.policy.Seed(s.now())
	}
	s.bind(key, kept)
	return s.persist(key, kept)
}

// Clear resets the collection to the policy default and removes the
// physical key so no stale bytes are retained; seeded policies persist
// their seed afterwards.
func (s *Store[T]) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storage.BuildKey(s.prefix, s.namespace())
	items := s.policy.defaults(s.now())
	s.bind(key, items)
	if err := s.backend.Remove(key); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if len(items) > 0 {
		return s.persist(key, items)
	}
	return nil
}

// Items returns a copy of the in-memory collection from the last
// successful operation. It does not touch storage.
func (s *Store[T]) Items() []Record[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// ActiveKey returns the storage key the in-memory state is bound to.
func (s *Store[T]) ActiveKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// read resolves the current key and decodes the latest persisted
// collection under it, re-checking after the read that the key is still
// current. A read whose key went stale mid-flight is discarded and
// retried; persistent flapping surfaces ErrStaleKey. Caller holds mu.
func (s *Store[T]) read() (string, []Record[T], bool, error) {
	for i := 0; i < staleKeyRetries; i++ {
		key := storage.BuildKey(s.prefix, s.namespace())
		raw, ok, err := s.backend.Get(key)
		if err != nil {
			// unreadable storage degrades to the default, session-only
			raw, ok = "", false
		}
		if storage.BuildKey(s.prefix, s.namespace()) != key {
			continue
		}
		now := s.now()
		if !ok {
			// a seeded collection materializes its seed on first sight
			// so repeated loads agree on the seed record
			return key, s.policy.defaults(now), s.policy.Seed != nil, nil
		}
		items, derr := codec.Decode(raw, s.policy.defaults(now), s.policy.validateRecords)
		filtered, evicted := s.policy.apply(items, now)
		return key, filtered, derr != nil || evicted, nil
	}
	return "", nil, false, ErrStaleKey
}

func (s *Store[T]) bind(key string, items []Record[T]) {
	s.key = key
	s.items = items
}

func (s *Store[T]) persist(key string, items []Record[T]) error {
	raw, err := codec.Encode(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := s.backend.Set(key, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (s *Store[T]) snapshot() []Record[T] {
	out := make([]Record[T], len(s.items))
	copy(out, s.items)
	return out
}
