package history

import "time"

// Policy configures how a collection is bounded. Zero values mean
// unbounded: no cap, no expiry, empty default.
type Policy[T any] struct {
	// MaxItems caps the collection; appending beyond it evicts the
	// oldest records (FIFO).
	MaxItems int

	// TTL expires records older than the window relative to wall-clock
	// now at load time.
	TTL time.Duration

	// Seed produces the records a collection reverts to when it is
	// empty. A collection with a Seed is never empty.
	Seed func(now time.Time) []Record[T]

	// Validate checks a decoded payload; a failing record marks the
	// whole stored collection corrupt.
	Validate func(T) error
}

// defaults returns the collection value used when nothing (valid) is
// stored.
func (p Policy[T]) defaults(now time.Time) []Record[T] {
	if p.Seed != nil {
		return p.Seed(now)
	}
	return []Record[T]{}
}

// apply enforces eviction on a most-recent-first collection and
// reports whether it changed anything (so callers can persist the
// result).
func (p Policy[T]) apply(items []Record[T], now time.Time) ([]Record[T], bool) {
	changed := false
	if p.TTL > 0 {
		cutoff := now.Add(-p.TTL).UnixMilli()
		kept := make([]Record[T], 0, len(items))
		for _, r := range items {
			if r.Timestamp >= cutoff {
				kept = append(kept, r)
			}
		}
		if len(kept) != len(items) {
			changed = true
		}
		items = kept
		if len(items) == 0 && p.Seed != nil {
			items = p.Seed(now)
			changed = true
		}
	}
	if p.MaxItems > 0 && len(items) > p.MaxItems {
		items = items[:p.MaxItems]
		changed = true
	}
	return items, changed
}

func (p Policy[T]) validateRecords(items []Record[T]) error {
	for _, r := range items {
		if r.ID == "" {
			return errEmptyRecordID
		}
		if r.Timestamp <= 0 {
			return errBadTimestamp
		}
		if p.Validate != nil {
			if err := p.Validate(r.Payload); err != nil {
				return err
			}
		}
	}
	return nil
}
