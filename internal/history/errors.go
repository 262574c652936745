package history

import "errors"

var (
	// ErrWriteFailed means the collection could not be persisted (for
	// example quota or disk failure). In-memory state has still been
	// updated, so the current session keeps working; only durability is
	// lost ("could not save").
	ErrWriteFailed = errors.New("could not save")

	// ErrStaleKey means the identity changed repeatedly while an
	// operation was resolving its namespace key, and the result was
	// discarded rather than applied under a key that is no longer
	// current.
	ErrStaleKey = errors.New("stale namespace key")

	// ErrNotFound means no record with the requested id or slug exists.
	ErrNotFound = errors.New("not found")
)
