package storage

// Backend abstracts the physical key/value store holding one opaque
// string blob per key. It is intentionally simple to allow future
// implementations (in-memory, DB, remote bridge).
// An absent key is not an error: Get reports presence separately.
// Set must replace the whole blob atomically so a concurrent reader
// never observes a partial write.
// Implementations must be safe for concurrent use.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
}
