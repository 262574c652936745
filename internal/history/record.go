package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is the generic envelope every stored collection item travels
// in. IDs are unique within a collection and ordered roughly by
// creation time; timestamps are non-decreasing in insertion order,
// though storage order is most-recent-first.
type Record[T any] struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Payload   T      `json:"payload"`
}

// NewRecord builds a fresh record envelope; policies use it to
// construct their seed records.
func NewRecord[T any](now time.Time, payload T) Record[T] {
	return Record[T]{
		ID:        fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		Timestamp: now.UnixMilli(),
		Payload:   payload,
	}
}
