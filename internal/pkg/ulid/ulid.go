// Package ulid issues chat identifiers. IDs sort by creation time and are
// strictly increasing within one process.
package ulid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewFromTime returns a ULID string stamped with t.
func NewFromTime(t time.Time) string {
	mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	mu.Unlock()
	return id.String()
}
