// Package idgen assigns identifiers to new catalog records.
package idgen

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"
)

// maxID keeps ids within 48 bits, well under the 2^53 limit of JSON numbers
// in JavaScript clients.
const maxID = 1<<48 - 1

// Generator produces identifiers for new products.
type Generator interface {
	NewID() int64
}

// RandomGenerator derives ids from random (version 4) UUIDs. Collisions are
// possible in principle but negligible at catalog sizes.
type RandomGenerator struct{}

// NewID returns a positive id in [1, 2^48).
func (RandomGenerator) NewID() int64 {
	u := uuid.New()
	id := int64(binary.BigEndian.Uint64(u[8:16]) & maxID)
	if id == 0 {
		return 1
	}
	return id
}

// Sequence hands out consecutive ids starting at a fixed value.
type Sequence struct {
	next atomic.Int64
}

// NewSequence returns a Sequence whose first id is start.
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.next.Store(start)
	return s
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() int64 {
	return s.next.Add(1) - 1
}
