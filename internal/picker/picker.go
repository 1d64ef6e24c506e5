/*
Package picker abstracts the random choices the resolution engine makes when more than one
equally-good candidate is on offer: which root server to start from, which glue address to chase,
which authority name to resolve and which CNAME target to follow.

Production code uses the Rand implementation. Tests supply their own Picker so that resolution
paths are deterministic.
*/
package picker

import (
	"math/rand"
	"sync"
	"time"
)

// Picker chooses one index from n candidates. Pick is never called with n < 1 and must return a
// value in [0, n).
type Picker interface {
	Pick(n int) int
}

// Rand is a Picker backed by a private math/rand source. A mutex serializes access as rand.Rand
// is not safe for concurrent use and one Rand is typically shared by all resolutions.
type Rand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand constructs a Rand seeded from the wall clock.
func NewRand() *Rand {
	return &Rand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (t *Rand) Pick(n int) int {
	if n < 2 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.rng.Intn(n)
}
