package usecase

import (
	"math/rand"
	"sync"
	"time"
)

// lockedRand serializes access to a rand.Rand so services can share one
// generator across concurrently handled requests. Tests inject a seeded
// source; a nil source gets a time-seeded one.
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func newLockedRand(src *rand.Rand) *lockedRand {
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &lockedRand{src: src}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}
