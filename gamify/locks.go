package gamify

import "sync"

// userLocks serializes orchestrator calls per user with a fixed set of
// striped mutexes. Streak mutation and ledger appends are read-modify-write
// over shared state; concurrent events for the same user must not interleave.
type userLocks struct {
	shards [64]sync.Mutex
}

func (l *userLocks) lock(userID int64) *sync.Mutex {
	mu := &l.shards[uint64(userID)%uint64(len(l.shards))]
	mu.Lock()
	return mu
}
