// Package memory provides in-process implementations of the engine store
// interfaces. Used by tests and cache-less deployments.
package memory

import (
	"context"
	"sync"

	"github.com/momentumhq/server/gamify/achievement"
	"github.com/momentumhq/server/gamify/streak"
)

// StreakStore is a mutex-guarded map implementation of streak.Store.
type StreakStore struct {
	mu   sync.RWMutex
	recs map[streak.Key]*streak.Record
}

// NewStreakStore creates an empty StreakStore.
func NewStreakStore() *StreakStore {
	return &StreakStore{recs: make(map[streak.Key]*streak.Record)}
}

func (s *StreakStore) Get(_ context.Context, key streak.Key) (*streak.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[key]
	if !ok {
		return nil, streak.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *StreakStore) Upsert(_ context.Context, rec *streak.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.recs[streak.Key{UserID: rec.UserID, Kind: rec.Kind}] = &cp
	return nil
}

func (s *StreakStore) ListByUser(_ context.Context, userID int64) ([]*streak.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*streak.Record
	for key, rec := range s.recs {
		if key.UserID == userID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Ledger is a mutex-guarded slice implementation of achievement.Ledger.
type Ledger struct {
	mu   sync.RWMutex
	recs map[int64][]achievement.Record
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{recs: make(map[int64][]achievement.Record)}
}

func (l *Ledger) List(_ context.Context, userID int64) ([]achievement.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]achievement.Record, len(l.recs[userID]))
	copy(out, l.recs[userID])
	return out, nil
}

func (l *Ledger) Count(_ context.Context, userID int64, achievementID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, rec := range l.recs[userID] {
		if rec.AchievementID == achievementID {
			n++
		}
	}
	return n, nil
}

func (l *Ledger) Append(_ context.Context, rec achievement.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs[rec.UserID] = append(l.recs[rec.UserID], rec)
	return nil
}
