package streak

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store persists streak records. Implementations must be safe for
// concurrent use; the manager itself serializes nothing, callers hold a
// per-user mutual-exclusion scope around mutating calls.
type Store interface {
	Get(ctx context.Context, key Key) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
	ListByUser(ctx context.Context, userID int64) ([]*Record, error)
}

// shieldWindowDays is the largest gap (in days) a shield can bridge.
const shieldWindowDays = 3

// Manager owns all streak state transitions.
type Manager struct {
	store  Store
	reqs   map[Kind]Requirement
	logger *zap.Logger
}

// NewManager validates the requirement catalogue and creates a Manager.
// A kind without a requirement is a configuration error here, not a
// per-call failure later.
func NewManager(store Store, reqs map[Kind]Requirement, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("streak: store is required")
	}
	if len(reqs) == 0 {
		reqs = DefaultRequirements()
	}
	for kind, req := range reqs {
		if req.GraceHours <= 0 {
			return nil, fmt.Errorf("streak: kind %q has non-positive grace hours", kind)
		}
		if req.MinActionsPerPeriod <= 0 {
			return nil, fmt.Errorf("streak: kind %q has non-positive min actions", kind)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, reqs: reqs, logger: logger}, nil
}

// RecordActivity applies one day of activity to the (user, kind) streak
// and returns the updated record.
func (m *Manager) RecordActivity(ctx context.Context, userID int64, kind Kind, day time.Time) (*Record, error) {
	if _, ok := m.reqs[kind]; !ok {
		return nil, fmt.Errorf("streak: unknown kind %q", kind)
	}
	today := Day(day)

	rec, err := m.store.Get(ctx, Key{UserID: userID, Kind: kind})
	switch {
	case err == ErrNotFound:
		rec = &Record{
			UserID:       userID,
			Kind:         kind,
			CurrentCount: 1,
			BestCount:    1,
			Status:       StatusActive,
			LastActivity: today,
			StartedAt:    today,
		}
		if err := m.store.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("streak: upsert: %w", err)
		}
		return rec, nil
	case err != nil:
		return nil, fmt.Errorf("streak: get: %w", err)
	}

	// A record created by a shield grant has never seen activity; the
	// first real activity starts a fresh streak instead of computing a
	// gap from the zero time.
	if rec.LastActivity.IsZero() {
		rec.CurrentCount = 1
		if rec.BestCount < 1 {
			rec.BestCount = 1
		}
		rec.Status = StatusActive
		rec.StartedAt = today
		rec.LastActivity = today
		if err := m.store.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("streak: upsert: %w", err)
		}
		return rec, nil
	}

	gapDays := int(today.Sub(Day(rec.LastActivity)).Hours() / 24)
	switch {
	case gapDays <= 0:
		// Same calendar day: count and status untouched.

	case gapDays == 1:
		rec.CurrentCount++
		if rec.CurrentCount > rec.BestCount {
			rec.BestCount = rec.CurrentCount
		}
		rec.Status = StatusActive

	case rec.Shields > 0 && gapDays <= shieldWindowDays:
		rec.Shields--
		rec.Status = StatusProtected
		m.logger.Info("streak shield consumed",
			zap.Int64("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Int("gap_days", gapDays),
			zap.Int("shields_left", rec.Shields))

	default:
		rec.CurrentCount = 1
		rec.Status = StatusBroken
		rec.StartedAt = today
	}

	rec.LastActivity = today
	if err := m.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("streak: upsert: %w", err)
	}
	return rec, nil
}

// CheckStatus recomputes the streak status against the kind's grace period
// without recording activity. Shields are never consumed here; a read-only
// check only marks the streak Protected when one is available.
func (m *Manager) CheckStatus(ctx context.Context, userID int64, kind Kind, now time.Time) (*Record, error) {
	req, ok := m.reqs[kind]
	if !ok {
		return nil, fmt.Errorf("streak: unknown kind %q", kind)
	}

	rec, err := m.store.Get(ctx, Key{UserID: userID, Kind: kind})
	if err == ErrNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("streak: get: %w", err)
	}

	hoursSince := now.Sub(rec.LastActivity).Hours()
	if hoursSince <= float64(req.GraceHours) {
		return rec, nil
	}

	if rec.Shields > 0 {
		if rec.Status != StatusProtected {
			rec.Status = StatusProtected
			if err := m.store.Upsert(ctx, rec); err != nil {
				return nil, fmt.Errorf("streak: upsert: %w", err)
			}
		}
		return rec, nil
	}

	if rec.Status != StatusBroken || rec.CurrentCount != 0 {
		rec.Status = StatusBroken
		rec.CurrentCount = 0
		if err := m.store.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("streak: upsert: %w", err)
		}
	}
	return rec, nil
}

// Multiplier returns the XP multiplier earned by the user's Active streaks:
// 1.0 base plus, per streak, the single highest applicable tier bonus
// (+0.10 at 3 days, +0.20 at 7, +0.30 at 14, +0.50 at 30).
func (m *Manager) Multiplier(ctx context.Context, userID int64) (float64, error) {
	recs, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("streak: list: %w", err)
	}
	mult := 1.0
	for _, rec := range recs {
		if rec.Status != StatusActive {
			continue
		}
		mult += tierBonus(rec.CurrentCount)
	}
	return mult, nil
}

func tierBonus(days int) float64 {
	switch {
	case days >= 30:
		return 0.50
	case days >= 14:
		return 0.30
	case days >= 7:
		return 0.20
	case days >= 3:
		return 0.10
	}
	return 0
}

// AddShields grants n grace tokens to the (user, kind) streak, creating the
// record if needed. Shields come from outside the manager (achievement or
// purchase rewards) and never go negative.
func (m *Manager) AddShields(ctx context.Context, userID int64, kind Kind, n int) (*Record, error) {
	if _, ok := m.reqs[kind]; !ok {
		return nil, fmt.Errorf("streak: unknown kind %q", kind)
	}
	if n <= 0 {
		return nil, fmt.Errorf("streak: shield count must be positive, got %d", n)
	}

	rec, err := m.store.Get(ctx, Key{UserID: userID, Kind: kind})
	if err == ErrNotFound {
		rec = &Record{UserID: userID, Kind: kind, Status: StatusBroken}
	} else if err != nil {
		return nil, fmt.Errorf("streak: get: %w", err)
	}
	rec.Shields += n
	if err := m.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("streak: upsert: %w", err)
	}
	return rec, nil
}

// Snapshot returns every streak record for the user.
func (m *Manager) Snapshot(ctx context.Context, userID int64) ([]*Record, error) {
	recs, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("streak: list: %w", err)
	}
	return recs, nil
}

// Requirements exposes the loaded catalogue (for display).
func (m *Manager) Requirements() map[Kind]Requirement {
	out := make(map[Kind]Requirement, len(m.reqs))
	for k, v := range m.reqs {
		out[k] = v
	}
	return out
}
