// Package achievement evaluates a static rule catalogue against domain
// events and maintains the per-user award ledger.
package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/momentumhq/server/gamify/event"
	"go.uber.org/zap"
)

// Rarity buckets achievements for presentation.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Category groups achievements for display.
type Category string

const (
	CategoryGettingStarted Category = "getting_started"
	CategoryConsistency    Category = "consistency"
	CategoryFocus          Category = "focus"
	CategoryQuality        Category = "quality"
	CategoryDedication     Category = "dedication"
)

// Definition is one immutable catalogue entry.
type Definition struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Category    Category
	Rarity      Rarity
	XPReward    int
	Triggers    []event.TriggerKind
	Rule        Rule
	Repeatable  bool
	MaxAwards   int // 0 = unlimited (for repeatable) / single (non-repeatable)
	Prereqs     []string
}

// Record is one append-only ledger entry.
type Record struct {
	UserID        int64     `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
	XPAwarded     int       `json:"xp_awarded"`
	AwardCount    int       `json:"award_count"` // 1 for first award, 2 for second, ...
}

// Ledger persists award records per user.
type Ledger interface {
	List(ctx context.Context, userID int64) ([]Record, error)
	Count(ctx context.Context, userID int64, achievementID string) (int, error)
	Append(ctx context.Context, rec Record) error
}

// ErrUnknownAchievement is returned for progress queries on IDs not in the catalogue.
var ErrUnknownAchievement = errors.New("achievement: unknown achievement id")

// Engine holds the validated catalogue and the injected ledger.
type Engine struct {
	defs   []Definition
	byID   map[string]Definition
	ledger Ledger
	logger *zap.Logger
}

// NewEngine validates the catalogue and creates an Engine. Duplicate IDs,
// prerequisites that name no catalogue entry, empty trigger lists, and
// malformed rule payloads all fail here, at startup.
func NewEngine(defs []Definition, ledger Ledger, logger *zap.Logger) (*Engine, error) {
	if ledger == nil {
		return nil, fmt.Errorf("achievement: ledger is required")
	}
	if len(defs) == 0 {
		defs = Catalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byID := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("achievement: definition with empty id")
		}
		if _, dup := byID[def.ID]; dup {
			return nil, fmt.Errorf("achievement %q: duplicate id", def.ID)
		}
		if len(def.Triggers) == 0 {
			return nil, fmt.Errorf("achievement %q: no trigger kinds", def.ID)
		}
		for _, tr := range def.Triggers {
			if !event.KnownTrigger(tr) {
				return nil, fmt.Errorf("achievement %q: unknown trigger %q", def.ID, tr)
			}
		}
		if def.XPReward < 0 {
			return nil, fmt.Errorf("achievement %q: negative xp reward", def.ID)
		}
		if err := validateRule(def.ID, def.Rule); err != nil {
			return nil, err
		}
		byID[def.ID] = def
	}
	for _, def := range defs {
		for _, pre := range def.Prereqs {
			if _, ok := byID[pre]; !ok {
				return nil, fmt.Errorf("achievement %q: prerequisite %q not in catalogue", def.ID, pre)
			}
		}
	}
	return &Engine{defs: defs, byID: byID, ledger: ledger, logger: logger}, nil
}

// Check evaluates every catalogue entry triggered by the firing kind and
// appends a ledger record for each rule that passes its gates and predicate.
// A single event may award multiple achievements. The caller serializes
// same-user calls; otherwise duplicate non-repeatable awards are possible.
func (e *Engine) Check(ctx context.Context, userID int64, trigger event.TriggerKind, ev event.Event, stats event.UserStats) ([]Record, error) {
	if !event.KnownTrigger(trigger) {
		return nil, fmt.Errorf("achievement: unknown trigger %q", trigger)
	}

	earned, err := e.ledger.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("achievement: list ledger: %w", err)
	}
	counts := make(map[string]int, len(earned))
	for _, rec := range earned {
		counts[rec.AchievementID]++
	}

	var awarded []Record
	var evalErrs []error
	for _, def := range e.defs {
		if !triggeredBy(def, trigger) {
			continue
		}
		count := counts[def.ID]
		if count > 0 && !def.Repeatable {
			continue
		}
		if def.MaxAwards > 0 && count >= def.MaxAwards {
			continue
		}
		if missingPrereq(def, counts) {
			continue
		}

		fired, err := eval(def.Rule, ev, stats)
		if err != nil {
			// One malformed payload must not suppress unrelated awards;
			// the failure is reported per rule after the full pass.
			evalErrs = append(evalErrs, fmt.Errorf("achievement %q: %w", def.ID, err))
			e.logger.Warn("achievement rule evaluation failed",
				zap.Int64("user_id", userID),
				zap.String("achievement", def.ID),
				zap.Error(err))
			continue
		}
		if !fired {
			continue
		}

		rec := Record{
			UserID:        userID,
			AchievementID: def.ID,
			EarnedAt:      time.Now().UTC(),
			XPAwarded:     def.XPReward,
			AwardCount:    count + 1,
		}
		if err := e.ledger.Append(ctx, rec); err != nil {
			return awarded, fmt.Errorf("achievement %q: append: %w", def.ID, err)
		}
		counts[def.ID]++
		awarded = append(awarded, rec)
		e.logger.Info("achievement awarded",
			zap.Int64("user_id", userID),
			zap.String("achievement", def.ID),
			zap.Int("xp", def.XPReward))
	}
	return awarded, errors.Join(evalErrs...)
}

// Progress reports (current, target, description) for a count-based
// achievement, for UI display. Rules without partial progress report
// target 1 and current 0 or 1 depending on whether it was earned.
func (e *Engine) Progress(ctx context.Context, userID int64, id string, stats event.UserStats) (current, target int, description string, err error) {
	def, ok := e.byID[id]
	if !ok {
		return 0, 0, "", ErrUnknownAchievement
	}
	if cur, tgt, hasProgress := progress(def.Rule, stats); hasProgress {
		if cur > tgt {
			cur = tgt
		}
		return cur, tgt, def.Description, nil
	}
	n, err := e.ledger.Count(ctx, userID, id)
	if err != nil {
		return 0, 0, "", fmt.Errorf("achievement: count: %w", err)
	}
	if n > 0 {
		return 1, 1, def.Description, nil
	}
	return 0, 1, def.Description, nil
}

// List returns the user's full award ledger.
func (e *Engine) List(ctx context.Context, userID int64) ([]Record, error) {
	return e.ledger.List(ctx, userID)
}

// Definitions returns the catalogue (for display).
func (e *Engine) Definitions() []Definition {
	return e.defs
}

// Get returns one catalogue entry by ID.
func (e *Engine) Get(id string) (Definition, bool) {
	def, ok := e.byID[id]
	return def, ok
}

func triggeredBy(def Definition, trigger event.TriggerKind) bool {
	for _, t := range def.Triggers {
		if t == trigger {
			return true
		}
	}
	return false
}

func missingPrereq(def Definition, counts map[string]int) bool {
	for _, pre := range def.Prereqs {
		if counts[pre] == 0 {
			return true
		}
	}
	return false
}
