// Package reward implements the variable-ratio reward schedule layered on
// top of the deterministic XP score.
package reward

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rand is the injectable randomness source. Production uses a seeded
// math/rand generator; tests inject a fixed sequence.
type Rand interface {
	// Float64 returns the next value in [0,1).
	Float64() float64
}

// lockedRand guards a *rand.Rand for concurrent callers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

// NewRand returns a concurrency-safe Rand seeded from the clock.
func NewRand() Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRand returns a concurrency-safe Rand with a fixed seed.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

// Config holds the reward knobs.
type Config struct {
	MysteryChance      float64 `mapstructure:"mystery_chance"`
	PowerHourMult      float64 `mapstructure:"power_hour_mult"`
	LowEnergyMult      float64 `mapstructure:"low_energy_mult"`
	LowEnergyThreshold int     `mapstructure:"low_energy_threshold"` // percent
}

// Mystery is the content of one mystery-box unlock.
type Mystery struct {
	ID       string        `json:"id"`
	Kind     MysteryKind   `json:"kind"`
	Label    string        `json:"label"`
	XP       int           `json:"xp,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Result is the outcome of one reward roll. Transient; the engine does not
// persist it.
type Result struct {
	BaseXP          int      `json:"base_xp"`
	Multiplier      float64  `json:"multiplier"`
	TotalXP         int      `json:"total_xp"`
	Tier            Tier     `json:"tier"`
	BonusReason     string   `json:"bonus_reason"`
	Celebration     string   `json:"celebration_type"`
	SoundEffect     string   `json:"sound_effect"`
	StreakBonusXP   int      `json:"streak_bonus_xp"`
	MysteryUnlocked bool     `json:"mystery_unlocked"`
	MysteryContent  *Mystery `json:"mystery_content,omitempty"`
}

// RollOptions carries the per-call context for a full roll.
type RollOptions struct {
	StreakDays      int
	PowerHourActive bool
	EnergyPct       *int // nil = not reported
}

// Service draws rewards. Safe for concurrent use as long as the injected
// Rand is.
type Service struct {
	cfg    Config
	rng    Rand
	logger *zap.Logger
}

// NewService validates the weighted tables and creates a Service.
func NewService(cfg Config, rng Rand, logger *zap.Logger) (*Service, error) {
	if rng == nil {
		rng = NewRand()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MysteryChance == 0 {
		cfg.MysteryChance = 0.15
	}
	if cfg.MysteryChance < 0 || cfg.MysteryChance > 1 {
		return nil, fmt.Errorf("reward: mystery chance must be in [0,1], got %f", cfg.MysteryChance)
	}
	if cfg.PowerHourMult == 0 {
		cfg.PowerHourMult = 2.0
	}
	if cfg.LowEnergyMult == 0 {
		cfg.LowEnergyMult = 1.5
	}
	if cfg.LowEnergyThreshold == 0 {
		cfg.LowEnergyThreshold = 30
	}
	if err := checkWeights("multiplier", weightsOf(multiplierTable)); err != nil {
		return nil, err
	}
	if err := checkWeights("micro-step", weightsOf(microStepTable)); err != nil {
		return nil, err
	}
	var mw []float64
	for _, e := range mysteryTable {
		mw = append(mw, e.Weight)
	}
	if err := checkWeights("mystery", mw); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, rng: rng, logger: logger}, nil
}

func weightsOf(table []drawEntry) []float64 {
	w := make([]float64, len(table))
	for i, e := range table {
		w[i] = e.Weight
	}
	return w
}

func checkWeights(name string, weights []float64) error {
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("reward: %s table has negative weight", name)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("reward: %s table weights sum to %f, want 1.0", name, sum)
	}
	return nil
}

// Roll applies the full variable-ratio schedule to a base XP amount.
func (s *Service) Roll(baseXP int, opts RollOptions) Result {
	draw := pick(s.rng.Float64(), multiplierTable)

	mult := draw.Multiplier
	reason := draw.Reason

	// Streak-tier layer.
	var flatBonus int
	for _, tier := range streakTiers {
		if opts.StreakDays >= tier.MinDays {
			mult *= tier.Multiplier
			flatBonus = tier.FlatBonus
			break
		}
	}

	// Power hour replaces the draw's narrative, not just adds to it.
	if opts.PowerHourActive {
		mult *= s.cfg.PowerHourMult
		reason = "Power Hour! All XP doubled"
	}
	if opts.EnergyPct != nil && *opts.EnergyPct < s.cfg.LowEnergyThreshold {
		mult *= s.cfg.LowEnergyMult
		reason += " • Low-energy effort bonus"
	}

	// Presentation follows the multiplier the user actually receives,
	// after the streak, power-hour, and energy layers.
	tier := tierForMultiplier(mult)
	pres := tierPresentation[tier]

	res := Result{
		BaseXP:        baseXP,
		Multiplier:    mult,
		TotalXP:       int(float64(baseXP)*mult) + flatBonus,
		Tier:          tier,
		BonusReason:   reason,
		Celebration:   pres.Celebration,
		SoundEffect:   pres.Sound,
		StreakBonusXP: flatBonus,
	}

	// Independent mystery-box roll. A miss is a normal outcome.
	if s.rng.Float64() < s.cfg.MysteryChance {
		res.MysteryUnlocked = true
		res.MysteryContent = s.drawMystery()
	}
	return res
}

// MicroStep applies the smaller-variance schedule used for micro-step
// completion. No streak layer, no mystery roll.
func (s *Service) MicroStep(baseXP int) Result {
	draw := pick(s.rng.Float64(), microStepTable)
	pres := tierPresentation[draw.Tier]
	return Result{
		BaseXP:      baseXP,
		Multiplier:  draw.Multiplier,
		TotalXP:     int(float64(baseXP) * draw.Multiplier),
		Tier:        draw.Tier,
		BonusReason: draw.Reason,
		Celebration: pres.Celebration,
		SoundEffect: pres.Sound,
	}
}

// DailyCheckIn returns the deterministic check-in reward for the current
// streak length. Not randomized.
func (s *Service) DailyCheckIn(baseXP, streakDays int) Result {
	mult := 1.0
	for _, tier := range checkInMultipliers {
		if streakDays >= tier.MinDays {
			mult = tier.Multiplier
			break
		}
	}
	tier := tierForMultiplier(mult)
	pres := tierPresentation[tier]
	return Result{
		BaseXP:      baseXP,
		Multiplier:  mult,
		TotalXP:     int(float64(baseXP) * mult),
		Tier:        tier,
		BonusReason: fmt.Sprintf("Day %d check-in", streakDays),
		Celebration: pres.Celebration,
		SoundEffect: pres.Sound,
	}
}

// pick samples a weighted table: the first bucket whose cumulative weight
// exceeds the draw wins; falls back to the first (1×) bucket.
func pick(draw float64, table []drawEntry) drawEntry {
	cum := 0.0
	for _, e := range table {
		cum += e.Weight
		if draw < cum {
			return e
		}
	}
	return table[0]
}

func (s *Service) drawMystery() *Mystery {
	draw := s.rng.Float64()
	cum := 0.0
	entry := mysteryTable[0]
	for _, e := range mysteryTable {
		cum += e.Weight
		if draw < cum {
			entry = e
			break
		}
	}
	return &Mystery{
		ID:       uuid.New().String(),
		Kind:     entry.Kind,
		Label:    entry.Label,
		XP:       entry.XP,
		Duration: entry.Duration,
	}
}
