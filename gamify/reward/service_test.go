package reward

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand replays a fixed sequence of draws.
type scriptedRand struct {
	vals []float64
	i    int
}

func (s *scriptedRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func newTestService(t *testing.T, rng Rand) *Service {
	t.Helper()
	svc, err := NewService(Config{}, rng, nil)
	require.NoError(t, err)
	return svc
}

func TestNewService_Defaults(t *testing.T) {
	svc, err := NewService(Config{}, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestNewService_RejectsBadMysteryChance(t *testing.T) {
	_, err := NewService(Config{MysteryChance: 1.5}, nil, nil)
	assert.Error(t, err)
	_, err = NewService(Config{MysteryChance: -0.1}, nil, nil)
	assert.Error(t, err)
}

func TestRoll_BaseBucket(t *testing.T) {
	// First draw lands in the 1x bucket, second misses the mystery roll.
	svc := newTestService(t, &scriptedRand{vals: []float64{0.0, 0.99}})

	res := svc.Roll(100, RollOptions{})
	assert.Equal(t, 100, res.BaseXP)
	assert.Equal(t, 100, res.TotalXP)
	assert.Equal(t, TierNormal, res.Tier)
	assert.Equal(t, "Solid work", res.BonusReason)
	assert.False(t, res.MysteryUnlocked)
}

func TestRoll_CriticalHit(t *testing.T) {
	svc := newTestService(t, &scriptedRand{vals: []float64{0.9999, 0.99}})

	res := svc.Roll(100, RollOptions{})
	assert.Equal(t, 1000, res.TotalXP)
	assert.Equal(t, TierCriticalHit, res.Tier)
	assert.Equal(t, "CRITICAL HIT! 10x XP!", res.BonusReason)
	assert.Equal(t, "fireworks_gold", res.Celebration)
}

func TestRoll_TierBoundaries(t *testing.T) {
	// Cumulative weights: .50 / .75 / .90 / .97 / .995 / 1.0
	cases := []struct {
		draw float64
		mult float64
		tier Tier
	}{
		{0.49, 1, TierNormal},
		{0.50, 2, TierNice},
		{0.74, 2, TierNice},
		{0.75, 3, TierGreat},
		{0.90, 4, TierAmazing},
		{0.97, 5, TierIncredible},
		{0.995, 10, TierCriticalHit},
	}
	for _, tc := range cases {
		svc := newTestService(t, &scriptedRand{vals: []float64{tc.draw, 0.99}})
		res := svc.Roll(10, RollOptions{})
		assert.Equal(t, tc.tier, res.Tier, "draw %f", tc.draw)
		assert.Equal(t, int(10*tc.mult), res.TotalXP, "draw %f", tc.draw)
	}
}

func TestRoll_StreakTierLayer(t *testing.T) {
	cases := []struct {
		days  int
		mult  float64
		bonus int
	}{
		{0, 1.0, 0},
		{3, 1.1, 6},
		{7, 1.25, 14},
		{14, 1.5, 28},
		{30, 2.0, 60},
		{100, 3.0, 200},
	}
	for _, tc := range cases {
		svc := newTestService(t, &scriptedRand{vals: []float64{0.0, 0.99}})
		res := svc.Roll(100, RollOptions{StreakDays: tc.days})
		assert.Equal(t, int(100*tc.mult)+tc.bonus, res.TotalXP, "days %d", tc.days)
		assert.Equal(t, tc.bonus, res.StreakBonusXP, "days %d", tc.days)
	}
}

func TestRoll_PowerHour(t *testing.T) {
	svc := newTestService(t, &scriptedRand{vals: []float64{0.0, 0.99}})

	res := svc.Roll(100, RollOptions{PowerHourActive: true})
	assert.Equal(t, 200, res.TotalXP)
	assert.Equal(t, "Power Hour! All XP doubled", res.BonusReason)
}

func TestRoll_TierFollowsFinalMultiplier(t *testing.T) {
	// A 1x draw layered with the 30-day streak tier lands on a 2.0
	// multiplier; the presentation must match what the user receives,
	// not the raw draw.
	svc := newTestService(t, &scriptedRand{vals: []float64{0.0, 0.99}})
	res := svc.Roll(100, RollOptions{StreakDays: 30})
	assert.InDelta(t, 2.0, res.Multiplier, 1e-9)
	assert.Equal(t, TierNice, res.Tier)
	assert.Equal(t, "sparkle", res.Celebration)

	// Power hour on top of a 2x draw reaches the 4x presentation.
	svc = newTestService(t, &scriptedRand{vals: []float64{0.60, 0.99}})
	res = svc.Roll(100, RollOptions{PowerHourActive: true})
	assert.InDelta(t, 4.0, res.Multiplier, 1e-9)
	assert.Equal(t, TierAmazing, res.Tier)
}

func TestRoll_LowEnergyBonus(t *testing.T) {
	low := 20
	svc := newTestService(t, &scriptedRand{vals: []float64{0.0, 0.99}})
	res := svc.Roll(100, RollOptions{EnergyPct: &low})
	assert.Equal(t, 150, res.TotalXP)
	assert.Contains(t, res.BonusReason, "Low-energy")

	// At or above the threshold: no bonus.
	ok := 30
	svc = newTestService(t, &scriptedRand{vals: []float64{0.0, 0.99}})
	res = svc.Roll(100, RollOptions{EnergyPct: &ok})
	assert.Equal(t, 100, res.TotalXP)
}

func TestRoll_MysteryHit(t *testing.T) {
	// Multiplier draw, mystery hit, mystery kind draw (0.0 → xp_bonus).
	svc := newTestService(t, &scriptedRand{vals: []float64{0.0, 0.10, 0.0}})

	res := svc.Roll(100, RollOptions{})
	require.True(t, res.MysteryUnlocked)
	require.NotNil(t, res.MysteryContent)
	assert.Equal(t, MysteryXPBonus, res.MysteryContent.Kind)
	assert.Equal(t, 50, res.MysteryContent.XP)
	assert.NotEmpty(t, res.MysteryContent.ID)
}

func TestRoll_MysteryShieldDraw(t *testing.T) {
	// Kind cumulative weights: .40 / .65 / .80 / .90 / 1.0
	svc := newTestService(t, &scriptedRand{vals: []float64{0.0, 0.10, 0.95}})

	res := svc.Roll(100, RollOptions{})
	require.True(t, res.MysteryUnlocked)
	assert.Equal(t, MysteryStreakShield, res.MysteryContent.Kind)
}

func TestMicroStep_Buckets(t *testing.T) {
	// Cumulative weights: .70 / .90 / 1.0
	cases := []struct {
		draw float64
		mult float64
	}{
		{0.0, 1},
		{0.75, 2},
		{0.95, 3},
	}
	for _, tc := range cases {
		svc := newTestService(t, &scriptedRand{vals: []float64{tc.draw}})
		res := svc.MicroStep(5)
		assert.Equal(t, int(5*tc.mult), res.TotalXP, "draw %f", tc.draw)
		assert.False(t, res.MysteryUnlocked, "micro-steps never roll the mystery box")
	}
}

func TestDailyCheckIn_Deterministic(t *testing.T) {
	svc := newTestService(t, &scriptedRand{vals: []float64{0.5}})

	cases := []struct {
		days int
		mult float64
	}{
		{0, 1.0},
		{1, 1.0},
		{3, 1.2},
		{7, 1.5},
		{14, 2.0},
		{30, 3.0},
		{100, 5.0},
	}
	for _, tc := range cases {
		res := svc.DailyCheckIn(10, tc.days)
		assert.Equal(t, int(10*tc.mult), res.TotalXP, "days %d", tc.days)
	}

	// Same inputs, same output: the check-in path never draws.
	a := svc.DailyCheckIn(10, 7)
	b := svc.DailyCheckIn(10, 7)
	assert.Equal(t, a, b)
}

func TestRoll_SeededDistribution(t *testing.T) {
	svc := newTestService(t, NewSeededRand(12345))

	const n = 100000
	counts := map[Tier]int{}
	mysteries := 0
	for i := 0; i < n; i++ {
		res := svc.Roll(100, RollOptions{})
		counts[res.Tier]++
		if res.MysteryUnlocked {
			mysteries++
		}
	}

	assert.InDelta(t, 0.50, float64(counts[TierNormal])/n, 0.02)
	assert.InDelta(t, 0.25, float64(counts[TierNice])/n, 0.02)
	assert.InDelta(t, 0.15, float64(counts[TierGreat])/n, 0.02)
	assert.InDelta(t, 0.07, float64(counts[TierAmazing])/n, 0.01)
	assert.InDelta(t, 0.025, float64(counts[TierIncredible])/n, 0.01)
	assert.InDelta(t, 0.005, float64(counts[TierCriticalHit])/n, 0.005)
	assert.InDelta(t, 0.15, float64(mysteries)/n, 0.02)
}

func TestPick_FallsBackToFirstBucket(t *testing.T) {
	// A draw of exactly 1.0 can escape every cumulative bucket; the 1x
	// entry is the safe default.
	e := pick(1.0, multiplierTable)
	assert.Equal(t, 1.0, e.Multiplier)
}
