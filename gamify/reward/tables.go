package reward

import "time"

// Tier is a named presentation bucket derived from the sampled multiplier.
type Tier string

const (
	TierNormal      Tier = "normal"
	TierNice        Tier = "nice"
	TierGreat       Tier = "great"
	TierAmazing     Tier = "amazing"
	TierIncredible  Tier = "incredible"
	TierCriticalHit Tier = "critical_hit"
)

// drawEntry is one bucket of a weighted multiplier table.
type drawEntry struct {
	Weight     float64
	Multiplier float64
	Tier       Tier
	Reason     string
}

// multiplierTable is the variable-ratio schedule for full activities.
// Weights must sum to 1.0; validated at service construction.
var multiplierTable = []drawEntry{
	{Weight: 0.50, Multiplier: 1, Tier: TierNormal, Reason: "Solid work"},
	{Weight: 0.25, Multiplier: 2, Tier: TierNice, Reason: "Double XP!"},
	{Weight: 0.15, Multiplier: 3, Tier: TierGreat, Reason: "Triple XP!"},
	{Weight: 0.07, Multiplier: 4, Tier: TierAmazing, Reason: "Quadruple XP!"},
	{Weight: 0.025, Multiplier: 5, Tier: TierIncredible, Reason: "5x jackpot!"},
	{Weight: 0.005, Multiplier: 10, Tier: TierCriticalHit, Reason: "CRITICAL HIT! 10x XP!"},
}

// microStepTable is the smaller-variance schedule for micro-step completion.
var microStepTable = []drawEntry{
	{Weight: 0.70, Multiplier: 1, Tier: TierNormal, Reason: "Step done"},
	{Weight: 0.20, Multiplier: 2, Tier: TierNice, Reason: "Double step bonus!"},
	{Weight: 0.10, Multiplier: 3, Tier: TierGreat, Reason: "Triple step bonus!"},
}

// streakTier is a streak-length reward bracket. Ordered longest first;
// the first matching bracket applies. FlatBonus is threshold days × 2.
type streakTier struct {
	MinDays    int
	Multiplier float64
	FlatBonus  int
}

var streakTiers = []streakTier{
	{MinDays: 100, Multiplier: 3.0, FlatBonus: 200},
	{MinDays: 30, Multiplier: 2.0, FlatBonus: 60},
	{MinDays: 14, Multiplier: 1.5, FlatBonus: 28},
	{MinDays: 7, Multiplier: 1.25, FlatBonus: 14},
	{MinDays: 3, Multiplier: 1.1, FlatBonus: 6},
}

// checkInMultipliers is the deterministic daily check-in schedule: fixed
// escalating multipliers by current streak length, not randomized.
var checkInMultipliers = []streakTier{
	{MinDays: 100, Multiplier: 5.0},
	{MinDays: 30, Multiplier: 3.0},
	{MinDays: 14, Multiplier: 2.0},
	{MinDays: 7, Multiplier: 1.5},
	{MinDays: 3, Multiplier: 1.2},
	{MinDays: 0, Multiplier: 1.0},
}

// MysteryKind is the category of a mystery-box unlock.
type MysteryKind string

const (
	MysteryXPBonus      MysteryKind = "xp_bonus"
	MysteryBadge        MysteryKind = "badge"
	MysteryTheme        MysteryKind = "theme"
	MysteryPowerHour    MysteryKind = "power_hour"
	MysteryStreakShield MysteryKind = "streak_shield"
)

// mysteryEntry is one bucket of the mystery-box kind table.
type mysteryEntry struct {
	Weight   float64
	Kind     MysteryKind
	Label    string
	XP       int
	Duration time.Duration
}

var mysteryTable = []mysteryEntry{
	{Weight: 0.40, Kind: MysteryXPBonus, Label: "Bonus XP drop", XP: 50},
	{Weight: 0.25, Kind: MysteryBadge, Label: "Cosmetic badge unlocked"},
	{Weight: 0.15, Kind: MysteryTheme, Label: "New theme unlocked"},
	{Weight: 0.10, Kind: MysteryPowerHour, Label: "Power Hour granted", Duration: time.Hour},
	{Weight: 0.10, Kind: MysteryStreakShield, Label: "Streak shield granted"},
}

// presentation maps a tier to its celebration and sound labels. Labels are
// opaque to the engine; the client owns the assets.
type presentation struct {
	Celebration string
	Sound       string
}

var tierPresentation = map[Tier]presentation{
	TierNormal:      {Celebration: "none", Sound: "complete"},
	TierNice:        {Celebration: "sparkle", Sound: "chime"},
	TierGreat:       {Celebration: "confetti", Sound: "fanfare_short"},
	TierAmazing:     {Celebration: "confetti_burst", Sound: "fanfare"},
	TierIncredible:  {Celebration: "fireworks", Sound: "jackpot"},
	TierCriticalHit: {Celebration: "fireworks_gold", Sound: "critical"},
}

// tierForMultiplier maps a final multiplier back to a presentation tier.
// Fixed lookup over the draw multipliers, not computed.
func tierForMultiplier(mult float64) Tier {
	switch {
	case mult >= 10:
		return TierCriticalHit
	case mult >= 5:
		return TierIncredible
	case mult >= 4:
		return TierAmazing
	case mult >= 3:
		return TierGreat
	case mult >= 2:
		return TierNice
	}
	return TierNormal
}
