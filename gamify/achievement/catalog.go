package achievement

import "github.com/momentumhq/server/gamify/event"

// Catalog returns the built-in achievement catalogue: 24 achievements
// across 5 categories. IDs are stable; clients store them.
func Catalog() []Definition {
	taskTriggers := []event.TriggerKind{event.TriggerTaskCompleted}
	focusTriggers := []event.TriggerKind{event.TriggerFocusCompleted}
	anyTriggers := []event.TriggerKind{
		event.TriggerTaskCompleted, event.TriggerFocusCompleted,
		event.TriggerEnergyLogged, event.TriggerProgressUpdated,
	}

	return []Definition{
		// ── Getting Started ────────────────────────────────────────────
		{
			ID: "first_task", Title: "First Step", Description: "Complete your first task",
			Icon: "🎯", Category: CategoryGettingStarted, Rarity: RarityCommon, XPReward: 50,
			Triggers: taskTriggers, Rule: TaskCount{Target: 1},
		},
		{
			ID: "first_focus", Title: "In the Zone", Description: "Finish your first focus session",
			Icon: "⏱️", Category: CategoryGettingStarted, Rarity: RarityCommon, XPReward: 50,
			Triggers: focusTriggers, Rule: FocusSessionCount{Target: 1},
		},
		{
			ID: "tasks_10", Title: "Getting Things Done", Description: "Complete 10 tasks",
			Icon: "✅", Category: CategoryGettingStarted, Rarity: RarityCommon, XPReward: 100,
			Triggers: taskTriggers, Rule: TaskCount{Target: 10},
			Prereqs: []string{"first_task"},
		},
		{
			ID: "xp_500", Title: "Warming Up", Description: "Earn 500 XP",
			Icon: "⚡", Category: CategoryGettingStarted, Rarity: RarityCommon, XPReward: 75,
			Triggers: anyTriggers, Rule: TotalXP{Target: 500},
		},

		// ── Consistency ────────────────────────────────────────────────
		{
			ID: "streak_3", Title: "Momentum", Description: "Keep a 3-day streak",
			Icon: "🔥", Category: CategoryConsistency, Rarity: RarityCommon, XPReward: 100,
			Triggers: anyTriggers, Rule: StreakCount{Target: 3},
		},
		{
			ID: "streak_7", Title: "Week Warrior", Description: "Keep a 7-day streak",
			Icon: "🔥", Category: CategoryConsistency, Rarity: RarityUncommon, XPReward: 250,
			Triggers: anyTriggers, Rule: StreakCount{Target: 7},
			Prereqs: []string{"streak_3"},
		},
		{
			ID: "streak_14", Title: "Fortnight Force", Description: "Keep a 14-day streak",
			Icon: "📅", Category: CategoryConsistency, Rarity: RarityRare, XPReward: 500,
			Triggers: anyTriggers, Rule: StreakCount{Target: 14},
			Prereqs: []string{"streak_7"},
		},
		{
			ID: "streak_30", Title: "Monthly Machine", Description: "Keep a 30-day streak",
			Icon: "💪", Category: CategoryConsistency, Rarity: RarityEpic, XPReward: 1000,
			Triggers: anyTriggers, Rule: StreakCount{Target: 30},
			Prereqs: []string{"streak_14"},
		},
		{
			ID: "streak_100", Title: "Centurion", Description: "Keep a 100-day streak",
			Icon: "🏛️", Category: CategoryConsistency, Rarity: RarityLegendary, XPReward: 5000,
			Triggers: anyTriggers, Rule: StreakCount{Target: 100},
			Prereqs: []string{"streak_30"},
		},
		{
			ID: "daily_dozen", Title: "Daily Dozen", Description: "Complete 12 tasks in a single run",
			Icon: "🎲", Category: CategoryConsistency, Rarity: RarityUncommon, XPReward: 60,
			Triggers: taskTriggers, Rule: TaskCount{Target: 12},
			Repeatable: true, MaxAwards: 10,
		},

		// ── Focus ──────────────────────────────────────────────────────
		{
			ID: "focus_25", Title: "Pomodoro", Description: "Finish a 25-minute focus session",
			Icon: "🍅", Category: CategoryFocus, Rarity: RarityCommon, XPReward: 50,
			Triggers: focusTriggers, Rule: FocusDuration{Minutes: 25},
		},
		{
			ID: "focus_90", Title: "Deep Work", Description: "Finish a 90-minute focus session",
			Icon: "🧠", Category: CategoryFocus, Rarity: RarityRare, XPReward: 300,
			Triggers: focusTriggers, Rule: FocusDuration{Minutes: 90},
			Prereqs: []string{"focus_25"},
		},
		{
			ID: "focus_sessions_50", Title: "Focused Fifty", Description: "Finish 50 focus sessions",
			Icon: "🎧", Category: CategoryFocus, Rarity: RarityRare, XPReward: 500,
			Triggers: focusTriggers, Rule: FocusSessionCount{Target: 50},
		},
		{
			ID: "focus_sessions_200", Title: "Monk Mode", Description: "Finish 200 focus sessions",
			Icon: "🧘", Category: CategoryFocus, Rarity: RarityEpic, XPReward: 2000,
			Triggers: focusTriggers, Rule: FocusSessionCount{Target: 200},
			Prereqs: []string{"focus_sessions_50"},
		},

		// ── Quality ────────────────────────────────────────────────────
		{
			ID: "perfect_1", Title: "Flawless", Description: "Complete a task with perfect quality",
			Icon: "💎", Category: CategoryQuality, Rarity: RarityCommon, XPReward: 75,
			Triggers: taskTriggers, Rule: PerfectQuality{Target: 1},
		},
		{
			ID: "perfect_10", Title: "Perfectionist", Description: "10 perfect-quality completions",
			Icon: "✨", Category: CategoryQuality, Rarity: RarityRare, XPReward: 400,
			Triggers: taskTriggers, Rule: PerfectQuality{Target: 10},
			Prereqs: []string{"perfect_1"},
		},
		{
			ID: "perfect_50", Title: "Master Craftsman", Description: "50 perfect-quality completions",
			Icon: "🏆", Category: CategoryQuality, Rarity: RarityEpic, XPReward: 1500,
			Triggers: taskTriggers, Rule: PerfectQuality{Target: 50},
			Prereqs: []string{"perfect_10"},
		},

		// ── Dedication ─────────────────────────────────────────────────
		{
			ID: "early_bird", Title: "Early Bird", Description: "Complete something before 7 AM",
			Icon: "🌅", Category: CategoryDedication, Rarity: RarityUncommon, XPReward: 150,
			Triggers: taskTriggers, Rule: CompletionBefore{Hour: 7},
		},
		{
			ID: "night_owl", Title: "Night Owl", Description: "Complete something after 11 PM",
			Icon: "🦉", Category: CategoryDedication, Rarity: RarityUncommon, XPReward: 150,
			Triggers: taskTriggers, Rule: CompletionAfter{Hour: 23},
		},
		{
			ID: "tasks_100", Title: "Century Club", Description: "Complete 100 tasks",
			Icon: "💯", Category: CategoryDedication, Rarity: RarityRare, XPReward: 750,
			Triggers: taskTriggers, Rule: TaskCount{Target: 100},
			Prereqs: []string{"tasks_10"},
		},
		{
			ID: "tasks_1000", Title: "Task Master", Description: "Complete 1000 tasks",
			Icon: "⚙️", Category: CategoryDedication, Rarity: RarityLegendary, XPReward: 5000,
			Triggers: taskTriggers, Rule: TaskCount{Target: 1000},
			Prereqs: []string{"tasks_100"},
		},
		{
			ID: "xp_10000", Title: "Rising Star", Description: "Earn 10,000 XP",
			Icon: "🌟", Category: CategoryDedication, Rarity: RarityRare, XPReward: 500,
			Triggers: anyTriggers, Rule: TotalXP{Target: 10000},
			Prereqs: []string{"xp_500"},
		},
		{
			ID: "xp_100000", Title: "Legend", Description: "Earn 100,000 XP",
			Icon: "👑", Category: CategoryDedication, Rarity: RarityLegendary, XPReward: 10000,
			Triggers: anyTriggers, Rule: TotalXP{Target: 100000},
			Prereqs: []string{"xp_10000"},
		},
		{
			ID: "energy_aware", Title: "Self Aware", Description: "Keep a 30-day energy-log streak",
			Icon: "🔋", Category: CategoryDedication, Rarity: RarityUncommon, XPReward: 200,
			Triggers: []event.TriggerKind{event.TriggerEnergyLogged}, Rule: StreakCount{Target: 30},
		},
	}
}
