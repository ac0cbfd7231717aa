package entity

// RuleKind selects how an achievement's requirement is measured
type RuleKind string

const (
	RuleConsecutiveDays    RuleKind = "consecutive_days"    // days in a row with every habit done
	RuleSimultaneousHabits RuleKind = "simultaneous_habits" // habits held at the same time
	RuleCumulativeDays     RuleKind = "cumulative_days"     // days with at least one habit done
)

// Achievement is a static catalog entry
type Achievement struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Emoji       string   `json:"emoji" yaml:"emoji"`
	Description string   `json:"description" yaml:"description"`
	Requirement int      `json:"requirement" yaml:"requirement"`
	Rule        RuleKind `json:"rule" yaml:"rule"`
}

// AchievementState is a user's derived standing against one achievement
type AchievementState struct {
	Progress   int   `json:"progress"`
	Unlocked   bool  `json:"isUnlocked"`
	UnlockedAt *Date `json:"unlockedAt"`
}

// AchievementStatus joins a catalog entry with the user's state, for display
type AchievementStatus struct {
	Achievement
	AchievementState
}

// UnlockedAchievement is a persisted unlock record
type UnlockedAchievement struct {
	UserID        string
	AchievementID string
	UnlockedAt    Date
}
