// Package sharedtypes holds the identifier and enum types crossing module
// boundaries.
package sharedtypes

// UserID is the opaque, lifetime-stable member identifier (a UUID string in
// practice; the engine never inspects it).
type UserID string

func (id UserID) String() string { return string(id) }

// ActionType is the closed enumeration of point-earning actions.
type ActionType string

const (
	ActionMedalReward       ActionType = "medal_reward"
	ActionAchievementReward ActionType = "achievement_reward"
	ActionSocialAction      ActionType = "social_action"
	ActionManualAdjustment  ActionType = "manual_adjustment"
)

// KnownActionTypes lists every recognized action type.
var KnownActionTypes = []ActionType{
	ActionMedalReward,
	ActionAchievementReward,
	ActionSocialAction,
	ActionManualAdjustment,
}

// Valid reports whether t is a recognized action type.
func (t ActionType) Valid() bool {
	for _, known := range KnownActionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RankingScope selects which point counter a ranking is ordered by.
type RankingScope string

const (
	ScopeLifetime RankingScope = "lifetime"
	ScopeSeason   RankingScope = "season"
)

// Valid reports whether s is a recognized ranking scope.
func (s RankingScope) Valid() bool {
	return s == ScopeLifetime || s == ScopeSeason
}

// AchievementScope controls how often an achievement can be granted.
type AchievementScope string

const (
	AchievementLifetime AchievementScope = "lifetime" // once ever
	AchievementMonthly  AchievementScope = "monthly"  // once per calendar month
)
