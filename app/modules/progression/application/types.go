package progressionservice

import (
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// AwardInput is the point award contract.
type AwardInput struct {
	UserID      sharedtypes.UserID
	BaseAmount  int64
	ActionType  sharedtypes.ActionType
	Description string
	Metadata    map[string]any
}

// AwardOutput reports a committed award.
type AwardOutput struct {
	FinalAmount   int64
	PreviousTotal int64
	NewTotal      int64
	Multiplier    float64
	Tier          string
	SeasonID      string
	RankChange    *RankChange
}

// RankChange reports a rank recomputation. OldRankID equals NewRankID when
// nothing moved.
type RankChange struct {
	OldRankID   string
	NewRankID   string
	NewRankName string
	Changed     bool
}

// AdjustOutput reports a committed administrative correction.
type AdjustOutput struct {
	Delta      int64
	NewTotal   int64
	RankChange *RankChange
}

// HistoryEntry is one audit trail row as exposed to callers.
type HistoryEntry struct {
	Points      int64
	ActionType  sharedtypes.ActionType
	Description string
	Metadata    map[string]any
	SeasonID    string
	CreatedAt   string
}

// RankingRow is one leaderboard row as exposed to callers.
type RankingRow struct {
	Position int64
	UserID   sharedtypes.UserID
	Points   int64
}
