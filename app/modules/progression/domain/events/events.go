package progressionevents

import (
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// Topics published by the progression module.
const (
	TopicPointsAwarded = "progression.points.awarded"
	TopicRankChanged   = "progression.rank.changed"
)

// PointsAwardedPayload announces a committed point award.
type PointsAwardedPayload struct {
	UserID        sharedtypes.UserID     `json:"user_id"`
	ActionType    sharedtypes.ActionType `json:"action_type"`
	BaseAmount    int64                  `json:"base_amount"`
	FinalAmount   int64                  `json:"final_amount"`
	Multiplier    float64                `json:"multiplier"`
	Tier          string                 `json:"tier,omitempty"`
	PreviousTotal int64                  `json:"previous_total"`
	NewTotal      int64                  `json:"new_total"`
	Description   string                 `json:"description,omitempty"`
}

// RankChangedPayload announces a rank recomputation that changed the rank.
type RankChangedPayload struct {
	UserID         sharedtypes.UserID `json:"user_id"`
	OldRankID      string             `json:"old_rank_id"`
	NewRankID      string             `json:"new_rank_id"`
	NewRankName    string             `json:"new_rank_name"`
	LifetimePoints int64              `json:"lifetime_points"`
}
