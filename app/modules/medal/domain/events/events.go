package medalevents

import (
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// TopicMedalGranted announces a first-time achievement grant.
const TopicMedalGranted = "medal.granted"

// MedalGrantedPayload carries everything the notification and chat
// projections need; consumers never re-query the grant.
type MedalGrantedPayload struct {
	UserID          sharedtypes.UserID `json:"user_id"`
	AchievementID   string             `json:"achievement_id"`
	AchievementName string             `json:"achievement_name"`
	Description     string             `json:"description,omitempty"`
	PointsAwarded   int64              `json:"points_awarded"`
	OldRankID       string             `json:"old_rank_id,omitempty"`
	NewRankID       string             `json:"new_rank_id,omitempty"`
	NewRankName     string             `json:"new_rank_name,omitempty"`
	RankChanged     bool               `json:"rank_changed"`
}
