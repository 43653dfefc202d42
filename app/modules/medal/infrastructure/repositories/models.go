package medaldb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// Achievement kinds. Medals pay out as medal_reward in point history,
// feats as achievement_reward.
const (
	KindMedal = "medal"
	KindFeat  = "feat"
)

// Achievement is a catalog entry. Rows are seeded by migrations and
// managed out of band; the engine only reads them.
type Achievement struct {
	bun.BaseModel `bun:"table:achievements,alias:a"`

	ID          string                       `bun:"id,pk"`
	Name        string                       `bun:"name,notnull"`
	Description string                       `bun:"description"`
	Kind        string                       `bun:"kind,notnull"`
	Scope       sharedtypes.AchievementScope `bun:"scope,notnull"`
	Points      int64                        `bun:"points,notnull"`
	Active      bool                         `bun:"active,notnull,default:true"`
	CreatedAt   time.Time                    `bun:"created_at,notnull,default:current_timestamp"`
}

// UserAchievement records one grant. Period is "" for lifetime
// achievements and "YYYY-MM" for monthly ones; the unique index on
// (user_id, achievement_id, period) is what makes grants idempotent.
type UserAchievement struct {
	bun.BaseModel `bun:"table:user_achievements,alias:ua"`

	ID            int64              `bun:"id,pk,autoincrement"`
	UserID        sharedtypes.UserID `bun:"user_id,notnull"`
	AchievementID string             `bun:"achievement_id,notnull"`
	Period        string             `bun:"period,notnull,default:''"`
	GrantedAt     time.Time          `bun:"granted_at,notnull,default:current_timestamp"`
}
