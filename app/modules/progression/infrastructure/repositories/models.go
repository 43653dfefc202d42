package progressiondb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// User is the engine's read-only view of a member row. The rest of the row
// is owned by the auth/profile subsystem; the engine only reads the flags
// that drive ranking exclusion.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID              sharedtypes.UserID `bun:"id,pk,type:uuid"`
	Email           string             `bun:"email"`
	IsSystemAccount bool               `bun:"is_system_account,notnull,default:false"`
}

// UserScoreState tracks one member's point counters and derived rank.
type UserScoreState struct {
	bun.BaseModel `bun:"table:user_score_states,alias:s"`

	UserID         sharedtypes.UserID `bun:"user_id,pk,type:uuid"`
	LifetimePoints int64              `bun:"lifetime_points,notnull,default:0"`
	SeasonPoints   int64              `bun:"season_points,notnull,default:0"`
	CurrentRankID  string             `bun:"current_rank_id"`
	UpdatedAt      time.Time          `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Rank is static reference data; ranks are totally ordered by PointsRequired.
type Rank struct {
	bun.BaseModel `bun:"table:ranks,alias:r"`

	ID             string `bun:"id,pk"`
	Name           string `bun:"name,notnull"`
	PointsRequired int64  `bun:"points_required,notnull"`
	Level          int    `bun:"level,notnull"`
}

// PointHistory is the append-only audit trail of every credit ever applied.
// Rows are never mutated or deleted.
type PointHistory struct {
	bun.BaseModel `bun:"table:point_history,alias:ph"`

	ID          int64                  `bun:"id,pk,autoincrement"`
	UserID      sharedtypes.UserID     `bun:"user_id,type:uuid,notnull"`
	Points      int64                  `bun:"points,notnull"` // final, multiplier-adjusted, signed
	ActionType  sharedtypes.ActionType `bun:"action_type,notnull"`
	Description string                 `bun:"description"`
	Metadata    map[string]any         `bun:"metadata,type:jsonb"`
	SeasonID    string                 `bun:"season_id"` // empty when no season was active
	CreatedAt   time.Time              `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Subscription is the engine's read-only view of the billing subsystem's
// subscription rows; only the tier of the active row is consumed.
type Subscription struct {
	bun.BaseModel `bun:"table:subscriptions,alias:sub"`

	ID        string             `bun:"id,pk"`
	UserID    sharedtypes.UserID `bun:"user_id,type:uuid,notnull"`
	Tier      string             `bun:"tier,notnull"`
	Status    string             `bun:"status,notnull"`
	CreatedAt time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// RankingEntry is one leaderboard row. Position is 1-based and contiguous
// after system-account exclusion.
type RankingEntry struct {
	Position int64              `bun:"position"`
	UserID   sharedtypes.UserID `bun:"user_id"`
	Points   int64              `bun:"points"`
}
