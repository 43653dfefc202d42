package seasondb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// Season lifecycle. Transitions only move forward; the conditional
// UPDATEs in this package are what enforce that under concurrency.
const (
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusFinished  = "finished"
)

// Season is one competition window. A partial unique index guarantees at
// most one row with status 'active'.
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:s"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name      string    `bun:"name,notnull"`
	StartsAt  time.Time `bun:"starts_at,notnull"`
	EndsAt    time.Time `bun:"ends_at,notnull"`
	Status    string    `bun:"status,notnull,default:'scheduled'"`
	// FinishedAt is set once by the winning FinishSeason transition and
	// never touched again, unlike UpdatedAt.
	FinishedAt *time.Time `bun:"finished_at"`
	CreatedAt  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// SeasonWinner freezes one podium position at rollover time. Points is the
// season total at the moment the season finished, immune to later awards.
type SeasonWinner struct {
	bun.BaseModel `bun:"table:season_winners,alias:sw"`

	ID        int64              `bun:"id,pk,autoincrement"`
	SeasonID  string             `bun:"season_id,notnull,type:uuid"`
	UserID    sharedtypes.UserID `bun:"user_id,notnull"`
	Position  int64              `bun:"position,notnull"`
	Points    int64              `bun:"points,notnull"`
	CreatedAt time.Time          `bun:"created_at,notnull,default:current_timestamp"`
}
