package seasondb

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrSeasonNotFound = errors.New("season not found")
	ErrSeasonOverlap  = errors.New("season window overlaps an existing season")
)

// Repository is the persistence port for season lifecycle and winner
// snapshots. Every method takes a bun.IDB so the rollover can run its
// steps inside one transaction; nil falls back to the pooled connection.
type Repository interface {
	CreateSeason(ctx context.Context, db bun.IDB, season *Season) error
	GetSeason(ctx context.Context, db bun.IDB, seasonID string) (*Season, error)
	GetActiveSeason(ctx context.Context, db bun.IDB) (*Season, error)
	ListSeasons(ctx context.Context, db bun.IDB) ([]Season, error)
	ListExpiredActive(ctx context.Context, db bun.IDB, now time.Time) ([]Season, error)
	FindActivatable(ctx context.Context, db bun.IDB, now time.Time) (*Season, error)
	FinishSeason(ctx context.Context, db bun.IDB, seasonID string) (bool, error)
	ActivateSeason(ctx context.Context, db bun.IDB, seasonID string) (bool, error)
	InsertWinners(ctx context.Context, db bun.IDB, winners []SeasonWinner) error
	ListWinners(ctx context.Context, db bun.IDB, seasonID string) ([]SeasonWinner, error)
}

type Impl struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Impl {
	return &Impl{db: db}
}

var _ Repository = (*Impl)(nil)

func (r *Impl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.db
}
