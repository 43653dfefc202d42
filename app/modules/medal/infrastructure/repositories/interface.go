package medaldb

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

var ErrAchievementNotFound = errors.New("achievement not found")

// Repository is the persistence port for the achievement catalog and
// grant ledger. Every method takes a bun.IDB so callers can pass a
// transaction; nil falls back to the pooled connection.
type Repository interface {
	GetAchievement(ctx context.Context, db bun.IDB, achievementID string) (*Achievement, error)
	ListAchievements(ctx context.Context, db bun.IDB, activeOnly bool) ([]Achievement, error)
	InsertGrant(ctx context.Context, db bun.IDB, grant *UserAchievement) (bool, error)
	ListGrantsForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) ([]UserAchievement, error)
	UserExists(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error)
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
