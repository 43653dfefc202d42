package progressiondb

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// Repository is the progression data access contract. Every method accepts a
// bun.IDB so callers can pass a transaction; nil falls back to the pooled DB.
type Repository interface {
	GetScoreState(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (*UserScoreState, error)
	EnsureScoreState(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) error
	IncrementPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*UserScoreState, error)
	AdjustPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*UserScoreState, error)
	ResetAllSeasonPoints(ctx context.Context, db bun.IDB) (int64, error)
	UpdateRank(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, rankID string) (bool, error)

	ListRanksDesc(ctx context.Context, db bun.IDB) ([]Rank, error)

	SavePointHistory(ctx context.Context, db bun.IDB, entry *PointHistory) error
	GetPointHistoryForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, limit int) ([]PointHistory, error)

	GetRanking(ctx context.Context, db bun.IDB, scope sharedtypes.RankingScope, limit int) ([]RankingEntry, error)

	GetActiveTier(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (string, error)
	UserExists(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error)
}

// Impl is the bun-backed Repository.
type Impl struct {
	db             *bun.DB
	reservedEmails []string
}

// NewRepository builds the progression repository. reservedEmails are the
// operational identities excluded from every ranking, alongside flagged
// system accounts.
func NewRepository(db *bun.DB, reservedEmails []string) *Impl {
	return &Impl{db: db, reservedEmails: reservedEmails}
}

var _ Repository = (*Impl)(nil)

func (r *Impl) idb(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}
