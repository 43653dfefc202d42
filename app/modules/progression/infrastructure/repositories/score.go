package progressiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// GetScoreState retrieves a member's score counters, nil when absent.
func (r *Impl) GetScoreState(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (*UserScoreState, error) {
	db = r.idb(db)
	state := new(UserScoreState)
	err := db.NewSelect().
		Model(state).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("progressiondb.GetScoreState: %w", err)
	}
	return state, nil
}

// EnsureScoreState creates the zeroed score row for a member if missing.
func (r *Impl) EnsureScoreState(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) error {
	db = r.idb(db)
	_, err := db.NewInsert().
		Model(&UserScoreState{UserID: userID}).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("progressiondb.EnsureScoreState: %w", err)
	}
	return nil
}

// IncrementPoints applies a positive credit in a single server-side
// expression and returns the updated counters. Reading the total and adding
// in application memory would lose concurrent updates; the increment stays
// in SQL.
func (r *Impl) IncrementPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*UserScoreState, error) {
	db = r.idb(db)
	state := new(UserScoreState)
	q := db.NewUpdate().
		Model(state).
		Set("lifetime_points = lifetime_points + ?", delta).
		Set("updated_at = now()").
		Where("user_id = ?", userID).
		Returning("*")
	if includeSeason {
		q = q.Set("season_points = season_points + ?", delta)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("progressiondb.IncrementPoints: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrScoreStateNotFound
	}
	return state, nil
}

// AdjustPoints applies a signed administrative correction, floored at zero
// on both counters.
func (r *Impl) AdjustPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, delta int64, includeSeason bool) (*UserScoreState, error) {
	db = r.idb(db)
	state := new(UserScoreState)
	q := db.NewUpdate().
		Model(state).
		Set("lifetime_points = GREATEST(lifetime_points + ?, 0)", delta).
		Set("updated_at = now()").
		Where("user_id = ?", userID).
		Returning("*")
	if includeSeason {
		q = q.Set("season_points = GREATEST(season_points + ?, 0)", delta)
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("progressiondb.AdjustPoints: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrScoreStateNotFound
	}
	return state, nil
}

// ResetAllSeasonPoints zeroes the season counter for the whole member base
// in one statement. Lifetime counters and achievements are untouched.
func (r *Impl) ResetAllSeasonPoints(ctx context.Context, db bun.IDB) (int64, error) {
	db = r.idb(db)
	res, err := db.NewUpdate().
		Model((*UserScoreState)(nil)).
		Set("season_points = 0").
		Set("updated_at = now()").
		Where("season_points <> 0").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("progressiondb.ResetAllSeasonPoints: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("progressiondb.ResetAllSeasonPoints: rows affected: %w", err)
	}
	return rows, nil
}

// UpdateRank sets the member's rank only when it differs; reports whether a
// row changed.
func (r *Impl) UpdateRank(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, rankID string) (bool, error) {
	db = r.idb(db)
	res, err := db.NewUpdate().
		Model((*UserScoreState)(nil)).
		Set("current_rank_id = ?", rankID).
		Set("updated_at = now()").
		Where("user_id = ?", userID).
		Where("current_rank_id IS DISTINCT FROM ?", rankID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("progressiondb.UpdateRank: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("progressiondb.UpdateRank: rows affected: %w", err)
	}
	return rows > 0, nil
}

// UserExists reports whether a member row exists.
func (r *Impl) UserExists(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error) {
	db = r.idb(db)
	exists, err := db.NewSelect().
		Model((*User)(nil)).
		Where("id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("progressiondb.UserExists: %w", err)
	}
	return exists, nil
}
