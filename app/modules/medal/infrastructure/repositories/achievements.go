package medaldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

func (r *Impl) GetAchievement(ctx context.Context, db bun.IDB, achievementID string) (*Achievement, error) {
	ach := new(Achievement)
	err := r.idb(db).NewSelect().
		Model(ach).
		Where("a.id = ?", achievementID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAchievementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("medaldb.GetAchievement: %w", err)
	}
	return ach, nil
}

func (r *Impl) ListAchievements(ctx context.Context, db bun.IDB, activeOnly bool) ([]Achievement, error) {
	var achs []Achievement
	q := r.idb(db).NewSelect().
		Model(&achs).
		Order("a.name ASC")
	if activeOnly {
		q = q.Where("a.active = TRUE")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("medaldb.ListAchievements: %w", err)
	}
	return achs, nil
}

// InsertGrant attempts the grant and reports whether a row was
// actually written. ON CONFLICT DO NOTHING against the unique
// (user_id, achievement_id, period) index is the idempotency
// mechanism: a duplicate grant is a clean false, never an error.
func (r *Impl) InsertGrant(ctx context.Context, db bun.IDB, grant *UserAchievement) (bool, error) {
	res, err := r.idb(db).NewInsert().
		Model(grant).
		On("CONFLICT (user_id, achievement_id, period) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("medaldb.InsertGrant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("medaldb.InsertGrant: rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *Impl) ListGrantsForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) ([]UserAchievement, error) {
	var grants []UserAchievement
	err := r.idb(db).NewSelect().
		Model(&grants).
		Where("ua.user_id = ?", userID).
		Order("ua.granted_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("medaldb.ListGrantsForUser: %w", err)
	}
	return grants, nil
}

func (r *Impl) UserExists(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (bool, error) {
	exists, err := r.idb(db).NewSelect().
		Table("users").
		Where("id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("medaldb.UserExists: %w", err)
	}
	return exists, nil
}
