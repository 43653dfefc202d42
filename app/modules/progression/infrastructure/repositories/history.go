package progressiondb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// SavePointHistory appends one audit trail entry.
func (r *Impl) SavePointHistory(ctx context.Context, db bun.IDB, entry *PointHistory) error {
	db = r.idb(db)
	_, err := db.NewInsert().Model(entry).Exec(ctx)
	if err != nil {
		return fmt.Errorf("progressiondb.SavePointHistory: %w", err)
	}
	return nil
}

// GetPointHistoryForUser retrieves a member's history, newest first.
func (r *Impl) GetPointHistoryForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, limit int) ([]PointHistory, error) {
	db = r.idb(db)
	var history []PointHistory
	q := db.NewSelect().
		Model(&history).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("progressiondb.GetPointHistoryForUser: %w", err)
	}
	return history, nil
}
