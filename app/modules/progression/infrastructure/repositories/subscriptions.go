package progressiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// GetActiveTier returns the member's current subscription tier, or empty
// when no active subscription exists. Absence is a valid, common answer,
// not an error.
func (r *Impl) GetActiveTier(ctx context.Context, db bun.IDB, userID sharedtypes.UserID) (string, error) {
	db = r.idb(db)
	sub := new(Subscription)
	err := db.NewSelect().
		Model(sub).
		Where("user_id = ?", userID).
		Where("status = 'active'").
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("progressiondb.GetActiveTier: %w", err)
	}
	return sub.Tier, nil
}
