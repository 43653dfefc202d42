package progressiondb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// ListRanksDesc returns all ranks ordered by points_required descending,
// the scan order the rank resolver wants.
func (r *Impl) ListRanksDesc(ctx context.Context, db bun.IDB) ([]Rank, error) {
	db = r.idb(db)
	var ranks []Rank
	err := db.NewSelect().
		Model(&ranks).
		Order("points_required DESC").
		Order("level DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("progressiondb.ListRanksDesc: %w", err)
	}
	return ranks, nil
}
