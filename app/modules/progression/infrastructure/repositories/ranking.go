package progressiondb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// GetRanking returns the leaderboard for the requested scope. This is the
// only ranking query in the codebase: the user-facing leaderboard, the
// season winner snapshot, and the admin exports all call it, so the
// system-account exclusion cannot drift between call sites. Positions are
// computed after exclusion, so they stay contiguous. Ties break on user_id
// for deterministic ordering.
func (r *Impl) GetRanking(ctx context.Context, db bun.IDB, scope sharedtypes.RankingScope, limit int) ([]RankingEntry, error) {
	db = r.idb(db)

	column := "lifetime_points"
	if scope == sharedtypes.ScopeSeason {
		column = "season_points"
	}

	var entries []RankingEntry
	q := db.NewSelect().
		TableExpr("user_score_states AS s").
		ColumnExpr("ROW_NUMBER() OVER (ORDER BY s.? DESC, s.user_id ASC) AS position", bun.Ident(column)).
		ColumnExpr("s.user_id AS user_id").
		ColumnExpr("s.? AS points", bun.Ident(column)).
		Join("JOIN users AS u ON u.id = s.user_id").
		Where("u.is_system_account = false")
	if len(r.reservedEmails) > 0 {
		q = q.Where("u.email NOT IN (?)", bun.In(r.reservedEmails))
	}
	q = q.OrderExpr("s.? DESC", bun.Ident(column)).
		OrderExpr("s.user_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx, &entries); err != nil {
		return nil, fmt.Errorf("progressiondb.GetRanking: %w", err)
	}
	return entries, nil
}
