package progressionservice

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/ig0rayres/legendario-engine/internal/apperrors"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// GetRanking produces the ordered leaderboard for a scope. System accounts
// and reserved operational identities never appear, and positions stay
// contiguous after the exclusion; the filter lives in the repository's
// single ranking query.
func (s *ProgressionService) GetRanking(
	ctx context.Context,
	scope sharedtypes.RankingScope,
	limit int,
) (results.OperationResult[[]RankingRow, error], error) {
	return withTelemetry(s, ctx, "GetRanking", "", func(ctx context.Context) (results.OperationResult[[]RankingRow, error], error) {
		if !scope.Valid() {
			return results.FailureResult[[]RankingRow, error](fmt.Errorf("unknown ranking scope %q: %w", scope, apperrors.ErrValidation)), nil
		}
		rows, err := s.RankingSnapshot(ctx, nil, scope, limit)
		if err != nil {
			return results.OperationResult[[]RankingRow, error]{}, err
		}
		return results.SuccessResult[[]RankingRow, error](rows), nil
	})
}

// RankingSnapshot is the transaction-aware ranking read used both by
// GetRanking and by the season rollover's winner snapshot.
func (s *ProgressionService) RankingSnapshot(
	ctx context.Context,
	db bun.IDB,
	scope sharedtypes.RankingScope,
	limit int,
) ([]RankingRow, error) {
	entries, err := s.repo.GetRanking(ctx, db, scope, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}
	rows := make([]RankingRow, len(entries))
	for i, e := range entries {
		rows[i] = RankingRow{
			Position: e.Position,
			UserID:   e.UserID,
			Points:   e.Points,
		}
	}
	return rows, nil
}

// GetPointHistory lists a member's audit trail, newest first.
func (s *ProgressionService) GetPointHistory(
	ctx context.Context,
	userID sharedtypes.UserID,
	limit int,
) (results.OperationResult[[]HistoryEntry, error], error) {
	return withTelemetry(s, ctx, "GetPointHistory", userID, func(ctx context.Context) (results.OperationResult[[]HistoryEntry, error], error) {
		if userID == "" {
			return results.FailureResult[[]HistoryEntry, error](fmt.Errorf("missing user id: %w", apperrors.ErrValidation)), nil
		}
		history, err := s.repo.GetPointHistoryForUser(ctx, nil, userID, limit)
		if err != nil {
			return results.OperationResult[[]HistoryEntry, error]{}, fmt.Errorf("failed to get point history: %w", err)
		}
		entries := make([]HistoryEntry, len(history))
		for i, h := range history {
			entries[i] = HistoryEntry{
				Points:      h.Points,
				ActionType:  h.ActionType,
				Description: h.Description,
				Metadata:    h.Metadata,
				SeasonID:    h.SeasonID,
				CreatedAt:   h.CreatedAt.Format(time.RFC3339),
			}
		}
		return results.SuccessResult[[]HistoryEntry, error](entries), nil
	})
}
