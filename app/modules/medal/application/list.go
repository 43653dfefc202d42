package medalservice

import (
	"context"
	"fmt"
	"time"

	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/apperrors"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// ListAchievements returns the catalog, optionally filtered to active
// entries.
func (s *MedalService) ListAchievements(
	ctx context.Context,
	activeOnly bool,
) (results.OperationResult[[]medaldb.Achievement, error], error) {
	return withTelemetry(s, ctx, "ListAchievements", "", func(ctx context.Context) (results.OperationResult[[]medaldb.Achievement, error], error) {
		achs, err := s.repo.ListAchievements(ctx, nil, activeOnly)
		if err != nil {
			return results.OperationResult[[]medaldb.Achievement, error]{}, fmt.Errorf("failed to list achievements: %w", err)
		}
		return results.SuccessResult[[]medaldb.Achievement, error](achs), nil
	})
}

// GetGrantsForUser returns a member's grant history, newest first.
func (s *MedalService) GetGrantsForUser(
	ctx context.Context,
	userID sharedtypes.UserID,
) (results.OperationResult[[]GrantRecord, error], error) {
	return withTelemetry(s, ctx, "GetGrantsForUser", userID, func(ctx context.Context) (results.OperationResult[[]GrantRecord, error], error) {
		if userID == "" {
			return results.FailureResult[[]GrantRecord, error](fmt.Errorf("missing user id: %w", apperrors.ErrValidation)), nil
		}
		grants, err := s.repo.ListGrantsForUser(ctx, nil, userID)
		if err != nil {
			return results.OperationResult[[]GrantRecord, error]{}, fmt.Errorf("failed to list grants: %w", err)
		}
		records := make([]GrantRecord, 0, len(grants))
		for _, g := range grants {
			records = append(records, GrantRecord{
				AchievementID: g.AchievementID,
				Period:        g.Period,
				GrantedAt:     g.GrantedAt.Format(time.RFC3339),
			})
		}
		return results.SuccessResult[[]GrantRecord, error](records), nil
	})
}
