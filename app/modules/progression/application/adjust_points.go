package progressionservice

import (
	"context"
	"fmt"

	progressionevents "github.com/ig0rayres/legendario-engine/app/modules/progression/domain/events"
	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/apperrors"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// AdjustPoints applies a signed administrative correction. Adjustments
// bypass the multiplier, floor both counters at zero, and recompute the
// rank, which may move down.
func (s *ProgressionService) AdjustPoints(
	ctx context.Context,
	userID sharedtypes.UserID,
	delta int64,
	reason string,
) (results.OperationResult[AdjustOutput, error], error) {
	return withTelemetry(s, ctx, "AdjustPoints", userID, func(ctx context.Context) (results.OperationResult[AdjustOutput, error], error) {
		if userID == "" {
			return results.FailureResult[AdjustOutput, error](fmt.Errorf("missing user id: %w", apperrors.ErrValidation)), nil
		}
		if delta == 0 {
			return results.FailureResult[AdjustOutput, error](fmt.Errorf("zero adjustment: %w", apperrors.ErrValidation)), nil
		}
		if reason == "" {
			return results.FailureResult[AdjustOutput, error](fmt.Errorf("missing adjustment reason: %w", apperrors.ErrValidation)), nil
		}

		exists, err := s.repo.UserExists(ctx, nil, userID)
		if err != nil {
			return results.OperationResult[AdjustOutput, error]{}, fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return results.FailureResult[AdjustOutput, error](fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)), nil
		}

		seasonID, hasSeason := "", false
		if s.seasons != nil {
			var gwErr error
			seasonID, hasSeason, gwErr = s.seasons.ActiveSeasonID(ctx, nil)
			if gwErr != nil {
				s.logger.WarnContext(ctx, "Active season lookup failed during adjustment",
					attr.String("user_id", userID.String()),
					attr.Error(gwErr),
				)
				seasonID, hasSeason = "", false
			}
		}

		if err := s.repo.EnsureScoreState(ctx, nil, userID); err != nil {
			return results.OperationResult[AdjustOutput, error]{}, fmt.Errorf("failed to ensure score state: %w", err)
		}
		state, err := s.repo.AdjustPoints(ctx, nil, userID, delta, hasSeason)
		if err != nil {
			return results.OperationResult[AdjustOutput, error]{}, fmt.Errorf("failed to adjust points: %w", err)
		}

		s.appendHistory(ctx, &progressiondb.PointHistory{
			UserID:      userID,
			Points:      delta,
			ActionType:  sharedtypes.ActionManualAdjustment,
			Description: reason,
			SeasonID:    seasonID,
			Metadata: map[string]any{
				"base_amount": delta,
				"multiplier":  float64(1),
				"new_total":   state.LifetimePoints,
			},
		})

		rankChange := s.resolveRankLogged(ctx, userID)

		if rankChange != nil && rankChange.Changed {
			s.publish(ctx, progressionevents.TopicRankChanged, progressionevents.RankChangedPayload{
				UserID:         userID,
				OldRankID:      rankChange.OldRankID,
				NewRankID:      rankChange.NewRankID,
				NewRankName:    rankChange.NewRankName,
				LifetimePoints: state.LifetimePoints,
			})
		}

		return results.SuccessResult[AdjustOutput, error](AdjustOutput{
			Delta:      delta,
			NewTotal:   state.LifetimePoints,
			RankChange: rankChange,
		}), nil
	})
}
