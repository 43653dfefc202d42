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

// AwardPoints credits a member. The lifetime/season counter increment is a
// single server-side statement and is the authoritative state change; the
// audit entry, rank recomputation, and events follow it and cannot roll it
// back.
func (s *ProgressionService) AwardPoints(
	ctx context.Context,
	input AwardInput,
) (results.OperationResult[AwardOutput, error], error) {
	return withTelemetry(s, ctx, "AwardPoints", input.UserID, func(ctx context.Context) (results.OperationResult[AwardOutput, error], error) {
		if input.UserID == "" {
			return results.FailureResult[AwardOutput, error](fmt.Errorf("missing user id: %w", apperrors.ErrValidation)), nil
		}
		if input.BaseAmount <= 0 {
			return results.FailureResult[AwardOutput, error](fmt.Errorf("base amount must be positive: %w", apperrors.ErrValidation)), nil
		}
		if !input.ActionType.Valid() {
			return results.FailureResult[AwardOutput, error](fmt.Errorf("unknown action type %q: %w", input.ActionType, apperrors.ErrValidation)), nil
		}

		exists, err := s.repo.UserExists(ctx, nil, input.UserID)
		if err != nil {
			return results.OperationResult[AwardOutput, error]{}, fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return results.FailureResult[AwardOutput, error](fmt.Errorf("user %s: %w", input.UserID, apperrors.ErrNotFound)), nil
		}

		tier, err := s.repo.GetActiveTier(ctx, nil, input.UserID)
		if err != nil {
			return results.OperationResult[AwardOutput, error]{}, fmt.Errorf("failed to resolve subscription tier: %w", err)
		}
		multiplier := s.Multiplier(tier)
		final := finalAmount(input.BaseAmount, multiplier)

		// A season bookkeeping failure must never block a lifetime award.
		seasonID, hasSeason := "", false
		if s.seasons != nil {
			var gwErr error
			seasonID, hasSeason, gwErr = s.seasons.ActiveSeasonID(ctx, nil)
			if gwErr != nil {
				s.logger.WarnContext(ctx, "Active season lookup failed, awarding lifetime only",
					attr.String("user_id", input.UserID.String()),
					attr.Error(fmt.Errorf("%w: %w", apperrors.ErrDependencyFailure, gwErr)),
				)
				seasonID, hasSeason = "", false
			}
		}

		if err := s.repo.EnsureScoreState(ctx, nil, input.UserID); err != nil {
			return results.OperationResult[AwardOutput, error]{}, fmt.Errorf("failed to ensure score state: %w", err)
		}
		state, err := s.repo.IncrementPoints(ctx, nil, input.UserID, final, hasSeason)
		if err != nil {
			return results.OperationResult[AwardOutput, error]{}, fmt.Errorf("failed to increment points: %w", err)
		}
		previousTotal := state.LifetimePoints - final

		s.appendHistory(ctx, &progressiondb.PointHistory{
			UserID:      input.UserID,
			Points:      final,
			ActionType:  input.ActionType,
			Description: input.Description,
			SeasonID:    seasonID,
			Metadata: mergeMetadata(input.Metadata, map[string]any{
				"base_amount":    input.BaseAmount,
				"multiplier":     multiplier,
				"plan_id":        tier,
				"previous_total": previousTotal,
				"new_total":      state.LifetimePoints,
			}),
		})

		rankChange := s.resolveRankLogged(ctx, input.UserID)

		output := AwardOutput{
			FinalAmount:   final,
			PreviousTotal: previousTotal,
			NewTotal:      state.LifetimePoints,
			Multiplier:    multiplier,
			Tier:          tier,
			SeasonID:      seasonID,
			RankChange:    rankChange,
		}

		s.publish(ctx, progressionevents.TopicPointsAwarded, progressionevents.PointsAwardedPayload{
			UserID:        input.UserID,
			ActionType:    input.ActionType,
			BaseAmount:    input.BaseAmount,
			FinalAmount:   final,
			Multiplier:    multiplier,
			Tier:          tier,
			PreviousTotal: previousTotal,
			NewTotal:      state.LifetimePoints,
			Description:   input.Description,
		})
		if rankChange != nil && rankChange.Changed {
			s.publish(ctx, progressionevents.TopicRankChanged, progressionevents.RankChangedPayload{
				UserID:         input.UserID,
				OldRankID:      rankChange.OldRankID,
				NewRankID:      rankChange.NewRankID,
				NewRankName:    rankChange.NewRankName,
				LifetimePoints: state.LifetimePoints,
			})
		}

		return results.SuccessResult[AwardOutput, error](output), nil
	})
}

// appendHistory writes the audit entry best-effort. The counter update is
// authoritative and already committed; a failed audit write is surfaced to
// operators, not to the caller.
func (s *ProgressionService) appendHistory(ctx context.Context, entry *progressiondb.PointHistory) {
	if err := s.repo.SavePointHistory(ctx, nil, entry); err != nil {
		s.logger.ErrorContext(ctx, "Point history write failed after counter update",
			attr.String("user_id", entry.UserID.String()),
			attr.Int64("points", entry.Points),
			attr.Error(fmt.Errorf("%w: %w", apperrors.ErrDependencyFailure, err)),
		)
	}
}

// resolveRankLogged recomputes the rank after a counter change. The counter
// change is already committed, so a resolver failure is logged and the
// caller proceeds without rank information.
func (s *ProgressionService) resolveRankLogged(ctx context.Context, userID sharedtypes.UserID) *RankChange {
	change, err := s.ResolveRank(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Rank recomputation failed after award",
			attr.String("user_id", userID.String()),
			attr.Error(fmt.Errorf("%w: %w", apperrors.ErrDependencyFailure, err)),
		)
		return nil
	}
	return change
}

func mergeMetadata(extra, audit map[string]any) map[string]any {
	merged := make(map[string]any, len(extra)+len(audit))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range audit {
		merged[k] = v
	}
	return merged
}
