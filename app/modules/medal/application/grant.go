package medalservice

import (
	"context"
	"errors"
	"fmt"

	medalevents "github.com/ig0rayres/legendario-engine/app/modules/medal/domain/events"
	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	"github.com/ig0rayres/legendario-engine/internal/apperrors"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// GrantAchievement grants an achievement to a member at most once per
// scope period. The grant row is the authoritative state change; the
// point payout and event publication follow it and a failure in either
// leaves the grant in place.
func (s *MedalService) GrantAchievement(
	ctx context.Context,
	input GrantInput,
) (results.OperationResult[GrantOutput, error], error) {
	return withTelemetry(s, ctx, "GrantAchievement", input.UserID, func(ctx context.Context) (results.OperationResult[GrantOutput, error], error) {
		if input.UserID == "" {
			return results.FailureResult[GrantOutput, error](fmt.Errorf("missing user id: %w", apperrors.ErrValidation)), nil
		}
		if input.AchievementID == "" {
			return results.FailureResult[GrantOutput, error](fmt.Errorf("missing achievement id: %w", apperrors.ErrValidation)), nil
		}

		ach, err := s.repo.GetAchievement(ctx, nil, input.AchievementID)
		if errors.Is(err, medaldb.ErrAchievementNotFound) {
			return results.FailureResult[GrantOutput, error](fmt.Errorf("achievement %s: %w", input.AchievementID, apperrors.ErrNotFound)), nil
		}
		if err != nil {
			return results.OperationResult[GrantOutput, error]{}, fmt.Errorf("failed to load achievement: %w", err)
		}
		if !ach.Active {
			return results.FailureResult[GrantOutput, error](fmt.Errorf("achievement %s is inactive: %w", input.AchievementID, apperrors.ErrValidation)), nil
		}

		exists, err := s.repo.UserExists(ctx, nil, input.UserID)
		if err != nil {
			return results.OperationResult[GrantOutput, error]{}, fmt.Errorf("failed to check user: %w", err)
		}
		if !exists {
			return results.FailureResult[GrantOutput, error](fmt.Errorf("user %s: %w", input.UserID, apperrors.ErrNotFound)), nil
		}

		period := s.periodKey(ach.Scope)
		inserted, err := s.repo.InsertGrant(ctx, nil, &medaldb.UserAchievement{
			UserID:        input.UserID,
			AchievementID: ach.ID,
			Period:        period,
		})
		if err != nil {
			return results.OperationResult[GrantOutput, error]{}, fmt.Errorf("failed to record grant: %w", err)
		}
		if !inserted {
			// Duplicate for the period. Benign: no points, no event.
			return results.SuccessResult[GrantOutput, error](GrantOutput{
				AlreadyOwned:    true,
				AchievementName: ach.Name,
				Period:          period,
			}), nil
		}

		out := GrantOutput{
			Granted:         true,
			AchievementName: ach.Name,
			Period:          period,
		}
		if ach.Points > 0 {
			out.Award = s.payout(ctx, input.UserID, ach)
		}

		payload := medalevents.MedalGrantedPayload{
			UserID:          input.UserID,
			AchievementID:   ach.ID,
			AchievementName: ach.Name,
			Description:     ach.Description,
		}
		if out.Award != nil {
			payload.PointsAwarded = out.Award.FinalAmount
			if rc := out.Award.RankChange; rc != nil {
				payload.OldRankID = rc.OldRankID
				payload.NewRankID = rc.NewRankID
				payload.NewRankName = rc.NewRankName
				payload.RankChanged = rc.Changed
			}
		}
		s.publish(ctx, medalevents.TopicMedalGranted, payload)

		return results.SuccessResult[GrantOutput, error](out), nil
	})
}

// payout credits the achievement's points through the progression engine.
// Any failure here is logged and swallowed; the grant stands.
func (s *MedalService) payout(ctx context.Context, userID sharedtypes.UserID, ach *medaldb.Achievement) *progressionservice.AwardOutput {
	action := sharedtypes.ActionAchievementReward
	if ach.Kind == medaldb.KindMedal {
		action = sharedtypes.ActionMedalReward
	}
	res, err := s.awarder.AwardPoints(ctx, progressionservice.AwardInput{
		UserID:      userID,
		BaseAmount:  ach.Points,
		ActionType:  action,
		Description: ach.Name,
		Metadata:    map[string]any{"achievement_id": ach.ID},
	})
	if err == nil && res.IsSuccess() {
		return res.Success
	}
	if err == nil && res.IsFailure() {
		err = *res.Failure
	}
	s.logger.ErrorContext(ctx, "Achievement payout failed, grant kept",
		attr.String("user_id", userID.String()),
		attr.String("achievement_id", ach.ID),
		attr.Error(fmt.Errorf("%w: %w", apperrors.ErrDependencyFailure, err)),
	)
	return nil
}

// periodKey derives the idempotency period. Lifetime achievements share a
// single empty period; monthly ones key on the calendar month in the
// club's timezone.
func (s *MedalService) periodKey(scope sharedtypes.AchievementScope) string {
	if scope == sharedtypes.AchievementMonthly {
		return s.now().In(s.location).Format("2006-01")
	}
	return ""
}
