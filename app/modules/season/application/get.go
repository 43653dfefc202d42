package seasonservice

import (
	"context"
	"errors"
	"fmt"

	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/apperrors"
	"github.com/ig0rayres/legendario-engine/internal/results"
)

// GetActiveSeason returns the current season, or a NotFound failure when
// the club is between seasons.
func (s *SeasonService) GetActiveSeason(
	ctx context.Context,
) (results.OperationResult[SeasonView, error], error) {
	return withTelemetry(s, ctx, "GetActiveSeason", func(ctx context.Context) (results.OperationResult[SeasonView, error], error) {
		season, err := s.repo.GetActiveSeason(ctx, nil)
		if errors.Is(err, seasondb.ErrSeasonNotFound) {
			return results.FailureResult[SeasonView, error](fmt.Errorf("no active season: %w", apperrors.ErrNotFound)), nil
		}
		if err != nil {
			return results.OperationResult[SeasonView, error]{}, fmt.Errorf("failed to get active season: %w", err)
		}
		return results.SuccessResult[SeasonView, error](seasonView(season)), nil
	})
}

// ListSeasons returns all seasons, newest window first.
func (s *SeasonService) ListSeasons(
	ctx context.Context,
) (results.OperationResult[[]SeasonView, error], error) {
	return withTelemetry(s, ctx, "ListSeasons", func(ctx context.Context) (results.OperationResult[[]SeasonView, error], error) {
		seasons, err := s.repo.ListSeasons(ctx, nil)
		if err != nil {
			return results.OperationResult[[]SeasonView, error]{}, fmt.Errorf("failed to list seasons: %w", err)
		}
		views := make([]SeasonView, len(seasons))
		for i := range seasons {
			views[i] = seasonView(&seasons[i])
		}
		return results.SuccessResult[[]SeasonView, error](views), nil
	})
}

// GetSeasonWinners returns the frozen podium for a finished season.
func (s *SeasonService) GetSeasonWinners(
	ctx context.Context,
	seasonID string,
) (results.OperationResult[[]WinnerView, error], error) {
	return withTelemetry(s, ctx, "GetSeasonWinners", func(ctx context.Context) (results.OperationResult[[]WinnerView, error], error) {
		if seasonID == "" {
			return results.FailureResult[[]WinnerView, error](fmt.Errorf("missing season id: %w", apperrors.ErrValidation)), nil
		}
		if _, err := s.repo.GetSeason(ctx, nil, seasonID); err != nil {
			if errors.Is(err, seasondb.ErrSeasonNotFound) {
				return results.FailureResult[[]WinnerView, error](fmt.Errorf("season %s: %w", seasonID, apperrors.ErrNotFound)), nil
			}
			return results.OperationResult[[]WinnerView, error]{}, fmt.Errorf("failed to get season: %w", err)
		}
		winners, err := s.repo.ListWinners(ctx, nil, seasonID)
		if err != nil {
			return results.OperationResult[[]WinnerView, error]{}, fmt.Errorf("failed to list winners: %w", err)
		}
		views := make([]WinnerView, len(winners))
		for i, w := range winners {
			views[i] = WinnerView{Position: w.Position, UserID: w.UserID, Points: w.Points}
		}
		return results.SuccessResult[[]WinnerView, error](views), nil
	})
}
