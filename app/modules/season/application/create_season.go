package seasonservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/apperrors"
	"github.com/ig0rayres/legendario-engine/internal/results"
)

// CreateSeason schedules a new season. Windows may not overlap any
// scheduled or active season; activation happens later via the daily
// rollover, never at creation time.
func (s *SeasonService) CreateSeason(
	ctx context.Context,
	input CreateSeasonInput,
) (results.OperationResult[SeasonView, error], error) {
	return withTelemetry(s, ctx, "CreateSeason", func(ctx context.Context) (results.OperationResult[SeasonView, error], error) {
		if input.Name == "" {
			return results.FailureResult[SeasonView, error](fmt.Errorf("missing season name: %w", apperrors.ErrValidation)), nil
		}
		base := s.now().In(s.location)
		startsAt, err := s.parseWhen(input.StartsAt, base)
		if err != nil {
			return results.FailureResult[SeasonView, error](fmt.Errorf("starts_at %q: %w: %w", input.StartsAt, err, apperrors.ErrValidation)), nil
		}
		endsAt, err := s.parseWhen(input.EndsAt, base)
		if err != nil {
			return results.FailureResult[SeasonView, error](fmt.Errorf("ends_at %q: %w: %w", input.EndsAt, err, apperrors.ErrValidation)), nil
		}
		if !endsAt.After(startsAt) {
			return results.FailureResult[SeasonView, error](fmt.Errorf("season must end after it starts: %w", apperrors.ErrValidation)), nil
		}

		season := &seasondb.Season{
			Name:     input.Name,
			StartsAt: startsAt,
			EndsAt:   endsAt,
			Status:   seasondb.StatusScheduled,
		}
		err = s.repo.CreateSeason(ctx, nil, season)
		if errors.Is(err, seasondb.ErrSeasonOverlap) {
			return results.FailureResult[SeasonView, error](fmt.Errorf("%w: %w", err, apperrors.ErrConflict)), nil
		}
		if err != nil {
			return results.OperationResult[SeasonView, error]{}, fmt.Errorf("failed to create season: %w", err)
		}
		return results.SuccessResult[SeasonView, error](seasonView(season)), nil
	})
}

// parseWhen accepts RFC 3339 first, then falls back to natural language
// relative to base.
func (s *SeasonService) parseWhen(text string, base time.Time) (time.Time, error) {
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", text, s.location); err == nil {
		return t, nil
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(text, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognized date")
	}
	return r.Time, nil
}

func seasonView(season *seasondb.Season) SeasonView {
	return SeasonView{
		ID:       season.ID,
		Name:     season.Name,
		StartsAt: season.StartsAt,
		EndsAt:   season.EndsAt,
		Status:   season.Status,
	}
}
