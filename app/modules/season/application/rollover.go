package seasonservice

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	seasonevents "github.com/ig0rayres/legendario-engine/app/modules/season/domain/events"
	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// RunRollover is the daily season check. It finishes every active season
// whose window closed (freezing winners and resetting season counters in
// one transaction per season), then activates the scheduled season whose
// window contains now, if any. Safe to run any number of times: every
// state change is a conditional transition that only one run can win.
func (s *SeasonService) RunRollover(
	ctx context.Context,
) (results.OperationResult[RolloverOutput, error], error) {
	return withTelemetry(s, ctx, "RunRollover", func(ctx context.Context) (results.OperationResult[RolloverOutput, error], error) {
		now := s.now().In(s.location)
		var out RolloverOutput

		expired, err := s.repo.ListExpiredActive(ctx, nil, now)
		if err != nil {
			return results.OperationResult[RolloverOutput, error]{}, fmt.Errorf("failed to list expired seasons: %w", err)
		}
		for i := range expired {
			finished, err := s.finishSeason(ctx, &expired[i])
			if err != nil {
				return results.OperationResult[RolloverOutput, error]{}, err
			}
			if finished != nil {
				out.Finished = append(out.Finished, *finished)
			}
		}

		activated, err := s.activateNext(ctx, now)
		if err != nil {
			return results.OperationResult[RolloverOutput, error]{}, err
		}
		out.Activated = activated

		return results.SuccessResult[RolloverOutput, error](out), nil
	})
}

// finishSeason runs one season's close inside a single transaction:
// conditional status flip, winner snapshot, season counter reset. Losing
// the flip means another run already closed the season; the whole step is
// skipped and nothing is written. Returns nil when skipped.
func (s *SeasonService) finishSeason(ctx context.Context, season *seasondb.Season) (*FinishedSeason, error) {
	var finished *FinishedSeason
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		won, err := s.repo.FinishSeason(ctx, tx, season.ID)
		if err != nil {
			return err
		}
		if !won {
			s.logger.InfoContext(ctx, "Season already finished by another run, skipping",
				attr.String("season_id", season.ID))
			return nil
		}

		rows, err := s.ranking.RankingSnapshot(ctx, tx, sharedtypes.ScopeSeason, s.winnersN)
		if err != nil {
			return fmt.Errorf("winner snapshot: %w", err)
		}
		winners := make([]seasondb.SeasonWinner, len(rows))
		views := make([]WinnerView, len(rows))
		for i, row := range rows {
			winners[i] = seasondb.SeasonWinner{
				SeasonID: season.ID,
				UserID:   row.UserID,
				Position: row.Position,
				Points:   row.Points,
			}
			views[i] = WinnerView{Position: row.Position, UserID: row.UserID, Points: row.Points}
		}
		if err := s.repo.InsertWinners(ctx, tx, winners); err != nil {
			return err
		}

		resetCount, err := s.resetter.ResetAllSeasonPoints(ctx, tx)
		if err != nil {
			return fmt.Errorf("season counter reset: %w", err)
		}

		finished = &FinishedSeason{
			SeasonID:   season.ID,
			SeasonName: season.Name,
			Winners:    views,
			ResetCount: resetCount,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finish season %s: %w", season.ID, err)
	}
	if finished == nil {
		return nil, nil
	}

	s.logger.InfoContext(ctx, "Season finished",
		attr.String("season_id", finished.SeasonID),
		attr.Int("winners", len(finished.Winners)),
		attr.Int64("reset_count", finished.ResetCount),
	)
	payload := seasonevents.SeasonFinishedPayload{
		SeasonID:   finished.SeasonID,
		SeasonName: finished.SeasonName,
		ResetCount: finished.ResetCount,
		FinishedAt: s.now(),
	}
	for _, w := range finished.Winners {
		payload.Winners = append(payload.Winners, seasonevents.WinnerPayload{
			Position: w.Position,
			UserID:   w.UserID,
			Points:   w.Points,
		})
	}
	s.publish(ctx, seasonevents.TopicSeasonFinished, payload)

	return finished, nil
}

// activateNext promotes the scheduled season whose window contains now.
// Returns nil when there is nothing to activate or another season is
// still active.
func (s *SeasonService) activateNext(ctx context.Context, now time.Time) (*SeasonView, error) {
	candidate, err := s.repo.FindActivatable(ctx, nil, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find activatable season: %w", err)
	}
	if candidate == nil {
		return nil, nil
	}
	won, err := s.repo.ActivateSeason(ctx, nil, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to activate season %s: %w", candidate.ID, err)
	}
	if !won {
		s.logger.InfoContext(ctx, "Season activation skipped, another season is active",
			attr.String("season_id", candidate.ID))
		return nil, nil
	}
	candidate.Status = seasondb.StatusActive
	view := seasonView(candidate)

	s.logger.InfoContext(ctx, "Season activated",
		attr.String("season_id", candidate.ID),
		attr.String("season_name", candidate.Name),
	)
	s.publish(ctx, seasonevents.TopicSeasonActivated, seasonevents.SeasonActivatedPayload{
		SeasonID:    candidate.ID,
		SeasonName:  candidate.Name,
		StartsAt:    candidate.StartsAt,
		EndsAt:      candidate.EndsAt,
		ActivatedAt: s.now(),
	})
	return &view, nil
}
