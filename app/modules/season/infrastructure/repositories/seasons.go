package seasondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// CreateSeason inserts a scheduled season after rejecting windows that
// overlap a scheduled or active one. Finished seasons do not block reuse
// of their window.
func (r *Impl) CreateSeason(ctx context.Context, db bun.IDB, season *Season) error {
	idb := r.idb(db)
	overlap, err := idb.NewSelect().
		Model((*Season)(nil)).
		Where("s.status <> ?", StatusFinished).
		Where("s.starts_at < ?", season.EndsAt).
		Where("s.ends_at > ?", season.StartsAt).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("seasondb.CreateSeason: overlap check: %w", err)
	}
	if overlap {
		return ErrSeasonOverlap
	}
	if _, err := idb.NewInsert().Model(season).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("seasondb.CreateSeason: %w", err)
	}
	return nil
}

func (r *Impl) GetSeason(ctx context.Context, db bun.IDB, seasonID string) (*Season, error) {
	season := new(Season)
	err := r.idb(db).NewSelect().
		Model(season).
		Where("s.id = ?", seasonID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeasonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("seasondb.GetSeason: %w", err)
	}
	return season, nil
}

// GetActiveSeason returns the single active season, or ErrSeasonNotFound
// when none is active. The partial unique index makes "single" safe.
func (r *Impl) GetActiveSeason(ctx context.Context, db bun.IDB) (*Season, error) {
	season := new(Season)
	err := r.idb(db).NewSelect().
		Model(season).
		Where("s.status = ?", StatusActive).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeasonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("seasondb.GetActiveSeason: %w", err)
	}
	return season, nil
}

func (r *Impl) ListSeasons(ctx context.Context, db bun.IDB) ([]Season, error) {
	var seasons []Season
	err := r.idb(db).NewSelect().
		Model(&seasons).
		Order("s.starts_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("seasondb.ListSeasons: %w", err)
	}
	return seasons, nil
}

// ListExpiredActive finds active seasons whose window has closed. Normally
// at most one row, but the rollover tolerates a backlog.
func (r *Impl) ListExpiredActive(ctx context.Context, db bun.IDB, now time.Time) ([]Season, error) {
	var seasons []Season
	err := r.idb(db).NewSelect().
		Model(&seasons).
		Where("s.status = ?", StatusActive).
		Where("s.ends_at <= ?", now).
		Order("s.ends_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("seasondb.ListExpiredActive: %w", err)
	}
	return seasons, nil
}

// FindActivatable returns the earliest scheduled season whose window
// contains now, or nil when there is none.
func (r *Impl) FindActivatable(ctx context.Context, db bun.IDB, now time.Time) (*Season, error) {
	season := new(Season)
	err := r.idb(db).NewSelect().
		Model(season).
		Where("s.status = ?", StatusScheduled).
		Where("s.starts_at <= ?", now).
		Where("s.ends_at > ?", now).
		Order("s.starts_at ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seasondb.FindActivatable: %w", err)
	}
	return season, nil
}

// FinishSeason flips active to finished and reports whether this call won
// the transition. A false return means another worker already finished it
// and the caller must skip the rest of the rollover for this season.
func (r *Impl) FinishSeason(ctx context.Context, db bun.IDB, seasonID string) (bool, error) {
	res, err := r.idb(db).NewUpdate().
		Model((*Season)(nil)).
		Set("status = ?", StatusFinished).
		Set("finished_at = CURRENT_TIMESTAMP").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", seasonID).
		Where("status = ?", StatusActive).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("seasondb.FinishSeason: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seasondb.FinishSeason: rows affected: %w", err)
	}
	return rows > 0, nil
}

// ActivateSeason flips scheduled to active, refusing while any other
// season is active. The NOT EXISTS guard and the partial unique index
// together keep activation single-winner under concurrency.
func (r *Impl) ActivateSeason(ctx context.Context, db bun.IDB, seasonID string) (bool, error) {
	res, err := r.idb(db).NewUpdate().
		Model((*Season)(nil)).
		Set("status = ?", StatusActive).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", seasonID).
		Where("status = ?", StatusScheduled).
		Where("NOT EXISTS (SELECT 1 FROM seasons WHERE status = ?)", StatusActive).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("seasondb.ActivateSeason: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("seasondb.ActivateSeason: rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *Impl) InsertWinners(ctx context.Context, db bun.IDB, winners []SeasonWinner) error {
	if len(winners) == 0 {
		return nil
	}
	if _, err := r.idb(db).NewInsert().Model(&winners).Exec(ctx); err != nil {
		return fmt.Errorf("seasondb.InsertWinners: %w", err)
	}
	return nil
}

func (r *Impl) ListWinners(ctx context.Context, db bun.IDB, seasonID string) ([]SeasonWinner, error) {
	var winners []SeasonWinner
	err := r.idb(db).NewSelect().
		Model(&winners).
		Where("sw.season_id = ?", seasonID).
		Order("sw.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("seasondb.ListWinners: %w", err)
	}
	return winners, nil
}
