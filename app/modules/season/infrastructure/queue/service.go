package seasonqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	seasonservice "github.com/ig0rayres/legendario-engine/app/modules/season/application"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/results"
)

// RolloverRunner is the slice of the season service the worker needs.
type RolloverRunner interface {
	RunRollover(ctx context.Context) (results.OperationResult[seasonservice.RolloverOutput, error], error)
}

// RolloverWorker executes the daily rollover pass. The pass is
// idempotent, so River retrying a failed job is always safe.
type RolloverWorker struct {
	river.WorkerDefaults[RolloverJob]
	runner RolloverRunner
	logger *slog.Logger
}

func NewRolloverWorker(runner RolloverRunner, logger *slog.Logger) *RolloverWorker {
	return &RolloverWorker{runner: runner, logger: logger}
}

func (w *RolloverWorker) Work(ctx context.Context, job *river.Job[RolloverJob]) error {
	result, err := w.runner.RunRollover(ctx)
	if err != nil {
		return fmt.Errorf("season rollover: %w", err)
	}
	if result.IsFailure() {
		return fmt.Errorf("season rollover: %w", *result.Failure)
	}
	out := result.Success
	w.logger.InfoContext(ctx, "Scheduled rollover pass completed",
		attr.Int("finished_seasons", len(out.Finished)),
		attr.Bool("activated", out.Activated != nil),
	)
	return nil
}

// Service runs the daily rollover as a River periodic job backed by
// Postgres, so exactly one instance fires it even with several engine
// replicas running.
type Service struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService creates the River client with the rollover worker registered
// and a 24 hour periodic schedule that also fires once at startup, which
// covers replicas that were down when the window closed.
func NewService(ctx context.Context, dsn string, runner RolloverRunner, logger *slog.Logger) (*Service, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// River manages its own schema; bring it up to date before the
	// client starts polling.
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run River migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRolloverWorker(runner, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 5},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(24*time.Hour),
				func() (river.JobArgs, *river.InsertOpts) {
					return RolloverJob{}, &river.InsertOpts{
						UniqueOpts: river.UniqueOpts{ByArgs: true},
					}
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Service{client: client, pool: pool, logger: logger}, nil
}

func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Season rollover scheduler started")
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.InfoContext(ctx, "Season rollover scheduler stopped")
	return nil
}
