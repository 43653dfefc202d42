package seasonservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	seasondb "github.com/ig0rayres/legendario-engine/app/modules/season/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

const serviceLabel = "season"

// RankingSource supplies the season-scoped standings the rollover freezes
// into winners. Implemented by the progression engine; taking bun.IDB lets
// the snapshot run inside the rollover transaction.
type RankingSource interface {
	RankingSnapshot(ctx context.Context, db bun.IDB, scope sharedtypes.RankingScope, limit int) ([]progressionservice.RankingRow, error)
}

// ScoreResetter zeroes every member's season counter. Implemented by the
// progression repository; runs inside the rollover transaction.
type ScoreResetter interface {
	ResetAllSeasonPoints(ctx context.Context, db bun.IDB) (int64, error)
}

// TxRunner runs a function inside one database transaction. *bun.DB
// satisfies it.
type TxRunner interface {
	RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error
}

// SeasonService owns the season lifecycle: creation, activation, and the
// finish/snapshot/reset rollover.
type SeasonService struct {
	repo     seasondb.Repository
	ranking  RankingSource
	resetter ScoreResetter
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	tracer   trace.Tracer
	db       TxRunner
	location *time.Location
	winnersN int
	now      func() time.Time
}

// NewSeasonService creates a new SeasonService. winnersN is how many
// podium positions a rollover freezes; location anchors date parsing and
// window checks.
func NewSeasonService(
	repo seasondb.Repository,
	ranking RankingSource,
	resetter ScoreResetter,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db TxRunner,
	location *time.Location,
	winnersN int,
) *SeasonService {
	if location == nil {
		location = time.UTC
	}
	if winnersN <= 0 {
		winnersN = 3
	}
	return &SeasonService{
		repo:     repo,
		ranking:  ranking,
		resetter: resetter,
		eventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
		location: location,
		winnersN: winnersN,
		now:      time.Now,
	}
}

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

func withTelemetry[S any, F any](
	s *SeasonService,
	ctx context.Context,
	operationName string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceLabel)

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		s.metrics.RecordOperationDuration(ctx, operationName, serviceLabel, duration)
	}()

	defer func() {
		if r := recover(); r != nil {
			errorMsg := fmt.Sprintf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, errorMsg)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceLabel)
			result = results.OperationResult[S, F]{}
			err = fmt.Errorf("%s", errorMsg)
		}
	}()

	result, err = op(ctx)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operationName, serviceLabel)
		return result, err
	}
	if result.IsFailure() {
		s.metrics.RecordOperationFailure(ctx, operationName, serviceLabel)
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.String("operation", operationName),
		)
		return result, nil
	}
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceLabel)
	return result, nil
}

func (s *SeasonService) publish(ctx context.Context, topic string, payload any) {
	if s.eventBus == nil {
		return
	}
	msg, err := eventbus.NewJSONMessage(payload, attr.ExtractCorrelationID(ctx).Value.String())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build event message",
			attr.String("topic", topic), attr.Error(err))
		return
	}
	if err := s.eventBus.Publish(topic, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.String("topic", topic), attr.Error(err))
	}
}
