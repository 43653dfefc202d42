package progressionservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	progressiondb "github.com/ig0rayres/legendario-engine/app/modules/progression/infrastructure/repositories"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

const serviceLabel = "progression"

// SeasonGateway exposes the one authoritative notion of "current season".
// Implemented by the season module; progression never queries seasons
// directly.
type SeasonGateway interface {
	ActiveSeasonID(ctx context.Context, db bun.IDB) (string, bool, error)
}

// ProgressionService implements the point award engine, rank resolver, and
// ranking query.
type ProgressionService struct {
	repo        progressiondb.Repository
	seasons     SeasonGateway
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	metrics     observability.OperationMetrics
	tracer      trace.Tracer
	db          *bun.DB
	multipliers map[string]float64
}

// NewProgressionService creates a new ProgressionService. multipliers is
// the single authoritative tier table; no other copy may exist.
func NewProgressionService(
	repo progressiondb.Repository,
	seasons SeasonGateway,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	multipliers map[string]float64,
) *ProgressionService {
	return &ProgressionService{
		repo:        repo,
		seasons:     seasons,
		eventBus:    eventBus,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		db:          db,
		multipliers: multipliers,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[S any, F any](
	s *ProgressionService,
	ctx context.Context,
	operationName string,
	userID sharedtypes.UserID,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceLabel)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceLabel, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("user_id", userID.String()),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceLabel)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("user_id", userID.String()),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceLabel)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("user_id", userID.String()),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceLabel)
	}

	return result, nil
}

// publish sends domain events fire-and-forget; a failed publish is logged
// and never fails the operation that produced it.
func (s *ProgressionService) publish(ctx context.Context, topic string, payload any) {
	if s.eventBus == nil {
		return
	}
	msg, err := eventbus.NewJSONMessage(payload, correlationIDFromCtx(ctx))
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

func correlationIDFromCtx(ctx context.Context) string {
	a := attr.ExtractCorrelationID(ctx)
	return a.Value.String()
}
