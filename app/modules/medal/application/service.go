package medalservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	medaldb "github.com/ig0rayres/legendario-engine/app/modules/medal/infrastructure/repositories"
	progressionservice "github.com/ig0rayres/legendario-engine/app/modules/progression/application"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/results"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

const serviceLabel = "medal"

// PointAwarder is the slice of the progression engine the medal module
// needs. Awarding goes through the engine so the multiplier table and
// rank resolution stay in one place.
type PointAwarder interface {
	AwardPoints(ctx context.Context, input progressionservice.AwardInput) (results.OperationResult[progressionservice.AwardOutput, error], error)
}

// MedalService grants achievements exactly once per scope period and
// pays out their points through the progression engine.
type MedalService struct {
	repo     medaldb.Repository
	awarder  PointAwarder
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	tracer   trace.Tracer
	location *time.Location
	now      func() time.Time
}

// NewMedalService creates a new MedalService. location anchors the
// monthly period key so every grant in a calendar month agrees on it.
func NewMedalService(
	repo medaldb.Repository,
	awarder PointAwarder,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	location *time.Location,
) *MedalService {
	if location == nil {
		location = time.UTC
	}
	return &MedalService{
		repo:     repo,
		awarder:  awarder,
		eventBus: eventBus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		location: location,
		now:      time.Now,
	}
}

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

func withTelemetry[S any, F any](
	s *MedalService,
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
		duration := time.Since(startTime)
		s.metrics.RecordOperationDuration(ctx, operationName, serviceLabel, duration)
	}()

	defer func() {
		if r := recover(); r != nil {
			errorMsg := fmt.Sprintf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, errorMsg,
				attr.String("user_id", userID.String()),
			)
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
			attr.String("user_id", userID.String()),
		)
		return result, nil
	}
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceLabel)
	return result, nil
}

// publish is fire and forget. A lost event never unwinds a grant.
func (s *MedalService) publish(ctx context.Context, topic string, payload any) {
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
