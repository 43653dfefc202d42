package notificationrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	medalevents "github.com/ig0rayres/legendario-engine/app/modules/medal/domain/events"
	notificationservice "github.com/ig0rayres/legendario-engine/app/modules/notification/application"
	progressionevents "github.com/ig0rayres/legendario-engine/app/modules/progression/domain/events"
	seasonevents "github.com/ig0rayres/legendario-engine/app/modules/season/domain/events"
	"github.com/ig0rayres/legendario-engine/internal/eventbus"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
)

// NotificationRouter binds domain event topics to the notification
// projection handlers.
type NotificationRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
}

func NewNotificationRouter(logger *slog.Logger, router *message.Router, subscriber eventbus.EventBus) *NotificationRouter {
	return &NotificationRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
	}
}

// Configure installs middleware and registers the projection handlers.
// Handler errors propagate so the retry middleware redelivers; after the
// retries are exhausted the message is dropped with a log line, never
// bounced back to the producing operation.
func (r *NotificationRouter) Configure(service *notificationservice.NotificationService) error {
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
		middleware.Recoverer,
	)

	registerHandler(r, medalevents.TopicMedalGranted, service.RecordMedalGranted)
	registerHandler(r, progressionevents.TopicRankChanged, service.RecordRankChanged)
	registerHandler(r, seasonevents.TopicSeasonFinished, service.RecordSeasonFinished)

	return nil
}

// registerHandler decodes the topic's JSON payload into T and hands it to
// the projection.
func registerHandler[T any](
	r *NotificationRouter,
	topic string,
	handle func(context.Context, *T) error,
) {
	handlerName := "notification." + topic
	logger := r.logger
	r.Router.AddNoPublisherHandler(
		handlerName,
		topic,
		r.subscriber,
		func(msg *message.Message) error {
			payload := new(T)
			if err := json.Unmarshal(msg.Payload, payload); err != nil {
				// Malformed payloads never become deliverable; drop them.
				logger.Error("Dropping undecodable event",
					attr.String("handler", handlerName),
					attr.String("message_id", msg.UUID),
					attr.Error(err),
				)
				return nil
			}
			ctx := msg.Context()
			if corrID := middleware.MessageCorrelationID(msg); corrID != "" {
				ctx = attr.WithCorrelationID(ctx, corrID)
			}
			if err := handle(ctx, payload); err != nil {
				return fmt.Errorf("%s: %w", handlerName, err)
			}
			return nil
		},
	)
}

func (r *NotificationRouter) Close() error {
	return r.Router.Close()
}
