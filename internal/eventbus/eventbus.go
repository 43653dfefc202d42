// Package eventbus provides the NATS JetStream-backed watermill event bus
// shared by all modules.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	nc "github.com/nats-io/nats.go"
)

// EventBus is the publish/subscribe contract handed to services. Publishing
// is fire-and-forget from the caller's perspective: a failed publish is the
// caller's to log, never to propagate.
type EventBus interface {
	Publish(topic string, msgs ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	conn       *nc.Conn
	logger     *slog.Logger
}

// New connects to NATS and builds a watermill publisher/subscriber pair
// around it.
func New(ctx context.Context, natsURL string, logger *slog.Logger) (EventBus, error) {
	conn, err := nc.Connect(natsURL, nc.RetryOnFailedConnect(true))
	if err != nil {
		return nil, fmt.Errorf("eventbus.New: failed to connect to NATS: %w", err)
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &wmnats.NATSMarshaler{}

	publisher, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:       natsURL,
		Marshaler: marshaler,
		NatsOptions: []nc.Option{
			nc.RetryOnFailedConnect(true),
		},
	}, wmLogger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("eventbus.New: failed to create publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:         natsURL,
		Unmarshaler: marshaler,
		NatsOptions: []nc.Option{
			nc.RetryOnFailedConnect(true),
		},
	}, wmLogger)
	if err != nil {
		conn.Close()
		publisher.Close()
		return nil, fmt.Errorf("eventbus.New: failed to create subscriber: %w", err)
	}

	return &eventBus{
		publisher:  publisher,
		subscriber: subscriber,
		conn:       conn,
		logger:     logger,
	}, nil
}

func (b *eventBus) Publish(topic string, msgs ...*message.Message) error {
	if err := b.publisher.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("eventbus.Publish %s: %w", topic, err)
	}
	return nil
}

func (b *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("eventbus.Subscribe %s: %w", topic, err)
	}
	return ch, nil
}

func (b *eventBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		b.logger.Error("failed to close publisher", slog.Any("error", err))
	}
	if err := b.subscriber.Close(); err != nil {
		b.logger.Error("failed to close subscriber", slog.Any("error", err))
	}
	b.conn.Close()
	return nil
}

// NewJSONMessage marshals payload into a watermill message carrying a fresh
// UUID and the given correlation ID.
func NewJSONMessage(payload any, correlationID string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("eventbus.NewJSONMessage: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}
	return msg, nil
}
