package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Publisher hands an alert to the notifier.
type Publisher interface {
	Publish(ctx context.Context, a *Alert) error
}

// Envelope is the message body the notifier consumes.
type Envelope struct {
	ID        string  `json:"id"`
	Channel   Channel `json:"channel"`
	To        string  `json:"to"`
	Subject   string  `json:"subject,omitempty"`
	Message   string  `json:"message"`
	Emergency bool    `json:"emergency"`
}

// NewEnvelope builds the notifier message for a.
func NewEnvelope(a *Alert) Envelope {
	return Envelope{
		ID:        a.ID,
		Channel:   a.Channel,
		To:        a.To,
		Subject:   a.Subject,
		Message:   a.Message,
		Emergency: a.Emergency,
	}
}

// PubSubPublisher publishes alerts to a Pub/Sub topic and waits for the
// server to accept each one.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// PubSubPublisherConfig holds configuration for the Pub/Sub publisher.
type PubSubPublisherConfig struct {
	ProjectID string
	Topic     string
	Logger    zerolog.Logger
}

// NewPubSubPublisher creates a publisher for the alerts topic.
func NewPubSubPublisher(ctx context.Context, cfg PubSubPublisherConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
		topic:     cfg.Topic,
		logger:    cfg.Logger,
	}, nil
}

// Publish sends the alert and blocks until Pub/Sub acknowledges it.
func (p *PubSubPublisher) Publish(ctx context.Context, a *Alert) error {
	msg, err := toPubSubMessage(a)
	if err != nil {
		return err
	}

	serverID, err := p.publisher.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", p.topic, err)
	}

	p.logger.Debug().
		Str("alert_id", a.ID).
		Str("message_id", serverID).
		Msg("alert published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

func toPubSubMessage(a *Alert) (*pubsub.Message, error) {
	data, err := json.Marshal(NewEnvelope(a))
	if err != nil {
		return nil, fmt.Errorf("encoding alert: %w", err)
	}

	attrs := map[string]string{"channel": string(a.Channel)}
	if a.Emergency {
		attrs["emergency"] = "true"
	}
	return &pubsub.Message{Data: data, Attributes: attrs}, nil
}

// LogPublisher logs alerts instead of publishing them. For local development.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the hand-off.
func (p *LogPublisher) Publish(_ context.Context, a *Alert) error {
	p.logger.Info().
		Str("alert_id", a.ID).
		Str("channel", string(a.Channel)).
		Bool("emergency", a.Emergency).
		Int("message_length", len(a.Message)).
		Msg("alert handed off (log publisher)")
	return nil
}
