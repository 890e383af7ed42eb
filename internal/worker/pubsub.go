package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types.
const (
	JobWeatherRefresh = "weather_refresh"
	JobHealthCheck    = "health_check"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	refreshJob       *RefreshJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *RefreshJob
	Logger           zerolog.Logger
}

// JobMessage is a worker job request.
type JobMessage struct {
	JobType    string `json:"job_type"`
	City       string `json:"city,omitempty"`
	RefreshAll bool   `json:"refresh_all,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		refreshJob:       cfg.RefreshJob,
		logger:           cfg.Logger,
	}, nil
}

// Start processes messages until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if h.Handle(ctx, msg.ID, msg.Data) {
			msg.Ack()
		} else {
			msg.Nack()
		}
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// Handle runs the job in data and reports whether the message should be
// acknowledged. Unparseable and unknown jobs are acknowledged so they are
// not redelivered.
func (h *PubSubHandler) Handle(ctx context.Context, id string, data []byte) bool {
	return handleJob(ctx, h.refreshJob, h.logger.With().Str("message_id", id).Logger(), data)
}

func handleJob(ctx context.Context, job *RefreshJob, logger zerolog.Logger, data []byte) bool {
	startTime := time.Now()

	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		return true
	}

	var err error
	switch msg.JobType {
	case JobWeatherRefresh:
		err = runRefresh(ctx, job, logger, msg)
	case JobHealthCheck:
		err = job.HealthCheck(ctx)
	default:
		logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		return true
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", msg.JobType).Msg("job failed")
		return false
	}

	logger.Info().
		Str("job_type", msg.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")
	return true
}

func runRefresh(ctx context.Context, job *RefreshJob, logger zerolog.Logger, msg JobMessage) error {
	var result *RefreshResult
	if city := strings.TrimSpace(msg.City); city != "" && !msg.RefreshAll {
		result = job.RunCities(ctx, []string{city})
	} else {
		var err error
		if result, err = job.Run(ctx); err != nil {
			return err
		}
	}

	logger.Info().
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("total_cities", result.TotalCities).
		Msg("weather refresh completed")

	// Consider it successful if no more than half failed.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.TotalCities)
	}
	return nil
}
