package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/featureflags"
	"github.com/weathervibe/weathervibe/internal/validation"
)

// FlagChecker reports whether a feature flag is enabled.
type FlagChecker interface {
	IsEnabled(ctx context.Context, key string) bool
}

// Recorder counts submitted alerts.
type Recorder interface {
	RecordAlert(ctx context.Context, channel, status string)
}

// List limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ServiceConfig holds configuration for the alert service.
type ServiceConfig struct {
	Repository Repository
	Publisher  Publisher
	Flags      FlagChecker
	Logger     zerolog.Logger
	Metrics    Recorder
}

// Service validates, records and hands off alerts.
type Service struct {
	repo      Repository
	publisher Publisher
	flags     FlagChecker
	logger    zerolog.Logger
	metrics   Recorder
	now       func() time.Time
}

// NewService creates an alert service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repository,
		publisher: cfg.Publisher,
		flags:     cfg.Flags,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		now:       time.Now,
	}
}

// Submit records an SMS or email alert and publishes it.
func (s *Service) Submit(ctx context.Context, userID string, req Request) (*Alert, error) {
	req.To = strings.TrimSpace(req.To)
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if err := validateRecipient(req.Channel, req.To); err != nil {
		return nil, err
	}

	a := s.newAlert(userID, req.Channel, req.To, req.Message, false)
	if req.Channel == ChannelEmail {
		a.Subject = req.Subject
		if a.Subject == "" {
			a.Subject = DefaultSubject
		}
	}
	return s.submit(ctx, a)
}

// SubmitEmergency records an emergency SMS and publishes it.
func (s *Service) SubmitEmergency(ctx context.Context, userID string, req EmergencyRequest) (*Alert, error) {
	req.To = strings.TrimSpace(req.To)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.submit(ctx, s.newAlert(userID, ChannelSMS, req.To, req.Message, true))
}

// List returns a user's recent alerts.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	alerts, err := s.repo.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []*Alert{}
	}
	return alerts, nil
}

func (s *Service) submit(ctx context.Context, a *Alert) (*Alert, error) {
	if s.flags != nil && s.flags.IsEnabled(ctx, featureflags.FlagDisableAlertsSending) {
		return nil, ErrSendingDisabled
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("storing alert: %w", err)
	}

	if err := s.publisher.Publish(ctx, a); err != nil {
		s.logger.Error().Err(err).
			Str("alert_id", a.ID).
			Str("channel", string(a.Channel)).
			Msg("alert hand-off failed")

		a.Status = StatusRejected
		s.record(ctx, a)
		if uerr := s.repo.UpdateStatus(ctx, a.ID, StatusRejected); uerr != nil {
			s.logger.Error().Err(uerr).Str("alert_id", a.ID).Msg("failed to mark alert rejected")
		}
		return a, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	s.logger.Info().
		Str("alert_id", a.ID).
		Str("user_id", a.UserID).
		Str("channel", string(a.Channel)).
		Bool("emergency", a.Emergency).
		Msg("alert queued")

	s.record(ctx, a)
	return a, nil
}

func (s *Service) record(ctx context.Context, a *Alert) {
	if s.metrics != nil {
		s.metrics.RecordAlert(ctx, string(a.Channel), string(a.Status))
	}
}

func (s *Service) newAlert(userID string, channel Channel, to, message string, emergency bool) *Alert {
	return &Alert{
		ID:        "alr_" + uuid.New().String()[:22],
		UserID:    userID,
		Channel:   channel,
		To:        to,
		Message:   message,
		Emergency: emergency,
		Status:    StatusQueued,
		CreatedAt: s.now().UTC(),
	}
}

func validateRecipient(channel Channel, to string) error {
	switch channel {
	case ChannelSMS:
		return validation.Struct(smsRecipient{To: to})
	case ChannelEmail:
		return validation.Struct(emailRecipient{To: to})
	}
	return validation.NewError("type", "must be one of: sms, email")
}
