package alert_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathervibe/weathervibe/internal/alert"
	"github.com/weathervibe/weathervibe/internal/featureflags"
	"github.com/weathervibe/weathervibe/internal/validation"
)

type recordingPublisher struct {
	mu        sync.Mutex
	published []*alert.Alert
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, a *alert.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	cpy := *a
	p.published = append(p.published, &cpy)
	return nil
}

type flags map[string]bool

func (f flags) IsEnabled(_ context.Context, key string) bool { return f[key] }

func newService(pub alert.Publisher, f alert.FlagChecker) (*alert.Service, *alert.InMemoryRepository) {
	repo := alert.NewInMemoryRepository()
	return alert.NewService(alert.ServiceConfig{
		Repository: repo,
		Publisher:  pub,
		Flags:      f,
		Logger:     zerolog.Nop(),
	}), repo
}

func TestService_Submit_SMS(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newService(pub, nil)

	a, err := svc.Submit(context.Background(), "usr_1", alert.Request{
		Channel: alert.ChannelSMS,
		To:      "+14155552671",
		Message: "Storm warning for Springfield",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a.ID, "alr_"))
	assert.Equal(t, alert.StatusQueued, a.Status)
	assert.Empty(t, a.Subject)
	assert.False(t, a.Emergency)
	require.Len(t, pub.published, 1)
	assert.Equal(t, a.ID, pub.published[0].ID)
}

func TestService_Submit_EmailDefaultSubject(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newService(pub, nil)

	a, err := svc.Submit(context.Background(), "usr_1", alert.Request{
		Channel: alert.ChannelEmail,
		To:      "someone@example.com",
		Message: "Heat advisory",
	})
	require.NoError(t, err)
	assert.Equal(t, alert.DefaultSubject, a.Subject)

	custom, err := svc.Submit(context.Background(), "usr_1", alert.Request{
		Channel: alert.ChannelEmail,
		To:      "someone@example.com",
		Subject: "Frost tonight",
		Message: "Cover your plants",
	})
	require.NoError(t, err)
	assert.Equal(t, "Frost tonight", custom.Subject)
}

func TestService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name      string
		req       alert.Request
		wantField string
	}{
		{"unknown channel", alert.Request{Channel: "fax", To: "+14155552671", Message: "hi"}, "type"},
		{"sms to email", alert.Request{Channel: alert.ChannelSMS, To: "a@b.com", Message: "hi"}, "to"},
		{"email to number", alert.Request{Channel: alert.ChannelEmail, To: "+14155552671", Message: "hi"}, "to"},
		{"empty message", alert.Request{Channel: alert.ChannelSMS, To: "+14155552671"}, "message"},
		{"message too long", alert.Request{Channel: alert.ChannelSMS, To: "+14155552671", Message: strings.Repeat("x", 1601)}, "message"},
		{"missing recipient", alert.Request{Channel: alert.ChannelSMS, Message: "hi"}, "to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc, _ := newService(pub, nil)

			_, err := svc.Submit(context.Background(), "usr_1", tt.req)

			var verr *validation.Error
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			assert.Empty(t, pub.published)
		})
	}
}

func TestService_SubmitEmergency(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newService(pub, nil)

	a, err := svc.SubmitEmergency(context.Background(), "usr_1", alert.EmergencyRequest{
		To:      "+447911123456",
		Message: "Evacuate now",
	})
	require.NoError(t, err)
	assert.Equal(t, alert.ChannelSMS, a.Channel)
	assert.True(t, a.Emergency)

	_, err = svc.SubmitEmergency(context.Background(), "usr_1", alert.EmergencyRequest{
		To:      "someone@example.com",
		Message: "Evacuate now",
	})
	var verr *validation.Error
	assert.True(t, errors.As(err, &verr))
}

func TestService_Submit_Disabled(t *testing.T) {
	pub := &recordingPublisher{}
	svc, repo := newService(pub, flags{featureflags.FlagDisableAlertsSending: true})

	_, err := svc.Submit(context.Background(), "usr_1", alert.Request{
		Channel: alert.ChannelSMS,
		To:      "+14155552671",
		Message: "hi",
	})
	assert.ErrorIs(t, err, alert.ErrSendingDisabled)
	assert.Empty(t, pub.published)

	stored, err := repo.List(context.Background(), "usr_1", 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestService_Submit_PublishFailureMarksRejected(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("deadline exceeded")}
	svc, _ := newService(pub, nil)
	ctx := context.Background()

	a, err := svc.Submit(ctx, "usr_1", alert.Request{
		Channel: alert.ChannelSMS,
		To:      "+14155552671",
		Message: "hi",
	})
	assert.ErrorIs(t, err, alert.ErrPublishFailed)
	require.NotNil(t, a)
	assert.Equal(t, alert.StatusRejected, a.Status)

	stored, err := svc.List(ctx, "usr_1", 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, alert.StatusRejected, stored[0].Status)
}

func TestService_List(t *testing.T) {
	svc, _ := newService(&recordingPublisher{}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, "usr_1", alert.Request{Channel: alert.ChannelSMS, To: "+14155552671", Message: "hi"})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "usr_1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := svc.List(ctx, "usr_1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := svc.List(ctx, "usr_2", 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) RecordAlert(_ context.Context, channel, status string) {
	r.counts[channel+"/"+status]++
}

func TestService_RecordsOutcomes(t *testing.T) {
	rec := &countingRecorder{counts: map[string]int{}}
	pub := &recordingPublisher{}
	svc := alert.NewService(alert.ServiceConfig{
		Repository: alert.NewInMemoryRepository(),
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		Metrics:    rec,
	})
	ctx := context.Background()

	_, err := svc.Submit(ctx, "usr_1", alert.Request{Channel: alert.ChannelEmail, To: "a@example.com", Message: "hi"})
	require.NoError(t, err)

	pub.mu.Lock()
	pub.err = errors.New("unavailable")
	pub.mu.Unlock()
	_, err = svc.SubmitEmergency(ctx, "usr_1", alert.EmergencyRequest{To: "+14155552671", Message: "help"})
	require.Error(t, err)

	assert.Equal(t, map[string]int{"email/queued": 1, "sms/rejected": 1}, rec.counts)
}
