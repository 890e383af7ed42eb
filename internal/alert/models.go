// Package alert records weather alerts and hands them to the notifier that
// delivers them.
package alert

import (
	"errors"
	"time"
)

// Errors.
var (
	ErrSendingDisabled = errors.New("alert sending disabled")
	ErrPublishFailed   = errors.New("alert hand-off failed")
	ErrAlertNotFound   = errors.New("alert not found")
)

// DefaultSubject is used for email alerts without a subject.
const DefaultSubject = "Weather Alert"

// Channel is the delivery channel.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// Status is the hand-off state of an alert.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRejected Status = "rejected"
)

// Alert is a recorded alert.
type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Channel   Channel   `json:"channel"`
	To        string    `json:"to"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Emergency bool      `json:"emergency"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Request is an alert submission.
type Request struct {
	Channel Channel `json:"type" validate:"required,oneof=sms email"`
	To      string  `json:"to" validate:"required"`
	Subject string  `json:"subject,omitempty" validate:"max=200"`
	Message string  `json:"message" validate:"required,min=1,max=1600"`
}

// EmergencyRequest is an emergency submission. Emergencies always go by SMS.
type EmergencyRequest struct {
	To      string `json:"to" validate:"required,e164"`
	Message string `json:"message" validate:"required,min=1,max=1600"`
}

type smsRecipient struct {
	To string `json:"to" validate:"e164"`
}

type emailRecipient struct {
	To string `json:"to" validate:"email"`
}
