// Package featureflags provides runtime switches that operators can flip
// without a deploy.
package featureflags

import (
	"time"
)

// Well-known feature flag keys.
const (
	// FlagDisableAlertsSending stops new alerts from being handed to the notifier.
	FlagDisableAlertsSending = "disable_alerts_sending"

	// FlagDisableChatAssistant turns the weather assistant off.
	FlagDisableChatAssistant = "disable_chat_assistant"

	// FlagDisableAmbientAudio drops the audio track from resolved media.
	FlagDisableAmbientAudio = "disable_ambient_audio"

	// FlagDisableVideoBackgrounds drops the video loop from resolved media.
	FlagDisableVideoBackgrounds = "disable_video_backgrounds"
)

// Flag is a feature flag and its current value.
type Flag struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BoolValue returns the value as a boolean, or def if the flag is nil or not boolean.
func (f *Flag) BoolValue(def bool) bool {
	if f == nil {
		return def
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON numbers
		return v != 0
	default:
		return def
	}
}

// StringValue returns the value as a string, or def.
func (f *Flag) StringValue(def string) string {
	if f == nil {
		return def
	}
	if v, ok := f.Value.(string); ok {
		return v
	}
	return def
}

func (f *Flag) clone() *Flag {
	c := *f
	return &c
}

// DefaultFlags returns the value every known flag has until it is set.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	keys := []string{
		FlagDisableAlertsSending,
		FlagDisableChatAssistant,
		FlagDisableAmbientAudio,
		FlagDisableVideoBackgrounds,
	}

	flags := make(map[string]*Flag, len(keys))
	for _, k := range keys {
		flags[k] = &Flag{Key: k, Value: false, UpdatedAt: now}
	}
	return flags
}

// IsKnown reports whether key is one of the well-known flags.
func IsKnown(key string) bool {
	_, ok := DefaultFlags()[key]
	return ok
}
