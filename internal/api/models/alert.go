package models

import "github.com/weathervibe/weathervibe/internal/alert"

// AlertListResponse is a user's submitted alerts, newest first.
type AlertListResponse struct {
	Items []*alert.Alert    `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
