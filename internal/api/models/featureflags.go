package models

import "github.com/weathervibe/weathervibe/internal/featureflags"

// FeatureFlagsResponse lists every known flag.
type FeatureFlagsResponse struct {
	Flags []*featureflags.Flag `json:"flags"`
}

// FeatureFlagUpdate sets one flag.
type FeatureFlagUpdate struct {
	Key   string `json:"key" validate:"required"`
	Value any    `json:"value"`
}

// FeatureFlagsUpdateRequest is the body of PUT /admin/feature-flags.
type FeatureFlagsUpdateRequest struct {
	Flags  []FeatureFlagUpdate `json:"flags" validate:"required,min=1,dive"`
	Reason string              `json:"reason" validate:"required,max=500"`
}
