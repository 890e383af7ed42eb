package models

import "github.com/weathervibe/weathervibe/internal/city"

// CityListResponse is the list of a user's saved cities.
type CityListResponse struct {
	Items []*city.City      `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
