// Package city manages the cities users save to their dashboard.
package city

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrCityNotFound = errors.New("city not found")
	ErrCityExists   = errors.New("city already saved")
)

// MaxNameLength bounds saved city names.
const MaxNameLength = 100

// City is a saved city.
type City struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveInput is the payload for saving a city.
type SaveInput struct {
	Name    string   `json:"name" validate:"required,max=100"`
	Country string   `json:"country,omitempty" validate:"omitempty,len=2,alpha"`
	Lat     *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lon     *float64 `json:"lon,omitempty" validate:"omitempty,longitude"`
}
