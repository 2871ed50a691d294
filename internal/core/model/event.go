package model

import "time"

// Coordinates is a WGS-84 style longitude/latitude pair as returned by the
// AMap geocoder (degrees, longitude first).
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Event is a single calendar entry. The schedule store is the owner; every
// other component receives copies. End is expected to be strictly after
// Start; proposals violating that are rejected before they reach the
// conflict logic.
type Event struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	Color       string       `json:"color,omitempty"`
	Location    string       `json:"location,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Address     string       `json:"address,omitempty"` // formatted address from the geocoder
}

// Located reports whether the event carries a resolved coordinate and can
// therefore participate in route planning.
func (e Event) Located() bool {
	return e.Coordinates != nil
}
