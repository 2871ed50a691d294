package model

// Mode is a travel mode supported by the routing provider.
type Mode string

const (
	ModeWalking Mode = "walking"
	ModeDriving Mode = "driving"
	ModeTransit Mode = "transit"
)

// Modes lists all travel modes in the order segments report them.
var Modes = []Mode{ModeWalking, ModeDriving, ModeTransit}

// RouteSummary is one pre-computed route from the routing provider.
// Zero distance and duration with empty steps means the provider could not
// compute the route; consumers must treat that as unknown, not free.
type RouteSummary struct {
	Mode     Mode         `json:"routeType"`
	Distance float64      `json:"distance"` // meters
	Duration float64      `json:"duration"` // seconds
	Steps    []string     `json:"steps"`
	Polyline [][2]float64 `json:"polyline"` // longitude, latitude pairs
}

// UnknownRoute is the placeholder summary used when a mode lookup fails.
func UnknownRoute(mode Mode) RouteSummary {
	return RouteSummary{Mode: mode, Steps: []string{}, Polyline: [][2]float64{}}
}

// Unknown reports whether the summary is the could-not-compute placeholder.
func (r RouteSummary) Unknown() bool {
	return r.Duration == 0 && r.Distance == 0 && len(r.Steps) == 0
}

// Minutes returns the route duration in whole minutes, rounded.
func (r RouteSummary) Minutes() int {
	return int(r.Duration/60 + 0.5)
}

// RouteSegment is the travel leg between two time-adjacent, geolocated
// events, with one summary per mode and the advisor's recommendation.
// Segments are rebuilt on every planning pass and never persisted.
type RouteSegment struct {
	From       Event        `json:"from"`
	To         Event        `json:"to"`
	Walking    RouteSummary `json:"walking"`
	Driving    RouteSummary `json:"driving"`
	Transit    RouteSummary `json:"transit"`
	Suggestion string       `json:"suggestion"`
}
