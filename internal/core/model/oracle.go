package model

import (
	"fmt"
	"time"
)

// Matches the JSON shape the assistant system prompt instructs the oracle
// to produce: either a query with a time range or a create with proposals.
type OracleResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Type       string          `json:"type,omitempty"` // "query" or "create"
	Events     []ProposedEvent `json:"events,omitempty"`
	QueryRange *QueryRange     `json:"queryRange,omitempty"`
}

type QueryRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ProposedEvent is an event as the oracle emits it, timestamps still in
// local wall-clock text form.
type ProposedEvent struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// oracleTimeLayouts covers both zoned and zone-less timestamps; models are
// inconsistent about emitting offsets.
var oracleTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseOracleTime parses a timestamp from oracle output, interpreting
// zone-less values in loc.
func ParseOracleTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range oracleTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ToEvent converts a proposal into an Event, parsing its timestamps in loc.
func (p ProposedEvent) ToEvent(loc *time.Location) (Event, error) {
	start, err := ParseOracleTime(p.Start, loc)
	if err != nil {
		return Event{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := ParseOracleTime(p.End, loc)
	if err != nil {
		return Event{}, fmt.Errorf("invalid end: %w", err)
	}
	return Event{
		Title:       p.Title,
		Description: p.Description,
		Start:       start,
		End:         end,
		Location:    p.Location,
	}, nil
}
