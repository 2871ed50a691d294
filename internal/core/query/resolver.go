// Package query turns a time-window intent into the user-facing text
// listing of the matching schedule.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/agenthands/almanac/internal/core/model"
)

// NoEventsText is the fixed sentinel for an empty selection. It is never
// the empty string so the presentation layer can tell "no data" from a
// failed lookup.
const NoEventsText = "暂无日程安排"

// Resolve selects the events whose start instant falls inside
// [windowStart, windowEnd] (inclusive on both ends) and renders them
// time-ascending, one line per event.
func Resolve(schedule []model.Event, windowStart, windowEnd time.Time) string {
	var selected []model.Event
	for _, ev := range schedule {
		if ev.Start.Before(windowStart) || ev.Start.After(windowEnd) {
			continue
		}
		selected = append(selected, ev)
	}
	return FormatEvents(selected)
}

// FormatEvents renders events as "HH:MM-HH:MM title[ 在location]" lines,
// sorted ascending by start, skipping entries with no title or no times.
// Also used to serialize the schedule as oracle context.
func FormatEvents(events []model.Event) string {
	valid := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Title == "" || ev.Start.IsZero() || ev.End.IsZero() {
			continue
		}
		valid = append(valid, ev)
	}
	if len(valid) == 0 {
		return NoEventsText
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Start.Before(valid[j].Start)
	})

	lines := make([]string, 0, len(valid))
	for _, ev := range valid {
		line := ev.Start.Format("15:04") + "-" + ev.End.Format("15:04") + " " + ev.Title
		if ev.Location != "" {
			line += " 在" + ev.Location
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
