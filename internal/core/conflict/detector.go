package conflict

import (
	"fmt"

	"github.com/agenthands/almanac/internal/core/model"
)

// Detect reports one description per existing event whose [start, end)
// interval overlaps the candidate's. Two intervals overlap iff
// s1 < e2 && e1 > s2, so events that merely touch at an endpoint do not
// conflict, and sharing a calendar day is never a conflict by itself.
// An existing event with the candidate's own id is skipped.
//
// Pure over its inputs; the order of descriptions follows existing.
func Detect(candidate model.Event, existing []model.Event) []string {
	var conflicts []string
	for _, ev := range existing {
		if ev.ID == candidate.ID {
			continue
		}
		if candidate.Start.Before(ev.End) && candidate.End.After(ev.Start) {
			conflicts = append(conflicts, fmt.Sprintf(
				`与"%s"(%s - %s)时间冲突`,
				ev.Title,
				ev.Start.Format("01-02 15:04"),
				ev.End.Format("15:04"),
			))
		}
	}
	return conflicts
}
