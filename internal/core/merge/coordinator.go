// Package merge applies oracle-proposed events to the schedule under the
// conflict constraints.
package merge

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/agenthands/almanac/internal/core/conflict"
	"github.com/agenthands/almanac/internal/core/model"
	"github.com/agenthands/almanac/internal/store"
)

// Geocoder resolves free-text locations. Failure is non-fatal to merging.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (model.Coordinates, string, error)
}

type Status string

const (
	StatusApplied          Status = "applied"
	StatusRejectedConflict Status = "rejected-conflict"
	StatusRejectedInvalid  Status = "rejected-invalid"
)

// Outcome records what happened to one proposal. The batch is never
// all-or-nothing: callers get one outcome per proposal.
type Outcome struct {
	Event       model.Event `json:"event"`
	Status      Status      `json:"status"`
	Conflicts   []string    `json:"conflicts,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

type Coordinator struct {
	Store    store.Store
	Geocoder Geocoder
	// NewID generates ids for proposals that lack one. Overridable for
	// deterministic tests.
	NewID func() string
}

func NewCoordinator(s store.Store, g Geocoder) *Coordinator {
	return &Coordinator{
		Store:    s,
		Geocoder: g,
		NewID:    uuid.NewString,
	}
}

// Apply merges the proposals into the schedule strictly in order: each
// proposal's conflict check observes every earlier proposal that was
// applied. A conflicting proposal is rejected with its report and three
// alternative-action suggestions and the batch continues. The returned
// error reports store failures only; boundary failures (geocoding) degrade.
func (c *Coordinator) Apply(ctx context.Context, proposals []model.Event) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(proposals))

	for _, proposal := range proposals {
		if proposal.Title == "" || !proposal.End.After(proposal.Start) {
			outcomes = append(outcomes, Outcome{
				Event:  proposal,
				Status: StatusRejectedInvalid,
				Reason: "事件需要标题，且结束时间必须晚于开始时间",
			})
			continue
		}

		c.resolveLocation(ctx, &proposal)

		existing, err := c.Store.List(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("failed to load schedule: %w", err)
		}

		if conflicts := conflict.Detect(proposal, existing); len(conflicts) > 0 {
			outcomes = append(outcomes, Outcome{
				Event:     proposal,
				Status:    StatusRejectedConflict,
				Conflicts: conflicts,
				Suggestions: []string{
					fmt.Sprintf(`将"%s"安排在当前时间前`, proposal.Title),
					fmt.Sprintf(`将"%s"安排在当前冲突事件后`, proposal.Title),
					"将冲突的事件调整到其他时间",
				},
			})
			continue
		}

		if proposal.ID == "" {
			proposal.ID = c.NewID()
		}
		if err := c.Store.Put(ctx, proposal); err != nil {
			return outcomes, fmt.Errorf("failed to save event %q: %w", proposal.Title, err)
		}
		outcomes = append(outcomes, Outcome{Event: proposal, Status: StatusApplied})
	}

	return outcomes, nil
}

// resolveLocation fills in coordinates and the formatted address when the
// proposal names a location. A geocoder failure leaves the event without a
// map pin but still valid.
func (c *Coordinator) resolveLocation(ctx context.Context, proposal *model.Event) {
	if proposal.Location == "" || proposal.Coordinates != nil || c.Geocoder == nil {
		return
	}
	coords, address, err := c.Geocoder.Geocode(ctx, proposal.Location)
	if err != nil {
		log.Printf("geocoding %q failed, keeping event without coordinates: %v", proposal.Location, err)
		return
	}
	proposal.Coordinates = &coords
	proposal.Address = address
}
