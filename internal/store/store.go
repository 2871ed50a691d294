// Package store owns the schedule: an id-keyed collection of events.
// Components receive copies of events, never shared pointers into the
// store's state.
package store

import (
	"context"

	"github.com/agenthands/almanac/internal/core/model"
)

type Store interface {
	// List returns all events, order unspecified.
	List(ctx context.Context) ([]model.Event, error)
	// Get returns the event with the given id, reporting whether it exists.
	Get(ctx context.Context, id string) (model.Event, bool, error)
	// Put inserts the event, or replaces the stored event with the same id.
	// The write is atomic per event.
	Put(ctx context.Context, ev model.Event) error
	// Delete removes the event with the given id; deleting a missing id is
	// not an error.
	Delete(ctx context.Context, id string) error
	Close() error
}
