// Package route assembles per-segment travel information for an ordered
// schedule from an external routing provider.
package route

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/almanac/internal/core/advisor"
	"github.com/agenthands/almanac/internal/core/model"
)

// FailureText replaces the advisory when no mode could be computed for a
// segment.
const FailureText = "抱歉，无法获取路线信息"

// Planner is the routing provider boundary: one pre-computed route summary
// per mode, or an error for that mode.
type Planner interface {
	Route(ctx context.Context, mode model.Mode, origin, destination model.Coordinates) (model.RouteSummary, error)
}

type Aggregator struct {
	planner Planner
	advisor *advisor.Advisor
	// maxParallel bounds how many segments are computed at once; the three
	// mode lookups inside a segment always run concurrently.
	maxParallel int
}

func NewAggregator(planner Planner, adv *advisor.Advisor, maxParallel int) *Aggregator {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Aggregator{planner: planner, advisor: adv, maxParallel: maxParallel}
}

// Plan builds one RouteSegment per pair of temporally adjacent events that
// both carry coordinates. Pairs with a missing coordinate are skipped
// silently. Mode lookups that fail degrade to unknown summaries; the
// returned errors describe those degraded lookups and are informational
// only — a failed provider never discards a segment or the plan.
func (a *Aggregator) Plan(ctx context.Context, events []model.Event) ([]model.RouteSegment, []error) {
	if len(events) < 2 {
		return nil, nil
	}

	// Callers should pass events sorted by start; re-sort defensively on a
	// copy so segment pairing is always chronological.
	ordered := make([]model.Event, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	type pair struct{ from, to model.Event }
	var pairs []pair
	for i := 0; i < len(ordered)-1; i++ {
		if !ordered[i].Located() || !ordered[i+1].Located() {
			continue
		}
		pairs = append(pairs, pair{ordered[i], ordered[i+1]})
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	segments := make([]model.RouteSegment, len(pairs))
	errsPerPair := make([][]error, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxParallel)
	for i, p := range pairs {
		i, p := i, p
		g.Go(func() error {
			segments[i], errsPerPair[i] = a.buildSegment(gctx, p.from, p.to)
			return nil
		})
	}
	g.Wait() // workers never return errors; failures degrade per mode

	var errs []error
	for _, e := range errsPerPair {
		errs = append(errs, e...)
	}
	return segments, errs
}

// buildSegment looks up all three modes concurrently and derives the
// advisory from whatever succeeded.
func (a *Aggregator) buildSegment(ctx context.Context, from, to model.Event) (model.RouteSegment, []error) {
	summaries := make([]model.RouteSummary, len(model.Modes))
	lookupErrs := make([]error, len(model.Modes))

	var wg sync.WaitGroup
	for i, mode := range model.Modes {
		i, mode := i, mode
		wg.Add(1)
		go func() {
			defer wg.Done()
			summary, err := a.planner.Route(ctx, mode, *from.Coordinates, *to.Coordinates)
			if err != nil {
				log.Printf("%s route %q -> %q failed: %v", mode, from.Title, to.Title, err)
				lookupErrs[i] = fmt.Errorf("%s route from %q to %q: %w", mode, from.Title, to.Title, err)
				summaries[i] = model.UnknownRoute(mode)
				return
			}
			summaries[i] = summary
		}()
	}
	wg.Wait()

	segment := model.RouteSegment{
		From:    from,
		To:      to,
		Walking: summaries[0],
		Driving: summaries[1],
		Transit: summaries[2],
	}

	if segment.Walking.Unknown() && segment.Driving.Unknown() && segment.Transit.Unknown() {
		segment.Suggestion = FailureText
	} else {
		// Idle time between the two events; negative when they abut or
		// overlap, which the advisor clamps to zero.
		idleMinutes := to.Start.Sub(from.End).Minutes()
		segment.Suggestion, _ = a.advisor.Recommend(segment.Walking, segment.Driving, segment.Transit, idleMinutes)
	}

	var errs []error
	for _, err := range lookupErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return segment, errs
}
