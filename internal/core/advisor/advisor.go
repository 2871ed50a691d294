package advisor

import (
	"fmt"
	"math"

	"github.com/agenthands/almanac/internal/core/model"
)

// Policy holds the tunable thresholds of the recommendation heuristic.
type Policy struct {
	// WalkMaxMeters is the longest distance still worth walking.
	WalkMaxMeters float64
	// BufferMinutes is the safety margin kept on top of travel time.
	BufferMinutes float64
	// TransitFactor is how much slower than driving transit may be and
	// still win on cost.
	TransitFactor float64
}

// DefaultPolicy returns the documented defaults: 1km walking threshold,
// 20 minute buffer, 1.5x transit tolerance.
func DefaultPolicy() Policy {
	return Policy{
		WalkMaxMeters: 1000,
		BufferMinutes: 20,
		TransitFactor: 1.5,
	}
}

type Advisor struct {
	policy Policy
}

func New(policy Policy) *Advisor {
	if policy.WalkMaxMeters <= 0 {
		policy.WalkMaxMeters = DefaultPolicy().WalkMaxMeters
	}
	if policy.BufferMinutes <= 0 {
		policy.BufferMinutes = DefaultPolicy().BufferMinutes
	}
	if policy.TransitFactor <= 0 {
		policy.TransitFactor = DefaultPolicy().TransitFactor
	}
	return &Advisor{policy: policy}
}

// Recommend picks one travel mode for a segment given the three mode
// summaries and the idle minutes between the two events. Rules are
// evaluated in order, first match wins:
//
//  1. short walk and plenty of time -> walk
//  2. tighter than the fastest motorized option plus buffer -> drive
//  3. transit competitive with driving -> transit
//  4. otherwise -> drive
//
// Unknown summaries never win a comparison: their minutes count as
// infinite. Negative idle time (events abut or overlap) is treated as
// zero, which forces the time-pressure rule.
func (a *Advisor) Recommend(walking, driving, transit model.RouteSummary, idleMinutes float64) (string, model.Mode) {
	if idleMinutes < 0 {
		idleMinutes = 0
	}

	walkingMinutes := summaryMinutes(walking)
	drivingMinutes := summaryMinutes(driving)
	transitMinutes := summaryMinutes(transit)

	if !walking.Unknown() && walking.Distance <= a.policy.WalkMaxMeters &&
		idleMinutes > walkingMinutes+a.policy.BufferMinutes {
		return fmt.Sprintf("建议步行前往，距离较近（%.1fkm），步行%d分钟可到达。",
			walking.Distance/1000, walking.Minutes()), model.ModeWalking
	}

	if fastest := math.Min(transitMinutes, drivingMinutes); !math.IsInf(fastest, 1) &&
		idleMinutes < fastest+a.policy.BufferMinutes {
		if driving.Unknown() {
			return "时间较紧张，建议打车前往。", model.ModeDriving
		}
		return fmt.Sprintf("时间较紧张，建议打车前往，预计需要%d分钟。", driving.Minutes()), model.ModeDriving
	}

	if transitMinutes < drivingMinutes*a.policy.TransitFactor {
		return fmt.Sprintf("建议乘坐公交前往，预计需要%d分钟，比较经济环保。",
			transit.Minutes()), model.ModeTransit
	}

	if driving.Unknown() {
		return "建议驾车或打车前往，可以节省时间。", model.ModeDriving
	}
	return fmt.Sprintf("建议驾车或打车前往，预计需要%d分钟，可以节省时间。", driving.Minutes()), model.ModeDriving
}

// summaryMinutes returns the rounded duration in minutes, or +Inf for an
// unknown summary so it loses every comparison instead of looking free.
func summaryMinutes(r model.RouteSummary) float64 {
	if r.Unknown() {
		return math.Inf(1)
	}
	return float64(r.Minutes())
}
