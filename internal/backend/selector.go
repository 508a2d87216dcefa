package backend

import (
	"fmt"
	"time"
)

// Selection is the outcome of picking a video backend for a request.
type Selection struct {
	Backend       VideoBackend  `json:"backend"`
	Justification string        `json:"justification"`
	EstimatedTime time.Duration `json:"estimated_time_ns"`
	EstimatedCost float64       `json:"estimated_cost_usd"`
}

// Select maps a target duration and a priority onto one catalog entry. It is
// a pure function and total: every input yields a value. Unrecognized
// priorities take the cost branch, which is a defined default rather than an
// error; the justification names the fallback so the routing stays visible.
func Select(duration time.Duration, priority Priority) Selection {
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}

	switch priority {
	case PrioritySpeed:
		spec := videoSpec(VideoVeoTurbo)
		return Selection{
			Backend:       VideoVeoTurbo,
			Justification: fmt.Sprintf("fastest turnaround: cloud rendering at $%.2f per second of output", spec.CostPerSecond),
			EstimatedTime: renderTime(seconds, spec),
			EstimatedCost: seconds * spec.CostPerSecond,
		}
	case PriorityQuality:
		spec := videoSpec(VideoHunyuanLocal)
		return Selection{
			Backend:       VideoHunyuanLocal,
			Justification: "highest fidelity: local rendering at zero marginal cost, longest wall-clock time",
			EstimatedTime: renderTime(seconds, spec),
			EstimatedCost: 0,
		}
	default:
		spec := videoSpec(VideoLTXLocal)
		justification := "lowest cost: free local rendering at medium fidelity"
		if priority != PriorityCost {
			justification = fmt.Sprintf("unrecognized priority %q, defaulting to lowest cost: free local rendering at medium fidelity", priority)
		}
		return Selection{
			Backend:       VideoLTXLocal,
			Justification: justification,
			EstimatedTime: renderTime(seconds, spec),
			EstimatedCost: 0,
		}
	}
}

func renderTime(seconds float64, spec Spec) time.Duration {
	return time.Duration(seconds * spec.RenderFactor * float64(time.Second))
}
