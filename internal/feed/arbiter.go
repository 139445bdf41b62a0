package feed

import (
	"fmt"

	"github.com/rvoss/swarmview/internal/swarmd"
)

// Selection names which transport currently feeds the snapshot store.
type Selection int

const (
	SelectNone Selection = iota
	SelectPolling
	SelectStream
)

// String returns the lowercase name of the selection.
func (s Selection) String() string {
	switch s {
	case SelectNone:
		return "none"
	case SelectPolling:
		return "polling"
	case SelectStream:
		return "stream"
	default:
		return fmt.Sprintf("selection(%d)", int(s))
	}
}

// Select arbitrates between transports. It is a pure function of the view's
// activation flag and the push stream's health, re-evaluated on every change
// of either input:
//
//   - inactive view: none; both transports are stopped.
//   - stream live: stream; polling keeps running but its output is
//     suppressed.
//   - anything else (unopened, connecting, degraded, closed): polling.
func Select(active bool, health swarmd.Health) Selection {
	if !active {
		return SelectNone
	}
	if health == swarmd.HealthLive {
		return SelectStream
	}
	return SelectPolling
}
