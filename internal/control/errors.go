package control

import "fmt"

// Action names one mutating command, so failures surface distinctly per
// action instead of as one generic "command failed".
type Action string

const (
	ActionAssignTarget   Action = "assign target"
	ActionSetActive      Action = "set job active"
	ActionSetDroneCount  Action = "set drone count"
	ActionPause          Action = "pause"
	ActionRestart        Action = "restart"
	ActionCreateScenario Action = "create scenario"
)

// MutationError reports a command that swarmd rejected or that failed in
// transit. The caller owns any retry decision; the coordinator never retries
// on its own because most commands are not idempotent.
type MutationError struct {
	Action Action
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// ValidationError reports a payload rejected client-side before any network
// call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
