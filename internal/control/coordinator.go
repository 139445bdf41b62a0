package control

import (
	"context"
	"fmt"
	"strings"

	"github.com/rvoss/swarmview/internal/state"
	"github.com/rvoss/swarmview/internal/swarmd"
)

// Refresher requests an immediate authoritative re-read after an accepted
// mutation. Implemented by *feed.Manager.
type Refresher interface {
	Refresh()
}

// Coordinator dispatches mutating commands to swarmd and keeps the snapshot
// store honest afterwards: an accepted mutation invalidates the store and
// requests a refresh instead of synthesizing an optimistic local snapshot,
// because the simulation may transform a requested change before applying
// it. Failed commands are returned as *MutationError; the coordinator never
// retries by itself.
type Coordinator struct {
	client  swarmd.Mutator
	store   *state.Store
	refresh Refresher
}

// NewCoordinator builds a Coordinator. refresh may be nil in tests.
func NewCoordinator(client swarmd.Mutator, store *state.Store, refresh Refresher) *Coordinator {
	return &Coordinator{client: client, store: store, refresh: refresh}
}

// AssignTarget points a job's swarm at a new target position.
func (c *Coordinator) AssignTarget(ctx context.Context, jobID int64, lat, lon float64) error {
	if err := validateLatLon(lat, lon); err != nil {
		return err
	}
	target := &swarmd.GeoPoint{Lat: swarmd.Coord(lat), Lon: swarmd.Coord(lon)}
	_, err := c.client.PatchJob(ctx, jobID, swarmd.JobPatch{Target: target})
	return c.settle(ActionAssignTarget, err)
}

// SetJobActive toggles one job between running and parked.
func (c *Coordinator) SetJobActive(ctx context.Context, jobID int64, active bool) error {
	_, err := c.client.PatchJob(ctx, jobID, swarmd.JobPatch{IsActive: &active})
	return c.settle(ActionSetActive, err)
}

// SetDroneCount resizes a job's swarm.
func (c *Coordinator) SetDroneCount(ctx context.Context, jobID int64, count int) error {
	if count < 0 {
		return &ValidationError{Field: "drone count", Reason: fmt.Sprintf("must not be negative, got %d", count)}
	}
	_, err := c.client.PatchJob(ctx, jobID, swarmd.JobPatch{DroneCount: &count})
	return c.settle(ActionSetDroneCount, err)
}

// Pause toggles the simulation's global play/pause state. Not idempotent:
// pausing twice is resuming, so no automatic retry ever happens here.
func (c *Coordinator) Pause(ctx context.Context) error {
	return c.settle(ActionPause, c.client.Pause(ctx))
}

// Restart restarts the simulation from its initial conditions.
func (c *Coordinator) Restart(ctx context.Context) error {
	return c.settle(ActionRestart, c.client.Restart(ctx))
}

// CreateScenario creates a scenario under the given attempt's idempotency
// key. Retrying after an unknown outcome is safe with the same attempt; a
// new user decision needs a new attempt.
func (c *Coordinator) CreateScenario(ctx context.Context, attempt *Attempt, spec swarmd.ScenarioSpec) (string, error) {
	if attempt == nil {
		return "", &ValidationError{Field: "attempt", Reason: "creation requires an idempotency attempt"}
	}
	if err := validateScenarioSpec(spec); err != nil {
		return "", err
	}
	created, err := c.client.CreateScenario(ctx, spec, attempt.Key())
	if err := c.settle(ActionCreateScenario, err); err != nil {
		return "", err
	}
	return created.ID, nil
}

// settle converts a client error into a MutationError, or records the
// accepted mutation by invalidating the store and kicking a refresh.
func (c *Coordinator) settle(action Action, err error) error {
	if err != nil {
		return &MutationError{Action: action, Err: err}
	}
	if c.store != nil {
		c.store.Invalidate()
	}
	if c.refresh != nil {
		c.refresh.Refresh()
	}
	return nil
}

func validateLatLon(lat, lon float64) error {
	if !swarmd.Coord(lat).Finite() {
		return &ValidationError{Field: "latitude", Reason: "must be finite"}
	}
	if !swarmd.Coord(lon).Finite() {
		return &ValidationError{Field: "longitude", Reason: "must be finite"}
	}
	if lat < -90 || lat > 90 {
		return &ValidationError{Field: "latitude", Reason: fmt.Sprintf("out of range: %v", lat)}
	}
	if lon < -180 || lon > 180 {
		return &ValidationError{Field: "longitude", Reason: fmt.Sprintf("out of range: %v", lon)}
	}
	return nil
}

func validateScenarioSpec(spec swarmd.ScenarioSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	for i, bound := range spec.Bounds {
		if !bound.Finite() {
			return &ValidationError{Field: "bounds", Reason: fmt.Sprintf("bound %d must be finite", i)}
		}
	}
	if spec.Bounds[0] > spec.Bounds[2] {
		return &ValidationError{Field: "bounds", Reason: "min latitude exceeds max latitude"}
	}
	if spec.Bounds[1] > spec.Bounds[3] {
		return &ValidationError{Field: "bounds", Reason: "min longitude exceeds max longitude"}
	}
	if spec.DroneCount < 0 {
		return &ValidationError{Field: "drone count", Reason: fmt.Sprintf("must not be negative, got %d", spec.DroneCount)}
	}
	return nil
}
