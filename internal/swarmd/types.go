package swarmd

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// coordPrecision is the fixed number of decimal places every coordinate is
// canonicalized to on the wire. Retried requests marshal byte-identically,
// which lets swarmd deduplicate creations by content and idempotency key.
const coordPrecision = 9

// Coord is a single canonical coordinate value. It always marshals with
// exactly nine decimal places and refuses non-finite values.
type Coord float64

// MarshalJSON renders the coordinate at fixed precision.
func (c Coord) MarshalJSON() ([]byte, error) {
	f := float64(c)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("coordinate is not finite: %v", f)
	}
	return []byte(strconv.FormatFloat(f, 'f', coordPrecision, 64)), nil
}

// Finite reports whether the coordinate can be transmitted.
func (c Coord) Finite() bool {
	f := float64(c)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// GeoPoint is a canonical lat/lon pair.
type GeoPoint struct {
	Lat Coord `json:"lat"`
	Lon Coord `json:"lon"`
}

// SimState mirrors the payload of GET /state and of /stream/state events.
// It is one complete representation of the simulation at a point in time;
// swarmview never patches it field by field.
type SimState struct {
	Tick      uint64  `json:"tick"`
	Running   bool    `json:"running"`
	Scenario  string  `json:"scenario"`
	UpdatedAt string  `json:"updatedAt"`
	Jobs      []Job   `json:"jobs"`
	Drones    []Drone `json:"drones"`
}

// Job describes one swarm job: a group of drones working a target.
type Job struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	IsActive   bool      `json:"is_active"`
	DroneCount int       `json:"drone_count"`
	Target     *GeoPoint `json:"target,omitempty"`
	UpdatedAt  string    `json:"updated_at"`
}

// Drone is a single vehicle position report inside a SimState.
type Drone struct {
	ID       string   `json:"id"`
	JobID    int64    `json:"job_id"`
	Status   string   `json:"status"`
	Battery  float64  `json:"battery"`
	Position GeoPoint `json:"position"`
}

// JobPatch carries the mutable job fields for PATCH /api/jobs/{id}.
// Nil fields are left untouched by the server.
type JobPatch struct {
	Target     *GeoPoint `json:"target,omitempty"`
	IsActive   *bool     `json:"is_active,omitempty"`
	DroneCount *int      `json:"drone_count,omitempty"`
}

// Scenario mirrors one entry of GET /scenarios.
type Scenario struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	DroneCount int    `json:"drone_count"`
	CreatedAt  string `json:"created_at"`
}

// ScenarioQuery configures /scenarios listing requests.
type ScenarioQuery struct {
	Visibility string
	Limit      int
	Sort       string
}

// ScenarioSpec is the body of POST /scenarios. Bounds is the scenario's
// bounding box as a 4-tuple: min lat, min lon, max lat, max lon.
type ScenarioSpec struct {
	Name       string   `json:"name"`
	Visibility string   `json:"visibility"`
	Bounds     [4]Coord `json:"bounds"`
	DroneCount int      `json:"drone_count,omitempty"`
}

// ScenarioCreated is the response to a scenario creation.
type ScenarioCreated struct {
	ID string `json:"id"`
}

// ParsedUpdatedAt returns the state timestamp as time.Time when possible.
func (s SimState) ParsedUpdatedAt() time.Time {
	return parseTime(s.UpdatedAt)
}

// ParsedUpdatedAt returns the job timestamp as time.Time when possible.
func (j Job) ParsedUpdatedAt() time.Time {
	return parseTime(j.UpdatedAt)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
