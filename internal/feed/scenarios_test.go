package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rvoss/swarmview/internal/swarmd"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type scriptedLister struct {
	mu        sync.Mutex
	calls     int
	scenarios []swarmd.Scenario
	err       error
}

func (s *scriptedLister) FetchState(context.Context) (*swarmd.SimState, error) {
	return nil, errors.New("not used")
}

func (s *scriptedLister) ListScenarios(context.Context, swarmd.ScenarioQuery) ([]swarmd.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.scenarios, nil
}

func (s *scriptedLister) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCatalog_CachesAndBacksOff(t *testing.T) {
	lister := &scriptedLister{scenarios: []swarmd.Scenario{{ID: "s-1", Name: "Harbor Sweep"}}}
	c := NewCatalog(lister, 2*time.Second)

	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	scenarios, err := c.Refresh(context.Background(), swarmd.ScenarioQuery{})
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if len(scenarios) != 1 || scenarios[0].ID != "s-1" {
		t.Fatalf("Refresh = %#v, want cached s-1", scenarios)
	}

	// A failure keeps the cached listing and starts backing off.
	lister.err = errors.New("listing unavailable")
	scenarios, err = c.Refresh(context.Background(), swarmd.ScenarioQuery{})
	if err == nil {
		t.Fatal("Refresh returned nil error after failure")
	}
	if len(scenarios) != 1 {
		t.Fatalf("Refresh dropped cache on failure: %#v", scenarios)
	}

	// Within the backoff window no network call is made.
	callsBefore := lister.callCount()
	now = now.Add(time.Second)
	if _, err := c.Refresh(context.Background(), swarmd.ScenarioQuery{}); err == nil {
		t.Fatal("Refresh inside backoff returned nil error")
	}
	if lister.callCount() != callsBefore {
		t.Fatalf("Refresh hit the network inside the backoff window")
	}

	// After the window the next call goes through and a success resets.
	lister.err = nil
	now = now.Add(10 * time.Second)
	scenarios, err = c.Refresh(context.Background(), swarmd.ScenarioQuery{})
	if err != nil {
		t.Fatalf("Refresh after backoff returned error: %v", err)
	}
	if lister.callCount() != callsBefore+1 {
		t.Fatalf("calls = %d, want %d", lister.callCount(), callsBefore+1)
	}
	if len(scenarios) != 1 {
		t.Fatalf("Refresh = %#v, want listing", scenarios)
	}

	if got := c.Scenarios(); len(got) != 1 || got[0].ID != "s-1" {
		t.Fatalf("Scenarios = %#v, want cached s-1", got)
	}
}
