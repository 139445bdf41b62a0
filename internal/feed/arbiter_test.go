package feed

import (
	"testing"

	"github.com/rvoss/swarmview/internal/swarmd"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		active bool
		health swarmd.Health
		want   Selection
	}{
		{"inactive unopened", false, swarmd.HealthUnopened, SelectNone},
		{"inactive live", false, swarmd.HealthLive, SelectNone},
		{"active unopened", true, swarmd.HealthUnopened, SelectPolling},
		{"active connecting", true, swarmd.HealthConnecting, SelectPolling},
		{"active live", true, swarmd.HealthLive, SelectStream},
		{"active degraded", true, swarmd.HealthDegraded, SelectPolling},
		{"active closed", true, swarmd.HealthClosed, SelectPolling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(tt.active, tt.health); got != tt.want {
				t.Errorf("Select(%v, %v) = %v, want %v", tt.active, tt.health, got, tt.want)
			}
		})
	}
}

func TestSelection_String(t *testing.T) {
	tests := []struct {
		selection Selection
		want      string
	}{
		{SelectNone, "none"},
		{SelectPolling, "polling"},
		{SelectStream, "stream"},
		{Selection(42), "selection(42)"},
	}
	for _, tt := range tests {
		if got := tt.selection.String(); got != tt.want {
			t.Errorf("Selection(%d).String() = %q, want %q", int(tt.selection), got, tt.want)
		}
	}
}
