package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rvoss/swarmview/internal/control"
	"github.com/rvoss/swarmview/internal/swarmd"
)

// scenarioStage tracks progress through the multi-field scenario prompt.
type scenarioStage int

const (
	stageName scenarioStage = iota
	stageBounds
	stageDrones
)

// openTargetPrompt starts the "assign target" prompt for the selected job.
func (m Model) openTargetPrompt() (tea.Model, tea.Cmd) {
	job := m.selectedJob()
	if job == nil {
		return m, nil
	}
	m.prompt = promptTarget
	m.promptJobID = job.ID
	m.promptJob = job.Name
	m.input.Placeholder = "lat, lon"
	m.input.SetValue("")
	m.input.Focus()
	return m, nil
}

// openDronesPrompt starts the "set drone count" prompt for the selected job.
func (m Model) openDronesPrompt() (tea.Model, tea.Cmd) {
	job := m.selectedJob()
	if job == nil {
		return m, nil
	}
	m.prompt = promptDrones
	m.promptJobID = job.ID
	m.promptJob = job.Name
	m.input.Placeholder = strconv.Itoa(job.DroneCount)
	m.input.SetValue("")
	m.input.Focus()
	return m, nil
}

// openScenarioPrompt starts the multi-stage "new scenario" prompt.
func (m Model) openScenarioPrompt() (tea.Model, tea.Cmd) {
	m.prompt = promptScenario
	m.scenarioStage = stageName
	m.pendingSpec = swarmd.ScenarioSpec{Visibility: "private"}
	m.input.Placeholder = "scenario name"
	m.input.SetValue("")
	m.input.Focus()
	return m, nil
}

// handlePromptKey processes keys while an inline prompt is open.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.closePrompt()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		return m.confirmPrompt()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
}

// confirmPrompt validates the current prompt value and either advances to
// the next stage or dispatches the action.
func (m Model) confirmPrompt() (tea.Model, tea.Cmd) {
	value := m.input.Value()

	switch m.prompt {
	case promptTarget:
		lat, lon, err := parseLatLon(value)
		if err != nil {
			m.notice = err.Error()
			m.noticeIsErr = true
			return m, nil
		}
		jobID := m.promptJobID
		m.closePrompt()
		return m.dispatch("assigning target", func(ctx context.Context) error {
			return m.coordinator.AssignTarget(ctx, jobID, lat, lon)
		})

	case promptDrones:
		count, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			m.notice = "drone count must be a whole number"
			m.noticeIsErr = true
			return m, nil
		}
		jobID := m.promptJobID
		m.closePrompt()
		return m.dispatch("setting drone count", func(ctx context.Context) error {
			return m.coordinator.SetDroneCount(ctx, jobID, count)
		})

	case promptScenario:
		return m.confirmScenarioStage(value)
	}

	m.closePrompt()
	return m, nil
}

func (m Model) confirmScenarioStage(value string) (tea.Model, tea.Cmd) {
	switch m.scenarioStage {
	case stageName:
		name := strings.TrimSpace(value)
		if name == "" {
			m.notice = "scenario name is required"
			m.noticeIsErr = true
			return m, nil
		}
		m.pendingSpec.Name = name
		m.scenarioStage = stageBounds
		m.input.Placeholder = "minLat, minLon, maxLat, maxLon"
		m.input.SetValue("")
		return m, nil

	case stageBounds:
		bounds, err := parseBounds(value)
		if err != nil {
			m.notice = err.Error()
			m.noticeIsErr = true
			return m, nil
		}
		m.pendingSpec.Bounds = bounds
		m.scenarioStage = stageDrones
		m.input.Placeholder = "drone count"
		m.input.SetValue("")
		return m, nil

	case stageDrones:
		count, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || count < 0 {
			m.notice = "drone count must be a non-negative whole number"
			m.noticeIsErr = true
			return m, nil
		}
		m.pendingSpec.DroneCount = count
		m.closePrompt()
		// A fresh logical attempt starts here. Retries of this same
		// submission keep the attempt and therefore the key.
		m.attempt = control.NewAttempt("scenario")
		return m.dispatchCreateScenario()
	}

	m.closePrompt()
	return m, nil
}

// dispatchCreateScenario submits the pending spec with the current attempt.
func (m Model) dispatchCreateScenario() (tea.Model, tea.Cmd) {
	if m.coordinator == nil {
		return m, nil
	}
	m.notice = "creating scenario..."
	m.noticeIsErr = false
	ctx := m.ctx
	attempt := m.attempt
	spec := m.pendingSpec
	coordinator := m.coordinator
	return m, func() tea.Msg {
		id, err := coordinator.CreateScenario(ctx, attempt, spec)
		return actionDoneMsg{verb: "creating scenario", createdID: id, err: err}
	}
}

// parseLatLon parses a "lat, lon" pair.
func parseLatLon(s string) (lat, lon float64, err error) {
	parts := splitFields(s)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"lat, lon\"")
	}
	lat, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q", parts[0])
	}
	lon, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q", parts[1])
	}
	return lat, lon, nil
}

// parseBounds parses a "minLat, minLon, maxLat, maxLon" 4-tuple.
func parseBounds(s string) ([4]swarmd.Coord, error) {
	var bounds [4]swarmd.Coord
	parts := splitFields(s)
	if len(parts) != 4 {
		return bounds, fmt.Errorf("expected \"minLat, minLon, maxLat, maxLon\"")
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return bounds, fmt.Errorf("bad coordinate %q", part)
		}
		bounds[i] = swarmd.Coord(v)
	}
	return bounds, nil
}

func splitFields(s string) []string {
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
