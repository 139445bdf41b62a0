package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rvoss/swarmview/internal/feed"
)

// renderHeader renders the status bar: logo, feed source, snapshot freshness
// and connection state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	parts := []string{styles.Logo.Render("swarmview")}

	if !m.hasSnapshot {
		parts = append(parts, styles.Warning.Bold(true).Render("Connecting to swarmd..."))
		return m.headerBar(strings.Join(parts, sep))
	}

	parts = append(parts, m.renderSourceBadge(styles))

	snap := m.snapshot
	if snap.IsOffline() {
		parts = append(parts,
			styles.Danger.Bold(true).Render("SWARMD UNREACHABLE"),
			m.spin.View()+styles.Warning.Render(" retrying"))
	} else if snap.LastError != nil {
		// Soft failure: last fetch failed but the shown state is recent.
		parts = append(parts, m.spin.View()+styles.Warning.Render(" retrying"))
	}

	if snap.Stale {
		parts = append(parts, styles.Muted.Render("refreshing"))
	}

	running := styles.Success.Render("running")
	if !snap.State.Running {
		running = styles.Warning.Render("paused")
	}
	parts = append(parts,
		running,
		styles.Text.Render(fmt.Sprintf("tick %d", snap.State.Tick)),
		styles.Muted.Render(formatAge(snap.ReceivedAt, time.Now())),
	)

	if snap.State.Scenario != "" {
		parts = append(parts, styles.Accent.Render(snap.State.Scenario))
	}

	return m.headerBar(strings.Join(parts, sep))
}

// renderSourceBadge shows which transport currently drives the view.
func (m Model) renderSourceBadge(styles Styles) string {
	switch m.selection {
	case feed.SelectStream:
		return styles.Success.Render("stream")
	case feed.SelectPolling:
		return styles.Accent.Render("polling")
	default:
		return styles.Muted.Render("idle")
	}
}

func (m Model) headerBar(content string) string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(content)
}

// renderCommandBar renders the per-view key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	var hints []string
	switch m.currentView {
	case ViewScenarios:
		hints = []string{
			"j/k move", "r reload", "n new scenario", "esc jobs", "? help", "q quit",
		}
	default:
		hints = []string{
			"j/k move", "t target", "a active", "d drones",
			"space pause", "R restart", "s scenarios", "? help", "q quit",
		}
	}

	return styles.Muted.Render(strings.Join(hints, "  "))
}

// formatAge renders how old the shown snapshot is.
func formatAge(receivedAt, now time.Time) string {
	if receivedAt.IsZero() {
		return "no data"
	}
	age := now.Sub(receivedAt)
	if age < 0 {
		age = 0
	}
	switch {
	case age < 2*time.Second:
		return "just now"
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	default:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
}
