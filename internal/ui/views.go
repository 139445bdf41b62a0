package ui

import (
	"fmt"
	"strings"
)

// renderMain renders the full UI: header, command bar, content, footer.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n\n")

	switch m.currentView {
	case ViewScenarios:
		b.WriteString(m.renderScenarios())
	default:
		b.WriteString(m.renderJobs())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderJobs renders the jobs table.
func (m Model) renderJobs() string {
	styles := m.theme.Styles()

	if !m.hasSnapshot {
		return styles.Muted.Render("  waiting for first state...")
	}

	jobs := m.snapshot.State.Jobs
	if len(jobs) == 0 {
		return styles.Muted.Render("  no jobs in this scenario")
	}

	var b strings.Builder
	b.WriteString(styles.TableHead.Render(fmt.Sprintf(
		"  %-6s %-24s %-12s %-8s %-7s %s",
		"ID", "NAME", "STATUS", "ACTIVE", "DRONES", "TARGET")))
	b.WriteString("\n")

	for i, job := range jobs {
		active := "no"
		if job.IsActive {
			active = "yes"
		}
		target := "-"
		if job.Target != nil {
			target = fmt.Sprintf("%.5f, %.5f", float64(job.Target.Lat), float64(job.Target.Lon))
		}
		row := fmt.Sprintf("  %-6d %-24s %-12s %-8s %-7d %s",
			job.ID, truncate(job.Name, 24), job.Status, active, job.DroneCount, target)

		if i == m.selectedRow {
			b.WriteString(styles.Selected.Render(row))
		} else {
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Muted.Render(fmt.Sprintf("  %d jobs, %d drones",
		len(jobs), len(m.snapshot.State.Drones))))

	return b.String()
}

// renderScenarios renders the scenario catalog.
func (m Model) renderScenarios() string {
	styles := m.theme.Styles()

	if len(m.scenarios) == 0 {
		if m.scenariosErr != nil {
			return styles.Danger.Render(fmt.Sprintf("  scenario list unavailable: %v", m.scenariosErr))
		}
		return styles.Muted.Render("  no scenarios (r to reload, n to create one)")
	}

	var b strings.Builder
	if m.scenariosErr != nil {
		b.WriteString(styles.Warning.Render("  showing cached list, last reload failed"))
		b.WriteString("\n")
	}
	b.WriteString(styles.TableHead.Render(fmt.Sprintf(
		"  %-26s %-10s %-7s %s", "NAME", "VISIBILITY", "DRONES", "CREATED")))
	b.WriteString("\n")

	for i, sc := range m.scenarios {
		row := fmt.Sprintf("  %-26s %-10s %-7d %s",
			truncate(sc.Name, 26), sc.Visibility, sc.DroneCount, sc.CreatedAt)
		if i == m.scenarioRow {
			b.WriteString(styles.Selected.Render(row))
		} else {
			b.WriteString(styles.Text.Render(row))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderFooter renders the prompt line when open, otherwise the last action
// outcome.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	if m.prompt != promptNone {
		label := m.promptLabel()
		return styles.Prompt.Render(label) + " " + m.input.View()
	}

	if m.notice == "" {
		return ""
	}
	if m.noticeIsErr {
		suffix := ""
		if m.retryPending {
			suffix = "  (enter to retry)"
		}
		return styles.Danger.Render(m.notice + suffix)
	}
	return styles.Muted.Render(m.notice)
}

func (m Model) promptLabel() string {
	switch m.prompt {
	case promptTarget:
		return fmt.Sprintf("target for %q:", m.promptJob)
	case promptDrones:
		return fmt.Sprintf("drone count for %q:", m.promptJob)
	case promptScenario:
		switch m.scenarioStage {
		case stageBounds:
			return "scenario bounds:"
		case stageDrones:
			return "scenario drone count:"
		default:
			return "scenario name:"
		}
	}
	return ""
}

// renderHelp renders the full-screen help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	lines := []string{
		styles.Logo.Render("swarmview") + styles.Muted.Render("  keyboard reference"),
		"",
		styles.Accent.Render("Jobs"),
		"  j/k, up/down   move selection",
		"  g/G            jump to top/bottom",
		"  t              assign target (lat, lon)",
		"  a              toggle job active",
		"  d              set drone count",
		"",
		styles.Accent.Render("Simulation"),
		"  space          pause or resume",
		"  R              restart",
		"",
		styles.Accent.Render("Scenarios"),
		"  s              scenario list",
		"  n              create scenario",
		"  r              reload list",
		"",
		styles.Accent.Render("General"),
		"  T              cycle theme",
		"  esc            back to jobs",
		"  q, ctrl+c      quit",
		"",
		styles.Muted.Render("press any key to close"),
	}

	return strings.Join(lines, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
