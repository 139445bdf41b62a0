package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// Simulation control
	PauseResume key.Binding
	Restart     key.Binding

	// Job actions
	AssignTarget key.Binding
	ToggleActive key.Binding
	SetDrones    key.Binding

	// Scenarios
	NewScenario   key.Binding
	ScenarioList  key.Binding
	LoadScenarios key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Input
	Confirm key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		PauseResume: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Pause/resume simulation"),
		),
		Restart: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Restart simulation"),
		),

		AssignTarget: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Assign target to job"),
		),
		ToggleActive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Toggle job active"),
		),
		SetDrones: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Set drone count"),
		),

		NewScenario: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New scenario"),
		),
		ScenarioList: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Scenario list"),
		),
		LoadScenarios: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload scenario list"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Bottom"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}
