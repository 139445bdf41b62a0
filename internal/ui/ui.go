// Package ui provides the Bubble Tea terminal interface for swarmview.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rvoss/swarmview/internal/control"
	"github.com/rvoss/swarmview/internal/feed"
	"github.com/rvoss/swarmview/internal/prefs"
	"github.com/rvoss/swarmview/internal/state"
	"github.com/rvoss/swarmview/internal/swarmd"
)

// View represents the current active view.
type View int

const (
	ViewJobs View = iota
	ViewScenarios
)

// promptMode identifies which inline prompt is open, if any.
type promptMode int

const (
	promptNone promptMode = iota
	promptTarget
	promptDrones
	promptScenario
)

const uiTick = time.Second

// Options configures the UI.
type Options struct {
	Context     context.Context
	Store       *state.Store
	Manager     *feed.Manager
	Coordinator *control.Coordinator
	Catalog     *feed.Catalog
	ThemeName   string
	PrefsPath   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx         context.Context
	store       *state.Store
	manager     *feed.Manager
	coordinator *control.Coordinator
	catalog     *feed.Catalog
	prefsPath   string

	// UI state
	theme       Theme
	keys        keyMap
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spin        spinner.Model

	// Data state
	snapshot    state.Snapshot
	hasSnapshot bool
	lastUpdated time.Time
	selection   feed.Selection

	// Jobs view state
	selectedRow int

	// Scenarios view state
	scenarios    []swarmd.Scenario
	scenarioRow  int
	scenariosErr error

	// Prompt state
	prompt        promptMode
	input         textinput.Model
	promptJobID   int64
	promptJob     string
	scenarioStage scenarioStage
	pendingSpec   swarmd.ScenarioSpec
	attempt       *control.Attempt
	retryPending  bool

	// Last action outcome, shown in the footer until the next action.
	notice      string
	noticeIsErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "dark"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	in := textinput.New()
	in.CharLimit = 120

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		manager:     opts.Manager,
		coordinator: opts.Coordinator,
		catalog:     opts.Catalog,
		prefsPath:   prefsPath,
		theme:       GetTheme(themeName),
		keys:        defaultKeyMap(),
		currentView: ViewJobs,
		spin:        sp,
		input:       in,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(),
		m.spin.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		if m.manager != nil {
			m.selection = m.manager.Selection()
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.hasSnapshot = true
		m.lastUpdated = time.Now()
		m.clampSelection()
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case scenariosMsg:
		m.scenariosErr = msg.err
		// A failed refresh may still carry the cached listing.
		if len(msg.items) > 0 || msg.err == nil {
			m.scenarios = msg.items
			if m.scenarioRow >= len(m.scenarios) {
				m.scenarioRow = 0
			}
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name})
		}
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewJobs
		return m, nil

	case key.Matches(msg, m.keys.PauseResume):
		return m.dispatchPauseResume()

	case key.Matches(msg, m.keys.Restart):
		return m.dispatch("restarting", func(ctx context.Context) error {
			return m.coordinator.Restart(ctx)
		})

	case key.Matches(msg, m.keys.ScenarioList):
		m.currentView = ViewScenarios
		return m, m.loadScenariosCmd()

	case key.Matches(msg, m.keys.NewScenario):
		return m.openScenarioPrompt()

	case key.Matches(msg, m.keys.Confirm):
		if m.retryPending && m.attempt != nil {
			m.retryPending = false
			return m.dispatchCreateScenario()
		}
		return m, nil
	}

	switch m.currentView {
	case ViewJobs:
		return m.handleJobsKey(msg)
	case ViewScenarios:
		return m.handleScenariosKey(msg)
	}

	return m, nil
}

// handleJobsKey processes keyboard input for the jobs view.
func (m Model) handleJobsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	jobs := m.snapshot.State.Jobs
	count := len(jobs)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		if count > 0 {
			m.selectedRow = count - 1
		}

	case key.Matches(msg, m.keys.AssignTarget):
		return m.openTargetPrompt()

	case key.Matches(msg, m.keys.SetDrones):
		return m.openDronesPrompt()

	case key.Matches(msg, m.keys.ToggleActive):
		job := m.selectedJob()
		if job == nil {
			return m, nil
		}
		id, next := job.ID, !job.IsActive
		verb := "activating job"
		if !next {
			verb = "deactivating job"
		}
		return m.dispatch(verb, func(ctx context.Context) error {
			return m.coordinator.SetJobActive(ctx, id, next)
		})
	}

	return m, nil
}

// handleScenariosKey processes keyboard input for the scenarios view.
func (m Model) handleScenariosKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.scenarios)

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.scenarioRow < count-1 {
			m.scenarioRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.scenarioRow > 0 {
			m.scenarioRow--
		}
	case key.Matches(msg, m.keys.LoadScenarios):
		return m, m.loadScenariosCmd()
	}

	return m, nil
}

// selectedJob returns the currently highlighted job, or nil.
func (m *Model) selectedJob() *swarmd.Job {
	jobs := m.snapshot.State.Jobs
	if m.selectedRow < 0 || m.selectedRow >= len(jobs) {
		return nil
	}
	return &jobs[m.selectedRow]
}

func (m *Model) clampSelection() {
	count := len(m.snapshot.State.Jobs)
	if count == 0 {
		m.selectedRow = 0
		return
	}
	if m.selectedRow >= count {
		m.selectedRow = count - 1
	}
}

// dispatchPauseResume flips the simulation run state. Pause and resume both
// map onto the daemon's pause toggle.
func (m Model) dispatchPauseResume() (tea.Model, tea.Cmd) {
	verb := "pausing"
	if m.hasSnapshot && !m.snapshot.State.Running {
		verb = "resuming"
	}
	return m.dispatch(verb, func(ctx context.Context) error {
		return m.coordinator.Pause(ctx)
	})
}

// dispatch runs a coordinator action off the UI goroutine and reports the
// outcome as an actionDoneMsg.
func (m Model) dispatch(verb string, fn func(context.Context) error) (tea.Model, tea.Cmd) {
	if m.coordinator == nil {
		return m, nil
	}
	m.notice = verb + "..."
	m.noticeIsErr = false
	ctx := m.ctx
	return m, func() tea.Msg {
		return actionDoneMsg{verb: verb, err: fn(ctx)}
	}
}

// handleActionDone records an action outcome for the footer.
func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.notice = fmt.Sprintf("%s failed: %v", msg.verb, msg.err)
		m.noticeIsErr = true
		if msg.verb == "creating scenario" {
			// The attempt and spec are kept so enter retries the same
			// logical request with the same idempotency key.
			m.retryPending = true
		}
		return m, nil
	}

	m.noticeIsErr = false
	switch msg.verb {
	case "creating scenario":
		m.notice = fmt.Sprintf("scenario created: %s", msg.createdID)
		m.attempt = nil
		m.retryPending = false
		return m, m.loadScenariosCmd()
	default:
		m.notice = msg.verb + " done"
	}
	return m, nil
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type actionDoneMsg struct {
	verb      string
	createdID string
	err       error
}

type scenariosMsg struct {
	items []swarmd.Scenario
	err   error
}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(uiTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		snap, ok := store.Current()
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m Model) loadScenariosCmd() tea.Cmd {
	if m.catalog == nil {
		return nil
	}
	catalog := m.catalog
	ctx := m.ctx
	return func() tea.Msg {
		items, err := catalog.Refresh(ctx, swarmd.ScenarioQuery{Sort: "created_at"})
		return scenariosMsg{items: items, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled. Store updates are forwarded into the program so the
// view follows the feed without polling the store itself.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	var unsubscribe func()
	if opts.Store != nil {
		unsubscribe = opts.Store.Subscribe(func(snap state.Snapshot) {
			p.Send(snapshotMsg(snap))
		})
		defer unsubscribe()
	}

	if opts.Context != nil {
		go func() {
			<-opts.Context.Done()
			p.Quit()
		}()
	}

	_, err := p.Run()
	return err
}
