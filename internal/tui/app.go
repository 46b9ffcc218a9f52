package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waabox/cmdeck/internal/cloudmanager"
	"github.com/waabox/cmdeck/internal/domain"
)

const (
	busyRefresh = 5 * time.Second
	idleRefresh = 30 * time.Second
	callTimeout = 30 * time.Second
)

// Navigator is the part of the Cloud Manager service the watch view drives.
// *cloudmanager.Service implements it.
type Navigator interface {
	ResolvePipelines(ctx context.Context, programID string, filter cloudmanager.PipelineFilter) ([]domain.Pipeline, error)
	CurrentExecution(ctx context.Context, programID, pipelineID string) (domain.Execution, error)
	AdvanceCurrentExecution(ctx context.Context, programID, pipelineID string) error
	CancelCurrentExecution(ctx context.Context, programID, pipelineID string) error
}

// PipelinesLoadedMsg is sent when the program's pipelines have been fetched.
// It is exported so that tests can inject it directly into AppModel.Update.
type PipelinesLoadedMsg struct {
	Pipelines []domain.Pipeline
	Err       error
}

// ExecutionLoadedMsg is sent when the current execution of a pipeline has been fetched.
type ExecutionLoadedMsg struct {
	PipelineID string
	Execution  domain.Execution
	Err        error
}

// tickMsg is sent by the auto-refresh ticker.
type tickMsg struct{}

// actionResultMsg is sent when an advance or cancel completes.
type actionResultMsg struct {
	action string
	err    error
}

// viewState indicates the current navigation level.
type viewState int

const (
	viewPipelines viewState = iota
	viewSteps
)

// AppModel is the root Bubbletea model for the watch view.
type AppModel struct {
	nav       Navigator
	programID string
	// Navigation
	view viewState
	// Pipeline level
	list             PipelineListModel
	selectedPipeline domain.Pipeline
	// Step level
	steps        StepListModel
	execution    domain.Execution
	hasExecution bool
	// General state
	loading       bool
	err           error
	notice        string
	width         int
	height        int
	confirmAction string
}

// NewAppModel creates the root application model for programID.
func NewAppModel(programID string, nav Navigator) AppModel {
	return AppModel{
		nav:       nav,
		programID: programID,
		list:      NewPipelineListModel(nil),
		loading:   true,
	}
}

// Init triggers the initial pipeline load.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.loadPipelines(), tickEvery(busyRefresh))
}

func (m AppModel) loadPipelines() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		pipelines, err := m.nav.ResolvePipelines(ctx, m.programID, cloudmanager.PipelineFilter{})
		return PipelinesLoadedMsg{Pipelines: pipelines, Err: err}
	}
}

func (m AppModel) loadExecution(pipelineID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		exec, err := m.nav.CurrentExecution(ctx, m.programID, pipelineID)
		return ExecutionLoadedMsg{PipelineID: pipelineID, Execution: exec, Err: err}
	}
}

func (m AppModel) advance(pipelineID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		err := m.nav.AdvanceCurrentExecution(ctx, m.programID, pipelineID)
		return actionResultMsg{action: "advance", err: err}
	}
}

func (m AppModel) cancel(pipelineID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		err := m.nav.CancelCurrentExecution(ctx, m.programID, pipelineID)
		return actionResultMsg{action: "cancel", err: err}
	}
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// refreshInterval is short while any pipeline is busy.
func refreshInterval(pipelines []domain.Pipeline) time.Duration {
	for _, p := range pipelines {
		if p.Busy() {
			return busyRefresh
		}
	}
	return idleRefresh
}

// Update handles all incoming messages and key events.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case PipelinesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.list = m.list.UpdatePipelines(msg.Pipelines)
		m.selectedPipeline = m.list.SelectedPipeline()

	case ExecutionLoadedMsg:
		if msg.PipelineID != m.selectedPipeline.ID {
			return m, nil
		}
		if errors.Is(msg.Err, domain.ErrNotFound) {
			m.hasExecution = false
			m.execution = domain.Execution{}
			m.steps = NewStepListModel(nil)
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		cursor := m.steps.Cursor()
		m.execution = msg.Execution
		m.hasExecution = true
		m.steps = NewStepListModel(msg.Execution.StepStates)
		for i := 0; i < cursor; i++ {
			m.steps = m.steps.MoveDown()
		}

	case tickMsg:
		cmds := []tea.Cmd{m.loadPipelines(), tickEvery(refreshInterval(m.list.Pipelines()))}
		if m.view == viewSteps && m.selectedPipeline.ID != "" {
			cmds = append(cmds, m.loadExecution(m.selectedPipeline.ID))
		}
		return m, tea.Batch(cmds...)

	case actionResultMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("%s failed: %w", msg.action, msg.err)
			return m, nil
		}
		m.notice = fmt.Sprintf("%s requested for pipeline #%s", msg.action, m.selectedPipeline.ID)
		cmds := []tea.Cmd{m.loadPipelines()}
		if m.view == viewSteps {
			cmds = append(cmds, m.loadExecution(m.selectedPipeline.ID))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if m.confirmAction != "" {
			switch msg.String() {
			case "y":
				action := m.confirmAction
				m.confirmAction = ""
				if m.selectedPipeline.ID == "" {
					return m, nil
				}
				if action == "advance" {
					return m, m.advance(m.selectedPipeline.ID)
				}
				return m, m.cancel(m.selectedPipeline.ID)
			case "q", "ctrl+c":
				return m, tea.Quit
			default:
				m.confirmAction = ""
				return m, nil
			}
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			m.loading = true
			m.err = nil
			return m, m.loadPipelines()
		case "a":
			m.notice = ""
			m.confirmAction = "advance"
			return m, nil
		case "x":
			m.notice = ""
			m.confirmAction = "cancel"
			return m, nil
		}
		switch m.view {
		case viewPipelines:
			return m.updatePipelines(msg)
		case viewSteps:
			return m.updateSteps(msg)
		}
	}
	return m, nil
}

func (m AppModel) updatePipelines(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "down":
		m.list = m.list.MoveDown()
		m.selectedPipeline = m.list.SelectedPipeline()
	case "up":
		m.list = m.list.MoveUp()
		m.selectedPipeline = m.list.SelectedPipeline()
	case "enter":
		if len(m.list.Pipelines()) > 0 {
			m.selectedPipeline = m.list.SelectedPipeline()
			m.view = viewSteps
			m.hasExecution = false
			m.steps = NewStepListModel(nil)
			return m, m.loadExecution(m.selectedPipeline.ID)
		}
	}
	return m, nil
}

func (m AppModel) updateSteps(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "down":
		m.steps = m.steps.MoveDown()
	case "up":
		m.steps = m.steps.MoveUp()
	case "esc":
		m.view = viewPipelines
		m.err = nil
	}
	return m, nil
}

// View renders the full TUI.
func (m AppModel) View() string {
	if m.loading && m.confirmAction == "" {
		return "Loading pipelines...\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'ctrl+r' to retry or 'q' to quit.\n", m.err)
	}

	header := fmt.Sprintf(" cmdeck | program %s / %s\n", m.programID, m.selectedPipeline.Name)
	separator := "────────────────────────────────────────────────────────────\n"

	switch m.view {
	case viewSteps:
		return m.renderStepsView(header, separator)
	default:
		return m.renderPipelinesView(header, separator)
	}
}

func (m AppModel) footer(keys string) string {
	switch m.confirmAction {
	case "advance":
		return fmt.Sprintf(" Advance the waiting step of pipeline #%s? [y/N] \n", m.selectedPipeline.ID)
	case "cancel":
		return fmt.Sprintf(" Cancel the current execution of pipeline #%s? [y/N] \n", m.selectedPipeline.ID)
	}
	if m.notice != "" {
		return " " + m.notice + "\n" + keys
	}
	return keys
}

func (m AppModel) renderPipelinesView(header, separator string) string {
	title := " Pipelines\n"
	listView := m.list.View()
	statusBar := fmt.Sprintf(" #%s %s trigger=%s\n",
		m.selectedPipeline.ID, m.selectedPipeline.Status, m.selectedPipeline.Trigger)
	footer := m.footer(" ↑/↓: navigate   enter: steps   ctrl+r: refresh   a: advance   x: cancel   q: quit\n")
	return header + separator + title + listView + "\n" + separator + statusBar + separator + footer
}

func (m AppModel) renderStepsView(header, separator string) string {
	footer := m.footer(" ↑/↓: navigate   esc: back   a: advance   x: cancel   q: quit\n")
	if !m.hasExecution {
		return header + separator + " No current execution.\n" + separator + footer
	}
	title := fmt.Sprintf(" Execution #%s (%s)\n", m.execution.ID, m.execution.Status)
	return header + separator + title + m.steps.View() + "\n" + separator + footer
}

// Run starts the Bubbletea program and blocks until the user quits.
func Run(programID string, nav Navigator) error {
	p := tea.NewProgram(NewAppModel(programID, nav), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running watch view: %w", err)
	}
	return nil
}
