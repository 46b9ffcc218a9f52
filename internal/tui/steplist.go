package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/waabox/cmdeck/internal/domain"
)

// StepListModel is an immutable model for the step states of an execution.
type StepListModel struct {
	steps  []domain.StepState
	cursor int
}

// NewStepListModel creates a step list model.
func NewStepListModel(steps []domain.StepState) StepListModel {
	return StepListModel{steps: steps, cursor: 0}
}

// MoveDown returns a new model with the cursor moved down by one.
func (m StepListModel) MoveDown() StepListModel {
	if m.cursor < len(m.steps)-1 {
		m.cursor++
	}
	return m
}

// MoveUp returns a new model with the cursor moved up by one.
func (m StepListModel) MoveUp() StepListModel {
	if m.cursor > 0 {
		m.cursor--
	}
	return m
}

// Cursor returns the current cursor position.
func (m StepListModel) Cursor() int {
	return m.cursor
}

// Steps returns the full step slice.
func (m StepListModel) Steps() []domain.StepState {
	return m.steps
}

// View renders the step list as a string with cursor indicators.
func (m StepListModel) View() string {
	if len(m.steps) == 0 {
		return "No steps found."
	}
	var sb strings.Builder
	for i, s := range m.steps {
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		sb.WriteString(fmt.Sprintf("%s%s %-25s %-12s %s\n",
			prefix,
			stepIcon(s.Status),
			truncate(s.Action.String(), 25),
			s.Status,
			stepDuration(s),
		))
	}
	return sb.String()
}

func stepIcon(s domain.StepStatus) string {
	switch s {
	case domain.StepFinished:
		return "✓"
	case domain.StepFailed, domain.StepError:
		return "✗"
	case domain.StepRunning:
		return "●"
	case domain.StepWaiting:
		return "⏸"
	case domain.StepCancelled:
		return "○"
	case domain.StepNotStarted:
		return "·"
	default:
		return "?"
	}
}

func stepDuration(s domain.StepState) string {
	if s.StartedAt.IsZero() {
		return "--"
	}
	end := s.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return fmt.Sprintf("%ds", int(end.Sub(s.StartedAt).Seconds()))
}
