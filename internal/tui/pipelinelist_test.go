package tui_test

import (
	"strings"
	"testing"
	"time"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/tui"
)

func TestPipelineListModel_RendersPipelines(t *testing.T) {
	pipelines := []domain.Pipeline{
		{
			ID:        "100",
			Name:      "prod-deploy",
			Status:    domain.PipelineBusy,
			UpdatedAt: time.Now().Add(-2 * time.Minute),
		},
		{
			ID:     "99",
			Name:   "code-quality",
			Status: domain.PipelineIdle,
		},
	}

	m := tui.NewPipelineListModel(pipelines)
	view := m.View()

	if !strings.Contains(view, "prod-deploy") || !strings.Contains(view, "2m ago") {
		t.Errorf("expected name and age in view, got:\n%s", view)
	}
	if m.SelectedIndex() != 0 {
		t.Errorf("expected selected index 0, got %d", m.SelectedIndex())
	}
	if m.SelectedPipeline().ID != "100" {
		t.Errorf("expected selected pipeline ID '100', got '%s'", m.SelectedPipeline().ID)
	}
}

func TestPipelineListModel_NavigatesDown(t *testing.T) {
	pipelines := []domain.Pipeline{
		{ID: "1", Status: domain.PipelineIdle},
		{ID: "2", Status: domain.PipelineBusy},
	}
	m := tui.NewPipelineListModel(pipelines)
	m = m.MoveDown()
	if m.SelectedIndex() != 1 {
		t.Errorf("expected selected index 1 after moving down, got %d", m.SelectedIndex())
	}
}

func TestPipelineListModel_DoesNotGoAboveZero(t *testing.T) {
	pipelines := []domain.Pipeline{{ID: "1"}}
	m := tui.NewPipelineListModel(pipelines)
	m = m.MoveUp()
	if m.SelectedIndex() != 0 {
		t.Errorf("expected selected index 0, got %d", m.SelectedIndex())
	}
}

func TestPipelineListModel_UpdateKeepsSelectedID(t *testing.T) {
	m := tui.NewPipelineListModel([]domain.Pipeline{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	m = m.MoveDown().MoveDown()

	m = m.UpdatePipelines([]domain.Pipeline{{ID: "3"}, {ID: "1"}})
	if m.SelectedPipeline().ID != "3" {
		t.Errorf("expected selection to follow pipeline 3, got '%s'", m.SelectedPipeline().ID)
	}

	m = m.UpdatePipelines([]domain.Pipeline{{ID: "1"}})
	if m.SelectedIndex() != 0 {
		t.Errorf("expected cursor reset when selection disappears, got %d", m.SelectedIndex())
	}
}
