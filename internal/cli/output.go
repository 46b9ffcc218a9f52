package cli

import (
	"encoding/json"
	"io"
	"text/tabwriter"
	"time"

	"github.com/waabox/cmdeck/internal/domain"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

type programView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type pipelineView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Trigger   string    `json:"trigger"`
	Branch    string    `json:"branch,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toPipelineView(p domain.Pipeline) pipelineView {
	v := pipelineView{ID: p.ID, Name: p.Name, Status: string(p.Status), Trigger: p.Trigger, UpdatedAt: p.UpdatedAt}
	for _, phase := range p.Phases {
		if phase.Type() == domain.PhaseBuild {
			v.Branch = phase.Branch()
		}
	}
	return v
}

type stepView struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Environment string    `json:"environmentType,omitempty"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

type executionView struct {
	ID         string     `json:"id"`
	PipelineID string     `json:"pipelineId"`
	Status     string     `json:"status"`
	Trigger    string     `json:"trigger"`
	CreatedAt  time.Time  `json:"createdAt"`
	Steps      []stepView `json:"stepStates"`
}

func toExecutionView(e domain.Execution) executionView {
	v := executionView{ID: e.ID, PipelineID: e.PipelineID, Status: e.Status, Trigger: e.Trigger, CreatedAt: e.CreatedAt}
	v.Steps = make([]stepView, 0, len(e.StepStates))
	for _, s := range e.StepStates {
		v.Steps = append(v.Steps, stepView{
			ID:          s.ID,
			Action:      s.Action.Name,
			Environment: string(s.Action.Environment),
			Status:      string(s.Status),
			StartedAt:   s.StartedAt,
			FinishedAt:  s.FinishedAt,
		})
	}
	return v
}

type environmentView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Namespace string `json:"namespace,omitempty"`
	Cluster   string `json:"cluster,omitempty"`
}
