package cloudmanager

import (
	"fmt"
	"time"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/hal"
)

type programBody struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

func decodeProgram(doc hal.Document) (domain.Program, error) {
	var b programBody
	if err := doc.Decode(&b); err != nil {
		return domain.Program{}, fmt.Errorf("decoding program: %w", err)
	}
	return domain.Program{
		ID:      b.ID,
		Name:    b.Name,
		Enabled: b.Enabled,
		Links:   domain.LinksOf(doc, domain.RelSelf, domain.RelPipelines, domain.RelEnvironments),
	}, nil
}

type pipelineBody struct {
	ID        string           `json:"id"`
	ProgramID string           `json:"programId"`
	Name      string           `json:"name"`
	Trigger   string           `json:"trigger"`
	Status    string           `json:"status"`
	UpdatedAt string           `json:"updatedAt"`
	Phases    []map[string]any `json:"phases"`
}

func decodePipeline(doc hal.Document) (domain.Pipeline, error) {
	var b pipelineBody
	if err := doc.Decode(&b); err != nil {
		return domain.Pipeline{}, fmt.Errorf("decoding pipeline: %w", err)
	}
	phases := make([]domain.Phase, len(b.Phases))
	for i, attrs := range b.Phases {
		phases[i] = domain.Phase{Attributes: attrs}
	}
	return domain.Pipeline{
		ID:        b.ID,
		ProgramID: b.ProgramID,
		Name:      b.Name,
		Trigger:   b.Trigger,
		Status:    domain.PipelineStatus(b.Status),
		UpdatedAt: parseTime(b.UpdatedAt),
		Phases:    phases,
		Links:     domain.LinksOf(doc, domain.RelSelf, domain.RelExecution, domain.RelExecutionID),
	}, nil
}

type executionBody struct {
	ID         string `json:"id"`
	ProgramID  string `json:"programId"`
	PipelineID string `json:"pipelineId"`
	Status     string `json:"status"`
	Trigger    string `json:"trigger"`
	CreatedAt  string `json:"createdAt"`
}

type stepStateBody struct {
	ID              string `json:"id"`
	StepID          string `json:"stepId"`
	PhaseID         string `json:"phaseId"`
	Action          string `json:"action"`
	EnvironmentType string `json:"environmentType"`
	Status          string `json:"status"`
	StartedAt       string `json:"startedAt"`
	FinishedAt      string `json:"finishedAt"`
}

func decodeExecution(doc hal.Document) (domain.Execution, error) {
	var b executionBody
	if err := doc.Decode(&b); err != nil {
		return domain.Execution{}, fmt.Errorf("decoding execution: %w", err)
	}
	exec := domain.Execution{
		ID:         b.ID,
		ProgramID:  b.ProgramID,
		PipelineID: b.PipelineID,
		Status:     b.Status,
		Trigger:    b.Trigger,
		CreatedAt:  parseTime(b.CreatedAt),
		Links:      domain.LinksOf(doc, domain.RelSelf),
	}
	for _, stepDoc := range doc.Embedded("stepStates") {
		step, err := decodeStepState(stepDoc)
		if err != nil {
			return domain.Execution{}, err
		}
		exec.StepStates = append(exec.StepStates, step)
	}
	return exec, nil
}

func decodeStepState(doc hal.Document) (domain.StepState, error) {
	var b stepStateBody
	if err := doc.Decode(&b); err != nil {
		return domain.StepState{}, fmt.Errorf("decoding step state: %w", err)
	}
	return domain.StepState{
		ID:         b.ID,
		StepID:     b.StepID,
		PhaseID:    b.PhaseID,
		Action:     domain.ParseStepAction(b.Action, b.EnvironmentType),
		Status:     domain.StepStatus(b.Status),
		StartedAt:  parseTime(b.StartedAt),
		FinishedAt: parseTime(b.FinishedAt),
		Links: domain.LinksOf(doc, domain.RelSelf, domain.RelMetrics,
			domain.RelCancel, domain.RelAdvance, domain.RelLogs),
	}, nil
}

type environmentBody struct {
	ID                  string             `json:"id"`
	ProgramID           string             `json:"programId"`
	Name                string             `json:"name"`
	Type                string             `json:"type"`
	Namespace           string             `json:"namespace"`
	Cluster             string             `json:"cluster"`
	AvailableLogOptions []domain.LogOption `json:"availableLogOptions"`
}

func decodeEnvironment(doc hal.Document) (domain.Environment, error) {
	var b environmentBody
	if err := doc.Decode(&b); err != nil {
		return domain.Environment{}, fmt.Errorf("decoding environment: %w", err)
	}
	return domain.Environment{
		ID:                  b.ID,
		ProgramID:           b.ProgramID,
		Name:                b.Name,
		Type:                b.Type,
		Namespace:           b.Namespace,
		Cluster:             b.Cluster,
		AvailableLogOptions: b.AvailableLogOptions,
		Links:               domain.LinksOf(doc, domain.RelSelf, domain.RelLogs, domain.RelDeveloperConsole),
	}, nil
}

type logDownloadBody struct {
	Service string `json:"service"`
	Name    string `json:"name"`
	Date    string `json:"date"`
}

func decodeLogDownload(doc hal.Document) (domain.LogDownload, error) {
	var b logDownloadBody
	if err := doc.Decode(&b); err != nil {
		return domain.LogDownload{}, fmt.Errorf("decoding log download: %w", err)
	}
	d := domain.LogDownload{
		Service:       b.Service,
		Name:          b.Name,
		Date:          b.Date,
		DownloadLinks: doc.Links(domain.RelLogsDownload.String()),
	}
	if tail, ok := doc.Link(domain.RelLogsTail.String()); ok {
		d.TailLink = tail
	}
	return d, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
