package domain

import (
	"maps"
	"strconv"
	"time"

	"github.com/waabox/cmdeck/internal/hal"
)

// PipelineStatus is the status the API reports for a pipeline.
type PipelineStatus string

const (
	PipelineIdle PipelineStatus = "IDLE"
	PipelineBusy PipelineStatus = "BUSY"
)

// StepStatus is the status of a single step state.
type StepStatus string

const (
	StepNotStarted StepStatus = "NOT_STARTED"
	StepRunning    StepStatus = "RUNNING"
	StepWaiting    StepStatus = "WAITING"
	StepFinished   StepStatus = "FINISHED"
	StepFailed     StepStatus = "FAILED"
	StepCancelled  StepStatus = "CANCELLED"
	StepError      StepStatus = "ERROR"
)

// Program is a Cloud Manager program.
type Program struct {
	ID      string
	Name    string
	Enabled bool
	Links   Links
}

// Phase is one phase of a pipeline definition. Attributes carries the full
// phase object so edits can be sent back without dropping unknown fields.
type Phase struct {
	Attributes map[string]any
}

const PhaseBuild = "BUILD"

func (p Phase) str(key string) string {
	s, _ := p.Attributes[key].(string)
	return s
}

// Type returns the phase kind, e.g. BUILD or DEPLOY.
func (p Phase) Type() string { return p.str("type") }

func (p Phase) Branch() string { return p.str("branch") }

func (p Phase) RepositoryID() string {
	switch v := p.Attributes["repositoryId"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// With returns a copy of the phase with key set to value.
func (p Phase) With(key string, value any) Phase {
	attrs := maps.Clone(p.Attributes)
	if attrs == nil {
		attrs = map[string]any{}
	}
	attrs[key] = value
	return Phase{Attributes: attrs}
}

// Pipeline is a Cloud Manager pipeline definition.
type Pipeline struct {
	ID        string
	ProgramID string
	Name      string
	Trigger   string
	Status    PipelineStatus
	UpdatedAt time.Time
	Phases    []Phase
	Links     Links
}

// Busy reports whether the pipeline has an execution in progress.
func (p Pipeline) Busy() bool {
	return p.Status == PipelineBusy
}

// StepState is the state of one step within an execution.
type StepState struct {
	ID         string
	StepID     string
	PhaseID    string
	Action     StepAction
	Status     StepStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Links      Links
}

// Execution is one run of a pipeline.
type Execution struct {
	ID         string
	ProgramID  string
	PipelineID string
	Status     string
	Trigger    string
	CreatedAt  time.Time
	StepStates []StepState
	Links      Links
}

// CurrentStep returns the first step that is running or waiting for input.
func (e Execution) CurrentStep() (StepState, bool) {
	for _, s := range e.StepStates {
		if s.Status == StepRunning || s.Status == StepWaiting {
			return s, true
		}
	}
	return StepState{}, false
}

// WaitingStep returns the first step waiting for input.
func (e Execution) WaitingStep() (StepState, bool) {
	for _, s := range e.StepStates {
		if s.Status == StepWaiting {
			return s, true
		}
	}
	return StepState{}, false
}

// LogOption is a service/name pair an environment can produce logs for.
type LogOption struct {
	Service string `json:"service"`
	Name    string `json:"name"`
}

// Environment is a Cloud Manager environment.
type Environment struct {
	ID                  string
	ProgramID           string
	Name                string
	Type                string
	Namespace           string
	Cluster             string
	AvailableLogOptions []LogOption
	Links               Links
}

// LogDownload describes one day of logs for a service/name pair.
// DownloadLinks holds one link per part; multi-part logs have several.
type LogDownload struct {
	Service       string
	Name          string
	Date          string
	DownloadLinks []hal.Link
	TailLink      hal.Link
}

// Tailable reports whether the descriptor carries a tail link.
func (d LogDownload) Tailable() bool {
	return d.TailLink.Href != ""
}

// GateMetric is a quality-gate metric as reported by the API.
// It is carried opaquely and echoed back on override.
type GateMetric map[string]any

const SeverityImportant = "important"

func (m GateMetric) Name() string {
	s, _ := m["name"].(string)
	return s
}

func (m GateMetric) Severity() string {
	s, _ := m["severity"].(string)
	return s
}

func (m GateMetric) Passed() bool {
	b, _ := m["passed"].(bool)
	return b
}

// Overridden returns a copy of the metric flagged for override.
func (m GateMetric) Overridden() GateMetric {
	cp := maps.Clone(m)
	if cp == nil {
		cp = GateMetric{}
	}
	cp["override"] = true
	return cp
}
