package cloudmanager

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/waabox/cmdeck/internal/domain"
)

// CurrentExecution returns the execution a pipeline is running.
func (s *Service) CurrentExecution(ctx context.Context, programID string, pipelineID string) (domain.Execution, error) {
	pipeline, err := s.ResolvePipeline(ctx, programID, pipelineID)
	if err != nil {
		return domain.Execution{}, err
	}
	link, ok := pipeline.Links.Link(domain.RelExecution)
	if !ok {
		return domain.Execution{}, fmt.Errorf("pipeline %s has no execution link: %w", pipelineID, domain.ErrNotFound)
	}
	doc, err := s.api.Get(ctx, link.Href)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Execution{}, fmt.Errorf("no current execution for pipeline %s: %w", pipelineID, domain.ErrNotFound)
		}
		return domain.Execution{}, fmt.Errorf("fetching current execution of pipeline %s: %w", pipelineID, err)
	}
	return decodeExecution(doc)
}

// ExecutionByID returns a specific execution of a pipeline.
func (s *Service) ExecutionByID(ctx context.Context, programID string, pipelineID string, executionID string) (domain.Execution, error) {
	pipeline, err := s.ResolvePipeline(ctx, programID, pipelineID)
	if err != nil {
		return domain.Execution{}, err
	}
	link, ok := pipeline.Links.Link(domain.RelExecutionID)
	if !ok {
		return domain.Execution{}, fmt.Errorf("pipeline %s has no execution template link: %w", pipelineID, domain.ErrNotFound)
	}
	href, err := link.Expand(map[string]string{"executionId": executionID})
	if err != nil {
		return domain.Execution{}, err
	}
	doc, err := s.api.Get(ctx, href)
	if err != nil {
		return domain.Execution{}, fmt.Errorf("fetching execution %s: %w", executionID, err)
	}
	return decodeExecution(doc)
}

// StartExecution starts a new execution of a pipeline.
func (s *Service) StartExecution(ctx context.Context, programID string, pipelineID string) (domain.Execution, error) {
	pipeline, err := s.ResolvePipeline(ctx, programID, pipelineID)
	if err != nil {
		return domain.Execution{}, err
	}
	link, ok := pipeline.Links.Link(domain.RelExecution)
	if !ok {
		return domain.Execution{}, fmt.Errorf("pipeline %s has no execution link: %w", pipelineID, domain.ErrNotFound)
	}
	doc, err := s.api.Send(ctx, http.MethodPut, link.Href, nil)
	if err != nil {
		return domain.Execution{}, fmt.Errorf("starting pipeline %s: %w", pipelineID, domain.Reclassify(err, domain.ErrRequestFailed))
	}
	s.logger.Info("execution started", "program", programID, "pipeline", pipelineID)
	if len(doc.Raw()) == 0 {
		return domain.Execution{PipelineID: pipelineID, ProgramID: programID}, nil
	}
	return decodeExecution(doc)
}

// CancelCurrentExecution cancels the current step of a pipeline's execution.
func (s *Service) CancelCurrentExecution(ctx context.Context, programID string, pipelineID string) error {
	exec, err := s.CurrentExecution(ctx, programID, pipelineID)
	if err != nil {
		return err
	}
	step, ok := FindCurrentStep(exec)
	if !ok {
		return fmt.Errorf("no current step in execution %s: %w", exec.ID, domain.ErrNotFound)
	}
	return s.Cancel(ctx, step)
}

// AdvanceCurrentExecution advances the waiting step of a pipeline's execution.
func (s *Service) AdvanceCurrentExecution(ctx context.Context, programID string, pipelineID string) error {
	exec, err := s.CurrentExecution(ctx, programID, pipelineID)
	if err != nil {
		return err
	}
	step, ok := FindWaitingStep(exec)
	if !ok {
		return fmt.Errorf("no waiting step in execution %s: %w", exec.ID, domain.ErrNotFound)
	}
	return s.Advance(ctx, step)
}

// QualityGateResults returns the metrics of the step matching gate in an execution.
func (s *Service) QualityGateResults(ctx context.Context, programID, pipelineID, executionID, gate string) ([]domain.GateMetric, error) {
	exec, err := s.ExecutionByID(ctx, programID, pipelineID, executionID)
	if err != nil {
		return nil, err
	}
	step, ok := FindByGate(exec, gate)
	if !ok {
		return nil, fmt.Errorf("gate %q in execution %s: %w", gate, executionID, domain.ErrGateNotFound)
	}
	return s.Metrics(ctx, step)
}

// PipelineUpdate lists the BUILD phase fields to change. Empty fields are left as-is.
type PipelineUpdate struct {
	Branch       string
	RepositoryID string
}

// UpdatePipeline patches the BUILD phase of a pipeline. Phases are copied
// and the whole list is sent back.
func (s *Service) UpdatePipeline(ctx context.Context, programID string, pipelineID string, update PipelineUpdate) (domain.Pipeline, error) {
	pipeline, err := s.ResolvePipeline(ctx, programID, pipelineID)
	if err != nil {
		return domain.Pipeline{}, err
	}
	self, ok := pipeline.Links.Link(domain.RelSelf)
	if !ok {
		return domain.Pipeline{}, fmt.Errorf("pipeline %s has no self link: %w", pipelineID, domain.ErrNotFound)
	}

	phases := make([]map[string]any, 0, len(pipeline.Phases))
	patched := false
	for _, phase := range pipeline.Phases {
		if phase.Type() == domain.PhaseBuild {
			if update.Branch != "" {
				phase = phase.With("branch", update.Branch)
			}
			if update.RepositoryID != "" {
				phase = phase.With("repositoryId", update.RepositoryID)
			}
			patched = true
		}
		phases = append(phases, phase.Attributes)
	}
	if !patched {
		return domain.Pipeline{}, fmt.Errorf("pipeline %s has no build phase: %w", pipelineID, domain.ErrNotFound)
	}

	doc, err := s.api.Send(ctx, http.MethodPatch, self.Href, map[string]any{"phases": phases})
	if err != nil {
		return domain.Pipeline{}, fmt.Errorf("updating pipeline %s: %w", pipelineID, err)
	}
	if len(doc.Raw()) == 0 {
		return pipeline, nil
	}
	return decodePipeline(doc)
}
