package cloudmanager

import (
	"context"
	"fmt"
	"net/http"

	"github.com/waabox/cmdeck/internal/domain"
)

// CancelPayload returns the request body that cancels step.
func CancelPayload(step domain.StepState) map[string]any {
	switch {
	case step.Action.Kind == domain.ActionApproval:
		return map[string]any{"approved": false}
	case step.Action.Kind == domain.ActionManaged:
		return map[string]any{"start": false}
	case step.Status == domain.StepWaiting && step.Action.Kind != domain.ActionSchedule:
		return map[string]any{"override": false}
	case step.Action.Kind == domain.ActionDeploy:
		return map[string]any{"resume": false}
	default:
		return map[string]any{"cancel": true}
	}
}

// AdvancePayload returns the request body that advances step. For gate steps
// the failing important metrics are overridden; metrics is ignored otherwise.
func AdvancePayload(step domain.StepState, metrics []domain.GateMetric) (map[string]any, error) {
	switch step.Action.Kind {
	case domain.ActionApproval:
		return map[string]any{"approved": true}, nil
	case domain.ActionManaged:
		return map[string]any{"start": true}, nil
	case domain.ActionSchedule:
		return nil, fmt.Errorf("advancing %s step: %w", step.Action.Name, domain.ErrUnsupportedTransition)
	case domain.ActionDeploy:
		return map[string]any{"resume": true}, nil
	case domain.ActionSecurityTest, domain.ActionLoadTest, domain.ActionAssetsTest,
		domain.ActionReportPerformanceTest, domain.ActionOther:
		return map[string]any{"metrics": OverrideFailing(metrics)}, nil
	}
	return nil, fmt.Errorf("advancing %s step: %w", step.Action.Name, domain.ErrUnsupportedTransition)
}

// OverrideFailing keeps the important metrics that did not pass and flags
// each of them for override.
func OverrideFailing(metrics []domain.GateMetric) []domain.GateMetric {
	out := []domain.GateMetric{}
	for _, m := range metrics {
		if m.Severity() == domain.SeverityImportant && !m.Passed() {
			out = append(out, m.Overridden())
		}
	}
	return out
}

func advanceNeedsMetrics(step domain.StepState) bool {
	switch step.Action.Kind {
	case domain.ActionApproval, domain.ActionManaged, domain.ActionSchedule, domain.ActionDeploy:
		return false
	}
	return true
}

// Cancel cancels step through its cancel link.
func (s *Service) Cancel(ctx context.Context, step domain.StepState) error {
	link, ok := step.Links.Link(domain.RelCancel)
	if !ok {
		return fmt.Errorf("step %s (%s): %w", step.ID, step.Action, domain.ErrNotCancellable)
	}
	body := CancelPayload(step)
	s.logger.Debug("cancelling step", "step", step.ID, "action", step.Action, "body", body)
	if _, err := s.api.Send(ctx, http.MethodPut, link.Href, body); err != nil {
		return fmt.Errorf("cancelling step %s: %w", step.ID, domain.Reclassify(err, domain.ErrTransitionFailed))
	}
	return nil
}

// Advance moves step forward through its advance link.
func (s *Service) Advance(ctx context.Context, step domain.StepState) error {
	link, ok := step.Links.Link(domain.RelAdvance)
	if !ok {
		return fmt.Errorf("step %s (%s): %w", step.ID, step.Action, domain.ErrNotAdvanceable)
	}
	var metrics []domain.GateMetric
	if advanceNeedsMetrics(step) {
		var err error
		if metrics, err = s.Metrics(ctx, step); err != nil {
			return err
		}
	}
	body, err := AdvancePayload(step, metrics)
	if err != nil {
		return err
	}
	s.logger.Debug("advancing step", "step", step.ID, "action", step.Action, "body", body)
	if _, err := s.api.Send(ctx, http.MethodPut, link.Href, body); err != nil {
		return fmt.Errorf("advancing step %s: %w", step.ID, domain.Reclassify(err, domain.ErrTransitionFailed))
	}
	return nil
}

// Metrics fetches the quality-gate metrics of step.
func (s *Service) Metrics(ctx context.Context, step domain.StepState) ([]domain.GateMetric, error) {
	link, ok := step.Links.Link(domain.RelMetrics)
	if !ok {
		return nil, fmt.Errorf("step %s has no metrics link: %w", step.ID, domain.ErrNotFound)
	}
	doc, err := s.api.Get(ctx, link.Href)
	if err != nil {
		return nil, fmt.Errorf("fetching metrics of step %s: %w", step.ID, err)
	}
	var body struct {
		Metrics []domain.GateMetric `json:"metrics"`
	}
	if err := doc.Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding metrics of step %s: %w", step.ID, err)
	}
	return body.Metrics, nil
}
