package cloudmanager

import (
	"context"
	"fmt"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/hal"
)

// PipelineFilter restricts which pipelines ResolvePipelines returns.
type PipelineFilter struct {
	Busy bool
}

// ListPrograms returns every program visible to the caller.
func (s *Service) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	docs, err := s.listProgramDocs(ctx)
	if err != nil {
		return nil, err
	}
	programs := make([]domain.Program, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProgram(doc)
		if err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, nil
}

func (s *Service) listProgramDocs(ctx context.Context) ([]hal.Document, error) {
	doc, err := s.api.Get(ctx, ProgramsPath)
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}
	return doc.Embedded("programs"), nil
}

// ResolveProgram finds the program with the given id in the program listing
// and fetches its own resource, which may embed more than the listing does.
func (s *Service) ResolveProgram(ctx context.Context, programID string) (domain.Program, error) {
	doc, err := s.programDoc(ctx, programID)
	if err != nil {
		return domain.Program{}, err
	}
	return decodeProgram(doc)
}

func (s *Service) programDoc(ctx context.Context, programID string) (hal.Document, error) {
	docs, err := s.listProgramDocs(ctx)
	if err != nil {
		return hal.Document{}, err
	}
	for _, doc := range docs {
		if doc.String("id") != programID {
			continue
		}
		self, ok := doc.Link(domain.RelSelf.String())
		if !ok {
			return hal.Document{}, fmt.Errorf("program %s has no self link: %w", programID, domain.ErrNotFound)
		}
		full, err := s.api.Get(ctx, self.Href)
		if err != nil {
			return hal.Document{}, fmt.Errorf("fetching program %s: %w", programID, err)
		}
		return full, nil
	}
	return hal.Document{}, fmt.Errorf("program %s: %w", programID, domain.ErrNotFound)
}

// collection follows rel from the program and returns the documents embedded
// under name.
func (s *Service) collection(ctx context.Context, programID string, rel domain.Relation, name string) ([]hal.Document, error) {
	program, err := s.programDoc(ctx, programID)
	if err != nil {
		return nil, err
	}
	link, ok := program.Link(rel.String())
	if !ok {
		return nil, fmt.Errorf("program %s has no %s link: %w", programID, name, domain.ErrNotFound)
	}
	doc, err := s.api.Get(ctx, link.Href)
	if err != nil {
		return nil, fmt.Errorf("listing %s of program %s: %w", name, programID, err)
	}
	if !doc.HasEmbedded(name) {
		return nil, fmt.Errorf("program %s returned no %s: %w", programID, name, domain.ErrNotFound)
	}
	return doc.Embedded(name), nil
}

// ResolvePipelines returns the pipelines of a program.
func (s *Service) ResolvePipelines(ctx context.Context, programID string, filter PipelineFilter) ([]domain.Pipeline, error) {
	docs, err := s.collection(ctx, programID, domain.RelPipelines, "pipelines")
	if err != nil {
		return nil, err
	}
	var pipelines []domain.Pipeline
	for _, doc := range docs {
		p, err := decodePipeline(doc)
		if err != nil {
			return nil, err
		}
		if filter.Busy && !p.Busy() {
			continue
		}
		pipelines = append(pipelines, p)
	}
	return pipelines, nil
}

// ResolvePipeline returns a single pipeline of a program.
func (s *Service) ResolvePipeline(ctx context.Context, programID string, pipelineID string) (domain.Pipeline, error) {
	pipelines, err := s.ResolvePipelines(ctx, programID, PipelineFilter{})
	if err != nil {
		return domain.Pipeline{}, err
	}
	for _, p := range pipelines {
		if p.ID == pipelineID {
			return p, nil
		}
	}
	return domain.Pipeline{}, fmt.Errorf("pipeline %s in program %s: %w", pipelineID, programID, domain.ErrNotFound)
}

// ResolveEnvironments returns the environments of a program.
func (s *Service) ResolveEnvironments(ctx context.Context, programID string) ([]domain.Environment, error) {
	docs, err := s.collection(ctx, programID, domain.RelEnvironments, "environments")
	if err != nil {
		return nil, err
	}
	environments := make([]domain.Environment, 0, len(docs))
	for _, doc := range docs {
		e, err := decodeEnvironment(doc)
		if err != nil {
			return nil, err
		}
		environments = append(environments, e)
	}
	return environments, nil
}

// ResolveEnvironment returns a single environment of a program.
func (s *Service) ResolveEnvironment(ctx context.Context, programID string, environmentID string) (domain.Environment, error) {
	environments, err := s.ResolveEnvironments(ctx, programID)
	if err != nil {
		return domain.Environment{}, err
	}
	for _, e := range environments {
		if e.ID == environmentID {
			return e, nil
		}
	}
	return domain.Environment{}, fmt.Errorf("environment %s in program %s: %w", environmentID, programID, domain.ErrNotFound)
}
