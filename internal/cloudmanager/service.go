// Package cloudmanager navigates the Cloud Manager resource graph
// (programs, pipelines, executions, step states, environments) and drives
// the state transitions of pipeline executions.
//
// Nothing is cached: every call walks the graph from the program listing,
// so each operation sees the server's current state.
package cloudmanager

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/waabox/cmdeck/internal/hal"
	"github.com/waabox/cmdeck/internal/logging"
)

// ProgramsPath is the entry point of the resource graph.
const ProgramsPath = "/api/programs"

// Transport fetches and mutates HAL resources. *api.Client implements it.
type Transport interface {
	Get(ctx context.Context, href string) (hal.Document, error)
	GetQuery(ctx context.Context, href string, query url.Values) (hal.Document, error)
	Send(ctx context.Context, method string, href string, body any) (hal.Document, error)
}

// Service is the entry point for navigation and transitions.
type Service struct {
	api    Transport
	logger *log.Logger
}

// NewService creates a Service on top of the given transport.
func NewService(api Transport) *Service {
	return &Service{api: api, logger: logging.New("cloudmanager")}
}
