// Package logs moves environment log bytes: it tails the current log file
// of a service and downloads finished log files.
package logs

import (
	"context"
	"net/http"
	"time"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/hal"
)

// Resolver lists log descriptors and follows their links to object URLs.
// *cloudmanager.Service implements it.
type Resolver interface {
	ListLogs(ctx context.Context, programID, environmentID, service, name string, days int) ([]domain.LogDownload, error)
	Redirect(ctx context.Context, link hal.Link) (string, error)
}

// Target identifies the log stream of one service/name pair in an environment.
type Target struct {
	ProgramID     string
	EnvironmentID string
	Service       string
	Name          string
}

// newObjectClient returns the client used for presigned object URLs. Those
// requests carry no API credentials and stream bodies of unbounded size, so
// no overall timeout is set.
func newObjectClient() *http.Client {
	return &http.Client{}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
