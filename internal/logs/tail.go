package logs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/logging"
)

const (
	// DefaultTailBackoff is the pause after a poll found no new bytes.
	DefaultTailBackoff = 2 * time.Second
	// DefaultRolloverWindow is how close to UTC midnight the tailer starts
	// looking for the next day's log file.
	DefaultRolloverWindow = 5 * time.Minute
)

// Tailer follows the growing log file of a service by polling byte ranges.
// The remote store starts a new file at UTC midnight; near that boundary the
// tailer re-resolves the file and switches over once the new one is smaller
// than what has already been read.
type Tailer struct {
	resolver Resolver
	client   *http.Client
	backoff  time.Duration
	window   time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	logger   *log.Logger
}

// TailOption configures a Tailer.
type TailOption func(*Tailer)

func WithBackoff(d time.Duration) TailOption {
	return func(t *Tailer) { t.backoff = d }
}

func WithRolloverWindow(d time.Duration) TailOption {
	return func(t *Tailer) { t.window = d }
}

// WithClock replaces the wall clock used for the rollover check.
func WithClock(now func() time.Time) TailOption {
	return func(t *Tailer) { t.now = now }
}

// WithSleep replaces the backoff wait. The function must return ctx.Err()
// when ctx is done.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) TailOption {
	return func(t *Tailer) { t.sleep = fn }
}

// WithObjectClient sets the HTTP client used against object URLs.
func WithObjectClient(c *http.Client) TailOption {
	return func(t *Tailer) { t.client = c }
}

// NewTailer creates a Tailer.
func NewTailer(resolver Resolver, opts ...TailOption) *Tailer {
	t := &Tailer{
		resolver: resolver,
		client:   newObjectClient(),
		backoff:  DefaultTailBackoff,
		window:   DefaultRolloverWindow,
		now:      time.Now,
		sleep:    sleep,
		logger:   logging.New("tail"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tail writes bytes appended to target's current log file to sink until ctx
// is cancelled or a fatal response is received. Tailing starts at the current
// end of the file. The returned error is never nil.
func (t *Tailer) Tail(ctx context.Context, target Target, sink io.Writer) error {
	objectURL, err := t.resolve(ctx, target)
	if err != nil {
		return err
	}
	offset, err := t.size(ctx, objectURL)
	if err != nil {
		return err
	}
	t.logger.Debug("tailing", "service", target.Service, "name", target.Name, "offset", offset)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		status, n, err := t.poll(ctx, objectURL, offset, sink)
		if err != nil {
			return err
		}
		switch status {
		case http.StatusPartialContent:
			offset += n
		case http.StatusRequestedRangeNotSatisfiable:
			if err := t.sleep(ctx, t.backoff); err != nil {
				return err
			}
			if !InRolloverWindow(t.now(), t.window) {
				continue
			}
			nextURL, nextSize, err := t.reresolve(ctx, target)
			if err != nil {
				return err
			}
			if nextSize < offset {
				t.logger.Debug("log rolled over", "previous_offset", offset, "offset", nextSize)
				objectURL, offset = nextURL, nextSize
				continue
			}
			if err := t.sleep(ctx, t.backoff); err != nil {
				return err
			}
		case http.StatusNotFound:
			return fmt.Errorf("tailing %s/%s: %w", target.Service, target.Name, domain.ErrLogNotFound)
		default:
			return &domain.RequestError{
				Method:     http.MethodGet,
				URL:        objectURL,
				StatusCode: status,
				Status:     http.StatusText(status),
				Err:        domain.ErrTailRequestFailed,
			}
		}
	}
}

// resolve returns the object URL of target's tailable log file for today.
func (t *Tailer) resolve(ctx context.Context, target Target) (string, error) {
	downloads, err := t.resolver.ListLogs(ctx, target.ProgramID, target.EnvironmentID, target.Service, target.Name, 0)
	if err != nil {
		return "", err
	}
	if len(downloads) == 0 || !downloads[0].Tailable() {
		return "", fmt.Errorf("%s/%s in environment %s: %w", target.Service, target.Name, target.EnvironmentID, domain.ErrNoTailableLog)
	}
	objectURL, err := t.resolver.Redirect(ctx, downloads[0].TailLink)
	if err != nil {
		return "", tailLinkError(target, err)
	}
	return objectURL, nil
}

// tailLinkError maps a failed tail-link redirect onto the tail error kinds:
// a failed response is a tail request failure, anything else means the log
// has no usable tail link.
func tailLinkError(target Target, err error) error {
	var reqErr *domain.RequestError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, domain.ErrUnauthorized):
		return err
	case errors.As(err, &reqErr):
		return fmt.Errorf("resolving tail link of %s/%s: %w", target.Service, target.Name,
			domain.Reclassify(err, domain.ErrTailRequestFailed))
	default:
		return fmt.Errorf("resolving tail link of %s/%s: %w: %v", target.Service, target.Name,
			domain.ErrNoTailableLog, err)
	}
}

func (t *Tailer) reresolve(ctx context.Context, target Target) (string, int64, error) {
	objectURL, err := t.resolve(ctx, target)
	if err != nil {
		return "", 0, err
	}
	size, err := t.size(ctx, objectURL)
	if err != nil {
		return "", 0, err
	}
	return objectURL, size, nil
}

// size returns the current length of the object at objectURL.
func (t *Tailer) size(ctx context.Context, objectURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, objectURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("executing request: %w", err)
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("sizing log file: %w", domain.ErrLogNotFound)
	case resp.StatusCode >= 300:
		return 0, &domain.RequestError{
			Method:     http.MethodHead,
			URL:        objectURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        domain.ErrTailRequestFailed,
		}
	}
	if resp.ContentLength < 0 {
		return 0, nil
	}
	return resp.ContentLength, nil
}

// poll requests everything past offset and copies a partial response to sink.
// It returns the response status and how far the offset advanced.
func (t *Tailer) poll(ctx context.Context, objectURL string, offset int64, sink io.Writer) (int, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, objectURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, 0, ctxErr
		}
		return 0, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, 0, nil
	}
	copied, err := io.Copy(sink, resp.Body)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, 0, err
		}
		return 0, 0, fmt.Errorf("copying log bytes: %w", err)
	}
	if resp.ContentLength >= 0 {
		return resp.StatusCode, resp.ContentLength, nil
	}
	return resp.StatusCode, copied, nil
}

// InRolloverWindow reports whether now is within window of a UTC midnight,
// on either side.
func InRolloverWindow(now time.Time, window time.Duration) bool {
	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	sinceMidnight := utc.Sub(midnight)
	return sinceMidnight <= window || sinceMidnight >= 24*time.Hour-window
}
