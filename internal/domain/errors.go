// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the API responds with HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

var (
	// ErrNotFound is returned when a program, pipeline, environment,
	// execution or step is absent from the remote graph.
	ErrNotFound = errors.New("not found")

	// ErrGateNotFound is returned when no step state matches a gate name.
	ErrGateNotFound = errors.New("gate not found")

	ErrNotCancellable = errors.New("step cannot be cancelled")
	ErrNotAdvanceable = errors.New("step cannot be advanced")

	// ErrUnsupportedTransition is returned when advancing a schedule step.
	ErrUnsupportedTransition = errors.New("unsupported transition")

	ErrRequestFailed    = errors.New("request failed")
	ErrTransitionFailed = errors.New("transition failed")

	ErrNoTailableLog     = errors.New("no tailable log")
	ErrLogNotFound       = errors.New("log not found")
	ErrTailRequestFailed = errors.New("tail request failed")

	ErrDownloadResolutionFailed = errors.New("download resolution failed")
	ErrDecompressionFailed      = errors.New("decompression failed")
)

// RequestError describes a non-2xx HTTP response.
// Err is the taxonomy sentinel the failure is classified under.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%v: %s %s: %s", e.Err, e.Method, e.URL, e.Status)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Reclassify returns err under the kind sentinel when it is a *RequestError
// caused by a failed response. Unauthorized responses and other errors pass
// through unchanged.
func Reclassify(err error, kind error) error {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || errors.Is(reqErr.Err, ErrUnauthorized) {
		return err
	}
	cp := *reqErr
	cp.Err = kind
	return &cp
}
