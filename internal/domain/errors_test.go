// internal/domain/errors_test.go
package domain_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/waabox/cmdeck/internal/domain"
)

func TestErrUnauthorized_CanBeDetectedWithErrorsIs(t *testing.T) {
	wrapped := fmt.Errorf("cloud manager API error: %w", domain.ErrUnauthorized)
	if !errors.Is(wrapped, domain.ErrUnauthorized) {
		t.Error("expected errors.Is to detect ErrUnauthorized in wrapped error")
	}
}

func TestRequestError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("listing programs: %w", &domain.RequestError{
		Method: http.MethodGet, URL: "https://cm/api/programs",
		StatusCode: 500, Status: "500 Internal Server Error", Err: domain.ErrRequestFailed,
	})
	if !errors.Is(err, domain.ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
	var reqErr *domain.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 500 {
		t.Errorf("expected RequestError with status 500, got %v", err)
	}
}

func TestReclassify_ChangesKindButKeepsDetails(t *testing.T) {
	orig := &domain.RequestError{Method: http.MethodPut, URL: "/advance", StatusCode: 400, Status: "400 Bad Request", Err: domain.ErrRequestFailed}
	err := domain.Reclassify(orig, domain.ErrTransitionFailed)
	if !errors.Is(err, domain.ErrTransitionFailed) {
		t.Fatalf("expected ErrTransitionFailed, got %v", err)
	}
	if errors.Is(err, domain.ErrRequestFailed) {
		t.Error("reclassified error should no longer match ErrRequestFailed")
	}
	if orig.Err != domain.ErrRequestFailed {
		t.Error("original error must not be mutated")
	}
}

func TestReclassify_LeavesUnauthorizedAndPlainErrors(t *testing.T) {
	unauth := &domain.RequestError{StatusCode: 401, Err: domain.ErrUnauthorized}
	if !errors.Is(domain.Reclassify(unauth, domain.ErrTransitionFailed), domain.ErrUnauthorized) {
		t.Error("expected unauthorized to pass through")
	}
	plain := errors.New("dial tcp: refused")
	if domain.Reclassify(plain, domain.ErrTransitionFailed) != plain {
		t.Error("expected non-request error to pass through unchanged")
	}
}
