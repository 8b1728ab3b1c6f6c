package backend

import (
	"fmt"
	"net/http"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
)

// RemoteError is a failure reported by, or reaching, the backend API.
// Message is the server's own text when it sent one and an
// operation-specific fallback otherwise.
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("backend: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("backend: %s: status %d: %s", e.Op, e.Status, e.Message)
}

// Detail is the message shown to the cashier.
func (e *RemoteError) Detail() string { return e.Message }

// Unwrap classifies the failure. Missing resources and rejected tokens keep
// their meaning; everything else is an upstream failure.
func (e *RemoteError) Unwrap() []error {
	errs := []error{httpx.ErrUpstream}
	switch e.Status {
	case http.StatusNotFound:
		errs = append([]error{httpx.ErrNotFound}, errs...)
	case http.StatusUnauthorized:
		errs = append([]error{httpx.ErrUnauthorized}, errs...)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
