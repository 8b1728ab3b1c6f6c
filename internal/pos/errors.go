package pos

import (
	"fmt"

	"github.com/chillzone/chillzone-pos/internal/platform/httpx"
)

var (
	// ErrInvalidDelta indicates a quantity step other than +1 or -1.
	ErrInvalidDelta = fmt.Errorf("pos: quantity delta must be +1 or -1: %w", httpx.ErrValidation)
	// ErrLineNotFound indicates the product has no line in the cart.
	ErrLineNotFound = fmt.Errorf("pos: product not in cart: %w", httpx.ErrNotFound)
	// ErrCheckoutInFlight indicates another checkout for the same session is running.
	ErrCheckoutInFlight = fmt.Errorf("pos: checkout already in progress: %w", httpx.ErrConflict)
	// ErrNoSession indicates the request carried no session.
	ErrNoSession = fmt.Errorf("pos: session missing: %w", httpx.ErrUnauthorized)
)

// ValidationError is a failed local precondition. Its message is meant for
// the cashier.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Detail returns the cashier-facing message.
func (e *ValidationError) Detail() string { return e.Message }

func (e *ValidationError) Unwrap() error { return httpx.ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
