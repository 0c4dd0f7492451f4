// Package service implements the tenant registry, user lifecycle manager,
// document visibility manager and their supporting collaborators (one-time
// codes, mail publishing, object storage). Services hold the decision
// logic; handlers only translate between HTTP and these operations.
package service

import (
	"errors"
	"fmt"

	"github.com/edustack/tutor-platform/internal/repository"
)

// The error taxonomy every operation resolves into. Handlers map these to
// HTTP status codes with errors.Is; anything outside the taxonomy is an
// unexpected failure and becomes a 500.
var (
	// ErrValidation covers missing or malformed required input, e.g. an
	// absent password.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate covers email, username and tenant-slot collisions.
	ErrDuplicate = errors.New("duplicate resource")
	// ErrInvalidReference covers foreign ids that are missing or in the
	// wrong state, e.g. an inactive tenant.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNotFound covers absent records and records outside the caller's
	// scope. The two are merged so responses never disclose existence.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable covers downstream store or channel failures and
	// per-operation timeouts; it is retryable.
	ErrUnavailable = errors.New("service unavailable")
)

// storeErr folds a repository error into the taxonomy. Deadline and
// cancellation failures surface as retryable ErrUnavailable.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicate
	default:
		// Includes context.DeadlineExceeded from the per-operation timeout.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
