package business

import (
	"errors"
	"fmt"

	"github.com/hawaiibiz/intel/internal/domain/shared"
)

// Rejection reason codes
const (
	ReasonNameRequired     = "NAME_REQUIRED"
	ReasonLocationRequired = "LOCATION_REQUIRED"
)

var (
	// ErrValidationRejected marks a candidate that cannot be ingested.
	ErrValidationRejected = shared.NewDomainError("VALIDATION_REJECTED", "Candidate rejected by validation")

	// ErrMergeConflict is reserved for a merge policy that can overwrite
	// existing values. The fill-only policy never returns it.
	ErrMergeConflict = shared.NewDomainError("MERGE_CONFLICT", "Candidate conflicts with stored business")

	// ErrDuplicateKey is returned by repositories when (name_key, island) is taken.
	ErrDuplicateKey = errors.New("business: duplicate name and island")
)

// ValidationError carries the reason a candidate was rejected
type ValidationError struct {
	Reason string
	Name   string
	Source string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("candidate %q from %s rejected: %s", e.Name, e.Source, e.Reason)
}

// Unwrap lets errors.Is match ErrValidationRejected.
func (e *ValidationError) Unwrap() error {
	return ErrValidationRejected
}
