package collection

import (
	"fmt"

	"github.com/hawaiibiz/intel/internal/domain/shared"
)

var (
	ErrRunFinalized   = shared.NewDomainError("RUN_FINALIZED", "Collection run is already finalized")
	ErrRunInProgress  = shared.NewDomainError("RUN_IN_PROGRESS", "A collection run is already in progress")
	ErrUnknownAdapter = shared.NewDomainError("UNKNOWN_SOURCE", "No adapter registered under that source name")
)

// AdapterError wraps a failure that aborted one adapter's fetch
type AdapterError struct {
	Adapter string
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter %s: %v", e.Adapter, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
