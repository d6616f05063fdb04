package collection

import (
	"context"

	"github.com/hawaiibiz/intel/internal/domain/business"
)

// YieldFunc receives candidates from an adapter. A non-nil return stops the
// adapter, which must hand the same error back from Fetch.
type YieldFunc func(business.Candidate) error

// Adapter fetches raw listings from one external origin. Implementations
// stream candidates through yield, skip (and log) malformed listings, check
// ctx between listings and keep their own politeness delay.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, yield YieldFunc) error
}
