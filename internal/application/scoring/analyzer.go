package scoring

import (
	"context"

	"github.com/hawaiibiz/intel/internal/domain/business"
	"github.com/hawaiibiz/intel/internal/domain/prospect"
)

// Analyzer produces a prospect analysis for one business. Implementations
// absorb model and transport failures by returning prospect.DefaultAnalysis;
// an error means the call itself was abandoned (context cancelled).
type Analyzer interface {
	Analyze(ctx context.Context, b *business.Business) (prospect.Analysis, error)
}
