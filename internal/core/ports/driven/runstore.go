package driven

import (
	"context"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
)

// RunStore persists pipeline run history.
type RunStore interface {
	// Save creates or updates a run record by ID.
	Save(ctx context.Context, run *domain.PipelineRun) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound when it does not exist.
	Get(ctx context.Context, id string) (*domain.PipelineRun, error)

	// List returns recent runs ordered by start time descending.
	List(ctx context.Context, limit int) ([]domain.PipelineRun, error)
}
