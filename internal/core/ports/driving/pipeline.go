package driving

import "github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"

// PipelineRequest configures one tiling pipeline run.
type PipelineRequest struct {
	// SourcePath is the input georeferenced raster.
	SourcePath string

	// OutputDir receives the tile pyramid and the preview page.
	OutputDir string

	MinZoom int
	MaxZoom int

	// Title of the generated preview page. Defaults to the source
	// file name when empty.
	Title string

	// KeepIntermediate skips the best-effort cleanup of the warped
	// intermediate and its cache directory.
	KeepIntermediate bool
}

// RunResult is the one-shot result-or-error handoff of a run.
type RunResult struct {
	Run     *domain.PipelineRun
	Preview *domain.PreviewInfo
	Layout  *domain.TileLayout
	Err     error
}

// RunHandle observes an active pipeline run. Logs is an order-preserving
// queue the controlling goroutine drains on its own polling interval;
// it is closed when the run ends. Done delivers exactly one RunResult.
type RunHandle struct {
	ID   string
	Logs <-chan string
	Done <-chan RunResult
}

// PipelineRunner executes the tiling pipeline on a dedicated worker
// goroutine. At most one run is active per process; a second Start
// while one is active returns domain.ErrRunInProgress, never queues.
// Runs are not cancellable mid-flight: the external collaborators run
// to completion or failure.
type PipelineRunner interface {
	Start(req PipelineRequest) (*RunHandle, error)

	// Active reports whether a run is currently in flight.
	Active() bool
}
