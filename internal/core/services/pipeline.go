package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driving"
	"github.com/geomosaic-labs/geomosaic-cli/internal/logger"
)

// cacheDirName is the private subdirectory that holds the warped
// intermediate so it never lands in the output root.
const cacheDirName = "_geomosaic_cache"

// warpedFileName is the fixed name of the reprojected intermediate.
const warpedFileName = "warped_3857.tif"

// logQueueDepth bounds the per-run log channel. The controlling
// goroutine drains it on a polling interval and never blocks on it.
const logQueueDepth = 1024

// Ensure PipelineOrchestrator implements the interface.
var _ driving.PipelineRunner = (*PipelineOrchestrator)(nil)

// PipelineOrchestrator sequences one tiling run: validate and extract
// the source, warp it into Web Mercator, tile the intermediate, derive
// preview metadata, locate the tile layout, render the preview page and
// clean up the intermediate. All heavy lifting happens in the external
// collaborators; this type only coordinates them.
type PipelineOrchestrator struct {
	georefs  driving.GeorefService
	warper   driven.Warper
	tiler    driven.Tiler
	deriver  *PreviewDeriver
	locator  *LayoutLocator
	renderer driven.PageRenderer
	runs     driven.RunStore // optional; nil disables run history

	mu     sync.Mutex
	active bool
}

// NewPipelineOrchestrator creates a new pipeline orchestrator.
// runs may be nil, which disables run history recording.
func NewPipelineOrchestrator(
	georefs driving.GeorefService,
	warper driven.Warper,
	tiler driven.Tiler,
	deriver *PreviewDeriver,
	locator *LayoutLocator,
	renderer driven.PageRenderer,
	runs driven.RunStore,
) *PipelineOrchestrator {
	return &PipelineOrchestrator{
		georefs:  georefs,
		warper:   warper,
		tiler:    tiler,
		deriver:  deriver,
		locator:  locator,
		renderer: renderer,
		runs:     runs,
	}
}

// Active reports whether a run is currently in flight.
func (o *PipelineOrchestrator) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

// Start validates the request, claims the single run slot and launches
// the worker goroutine. A second start while a run is active returns
// domain.ErrRunInProgress without queueing.
func (o *PipelineOrchestrator) Start(req driving.PipelineRequest) (*driving.RunHandle, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.active {
		o.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	o.active = true
	o.mu.Unlock()

	run := &domain.PipelineRun{
		ID:         uuid.NewString(),
		SourcePath: req.SourcePath,
		OutputDir:  req.OutputDir,
		MinZoom:    req.MinZoom,
		MaxZoom:    req.MaxZoom,
		StartedAt:  time.Now(),
	}

	logs := make(chan string, logQueueDepth)
	done := make(chan driving.RunResult, 1)

	go o.runPipeline(req, run, logs, done)

	return &driving.RunHandle{ID: run.ID, Logs: logs, Done: done}, nil
}

// runPipeline is the worker. It owns every file write of the run and
// hands the single terminal result back through done.
func (o *PipelineOrchestrator) runPipeline(
	req driving.PipelineRequest,
	run *domain.PipelineRun,
	logs chan string,
	done chan driving.RunResult,
) {
	// No cancellation mid-flight: collaborators run to completion.
	ctx := context.Background()

	defer func() {
		o.mu.Lock()
		o.active = false
		o.mu.Unlock()
	}()

	log := func(line string) { logs <- line }

	o.saveRun(ctx, run)

	fail := func(err error) {
		run.EndedAt = time.Now()
		run.Success = false
		run.Error = err.Error()
		o.saveRun(ctx, run)
		log(fmt.Sprintf("error: %v", err))
		close(logs)
		done <- driving.RunResult{Run: run, Err: err}
	}

	log(fmt.Sprintf("input: %s", req.SourcePath))
	log(fmt.Sprintf("output: %s", req.OutputDir))
	log(fmt.Sprintf("zoom: %d-%d", req.MinZoom, req.MaxZoom))

	log("validating source raster...")
	record, err := o.georefs.Extract(ctx, req.SourcePath)
	if err != nil {
		fail(fmt.Errorf("extracting source georeference: %w", err))
		return
	}
	if err := requireGeoreferenced(record, req.SourcePath); err != nil {
		fail(err)
		return
	}

	cacheDir := filepath.Join(req.OutputDir, cacheDirName)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		fail(fmt.Errorf("creating cache directory: %w", err))
		return
	}
	warpedPath := filepath.Join(cacheDir, warpedFileName)

	log("reprojecting to EPSG:3857 (Web Mercator)...")
	if err := o.warper.Warp(ctx, req.SourcePath, warpedPath, log); err != nil {
		fail(fmt.Errorf("reprojecting: %w", err))
		return
	}

	log("generating XYZ tiles...")
	if err := o.tiler.Tile(ctx, warpedPath, req.OutputDir, req.MinZoom, req.MaxZoom, log); err != nil {
		fail(fmt.Errorf("tiling: %w", err))
		return
	}

	log("deriving preview metadata...")
	preview, err := o.deriver.Derive(ctx, warpedPath)
	if err != nil {
		fail(fmt.Errorf("deriving preview metadata: %w", err))
		return
	}
	if preview.SuggestedMaxZoom != nil {
		log(fmt.Sprintf("suggested max zoom: %d", *preview.SuggestedMaxZoom))
	}

	layout := o.locator.Locate(req.OutputDir)
	log(fmt.Sprintf("tile URL template: %s", layout.URLTemplate))
	if layout.SampleTile != "" {
		log(fmt.Sprintf("sample tile: %s", layout.SampleTile))
	}

	log("generating preview page index.html...")
	title := req.Title
	if title == "" {
		title = filepath.Base(req.SourcePath)
	}
	page, err := o.renderer.Render(domain.PreviewConfig{
		Title:            title,
		MinZoom:          req.MinZoom,
		MaxZoom:          req.MaxZoom,
		CenterLat:        preview.CenterLat,
		CenterLng:        preview.CenterLng,
		BoundsSWLat:      preview.BoundsSWLat,
		BoundsSWLng:      preview.BoundsSWLng,
		BoundsNELat:      preview.BoundsNELat,
		BoundsNELng:      preview.BoundsNELng,
		TilesURLTemplate: layout.URLTemplate,
	})
	if err != nil {
		fail(fmt.Errorf("rendering preview page: %w", err))
		return
	}
	if err := os.WriteFile(filepath.Join(req.OutputDir, "index.html"), page, 0o644); err != nil {
		fail(fmt.Errorf("writing preview page: %w", err))
		return
	}

	if !req.KeepIntermediate {
		o.cleanupIntermediate(warpedPath, cacheDir, log)
	}

	run.EndedAt = time.Now()
	run.Success = true
	run.SuggestedMaxZoom = preview.SuggestedMaxZoom
	o.saveRun(ctx, run)

	log("done. open index.html in the output directory to preview.")
	close(logs)
	done <- driving.RunResult{Run: run, Preview: preview, Layout: &layout}
}

// cleanupIntermediate deletes the warped file and removes the cache
// directory when empty. Both steps are best-effort and independently
// recovered so failure in one does not prevent the other.
func (o *PipelineOrchestrator) cleanupIntermediate(warpedPath, cacheDir string, log func(string)) {
	if err := os.Remove(warpedPath); err != nil && !os.IsNotExist(err) {
		log(fmt.Sprintf("warning: could not remove intermediate %s: %v", warpedPath, err))
	}
	// os.Remove on a directory only succeeds when it is empty.
	if err := os.Remove(cacheDir); err != nil && !os.IsNotExist(err) {
		log(fmt.Sprintf("warning: could not remove cache directory %s: %v", cacheDir, err))
	}
}

// saveRun records run history. Recording failures never fail the run.
func (o *PipelineOrchestrator) saveRun(ctx context.Context, run *domain.PipelineRun) {
	if o.runs == nil {
		return
	}
	if err := o.runs.Save(ctx, run); err != nil {
		logger.Warn("could not record run %s: %v", run.ID, err)
	}
}

// validateRequest checks paths and the zoom range before the run slot
// is claimed.
func validateRequest(req *driving.PipelineRequest) error {
	if err := requireFile(req.SourcePath); err != nil {
		return err
	}
	if req.MinZoom < 0 || req.MaxZoom < 0 || req.MaxZoom < req.MinZoom {
		return fmt.Errorf("%w: zoom range %d-%d", domain.ErrInvalidInput, req.MinZoom, req.MaxZoom)
	}
	if req.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

// requireGeoreferenced rejects rasters that carry neither an affine
// transform nor ground control points, or no projection at all, since
// the pipeline cannot place them on a map.
func requireGeoreferenced(record *domain.GeorefRecord, path string) error {
	if record.GeoTransform == nil && len(record.GCPs) == 0 {
		return fmt.Errorf("%w: %s: no geotransform or ground control points", domain.ErrOpen, path)
	}
	if record.ProjectionWKT == "" && record.GCPProjectionWKT == "" {
		return fmt.Errorf("%w: %s: no projection", domain.ErrOpen, path)
	}
	return nil
}
