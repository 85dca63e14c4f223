package gdalexec

import (
	"context"
	"fmt"
	"runtime"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
	"github.com/geomosaic-labs/geomosaic-cli/internal/logger"
)

// defaultTileBinary is the pyramid tool looked up in PATH.
const defaultTileBinary = "gdal2tiles.py"

// Ensure Tiler implements the interface.
var _ driven.Tiler = (*Tiler)(nil)

// Tiler renders XYZ tile pyramids by shelling out to gdal2tiles. While
// the tool runs, a filesystem watcher counts tiles as they appear and
// reports progress through the log function.
type Tiler struct {
	// Binary overrides the tool name, mainly for tests.
	Binary string

	// Processes sets gdal2tiles worker parallelism. Zero means one
	// worker per CPU.
	Processes int
}

// NewTiler creates a gdal2tiles-backed tiler.
func NewTiler() *Tiler {
	return &Tiler{Binary: defaultTileBinary}
}

// Tile renders the zoom range minZoom..maxZoom of srcPath under outDir.
// Re-running with existing output resumes: tiles already on disk are
// skipped by the tool.
func (t *Tiler) Tile(ctx context.Context, srcPath, outDir string, minZoom, maxZoom int, log driven.LogFn) error {
	procs := t.Processes
	if procs <= 0 {
		procs = runtime.NumCPU()
	}

	watcher, err := newProgressWatcher(outDir, log)
	if err != nil {
		// Progress reporting is cosmetic; tiling proceeds without it.
		logger.Warn("tile progress watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	return runTool(ctx, log, t.Binary, tileArgs(srcPath, outDir, minZoom, maxZoom, procs)...)
}

// tileArgs builds the fixed gdal2tiles invocation: mercator profile in
// XYZ orientation, PNG tiles, no bundled viewer, resumable output and
// transparent edge tiles excluded.
func tileArgs(srcPath, outDir string, minZoom, maxZoom, processes int) []string {
	return []string{
		"--profile=mercator",
		"--xyz",
		"--tiledriver=PNG",
		"--webviewer=none",
		"--resume",
		"--exclude",
		"--resampling=bilinear",
		fmt.Sprintf("--zoom=%d-%d", minZoom, maxZoom),
		fmt.Sprintf("--processes=%d", processes),
		srcPath,
		outDir,
	}
}
