package driven

import "context"

// LogFn receives one progress/log line from a collaborator.
// Implementations of Warper and Tiler call it from their own goroutine;
// the function must be safe for that and must not block for long.
type LogFn func(line string)

// Warper is the external reprojection collaborator. It reprojects a
// raster into the fixed web projection (EPSG:3857), writing a new file
// and leaving the source untouched. A non-zero completion signal
// surfaces as domain.ErrExternalTool with the tool's diagnostic.
type Warper interface {
	Warp(ctx context.Context, srcPath, dstPath string, log LogFn) error
}

// Tiler is the external tiling collaborator. It renders an XYZ tile
// pyramid for the given zoom range under outDir. Re-running the same
// configuration resumes, keyed by pre-existing output files.
type Tiler interface {
	Tile(ctx context.Context, srcPath, outDir string, minZoom, maxZoom int, log LogFn) error
}
