package gdalexec

import (
	"context"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// defaultWarpBinary is the reprojection tool looked up in PATH.
const defaultWarpBinary = "gdalwarp"

// Ensure Warper implements the interface.
var _ driven.Warper = (*Warper)(nil)

// Warper reprojects rasters into Web Mercator by shelling out to
// gdalwarp. The source file is never modified.
type Warper struct {
	// Binary overrides the tool name, mainly for tests.
	Binary string
}

// NewWarper creates a gdalwarp-backed warper.
func NewWarper() *Warper {
	return &Warper{Binary: defaultWarpBinary}
}

// Warp reprojects srcPath into EPSG:3857 at dstPath.
func (w *Warper) Warp(ctx context.Context, srcPath, dstPath string, log driven.LogFn) error {
	return runTool(ctx, log, w.Binary, warpArgs(srcPath, dstPath)...)
}

// warpArgs builds the fixed gdalwarp invocation: bilinear resampling,
// an alpha band so collar pixels stay transparent, and a tiled,
// DEFLATE-compressed GeoTIFF that tolerates very large outputs.
func warpArgs(srcPath, dstPath string) []string {
	return []string{
		"-t_srs", "EPSG:3857",
		"-r", "bilinear",
		"-dstalpha",
		"-wo", "INIT_DEST=NO_DATA",
		"-co", "TILED=YES",
		"-co", "COMPRESS=DEFLATE",
		"-co", "PREDICTOR=2",
		"-co", "BIGTIFF=IF_SAFER",
		"-overwrite",
		srcPath,
		dstPath,
	}
}
