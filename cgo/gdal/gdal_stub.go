//go:build !cgo

package gdal

import (
	"context"
	"fmt"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.RasterEngine = (*Engine)(nil)

// Engine is the raster engine stub for builds without CGO.
type Engine struct{}

// NewEngine creates the stub raster engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Open always fails: no native GDAL library is bound in this build.
func (e *Engine) Open(_ context.Context, path string, _ driven.OpenMode) (driven.RasterDataset, error) {
	return nil, fmt.Errorf("%w: %s: built without CGO", domain.ErrEngineUnavailable, path)
}
