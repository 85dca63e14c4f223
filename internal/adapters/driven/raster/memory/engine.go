// Package memory provides an in-memory RasterEngine. Raster pixel data
// lives in ordinary files on disk; their georeferencing attributes are
// kept in a map keyed by cleaned path. Used by tests in place of the
// native engine.
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.RasterEngine = (*Engine)(nil)

// Raster holds the georeferencing attributes of one fake raster.
type Raster struct {
	Size             domain.RasterSize
	GeoTransform     *[6]float64
	ProjectionWKT    string
	GCPProjectionWKT string
	GCPs             []domain.GroundControlPoint
	Metadata         map[string]string
}

// Engine is an in-memory implementation of driven.RasterEngine.
type Engine struct {
	mu      sync.Mutex
	rasters map[string]*Raster

	// NewRasterSize is assigned to rasters materialized by update-mode
	// opens of files the engine has not seen before, mimicking a fresh
	// byte-for-byte copy.
	NewRasterSize domain.RasterSize
}

// NewEngine creates a new in-memory raster engine.
func NewEngine() *Engine {
	return &Engine{
		rasters:       make(map[string]*Raster),
		NewRasterSize: domain.RasterSize{256, 256},
	}
}

// Put registers the georeferencing attributes for path. The file itself
// must be created separately by the caller.
func (e *Engine) Put(path string, r Raster) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r.Metadata == nil {
		r.Metadata = map[string]string{}
	}
	e.rasters[filepath.Clean(path)] = &r
}

// Raster returns the attributes registered for path.
func (e *Engine) Raster(path string) (Raster, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rasters[filepath.Clean(path)]
	if !ok {
		return Raster{}, false
	}
	return *r, true
}

// Open returns a dataset view over the registered attributes. Opening
// an unknown path read-only fails like a non-raster file would; opening
// it in update mode materializes a blank raster when the file exists,
// mirroring a copy whose metadata is about to be written.
func (e *Engine) Open(_ context.Context, path string, mode driven.OpenMode) (driven.RasterDataset, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := filepath.Clean(path)
	r, ok := e.rasters[key]
	if !ok {
		if mode != driven.Update {
			return nil, fmt.Errorf("%w: %s: not a registered raster", domain.ErrOpen, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrOpen, path, err)
		}
		r = &Raster{Size: e.NewRasterSize, Metadata: map[string]string{}}
		e.rasters[key] = r
	}

	return &dataset{engine: e, raster: r, mode: mode}, nil
}

// dataset implements driven.RasterDataset over one Raster entry.
type dataset struct {
	engine *Engine
	raster *Raster
	mode   driven.OpenMode
}

var _ driven.RasterDataset = (*dataset)(nil)

func (d *dataset) Size() domain.RasterSize {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	return d.raster.Size
}

func (d *dataset) GeoTransform() *[6]float64 {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	if d.raster.GeoTransform == nil {
		return nil
	}
	gt := *d.raster.GeoTransform
	return &gt
}

func (d *dataset) Projection() string {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	return d.raster.ProjectionWKT
}

func (d *dataset) GCPProjection() string {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	return d.raster.GCPProjectionWKT
}

func (d *dataset) GCPs() []domain.GroundControlPoint {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	out := make([]domain.GroundControlPoint, len(d.raster.GCPs))
	copy(out, d.raster.GCPs)
	return out
}

func (d *dataset) Metadata() map[string]string {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	out := make(map[string]string, len(d.raster.Metadata))
	for k, v := range d.raster.Metadata {
		out[k] = v
	}
	return out
}

func (d *dataset) SetGeoTransform(gt [6]float64) error {
	if err := d.requireUpdate(); err != nil {
		return err
	}
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	v := gt
	d.raster.GeoTransform = &v
	return nil
}

func (d *dataset) SetProjection(wkt string) error {
	if err := d.requireUpdate(); err != nil {
		return err
	}
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	d.raster.ProjectionWKT = wkt
	return nil
}

func (d *dataset) SetGCPs(gcps []domain.GroundControlPoint, projectionWKT string) error {
	if err := d.requireUpdate(); err != nil {
		return err
	}
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	d.raster.GCPs = make([]domain.GroundControlPoint, len(gcps))
	copy(d.raster.GCPs, gcps)
	d.raster.GCPProjectionWKT = projectionWKT
	return nil
}

func (d *dataset) Flush() error { return nil }

func (d *dataset) Close() error { return nil }

func (d *dataset) requireUpdate() error {
	if d.mode != driven.Update {
		return fmt.Errorf("%w: dataset opened read-only", domain.ErrInvalidInput)
	}
	return nil
}
