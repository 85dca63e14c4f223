package driven

import (
	"context"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
)

// OpenMode selects how a raster dataset is opened.
type OpenMode int

const (
	// ReadOnly opens a dataset for reading.
	ReadOnly OpenMode = iota
	// Update opens a dataset for in-place metadata writes.
	Update
)

// RasterEngine opens raster datasets through whichever native raster
// library is bound at process start. Implementations must perform their
// once-per-process runtime configuration (data paths, registry smoke
// test) idempotently before the first open, and fail fast with a
// descriptive error when the engine is unavailable.
type RasterEngine interface {
	// Open opens the raster at path. The caller owns the returned
	// dataset and must Close it. An unreadable or non-raster file is
	// an error; a missing georeference on a readable raster is not.
	Open(ctx context.Context, path string, mode OpenMode) (RasterDataset, error)
}

// RasterDataset is one open raster. Read accessors use nullable
// semantics: an absent geotransform is nil, absent projection strings
// are empty, never an error.
type RasterDataset interface {
	// Size returns the raster dimensions in pixels. Always populated.
	Size() domain.RasterSize

	// GeoTransform returns the six affine coefficients, or nil when the
	// dataset carries none.
	GeoTransform() *[6]float64

	// Projection returns the dataset projection WKT, "" when unset.
	Projection() string

	// GCPProjection returns the WKT associated with the GCP set,
	// "" when unset.
	GCPProjection() string

	// GCPs returns the ground control points in dataset order.
	GCPs() []domain.GroundControlPoint

	// Metadata returns the default-domain metadata mapping.
	Metadata() map[string]string

	// SetGeoTransform writes the affine coefficients.
	// Requires Update mode.
	SetGeoTransform(gt [6]float64) error

	// SetProjection writes the projection WKT. Requires Update mode.
	SetProjection(wkt string) error

	// SetGCPs writes the GCP set together with its projection string,
	// which may be empty. Requires Update mode.
	SetGCPs(gcps []domain.GroundControlPoint, projectionWKT string) error

	// Flush forces pending metadata writes to durable storage.
	Flush() error

	// Close releases the dataset.
	Close() error
}
