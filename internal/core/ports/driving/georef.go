package driving

import (
	"context"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
)

// GeorefService extracts and injects georeference interchange records.
type GeorefService interface {
	// Extract reads the georeferencing of the raster at rasterPath into
	// an interchange record. Missing path → domain.ErrNotFound; file the
	// engine cannot open as a raster → domain.ErrOpen.
	Extract(ctx context.Context, rasterPath string) (*domain.GeorefRecord, error)

	// SaveRecord persists a record as an interchange JSON document,
	// creating parent directories as needed.
	SaveRecord(record *domain.GeorefRecord, outPath string) error

	// LoadRecord reads and validates an interchange document.
	// Missing path → domain.ErrNotFound; format tag mismatch →
	// domain.ErrUnsupportedFormat.
	LoadRecord(recordPath string) (*domain.GeorefRecord, error)

	// Inject writes the record's georeferencing into a byte-for-byte
	// copy of rasterPath at outPath. The source raster is never
	// mutated. Record metadata is intentionally not written back.
	Inject(ctx context.Context, record *domain.GeorefRecord, rasterPath, outPath string) error
}
