package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driving"
	"github.com/geomosaic-labs/geomosaic-cli/internal/logger"
)

// Ensure GeorefService implements the interface.
var _ driving.GeorefService = (*GeorefService)(nil)

// GeorefService extracts georeferencing from rasters and injects it
// into copies of rasters whose pixel data is final.
type GeorefService struct {
	engine driven.RasterEngine
}

// NewGeorefService creates a new georeference service.
func NewGeorefService(engine driven.RasterEngine) *GeorefService {
	return &GeorefService{engine: engine}
}

// Extract reads size, geotransform, projection strings, GCPs and
// metadata into an interchange record. An absent geotransform yields a
// nil field, not an error; absent projections yield empty strings.
func (s *GeorefService) Extract(ctx context.Context, rasterPath string) (*domain.GeorefRecord, error) {
	if err := requireFile(rasterPath); err != nil {
		return nil, err
	}

	ds, err := s.openRaster(ctx, rasterPath, driven.ReadOnly)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	gcps := ds.GCPs()
	if gcps == nil {
		gcps = []domain.GroundControlPoint{}
	}
	meta := ds.Metadata()
	if meta == nil {
		meta = map[string]string{}
	}

	return &domain.GeorefRecord{
		Format:           domain.GeorefFormat,
		SourceFile:       filepath.Base(rasterPath),
		RasterSize:       ds.Size(),
		GeoTransform:     ds.GeoTransform(),
		ProjectionWKT:    ds.Projection(),
		GCPProjectionWKT: ds.GCPProjection(),
		GCPs:             gcps,
		Metadata:         meta,
	}, nil
}

// SaveRecord writes the record as an indented JSON interchange document.
func (s *GeorefService) SaveRecord(record *domain.GeorefRecord, outPath string) error {
	data, err := domain.EncodeGeorefRecord(record)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing georef document: %w", err)
	}
	return nil
}

// LoadRecord reads and validates an interchange document.
func (s *GeorefService) LoadRecord(recordPath string) (*domain.GeorefRecord, error) {
	if err := requireFile(recordPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(recordPath)
	if err != nil {
		return nil, fmt.Errorf("reading georef document: %w", err)
	}

	return domain.DecodeGeorefRecord(data)
}

// Inject writes the record's georeferencing into a byte-for-byte copy
// of rasterPath at outPath. The format tag is checked before any output
// is created. The geotransform is written only if present, the
// projection only if non-empty, and GCPs only if the list is non-empty,
// always paired with the GCP projection string. Record metadata is
// intentionally not written back so driver-specific tags on the target
// are not clobbered.
func (s *GeorefService) Inject(ctx context.Context, record *domain.GeorefRecord, rasterPath, outPath string) error {
	if record == nil || record.Format != domain.GeorefFormat {
		format := ""
		if record != nil {
			format = record.Format
		}
		return fmt.Errorf("%w: format tag %q", domain.ErrUnsupportedFormat, format)
	}

	if err := requireFile(rasterPath); err != nil {
		return err
	}

	if err := copyFile(rasterPath, outPath); err != nil {
		return fmt.Errorf("copying raster: %w", err)
	}

	ds, err := s.openRaster(ctx, outPath, driven.Update)
	if err != nil {
		// The half-written copy is useless; removal is best-effort.
		if rmErr := os.Remove(outPath); rmErr != nil {
			logger.Warn("could not remove partial output %s: %v", outPath, rmErr)
		}
		return err
	}
	defer ds.Close()

	if record.GeoTransform != nil {
		if err := ds.SetGeoTransform(*record.GeoTransform); err != nil {
			return fmt.Errorf("setting geotransform: %w", err)
		}
	}

	if record.ProjectionWKT != "" {
		if err := ds.SetProjection(record.ProjectionWKT); err != nil {
			return fmt.Errorf("setting projection: %w", err)
		}
	}

	if len(record.GCPs) > 0 {
		if err := ds.SetGCPs(record.GCPs, record.GCPProjectionWKT); err != nil {
			return fmt.Errorf("setting ground control points: %w", err)
		}
	}

	if err := ds.Flush(); err != nil {
		return fmt.Errorf("flushing output raster: %w", err)
	}
	return nil
}

// openRaster maps engine failures onto the domain error taxonomy.
func (s *GeorefService) openRaster(ctx context.Context, path string, mode driven.OpenMode) (driven.RasterDataset, error) {
	ds, err := s.engine.Open(ctx, path, mode)
	if err != nil {
		if errors.Is(err, domain.ErrEngineUnavailable) || errors.Is(err, domain.ErrOpen) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrOpen, path, err)
	}
	return ds, nil
}

// requireFile reports ErrNotFound for missing input paths.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	return nil
}

// copyFile duplicates src at dst byte for byte, creating parent
// directories and syncing before returning.
func copyFile(src, dst string) error {
	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
