package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// webMercatorEPSG is the fixed planar projection rasters are warped
// into before tiling.
const webMercatorEPSG = 3857

// PreviewDeriver computes geographic bounds, center point and a zoom
// suggestion for a raster already reprojected into Web Mercator.
type PreviewDeriver struct {
	engine      driven.RasterEngine
	transformer driven.PointTransformer
}

// NewPreviewDeriver creates a new preview metadata deriver.
func NewPreviewDeriver(engine driven.RasterEngine, transformer driven.PointTransformer) *PreviewDeriver {
	return &PreviewDeriver{engine: engine, transformer: transformer}
}

// Derive opens the warped raster, maps its four pixel corners through
// the affine transform, converts them to geographic coordinates and
// folds them into bounds, center and a suggested max zoom. The only
// failures that escape are open/read problems, as domain.ErrOpen; a
// degenerate transform yields an absent zoom, never an error.
func (d *PreviewDeriver) Derive(ctx context.Context, warpedPath string) (*domain.PreviewInfo, error) {
	ds, err := d.engine.Open(ctx, warpedPath, driven.ReadOnly)
	if err != nil {
		if errors.Is(err, domain.ErrEngineUnavailable) || errors.Is(err, domain.ErrOpen) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrOpen, warpedPath, err)
	}
	defer ds.Close()

	gt := ds.GeoTransform()
	if gt == nil {
		return nil, fmt.Errorf("%w: %s: missing geotransform", domain.ErrOpen, warpedPath)
	}

	size := ds.Size()
	w := float64(size.Width())
	h := float64(size.Height())

	pxToXY := func(px, py float64) driven.ProjectedPoint {
		return driven.ProjectedPoint{
			X: gt[0] + px*gt[1] + py*gt[2],
			Y: gt[3] + px*gt[4] + py*gt[5],
		}
	}

	corners := []driven.ProjectedPoint{
		pxToXY(0, 0),
		pxToXY(w, 0),
		pxToXY(w, h),
		pxToXY(0, h),
	}

	geo, err := d.transformer.ToGeographic(ctx, webMercatorEPSG, corners)
	if err != nil {
		return nil, fmt.Errorf("%w: transforming corners: %w", domain.ErrOpen, err)
	}
	if len(geo) != len(corners) {
		return nil, fmt.Errorf("%w: transformer returned %d of %d corners", domain.ErrOpen, len(geo), len(corners))
	}

	var minLat, maxLat, minLng, maxLng float64
	for i, p := range geo {
		// Axis-order leakage not fully suppressed by the transformer's
		// lon-first request still gets corrected here.
		lat, lng := domain.CorrectLatLng(p.Lat, p.Lon)
		if i == 0 {
			minLat, maxLat = lat, lat
			minLng, maxLng = lng, lng
			continue
		}
		minLat = min(minLat, lat)
		maxLat = max(maxLat, lat)
		minLng = min(minLng, lng)
		maxLng = max(maxLng, lng)
	}

	return &domain.PreviewInfo{
		WarpedPath:       warpedPath,
		CenterLat:        (minLat + maxLat) / 2.0,
		CenterLng:        (minLng + maxLng) / 2.0,
		BoundsSWLat:      minLat,
		BoundsSWLng:      minLng,
		BoundsNELat:      maxLat,
		BoundsNELng:      maxLng,
		SuggestedMaxZoom: domain.SuggestMaxZoom(gt[1]),
	}, nil
}
