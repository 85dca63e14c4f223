// Package webmercator implements the point transformer for the one
// projection the pipeline actually produces, EPSG:3857, using the
// closed-form spherical inverse. It needs no native projection library
// and is always available.
package webmercator

import (
	"context"
	"fmt"
	"math"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// earthRadius is the WGS 84 semi-major axis in meters, the sphere
// radius of the Web Mercator definition.
const earthRadius = 6378137.0

const (
	epsgWebMercator = 3857
	epsgWGS84       = 4326
)

// Ensure Transformer implements the interface.
var _ driven.PointTransformer = (*Transformer)(nil)

// Transformer converts Web Mercator coordinates to geographic WGS 84.
type Transformer struct{}

// NewTransformer creates a new Web Mercator transformer.
func NewTransformer() *Transformer {
	return &Transformer{}
}

// ToGeographic applies the spherical inverse Mercator formulas. Output
// is always longitude/latitude in that order. EPSG:4326 input passes
// through unchanged; any other source reference is rejected.
func (tr *Transformer) ToGeographic(_ context.Context, srcEPSG int, points []driven.ProjectedPoint) ([]driven.GeographicPoint, error) {
	out := make([]driven.GeographicPoint, len(points))

	switch srcEPSG {
	case epsgWebMercator:
		for i, p := range points {
			out[i] = driven.GeographicPoint{
				Lon: (p.X / earthRadius) * 180.0 / math.Pi,
				Lat: math.Atan(math.Sinh(p.Y/earthRadius)) * 180.0 / math.Pi,
			}
		}
	case epsgWGS84:
		for i, p := range points {
			out[i] = driven.GeographicPoint{Lon: p.X, Lat: p.Y}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported source reference EPSG:%d", domain.ErrInvalidInput, srcEPSG)
	}

	return out, nil
}
