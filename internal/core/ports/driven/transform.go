package driven

import "context"

// ProjectedPoint is a coordinate pair in a projected, meters-based
// reference system.
type ProjectedPoint struct {
	X float64
	Y float64
}

// GeographicPoint is a longitude/latitude pair in degrees.
type GeographicPoint struct {
	Lon float64
	Lat float64
}

// PointTransformer converts projected coordinates to geographic ones.
// Implementations MUST request the traditional longitude-first axis
// convention on both the source and destination reference definitions;
// registry-default axis order must never leak into results.
type PointTransformer interface {
	// ToGeographic transforms points from the projected reference
	// identified by srcEPSG into geographic WGS 84 coordinates.
	// Output order matches input order.
	ToGeographic(ctx context.Context, srcEPSG int, points []ProjectedPoint) ([]GeographicPoint, error)
}
