package domain

// PreviewInfo describes a reprojected raster in geographic terms.
// It is derived per pipeline run and not persisted beyond the session
// that produced it.
type PreviewInfo struct {
	// WarpedPath is the intermediate raster the preview was derived from.
	WarpedPath string

	CenterLat float64
	CenterLng float64

	BoundsSWLat float64
	BoundsSWLng float64
	BoundsNELat float64
	BoundsNELng float64

	// SuggestedMaxZoom is nil when the pixel resolution was non-positive
	// or the transform degenerate. Otherwise it is within [0, 22].
	SuggestedMaxZoom *int
}

// TileLayout locates the root of a {z}/{x}/{y} tile hierarchy.
type TileLayout struct {
	// Root is the tile root relative to the probed output directory.
	// "." means the output directory itself.
	Root string

	// URLTemplate contains the literal {z}, {x} and {y} placeholders
	// plus the tile file extension, relative to the directory holding
	// the generated preview page.
	URLTemplate string

	// SampleTile is a diagnostic tile path, empty when none was found.
	SampleTile string
}

// PreviewConfig is the input contract of the preview page collaborator.
type PreviewConfig struct {
	Title            string
	MinZoom          int
	MaxZoom          int
	CenterLat        float64
	CenterLng        float64
	BoundsSWLat      float64
	BoundsSWLng      float64
	BoundsNELat      float64
	BoundsNELng      float64
	TilesURLTemplate string
}
