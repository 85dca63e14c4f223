package domain

import (
	"encoding/json"
	"fmt"
)

// GeorefFormat is the fixed identifier of the interchange document.
// The injector fails closed on anything else.
const GeorefFormat = "geomosaic_georef_v1"

// RasterSize is a width/height pair in pixels.
type RasterSize [2]int

// Width returns the raster width in pixels.
func (s RasterSize) Width() int { return s[0] }

// Height returns the raster height in pixels.
func (s RasterSize) Height() int { return s[1] }

// GroundControlPoint is a pixel/line to map-space correspondence.
// Points are immutable once read; order within a record is preserved
// end to end.
type GroundControlPoint struct {
	ID    string  `json:"id"`
	Info  string  `json:"info"`
	Pixel float64 `json:"pixel"`
	Line  float64 `json:"line"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
}

// GeorefRecord is the lossless georeference interchange document.
// It is produced by the extractor, persisted as JSON, and consumed by
// the injector. Projection strings default to the empty string, never
// null, so serialization stays uniform.
type GeorefRecord struct {
	Format           string               `json:"format"`
	SourceFile       string               `json:"source_file"`
	RasterSize       RasterSize           `json:"raster_size"`
	GeoTransform     *[6]float64          `json:"geotransform"`
	ProjectionWKT    string               `json:"projection_wkt"`
	GCPProjectionWKT string               `json:"gcp_projection_wkt"`
	GCPs             []GroundControlPoint `json:"gcps"`
	Metadata         map[string]string    `json:"metadata"`
}

// Validate checks structural invariants of the record.
func (r *GeorefRecord) Validate() error {
	if r.Format != GeorefFormat {
		return fmt.Errorf("%w: format tag %q", ErrUnsupportedFormat, r.Format)
	}
	if r.RasterSize.Width() <= 0 || r.RasterSize.Height() <= 0 {
		return fmt.Errorf("%w: raster size %dx%d", ErrInvalidInput, r.RasterSize.Width(), r.RasterSize.Height())
	}
	return nil
}

// EncodeGeorefRecord serializes a record as indented UTF-8 JSON.
func EncodeGeorefRecord(r *GeorefRecord) ([]byte, error) {
	if r.GCPs == nil {
		r.GCPs = []GroundControlPoint{}
	}
	if r.Metadata == nil {
		r.Metadata = map[string]string{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding georef record: %w", err)
	}
	return data, nil
}

// DecodeGeorefRecord parses an interchange document and validates its
// format tag.
func DecodeGeorefRecord(data []byte) (*GeorefRecord, error) {
	var r GeorefRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding georef record: %w", err)
	}
	if r.Format != GeorefFormat {
		return nil, fmt.Errorf("%w: format tag %q", ErrUnsupportedFormat, r.Format)
	}
	return &r, nil
}
