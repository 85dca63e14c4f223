package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() *GeorefRecord {
	gt := [6]float64{399960.0, 10.0, 0.0, 4700040.0, 0.0, -10.0}
	return &GeorefRecord{
		Format:           GeorefFormat,
		SourceFile:       "scene.tif",
		RasterSize:       RasterSize{1024, 768},
		GeoTransform:     &gt,
		ProjectionWKT:    `PROJCS["WGS 84 / UTM zone 33N"]`,
		GCPProjectionWKT: "",
		GCPs: []GroundControlPoint{
			{ID: "1", Info: "corner", Pixel: 0.5, Line: 0.5, X: 399960.25, Y: 4700039.75, Z: 0},
			{ID: "2", Info: "", Pixel: 1023.5, Line: 767.5, X: 410195.0, Y: 4692365.0, Z: 12.5},
		},
		Metadata: map[string]string{"AREA_OR_POINT": "Area"},
	}
}

func TestGeorefRecord_EncodeDecodeRoundTrip(t *testing.T) {
	rec := testRecord()

	data, err := EncodeGeorefRecord(rec)
	require.NoError(t, err)

	got, err := DecodeGeorefRecord(data)
	require.NoError(t, err)

	assert.Equal(t, rec.Format, got.Format)
	assert.Equal(t, rec.SourceFile, got.SourceFile)
	assert.Equal(t, rec.RasterSize, got.RasterSize)
	require.NotNil(t, got.GeoTransform)
	assert.Equal(t, *rec.GeoTransform, *got.GeoTransform)
	assert.Equal(t, rec.ProjectionWKT, got.ProjectionWKT)
	assert.Equal(t, rec.GCPProjectionWKT, got.GCPProjectionWKT)
	assert.Equal(t, rec.GCPs, got.GCPs)
	assert.Equal(t, rec.Metadata, got.Metadata)
}

func TestGeorefRecord_NilTransformStaysNil(t *testing.T) {
	rec := testRecord()
	rec.GeoTransform = nil

	data, err := EncodeGeorefRecord(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"geotransform": null`)

	got, err := DecodeGeorefRecord(data)
	require.NoError(t, err)
	assert.Nil(t, got.GeoTransform)
}

func TestGeorefRecord_EmptyProjectionsSerializedAsEmptyStrings(t *testing.T) {
	rec := testRecord()
	rec.ProjectionWKT = ""
	rec.GCPProjectionWKT = ""

	data, err := EncodeGeorefRecord(rec)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"projection_wkt": ""`)
	assert.Contains(t, s, `"gcp_projection_wkt": ""`)
}

func TestDecodeGeorefRecord_FormatGate(t *testing.T) {
	data, err := EncodeGeorefRecord(testRecord())
	require.NoError(t, err)

	tampered := strings.Replace(string(data), GeorefFormat, "someone_elses_format", 1)

	_, err = DecodeGeorefRecord([]byte(tampered))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeGeorefRecord_MissingFormat(t *testing.T) {
	_, err := DecodeGeorefRecord([]byte(`{"raster_size":[10,10]}`))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestGeorefRecord_GCPOrderPreserved(t *testing.T) {
	rec := testRecord()
	rec.GCPs = nil
	for i := 0; i < 50; i++ {
		rec.GCPs = append(rec.GCPs, GroundControlPoint{
			ID:    string(rune('A' + i%26)),
			Pixel: float64(i),
			Line:  float64(i) / 3.0,
			X:     float64(i) * 1000.123456789,
			Y:     -float64(i) * 1000.987654321,
		})
	}

	data, err := EncodeGeorefRecord(rec)
	require.NoError(t, err)

	got, err := DecodeGeorefRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec.GCPs, got.GCPs)
}

func TestGeorefRecord_Validate(t *testing.T) {
	rec := testRecord()
	require.NoError(t, rec.Validate())

	bad := testRecord()
	bad.Format = "v0"
	assert.ErrorIs(t, bad.Validate(), ErrUnsupportedFormat)

	zero := testRecord()
	zero.RasterSize = RasterSize{0, 768}
	assert.ErrorIs(t, zero.Validate(), ErrInvalidInput)
}
