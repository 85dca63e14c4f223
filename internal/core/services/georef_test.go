package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geomosaic-labs/geomosaic-cli/internal/adapters/driven/raster/memory"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
)

// writeRasterFile creates a file with distinctive bytes so copy and
// non-destructiveness checks can compare content.
func writeRasterFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func utmGeoTransform() *[6]float64 {
	gt := [6]float64{399960.0, 10.0, 0.0, 4700040.0, 0.0, -10.0}
	return &gt
}

func TestGeorefService_Extract(t *testing.T) {
	engine := memory.NewEngine()
	svc := NewGeorefService(engine)
	ctx := context.Background()

	dir := t.TempDir()
	src := writeRasterFile(t, dir, "scan.tif", []byte("raster-a"))
	engine.Put(src, memory.Raster{
		Size:          domain.RasterSize{1024, 512},
		GeoTransform:  utmGeoTransform(),
		ProjectionWKT: `PROJCS["WGS 84 / UTM zone 33N"]`,
		GCPs: []domain.GroundControlPoint{
			{ID: "1", Pixel: 0, Line: 0, X: 399960, Y: 4700040},
		},
		Metadata: map[string]string{"AREA_OR_POINT": "Area"},
	})

	record, err := svc.Extract(ctx, src)
	require.NoError(t, err)

	assert.Equal(t, domain.GeorefFormat, record.Format)
	assert.Equal(t, "scan.tif", record.SourceFile)
	assert.Equal(t, domain.RasterSize{1024, 512}, record.RasterSize)
	require.NotNil(t, record.GeoTransform)
	assert.Equal(t, *utmGeoTransform(), *record.GeoTransform)
	assert.Equal(t, `PROJCS["WGS 84 / UTM zone 33N"]`, record.ProjectionWKT)
	assert.Len(t, record.GCPs, 1)
	assert.Equal(t, "Area", record.Metadata["AREA_OR_POINT"])
}

func TestGeorefService_Extract_UngeoreferencedDefaults(t *testing.T) {
	engine := memory.NewEngine()
	svc := NewGeorefService(engine)

	dir := t.TempDir()
	src := writeRasterFile(t, dir, "plain.tif", []byte("no-georef"))
	engine.Put(src, memory.Raster{Size: domain.RasterSize{64, 64}})

	record, err := svc.Extract(context.Background(), src)
	require.NoError(t, err)

	assert.Nil(t, record.GeoTransform)
	assert.Equal(t, "", record.ProjectionWKT)
	assert.Equal(t, "", record.GCPProjectionWKT)
	assert.NotNil(t, record.GCPs)
	assert.Empty(t, record.GCPs)
	assert.NotNil(t, record.Metadata)
	assert.Empty(t, record.Metadata)
}

func TestGeorefService_Extract_MissingFile(t *testing.T) {
	svc := NewGeorefService(memory.NewEngine())

	_, err := svc.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.tif"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGeorefService_Extract_NotARaster(t *testing.T) {
	engine := memory.NewEngine()
	svc := NewGeorefService(engine)

	dir := t.TempDir()
	src := writeRasterFile(t, dir, "notes.txt", []byte("not a raster"))

	_, err := svc.Extract(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOpen)
}

func TestGeorefService_SaveAndLoadRecord(t *testing.T) {
	svc := NewGeorefService(memory.NewEngine())

	record := &domain.GeorefRecord{
		Format:        domain.GeorefFormat,
		SourceFile:    "scan.tif",
		RasterSize:    domain.RasterSize{100, 50},
		GeoTransform:  utmGeoTransform(),
		ProjectionWKT: "PROJCS[...]",
	}

	// Parent directories are created on demand.
	out := filepath.Join(t.TempDir(), "nested", "dir", "scan.georef.json")
	require.NoError(t, svc.SaveRecord(record, out))

	loaded, err := svc.LoadRecord(out)
	require.NoError(t, err)
	assert.Equal(t, record.SourceFile, loaded.SourceFile)
	assert.Equal(t, record.RasterSize, loaded.RasterSize)
	require.NotNil(t, loaded.GeoTransform)
	assert.Equal(t, *record.GeoTransform, *loaded.GeoTransform)
}

func TestGeorefService_LoadRecord_MissingFile(t *testing.T) {
	svc := NewGeorefService(memory.NewEngine())

	_, err := svc.LoadRecord(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGeorefService_LoadRecord_WrongFormat(t *testing.T) {
	svc := NewGeorefService(memory.NewEngine())

	path := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"format":"something_else"}`), 0o644))

	_, err := svc.LoadRecord(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestGeorefService_Inject_RoundTrip(t *testing.T) {
	engine := memory.NewEngine()
	svc := NewGeorefService(engine)
	ctx := context.Background()

	dir := t.TempDir()
	src := writeRasterFile(t, dir, "georeferenced.tif", []byte("raster-a"))
	engine.Put(src, memory.Raster{
		Size:             domain.RasterSize{1024, 512},
		GeoTransform:     utmGeoTransform(),
		ProjectionWKT:    `PROJCS["WGS 84 / UTM zone 33N"]`,
		GCPProjectionWKT: `GEOGCS["WGS 84"]`,
		GCPs: []domain.GroundControlPoint{
			{ID: "1", Info: "corner", Pixel: 0, Line: 0, X: 399960, Y: 4700040, Z: 12},
			{ID: "2", Pixel: 1024, Line: 512, X: 410200, Y: 4694920},
		},
	})

	record, err := svc.Extract(ctx, src)
	require.NoError(t, err)

	// Through the serialized document, as in real use.
	docPath := filepath.Join(dir, "georeferenced.georef.json")
	require.NoError(t, svc.SaveRecord(record, docPath))
	loaded, err := svc.LoadRecord(docPath)
	require.NoError(t, err)

	edited := writeRasterFile(t, dir, "edited.tif", []byte("raster-b-edited-pixels"))
	engine.Put(edited, memory.Raster{Size: domain.RasterSize{1024, 512}})
	out := filepath.Join(dir, "edited_georeferenced.tif")

	require.NoError(t, svc.Inject(ctx, loaded, edited, out))

	// Pixel bytes come from the edited raster, byte for byte.
	outBytes, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("raster-b-edited-pixels"), outBytes)

	// Re-extraction matches the original georeferencing.
	again, err := svc.Extract(ctx, out)
	require.NoError(t, err)
	require.NotNil(t, again.GeoTransform)
	assert.Equal(t, *record.GeoTransform, *again.GeoTransform)
	assert.Equal(t, record.ProjectionWKT, again.ProjectionWKT)
	assert.Equal(t, record.GCPProjectionWKT, again.GCPProjectionWKT)
	assert.Equal(t, record.GCPs, again.GCPs)
}

func TestGeorefService_Inject_RejectsWrongFormatBeforeOutput(t *testing.T) {
	engine := memory.NewEngine()
	svc := NewGeorefService(engine)

	dir := t.TempDir()
	src := writeRasterFile(t, dir, "edited.tif", []byte("raster-b"))
	engine.Put(src, memory.Raster{Size: domain.RasterSize{64, 64}})
	out := filepath.Join(dir, "out.tif")

	record := &domain.GeorefRecord{Format: "not_the_interchange_format"}
	err := svc.Inject(context.Background(), record, src, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	// The gate fires before any output file is created.
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGeorefService_Inject_SourceUntouched(t *testing.T) {
	engine := memory.NewEngine()
	svc := NewGeorefService(engine)
	ctx := context.Background()

	dir := t.TempDir()
	original := []byte("pristine-pixel-data")
	src := writeRasterFile(t, dir, "edited.tif", original)
	engine.Put(src, memory.Raster{Size: domain.RasterSize{64, 64}})

	record := &domain.GeorefRecord{
		Format:        domain.GeorefFormat,
		RasterSize:    domain.RasterSize{64, 64},
		GeoTransform:  utmGeoTransform(),
		ProjectionWKT: "PROJCS[...]",
	}
	require.NoError(t, svc.Inject(ctx, record, src, filepath.Join(dir, "out.tif")))

	after, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, original, after)

	srcRaster, ok := engine.Raster(src)
	require.True(t, ok)
	assert.Nil(t, srcRaster.GeoTransform)
	assert.Equal(t, "", srcRaster.ProjectionWKT)
}

func TestGeorefService_Inject_SkipsAbsentFields(t *testing.T) {
	engine := memory.NewEngine()
	svc := NewGeorefService(engine)

	dir := t.TempDir()
	src := writeRasterFile(t, dir, "edited.tif", []byte("raster-b"))
	engine.Put(src, memory.Raster{Size: domain.RasterSize{64, 64}})
	out := filepath.Join(dir, "out.tif")

	// A record from an ungeoreferenced source: nothing to write.
	record := &domain.GeorefRecord{
		Format:     domain.GeorefFormat,
		RasterSize: domain.RasterSize{64, 64},
	}
	require.NoError(t, svc.Inject(context.Background(), record, src, out))

	outRaster, ok := engine.Raster(out)
	require.True(t, ok)
	assert.Nil(t, outRaster.GeoTransform)
	assert.Equal(t, "", outRaster.ProjectionWKT)
	assert.Empty(t, outRaster.GCPs)
}

func TestGeorefService_Inject_MissingTarget(t *testing.T) {
	svc := NewGeorefService(memory.NewEngine())

	dir := t.TempDir()
	record := &domain.GeorefRecord{Format: domain.GeorefFormat, RasterSize: domain.RasterSize{1, 1}}

	err := svc.Inject(context.Background(), record, filepath.Join(dir, "missing.tif"), filepath.Join(dir, "out.tif"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
