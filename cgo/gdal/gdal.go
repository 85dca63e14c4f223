//go:build cgo

package gdal

/*
#cgo pkg-config: gdal

#include "gdal.h"
#include "cpl_conv.h"
#include "cpl_error.h"
#include "cpl_string.h"
#include <stdlib.h>
#include <string.h>

static void geomosaic_quiet_errors() {
	CPLSetErrorHandler(CPLQuietErrorHandler);
}
*/
import "C"

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/geomosaic-labs/geomosaic-cli/internal/core/domain"
	"github.com/geomosaic-labs/geomosaic-cli/internal/core/ports/driven"
)

// registerOnce runs global GDAL initialization exactly once.
var registerOnce sync.Once

func register() {
	registerOnce.Do(func() {
		// Driver errors are returned through the API; keep GDAL from
		// also printing them to stderr.
		C.geomosaic_quiet_errors()
		C.GDALAllRegister()
	})
}

// lastError returns GDAL's most recent error message.
func lastError() string {
	return C.GoString(C.CPLGetLastErrorMsg())
}

// Ensure Engine implements the interface.
var _ driven.RasterEngine = (*Engine)(nil)

// Engine is the native GDAL raster engine.
type Engine struct{}

// NewEngine creates the native raster engine.
func NewEngine() *Engine {
	register()
	return &Engine{}
}

// Open opens path as a GDAL dataset in the requested mode.
func (e *Engine) Open(_ context.Context, path string, mode driven.OpenMode) (driven.RasterDataset, error) {
	access := C.GDALAccess(C.GA_ReadOnly)
	if mode == driven.Update {
		access = C.GA_Update
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.GDALOpen(cpath, access)
	if handle == nil {
		msg := lastError()
		if msg == "" {
			msg = "not a recognized raster"
		}
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrOpen, path, msg)
	}

	return &dataset{handle: handle}, nil
}

// dataset wraps one open GDALDatasetH.
type dataset struct {
	mu     sync.Mutex
	handle C.GDALDatasetH
}

var _ driven.RasterDataset = (*dataset)(nil)

func (d *dataset) Size() domain.RasterSize {
	d.mu.Lock()
	defer d.mu.Unlock()
	return domain.RasterSize{
		int(C.GDALGetRasterXSize(d.handle)),
		int(C.GDALGetRasterYSize(d.handle)),
	}
}

// GeoTransform returns the affine transform, or nil when the dataset
// carries none. GDAL reports absence through the return code while
// still filling in an identity-like default, so the code is what
// matters here.
func (d *dataset) GeoTransform() *[6]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	var cgt [6]C.double
	if C.GDALGetGeoTransform(d.handle, &cgt[0]) != C.CE_None {
		return nil
	}
	var gt [6]float64
	for i := range cgt {
		gt[i] = float64(cgt[i])
	}
	return &gt
}

func (d *dataset) Projection() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return C.GoString(C.GDALGetProjectionRef(d.handle))
}

func (d *dataset) GCPProjection() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return C.GoString(C.GDALGetGCPProjection(d.handle))
}

func (d *dataset) GCPs() []domain.GroundControlPoint {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := int(C.GDALGetGCPCount(d.handle))
	if count == 0 {
		return nil
	}

	raw := unsafe.Slice(C.GDALGetGCPs(d.handle), count)
	gcps := make([]domain.GroundControlPoint, count)
	for i, g := range raw {
		gcps[i] = domain.GroundControlPoint{
			ID:    C.GoString(g.pszId),
			Info:  C.GoString(g.pszInfo),
			Pixel: float64(g.dfGCPPixel),
			Line:  float64(g.dfGCPLine),
			X:     float64(g.dfGCPX),
			Y:     float64(g.dfGCPY),
			Z:     float64(g.dfGCPZ),
		}
	}
	return gcps
}

// Metadata returns the dataset's default-domain metadata as a map.
func (d *dataset) Metadata() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := C.GDALGetMetadata(d.handle, nil)
	if list == nil {
		return nil
	}

	count := int(C.CSLCount(list))
	meta := make(map[string]string, count)
	for i := 0; i < count; i++ {
		entry := C.GoString(C.CSLGetField(list, C.int(i)))
		key, value, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		meta[key] = value
	}
	return meta
}

func (d *dataset) SetGeoTransform(gt [6]float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var cgt [6]C.double
	for i := range gt {
		cgt[i] = C.double(gt[i])
	}
	if C.GDALSetGeoTransform(d.handle, &cgt[0]) != C.CE_None {
		return fmt.Errorf("setting geotransform: %s", lastError())
	}
	return nil
}

func (d *dataset) SetProjection(wkt string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	cwkt := C.CString(wkt)
	defer C.free(unsafe.Pointer(cwkt))

	if C.GDALSetProjection(d.handle, cwkt) != C.CE_None {
		return fmt.Errorf("setting projection: %s", lastError())
	}
	return nil
}

// SetGCPs writes the point list together with its projection. GDAL
// copies the array, so the C allocations are released before return.
func (d *dataset) SetGCPs(gcps []domain.GroundControlPoint, projectionWKT string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := len(gcps)
	size := C.size_t(count) * C.size_t(unsafe.Sizeof(C.GDAL_GCP{}))
	arr := (*C.GDAL_GCP)(C.malloc(size))
	if arr == nil {
		return fmt.Errorf("allocating %d ground control points", count)
	}
	defer C.free(unsafe.Pointer(arr))

	slice := unsafe.Slice(arr, count)
	for i, g := range gcps {
		slice[i] = C.GDAL_GCP{
			pszId:      C.CString(g.ID),
			pszInfo:    C.CString(g.Info),
			dfGCPPixel: C.double(g.Pixel),
			dfGCPLine:  C.double(g.Line),
			dfGCPX:     C.double(g.X),
			dfGCPY:     C.double(g.Y),
			dfGCPZ:     C.double(g.Z),
		}
	}
	defer func() {
		for i := range slice {
			C.free(unsafe.Pointer(slice[i].pszId))
			C.free(unsafe.Pointer(slice[i].pszInfo))
		}
	}()

	cwkt := C.CString(projectionWKT)
	defer C.free(unsafe.Pointer(cwkt))

	if C.GDALSetGCPs(d.handle, C.int(count), arr, cwkt) != C.CE_None {
		return fmt.Errorf("setting %d ground control points: %s", count, lastError())
	}
	return nil
}

// Flush forces pending metadata writes through the driver to disk.
func (d *dataset) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	C.GDALFlushCache(d.handle)
	return nil
}

// Close releases the dataset. Further method calls are invalid.
func (d *dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle != nil {
		C.GDALClose(d.handle)
		d.handle = nil
	}
	return nil
}
