// Package gdal binds the GDAL raster library. It implements the raster
// engine port: opening datasets, reading and writing geotransforms,
// projections, ground control points and metadata.
//
// Builds without CGO (or without the GDAL development headers) get a
// stub whose Open always reports that no native engine is bound; the
// extract and inject commands then fail with a clear message while the
// rest of the CLI keeps working.
package gdal
