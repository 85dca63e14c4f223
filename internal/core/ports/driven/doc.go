// Package driven defines the capability interfaces the core depends on.
// Adapters bind them to the native raster engine, the external
// reprojection and tiling tools, page rendering and storage.
package driven
