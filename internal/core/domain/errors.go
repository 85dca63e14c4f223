package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a required input path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOpen indicates the raster engine could not open a file as a raster,
	// or a raster lacks the georeferencing the calling use case requires.
	ErrOpen = errors.New("cannot open raster")

	// ErrUnsupportedFormat indicates an interchange document whose format
	// tag is missing or does not match the supported identifier.
	ErrUnsupportedFormat = errors.New("unsupported georeference format")

	// ErrExternalTool indicates the reprojection or tiling collaborator
	// finished with a non-zero exit status.
	ErrExternalTool = errors.New("external tool failed")

	// ErrRunInProgress indicates a pipeline run is already active.
	// A second start request is rejected, never queued.
	ErrRunInProgress = errors.New("pipeline run in progress")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEngineUnavailable indicates no native raster engine is bound.
	// Builds without CGO fall back to a stub adapter that reports this.
	ErrEngineUnavailable = errors.New("raster engine unavailable")
)
