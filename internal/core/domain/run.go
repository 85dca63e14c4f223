package domain

import "time"

// PipelineRun records one tiling pipeline execution for the run history.
type PipelineRun struct {
	ID         string
	SourcePath string
	OutputDir  string
	MinZoom    int
	MaxZoom    int

	StartedAt time.Time
	EndedAt   time.Time

	Success bool
	// Error holds the single terminal error of a failed run.
	Error string

	// SuggestedMaxZoom mirrors PreviewInfo; nil when none was derived.
	SuggestedMaxZoom *int
}
