// Package metrics provides constants used across metric definitions.
package metrics

// Stage label values
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageClean     = "clean"
	StageMerge     = "merge"
	StageWrite     = "write"
	StageExport    = "export"
	StageCommit    = "commit"
)

// Drop reason label values
const (
	ReasonMissing   = "missing_value"
	ReasonDuplicate = "duplicate_key"
)

// Histogram bucket configuration for stage durations
const (
	BucketStart1ms = 0.001
	BucketFactor2  = 2
	BucketCount15  = 15 // 1ms to ~16s
)
