package metrics

// Recorder defines a minimal interface for recording pipeline metrics.
// Components depend on it rather than on the prometheus implementation.
type Recorder interface {
	// RecordLoaded records the rows read from an input table.
	RecordLoaded(table string, rows int)

	// RecordDropped records rows removed from a table during cleaning.
	// The reason parameter is ReasonMissing or ReasonDuplicate.
	RecordDropped(table, reason string, rows int)

	// RecordMerged records the row count of the final table.
	RecordMerged(rows int)

	// RecordStageDuration records how long a stage took, in seconds.
	RecordStageDuration(stage string, seconds float64)

	// RecordError records a failed stage with the error category.
	RecordError(stage, category string)
}

// NoOpRecorder discards everything
type NoOpRecorder struct{}

func (NoOpRecorder) RecordLoaded(string, int) {}
func (NoOpRecorder) RecordDropped(string, string, int) {}
func (NoOpRecorder) RecordMerged(int) {}
func (NoOpRecorder) RecordStageDuration(string, float64) {}
func (NoOpRecorder) RecordError(string, string) {}

var (
	_ Recorder = NoOpRecorder{}
	_ Recorder = (*PipelineMetrics)(nil)
)
