// Package pipeline runs the load, normalize, clean, merge and write stages in order
// and produces the optional side outputs.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/birdstrike/internal/cleaner"
	"github.com/tphakala/birdstrike/internal/conf"
	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/loader"
	"github.com/tphakala/birdstrike/internal/logger"
	"github.com/tphakala/birdstrike/internal/merger"
	"github.com/tphakala/birdstrike/internal/normalize"
	"github.com/tphakala/birdstrike/internal/observability"
	"github.com/tphakala/birdstrike/internal/observability/metrics"
	"github.com/tphakala/birdstrike/internal/output"
)

// Input table names, used in logs, errors and metric labels
const (
	LightLevelsTable = "light_levels"
	CollisionsTable  = "collisions"
	FlightCallsTable = normalize.FlightCallTable
)

// Paths are the three inputs and the CSV destination
type Paths struct {
	LightLevels string
	Collisions  string
	FlightCalls string
	Output      string
}

// Result describes a completed run
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Cleaning   []cleaner.Stats // light levels, collisions, flight calls
	Light      *dataset.Table  // cleaned light levels
	Merged     *dataset.Table
}

// Runner executes runs with one configuration
type Runner struct {
	settings *conf.Settings
	loader   *loader.Loader
	metrics  *observability.Metrics // nil unless the metrics export is enabled
	recorder metrics.Recorder
	log      logger.Logger
	clock    func() time.Time
}

// Option configures a Runner
type Option func(*Runner)

// WithRecorder sends stage metrics to rec in addition to the textfile export.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithClock replaces time.Now for run timestamps
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// New returns a Runner for settings.
func New(settings *conf.Settings, opts ...Option) (*Runner, error) {
	r := &Runner{
		settings: settings,
		loader:   loader.New(loader.WithDateLayouts(settings.Input.DateFormats)),
		recorder: metrics.NoOpRecorder{},
		log:      GetLogger(),
		clock:    time.Now,
	}

	if settings.Output.Metrics.Enabled {
		m, err := observability.NewMetrics()
		if err != nil {
			return nil, errors.New(err).
				Component("pipeline").
				Category(errors.CategoryConfiguration).
				Build()
		}
		r.metrics = m
		r.recorder = m.Pipeline
	}

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes a complete run with settings.
func Run(settings *conf.Settings, paths Paths) (*Result, error) {
	r, err := New(settings)
	if err != nil {
		return nil, err
	}
	return r.Run(paths)
}

// Run loads, cleans and merges the inputs and writes the merged table to paths.Output.
// The CSV is staged next to paths.Output and renamed into place only after the enabled
// side outputs succeeded; on any failure paths.Output is left as it was. The metrics
// textfile is written last, also when the run fails.
func (r *Runner) Run(paths Paths) (res *Result, err error) {
	res = &Result{RunID: uuid.NewString(), StartedAt: r.clock()}
	log := r.log.WithContext(logger.WithTraceID(context.Background(), res.RunID))

	defer func() {
		if merr := r.writeMetrics(); merr != nil && err == nil {
			err = merr
		}
	}()

	log.Info("run started",
		logger.String("light_levels", paths.LightLevels),
		logger.String("collisions", paths.Collisions),
		logger.String("flight_calls", paths.FlightCalls),
		logger.String("output", paths.Output))
	checkMemory(log, paths.LightLevels, paths.Collisions, paths.FlightCalls)

	in, err := r.prepare(paths)
	if err != nil {
		return nil, err
	}
	res.Cleaning = in.stats
	res.Light = in.light

	err = r.stage(metrics.StageMerge, func() (err error) {
		res.Merged, err = merger.Merge(in.light, in.collisions, in.flightCalls)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.recorder.RecordMerged(res.Merged.Len())

	var csvFile *output.PendingFile
	err = r.stage(metrics.StageWrite, func() (err error) {
		csvFile, err = output.StageCSV(res.Merged, paths.Output, output.Options{
			DateLayout: r.settings.Output.DateFormat,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	defer csvFile.Discard()
	res.FinishedAt = r.clock()

	if err := r.stage(metrics.StageExport, func() error { return r.export(res, paths) }); err != nil {
		return nil, err
	}

	if err := r.stage(metrics.StageCommit, csvFile.Commit); err != nil {
		return nil, err
	}
	log.Info("csv written", logger.String("path", paths.Output))

	log.Info("run completed",
		logger.Int("rows", res.Merged.Len()),
		logger.Duration("duration", res.FinishedAt.Sub(res.StartedAt)))
	return res, nil
}

// stage times fn and records its failure category
func (r *Runner) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	seconds := time.Since(start).Seconds()
	r.recorder.RecordStageDuration(name, seconds)
	if err != nil {
		r.recorder.RecordError(name, string(categoryOf(err)))
		r.log.Debug("stage failed", logger.String("stage", name), logger.Error(err))
		return err
	}
	r.log.Debug("stage finished", logger.String("stage", name), logger.Float64("seconds", seconds))
	return nil
}

func categoryOf(err error) errors.ErrorCategory {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return errors.CategoryGeneric
}

func (r *Runner) writeMetrics() error {
	if r.metrics == nil {
		return nil
	}
	path := r.settings.Output.Metrics.Path
	if err := r.metrics.WriteTextfile(path); err != nil {
		return errors.IOError(err, path)
	}
	return nil
}
