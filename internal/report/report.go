// Package report builds the analyst summary written next to the merged CSV.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/montanaflynn/stats"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/birdstrike/internal/cleaner"
	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/logger"
	"github.com/tphakala/birdstrike/internal/output"
	"github.com/tphakala/birdstrike/internal/suncalc"
	"github.com/tphakala/birdstrike/internal/taxonomy"
)

const component = "report"

// Report is the YAML document
type Report struct {
	RunID           string          `yaml:"run_id"`
	GeneratedAt     time.Time       `yaml:"generated_at"`
	Cleaning        []CleaningStats `yaml:"cleaning"`
	MergedRows      int             `yaml:"merged_rows"`
	DistinctSpecies int             `yaml:"distinct_species"`
	Dates           []DateSummary   `yaml:"dates"`
	// CollisionsPerDate summarizes the per-date counts; absent for an empty table
	CollisionsPerDate *Summary `yaml:"collisions_per_date,omitempty"`
	// LightCorrelation is Pearson's r between numeric light scores and per-date counts
	LightCorrelation *float64 `yaml:"light_collision_correlation,omitempty"`
}

// CleaningStats mirrors cleaner.Stats
type CleaningStats struct {
	Table            string `yaml:"table"`
	RowsIn           int    `yaml:"rows_in"`
	DroppedMissing   int    `yaml:"dropped_missing"`
	DroppedDuplicate int    `yaml:"dropped_duplicate"`
	RowsOut          int    `yaml:"rows_out"`
}

// DateSummary is one collision date
type DateSummary struct {
	Date       string    `yaml:"date"`
	Collisions int       `yaml:"collisions"`
	LightScore string    `yaml:"light_score,omitempty"`
	Sun        *SunTimes `yaml:"sun,omitempty"`
}

// SunTimes are rendered in the observer's zone
type SunTimes struct {
	Sunrise string `yaml:"sunrise"`
	Sunset  string `yaml:"sunset"`
	Night   string `yaml:"night"`
}

// Summary holds descriptive statistics of a series
type Summary struct {
	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	StdDev float64 `yaml:"stddev"`
	Max    float64 `yaml:"max"`
}

// Input is what a report is built from
type Input struct {
	RunID       string
	GeneratedAt time.Time
	Light       *dataset.Table // cleaned light levels: Date, then the score
	Merged      *dataset.Table
	Cleaning    []cleaner.Stats
	Sun         *suncalc.SunCalc // nil when no observer location is configured
}

// Build computes the report. The merged table must have a Date column.
func Build(in Input) (*Report, error) {
	dateCol, err := in.Merged.Column(component, "Date")
	if err != nil {
		return nil, err
	}

	r := &Report{
		RunID:       in.RunID,
		GeneratedAt: in.GeneratedAt,
		MergedRows:  in.Merged.Len(),
	}
	for _, s := range in.Cleaning {
		r.Cleaning = append(r.Cleaning, CleaningStats(s))
	}
	r.DistinctSpecies = distinctSpecies(in.Merged)

	dates, counts := collisionsPerDate(in.Merged, dateCol)
	scores := lightScores(in.Light)

	var countSeries, lightSeries, pairedCounts stats.Float64Data
	for _, d := range dates {
		ds := DateSummary{Date: d.String(), Collisions: counts[d]}
		countSeries = append(countSeries, float64(counts[d]))

		if v, ok := scores[d]; ok {
			ds.LightScore = v.Text()
			if f, ok := v.Float(); ok {
				lightSeries = append(lightSeries, f)
				pairedCounts = append(pairedCounts, float64(counts[d]))
			}
		}
		if in.Sun != nil {
			ds.Sun = sunTimes(in.Sun, d)
		}
		r.Dates = append(r.Dates, ds)
	}

	if len(countSeries) > 0 {
		summary, err := summarize(countSeries)
		if err != nil {
			return nil, err
		}
		r.CollisionsPerDate = summary
	}

	if len(lightSeries) >= 2 {
		corr, err := stats.Pearson(lightSeries, pairedCounts)
		if err == nil {
			r.LightCorrelation = &corr
		} else {
			GetLogger().Debug("correlation skipped", logger.Error(err))
		}
	}

	return r, nil
}

// Encode writes the report as YAML
func (r *Report) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// Write atomically writes the report to path
func (r *Report) Write(path string) error {
	if err := output.WriteFile(path, r.Encode); err != nil {
		return err
	}
	GetLogger().Info("report written",
		logger.String("path", path),
		logger.Int("dates", len(r.Dates)))
	return nil
}

// collisionsPerDate counts merged rows per date, in first-seen order. Null dates are skipped.
func collisionsPerDate(t *dataset.Table, dateCol int) ([]dataset.Date, map[dataset.Date]int) {
	var dates []dataset.Date
	counts := make(map[dataset.Date]int)
	for r := range t.Rows {
		d, ok := t.Cell(r, dateCol).Date()
		if !ok {
			continue
		}
		if _, seen := counts[d]; !seen {
			dates = append(dates, d)
		}
		counts[d]++
	}
	return dates, counts
}

func lightScores(t *dataset.Table) map[dataset.Date]dataset.Value {
	scores := make(map[dataset.Date]dataset.Value)
	if t == nil || len(t.Columns) < 2 {
		return scores
	}
	dateCol := t.ColumnIndex("Date")
	if dateCol < 0 {
		return scores
	}
	scoreCol := 1
	if dateCol == 1 {
		scoreCol = 0
	}
	for r := range t.Rows {
		if d, ok := t.Cell(r, dateCol).Date(); ok {
			scores[d] = t.Cell(r, scoreCol)
		}
	}
	return scores
}

func distinctSpecies(t *dataset.Table) int {
	genusCol := t.ColumnIndex("Genus")
	speciesCol := t.ColumnIndex("Species")
	if genusCol < 0 || speciesCol < 0 {
		return 0
	}
	seen := make(map[string]struct{})
	for r := range t.Rows {
		key := taxonomy.SpeciesKey(t.Cell(r, genusCol).Text(), t.Cell(r, speciesCol).Text())
		seen[key] = struct{}{}
	}
	return len(seen)
}

func summarize(data stats.Float64Data) (*Summary, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate mean: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate median: %w", err)
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate standard deviation: %w", err)
	}
	maxVal, err := stats.Max(data)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate max: %w", err)
	}
	return &Summary{Mean: mean, Median: median, StdDev: stdDev, Max: maxVal}, nil
}

func sunTimes(sc *suncalc.SunCalc, d dataset.Date) *SunTimes {
	events, err := sc.GetSunEventTimes(d)
	if err != nil {
		GetLogger().Debug("no sun times for date",
			logger.String("date", d.String()),
			logger.Error(err))
		return nil
	}
	return &SunTimes{
		Sunrise: events.Sunrise.Format(time.RFC3339),
		Sunset:  events.Sunset.Format(time.RFC3339),
		Night:   events.Night.Round(time.Minute).String(),
	}
}
