package pipeline

import (
	"github.com/tphakala/birdstrike/internal/cleaner"
	"github.com/tphakala/birdstrike/internal/dataset"
	"github.com/tphakala/birdstrike/internal/normalize"
	"github.com/tphakala/birdstrike/internal/observability/metrics"
)

// prepared holds the cleaned inputs of the merge
type prepared struct {
	light       *dataset.Table
	collisions  *dataset.Table
	flightCalls *dataset.Table
	stats       []cleaner.Stats
}

// prepare runs the load, normalize and clean stages
func (r *Runner) prepare(paths Paths) (*prepared, error) {
	var light, collisions, calls *dataset.Table

	err := r.stage(metrics.StageLoad, func() (err error) {
		if light, err = r.loader.LoadFile(LightLevelsTable, paths.LightLevels); err != nil {
			return err
		}
		if collisions, err = r.loader.LoadFile(CollisionsTable, paths.Collisions); err != nil {
			return err
		}
		calls, err = r.loader.LoadFile(FlightCallsTable, paths.FlightCalls)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(metrics.StageNormalize, func() (err error) {
		calls, err = normalize.RenameFlightCalls(calls)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &prepared{}
	err = r.stage(metrics.StageClean, func() error {
		var lightStats, collisionStats, callStats cleaner.Stats
		var err error
		if out.light, lightStats, err = cleaner.CleanLightLevels(light); err != nil {
			return err
		}
		if out.collisions, collisionStats, err = cleaner.CleanCollisions(collisions); err != nil {
			return err
		}
		if out.flightCalls, callStats, err = cleaner.CleanFlightCalls(calls); err != nil {
			return err
		}
		out.stats = []cleaner.Stats{lightStats, collisionStats, callStats}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, s := range out.stats {
		r.recorder.RecordLoaded(s.Table, s.RowsIn)
		r.recorder.RecordDropped(s.Table, metrics.ReasonMissing, s.DroppedMissing)
		r.recorder.RecordDropped(s.Table, metrics.ReasonDuplicate, s.DroppedDuplicate)
	}
	return out, nil
}
