package pipeline

import (
	"github.com/tphakala/birdstrike/internal/datastore"
	"github.com/tphakala/birdstrike/internal/errors"
	"github.com/tphakala/birdstrike/internal/output"
	"github.com/tphakala/birdstrike/internal/report"
	"github.com/tphakala/birdstrike/internal/suncalc"
)

// export writes the enabled side outputs of a completed run
func (r *Runner) export(res *Result, paths Paths) error {
	out := r.settings.Output

	if out.XLSX.Enabled {
		if err := output.WriteXLSX(res.Merged, out.XLSX.Path); err != nil {
			return err
		}
	}

	if out.Report.Enabled {
		if err := r.writeReport(res, out.Report.Path); err != nil {
			return err
		}
	}

	if out.Database.Enabled {
		run := &datastore.Run{
			ID:              res.RunID,
			StartedAt:       res.StartedAt,
			FinishedAt:      res.FinishedAt,
			LightLevelsPath: paths.LightLevels,
			CollisionsPath:  paths.Collisions,
			FlightCallsPath: paths.FlightCalls,
			OutputPath:      paths.Output,
			LightLevelRows:  res.Cleaning[0].RowsOut,
			CollisionRows:   res.Cleaning[1].RowsOut,
			FlightCallRows:  res.Cleaning[2].RowsOut,
		}
		if err := datastore.Export(&out.Database, run, res.Merged); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) writeReport(res *Result, path string) error {
	sun, err := r.sunCalc()
	if err != nil {
		return err
	}

	rep, err := report.Build(report.Input{
		RunID:       res.RunID,
		GeneratedAt: res.FinishedAt,
		Light:       res.Light,
		Merged:      res.Merged,
		Cleaning:    res.Cleaning,
		Sun:         sun,
	})
	if err != nil {
		return err
	}
	return rep.Write(path)
}

// sunCalc returns nil when no observer location is configured
func (r *Runner) sunCalc() (*suncalc.SunCalc, error) {
	loc := r.settings.Location
	if !loc.Enabled {
		return nil, nil
	}
	tz, err := loc.TimeLocation()
	if err != nil {
		return nil, errors.New(err).
			Component("pipeline").
			Category(errors.CategoryConfiguration).
			Context("timezone", loc.Timezone).
			Build()
	}
	return suncalc.NewSunCalc(loc.Latitude, loc.Longitude, tz), nil
}
