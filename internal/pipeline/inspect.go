package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/tphakala/birdstrike/internal/cleaner"
)

// TableSummary describes one cleaned input table
type TableSummary struct {
	Name    string
	Columns []string
	Stats   cleaner.Stats
}

// Inspection is the result of a dry run over the inputs
type Inspection struct {
	Tables []TableSummary
}

// Inspect runs the load, normalize and clean stages and reports what they did.
// Nothing is written; paths.Output is ignored.
func (r *Runner) Inspect(paths Paths) (*Inspection, error) {
	in, err := r.prepare(paths)
	if err != nil {
		return nil, err
	}

	tables := []struct {
		columns []string
		stats   cleaner.Stats
	}{
		{in.light.Columns, in.stats[0]},
		{in.collisions.Columns, in.stats[1]},
		{in.flightCalls.Columns, in.stats[2]},
	}

	insp := &Inspection{}
	for _, t := range tables {
		insp.Tables = append(insp.Tables, TableSummary{
			Name:    t.stats.Table,
			Columns: t.columns,
			Stats:   t.stats,
		})
	}
	return insp, nil
}

// Print writes a plain-text summary, one block per table.
func (insp *Inspection) Print(w io.Writer) error {
	for _, t := range insp.Tables {
		_, err := fmt.Fprintf(w,
			"%s\n  columns:           %s\n  rows in:           %d\n  dropped missing:   %d\n  dropped duplicate: %d\n  rows out:          %d\n",
			t.Name, strings.Join(t.Columns, ", "),
			t.Stats.RowsIn, t.Stats.DroppedMissing, t.Stats.DroppedDuplicate, t.Stats.RowsOut)
		if err != nil {
			return err
		}
	}
	return nil
}
