package merger

import (
	"slices"

	"github.com/tphakala/birdstrike/internal/dataset"
)

// join is an inner equi-join on string keys computed per row
type join struct {
	name      string
	left      *dataset.Table
	right     *dataset.Table
	leftKey   func(r int) string
	rightKey  func(r int) string
	rightDrop int // right column merged into the left key column, or -1
}

func (j *join) run() *dataset.Table {
	rightCols := make([]int, 0, len(j.right.Columns))
	for c := range j.right.Columns {
		if c != j.rightDrop {
			rightCols = append(rightCols, c)
		}
	}

	out := dataset.New(j.name, j.columns(rightCols))

	matches := make(map[string][]int, j.right.Len())
	for r := range j.right.Rows {
		k := j.rightKey(r)
		matches[k] = append(matches[k], r)
	}

	width := len(j.left.Columns) + len(rightCols)
	for l := range j.left.Rows {
		for _, r := range matches[j.leftKey(l)] {
			row := make(dataset.Row, 0, width)
			for c := range j.left.Columns {
				row = append(row, j.left.Cell(l, c))
			}
			for _, c := range rightCols {
				row = append(row, j.right.Cell(r, c))
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// columns names the output: left columns then the kept right columns, with names
// present on both sides suffixed.
func (j *join) columns(rightCols []int) []string {
	rightNames := make([]string, len(rightCols))
	for i, c := range rightCols {
		rightNames[i] = j.right.Columns[c]
	}

	cols := make([]string, 0, len(j.left.Columns)+len(rightNames))
	for _, name := range j.left.Columns {
		if slices.Contains(rightNames, name) {
			name += LeftSuffix
		}
		cols = append(cols, name)
	}
	for _, name := range rightNames {
		if slices.Contains(j.left.Columns, name) {
			name += RightSuffix
		}
		cols = append(cols, name)
	}
	return cols
}
