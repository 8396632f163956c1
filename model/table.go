package model

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Cell is a single table cell. Text is nil when no characters fall inside
// the cell, and points at the populated string otherwise, so callers can
// distinguish an empty cell from one containing an empty string.
type Cell struct {
	BBox BBox
	Text *string
}

// Table is a detected table: a row-major grid of cells covering BBox.
type Table struct {
	BBox BBox
	// Rows holds the cells in row-major order, top-to-bottom then
	// left-to-right.
	Rows [][]Cell
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of columns in the widest row.
func (t *Table) ColCount() int {
	max := 0
	for _, row := range t.Rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Accuracy returns the fraction of cells with non-nil text, in [0, 1].
// It is a quality signal, not a correctness gate. A table with no cells
// reports 0.
func (t *Table) Accuracy() float64 {
	total := 0
	filled := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			total++
			if cell.Text != nil {
				filled++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(filled) / float64(total)
}

// TextGrid returns the cell text as a row-major grid of strings. Empty cells
// yield empty strings.
func (t *Table) TextGrid() [][]string {
	grid := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		grid[i] = make([]string, len(row))
		for j, cell := range row {
			if cell.Text != nil {
				grid[i][j] = *cell.Text
			}
		}
	}
	return grid
}

// String renders the table as aligned columns, useful for debugging.
// Column widths use display width, so wide (CJK) cell text lines up.
func (t *Table) String() string {
	grid := t.TextGrid()
	widths := make([]int, t.ColCount())
	for _, row := range grid {
		for j, s := range row {
			if w := runewidth.StringWidth(s); w > widths[j] {
				widths[j] = w
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		for j, s := range row {
			if j > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(s)
			if j < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[j]-runewidth.StringWidth(s)))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
