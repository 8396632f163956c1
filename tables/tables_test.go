package tables

import (
	"testing"

	"github.com/tsawler/plumb/model"
)

// cellRects builds one stroked Rect per cell of a rows×cols grid whose
// top-left corner is at (x, y).
func cellRects(x, y, cellW, cellH float64, rows, cols int) []model.Rect {
	var rects []model.Rect
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rects = append(rects, model.Rect{
				BBox: model.BBox{
					X0:     x + float64(c)*cellW,
					Top:    y + float64(r)*cellH,
					X1:     x + float64(c+1)*cellW,
					Bottom: y + float64(r+1)*cellH,
				},
				Stroke: true,
			})
		}
	}
	return rects
}

// cellChars puts one single-letter char at the center of every cell.
func cellChars(x, y, cellW, cellH float64, rows, cols int) []model.Char {
	var chars []model.Char
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cx := x + float64(c)*cellW + cellW/2
			cy := y + float64(r)*cellH + cellH/2
			chars = append(chars, model.Char{
				Text:      string(rune('a' + (r*cols+c)%26)),
				BBox:      model.BBox{X0: cx - 3, Top: cy - 4, X1: cx + 3, Bottom: cy + 4},
				Upright:   true,
				Direction: model.DirLTR,
			})
		}
	}
	return chars
}

func TestLatticeGrid(t *testing.T) {
	obj := Objects{
		Rects: cellRects(72, 100, 80, 20, 5, 4),
		Chars: cellChars(72, 100, 80, 20, 5, 4),
	}
	found := FindTables(obj, Settings{})

	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	tab := found[0]
	if tab.RowCount() != 5 || tab.ColCount() != 4 {
		t.Fatalf("expected 5x4, got %dx%d", tab.RowCount(), tab.ColCount())
	}
	if acc := tab.Accuracy(); acc != 1.0 {
		t.Errorf("accuracy: got %v, want 1.0", acc)
	}
	want := model.BBox{X0: 72, Top: 100, X1: 72 + 4*80, Bottom: 100 + 5*20}
	if tab.BBox != want {
		t.Errorf("table bbox: got %+v, want %+v", tab.BBox, want)
	}
	grid := tab.TextGrid()
	if grid[0][0] != "a" || grid[0][1] != "b" || grid[1][0] != "e" {
		t.Errorf("cell text: got %v", grid[0])
	}
}

func TestLatticeIgnoresShortEdges(t *testing.T) {
	obj := Objects{
		Lines: []model.Line{
			{P0: model.Point{X: 10, Y: 10}, P1: model.Point{X: 12, Y: 10}},
		},
	}
	if found := FindTables(obj, Settings{}); found != nil {
		t.Errorf("stray tick marks should not form tables, got %d", len(found))
	}
}

func TestStreamGrid(t *testing.T) {
	obj := Objects{Chars: cellChars(72, 100, 80, 20, 5, 4)}
	found := FindTables(obj, Settings{Strategy: Stream})

	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	tab := found[0]
	if tab.RowCount() != 5 || tab.ColCount() != 4 {
		t.Fatalf("expected 5x4, got %dx%d", tab.RowCount(), tab.ColCount())
	}
	if acc := tab.Accuracy(); acc != 1.0 {
		t.Errorf("accuracy: got %v, want 1.0", acc)
	}
}

func TestStreamRowsUseTextTolerance(t *testing.T) {
	// Odd columns sit 4pt lower than even ones within each visual row.
	// TextTolerance 6 must cluster the jittered tops into one row
	// boundary per row; grouping them with the snap tolerance (3) would
	// double the row count.
	var chars []model.Char
	for r := 0; r < 4; r++ {
		for c := 0; c < 3; c++ {
			cx := 72 + float64(c)*80 + 40
			top := 100 + float64(r)*30
			if c%2 == 1 {
				top += 4
			}
			chars = append(chars, model.Char{
				Text:      string(rune('a' + (r*3+c)%26)),
				BBox:      model.BBox{X0: cx - 3, Top: top, X1: cx + 3, Bottom: top + 8},
				Upright:   true,
				Direction: model.DirLTR,
			})
		}
	}

	found := FindTables(Objects{Chars: chars}, Settings{Strategy: Stream, TextTolerance: 6})
	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	tab := found[0]
	if tab.RowCount() != 4 || tab.ColCount() != 3 {
		t.Fatalf("expected 4x3, got %dx%d", tab.RowCount(), tab.ColCount())
	}
}

func TestStreamMatchesLattice(t *testing.T) {
	chars := cellChars(72, 100, 80, 20, 4, 3)

	lattice := FindTables(Objects{
		Rects: cellRects(72, 100, 80, 20, 4, 3),
		Chars: chars,
	}, Settings{})
	stream := FindTables(Objects{Chars: chars}, Settings{Strategy: Stream})

	if len(lattice) != 1 || len(stream) != 1 {
		t.Fatalf("expected 1 table each, got %d and %d", len(lattice), len(stream))
	}
	if lattice[0].RowCount() != stream[0].RowCount() ||
		lattice[0].ColCount() != stream[0].ColCount() {
		t.Errorf("lattice %dx%d, stream %dx%d",
			lattice[0].RowCount(), lattice[0].ColCount(),
			stream[0].RowCount(), stream[0].ColCount())
	}
}

func TestExplicitBoundaries(t *testing.T) {
	obj := Objects{Chars: cellChars(0, 0, 50, 20, 2, 2)}
	found := FindTables(obj, Settings{
		Strategy:                Explicit,
		ExplicitVerticalLines:   []float64{0, 50, 100},
		ExplicitHorizontalLines: []float64{0, 20, 40},
	})

	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	tab := found[0]
	if tab.RowCount() != 2 || tab.ColCount() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", tab.RowCount(), tab.ColCount())
	}
	grid := tab.TextGrid()
	if grid[1][1] != "d" {
		t.Errorf("bottom-right cell: got %q, want d", grid[1][1])
	}
}

func TestSnapJoinsBrokenRules(t *testing.T) {
	// A 1x1 cell drawn as four slightly misaligned segments, with one
	// horizontal rule split into two pieces separated by a 2pt gap.
	obj := Objects{
		Lines: []model.Line{
			{P0: model.Point{X: 0, Y: 0.5}, P1: model.Point{X: 48, Y: 0.5}},
			{P0: model.Point{X: 50, Y: 0}, P1: model.Point{X: 100, Y: 0}},
			{P0: model.Point{X: 0, Y: 40}, P1: model.Point{X: 100, Y: 40.5}},
			{P0: model.Point{X: 0.5, Y: 0}, P1: model.Point{X: 0, Y: 40}},
			{P0: model.Point{X: 100, Y: 0}, P1: model.Point{X: 100, Y: 40}},
		},
	}
	found := FindTables(obj, Settings{})

	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	if found[0].RowCount() != 1 || found[0].ColCount() != 1 {
		t.Errorf("expected a single cell, got %dx%d",
			found[0].RowCount(), found[0].ColCount())
	}
}

func TestTwoSeparateGrids(t *testing.T) {
	obj := Objects{
		Rects: append(cellRects(72, 100, 60, 20, 2, 2),
			cellRects(72, 400, 60, 20, 3, 3)...),
	}
	found := FindTables(obj, Settings{})

	if len(found) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(found))
	}
	// Ordered top to bottom.
	if found[0].RowCount() != 2 || found[1].RowCount() != 3 {
		t.Errorf("row counts: got %d and %d, want 2 and 3",
			found[0].RowCount(), found[1].RowCount())
	}
	// No chars supplied: every cell is empty.
	if found[0].Accuracy() != 0 {
		t.Errorf("accuracy with no text: got %v, want 0", found[0].Accuracy())
	}
}

func TestEmptyPage(t *testing.T) {
	if found := FindTables(Objects{}, Settings{}); found != nil {
		t.Errorf("expected no tables, got %d", len(found))
	}
}

func TestClusterValues(t *testing.T) {
	got := clusterValues([]float64{10, 10.5, 11, 30, 30.2, 60}, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 clusters, got %+v", got)
	}
	if got[0].count != 3 || got[1].count != 2 || got[2].count != 1 {
		t.Errorf("cluster counts: %+v", got)
	}
	if got[2].value != 60 {
		t.Errorf("singleton cluster value: got %v", got[2].value)
	}
}
