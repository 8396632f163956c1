package text

import (
	"sort"

	"github.com/tsawler/plumb/model"
)

// GroupIntoLines clusters words into text lines by their top coordinate.
// Words whose tops lie within yTolerance of the previous word in the sorted
// order join its line. Words within each line are ordered left to right,
// lines top to bottom.
func GroupIntoLines(words []model.Word, yTolerance float64) []model.TextLine {
	if len(words) == 0 {
		return nil
	}
	if yTolerance == 0 {
		yTolerance = DefaultWordOptions().YTolerance
	}

	sorted := append([]model.Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Top < sorted[j].BBox.Top
	})

	var lines []model.TextLine
	var cur []model.Word
	prevTop := sorted[0].BBox.Top

	flush := func() {
		if len(cur) == 0 {
			return
		}
		sort.SliceStable(cur, func(i, j int) bool {
			return cur[i].BBox.X0 < cur[j].BBox.X0
		})
		boxes := make([]model.BBox, len(cur))
		for i, w := range cur {
			boxes[i] = w.BBox
		}
		lines = append(lines, model.TextLine{Words: cur, BBox: model.UnionAll(boxes)})
		cur = nil
	}

	for _, w := range sorted {
		if w.BBox.Top-prevTop > yTolerance {
			flush()
		}
		prevTop = w.BBox.Top
		cur = append(cur, w)
	}
	flush()
	return lines
}
