package tables

import (
	"sort"

	"github.com/tsawler/plumb/model"
	"github.com/tsawler/plumb/text"
)

// regionGap is the vertical whitespace that separates independent text
// regions for the Stream strategy, so stacked tables are detected apart.
const regionGap = 50.0

// Objects is the page material table detection consumes.
type Objects struct {
	Chars  []model.Char
	Lines  []model.Line
	Rects  []model.Rect
	Curves []model.Curve
}

// FindTables detects tables among the given objects. Tables are returned
// top-to-bottom, left-to-right, with cell text populated.
func FindTables(obj Objects, s Settings) []*model.Table {
	s = s.withDefaults()

	var edges []edge
	switch s.Strategy {
	case Stream:
		words := text.ExtractWords(obj.Chars, text.WordOptions{
			XTolerance: s.TextTolerance,
			YTolerance: s.TextTolerance,
		})
		for _, region := range partitionWords(words) {
			edges = append(edges, textEdges(region, s)...)
		}
	case Explicit:
		edges = explicitEdges(s, contentBBox(obj))
	default:
		edges = filterShort(objectEdges(obj.Lines, obj.Rects, obj.Curves), s.EdgeMinLength)
	}
	if s.Strategy != Explicit &&
		len(s.ExplicitVerticalLines)+len(s.ExplicitHorizontalLines) > 0 {
		edges = append(edges, explicitEdges(s, contentBBox(obj))...)
	}
	if len(edges) == 0 {
		return nil
	}

	edges = snapEdges(edges, s.SnapTolerance)
	edges = joinEdges(edges, s.JoinTolerance)

	cells := cellsFromIntersections(
		intersections(edges, s.IntersectionTolerance), s.MinCellSize)
	if len(cells) == 0 {
		return nil
	}

	var out []*model.Table
	for _, group := range groupCells(cells) {
		t := buildTable(group, s.SnapTolerance)
		populateText(t, obj.Chars, s)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BBox.Top != out[j].BBox.Top {
			return out[i].BBox.Top < out[j].BBox.Top
		}
		return out[i].BBox.X0 < out[j].BBox.X0
	})
	return out
}

// populateText fills each cell with the text of the chars whose centers fall
// inside it. Cells containing no chars keep nil text.
func populateText(t *model.Table, chars []model.Char, s Settings) {
	for i := range t.Rows {
		for j := range t.Rows[i] {
			cell := &t.Rows[i][j]
			var inside []model.Char
			for _, c := range chars {
				if cell.BBox.ContainsPoint(c.BBox.Center()) {
					inside = append(inside, c)
				}
			}
			if len(inside) == 0 {
				continue
			}
			txt := text.ExtractText(inside, text.TextOptions{
				XTolerance: s.TextTolerance,
				YTolerance: s.TextTolerance,
			})
			cell.Text = &txt
		}
	}
}

// partitionWords splits words into vertically separated regions.
func partitionWords(words []model.Word) [][]model.Word {
	if len(words) == 0 {
		return nil
	}
	sorted := append([]model.Word(nil), words...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BBox.Top < sorted[j].BBox.Top
	})

	var regions [][]model.Word
	cur := []model.Word{sorted[0]}
	bottom := sorted[0].BBox.Bottom
	for _, w := range sorted[1:] {
		if w.BBox.Top-bottom > regionGap {
			regions = append(regions, cur)
			cur = nil
		}
		cur = append(cur, w)
		if w.BBox.Bottom > bottom {
			bottom = w.BBox.Bottom
		}
	}
	regions = append(regions, cur)
	return regions
}

func contentBBox(obj Objects) model.BBox {
	var boxes []model.BBox
	for _, c := range obj.Chars {
		boxes = append(boxes, c.BBox)
	}
	for _, l := range obj.Lines {
		boxes = append(boxes, l.BBox)
	}
	for _, r := range obj.Rects {
		boxes = append(boxes, r.BBox)
	}
	for _, c := range obj.Curves {
		boxes = append(boxes, c.BBox)
	}
	if len(boxes) == 0 {
		return model.BBox{}
	}
	return model.UnionAll(boxes)
}
