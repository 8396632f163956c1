package tables

import (
	"sort"

	"github.com/tsawler/plumb/model"
)

type point struct{ x, y float64 }

// crossing records which edges pass through an intersection point, so cell
// detection can verify that two corners are joined by a continuous rule.
type crossing struct {
	v map[int]bool
	h map[int]bool
}

// intersections finds every point where a vertical edge crosses (or nearly
// crosses, within tol) a horizontal one. Edges must be snapped first so
// coinciding corners produce identical coordinates.
func intersections(edges []edge, tol float64) map[point]*crossing {
	out := make(map[point]*crossing)
	for vi, v := range edges {
		if !v.vertical {
			continue
		}
		for hi, h := range edges {
			if h.vertical {
				continue
			}
			if v.x0 < h.x0-tol || v.x0 > h.x1+tol {
				continue
			}
			if h.top < v.top-tol || h.top > v.bottom+tol {
				continue
			}
			p := point{x: v.x0, y: h.top}
			c := out[p]
			if c == nil {
				c = &crossing{v: make(map[int]bool), h: make(map[int]bool)}
				out[p] = c
			}
			c.v[vi] = true
			c.h[hi] = true
		}
	}
	return out
}

func shareEdge(a, b map[int]bool) bool {
	for i := range a {
		if b[i] {
			return true
		}
	}
	return false
}

// cellsFromIntersections finds, for each intersection taken as a top-left
// corner, the smallest rectangle whose other three corners exist and whose
// sides all run along continuous edges.
func cellsFromIntersections(xings map[point]*crossing, minSize float64) []model.BBox {
	pts := make([]point, 0, len(xings))
	for p := range xings {
		pts = append(pts, p)
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].y != pts[j].y {
			return pts[i].y < pts[j].y
		}
		return pts[i].x < pts[j].x
	})

	xs := make([]float64, 0, len(pts))
	ys := make([]float64, 0, len(pts))
	seenX := make(map[float64]bool)
	seenY := make(map[float64]bool)
	for _, p := range pts {
		if !seenX[p.x] {
			seenX[p.x] = true
			xs = append(xs, p.x)
		}
		if !seenY[p.y] {
			seenY[p.y] = true
			ys = append(ys, p.y)
		}
	}
	sort.Float64s(xs)
	sort.Float64s(ys)

	var cells []model.BBox
	for _, p := range pts {
		c := xings[p]
		cell, ok := smallestCell(p, c, xings, xs, ys)
		if !ok {
			continue
		}
		if cell.Width() >= minSize && cell.Height() >= minSize {
			cells = append(cells, cell)
		}
	}
	return cells
}

func smallestCell(p point, c *crossing, xings map[point]*crossing, xs, ys []float64) (model.BBox, bool) {
	for _, x2 := range xs {
		if x2 <= p.x {
			continue
		}
		p2c := xings[point{x: x2, y: p.y}]
		if p2c == nil || !shareEdge(c.h, p2c.h) {
			continue
		}
		for _, y2 := range ys {
			if y2 <= p.y {
				continue
			}
			p3c := xings[point{x: p.x, y: y2}]
			if p3c == nil || !shareEdge(c.v, p3c.v) {
				continue
			}
			p4c := xings[point{x: x2, y: y2}]
			if p4c == nil {
				continue
			}
			if shareEdge(p2c.v, p4c.v) && shareEdge(p3c.h, p4c.h) {
				return model.BBox{X0: p.x, Top: p.y, X1: x2, Bottom: y2}, true
			}
		}
	}
	return model.BBox{}, false
}

// groupCells partitions cells into connected components, where two cells
// connect by sharing a corner point.
func groupCells(cells []model.BBox) [][]model.BBox {
	byCorner := make(map[point][]int)
	for i, c := range cells {
		for _, p := range corners(c) {
			byCorner[p] = append(byCorner[p], i)
		}
	}

	visited := make([]bool, len(cells))
	var groups [][]model.BBox
	for i := range cells {
		if visited[i] {
			continue
		}
		var group []model.BBox
		queue := []int{i}
		visited[i] = true
		for len(queue) > 0 {
			j := queue[0]
			queue = queue[1:]
			group = append(group, cells[j])
			for _, p := range corners(cells[j]) {
				for _, k := range byCorner[p] {
					if !visited[k] {
						visited[k] = true
						queue = append(queue, k)
					}
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func corners(b model.BBox) [4]point {
	return [4]point{
		{b.X0, b.Top}, {b.X1, b.Top},
		{b.X0, b.Bottom}, {b.X1, b.Bottom},
	}
}

// buildTable orders a connected group of cells into a row-major grid.
func buildTable(cells []model.BBox, tol float64) *model.Table {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Top != cells[j].Top {
			return cells[i].Top < cells[j].Top
		}
		return cells[i].X0 < cells[j].X0
	})

	t := &model.Table{BBox: model.UnionAll(cells)}
	var row []model.Cell
	rowTop := cells[0].Top
	for _, c := range cells {
		if c.Top-rowTop > tol {
			t.Rows = append(t.Rows, row)
			row = nil
			rowTop = c.Top
		}
		row = append(row, model.Cell{BBox: c})
	}
	t.Rows = append(t.Rows, row)
	return t
}
