package tables

import (
	"math"
	"sort"

	"github.com/tsawler/plumb/model"
)

// axisTolerance classifies a Line or thin Curve as horizontal or vertical.
const axisTolerance = 1.0

// edge is a candidate ruling segment. A vertical edge has x0 == x1, a
// horizontal one top == bottom, after snapping.
type edge struct {
	x0, top, x1, bottom float64
	vertical            bool
}

func (e edge) length() float64 {
	if e.vertical {
		return e.bottom - e.top
	}
	return e.x1 - e.x0
}

func horizontalEdge(x0, x1, y float64) edge {
	return edge{x0: math.Min(x0, x1), x1: math.Max(x0, x1), top: y, bottom: y}
}

func verticalEdge(x, top, bottom float64) edge {
	return edge{x0: x, x1: x, top: math.Min(top, bottom), bottom: math.Max(top, bottom), vertical: true}
}

// objectEdges derives candidate edges from visible geometry: every
// axis-aligned Line, the four sides of every Rect, and any Curve thin enough
// to act as a ruling line.
func objectEdges(lines []model.Line, rects []model.Rect, curves []model.Curve) []edge {
	var edges []edge
	for _, l := range lines {
		switch {
		case l.IsHorizontal(axisTolerance):
			edges = append(edges, horizontalEdge(l.P0.X, l.P1.X, (l.P0.Y+l.P1.Y)/2))
		case l.IsVertical(axisTolerance):
			edges = append(edges, verticalEdge((l.P0.X+l.P1.X)/2, l.P0.Y, l.P1.Y))
		}
	}
	for _, r := range rects {
		b := r.BBox
		edges = append(edges,
			horizontalEdge(b.X0, b.X1, b.Top),
			horizontalEdge(b.X0, b.X1, b.Bottom),
			verticalEdge(b.X0, b.Top, b.Bottom),
			verticalEdge(b.X1, b.Top, b.Bottom),
		)
	}
	for _, c := range curves {
		b := c.BBox
		switch {
		case b.Height() <= axisTolerance:
			edges = append(edges, horizontalEdge(b.X0, b.X1, (b.Top+b.Bottom)/2))
		case b.Width() <= axisTolerance:
			edges = append(edges, verticalEdge((b.X0+b.X1)/2, b.Top, b.Bottom))
		}
	}
	return edges
}

// textEdges synthesizes edges from word alignment for the Stream strategy.
// Columns come from clusters of shared left, right, or center x positions;
// rows come from clusters of word tops. The right and bottom extremes of
// the word region close the grid.
func textEdges(words []model.Word, s Settings) []edge {
	if len(words) == 0 {
		return nil
	}
	boxes := make([]model.BBox, len(words))
	for i, w := range words {
		boxes[i] = w.BBox
	}
	region := model.UnionAll(boxes)

	var edges []edge

	// Column boundaries: groups of words sharing a left, right, or center
	// x alignment. A word belongs to at most one boundary, so the same
	// column is not counted once per alignment kind; larger groups win.
	var groups [][]int
	for _, pick := range []func(model.BBox) float64{
		func(b model.BBox) float64 { return b.X0 },
		func(b model.BBox) float64 { return b.X1 },
		func(b model.BBox) float64 { return (b.X0 + b.X1) / 2 },
	} {
		xs := make([]float64, len(words))
		for i, w := range words {
			xs[i] = pick(w.BBox)
		}
		groups = append(groups, clusterIndexes(xs, axisTolerance)...)
	}
	sort.SliceStable(groups, func(i, j int) bool { return len(groups[i]) > len(groups[j]) })
	used := make([]bool, len(words))
	for _, g := range groups {
		if len(g) < s.MinWordsVertical {
			continue
		}
		taken := false
		for _, i := range g {
			if used[i] {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		x := words[g[0]].BBox.X0
		for _, i := range g {
			used[i] = true
			x = math.Min(x, words[i].BBox.X0)
		}
		edges = append(edges, verticalEdge(x, region.Top, region.Bottom))
	}
	edges = append(edges, verticalEdge(region.X1, region.Top, region.Bottom))

	// Row boundaries: one per cluster of word tops, closed at the bottom.
	tops := make([]float64, len(words))
	for i, w := range words {
		tops[i] = w.BBox.Top
	}
	for _, c := range clusterValues(tops, s.TextTolerance) {
		if c.count >= s.MinWordsHorizontal {
			edges = append(edges, horizontalEdge(region.X0, region.X1, c.value))
		}
	}
	edges = append(edges, horizontalEdge(region.X0, region.X1, region.Bottom))

	return edges
}

// explicitEdges converts caller-supplied boundary coordinates into edges.
// Each edge spans the content region grown to cover the explicit
// coordinates themselves, so boundaries placed outside the content still
// cross each other.
func explicitEdges(s Settings, region model.BBox) []edge {
	x0, x1 := region.X0, region.X1
	for _, x := range s.ExplicitVerticalLines {
		x0 = math.Min(x0, x)
		x1 = math.Max(x1, x)
	}
	top, bottom := region.Top, region.Bottom
	for _, y := range s.ExplicitHorizontalLines {
		top = math.Min(top, y)
		bottom = math.Max(bottom, y)
	}

	var edges []edge
	for _, x := range s.ExplicitVerticalLines {
		edges = append(edges, verticalEdge(x, top, bottom))
	}
	for _, y := range s.ExplicitHorizontalLines {
		edges = append(edges, horizontalEdge(x0, x1, y))
	}
	return edges
}

type cluster struct {
	value float64
	count int
}

// clusterValues groups values lying within tol of a running cluster mean
// and returns each cluster's mean and population.
func clusterValues(values []float64, tol float64) []cluster {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var out []cluster
	sum, n := sorted[0], 1
	for _, v := range sorted[1:] {
		if v-sum/float64(n) <= tol {
			sum += v
			n++
			continue
		}
		out = append(out, cluster{value: sum / float64(n), count: n})
		sum, n = v, 1
	}
	out = append(out, cluster{value: sum / float64(n), count: n})
	return out
}

// clusterIndexes groups value indexes the way clusterValues groups values,
// returning the member indexes of each cluster instead of its mean.
func clusterIndexes(values []float64, tol float64) [][]int {
	if len(values) == 0 {
		return nil
	}
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	var out [][]int
	cur := []int{order[0]}
	sum := values[order[0]]
	for _, i := range order[1:] {
		if values[i]-sum/float64(len(cur)) <= tol {
			cur = append(cur, i)
			sum += values[i]
			continue
		}
		out = append(out, cur)
		cur = []int{i}
		sum = values[i]
	}
	return append(out, cur)
}

// snapEdges aligns nearly-collinear parallel edges onto their cluster mean.
func snapEdges(edges []edge, tol float64) []edge {
	snapped := append([]edge(nil), edges...)
	for _, vertical := range []bool{true, false} {
		idx := make([]int, 0, len(snapped))
		pos := make([]float64, 0, len(snapped))
		for i, e := range snapped {
			if e.vertical == vertical {
				idx = append(idx, i)
				if vertical {
					pos = append(pos, e.x0)
				} else {
					pos = append(pos, e.top)
				}
			}
		}
		if len(idx) == 0 {
			continue
		}
		order := make([]int, len(idx))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return pos[order[a]] < pos[order[b]] })

		sum, n := 0.0, 0
		var members []int
		assign := func() {
			mean := sum / float64(n)
			for _, m := range members {
				e := &snapped[idx[m]]
				if vertical {
					e.x0, e.x1 = mean, mean
				} else {
					e.top, e.bottom = mean, mean
				}
			}
		}
		for _, o := range order {
			if n > 0 && pos[o]-sum/float64(n) > tol {
				assign()
				sum, n, members = 0, 0, nil
			}
			sum += pos[o]
			n++
			members = append(members, o)
		}
		if n > 0 {
			assign()
		}
	}
	return snapped
}

// joinEdges merges collinear edges whose spans overlap or sit within tol of
// each other, leaving one edge per maximal span.
func joinEdges(edges []edge, tol float64) []edge {
	groups := make(map[[2]float64][]edge)
	for _, e := range edges {
		var key [2]float64
		if e.vertical {
			key = [2]float64{1, e.x0}
		} else {
			key = [2]float64{0, e.top}
		}
		groups[key] = append(groups[key], e)
	}

	var out []edge
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			if group[i].vertical {
				return group[i].top < group[j].top
			}
			return group[i].x0 < group[j].x0
		})
		cur := group[0]
		for _, e := range group[1:] {
			if cur.vertical {
				if e.top <= cur.bottom+tol {
					cur.bottom = math.Max(cur.bottom, e.bottom)
					continue
				}
			} else {
				if e.x0 <= cur.x1+tol {
					cur.x1 = math.Max(cur.x1, e.x1)
					continue
				}
			}
			out = append(out, cur)
			cur = e
		}
		out = append(out, cur)
	}
	return out
}

// filterShort drops edges below the minimum length.
func filterShort(edges []edge, minLength float64) []edge {
	out := edges[:0]
	for _, e := range edges {
		if e.length() >= minLength {
			out = append(out, e)
		}
	}
	return out
}
