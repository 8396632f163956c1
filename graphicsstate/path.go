package graphicsstate

import (
	"math"

	"github.com/tsawler/plumb/model"
)

type segmentKind int

const (
	segMove segmentKind = iota
	segLine
	segCurve
	segClose
)

// segment is one step of a path in user space. Curve segments carry the two
// control points followed by the end point.
type segment struct {
	kind   segmentKind
	points [3]model.Point
}

// Path accumulates construction operators until a painting operator consumes
// it.
type Path struct {
	segments []segment

	current  model.Point
	start    model.Point
	hasPoint bool
}

// MoveTo begins a new subpath (m operator).
func (p *Path) MoveTo(x, y float64) {
	pt := model.Point{X: x, Y: y}
	p.segments = append(p.segments, segment{kind: segMove, points: [3]model.Point{pt}})
	p.current = pt
	p.start = pt
	p.hasPoint = true
}

// LineTo appends a straight segment (l operator). Without a current point it
// degrades to a moveto.
func (p *Path) LineTo(x, y float64) {
	if !p.hasPoint {
		p.MoveTo(x, y)
		return
	}
	pt := model.Point{X: x, Y: y}
	p.segments = append(p.segments, segment{kind: segLine, points: [3]model.Point{pt}})
	p.current = pt
}

// CurveTo appends a cubic Bézier segment (c operator).
func (p *Path) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	if !p.hasPoint {
		p.MoveTo(x1, y1)
	}
	p.segments = append(p.segments, segment{kind: segCurve, points: [3]model.Point{
		{X: x1, Y: y1}, {X: x2, Y: y2}, {X: x3, Y: y3},
	}})
	p.current = model.Point{X: x3, Y: y3}
}

// CurveToV appends a Bézier whose first control point is the current point
// (v operator).
func (p *Path) CurveToV(x2, y2, x3, y3 float64) {
	if !p.hasPoint {
		return
	}
	p.CurveTo(p.current.X, p.current.Y, x2, y2, x3, y3)
}

// CurveToY appends a Bézier whose second control point is the end point
// (y operator).
func (p *Path) CurveToY(x1, y1, x3, y3 float64) {
	if !p.hasPoint {
		return
	}
	p.CurveTo(x1, y1, x3, y3, x3, y3)
}

// Close closes the current subpath (h operator).
func (p *Path) Close() {
	if !p.hasPoint {
		return
	}
	p.segments = append(p.segments, segment{kind: segClose})
	p.current = p.start
}

// Rectangle appends a rectangle as a closed subpath (re operator).
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Clear discards the path after a painting or no-op operator.
func (p *Path) Clear() {
	p.segments = p.segments[:0]
	p.hasPoint = false
}

// IsEmpty reports whether the path has no segments.
func (p *Path) IsEmpty() bool {
	return len(p.segments) == 0
}

// subpath is a resolved run of segments between movetos.
type subpath struct {
	// segs holds the subpath's segments, starting with its moveto.
	segs []segment
	// onCurve holds the anchor points in order, starting with the moveto.
	onCurve []model.Point
	// controls holds every Bézier control point encountered.
	controls []model.Point
	hasCurve bool
	closed   bool
}

func (p *Path) subpaths() []subpath {
	var subs []subpath
	for _, seg := range p.segments {
		if seg.kind == segMove {
			subs = append(subs, subpath{
				segs:    []segment{seg},
				onCurve: []model.Point{seg.points[0]},
			})
			continue
		}
		if len(subs) == 0 {
			continue
		}
		cur := &subs[len(subs)-1]
		cur.segs = append(cur.segs, seg)
		switch seg.kind {
		case segLine:
			cur.onCurve = append(cur.onCurve, seg.points[0])
		case segCurve:
			cur.controls = append(cur.controls, seg.points[0], seg.points[1])
			cur.onCurve = append(cur.onCurve, seg.points[2])
			cur.hasCurve = true
		case segClose:
			cur.closed = true
		}
	}
	return subs
}

// isRectangle reports whether the subpath outlines an axis-parallel
// rectangle in device space after transformation by ctm. It accepts both
// explicitly closed 4-point paths and 5-point paths that return to the
// start.
func (s subpath) isRectangle(ctm model.Matrix, tol float64) bool {
	if s.hasCurve {
		return false
	}
	pts := s.onCurve
	if len(pts) == 5 && pointsClose(pts[0], pts[4], tol) {
		pts = pts[:4]
	}
	if len(pts) != 4 {
		return false
	}
	if !s.closed && !pointsClose(s.onCurve[0], s.onCurve[len(s.onCurve)-1], tol) {
		return false
	}

	d := make([]model.Point, 4)
	for i, pt := range pts {
		d[i] = ctm.Transform(pt)
	}
	// Each side must be axis-parallel, alternating between axes.
	for i := 0; i < 4; i++ {
		a, b := d[i], d[(i+1)%4]
		horiz := math.Abs(a.Y-b.Y) <= tol
		vert := math.Abs(a.X-b.X) <= tol
		if !horiz && !vert {
			return false
		}
	}
	return true
}

func pointsClose(a, b model.Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// bezierRange returns the min and max of a cubic Bézier's coordinate over
// t in [0, 1], given the four scalar control values.
func bezierRange(p0, p1, p2, p3 float64) (min, max float64) {
	min = math.Min(p0, p3)
	max = math.Max(p0, p3)

	// Derivative is a quadratic: at² + bt + c.
	a := -p0 + 3*p1 - 3*p2 + p3
	b := 2 * (p0 - 2*p1 + p2)
	c := p1 - p0

	eval := func(t float64) {
		if t <= 0 || t >= 1 {
			return
		}
		u := 1 - t
		v := u*u*u*p0 + 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t*p3
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	if math.Abs(a) < 1e-12 {
		if math.Abs(b) > 1e-12 {
			eval(-c / b)
		}
		return min, max
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return min, max
	}
	sq := math.Sqrt(disc)
	eval((-b + sq) / (2 * a))
	eval((-b - sq) / (2 * a))
	return min, max
}
