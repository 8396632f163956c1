package model

import "math"

// Point represents a 2D point.
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents an axis-aligned bounding box in top-left-origin page
// coordinates. Top < Bottom because y grows downward.
type BBox struct {
	X0     float64 // Left edge
	Top    float64 // Top edge (smaller y)
	X1     float64 // Right edge
	Bottom float64 // Bottom edge (larger y)
}

// NewBBox creates a bounding box, normalizing edge order so that
// X0 <= X1 and Top <= Bottom.
func NewBBox(x0, top, x1, bottom float64) BBox {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if top > bottom {
		top, bottom = bottom, top
	}
	return BBox{X0: x0, Top: top, X1: x1, Bottom: bottom}
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent.
func (b BBox) Height() float64 {
	return b.Bottom - b.Top
}

// Area returns the area of the bounding box.
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// Center returns the center point.
func (b BBox) Center() Point {
	return Point{
		X: (b.X0 + b.X1) / 2,
		Y: (b.Top + b.Bottom) / 2,
	}
}

// IsEmpty returns true if the bounding box has zero or negative area.
func (b BBox) IsEmpty() bool {
	return b.X1 <= b.X0 || b.Bottom <= b.Top
}

// ContainsPoint checks if a point lies inside the bounding box (inclusive).
func (b BBox) ContainsPoint(p Point) bool {
	return p.X >= b.X0 && p.X <= b.X1 && p.Y >= b.Top && p.Y <= b.Bottom
}

// Contains checks if another box lies entirely inside this one, within tol
// on every edge.
func (b BBox) Contains(other BBox, tol float64) bool {
	return other.X0 >= b.X0-tol && other.X1 <= b.X1+tol &&
		other.Top >= b.Top-tol && other.Bottom <= b.Bottom+tol
}

// Intersects checks if two bounding boxes overlap.
func (b BBox) Intersects(other BBox) bool {
	return !(b.X1 < other.X0 || b.X0 > other.X1 ||
		b.Bottom < other.Top || b.Top > other.Bottom)
}

// Disjoint checks if two bounding boxes share no area at all.
func (b BBox) Disjoint(other BBox) bool {
	return !b.Intersects(other)
}

// Intersection returns the overlapping region of two boxes, or a zero BBox
// when they do not intersect.
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}
	return BBox{
		X0:     math.Max(b.X0, other.X0),
		Top:    math.Max(b.Top, other.Top),
		X1:     math.Min(b.X1, other.X1),
		Bottom: math.Min(b.Bottom, other.Bottom),
	}
}

// Union returns the smallest box enclosing both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X0:     math.Min(b.X0, other.X0),
		Top:    math.Min(b.Top, other.Top),
		X1:     math.Max(b.X1, other.X1),
		Bottom: math.Max(b.Bottom, other.Bottom),
	}
}

// Expand grows the bounding box by a margin on all sides.
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X0:     b.X0 - margin,
		Top:    b.Top - margin,
		X1:     b.X1 + margin,
		Bottom: b.Bottom + margin,
	}
}

// UnionAll returns the smallest box enclosing every box in the slice.
// An empty slice yields a zero BBox.
func UnionAll(boxes []BBox) BBox {
	if len(boxes) == 0 {
		return BBox{}
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out = out.Union(b)
	}
	return out
}

// Matrix represents a 2D affine transformation matrix [a b c d e f].
type Matrix [6]float64

// Identity returns an identity matrix.
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point.
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply computes m × other, the composition that applies m first.
// This is the PDF composition rule for the cm operator: new = operand × current.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix.
func (m Matrix) IsIdentity() bool {
	return m[0] == 1 && m[1] == 0 && m[2] == 0 && m[3] == 1 && m[4] == 0 && m[5] == 0
}
