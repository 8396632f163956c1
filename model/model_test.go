package model

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// TestBBoxBasics tests width, height, and area calculations.
func TestBBoxBasics(t *testing.T) {
	b := NewBBox(10, 20, 110, 70)

	if !almostEqual(b.Width(), 100) {
		t.Errorf("Width = %f, want 100", b.Width())
	}
	if !almostEqual(b.Height(), 50) {
		t.Errorf("Height = %f, want 50", b.Height())
	}
	if !almostEqual(b.Area(), 5000) {
		t.Errorf("Area = %f, want 5000", b.Area())
	}
}

// TestNewBBoxNormalizesCorners tests that swapped corners are reordered.
func TestNewBBoxNormalizesCorners(t *testing.T) {
	b := NewBBox(110, 70, 10, 20)

	if b.X0 != 10 || b.Top != 20 || b.X1 != 110 || b.Bottom != 70 {
		t.Errorf("got %+v, want {10 20 110 70}", b)
	}
}

// TestBBoxIntersection tests intersection and disjointness.
func TestBBoxIntersection(t *testing.T) {
	a := NewBBox(0, 0, 100, 100)
	b := NewBBox(50, 50, 150, 150)
	c := NewBBox(200, 200, 300, 300)

	if !a.Intersects(b) {
		t.Error("expected a and b to intersect")
	}
	if a.Intersects(c) {
		t.Error("expected a and c not to intersect")
	}
	if !a.Disjoint(c) {
		t.Error("expected a and c to be disjoint")
	}

	got := a.Intersection(b)
	want := NewBBox(50, 50, 100, 100)
	if got != want {
		t.Errorf("Intersection = %+v, want %+v", got, want)
	}
}

// TestBBoxUnion tests union of two boxes.
func TestBBoxUnion(t *testing.T) {
	a := NewBBox(0, 0, 50, 50)
	b := NewBBox(100, 100, 150, 150)

	got := a.Union(b)
	want := NewBBox(0, 0, 150, 150)
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}

// TestBBoxContains tests full containment with tolerance.
func TestBBoxContains(t *testing.T) {
	outer := NewBBox(0, 0, 100, 100)
	inner := NewBBox(10, 10, 90, 90)
	edge := NewBBox(-1, 10, 90, 90)

	if !outer.Contains(inner, 0) {
		t.Error("expected full containment")
	}
	if outer.Contains(edge, 0) {
		t.Error("expected no containment with zero tolerance")
	}
	if !outer.Contains(edge, 2.0) {
		t.Error("expected containment within tolerance 2.0")
	}
}

// TestMatrixMultiply tests the PDF composition rule (operand × current).
func TestMatrixMultiply(t *testing.T) {
	scale := Scale(2, 3)
	translate := Translate(10, 20)

	// Scale first, then translate.
	m := scale.Multiply(translate)
	p := m.Transform(Point{X: 1, Y: 1})

	if !almostEqual(p.X, 12) || !almostEqual(p.Y, 23) {
		t.Errorf("Transform = %+v, want {12 23}", p)
	}
}

// TestMatrixIdentity tests identity detection.
func TestMatrixIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Error("Identity() should be identity")
	}
	if Scale(2, 2).IsIdentity() {
		t.Error("Scale(2,2) should not be identity")
	}
}

// TestPageGeometryNoRotation tests the plain y-flip case on a Letter page.
func TestPageGeometryNoRotation(t *testing.T) {
	g := NewPageGeometry([4]float64{0, 0, 612, 792}, nil, 0)

	if !almostEqual(g.Width(), 612) || !almostEqual(g.Height(), 792) {
		t.Fatalf("dimensions = %f×%f, want 612×792", g.Width(), g.Height())
	}

	// A point at PDF (72, 720) is 72 points from the top of the page.
	p := g.NormalizePoint(72, 720)
	if !almostEqual(p.X, 72) || !almostEqual(p.Y, 72) {
		t.Errorf("NormalizePoint = %+v, want {72 72}", p)
	}
}

// TestPageGeometryRotation90 tests that rotation swaps page dimensions and
// box extents.
func TestPageGeometryRotation90(t *testing.T) {
	g := NewPageGeometry([4]float64{0, 0, 612, 792}, nil, 90)

	if !almostEqual(g.Width(), 792) || !almostEqual(g.Height(), 612) {
		t.Fatalf("dimensions = %f×%f, want 792×612", g.Width(), g.Height())
	}

	// An 8×12 native box becomes 12×8 after 90° rotation.
	b := g.NormalizeBBox(10, 10, 18, 22)
	if !almostEqual(b.Width(), 12) || !almostEqual(b.Height(), 8) {
		t.Errorf("box = %f×%f, want 12×8", b.Width(), b.Height())
	}
}

// TestPageGeometryRotationNormalization tests /Rotate values outside [0,360).
func TestPageGeometryRotationNormalization(t *testing.T) {
	tests := []struct {
		raw  int
		want int
	}{
		{0, 0},
		{90, 90},
		{360, 0},
		{450, 90},
		{-90, 270},
		{45, 0}, // non-multiples of 90 fall back to 0
	}

	for _, tt := range tests {
		g := NewPageGeometry([4]float64{0, 0, 100, 100}, nil, tt.raw)
		if g.Rotation() != tt.want {
			t.Errorf("Rotation(%d) = %d, want %d", tt.raw, g.Rotation(), tt.want)
		}
	}
}

// TestPageGeometryCropBox tests CropBox offset handling.
func TestPageGeometryCropBox(t *testing.T) {
	crop := [4]float64{100, 100, 500, 700}
	g := NewPageGeometry([4]float64{0, 0, 612, 792}, &crop, 0)

	if !almostEqual(g.Width(), 400) || !almostEqual(g.Height(), 600) {
		t.Fatalf("dimensions = %f×%f, want 400×600", g.Width(), g.Height())
	}

	// The crop origin maps to the bottom-left of the visible area.
	p := g.NormalizePoint(100, 100)
	if !almostEqual(p.X, 0) || !almostEqual(p.Y, 600) {
		t.Errorf("NormalizePoint = %+v, want {0 600}", p)
	}
}

// TestTableAccuracy tests the accuracy invariant.
func TestTableAccuracy(t *testing.T) {
	text := "x"
	tbl := &Table{
		Rows: [][]Cell{
			{{Text: &text}, {Text: nil}},
			{{Text: &text}, {Text: &text}},
		},
	}

	if acc := tbl.Accuracy(); !almostEqual(acc, 0.75) {
		t.Errorf("Accuracy = %f, want 0.75", acc)
	}

	empty := &Table{}
	if acc := empty.Accuracy(); acc != 0 {
		t.Errorf("empty table Accuracy = %f, want 0", acc)
	}

	full := &Table{Rows: [][]Cell{{{Text: &text}}}}
	if acc := full.Accuracy(); acc != 1.0 {
		t.Errorf("full table Accuracy = %f, want 1.0", acc)
	}
}

// TestTableShape tests row and column counts.
func TestTableShape(t *testing.T) {
	tbl := &Table{
		Rows: [][]Cell{
			make([]Cell, 4),
			make([]Cell, 4),
			make([]Cell, 4),
		},
	}

	if tbl.RowCount() != 3 {
		t.Errorf("RowCount = %d, want 3", tbl.RowCount())
	}
	if tbl.ColCount() != 4 {
		t.Errorf("ColCount = %d, want 4", tbl.ColCount())
	}
}

// TestDirectionString tests direction names.
func TestDirectionString(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{DirLTR, "ltr"},
		{DirRTL, "rtl"},
		{DirTTB, "ttb"},
		{DirBTT, "btt"},
	}

	for _, tt := range tests {
		if got := tt.dir.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.dir, got, tt.want)
		}
	}
}
