package model

import "strings"

// Direction indicates the dominant flow of a run of text, derived from the
// text rendering matrix at draw time.
type Direction int

const (
	// DirLTR is left-to-right text (the common case).
	DirLTR Direction = iota
	// DirRTL is right-to-left (mirrored) text.
	DirRTL
	// DirTTB is top-to-bottom (vertical) text.
	DirTTB
	// DirBTT is bottom-to-top text.
	DirBTT
)

func (d Direction) String() string {
	switch d {
	case DirLTR:
		return "ltr"
	case DirRTL:
		return "rtl"
	case DirTTB:
		return "ttb"
	case DirBTT:
		return "btt"
	default:
		return "ltr"
	}
}

// Color represents a device RGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Black is the default stroke and fill color.
var Black = Color{0, 0, 0}

// Char is a single rendered text unit. It may hold more than one rune when a
// ligature or multi-rune CMap target expands to several code points.
type Char struct {
	// Text is the decoded Unicode text for this glyph.
	Text string
	// BBox is the glyph's bounding box in page space.
	BBox BBox
	// FontName is the resource name of the font that drew the glyph.
	FontName string
	// Size is the effective font size in points.
	Size float64
	// Doctop is the vertical position measured from the start of the
	// document: BBox.Top plus the summed heights of all preceding pages.
	Doctop float64
	// Upright is true when the text rendering matrix carries no rotation
	// or shear.
	Upright bool
	// Direction is the dominant flow axis of the glyph.
	Direction Direction
	// StrokeColor and FillColor are the painting colors at draw time.
	StrokeColor Color
	FillColor   Color
	// CTM is the current transformation matrix at draw time.
	CTM Matrix
}

// Word is an ordered, contiguous run of Chars on one line sharing a
// direction.
type Word struct {
	Text      string
	BBox      BBox
	Chars     []Char
	Direction Direction
	Upright   bool
}

// TextLine is a sequence of Words clustered by vertical position.
type TextLine struct {
	Words []Word
	BBox  BBox
}

// Text returns the line's words joined by single spaces.
func (l TextLine) Text() string {
	parts := make([]string, len(l.Words))
	for i, w := range l.Words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// Line is a straight path segment.
type Line struct {
	P0, P1 Point
	BBox   BBox
	Stroke bool
	Fill   bool
	Color  Color
	Width  float64
}

// IsHorizontal reports whether the line is horizontal within tol.
func (l Line) IsHorizontal(tol float64) bool {
	d := l.P0.Y - l.P1.Y
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// IsVertical reports whether the line is vertical within tol.
func (l Line) IsVertical(tol float64) bool {
	d := l.P0.X - l.P1.X
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// Rect is an axis-aligned rectangle path.
type Rect struct {
	BBox   BBox
	Stroke bool
	Fill   bool
	Color  Color
	Width  float64
}

// Curve is a path containing at least one Bézier segment. Points holds the
// on-curve points in order; ControlPoints holds every control point so the
// bounding box can account for extrema lying between endpoints.
type Curve struct {
	Points        []Point
	ControlPoints []Point
	BBox          BBox
	Stroke        bool
	Fill          bool
	Color         Color
	Width         float64
}

// Image is a placed image. Pixel data is never decoded by this package;
// Name references the XObject resource (empty for inline images).
type Image struct {
	BBox   BBox
	Name   string
	Width  int // Intrinsic width in samples, when known
	Height int // Intrinsic height in samples, when known
}
