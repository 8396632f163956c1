package model

// PageGeometry converts points from native PDF user space (bottom-left
// origin) into the top-left-origin display space used by every primitive.
// It combines the MediaBox offset, the page /Rotate value, an optional
// CropBox, and the final y-flip into one transform, applied exactly once
// when primitives are constructed.
type PageGeometry struct {
	rotation     int
	mediaX0      float64
	mediaY0      float64
	nativeWidth  float64
	nativeHeight float64
	cropRX0      float64
	cropRY0      float64
	width        float64
	height       float64
}

// NewPageGeometry builds a PageGeometry from raw page attributes.
// mediaBox and cropBox are given as [x0 y0 x1 y1] in PDF user space.
// cropBox may be nil, in which case the MediaBox is the visible viewport.
// rotation is the raw /Rotate value and is normalized to 0, 90, 180 or 270;
// values that are not multiples of 90 fall back to 0.
func NewPageGeometry(mediaBox [4]float64, cropBox *[4]float64, rotation int) PageGeometry {
	rotation = ((rotation % 360) + 360) % 360
	if rotation%90 != 0 {
		rotation = 0
	}

	g := PageGeometry{
		rotation:     rotation,
		mediaX0:      mediaBox[0],
		mediaY0:      mediaBox[1],
		nativeWidth:  mediaBox[2] - mediaBox[0],
		nativeHeight: mediaBox[3] - mediaBox[1],
	}

	crop := mediaBox
	if cropBox != nil {
		crop = *cropBox
	}

	// CropBox corners relative to the MediaBox origin.
	cx0 := crop[0] - g.mediaX0
	cy0 := crop[1] - g.mediaY0
	cx1 := crop[2] - g.mediaX0
	cy1 := crop[3] - g.mediaY0

	// Rotate the CropBox corners into display space.
	var rx0, ry0, rx1, ry1 float64
	switch rotation {
	case 90:
		rx0, ry0, rx1, ry1 = cy0, g.nativeWidth-cx1, cy1, g.nativeWidth-cx0
	case 180:
		rx0, ry0 = g.nativeWidth-cx1, g.nativeHeight-cy1
		rx1, ry1 = g.nativeWidth-cx0, g.nativeHeight-cy0
	case 270:
		rx0, ry0, rx1, ry1 = g.nativeHeight-cy1, cx0, g.nativeHeight-cy0, cx1
	default:
		rx0, ry0, rx1, ry1 = cx0, cy0, cx1, cy1
	}

	g.cropRX0 = rx0
	g.cropRY0 = ry0
	g.width = rx1 - rx0
	g.height = ry1 - ry0
	return g
}

// Width returns the visible page width after rotation and cropping.
func (g PageGeometry) Width() float64 {
	return g.width
}

// Height returns the visible page height after rotation and cropping.
func (g PageGeometry) Height() float64 {
	return g.height
}

// Rotation returns the normalized page rotation in degrees.
func (g PageGeometry) Rotation() int {
	return g.rotation
}

// NormalizePoint transforms a point from PDF native space to display space.
// It applies: MediaBox offset, clockwise rotation, CropBox offset, y-flip.
func (g PageGeometry) NormalizePoint(x, y float64) Point {
	px := x - g.mediaX0
	py := y - g.mediaY0

	var rx, ry float64
	switch g.rotation {
	case 90:
		rx, ry = py, g.nativeWidth-px
	case 180:
		rx, ry = g.nativeWidth-px, g.nativeHeight-py
	case 270:
		rx, ry = g.nativeHeight-py, px
	default:
		rx, ry = px, py
	}

	cx := rx - g.cropRX0
	cy := ry - g.cropRY0

	return Point{X: cx, Y: g.height - cy}
}

// NormalizeBBox transforms the min/max corners of a native-space box into a
// display-space BBox. Corners are re-normalized after transformation since
// rotation may swap min and max.
func (g PageGeometry) NormalizeBBox(minX, minY, maxX, maxY float64) BBox {
	p0 := g.NormalizePoint(minX, minY)
	p1 := g.NormalizePoint(maxX, maxY)
	return NewBBox(p0.X, p0.Y, p1.X, p1.Y)
}
