package graphicsstate

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsawler/plumb/backend"
	"github.com/tsawler/plumb/contentstream"
	"github.com/tsawler/plumb/font"
	"github.com/tsawler/plumb/model"
)

// ErrResourceLimit is returned when a form XObject graph nests deeper than
// the configured limit or cycles back on itself. It aborts the page.
var ErrResourceLimit = errors.New("graphicsstate: form xobject graph exceeds resource limit")

// DefaultMaxFormDepth bounds form XObject recursion.
const DefaultMaxFormDepth = 10

// rectTolerance is the device-space slack allowed when deciding whether a
// closed subpath outlines an axis-parallel rectangle.
const rectTolerance = 0.1

// Interpreter executes a page's content stream and accumulates page-space
// primitives. It is single-use: create one per page.
type Interpreter struct {
	geom  model.PageGeometry
	res   *backend.Resources
	fonts *font.Cache

	gs          *GraphicsState
	path        Path
	pendingClip bool

	// MaxFormDepth may be raised before Run for documents with unusually
	// deep form nesting.
	MaxFormDepth int
	depth        int
	visited      map[int]bool

	Chars  []model.Char
	Lines  []model.Line
	Rects  []model.Rect
	Curves []model.Curve
	Images []model.Image

	// Warnings records recoverable problems encountered during
	// interpretation, one message each.
	Warnings []string
}

// NewInterpreter creates an interpreter for one page. fonts may be shared
// across pages; it is safe for concurrent use.
func NewInterpreter(geom model.PageGeometry, res *backend.Resources, fonts *font.Cache) *Interpreter {
	if fonts == nil {
		fonts = font.NewCache()
	}
	return &Interpreter{
		geom:         geom,
		res:          res,
		fonts:        fonts,
		gs:           NewGraphicsState(),
		MaxFormDepth: DefaultMaxFormDepth,
		visited:      make(map[int]bool),
	}
}

// Run parses and executes a content stream. The only error it returns is a
// wrapped ErrResourceLimit; everything else degrades into Warnings.
func (in *Interpreter) Run(content []byte) error {
	ops := contentstream.NewParser(content).Parse()
	return in.exec(ops, in.res)
}

func (in *Interpreter) exec(ops []contentstream.Operation, res *backend.Resources) error {
	for _, op := range ops {
		if err := in.do(op, res); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) do(op contentstream.Operation, res *backend.Resources) error {
	switch op.Operator {
	// Graphics state
	case "q":
		in.gs.Save()
	case "Q":
		if !in.gs.Restore() {
			in.warnf("unbalanced Q ignored")
		}
	case "cm":
		if len(op.Operands) == 6 {
			in.gs.Concat(operandMatrix(op.Operands))
		}
	case "w":
		in.gs.LineWidth = num(op.Operands, 0)
	case "d":
		if len(op.Operands) == 2 {
			if arr, ok := op.Operands[0].(contentstream.Array); ok {
				dash := make([]float64, 0, len(arr))
				for _, el := range arr {
					if v, ok := contentstream.ToFloat(el); ok {
						dash = append(dash, v)
					}
				}
				in.gs.DashArray = dash
				in.gs.DashPhase = num(op.Operands, 1)
			}
		}

	// Color
	case "RG":
		in.gs.StrokeColor = rgb(op.Operands)
	case "rg":
		in.gs.FillColor = rgb(op.Operands)
	case "G":
		v := num(op.Operands, 0)
		in.gs.StrokeColor = model.Color{R: v, G: v, B: v}
	case "g":
		v := num(op.Operands, 0)
		in.gs.FillColor = model.Color{R: v, G: v, B: v}
	case "K":
		in.gs.StrokeColor = cmyk(op.Operands)
	case "k":
		in.gs.FillColor = cmyk(op.Operands)
	case "SC", "SCN":
		if c, ok := componentColor(op.Operands); ok {
			in.gs.StrokeColor = c
		}
	case "sc", "scn":
		if c, ok := componentColor(op.Operands); ok {
			in.gs.FillColor = c
		}

	// Path construction
	case "m":
		in.path.MoveTo(num(op.Operands, 0), num(op.Operands, 1))
	case "l":
		in.path.LineTo(num(op.Operands, 0), num(op.Operands, 1))
	case "c":
		in.path.CurveTo(num(op.Operands, 0), num(op.Operands, 1),
			num(op.Operands, 2), num(op.Operands, 3),
			num(op.Operands, 4), num(op.Operands, 5))
	case "v":
		in.path.CurveToV(num(op.Operands, 0), num(op.Operands, 1),
			num(op.Operands, 2), num(op.Operands, 3))
	case "y":
		in.path.CurveToY(num(op.Operands, 0), num(op.Operands, 1),
			num(op.Operands, 2), num(op.Operands, 3))
	case "h":
		in.path.Close()
	case "re":
		in.path.Rectangle(num(op.Operands, 0), num(op.Operands, 1),
			num(op.Operands, 2), num(op.Operands, 3))

	// Path painting
	case "S":
		in.paintPath(true, false)
	case "s":
		in.path.Close()
		in.paintPath(true, false)
	case "f", "F", "f*":
		in.paintPath(false, true)
	case "B", "B*":
		in.paintPath(true, true)
	case "b", "b*":
		in.path.Close()
		in.paintPath(true, true)
	case "n":
		in.finishPath()
	case "W", "W*":
		in.pendingClip = true

	// Text
	case "BT":
		in.gs.BeginText()
	case "ET":
	case "Tf":
		if len(op.Operands) == 2 {
			if name, ok := op.Operands[0].(contentstream.Name); ok {
				in.setFont(string(name), num(op.Operands, 1), res)
			}
		}
	case "Tc":
		in.gs.Text.CharSpacing = num(op.Operands, 0)
	case "Tw":
		in.gs.Text.WordSpacing = num(op.Operands, 0)
	case "Tz":
		in.gs.Text.HorizScaling = num(op.Operands, 0)
	case "TL":
		in.gs.Text.Leading = num(op.Operands, 0)
	case "Ts":
		in.gs.Text.Rise = num(op.Operands, 0)
	case "Tr":
		if n, ok := contentstream.ToInt(operand(op.Operands, 0)); ok {
			in.gs.Text.RenderMode = n
		}
	case "Td":
		in.gs.NextLine(num(op.Operands, 0), num(op.Operands, 1))
	case "TD":
		ty := num(op.Operands, 1)
		in.gs.Text.Leading = -ty
		in.gs.NextLine(num(op.Operands, 0), ty)
	case "Tm":
		if len(op.Operands) == 6 {
			in.gs.SetTextMatrix(operandMatrix(op.Operands))
		}
	case "T*":
		in.gs.NextLine(0, -in.gs.Text.Leading)
	case "Tj":
		if s, ok := operand(op.Operands, 0).(contentstream.String); ok {
			in.showText([]byte(s))
		}
	case "'":
		in.gs.NextLine(0, -in.gs.Text.Leading)
		if s, ok := operand(op.Operands, 0).(contentstream.String); ok {
			in.showText([]byte(s))
		}
	case "\"":
		if len(op.Operands) == 3 {
			in.gs.Text.WordSpacing = num(op.Operands, 0)
			in.gs.Text.CharSpacing = num(op.Operands, 1)
			in.gs.NextLine(0, -in.gs.Text.Leading)
			if s, ok := op.Operands[2].(contentstream.String); ok {
				in.showText([]byte(s))
			}
		}
	case "TJ":
		if arr, ok := operand(op.Operands, 0).(contentstream.Array); ok {
			in.showTextArray(arr)
		}

	// External objects and inline images
	case "Do":
		if name, ok := operand(op.Operands, 0).(contentstream.Name); ok {
			return in.doXObject(string(name), res)
		}
	case "BI":
		if dict, ok := operand(op.Operands, 0).(contentstream.Dict); ok {
			in.emitInlineImage(dict)
		}
	}
	return nil
}

func (in *Interpreter) setFont(name string, size float64, res *backend.Resources) {
	in.gs.Text.FontName = name
	in.gs.Text.Size = size
	bf := res.Font(name)
	if bf == nil {
		in.gs.Text.Font = nil
		in.warnf("font %q not in resources", name)
		return
	}
	in.gs.Text.Font = in.fonts.Resolve(bf)
}

// showText decodes raw through the current font and emits one Char per
// glyph, advancing the text matrix as it goes.
func (in *Interpreter) showText(raw []byte) {
	ts := &in.gs.Text
	if ts.Font == nil {
		in.warnf("text shown with no usable font")
		return
	}
	th := ts.HorizScaling / 100

	for _, g := range ts.Font.Decode(raw) {
		trm := model.Matrix{ts.Size * th, 0, 0, ts.Size, 0, ts.Rise}.
			Multiply(ts.Matrix).Multiply(in.gs.CTM)

		w := g.Width / 1000
		asc := ts.Font.Ascent / 1000
		desc := ts.Font.Descent / 1000
		minX, minY, maxX, maxY := extent([]model.Point{
			trm.Transform(model.Point{X: 0, Y: desc}),
			trm.Transform(model.Point{X: w, Y: desc}),
			trm.Transform(model.Point{X: 0, Y: asc}),
			trm.Transform(model.Point{X: w, Y: asc}),
		})

		// The pen moves whether or not the glyph is visible.
		adv := g.Width/1000*ts.Size + ts.CharSpacing
		if g.IsWordSpace {
			adv += ts.WordSpacing
		}
		if ts.Font.Vertical {
			in.gs.AdvanceText(0, -adv)
		} else {
			in.gs.AdvanceText(adv*th, 0)
		}

		if in.clippedOut(minX, minY, maxX, maxY) {
			continue
		}

		in.Chars = append(in.Chars, model.Char{
			Text:        g.Text,
			BBox:        in.geom.NormalizeBBox(minX, minY, maxX, maxY),
			FontName:    ts.FontName,
			Size:        math.Hypot(trm[2], trm[3]),
			Upright:     math.Abs(trm[1]) < 1e-6 && math.Abs(trm[2]) < 1e-6,
			Direction:   textDirection(trm),
			StrokeColor: in.gs.StrokeColor,
			FillColor:   in.gs.FillColor,
			CTM:         in.gs.CTM,
		})
	}
}

func (in *Interpreter) showTextArray(arr contentstream.Array) {
	ts := &in.gs.Text
	for _, el := range arr {
		if s, ok := el.(contentstream.String); ok {
			in.showText([]byte(s))
			continue
		}
		if n, ok := contentstream.ToFloat(el); ok {
			adj := n / 1000 * ts.Size
			if ts.Font != nil && ts.Font.Vertical {
				in.gs.AdvanceText(0, adj)
			} else {
				in.gs.AdvanceText(-adj*ts.HorizScaling/100, 0)
			}
		}
	}
}

// textDirection derives the dominant flow axis from the text rendering
// matrix.
func textDirection(trm model.Matrix) model.Direction {
	a, b := trm[0], trm[1]
	if math.Abs(a) >= math.Abs(b) {
		if a >= 0 {
			return model.DirLTR
		}
		return model.DirRTL
	}
	if b > 0 {
		return model.DirBTT
	}
	return model.DirTTB
}

func (in *Interpreter) doXObject(name string, res *backend.Resources) error {
	xo := res.XObject(name)
	if xo == nil {
		in.warnf("xobject %q not in resources", name)
		return nil
	}
	if !xo.Form {
		in.emitImage(name, xo)
		return nil
	}

	if in.depth >= in.MaxFormDepth {
		return fmt.Errorf("form %q at depth %d: %w", name, in.depth, ErrResourceLimit)
	}
	if xo.Ref != 0 && in.visited[xo.Ref] {
		return fmt.Errorf("form %q is self-referential: %w", name, ErrResourceLimit)
	}
	if xo.Ref != 0 {
		in.visited[xo.Ref] = true
		defer delete(in.visited, xo.Ref)
	}
	in.depth++
	defer func() { in.depth-- }()

	in.gs.Save()
	defer in.gs.Restore()
	in.gs.Concat(model.Matrix(xo.Matrix))
	if xo.BBox != nil {
		bb := xo.BBox
		minX, minY, maxX, maxY := extent([]model.Point{
			in.gs.CTM.Transform(model.Point{X: bb[0], Y: bb[1]}),
			in.gs.CTM.Transform(model.Point{X: bb[2], Y: bb[1]}),
			in.gs.CTM.Transform(model.Point{X: bb[0], Y: bb[3]}),
			in.gs.CTM.Transform(model.Point{X: bb[2], Y: bb[3]}),
		})
		in.gs.IntersectClip(model.BBox{X0: minX, Top: minY, X1: maxX, Bottom: maxY})
	}

	fres := xo.Resources
	if fres == nil {
		fres = res
	}
	ops := contentstream.NewParser(xo.Content).Parse()
	return in.exec(ops, fres)
}

// emitImage records a placed image XObject. Pixel data is never decoded;
// the image occupies the unit square mapped through the CTM.
func (in *Interpreter) emitImage(name string, xo *backend.XObject) {
	minX, minY, maxX, maxY := in.unitSquareExtent()
	if in.clippedOut(minX, minY, maxX, maxY) {
		return
	}
	in.Images = append(in.Images, model.Image{
		BBox:   in.geom.NormalizeBBox(minX, minY, maxX, maxY),
		Name:   name,
		Width:  xo.Width,
		Height: xo.Height,
	})
}

func (in *Interpreter) emitInlineImage(dict contentstream.Dict) {
	minX, minY, maxX, maxY := in.unitSquareExtent()
	if in.clippedOut(minX, minY, maxX, maxY) {
		return
	}
	img := model.Image{BBox: in.geom.NormalizeBBox(minX, minY, maxX, maxY)}
	if w, ok := contentstream.ToInt(firstOf(dict, "W", "Width")); ok {
		img.Width = w
	}
	if h, ok := contentstream.ToInt(firstOf(dict, "H", "Height")); ok {
		img.Height = h
	}
	in.Images = append(in.Images, img)
}

func (in *Interpreter) unitSquareExtent() (minX, minY, maxX, maxY float64) {
	return extent([]model.Point{
		in.gs.CTM.Transform(model.Point{X: 0, Y: 0}),
		in.gs.CTM.Transform(model.Point{X: 1, Y: 0}),
		in.gs.CTM.Transform(model.Point{X: 0, Y: 1}),
		in.gs.CTM.Transform(model.Point{X: 1, Y: 1}),
	})
}

// paintPath emits primitives for the accumulated path and then finishes it,
// applying any pending clip.
func (in *Interpreter) paintPath(stroke, fill bool) {
	defer in.finishPath()
	if in.path.IsEmpty() {
		return
	}
	for _, sp := range in.path.subpaths() {
		in.emitSubpath(sp, stroke, fill)
	}
}

// finishPath applies a pending W/W* clip and discards the path (n operator,
// and the tail of every painting operator).
func (in *Interpreter) finishPath() {
	if in.pendingClip {
		if minX, minY, maxX, maxY, ok := in.pathDeviceExtent(); ok {
			in.gs.IntersectClip(model.BBox{X0: minX, Top: minY, X1: maxX, Bottom: maxY})
		}
		in.pendingClip = false
	}
	in.path.Clear()
}

func (in *Interpreter) emitSubpath(sp subpath, stroke, fill bool) {
	ctm := in.gs.CTM
	color := in.gs.StrokeColor
	if !stroke && fill {
		color = in.gs.FillColor
	}
	width := 0.0
	if stroke {
		width = in.gs.LineWidth
	}

	if sp.isRectangle(ctm, rectTolerance) {
		minX, minY, maxX, maxY := subpathDeviceExtent(sp, ctm)
		if in.clippedOut(minX, minY, maxX, maxY) {
			return
		}
		in.Rects = append(in.Rects, model.Rect{
			BBox:   in.geom.NormalizeBBox(minX, minY, maxX, maxY),
			Stroke: stroke,
			Fill:   fill,
			Color:  color,
			Width:  width,
		})
		return
	}

	if sp.hasCurve {
		minX, minY, maxX, maxY := subpathDeviceExtent(sp, ctm)
		if in.clippedOut(minX, minY, maxX, maxY) {
			return
		}
		points := make([]model.Point, len(sp.onCurve))
		for i, pt := range sp.onCurve {
			d := ctm.Transform(pt)
			points[i] = in.geom.NormalizePoint(d.X, d.Y)
		}
		controls := make([]model.Point, len(sp.controls))
		for i, pt := range sp.controls {
			d := ctm.Transform(pt)
			controls[i] = in.geom.NormalizePoint(d.X, d.Y)
		}
		in.Curves = append(in.Curves, model.Curve{
			Points:        points,
			ControlPoints: controls,
			BBox:          in.geom.NormalizeBBox(minX, minY, maxX, maxY),
			Stroke:        stroke,
			Fill:          fill,
			Color:         color,
			Width:         width,
		})
		return
	}

	// A plain polyline: one Line per segment, including the implicit
	// closing edge.
	var cur, start model.Point
	for _, seg := range sp.segs {
		switch seg.kind {
		case segMove:
			cur = seg.points[0]
			start = cur
		case segLine:
			in.emitLine(cur, seg.points[0], stroke, fill, color, width)
			cur = seg.points[0]
		case segClose:
			if !pointsClose(cur, start, 1e-9) {
				in.emitLine(cur, start, stroke, fill, color, width)
			}
			cur = start
		}
	}
}

func (in *Interpreter) emitLine(a, b model.Point, stroke, fill bool, color model.Color, width float64) {
	d0 := in.gs.CTM.Transform(a)
	d1 := in.gs.CTM.Transform(b)
	minX, minY, maxX, maxY := extent([]model.Point{d0, d1})
	if in.clippedOut(minX, minY, maxX, maxY) {
		return
	}
	in.Lines = append(in.Lines, model.Line{
		P0:     in.geom.NormalizePoint(d0.X, d0.Y),
		P1:     in.geom.NormalizePoint(d1.X, d1.Y),
		BBox:   in.geom.NormalizeBBox(minX, minY, maxX, maxY),
		Stroke: stroke,
		Fill:   fill,
		Color:  color,
		Width:  width,
	})
}

// pathDeviceExtent returns the device-space bounds of the whole path with
// Bézier extrema included, or ok=false for an empty path.
func (in *Interpreter) pathDeviceExtent() (minX, minY, maxX, maxY float64, ok bool) {
	subs := in.path.subpaths()
	if len(subs) == 0 {
		return 0, 0, 0, 0, false
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, sp := range subs {
		sMinX, sMinY, sMaxX, sMaxY := subpathDeviceExtent(sp, in.gs.CTM)
		minX = math.Min(minX, sMinX)
		minY = math.Min(minY, sMinY)
		maxX = math.Max(maxX, sMaxX)
		maxY = math.Max(maxY, sMaxY)
	}
	return minX, minY, maxX, maxY, true
}

// subpathDeviceExtent computes device-space bounds. Affine maps commute with
// Bézier evaluation, so control points are transformed first and the extrema
// solved per axis in device space.
func subpathDeviceExtent(sp subpath, ctm model.Matrix) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	include := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	var cur model.Point
	for _, seg := range sp.segs {
		switch seg.kind {
		case segMove, segLine:
			d := ctm.Transform(seg.points[0])
			include(d.X, d.Y)
			cur = seg.points[0]
		case segCurve:
			p0 := ctm.Transform(cur)
			c1 := ctm.Transform(seg.points[0])
			c2 := ctm.Transform(seg.points[1])
			p3 := ctm.Transform(seg.points[2])
			lo, hi := bezierRange(p0.X, c1.X, c2.X, p3.X)
			minX = math.Min(minX, lo)
			maxX = math.Max(maxX, hi)
			lo, hi = bezierRange(p0.Y, c1.Y, c2.Y, p3.Y)
			minY = math.Min(minY, lo)
			maxY = math.Max(maxY, hi)
			cur = seg.points[2]
		}
	}
	return minX, minY, maxX, maxY
}

// clippedOut reports whether a device-space box lies entirely outside the
// current clip.
func (in *Interpreter) clippedOut(minX, minY, maxX, maxY float64) bool {
	c := in.gs.Clip
	if c == nil {
		return false
	}
	const eps = 1e-6
	return maxX < c.X0-eps || minX > c.X1+eps || maxY < c.Top-eps || minY > c.Bottom+eps
}

func (in *Interpreter) warnf(format string, args ...any) {
	in.Warnings = append(in.Warnings, fmt.Sprintf(format, args...))
}

// Operand helpers.

func operand(ops []contentstream.Object, i int) contentstream.Object {
	if i < 0 || i >= len(ops) {
		return contentstream.Null{}
	}
	return ops[i]
}

func num(ops []contentstream.Object, i int) float64 {
	v, _ := contentstream.ToFloat(operand(ops, i))
	return v
}

func operandMatrix(ops []contentstream.Object) model.Matrix {
	var m model.Matrix
	for i := 0; i < 6; i++ {
		m[i] = num(ops, i)
	}
	return m
}

func rgb(ops []contentstream.Object) model.Color {
	return model.Color{R: num(ops, 0), G: num(ops, 1), B: num(ops, 2)}
}

func cmyk(ops []contentstream.Object) model.Color {
	c, m, y, k := num(ops, 0), num(ops, 1), num(ops, 2), num(ops, 3)
	return model.Color{R: (1 - c) * (1 - k), G: (1 - m) * (1 - k), B: (1 - y) * (1 - k)}
}

// componentColor interprets sc/scn operands by arity: one component is
// gray, three are RGB, four are CMYK. Pattern names are ignored.
func componentColor(ops []contentstream.Object) (model.Color, bool) {
	var vals []float64
	for _, o := range ops {
		if v, ok := contentstream.ToFloat(o); ok {
			vals = append(vals, v)
		}
	}
	switch len(vals) {
	case 1:
		return model.Color{R: vals[0], G: vals[0], B: vals[0]}, true
	case 3:
		return model.Color{R: vals[0], G: vals[1], B: vals[2]}, true
	case 4:
		c, m, y, k := vals[0], vals[1], vals[2], vals[3]
		return model.Color{R: (1 - c) * (1 - k), G: (1 - m) * (1 - k), B: (1 - y) * (1 - k)}, true
	}
	return model.Color{}, false
}

func extent(pts []model.Point) (minX, minY, maxX, maxY float64) {
	minX, minY = pts[0].X, pts[0].Y
	maxX, maxY = pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

func firstOf(d contentstream.Dict, keys ...string) contentstream.Object {
	for _, k := range keys {
		if v, ok := d[k]; ok {
			return v
		}
	}
	return contentstream.Null{}
}
