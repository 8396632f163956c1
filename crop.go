package plumb

import (
	"math"

	"github.com/tsawler/plumb/model"
	"github.com/tsawler/plumb/search"
	"github.com/tsawler/plumb/tables"
	"github.com/tsawler/plumb/text"
)

type cropMode int

const (
	cropIntersect cropMode = iota
	cropWithin
	cropOutside
)

// cropSource is the parent a view filters: a Page or another CroppedPage.
type cropSource interface {
	PageNumber() int
	Chars() ([]model.Char, error)
	Lines() ([]model.Line, error)
	Rects() ([]model.Rect, error)
	Curves() ([]model.Curve, error)
	Images() ([]model.Image, error)
}

// CroppedPage is a bbox-scoped view over a Page or another CroppedPage. It
// holds no copies: the parent's primitives are filtered on each access.
// Views nest, so a crop of a crop narrows the region further.
type CroppedPage struct {
	src  cropSource
	bbox model.BBox
	mode cropMode
}

// PageNumber returns the 0-based index of the underlying page.
func (c *CroppedPage) PageNumber() int {
	return c.src.PageNumber()
}

// Width returns the view's width, from the bbox extents.
func (c *CroppedPage) Width() float64 {
	return c.bbox.Width()
}

// Height returns the view's height, from the bbox extents.
func (c *CroppedPage) Height() float64 {
	return c.bbox.Height()
}

// keep reports whether a primitive with bounds b belongs to the view.
func (c *CroppedPage) keep(b model.BBox) bool {
	switch c.mode {
	case cropWithin:
		return c.bbox.Contains(b, 0)
	case cropOutside:
		return c.bbox.Disjoint(b)
	default:
		return c.bbox.Intersects(b)
	}
}

// Chars returns the parent's chars that pass the view's predicate. Char
// geometry is never clipped.
func (c *CroppedPage) Chars() ([]model.Char, error) {
	chars, err := c.src.Chars()
	if err != nil {
		return nil, err
	}
	var out []model.Char
	for _, ch := range chars {
		if c.keep(ch.BBox) {
			out = append(out, ch)
		}
	}
	return out, nil
}

// Lines returns the parent's lines that pass the view's predicate. In crop
// mode each kept line's segment is clipped at the region's edges.
func (c *CroppedPage) Lines() ([]model.Line, error) {
	lines, err := c.src.Lines()
	if err != nil {
		return nil, err
	}
	var out []model.Line
	for _, l := range lines {
		if !c.keep(l.BBox) {
			continue
		}
		if c.mode == cropIntersect {
			p0, p1, ok := clipSegment(l.P0, l.P1, c.bbox)
			if !ok {
				continue
			}
			l.P0, l.P1 = p0, p1
			l.BBox = model.NewBBox(
				math.Min(p0.X, p1.X), math.Min(p0.Y, p1.Y),
				math.Max(p0.X, p1.X), math.Max(p0.Y, p1.Y),
			)
		}
		out = append(out, l)
	}
	return out, nil
}

// Rects returns the parent's rects that pass the view's predicate. In crop
// mode each kept rect is reduced to its intersection with the region.
func (c *CroppedPage) Rects() ([]model.Rect, error) {
	rects, err := c.src.Rects()
	if err != nil {
		return nil, err
	}
	var out []model.Rect
	for _, r := range rects {
		if !c.keep(r.BBox) {
			continue
		}
		if c.mode == cropIntersect {
			r.BBox = c.bbox.Intersection(r.BBox)
		}
		out = append(out, r)
	}
	return out, nil
}

// Curves returns the parent's curves that pass the view's predicate. Curves
// are clipped at the bbox level only; their points are left intact.
func (c *CroppedPage) Curves() ([]model.Curve, error) {
	curves, err := c.src.Curves()
	if err != nil {
		return nil, err
	}
	var out []model.Curve
	for _, cv := range curves {
		if !c.keep(cv.BBox) {
			continue
		}
		if c.mode == cropIntersect {
			cv.BBox = c.bbox.Intersection(cv.BBox)
		}
		out = append(out, cv)
	}
	return out, nil
}

// Images returns the parent's images that pass the view's predicate.
func (c *CroppedPage) Images() ([]model.Image, error) {
	images, err := c.src.Images()
	if err != nil {
		return nil, err
	}
	var out []model.Image
	for _, img := range images {
		if c.keep(img.BBox) {
			out = append(out, img)
		}
	}
	return out, nil
}

// ExtractText extracts the view's text; grouping runs over the filtered
// chars, not the parent's.
func (c *CroppedPage) ExtractText(opts TextOptions) (string, error) {
	chars, err := c.Chars()
	if err != nil {
		return "", err
	}
	return text.ExtractText(chars, opts), nil
}

// ExtractWords segments the view's chars into words.
func (c *CroppedPage) ExtractWords(opts WordOptions) ([]model.Word, error) {
	chars, err := c.Chars()
	if err != nil {
		return nil, err
	}
	return text.ExtractWords(chars, opts), nil
}

// FindTables detects tables among the view's primitives.
func (c *CroppedPage) FindTables(settings TableSettings) ([]*model.Table, error) {
	chars, err := c.Chars()
	if err != nil {
		return nil, err
	}
	lines, err := c.Lines()
	if err != nil {
		return nil, err
	}
	rects, err := c.Rects()
	if err != nil {
		return nil, err
	}
	curves, err := c.Curves()
	if err != nil {
		return nil, err
	}
	return tables.FindTables(tables.Objects{
		Chars:  chars,
		Lines:  lines,
		Rects:  rects,
		Curves: curves,
	}, settings), nil
}

// ExtractTables detects tables and returns each as its grid of cell text.
func (c *CroppedPage) ExtractTables(settings TableSettings) ([][][]string, error) {
	found, err := c.FindTables(settings)
	if err != nil {
		return nil, err
	}
	grids := make([][][]string, len(found))
	for i, t := range found {
		grids[i] = t.TextGrid()
	}
	return grids, nil
}

// Search finds every occurrence of pattern in the view's text. Reported
// char indices refer to the view's own Chars slice.
func (c *CroppedPage) Search(pattern string, opts SearchOptions) ([]SearchMatch, error) {
	chars, err := c.Chars()
	if err != nil {
		return nil, err
	}
	matches, err := search.Find(chars, pattern, opts)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		matches[i].Page = c.PageNumber()
	}
	return matches, nil
}

// Crop narrows the view to the intersection behavior over bbox.
func (c *CroppedPage) Crop(bbox model.BBox) *CroppedPage {
	return &CroppedPage{src: c, bbox: bbox, mode: cropIntersect}
}

// WithinBBox narrows the view to primitives fully contained in bbox.
func (c *CroppedPage) WithinBBox(bbox model.BBox) *CroppedPage {
	return &CroppedPage{src: c, bbox: bbox, mode: cropWithin}
}

// OutsideBBox narrows the view to primitives fully disjoint from bbox.
func (c *CroppedPage) OutsideBBox(bbox model.BBox) *CroppedPage {
	return &CroppedPage{src: c, bbox: bbox, mode: cropOutside}
}

// clipSegment clips the segment p0-p1 to box using the parametric
// (Liang-Barsky) method. ok is false when the segment lies entirely
// outside.
func clipSegment(p0, p1 model.Point, box model.BBox) (model.Point, model.Point, bool) {
	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, p0.X-box.X0) || !clip(dx, box.X1-p0.X) ||
		!clip(-dy, p0.Y-box.Top) || !clip(dy, box.Bottom-p0.Y) {
		return model.Point{}, model.Point{}, false
	}
	a := model.Point{X: p0.X + t0*dx, Y: p0.Y + t0*dy}
	b := model.Point{X: p0.X + t1*dx, Y: p0.Y + t1*dy}
	return a, b, true
}
