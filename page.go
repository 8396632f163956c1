package plumb

import (
	"fmt"
	"sync"

	"github.com/tsawler/plumb/backend"
	"github.com/tsawler/plumb/graphicsstate"
	"github.com/tsawler/plumb/model"
	"github.com/tsawler/plumb/search"
	"github.com/tsawler/plumb/tables"
	"github.com/tsawler/plumb/text"
)

// Page is one page of a Document. Its primitive arrays are computed once,
// on first access, by interpreting the page's content stream; they are
// never mutated afterwards and are safe for concurrent reads.
type Page struct {
	doc    *Document
	number int

	fetchOnce sync.Once
	data      *backend.PageData
	fetchErr  error

	once sync.Once
	err  error

	geom     model.PageGeometry
	chars    []model.Char
	lines    []model.Line
	rects    []model.Rect
	curves   []model.Curve
	images   []model.Image
	warnings []string
}

// PageNumber returns the 0-based page index.
func (p *Page) PageNumber() int {
	return p.number
}

// fetch loads the page's decoded data from the provider, once.
func (p *Page) fetch() (*backend.PageData, error) {
	p.fetchOnce.Do(func() {
		p.data, p.fetchErr = p.doc.provider.Page(p.number)
	})
	return p.data, p.fetchErr
}

// realize interprets the page's content stream, once. A resource-limit
// breach makes the whole page unusable; every other problem degrades into
// Warnings.
func (p *Page) realize() error {
	p.once.Do(func() {
		data, err := p.fetch()
		if err != nil {
			p.err = err
			return
		}
		offset, err := p.doc.doctopOffset(p.number)
		if err != nil {
			p.err = err
			return
		}
		p.geom = model.NewPageGeometry(data.MediaBox, data.CropBox, data.Rotate)

		in := graphicsstate.NewInterpreter(p.geom, data.Resources, p.doc.fonts)
		if err := in.Run(data.Contents); err != nil {
			p.err = fmt.Errorf("page %d: %w", p.number, err)
			return
		}
		for i := range in.Chars {
			in.Chars[i].Doctop = offset + in.Chars[i].BBox.Top
		}
		p.chars = in.Chars
		p.lines = in.Lines
		p.rects = in.Rects
		p.curves = in.Curves
		p.images = in.Images
		p.warnings = in.Warnings
	})
	return p.err
}

// Width returns the page width in points, after rotation.
func (p *Page) Width() (float64, error) {
	if err := p.realize(); err != nil {
		return 0, err
	}
	return p.geom.Width(), nil
}

// Height returns the page height in points, after rotation.
func (p *Page) Height() (float64, error) {
	if err := p.realize(); err != nil {
		return 0, err
	}
	return p.geom.Height(), nil
}

// Rotation returns the page's normalized rotation: 0, 90, 180, or 270.
func (p *Page) Rotation() (int, error) {
	if err := p.realize(); err != nil {
		return 0, err
	}
	return p.geom.Rotation(), nil
}

// Chars returns the page's characters in stream order. The slice is shared;
// callers must not modify it.
func (p *Page) Chars() ([]model.Char, error) {
	if err := p.realize(); err != nil {
		return nil, err
	}
	return p.chars, nil
}

// Lines returns the page's straight path segments.
func (p *Page) Lines() ([]model.Line, error) {
	if err := p.realize(); err != nil {
		return nil, err
	}
	return p.lines, nil
}

// Rects returns the page's axis-aligned rectangles.
func (p *Page) Rects() ([]model.Rect, error) {
	if err := p.realize(); err != nil {
		return nil, err
	}
	return p.rects, nil
}

// Curves returns the page's Bézier paths.
func (p *Page) Curves() ([]model.Curve, error) {
	if err := p.realize(); err != nil {
		return nil, err
	}
	return p.curves, nil
}

// Images returns the page's placed images.
func (p *Page) Images() ([]model.Image, error) {
	if err := p.realize(); err != nil {
		return nil, err
	}
	return p.images, nil
}

// Warnings returns the recoverable problems encountered while interpreting
// the page, one message each. An empty slice means a clean page.
func (p *Page) Warnings() ([]string, error) {
	if err := p.realize(); err != nil {
		return nil, err
	}
	return p.warnings, nil
}

// ExtractText returns the page's text: compact by default, or aligned with
// padding and blank lines when opts.Layout is set.
func (p *Page) ExtractText(opts TextOptions) (string, error) {
	chars, err := p.Chars()
	if err != nil {
		return "", err
	}
	return text.ExtractText(chars, opts), nil
}

// ExtractWords segments the page's characters into words.
func (p *Page) ExtractWords(opts WordOptions) ([]model.Word, error) {
	chars, err := p.Chars()
	if err != nil {
		return nil, err
	}
	return text.ExtractWords(chars, opts), nil
}

// FindTables detects tables on the page using the given settings.
func (p *Page) FindTables(settings TableSettings) ([]*model.Table, error) {
	if err := p.realize(); err != nil {
		return nil, err
	}
	return tables.FindTables(tables.Objects{
		Chars:  p.chars,
		Lines:  p.lines,
		Rects:  p.rects,
		Curves: p.curves,
	}, settings), nil
}

// ExtractTables detects tables and returns each as its grid of cell text,
// empty strings for empty cells.
func (p *Page) ExtractTables(settings TableSettings) ([][][]string, error) {
	found, err := p.FindTables(settings)
	if err != nil {
		return nil, err
	}
	grids := make([][][]string, len(found))
	for i, t := range found {
		grids[i] = t.TextGrid()
	}
	return grids, nil
}

// Search finds every occurrence of pattern in the page's text.
func (p *Page) Search(pattern string, opts SearchOptions) ([]SearchMatch, error) {
	chars, err := p.Chars()
	if err != nil {
		return nil, err
	}
	matches, err := search.Find(chars, pattern, opts)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		matches[i].Page = p.number
	}
	return matches, nil
}

// Crop returns a view of the page restricted to bbox: primitives
// intersecting the region are kept, with Line and Rect geometry clipped at
// the region's edges.
func (p *Page) Crop(bbox model.BBox) *CroppedPage {
	return &CroppedPage{src: p, bbox: bbox, mode: cropIntersect}
}

// WithinBBox returns a view keeping only primitives fully contained in
// bbox.
func (p *Page) WithinBBox(bbox model.BBox) *CroppedPage {
	return &CroppedPage{src: p, bbox: bbox, mode: cropWithin}
}

// OutsideBBox returns a view keeping only primitives fully disjoint from
// bbox.
func (p *Page) OutsideBBox(bbox model.BBox) *CroppedPage {
	return &CroppedPage{src: p, bbox: bbox, mode: cropOutside}
}
