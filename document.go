package plumb

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/plumb/backend"
	"github.com/tsawler/plumb/font"
	"github.com/tsawler/plumb/model"
)

// Document is an open PDF document. Pages are realized lazily: nothing is
// interpreted until a page's content is first requested, and each page is
// interpreted at most once.
type Document struct {
	provider backend.Provider
	fonts    *font.Cache
	pages    []*Page

	offsetsOnce sync.Once
	offsets     []float64
	offsetsErr  error
}

// NewDocument wraps an already-open provider. Most callers use Open,
// OpenReader, or OpenFile instead; NewDocument exists for custom providers.
// The Document takes ownership of the provider and closes it on Close.
func NewDocument(p backend.Provider) *Document {
	d := &Document{
		provider: p,
		fonts:    font.NewCache(),
	}
	d.pages = make([]*Page, p.NumPages())
	for i := range d.pages {
		d.pages[i] = &Page{doc: d, number: i}
	}
	return d
}

// Close releases the underlying document.
func (d *Document) Close() error {
	return d.provider.Close()
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int {
	return len(d.pages)
}

// Page returns the 0-based page. The page's content is not interpreted
// until one of its accessors is called.
func (d *Document) Page(index int) (*Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d of %d: %w", index, len(d.pages), ErrPageOutOfRange)
	}
	return d.pages[index], nil
}

// Metadata returns the document information entries. Absent entries are
// empty strings.
func (d *Document) Metadata() (model.Metadata, error) {
	return d.provider.Metadata()
}

// Bookmarks returns the document outline tree, empty when the document has
// none.
func (d *Document) Bookmarks() ([]model.Bookmark, error) {
	return d.provider.Bookmarks()
}

// ExtractAllText extracts every page's text concurrently and returns the
// results in page order. Page-level failures abort the whole call; use
// per-page ExtractText to tolerate individual bad pages.
func (d *Document) ExtractAllText(ctx context.Context, opts TextOptions) ([]string, error) {
	out := make([]string, len(d.pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range d.pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := p.ExtractText(opts)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// doctopOffset returns the sum of the heights of the pages before index,
// the amount added to a char's Top to produce its Doctop. The offsets are
// computed in a single sequential pass the first time any page needs them.
func (d *Document) doctopOffset(index int) (float64, error) {
	d.offsetsOnce.Do(func() {
		d.offsets = make([]float64, len(d.pages))
		sum := 0.0
		for i, p := range d.pages {
			d.offsets[i] = sum
			data, err := p.fetch()
			if err != nil {
				d.offsetsErr = fmt.Errorf("page %d geometry: %w", i, err)
				return
			}
			sum += model.NewPageGeometry(data.MediaBox, data.CropBox, data.Rotate).Height()
		}
	})
	if d.offsetsErr != nil {
		return 0, d.offsetsErr
	}
	return d.offsets[index], nil
}
