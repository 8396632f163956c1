// Package plumb extracts positioned text, geometry, and tables from PDF
// documents. Every coordinate it reports is in top-left page space, after
// page rotation, measured in points.
//
// Basic usage:
//
//	doc, err := plumb.OpenFile("document.pdf")
//	if err != nil {
//	    // handle error
//	}
//	defer doc.Close()
//
//	page, err := doc.Page(0)
//	if err != nil {
//	    // handle error
//	}
//	text, err := page.ExtractText(plumb.TextOptions{})
//
// Pages expose their raw primitives (Chars, Lines, Rects, Curves, Images)
// as well as grouped forms: words, text, tables, and search matches. The
// Crop, WithinBBox, and OutsideBBox methods return views restricted to a
// region, with the same operations available on the view.
package plumb

import (
	"bytes"
	"io"

	"github.com/tsawler/plumb/backend"
	"github.com/tsawler/plumb/graphicsstate"
	"github.com/tsawler/plumb/search"
	"github.com/tsawler/plumb/tables"
	"github.com/tsawler/plumb/text"
)

// Document-level sentinels, re-exported so callers can match with errors.Is
// without importing the subpackages that produce them.
var (
	// ErrParse indicates the container could not be parsed at all.
	ErrParse = backend.ErrParse
	// ErrRead indicates an I/O failure while reading the container.
	ErrRead = backend.ErrRead
	// ErrPasswordRequired indicates the document is encrypted and no
	// password was supplied.
	ErrPasswordRequired = backend.ErrPasswordRequired
	// ErrInvalidPassword indicates the supplied password was rejected.
	ErrInvalidPassword = backend.ErrInvalidPassword
	// ErrPageOutOfRange indicates a page index outside [0, NumPages).
	ErrPageOutOfRange = backend.ErrPageOutOfRange
	// ErrResourceLimit indicates a page whose form XObject graph exceeds
	// the recursion limit. Only that page is unusable.
	ErrResourceLimit = graphicsstate.ErrResourceLimit
)

// Option configures document opening.
type Option func(*openConfig)

type openConfig struct {
	password string
}

// WithPassword supplies the password for an encrypted document.
func WithPassword(password string) Option {
	return func(c *openConfig) {
		c.password = password
	}
}

// Aliases for the option types of the grouping, table, and search packages,
// so common use needs only this package.
type (
	// TextOptions controls ExtractText. See text.TextOptions.
	TextOptions = text.TextOptions
	// WordOptions controls ExtractWords. See text.WordOptions.
	WordOptions = text.WordOptions
	// TableSettings controls FindTables. See tables.Settings.
	TableSettings = tables.Settings
	// SearchOptions controls Search. See search.Options.
	SearchOptions = search.Options
	// SearchMatch is one search result. See search.Match.
	SearchMatch = search.Match
)

// Table strategies, re-exported from the tables package.
const (
	Lattice  = tables.Lattice
	Stream   = tables.Stream
	Explicit = tables.Explicit
)

// Open reads a complete document from memory.
func Open(data []byte, opts ...Option) (*Document, error) {
	return OpenReader(bytes.NewReader(data), opts...)
}

// OpenReader reads a document from rs. The reader must remain valid for the
// lifetime of the returned Document.
func OpenReader(rs io.ReadSeeker, opts ...Option) (*Document, error) {
	cfg := applyOptions(opts)
	p, err := backend.Open(rs, cfg.password)
	if err != nil {
		return nil, err
	}
	return NewDocument(p), nil
}

// OpenFile opens the document at path.
func OpenFile(path string, opts ...Option) (*Document, error) {
	cfg := applyOptions(opts)
	p, err := backend.OpenFile(path, cfg.password)
	if err != nil {
		return nil, err
	}
	return NewDocument(p), nil
}

func applyOptions(opts []Option) openConfig {
	var cfg openConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
