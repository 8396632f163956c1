package backend

import (
	"errors"

	"github.com/tsawler/plumb/model"
)

var (
	// ErrParse indicates the container could not be parsed at all.
	ErrParse = errors.New("backend: cannot parse document")
	// ErrRead indicates an I/O failure while reading the container.
	ErrRead = errors.New("backend: read failure")
	// ErrPasswordRequired indicates the document is encrypted and no
	// password was supplied.
	ErrPasswordRequired = errors.New("backend: password required")
	// ErrInvalidPassword indicates the supplied password was rejected.
	ErrInvalidPassword = errors.New("backend: invalid password")
	// ErrPageOutOfRange indicates a page index outside [0, NumPages).
	ErrPageOutOfRange = errors.New("backend: page index out of range")
)

// Provider supplies decoded document objects to the extraction pipeline.
// Implementations must be safe for concurrent Page calls once opened.
type Provider interface {
	// NumPages returns the number of pages in the document.
	NumPages() int

	// Page returns the resolved data for the 0-based page index:
	// geometry attributes, decoded content-stream bytes, and the
	// resolved resource scope.
	Page(index int) (*PageData, error)

	// Metadata returns the document information dictionary entries.
	Metadata() (model.Metadata, error)

	// Bookmarks returns the document outline tree, or an empty slice
	// when the document has none.
	Bookmarks() ([]model.Bookmark, error)

	// Close releases the underlying container.
	Close() error
}

// PageData is everything the interpreter needs to process one page.
type PageData struct {
	// MediaBox is [x0 y0 x1 y1] in PDF user space.
	MediaBox [4]float64
	// CropBox is the optional visible viewport, nil when absent.
	CropBox *[4]float64
	// Rotate is the raw /Rotate value in degrees.
	Rotate int
	// Contents is the decoded, concatenated content stream.
	Contents []byte
	// Resources is the page's resolved resource scope. Never nil.
	Resources *Resources
}

// Resources is a resolved resource dictionary scope: the fonts and XObjects
// visible to a content stream. Form XObjects carry their own nested scope.
type Resources struct {
	Fonts    map[string]*Font
	XObjects map[string]*XObject
}

// Lookup helpers return nil when the name is not in scope.

// Font returns the font resource with the given name, or nil.
func (r *Resources) Font(name string) *Font {
	if r == nil {
		return nil
	}
	return r.Fonts[name]
}

// XObject returns the XObject resource with the given name, or nil.
func (r *Resources) XObject(name string) *XObject {
	if r == nil {
		return nil
	}
	return r.XObjects[name]
}

// Font is a decoded font dictionary. Widths and vertical metrics use glyph
// space units (1000 per em) throughout.
type Font struct {
	// Ref is the font object number, used as cache identity. 0 means the
	// font dictionary was inlined and has no stable identity.
	Ref int

	Subtype  string
	BaseFont string

	// Simple-font encoding: base encoding name ("" when absent) plus an
	// optional Differences table mapping codes to glyph names.
	Encoding    string
	Differences map[int]string

	// Simple-font widths, indexed from FirstChar.
	FirstChar    int
	Widths       []float64
	MissingWidth float64

	// Vertical metrics from the font descriptor, glyph space.
	Ascent  float64
	Descent float64

	// ToUnicode holds the raw decoded CMap stream, nil when absent.
	ToUnicode []byte

	// Composite (Type0) font fields.
	Composite    bool
	CIDOrdering  string
	DefaultWidth float64 // DW; 1000 when unset
	CIDWidths    []CIDWidthRange
	Vertical     bool // Identity-V or a -V predefined CMap
}

// CIDWidthRange is one entry of a composite font's W array: either a single
// width for [First, Last], or consecutive per-CID widths starting at First.
type CIDWidthRange struct {
	First  int
	Last   int
	Width  float64
	Widths []float64
}

// WidthForCID returns the advance width for a CID in glyph space and whether
// the range covers that CID.
func (r CIDWidthRange) WidthForCID(cid int) (float64, bool) {
	if len(r.Widths) > 0 {
		if cid >= r.First && cid < r.First+len(r.Widths) {
			return r.Widths[cid-r.First], true
		}
		return 0, false
	}
	if cid >= r.First && cid <= r.Last {
		return r.Width, true
	}
	return 0, false
}

// XObject is a decoded external object: a form (nested content stream with
// its own resource scope) or an image. Image pixel data is never decoded.
type XObject struct {
	// Ref is the object number, used by the interpreter's visited set to
	// bound self-referential form graphs.
	Ref  int
	Form bool

	// Form fields.
	Content   []byte
	Matrix    [6]float64
	BBox      *[4]float64
	Resources *Resources

	// Image fields: intrinsic dimensions in samples.
	Width  int
	Height int
}
