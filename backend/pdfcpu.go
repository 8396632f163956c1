package backend

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pcmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/plumb/model"
)

// Resource graphs in the wild contain cycles; this bounds resolution.
const maxResourceDepth = 16

// PDFCPUBackend is a Provider backed by github.com/pdfcpu/pdfcpu. It handles
// container parsing, object and stream decoding, and password-gated
// decryption; the extraction pipeline sees only resolved page data.
type PDFCPUBackend struct {
	ctx  *pcmodel.Context
	file *os.File // set when we own the underlying file

	// mu serializes all access to ctx and xobjMemo. Dereferencing and
	// sd.Decode mutate shared pdfcpu objects, so concurrent Page calls
	// must not race through them.
	mu       sync.Mutex
	xobjMemo map[int]*XObject
}

// Ensure PDFCPUBackend implements Provider.
var _ Provider = (*PDFCPUBackend)(nil)

// Open reads a document from rs. password may be empty; an encrypted
// document without the right password fails with ErrPasswordRequired or
// ErrInvalidPassword.
func Open(rs io.ReadSeeker, password string) (*PDFCPUBackend, error) {
	conf := pcmodel.NewDefaultConfiguration()
	conf.ValidationMode = pcmodel.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, classifyOpenError(err, password)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return &PDFCPUBackend{
		ctx:      ctx,
		xobjMemo: make(map[int]*XObject),
	}, nil
}

// OpenFile opens a document from a file path. The returned backend owns the
// file handle and releases it on Close.
func OpenFile(path, password string) (*PDFCPUBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	b, err := Open(f, password)
	if err != nil {
		f.Close()
		return nil, err
	}
	b.file = f
	return b, nil
}

// classifyOpenError maps container open failures onto the backend error
// taxonomy. pdfcpu reports password problems as plain errors, so the
// mapping goes by message: any mention of passwords or encryption means the
// document was openable but locked.
func classifyOpenError(err error, password string) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") || strings.Contains(msg, "decrypt") {
		if password == "" {
			return fmt.Errorf("%w: %v", ErrPasswordRequired, err)
		}
		return fmt.Errorf("%w: %v", ErrInvalidPassword, err)
	}
	return fmt.Errorf("%w: %v", ErrParse, err)
}

// Close releases the underlying file when this backend owns one.
func (b *PDFCPUBackend) Close() error {
	if b.file != nil {
		return b.file.Close()
	}
	return nil
}

// NumPages returns the number of pages in the document.
func (b *PDFCPUBackend) NumPages() int {
	return b.ctx.PageCount
}

// Page resolves the 0-based page index into geometry, decoded content, and
// the page's resource scope.
func (b *PDFCPUBackend) Page(index int) (*PageData, error) {
	if index < 0 || index >= b.ctx.PageCount {
		return nil, fmt.Errorf("%w: %d", ErrPageOutOfRange, index)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	pageNr := index + 1

	d, _, inh, err := b.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrParse, index, err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: page %d: missing page dict", ErrParse, index)
	}

	pd := &PageData{
		MediaBox:  [4]float64{0, 0, 612, 792}, // US Letter fallback
		Resources: &Resources{Fonts: map[string]*Font{}, XObjects: map[string]*XObject{}},
	}

	var resources types.Dict
	if inh != nil {
		if inh.MediaBox != nil {
			pd.MediaBox = rectToArray(inh.MediaBox)
		}
		if inh.CropBox != nil {
			cb := rectToArray(inh.CropBox)
			pd.CropBox = &cb
		}
		pd.Rotate = inh.Rotate
		resources = inh.Resources
	}

	if o, found := d.Find("Contents"); found {
		pd.Contents = b.contentBytes(o)
	}

	if resources != nil {
		pd.Resources = b.resolveResources(resources, 0)
	}

	return pd, nil
}

// Metadata reads the document information dictionary.
func (b *PDFCPUBackend) Metadata() (model.Metadata, error) {
	var md model.Metadata

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx.Info == nil {
		return md, nil
	}
	info, err := b.ctx.DereferenceDict(*b.ctx.Info)
	if err != nil || info == nil {
		return md, nil
	}

	md.Title = b.stringEntry(info, "Title")
	md.Author = b.stringEntry(info, "Author")
	md.Subject = b.stringEntry(info, "Subject")
	md.Keywords = b.stringEntry(info, "Keywords")
	md.Creator = b.stringEntry(info, "Creator")
	md.Producer = b.stringEntry(info, "Producer")

	if s := b.stringEntry(info, "CreationDate"); s != "" {
		if t, ok := types.DateTime(s, true); ok {
			md.CreationDate = t
		}
	}
	if s := b.stringEntry(info, "ModDate"); s != "" {
		if t, ok := types.DateTime(s, true); ok {
			md.ModDate = t
		}
	}

	return md, nil
}

// Bookmarks returns the outline tree. A malformed outline yields an empty
// tree rather than an error; bookmarks are advisory.
func (b *PDFCPUBackend) Bookmarks() ([]model.Bookmark, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bms, err := pdfcpu.Bookmarks(b.ctx)
	if err != nil {
		return nil, nil
	}
	return convertBookmarks(bms), nil
}

func convertBookmarks(in []pdfcpu.Bookmark) []model.Bookmark {
	out := make([]model.Bookmark, 0, len(in))
	for _, bm := range in {
		out = append(out, model.Bookmark{
			Title:    bm.Title,
			Page:     bm.PageFrom - 1,
			Children: convertBookmarks(bm.Kids),
		})
	}
	return out
}

// contentBytes decodes and concatenates the page's content stream(s).
// Multiple streams are treated as one program, separated by newlines.
func (b *PDFCPUBackend) contentBytes(o types.Object) []byte {
	o, err := b.ctx.Dereference(o)
	if err != nil || o == nil {
		return nil
	}

	switch v := o.(type) {
	case types.Array:
		var buf bytes.Buffer
		for _, el := range v {
			if data := b.streamBytes(el); data != nil {
				buf.Write(data)
				buf.WriteByte('\n')
			}
		}
		return buf.Bytes()
	default:
		return b.streamBytes(o)
	}
}

// streamBytes decodes a single stream object, returning nil on failure.
func (b *PDFCPUBackend) streamBytes(o types.Object) []byte {
	sd, _, err := b.ctx.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		return nil
	}
	if err := sd.Decode(); err != nil {
		return nil
	}
	return sd.Content
}

// resolveResources builds the resource scope visible to a content stream.
func (b *PDFCPUBackend) resolveResources(d types.Dict, depth int) *Resources {
	res := &Resources{
		Fonts:    map[string]*Font{},
		XObjects: map[string]*XObject{},
	}
	if depth > maxResourceDepth {
		return res
	}

	if fd := b.derefDict(d["Font"]); fd != nil {
		for name, o := range fd {
			if f := b.resolveFont(o); f != nil {
				res.Fonts[name] = f
			}
		}
	}

	if xd := b.derefDict(d["XObject"]); xd != nil {
		for name, o := range xd {
			if x := b.resolveXObject(o, depth); x != nil {
				res.XObjects[name] = x
			}
		}
	}

	return res
}

// resolveFont decodes one font dictionary into a backend Font.
func (b *PDFCPUBackend) resolveFont(o types.Object) *Font {
	ref := objectNumber(o)
	d := b.derefDict(o)
	if d == nil {
		return nil
	}

	f := &Font{
		Ref:          ref,
		Subtype:      b.nameValue(d["Subtype"]),
		BaseFont:     b.nameValue(d["BaseFont"]),
		DefaultWidth: 1000,
		Ascent:       800,
		Descent:      -200,
	}

	switch enc := b.deref(d["Encoding"]).(type) {
	case types.Name:
		f.Encoding = enc.Value()
	case types.Dict:
		f.Encoding = b.nameValue(enc["BaseEncoding"])
		f.Differences = b.parseDifferences(enc["Differences"])
	}

	if fc, ok := b.intValue(d["FirstChar"]); ok {
		f.FirstChar = fc
	}
	if arr := b.derefArray(d["Widths"]); arr != nil {
		f.Widths = make([]float64, 0, len(arr))
		for _, w := range arr {
			v, _ := b.floatValue(w)
			f.Widths = append(f.Widths, v)
		}
	}

	if desc := b.derefDict(d["FontDescriptor"]); desc != nil {
		b.readDescriptor(f, desc)
	}

	if tu := b.streamBytes(d["ToUnicode"]); tu != nil {
		f.ToUnicode = tu
	}

	if f.Subtype == "Type0" {
		b.resolveType0(f, d)
	}

	return f
}

// readDescriptor fills descriptor-derived metrics.
func (b *PDFCPUBackend) readDescriptor(f *Font, desc types.Dict) {
	if v, ok := b.floatValue(desc["MissingWidth"]); ok {
		f.MissingWidth = v
	}
	if v, ok := b.floatValue(desc["Ascent"]); ok && v != 0 {
		f.Ascent = v
	}
	if v, ok := b.floatValue(desc["Descent"]); ok && v != 0 {
		f.Descent = v
	}
}

// resolveType0 fills composite-font fields from the descendant CIDFont.
func (b *PDFCPUBackend) resolveType0(f *Font, d types.Dict) {
	f.Composite = true
	f.Vertical = strings.HasSuffix(f.Encoding, "-V")

	arr := b.derefArray(d["DescendantFonts"])
	if len(arr) == 0 {
		return
	}
	cid := b.derefDict(arr[0])
	if cid == nil {
		return
	}

	if si := b.derefDict(cid["CIDSystemInfo"]); si != nil {
		f.CIDOrdering = b.stringEntry(si, "Ordering")
	}
	if v, ok := b.floatValue(cid["DW"]); ok {
		f.DefaultWidth = v
	}
	if desc := b.derefDict(cid["FontDescriptor"]); desc != nil {
		b.readDescriptor(f, desc)
	}
	f.CIDWidths = b.parseCIDWidths(cid["W"])
}

// parseCIDWidths parses a W array: c [w1 w2 ...] entries or c_first c_last w
// triplets, freely mixed.
func (b *PDFCPUBackend) parseCIDWidths(o types.Object) []CIDWidthRange {
	arr := b.derefArray(o)
	if arr == nil {
		return nil
	}

	var out []CIDWidthRange
	i := 0
	for i < len(arr) {
		first, ok := b.intValue(arr[i])
		if !ok {
			i++
			continue
		}
		i++
		if i >= len(arr) {
			break
		}

		if inner := b.derefArray(arr[i]); inner != nil {
			ws := make([]float64, 0, len(inner))
			for _, w := range inner {
				v, _ := b.floatValue(w)
				ws = append(ws, v)
			}
			out = append(out, CIDWidthRange{First: first, Widths: ws})
			i++
			continue
		}

		last, ok := b.intValue(arr[i])
		if !ok {
			i++
			continue
		}
		i++
		if i >= len(arr) {
			break
		}
		w, _ := b.floatValue(arr[i])
		i++
		out = append(out, CIDWidthRange{First: first, Last: last, Width: w})
	}
	return out
}

// parseDifferences parses an Encoding Differences array: an integer code
// followed by glyph names, repeated.
func (b *PDFCPUBackend) parseDifferences(o types.Object) map[int]string {
	arr := b.derefArray(o)
	if arr == nil {
		return nil
	}

	diffs := make(map[int]string)
	code := 0
	for _, el := range arr {
		switch v := b.deref(el).(type) {
		case types.Integer:
			code = v.Value()
		case types.Name:
			diffs[code] = v.Value()
			code++
		}
	}
	return diffs
}

// resolveXObject decodes one XObject stream into a backend XObject, memoized
// by object number so shared and self-referential forms resolve once.
func (b *PDFCPUBackend) resolveXObject(o types.Object, depth int) *XObject {
	if depth > maxResourceDepth {
		return nil
	}

	ref := objectNumber(o)
	if ref != 0 {
		if memo, ok := b.xobjMemo[ref]; ok {
			return memo
		}
	}

	sd, _, err := b.ctx.DereferenceStreamDict(o)
	if err != nil || sd == nil {
		return nil
	}

	x := &XObject{
		Ref:    ref,
		Matrix: [6]float64{1, 0, 0, 1, 0, 0},
	}
	// Publish the memo entry before recursing into sub-resources so a
	// self-referential form terminates here and is caught by the
	// interpreter's visited set at run time.
	if ref != 0 {
		b.xobjMemo[ref] = x
	}

	subtype := b.nameValue(sd.Dict["Subtype"])
	if subtype == "Form" {
		x.Form = true
		if err := sd.Decode(); err == nil {
			x.Content = sd.Content
		}
		if arr := b.derefArray(sd.Dict["Matrix"]); len(arr) == 6 {
			for i, el := range arr {
				v, _ := b.floatValue(el)
				x.Matrix[i] = v
			}
		}
		if arr := b.derefArray(sd.Dict["BBox"]); len(arr) == 4 {
			var bbox [4]float64
			for i, el := range arr {
				v, _ := b.floatValue(el)
				bbox[i] = v
			}
			x.BBox = &bbox
		}
		if rd := b.derefDict(sd.Dict["Resources"]); rd != nil {
			x.Resources = b.resolveResources(rd, depth+1)
		}
		return x
	}

	// Image XObject: record dimensions only, never pixel data.
	if w, ok := b.intValue(sd.Dict["Width"]); ok {
		x.Width = w
	}
	if h, ok := b.intValue(sd.Dict["Height"]); ok {
		x.Height = h
	}
	return x
}

// Dereference helpers. All of them swallow errors: a missing or malformed
// entry degrades to absence, in keeping with best-effort extraction.

func (b *PDFCPUBackend) deref(o types.Object) types.Object {
	if o == nil {
		return nil
	}
	v, err := b.ctx.Dereference(o)
	if err != nil {
		return nil
	}
	return v
}

func (b *PDFCPUBackend) derefDict(o types.Object) types.Dict {
	if d, ok := b.deref(o).(types.Dict); ok {
		return d
	}
	return nil
}

func (b *PDFCPUBackend) derefArray(o types.Object) types.Array {
	if a, ok := b.deref(o).(types.Array); ok {
		return a
	}
	return nil
}

func (b *PDFCPUBackend) nameValue(o types.Object) string {
	if n, ok := b.deref(o).(types.Name); ok {
		return n.Value()
	}
	return ""
}

func (b *PDFCPUBackend) intValue(o types.Object) (int, bool) {
	switch v := b.deref(o).(type) {
	case types.Integer:
		return v.Value(), true
	case types.Float:
		return int(v.Value()), true
	}
	return 0, false
}

func (b *PDFCPUBackend) floatValue(o types.Object) (float64, bool) {
	switch v := b.deref(o).(type) {
	case types.Integer:
		return float64(v.Value()), true
	case types.Float:
		return v.Value(), true
	}
	return 0, false
}

// stringEntry decodes a text string entry (literal or hex) from a dict.
func (b *PDFCPUBackend) stringEntry(d types.Dict, key string) string {
	switch v := b.deref(d[key]).(type) {
	case types.StringLiteral:
		if s, err := types.StringLiteralToString(v); err == nil {
			return s
		}
	case types.HexLiteral:
		if s, err := types.HexLiteralToString(v); err == nil {
			return s
		}
	}
	return ""
}

// objectNumber returns the object number behind an indirect reference, or 0
// for direct objects.
func objectNumber(o types.Object) int {
	if ref, ok := o.(types.IndirectRef); ok {
		return ref.ObjectNumber.Value()
	}
	return 0
}

func rectToArray(r *types.Rectangle) [4]float64 {
	return [4]float64{r.LL.X, r.LL.Y, r.UR.X, r.UR.Y}
}
