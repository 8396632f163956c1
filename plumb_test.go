package plumb

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tsawler/plumb/backend"
	"github.com/tsawler/plumb/model"
)

// fakeProvider serves hand-built pages, keeping the facade tests
// independent of container parsing.
type fakeProvider struct {
	pages []*backend.PageData
	meta  model.Metadata
	marks []model.Bookmark
}

func (f *fakeProvider) NumPages() int { return len(f.pages) }

func (f *fakeProvider) Page(i int) (*backend.PageData, error) {
	if i < 0 || i >= len(f.pages) {
		return nil, backend.ErrPageOutOfRange
	}
	return f.pages[i], nil
}

func (f *fakeProvider) Metadata() (model.Metadata, error)    { return f.meta, nil }
func (f *fakeProvider) Bookmarks() ([]model.Bookmark, error) { return f.marks, nil }
func (f *fakeProvider) Close() error                         { return nil }

// courierPage wraps a content stream in a US Letter page whose only
// resource is a Courier font, so every glyph is 600/1000 em wide and char
// positions come out as round numbers.
func courierPage(content string) *backend.PageData {
	return &backend.PageData{
		MediaBox: [4]float64{0, 0, 612, 792},
		Contents: []byte(content),
		Resources: &backend.Resources{
			Fonts: map[string]*backend.Font{
				"F1": {BaseFont: "Courier"},
			},
		},
	}
}

// helloWorldPage lays out "Hello World" as two words with a 4pt gap, just
// over the default word tolerance.
func helloWorldPage() *backend.PageData {
	return courierPage("BT /F1 12 Tf 72 720 Td (Hello) Tj 40 0 Td (World) Tj ET")
}

func newDoc(pages ...*backend.PageData) *Document {
	return NewDocument(&fakeProvider{pages: pages})
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestHelloWorldWords(t *testing.T) {
	doc := newDoc(helloWorldPage())
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	words, err := page.ExtractWords(WordOptions{})
	if err != nil {
		t.Fatalf("ExtractWords: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Text != "Hello" || words[1].Text != "World" {
		t.Fatalf("got %q and %q", words[0].Text, words[1].Text)
	}
	if !near(words[0].BBox.X0, 72) {
		t.Errorf("Hello x0: got %v, want 72", words[0].BBox.X0)
	}
	if !near(words[1].BBox.X0, 112) {
		t.Errorf("World x0: got %v, want 112", words[1].BBox.X0)
	}

	text, err := page.ExtractText(TextOptions{})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "Hello World" {
		t.Errorf("text: got %q", text)
	}
}

func TestExtractWordsIdempotent(t *testing.T) {
	doc := newDoc(helloWorldPage())
	page, _ := doc.Page(0)

	first, err := page.ExtractWords(WordOptions{})
	if err != nil {
		t.Fatalf("ExtractWords: %v", err)
	}
	second, err := page.ExtractWords(WordOptions{})
	if err != nil {
		t.Fatalf("ExtractWords: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated extraction differs")
	}
}

func TestCharsWithinPageBounds(t *testing.T) {
	doc := newDoc(helloWorldPage())
	page, _ := doc.Page(0)
	chars, err := page.Chars()
	if err != nil {
		t.Fatalf("Chars: %v", err)
	}
	w, _ := page.Width()
	h, _ := page.Height()
	for i, c := range chars {
		if c.BBox.X0 < 0 || c.BBox.X1 > w || c.BBox.Top < 0 || c.BBox.Bottom > h {
			t.Errorf("char %d out of bounds: %+v", i, c.BBox)
		}
	}
}

func TestDoctopMonotonic(t *testing.T) {
	doc := newDoc(helloWorldPage(), helloWorldPage())

	var doctops []float64
	for i := 0; i < doc.NumPages(); i++ {
		page, err := doc.Page(i)
		if err != nil {
			t.Fatalf("Page %d: %v", i, err)
		}
		chars, err := page.Chars()
		if err != nil {
			t.Fatalf("Chars %d: %v", i, err)
		}
		for _, c := range chars {
			doctops = append(doctops, c.Doctop)
		}
	}
	for i := 1; i < len(doctops); i++ {
		if doctops[i] < doctops[i-1] {
			t.Fatalf("doctop decreased at %d: %v -> %v", i, doctops[i-1], doctops[i])
		}
	}
	// The second page's doctops sit one page height below the first's.
	if !near(doctops[10], doctops[0]+792) {
		t.Errorf("second page doctop: got %v, want %v", doctops[10], doctops[0]+792)
	}
}

func TestEmptyPage(t *testing.T) {
	doc := newDoc(courierPage(""))
	page, _ := doc.Page(0)

	chars, err := page.Chars()
	if err != nil {
		t.Fatalf("Chars: %v", err)
	}
	if len(chars) != 0 {
		t.Errorf("expected no chars, got %d", len(chars))
	}
	text, err := page.ExtractText(TextOptions{})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestPageOutOfRange(t *testing.T) {
	doc := newDoc(helloWorldPage())
	if _, err := doc.Page(1); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange, got %v", err)
	}
	if _, err := doc.Page(-1); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("expected ErrPageOutOfRange, got %v", err)
	}
}

func TestMetadataAndBookmarks(t *testing.T) {
	doc := NewDocument(&fakeProvider{
		pages: []*backend.PageData{helloWorldPage()},
		meta:  model.Metadata{Title: "Report", Author: "QA"},
		marks: []model.Bookmark{{Title: "Intro", Page: 0}},
	})

	meta, err := doc.Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.Title != "Report" || meta.Author != "QA" {
		t.Errorf("metadata: got %+v", meta)
	}
	marks, err := doc.Bookmarks()
	if err != nil {
		t.Fatalf("Bookmarks: %v", err)
	}
	if len(marks) != 1 || marks[0].Title != "Intro" {
		t.Errorf("bookmarks: got %+v", marks)
	}
}

func TestExtractAllText(t *testing.T) {
	doc := newDoc(
		courierPage("BT /F1 12 Tf 72 720 Td (first) Tj ET"),
		courierPage("BT /F1 12 Tf 72 720 Td (second) Tj ET"),
	)
	texts, err := doc.ExtractAllText(context.Background(), TextOptions{})
	if err != nil {
		t.Fatalf("ExtractAllText: %v", err)
	}
	if want := []string{"first", "second"}; !reflect.DeepEqual(texts, want) {
		t.Errorf("got %v, want %v", texts, want)
	}
}

func TestSearchScenario(t *testing.T) {
	doc := newDoc(helloWorldPage())
	page, _ := doc.Page(0)

	matches, err := page.Search("World", SearchOptions{Literal: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Page != 0 {
		t.Errorf("page: got %d", m.Page)
	}
	if want := []int{5, 6, 7, 8, 9}; !reflect.DeepEqual(m.CharIndices, want) {
		t.Errorf("char indices: got %v, want %v", m.CharIndices, want)
	}

	words, _ := page.ExtractWords(WordOptions{})
	if m.BBox != words[1].BBox {
		t.Errorf("match bbox %+v differs from World word bbox %+v", m.BBox, words[1].BBox)
	}
}

func TestResourceLimitAbortsOnlyThatPage(t *testing.T) {
	// A form XObject whose content invokes itself.
	xo := &backend.XObject{
		Ref:     9,
		Form:    true,
		Content: []byte("/X Do"),
		Matrix:  [6]float64{1, 0, 0, 1, 0, 0},
	}
	xo.Resources = &backend.Resources{XObjects: map[string]*backend.XObject{"X": xo}}

	bad := &backend.PageData{
		MediaBox:  [4]float64{0, 0, 612, 792},
		Contents:  []byte("/X Do"),
		Resources: &backend.Resources{XObjects: map[string]*backend.XObject{"X": xo}},
	}
	doc := newDoc(bad, helloWorldPage())

	page, _ := doc.Page(0)
	if _, err := page.Chars(); !errors.Is(err, ErrResourceLimit) {
		t.Errorf("expected ErrResourceLimit, got %v", err)
	}

	good, _ := doc.Page(1)
	text, err := good.ExtractText(TextOptions{})
	if err != nil {
		t.Fatalf("unaffected page failed: %v", err)
	}
	if text != "Hello World" {
		t.Errorf("unaffected page text: got %q", text)
	}
}

func TestCropViews(t *testing.T) {
	doc := newDoc(helloWorldPage())
	page, _ := doc.Page(0)

	// The World word spans x 112..148 on the only text row.
	region := model.BBox{X0: 110, Top: 50, X1: 200, Bottom: 90}

	within, err := page.WithinBBox(region).ExtractText(TextOptions{})
	if err != nil {
		t.Fatalf("within: %v", err)
	}
	if within != "World" {
		t.Errorf("within text: got %q", within)
	}

	outside, err := page.OutsideBBox(region).ExtractText(TextOptions{})
	if err != nil {
		t.Fatalf("outside: %v", err)
	}
	if outside != "Hello" {
		t.Errorf("outside text: got %q", outside)
	}

	// A search on the view indexes the view's chars, not the page's.
	matches, err := page.WithinBBox(region).Search("World", SearchOptions{Literal: true})
	if err != nil {
		t.Fatalf("view search: %v", err)
	}
	if len(matches) != 1 || !reflect.DeepEqual(matches[0].CharIndices, []int{0, 1, 2, 3, 4}) {
		t.Errorf("view search: got %+v", matches)
	}
}

func TestCropClipsLineGeometry(t *testing.T) {
	doc := newDoc(courierPage("0 700 m 200 700 l S"))
	page, _ := doc.Page(0)

	crop := page.Crop(model.BBox{X0: 50, Top: 0, X1: 150, Bottom: 792})
	lines, err := crop.Lines()
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	l := lines[0]
	if !near(l.P0.X, 50) || !near(l.P1.X, 150) {
		t.Errorf("clipped endpoints: got %v and %v", l.P0.X, l.P1.X)
	}
	if !near(l.P0.Y, 92) {
		t.Errorf("line y: got %v, want 92", l.P0.Y)
	}

	// Fully outside the region: dropped entirely.
	empty, err := page.Crop(model.BBox{X0: 300, Top: 0, X1: 400, Bottom: 50}).Lines()
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no lines, got %d", len(empty))
	}
}

func TestNestedViews(t *testing.T) {
	doc := newDoc(helloWorldPage())
	page, _ := doc.Page(0)

	// Narrow a crop of the whole text row down to just the first word.
	inner := page.Crop(model.BBox{X0: 0, Top: 0, X1: 612, Bottom: 792}).
		WithinBBox(model.BBox{X0: 70, Top: 50, X1: 110, Bottom: 90})
	text, err := inner.ExtractText(TextOptions{})
	if err != nil {
		t.Fatalf("nested view: %v", err)
	}
	if text != "Hello" {
		t.Errorf("nested view text: got %q", text)
	}
}

func TestLatticeTableEndToEnd(t *testing.T) {
	content := "72 580 60 20 re 132 580 60 20 re 72 600 60 20 re 132 600 60 20 re S " +
		"BT /F1 12 Tf 99 607 Td (A) Tj ET " +
		"BT /F1 12 Tf 159 607 Td (B) Tj ET " +
		"BT /F1 12 Tf 99 587 Td (C) Tj ET " +
		"BT /F1 12 Tf 159 587 Td (D) Tj ET"
	doc := newDoc(courierPage(content))
	page, _ := doc.Page(0)

	found, err := page.FindTables(TableSettings{})
	if err != nil {
		t.Fatalf("FindTables: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 table, got %d", len(found))
	}
	if found[0].Accuracy() != 1.0 {
		t.Errorf("accuracy: got %v", found[0].Accuracy())
	}

	grids, err := page.ExtractTables(TableSettings{})
	if err != nil {
		t.Fatalf("ExtractTables: %v", err)
	}
	want := [][]string{{"A", "B"}, {"C", "D"}}
	if !reflect.DeepEqual(grids[0], want) {
		t.Errorf("grid: got %v, want %v", grids[0], want)
	}

	// Round trip: the grid equals the text found inside each cell bbox.
	for i, row := range found[0].Rows {
		for j, cell := range row {
			cellText, err := page.WithinBBox(cell.BBox).ExtractText(TextOptions{})
			if err != nil {
				t.Fatalf("cell text: %v", err)
			}
			if cellText != want[i][j] {
				t.Errorf("cell %d,%d: got %q, want %q", i, j, cellText, want[i][j])
			}
		}
	}
}
