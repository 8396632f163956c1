package font

import (
	"testing"

	"github.com/tsawler/plumb/backend"
)

func TestSimpleFontDecode(t *testing.T) {
	rf := Resolve(&backend.Font{
		BaseFont:  "Helvetica",
		Encoding:  "WinAnsiEncoding",
		FirstChar: 65,
		Widths:    []float64{667, 667, 722},
	})

	glyphs := rf.Decode([]byte("AB C"))
	if len(glyphs) != 4 {
		t.Fatalf("expected 4 glyphs, got %d", len(glyphs))
	}
	if glyphs[0].Text != "A" || glyphs[0].Width != 667 {
		t.Errorf("glyph A: got text %q width %v", glyphs[0].Text, glyphs[0].Width)
	}
	if glyphs[2].Text != " " || !glyphs[2].IsWordSpace {
		t.Errorf("expected code 32 to be a word space, got %+v", glyphs[2])
	}
	if glyphs[3].IsWordSpace {
		t.Error("code 67 flagged as word space")
	}
	// Code 67 is past the widths array; Helvetica metrics supply C=722.
	if glyphs[3].Width != 722 {
		t.Errorf("expected standard width 722 for C, got %v", glyphs[3].Width)
	}
}

func TestDifferencesOverrideEncoding(t *testing.T) {
	rf := Resolve(&backend.Font{
		BaseFont: "Custom",
		Differences: map[int]string{
			65: "bullet",
			66: "uni20AC",
			67: "nonsense",
		},
	})

	glyphs := rf.Decode([]byte{65, 66, 67, 68})
	want := []string{"•", "€", "�", "D"}
	for i, w := range want {
		if glyphs[i].Text != w {
			t.Errorf("code %d: got %q, want %q", 65+i, glyphs[i].Text, w)
		}
	}
}

func TestStandardEncodingHighRange(t *testing.T) {
	rf := Resolve(&backend.Font{
		BaseFont: "Times-Roman",
		Encoding: "StandardEncoding",
	})

	glyphs := rf.Decode([]byte{0x27, 0xA9, 0xB7, 0xD0})
	want := []string{"’", "'", "•", "—"}
	for i, w := range want {
		if glyphs[i].Text != w {
			t.Errorf("glyph %d: got %q, want %q", i, glyphs[i].Text, w)
		}
	}
}

func TestToUnicodeTakesPriority(t *testing.T) {
	cmap := []byte(`
/CIDInit /ProcSet findresource begin
begincmap
1 begincodespacerange
<00> <FF>
endcodespacerange
2 beginbfchar
<41> <0042>
<42> <0043 0044>
endbfchar
endcmap
`)
	rf := Resolve(&backend.Font{BaseFont: "Custom", ToUnicode: cmap})

	glyphs := rf.Decode([]byte{0x41, 0x42, 0x43})
	if glyphs[0].Text != "B" {
		t.Errorf("bfchar: got %q, want B", glyphs[0].Text)
	}
	if glyphs[1].Text != "CD" {
		t.Errorf("multi-char bfchar: got %q, want CD", glyphs[1].Text)
	}
	// 0x43 has no ToUnicode entry; base encoding still applies.
	if glyphs[2].Text != "C" {
		t.Errorf("fallback: got %q, want C", glyphs[2].Text)
	}
}

func TestCompositeFontDecode(t *testing.T) {
	cmap := []byte(`
begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 beginbfrange
<0010> <0012> <0041>
endbfrange
endcmap
`)
	rf := Resolve(&backend.Font{
		BaseFont:     "NotoSansCJK",
		Composite:    true,
		ToUnicode:    cmap,
		DefaultWidth: 1000,
		CIDWidths: []backend.CIDWidthRange{
			{First: 0x10, Last: 0x12, Width: 500},
			{First: 0x20, Last: 0x22, Widths: []float64{600, 610, 620}},
		},
	})

	glyphs := rf.Decode([]byte{0x00, 0x10, 0x00, 0x12, 0x00, 0x21})
	if len(glyphs) != 3 {
		t.Fatalf("expected 3 glyphs from 6 bytes, got %d", len(glyphs))
	}
	if glyphs[0].Text != "A" || glyphs[1].Text != "C" {
		t.Errorf("bfrange decode: got %q %q, want A C", glyphs[0].Text, glyphs[1].Text)
	}
	if glyphs[0].Width != 500 {
		t.Errorf("range width: got %v, want 500", glyphs[0].Width)
	}
	if glyphs[2].Width != 610 {
		t.Errorf("array width: got %v, want 610", glyphs[2].Width)
	}
	for _, g := range glyphs {
		if g.IsWordSpace {
			t.Error("two-byte code flagged as word space")
		}
	}
}

func TestCompositeDefaultWidth(t *testing.T) {
	rf := Resolve(&backend.Font{BaseFont: "CJK", Composite: true})
	glyphs := rf.Decode([]byte{0x4E, 0x2D})
	if glyphs[0].Width != 1000 {
		t.Errorf("default width: got %v, want 1000", glyphs[0].Width)
	}
	if glyphs[0].Text != "中" {
		t.Errorf("identity text: got %q, want 中", glyphs[0].Text)
	}
}

func TestOddLengthCompositeString(t *testing.T) {
	rf := Resolve(&backend.Font{BaseFont: "CJK", Composite: true})
	glyphs := rf.Decode([]byte{0x00, 0x41, 0x42})
	if len(glyphs) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(glyphs))
	}
	if glyphs[1].Code != 0x42 {
		t.Errorf("trailing short code: got %#x, want 0x42", glyphs[1].Code)
	}
}

func TestDefaultVerticalMetrics(t *testing.T) {
	rf := Resolve(&backend.Font{BaseFont: "X"})
	if rf.Ascent != 800 || rf.Descent != -200 {
		t.Errorf("got ascent %v descent %v, want 800 -200", rf.Ascent, rf.Descent)
	}

	rf = Resolve(&backend.Font{BaseFont: "X", Ascent: 718, Descent: -207})
	if rf.Ascent != 718 || rf.Descent != -207 {
		t.Errorf("descriptor metrics overwritten: %v %v", rf.Ascent, rf.Descent)
	}
}

func TestSubsetPrefixWidths(t *testing.T) {
	rf := Resolve(&backend.Font{BaseFont: "ABCDEF+Times-Roman"})
	glyphs := rf.Decode([]byte("M"))
	if glyphs[0].Width != 889 {
		t.Errorf("subset Times M: got %v, want 889", glyphs[0].Width)
	}
}

func TestCacheReusesResolution(t *testing.T) {
	c := NewCache()
	f := &backend.Font{Ref: 7, BaseFont: "Helvetica"}

	a := c.Resolve(f)
	b := c.Resolve(f)
	if a != b {
		t.Error("expected cached font to be reused")
	}

	uncached := &backend.Font{BaseFont: "Helvetica"}
	if c.Resolve(uncached) == c.Resolve(uncached) {
		t.Error("fonts without an object number must not be cached")
	}
}

func TestGlyphNameForms(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"uni0041", "A"},
		{"u1F600", "\U0001F600"},
		{"quotesingle", "'"},
		{"a", "a"},
		{"g123456", ""},
	}
	for _, tc := range cases {
		if got := glyphNameToText(tc.name); got != tc.want {
			t.Errorf("glyphNameToText(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
