package font

import (
	"github.com/tsawler/plumb/backend"
)

// Glyph is one decoded character code from a shown string.
type Glyph struct {
	// Code is the character code as read from the string operand. For
	// composite fonts this is the CID after codespace segmentation.
	Code int
	// Text is the Unicode text the code maps to, NFC-normalized. The
	// replacement character U+FFFD marks codes with no known mapping.
	Text string
	// Width is the glyph advance in glyph space units (1000 per em).
	Width float64
	// IsWordSpace reports whether the code was the single-byte code 32,
	// which is the only code word spacing (Tw) applies to.
	IsWordSpace bool
}

// ResolvedFont is a font dictionary folded down to what text extraction
// needs: a code-to-text mapping, advance widths, and vertical metrics.
type ResolvedFont struct {
	Name      string
	Ref       int
	Composite bool
	Vertical  bool

	// Ascent and Descent are in glyph space units. When the descriptor
	// carries neither, 800/-200 keep the glyph box one em tall.
	Ascent  float64
	Descent float64

	toUnicode    *CMap
	base         *[256]string
	diffs        map[int]string
	firstChar    int
	widths       []float64
	missingWidth float64
	defaultWidth float64
	cidWidths    []backend.CIDWidthRange
	std          map[rune]float64
	codeBytes    int
}

// Resolve folds a raw font dictionary into a ResolvedFont. It never
// fails: missing pieces degrade to replacement text and fallback widths.
func Resolve(f *backend.Font) *ResolvedFont {
	rf := &ResolvedFont{
		Name:         f.BaseFont,
		Ref:          f.Ref,
		Composite:    f.Composite,
		Vertical:     f.Vertical,
		Ascent:       f.Ascent,
		Descent:      f.Descent,
		firstChar:    f.FirstChar,
		widths:       f.Widths,
		missingWidth: f.MissingWidth,
		defaultWidth: f.DefaultWidth,
		cidWidths:    f.CIDWidths,
		std:          standardWidths(f.BaseFont),
		codeBytes:    1,
	}
	if rf.Ascent == 0 && rf.Descent == 0 {
		rf.Ascent, rf.Descent = 800, -200
	}
	if len(f.ToUnicode) > 0 {
		rf.toUnicode = ParseCMap(f.ToUnicode)
	}
	if f.Composite {
		rf.codeBytes = 2
		if rf.toUnicode != nil && rf.toUnicode.CodeBytes() > 0 {
			rf.codeBytes = rf.toUnicode.CodeBytes()
		}
		if rf.defaultWidth == 0 {
			rf.defaultWidth = 1000
		}
	} else {
		rf.base = baseEncodingTable(f.Encoding)
		if len(f.Differences) > 0 {
			rf.diffs = f.Differences
		}
	}
	return rf
}

// Decode splits a raw string operand into glyphs. Simple fonts consume
// one byte per code; composite fonts consume codeBytes (normally two),
// with a trailing short code padded implicitly with zero.
func (f *ResolvedFont) Decode(raw []byte) []Glyph {
	if len(raw) == 0 {
		return nil
	}
	glyphs := make([]Glyph, 0, len(raw)/f.codeBytes+1)
	for i := 0; i < len(raw); {
		code := 0
		n := f.codeBytes
		if rem := len(raw) - i; rem < n {
			n = rem
		}
		for j := 0; j < n; j++ {
			code = code<<8 | int(raw[i+j])
		}
		i += n

		g := Glyph{
			Code:        code,
			Text:        f.textForCode(code),
			Width:       f.widthForCode(code),
			IsWordSpace: n == 1 && code == 32,
		}
		glyphs = append(glyphs, g)
	}
	return glyphs
}

func (f *ResolvedFont) textForCode(code int) string {
	if f.toUnicode != nil {
		if s, ok := f.toUnicode.Lookup(uint32(code)); ok {
			return NormalizeUnicode(s)
		}
	}
	if f.Composite {
		// Without a ToUnicode map a CID has no portable text value.
		// Identity-mapped fonts often use Unicode code points as CIDs,
		// so the code itself is the best remaining guess.
		if code >= 0x20 && code != 0x7F {
			return NormalizeUnicode(string(rune(code)))
		}
		return "�"
	}
	if name, ok := f.diffs[code]; ok {
		if s := glyphNameToText(name); s != "" {
			return NormalizeUnicode(s)
		}
		return "�"
	}
	if code >= 0 && code < 256 && f.base[code] != "" {
		return f.base[code]
	}
	return "�"
}

func (f *ResolvedFont) widthForCode(code int) float64 {
	if f.Composite {
		for _, r := range f.cidWidths {
			if w, ok := r.WidthForCID(code); ok {
				return w
			}
		}
		return f.defaultWidth
	}
	if idx := code - f.firstChar; idx >= 0 && idx < len(f.widths) {
		if w := f.widths[idx]; w != 0 {
			return w
		}
	}
	if f.missingWidth > 0 {
		return f.missingWidth
	}
	if f.std != nil {
		if s := f.textForCode(code); s != "" {
			r := []rune(s)[0]
			if w, ok := f.std[r]; ok {
				return w
			}
		}
	}
	return 500
}
