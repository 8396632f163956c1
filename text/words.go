package text

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/plumb/model"
)

// WordOptions controls word segmentation.
type WordOptions struct {
	// XTolerance is the largest gap, in points, still bridged within one
	// word along the flow axis of horizontal text.
	XTolerance float64
	// YTolerance bounds the vertical misalignment between consecutive
	// chars of one horizontal word. The two tolerances swap roles for
	// vertical text.
	YTolerance float64
	// UseTextFlow consumes chars in content-stream order instead of
	// sorting them into reading sequence first. Useful for documents
	// whose stream order is known to match the visual order.
	UseTextFlow bool
}

// DefaultWordOptions returns the tolerances used when none are given.
func DefaultWordOptions() WordOptions {
	return WordOptions{XTolerance: 3.0, YTolerance: 3.0}
}

// ExtractWords segments chars into words. Chars are first sorted into
// reading sequence, top-to-bottom bands then leading-edge order within a
// band, since stream order need not match visual order; whitespace chars
// separate words and are dropped. A word never mixes directions or upright
// with rotated text.
func ExtractWords(chars []model.Char, opts WordOptions) []model.Word {
	d := DefaultWordOptions()
	if opts.XTolerance == 0 {
		opts.XTolerance = d.XTolerance
	}
	if opts.YTolerance == 0 {
		opts.YTolerance = d.YTolerance
	}
	if !opts.UseTextFlow {
		chars = readingOrder(chars, opts.YTolerance)
	}

	var words []model.Word
	var cur []model.Char

	flush := func() {
		if len(cur) == 0 {
			return
		}
		words = append(words, buildWord(cur))
		cur = nil
	}

	for _, c := range chars {
		if strings.TrimSpace(c.Text) == "" {
			flush()
			continue
		}
		if len(cur) > 0 && !sameWord(cur[len(cur)-1], c, opts) {
			flush()
		}
		cur = append(cur, c)
	}
	flush()
	return words
}

// readingOrder sorts chars into visual reading sequence: bands of nearby
// tops, top to bottom, then leading-edge order within each band. RTL chars
// order right to left; everything else left to right.
func readingOrder(chars []model.Char, yTolerance float64) []model.Char {
	sorted := append([]model.Char(nil), chars...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Top < sorted[j].BBox.Top
	})

	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].BBox.Top-sorted[i-1].BBox.Top <= yTolerance {
			continue
		}
		band := sorted[start:i]
		sort.SliceStable(band, func(a, b int) bool {
			if band[a].Direction == model.DirRTL && band[b].Direction == model.DirRTL {
				return band[a].BBox.X1 > band[b].BBox.X1
			}
			return band[a].BBox.X0 < band[b].BBox.X0
		})
		start = i
	}
	return sorted
}

// sameWord reports whether c continues the word ending at prev.
func sameWord(prev, c model.Char, opts WordOptions) bool {
	if c.Direction != prev.Direction || c.Upright != prev.Upright {
		return false
	}

	// A char that starts before the previous one begins a new run, as at
	// the head of a fresh line; gap measures forward separation only.
	var gap, align float64
	backward := false
	switch c.Direction {
	case model.DirRTL:
		gap = prev.BBox.X0 - c.BBox.X1
		align = math.Abs(c.BBox.Top - prev.BBox.Top)
		backward = c.BBox.X1 > prev.BBox.X1
	case model.DirTTB:
		gap = c.BBox.Top - prev.BBox.Bottom
		align = math.Abs(c.BBox.X0 - prev.BBox.X0)
		backward = c.BBox.Top < prev.BBox.Top
	case model.DirBTT:
		gap = prev.BBox.Top - c.BBox.Bottom
		align = math.Abs(c.BBox.X0 - prev.BBox.X0)
		backward = c.BBox.Bottom > prev.BBox.Bottom
	default: // left to right
		gap = c.BBox.X0 - prev.BBox.X1
		align = math.Abs(c.BBox.Top - prev.BBox.Top)
		backward = c.BBox.X0 < prev.BBox.X0
	}
	if backward {
		return false
	}

	if c.Direction == model.DirTTB || c.Direction == model.DirBTT {
		return gap <= opts.YTolerance && align <= opts.XTolerance
	}
	return gap <= opts.XTolerance && align <= opts.YTolerance
}

func buildWord(chars []model.Char) model.Word {
	var sb strings.Builder
	boxes := make([]model.BBox, len(chars))
	for i, c := range chars {
		sb.WriteString(c.Text)
		boxes[i] = c.BBox
	}
	return model.Word{
		Text:      sb.String(),
		BBox:      model.UnionAll(boxes),
		Chars:     append([]model.Char(nil), chars...),
		Direction: chars[0].Direction,
		Upright:   chars[0].Upright,
	}
}
