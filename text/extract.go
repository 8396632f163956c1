package text

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/plumb/model"
)

// TextOptions controls ExtractText.
type TextOptions struct {
	// Layout reproduces the visual arrangement with padding spaces and
	// blank lines instead of the compact one-space-per-word form.
	Layout bool

	XTolerance float64
	YTolerance float64

	// YDensity is the nominal line pitch in points: vertical gaps insert
	// one blank line per multiple, and line segments at most YDensity
	// apart may stack into the same block. Layout mode only.
	YDensity float64
	// XDensity is the column threshold in points: a horizontal gap wider
	// than this splits a line into separate column segments. It doubles
	// as the fallback glyph width for padding when a segment carries no
	// measurable chars. Layout mode only.
	XDensity float64
}

// DefaultTextOptions returns the standard extraction settings.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		XTolerance: 3.0,
		YTolerance: 3.0,
		YDensity:   10.0,
		XDensity:   10.0,
	}
}

func (o TextOptions) withDefaults() TextOptions {
	d := DefaultTextOptions()
	if o.XTolerance == 0 {
		o.XTolerance = d.XTolerance
	}
	if o.YTolerance == 0 {
		o.YTolerance = d.YTolerance
	}
	if o.YDensity == 0 {
		o.YDensity = d.YDensity
	}
	if o.XDensity == 0 {
		o.XDensity = d.XDensity
	}
	return o
}

// ExtractText renders chars as plain text: words joined by single spaces,
// lines by newlines. With Layout set, horizontal gaps become proportional
// runs of spaces and vertical gaps become blank lines.
func ExtractText(chars []model.Char, opts TextOptions) string {
	opts = opts.withDefaults()
	words := ExtractWords(chars, WordOptions{
		XTolerance: opts.XTolerance,
		YTolerance: opts.YTolerance,
	})
	lines := GroupIntoLines(words, opts.YTolerance)
	if len(lines) == 0 {
		return ""
	}
	if !opts.Layout {
		parts := make([]string, len(lines))
		for i, l := range lines {
			parts[i] = l.Text()
		}
		return strings.Join(parts, "\n")
	}
	return layoutText(lines, opts)
}

// layoutText renders the page column by column. Each line is first split
// into segments wherever a word gap exceeds XDensity, segments stack into
// blocks by vertical adjacency and horizontal overlap, and blocks emit in
// reading order, so side-by-side columns come out one after another instead
// of interleaved by baseline. Within a segment, point gaps become space
// counts using the segment's own average glyph width as the unit.
func layoutText(lines []model.TextLine, opts TextOptions) string {
	segments := splitAtColumns(lines, opts.XDensity)
	blocks := clusterIntoBlocks(segments, opts.YDensity)

	origin := math.Inf(1)
	for _, l := range segments {
		if l.BBox.X0 < origin {
			origin = l.BBox.X0
		}
	}

	var sb strings.Builder
	first := true
	var prevTop float64
	for _, blk := range blocks {
		for _, l := range blk.lines {
			if !first {
				sb.WriteByte('\n')
				blanks := int(math.Round((l.BBox.Top-prevTop)/opts.YDensity)) - 1
				for ; blanks > 0; blanks-- {
					sb.WriteByte('\n')
				}
			}
			first = false
			prevTop = l.BBox.Top

			unit := avgGlyphWidth(l)
			if unit <= 0 {
				unit = opts.XDensity
			}
			cursor := origin
			for j, w := range l.Words {
				pad := int(math.Round((w.BBox.X0 - cursor) / unit))
				if j > 0 && pad < 1 {
					pad = 1
				}
				for ; pad > 0; pad-- {
					sb.WriteByte(' ')
				}
				sb.WriteString(w.Text)
				cursor = w.BBox.X1
			}
		}
	}
	return sb.String()
}

// splitAtColumns breaks each line at word gaps wider than xDensity. The
// resulting segments are sorted by top then left edge so block clustering
// sees them in page order.
func splitAtColumns(lines []model.TextLine, xDensity float64) []model.TextLine {
	var out []model.TextLine
	for _, l := range lines {
		start := 0
		for i := 1; i <= len(l.Words); i++ {
			if i < len(l.Words) && l.Words[i].BBox.X0-l.Words[i-1].BBox.X1 <= xDensity {
				continue
			}
			seg := l.Words[start:i]
			boxes := make([]model.BBox, len(seg))
			for k, w := range seg {
				boxes[k] = w.BBox
			}
			out = append(out, model.TextLine{Words: seg, BBox: model.UnionAll(boxes)})
			start = i
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BBox.Top != out[j].BBox.Top {
			return out[i].BBox.Top < out[j].BBox.Top
		}
		return out[i].BBox.X0 < out[j].BBox.X0
	})
	return out
}

type textBlock struct {
	lines []model.TextLine
	bbox  model.BBox
}

// clusterIntoBlocks stacks segments into vertical blocks. A segment joins
// the block whose bottom edge sits closest above it, provided the vertical
// gap is within yDensity and their horizontal extents overlap; otherwise it
// opens a new block. Blocks order by top then left edge.
func clusterIntoBlocks(segments []model.TextLine, yDensity float64) []textBlock {
	var blocks []textBlock
	for _, seg := range segments {
		best := -1
		bestGap := math.Inf(1)
		for i := range blocks {
			gap := seg.BBox.Top - blocks[i].bbox.Bottom
			if gap < 0 || gap > yDensity || gap >= bestGap {
				continue
			}
			if seg.BBox.X0 < blocks[i].bbox.X1 && blocks[i].bbox.X0 < seg.BBox.X1 {
				best, bestGap = i, gap
			}
		}
		if best >= 0 {
			blocks[best].lines = append(blocks[best].lines, seg)
			blocks[best].bbox = blocks[best].bbox.Union(seg.BBox)
		} else {
			blocks = append(blocks, textBlock{lines: []model.TextLine{seg}, bbox: seg.BBox})
		}
	}
	for i := range blocks {
		sort.SliceStable(blocks[i].lines, func(a, b int) bool {
			return blocks[i].lines[a].BBox.Top < blocks[i].lines[b].BBox.Top
		})
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].bbox.Top != blocks[j].bbox.Top {
			return blocks[i].bbox.Top < blocks[j].bbox.Top
		}
		return blocks[i].bbox.X0 < blocks[j].bbox.X0
	})
	return blocks
}

func avgGlyphWidth(l model.TextLine) float64 {
	var total float64
	var n int
	for _, w := range l.Words {
		for _, c := range w.Chars {
			total += c.BBox.Width()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
