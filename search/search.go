package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tsawler/plumb/model"
	"github.com/tsawler/plumb/text"
)

// Options controls pattern interpretation and text assembly. The zero value
// treats the pattern as a case-sensitive regular expression and assembles
// text with the default grouping tolerances.
type Options struct {
	// Literal escapes the pattern so it matches verbatim instead of as a
	// regular expression.
	Literal bool
	// IgnoreCase makes matching case-insensitive.
	IgnoreCase bool

	// XTolerance and YTolerance are the word-grouping tolerances used to
	// assemble the searchable text. Zero selects the defaults.
	XTolerance float64
	YTolerance float64
}

// Match is one occurrence of the pattern.
type Match struct {
	// Text is the matched substring of the assembled page text.
	Text string
	// BBox is the union of the contributing characters' boxes.
	BBox model.BBox
	// Page is the 0-based page number, filled in by the caller that knows
	// which page the characters came from.
	Page int
	// CharIndices are the positions, in the order matched, of the
	// contributing characters within the char slice given to Find.
	CharIndices []int
}

// Find assembles the page text from chars and returns every match of
// pattern within it. Matches consisting only of synthetic separators are
// dropped. An invalid pattern is the only error.
func Find(chars []model.Char, pattern string, opts Options) ([]Match, error) {
	expr := pattern
	if opts.Literal {
		expr = regexp.QuoteMeta(expr)
	}
	if opts.IgnoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("search: compile pattern: %w", err)
	}

	assembled, origins := assemble(chars, opts)

	var out []Match
	for _, span := range re.FindAllStringIndex(assembled, -1) {
		var indices []int
		for i := span[0]; i < span[1]; i++ {
			idx := origins[i]
			if idx < 0 {
				continue
			}
			if n := len(indices); n > 0 && indices[n-1] == idx {
				continue
			}
			indices = append(indices, idx)
		}
		if len(indices) == 0 {
			continue
		}
		boxes := make([]model.BBox, len(indices))
		for i, idx := range indices {
			boxes[i] = chars[idx].BBox
		}
		out = append(out, Match{
			Text:        assembled[span[0]:span[1]],
			BBox:        model.UnionAll(boxes),
			CharIndices: indices,
		})
	}
	return out, nil
}

// assemble renders chars as lines of space-separated words and records, for
// every byte of the result, the index of the originating char, or -1 for
// synthetic separators.
func assemble(chars []model.Char, opts Options) (string, []int) {
	words := text.ExtractWords(chars, text.WordOptions{
		XTolerance: opts.XTolerance,
		YTolerance: opts.YTolerance,
	})
	lines := text.GroupIntoLines(words, yTolerance(opts))

	ix := newIndexer(chars)
	var b strings.Builder
	var origins []int

	sep := func(s string) {
		b.WriteString(s)
		for range s {
			origins = append(origins, -1)
		}
	}
	for li, line := range lines {
		if li > 0 {
			sep("\n")
		}
		for wi, w := range line.Words {
			if wi > 0 {
				sep(" ")
			}
			for _, c := range w.Chars {
				idx := ix.take(c)
				b.WriteString(c.Text)
				for range len(c.Text) {
					origins = append(origins, idx)
				}
			}
		}
	}
	return b.String(), origins
}

func yTolerance(opts Options) float64 {
	if opts.YTolerance > 0 {
		return opts.YTolerance
	}
	return text.DefaultWordOptions().YTolerance
}

// indexer recovers each grouped char's position in the original slice.
// Grouping copies chars by value, so identical duplicates are matched up in
// input order.
type indexer struct {
	byChar map[model.Char][]int
}

func newIndexer(chars []model.Char) *indexer {
	ix := &indexer{byChar: make(map[model.Char][]int, len(chars))}
	for i, c := range chars {
		ix.byChar[c] = append(ix.byChar[c], i)
	}
	return ix
}

func (ix *indexer) take(c model.Char) int {
	idxs := ix.byChar[c]
	if len(idxs) == 0 {
		return -1
	}
	ix.byChar[c] = idxs[1:]
	return idxs[0]
}
