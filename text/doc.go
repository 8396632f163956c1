// Package text groups page-space Chars into words, lines, and extracted
// text.
//
// Word segmentation walks chars in stream order and breaks on whitespace,
// direction changes, and positional gaps beyond the configured tolerances.
// Horizontal text measures gaps along x and alignment along y; vertical text
// swaps the axes. Lines cluster words by their top coordinate, and extracted
// text joins words with spaces and lines with newlines. Layout mode instead
// reconstructs the visual arrangement, padding with spaces proportional to
// the horizontal gaps and inserting blank lines for vertical ones.
package text
