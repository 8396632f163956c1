// Package font maps raw character codes to Unicode text and advance widths.
//
// # Simple and composite fonts
//
// Simple fonts (Type1, TrueType, Type3) address glyphs with single-byte
// codes, decoded through a base encoding (Standard, WinAnsi, MacRoman) plus
// an optional Differences table. Composite (Type0) fonts address a CIDFont
// through a CMap and consume multi-byte codes; this is how CJK text is
// encoded. The resolver detects the code width from the font's encoding and
// ToUnicode codespace ranges.
//
// # Decode priority
//
// For each code: the embedded ToUnicode CMap wins, then the base encoding,
// then a direct rune interpretation, and finally U+FFFD. A glyph that cannot
// be resolved never aborts extraction.
//
// # Widths
//
// Advance widths use glyph space (1000 units per em). Lookup order: the
// font's explicit width entries (Widths array or CID W ranges), then the
// declared default (MissingWidth or DW), then built-in Standard 14 metrics,
// then 500.
//
// # Caching
//
// Fonts are shared across many glyph placements, so resolution results are
// cached per font object identity in a [Cache]. The cache uses
// compute-once-publish-once semantics: concurrent lookups for the same font
// block until the first resolution completes, then read without locking.
package font
