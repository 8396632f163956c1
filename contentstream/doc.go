// Package contentstream tokenizes PDF content-stream programs.
//
// A content stream is a sequence of operands followed by an operator:
//
//	tok := contentstream.NewParser(streamData)
//	ops := tok.Parse()
//	for _, op := range ops {
//	    // op.Operator, op.Operands
//	}
//
// Operands are represented by the lightweight [Object] union defined in this
// package: numbers, strings (raw bytes, since character codes are bytes, not
// text), names, arrays, dictionaries, booleans, and null.
//
// Parsing is deliberately forgiving. Real-world content streams frequently
// contain junk bytes, truncated operands, and vendor-specific operators; a
// malformed token is skipped and parsing resumes at the next byte rather
// than failing the whole stream. Inline images (BI ... ID ... EI) are
// collapsed into a single BI operation carrying the image dictionary, with
// the binary sample data consumed and discarded.
package contentstream
