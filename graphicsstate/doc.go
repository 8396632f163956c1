// Package graphicsstate executes content stream operations against a PDF
// graphics state machine and emits page-space primitives.
//
// The Interpreter walks the operation sequence produced by the contentstream
// package, maintaining the current transformation matrix, color, line and
// text state through q/Q nesting, assembling paths, and decoding shown text
// through the font package. Every primitive it emits (Char, Line, Rect,
// Curve, Image) is already normalized to top-left page coordinates.
//
// Recoverable problems such as unknown operators, missing fonts, and stack
// underflow degrade locally and are reported as warnings. The only fatal
// condition is a form XObject graph that exceeds the nesting limit or cycles
// back on itself, which aborts the page with ErrResourceLimit.
package graphicsstate
