// Package model defines the shared data types for PDF content extraction.
//
// All coordinates use a top-left origin: x grows rightward, top and bottom
// grow downward, and a bounding box is {X0, Top, X1, Bottom}. Conversion from
// the bottom-left-origin PDF user space (including page rotation and CropBox
// offsets) happens exactly once, in [PageGeometry], when primitives are
// constructed. Everything downstream of extraction works in this one space.
//
// # Primitives
//
// A page's content is represented as flat, immutable slices of primitives:
//
//   - [Char] - a single rendered text unit with font, size, and position
//   - [Line], [Rect], [Curve] - path-derived geometry with stroke/fill state
//   - [Image] - a placed image (no pixel data)
//
// Grouping types ([Word], [TextLine]) and table types ([Table], [Cell]) are
// built from primitives by the text and tables packages.
//
// # Document structure
//
// [Metadata] and [Bookmark] carry document-level information supplied by the
// backend.
package model
