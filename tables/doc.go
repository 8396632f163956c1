// Package tables reconstructs tables from page primitives.
//
// Three strategies share one pipeline: candidate ruling edges are collected,
// snapped into aligned groups, joined across small gaps, and intersected to
// form a boundary grid from which cells and tables are assembled.
//
//   - Lattice derives edges from visible Lines, Rects, and thin Curves.
//   - Stream infers edges from text alignment: columns from shared word
//     margins, rows from line clusters.
//   - Explicit uses caller-supplied boundary coordinates as-is.
//
// Cells that touch at corners merge into tables; each cell is populated
// with the text of the chars falling inside it. Detection runs per call and
// caches nothing, since every call may use different settings.
package tables
