// Package search matches literal and regular-expression patterns against a
// page's assembled text, mapping every match back to the characters that
// produced it. The assembled text inserts synthetic spaces between words and
// newlines between lines; those separators belong to no character and are
// never reported in a match's indices.
package search
