package model

import "time"

// Metadata contains document-level information from the info dictionary.
// All fields are optional; zero values mean the entry was absent.
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate time.Time
	ModDate      time.Time
}

// Bookmark is a single outline entry. Page is the 0-based index of the
// target page, or -1 when the destination could not be resolved.
type Bookmark struct {
	Title    string
	Page     int
	Children []Bookmark
}
