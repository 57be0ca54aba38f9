package models

import "strings"

// Item represents a single line item on a bill.
// Items can be shared among multiple participants.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the item description (e.g. "Pad Thai", "IPA").
	Name string

	// Price is the committed numeric price, never negative, stored
	// already rounded to cents. It only changes when the raw input
	// parses cleanly.
	Price float64

	// RawPrice is whatever the user last typed into the price field
	// ("12.", "$8", ...). Kept for display so live typing never makes
	// the committed Price go invalid mid-edit.
	RawPrice string
}

// Valid reports whether the item should count toward totals and be
// forwarded to downstream stages. Empty placeholder rows (no name, no
// price) are allowed to linger during editing but are ignored here.
func (i Item) Valid() bool {
	return strings.TrimSpace(i.Name) != "" || i.Price > 0
}
