package model

import (
	"strings"
	"time"
)

// DefaultLowThreshold is the low-stock limit applied when a record has no
// valid threshold of its own.
const DefaultLowThreshold = 2

// GroupUngrouped is the sentinel group that always exists and absorbs items
// whose group is removed. It cannot be deleted.
const GroupUngrouped = "ungrouped"

// Item represents a stock-keeping unit.
type Item struct {
	ID           int64    `json:"id"`
	Group        string   `json:"group"`
	Model        string   `json:"model"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Location     string   `json:"location"`
	Photo        string   `json:"photo,omitempty"`
	Price        *float64 `json:"price"`
	Quantity     int      `json:"quantity"`
	LowThreshold int      `json:"lowThreshold"`
	UpdatedAt    string   `json:"updatedAt"`
}

// StockLevel classifies an item's quantity against its low threshold.
type StockLevel int

const (
	StockNormal StockLevel = iota
	StockLow
	StockZero
)

// Level returns the derived stock classification. It is recomputed on every
// read so it can never disagree with the stored quantity.
func (i *Item) Level() StockLevel {
	if i.Quantity == 0 {
		return StockZero
	}
	if i.Quantity <= i.LowThreshold {
		return StockLow
	}
	return StockNormal
}

// NeedsAttention reports whether the item is low on stock or out of stock.
func (i *Item) NeedsAttention() bool {
	return i.Level() != StockNormal
}

// Title composes the display title from group, model and name.
func (i *Item) Title() string {
	g := strings.TrimSpace(i.Group)
	m := strings.TrimSpace(i.Model)
	n := strings.TrimSpace(i.Name)

	left := n
	if m != "" {
		left = m + " • " + n
	}
	if g != "" {
		return g + " — " + left
	}
	return left
}

// NowISO returns the current time as the timestamp string stored on items
// and movements.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
