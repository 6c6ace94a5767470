package model

// Movement is an immutable ledger entry recording a quantity change (or a
// zero-delta lifecycle event) against one item.
type Movement struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"itemId"`
	Delta     int    `json:"delta"`
	Note      string `json:"note"`
	Timestamp string `json:"timestamp"`
}

// Notes recorded for lifecycle events.
const (
	NoteCreated = "created"
	NoteEdited  = "edit"
)
