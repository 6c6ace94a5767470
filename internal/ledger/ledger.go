// Package ledger keeps the append-only movement history: a newest-first,
// capacity-bounded list of quantity deltas tied to items. On overflow the
// oldest entries are dropped.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/estoquepro/estoque/internal/model"
	"github.com/estoquepro/estoque/internal/storage"
)

// MaxMovements bounds the persisted history.
const MaxMovements = 200

// DisplayLimit caps per-item history queries.
const DisplayLimit = 50

// Ledger owns the in-memory movement list and its durable mirror.
type Ledger struct {
	kv        storage.KV
	movements []model.Movement // newest first
}

// Load reads the persisted movement history. Malformed or missing history
// starts the ledger empty.
func Load(ctx context.Context, kv storage.KV) *Ledger {
	l := &Ledger{kv: kv}

	raw, ok, err := kv.Get(ctx, storage.KeyMovements)
	if err != nil || !ok || raw == "" {
		return l
	}

	var movements []model.Movement
	if err := json.Unmarshal([]byte(raw), &movements); err != nil {
		return l
	}
	if len(movements) > MaxMovements {
		movements = movements[:MaxMovements]
	}
	l.movements = movements
	return l
}

// Append records a movement against an item and persists the history.
func (l *Ledger) Append(ctx context.Context, itemID int64, delta int, note string) (model.Movement, error) {
	m := model.Movement{
		ID:        newID(),
		ItemID:    itemID,
		Delta:     delta,
		Note:      note,
		Timestamp: model.NowISO(),
	}

	updated := append([]model.Movement{m}, l.movements...)
	if len(updated) > MaxMovements {
		updated = updated[:MaxMovements]
	}

	if err := l.persist(ctx, updated); err != nil {
		return model.Movement{}, err
	}
	l.movements = updated
	return m, nil
}

// ByItem returns the movements for one item, newest first, capped at the
// display limit.
func (l *Ledger) ByItem(itemID int64) []model.Movement {
	var out []model.Movement
	for _, m := range l.movements {
		if m.ItemID == itemID {
			out = append(out, m)
			if len(out) == DisplayLimit {
				break
			}
		}
	}
	return out
}

// All returns the full history, newest first.
func (l *Ledger) All() []model.Movement {
	out := make([]model.Movement, len(l.movements))
	copy(out, l.movements)
	return out
}

// Len returns the number of recorded movements.
func (l *Ledger) Len() int {
	return len(l.movements)
}

// Clear empties the history.
func (l *Ledger) Clear(ctx context.Context) error {
	if err := l.persist(ctx, nil); err != nil {
		return err
	}
	l.movements = nil
	return nil
}

// PruneItem removes every movement referencing a deleted item.
func (l *Ledger) PruneItem(ctx context.Context, itemID int64) error {
	kept := l.movements[:0:0]
	for _, m := range l.movements {
		if m.ItemID != itemID {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(l.movements) {
		return nil
	}

	if err := l.persist(ctx, kept); err != nil {
		return err
	}
	l.movements = kept
	return nil
}

// Replace swaps in an imported history, truncated to capacity.
func (l *Ledger) Replace(ctx context.Context, movements []model.Movement) error {
	if len(movements) > MaxMovements {
		movements = movements[:MaxMovements]
	}
	if err := l.persist(ctx, movements); err != nil {
		return err
	}
	l.movements = movements
	return nil
}

func (l *Ledger) persist(ctx context.Context, movements []model.Movement) error {
	if movements == nil {
		movements = []model.Movement{}
	}
	data, err := json.Marshal(movements)
	if err != nil {
		return fmt.Errorf("encoding movements: %w", err)
	}
	if err := l.kv.Set(ctx, storage.KeyMovements, string(data)); err != nil {
		return fmt.Errorf("persisting movements: %w", err)
	}
	return nil
}

var lastID int64

// newID builds a time-based id with a random tie-breaker. IDs are forced
// monotonic so movements appended within the same millisecond stay distinct.
func newID() int64 {
	id := time.Now().UnixMilli()*1000 + rand.Int63n(1000)
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}
