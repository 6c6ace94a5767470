package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/estoquepro/estoque/internal/inventory"
	"github.com/estoquepro/estoque/internal/model"
	"github.com/estoquepro/estoque/internal/normalize"
)

// Backup is the JSON backup file payload.
type Backup struct {
	App        string           `json:"app"`
	Version    int              `json:"version"`
	ExportedAt string           `json:"exportedAt"`
	Groups     []string         `json:"groups"`
	Items      []model.Item     `json:"items"`
	Movements  []model.Movement `json:"movements"`
}

const (
	backupApp     = "estoque-pro"
	backupVersion = 3
)

// ExportJSON serializes the store's full state as a backup file.
func ExportJSON(s *inventory.Store) ([]byte, error) {
	payload := Backup{
		App:        backupApp,
		Version:    backupVersion,
		ExportedAt: model.NowISO(),
		Groups:     s.Groups(),
		Items:      s.Items(),
		Movements:  s.Movements(),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}
	return data, nil
}

// RestoreJSON replaces the entire store state from a backup payload. The
// payload may be a bare item array or a wrapper object; every record runs
// through the normalizer, groups are adopted when present (else re-derived)
// and movements are adopted truncated to the ledger capacity. Destructive
// and non-mergeable. Returns the number of restored items.
func RestoreJSON(ctx context.Context, s *inventory.Store, data []byte) (int, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return 0, &ParseError{Err: err}
	}

	records, ok := normalize.Collection(decoded)
	if !ok {
		return 0, &ParseError{Err: fmt.Errorf("no item collection in payload")}
	}

	seed := time.Now().UnixMilli()
	items := make([]model.Item, 0, len(records))
	for i, rec := range records {
		if item := normalize.Normalize(rec, i, seed); item != nil {
			items = append(items, *item)
		}
	}

	var groups []string
	var movements []model.Movement
	if wrapper, ok := decoded.(map[string]any); ok {
		groups = decodeStrings(wrapper["groups"])
		movements = decodeMovements(wrapper["movements"])
	}

	return s.ReplaceAll(ctx, items, groups, movements)
}

func decodeStrings(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// decodeMovements re-encodes the raw movement array into typed records,
// tolerating malformed entries by dropping the whole list.
func decodeMovements(v any) []model.Movement {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var movements []model.Movement
	if err := json.Unmarshal(raw, &movements); err != nil {
		return nil
	}
	if len(movements) == 0 {
		return nil
	}
	return movements
}
