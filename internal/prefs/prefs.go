// Package prefs persists the UI preference pair: sort mode, only-attention
// flag and selected group filter. Each preference is a plain scalar under
// its own storage key, matching the layout of the original app.
package prefs

import (
	"context"
	"fmt"

	"github.com/estoquepro/estoque/internal/inventory"
	"github.com/estoquepro/estoque/internal/storage"
)

// Prefs holds the display preferences.
type Prefs struct {
	Sort          inventory.SortMode
	OnlyAttention bool
	Group         string
}

// Load reads the persisted preferences, substituting defaults for missing
// or unknown values.
func Load(ctx context.Context, kv storage.KV) Prefs {
	p := Prefs{Sort: inventory.SortTriage}

	if raw, ok, err := kv.Get(ctx, storage.KeySortMode); err == nil && ok {
		switch inventory.SortMode(raw) {
		case inventory.SortTriage, inventory.SortAlpha, inventory.SortRecent:
			p.Sort = inventory.SortMode(raw)
		}
	}
	if raw, ok, err := kv.Get(ctx, storage.KeyOnlyLow); err == nil && ok {
		p.OnlyAttention = raw == "1"
	}
	if raw, ok, err := kv.Get(ctx, storage.KeyGroupFilter); err == nil && ok {
		p.Group = raw
	}
	return p
}

// Save persists the preferences.
func Save(ctx context.Context, kv storage.KV, p Prefs) error {
	onlyLow := "0"
	if p.OnlyAttention {
		onlyLow = "1"
	}

	if err := kv.Set(ctx, storage.KeySortMode, string(p.Sort)); err != nil {
		return fmt.Errorf("saving sort mode: %w", err)
	}
	if err := kv.Set(ctx, storage.KeyOnlyLow, onlyLow); err != nil {
		return fmt.Errorf("saving attention filter: %w", err)
	}
	if err := kv.Set(ctx, storage.KeyGroupFilter, p.Group); err != nil {
		return fmt.Errorf("saving group filter: %w", err)
	}
	return nil
}
