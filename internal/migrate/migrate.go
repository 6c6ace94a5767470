// Package migrate hydrates the item collection from whichever storage
// generation is present. It runs exactly once, when the inventory store is
// constructed.
package migrate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/estoquepro/estoque/internal/model"
	"github.com/estoquepro/estoque/internal/normalize"
	"github.com/estoquepro/estoque/internal/storage"
)

// tryKeys lists the storage key candidates in priority order: the current
// generation first, the oldest last.
var tryKeys = []string{storage.KeyItems, storage.KeyItemsV2, storage.KeyItemsV1}

// Load returns the items of the first candidate that reads and parses,
// mapped through the normalizer. The first parseable candidate wins even
// when it holds zero items; unreadable or malformed candidates are skipped.
// When every candidate fails the result is empty.
func Load(ctx context.Context, kv storage.KV) []model.Item {
	seed := time.Now().UnixMilli()

	for _, key := range tryKeys {
		raw, ok, err := kv.Get(ctx, key)
		if err != nil || !ok || raw == "" {
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			continue
		}
		records, ok := normalize.Collection(decoded)
		if !ok {
			continue
		}

		items := make([]model.Item, 0, len(records))
		for i, rec := range records {
			if item := normalize.Normalize(rec, i, seed); item != nil {
				items = append(items, *item)
			}
		}
		return items
	}

	return nil
}
