package migrate

import (
	"context"
	"testing"

	"github.com/estoquepro/estoque/internal/storage"
)

func TestLoadCurrentGeneration(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	kv.Set(ctx, storage.KeyItems, `[{"id": 1, "name": "Hammer", "group": "Tools", "quantity": 2}]`)

	items := Load(ctx, kv)
	if len(items) != 1 || items[0].Name != "Hammer" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestLoadSkipsMalformedCandidate(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	kv.Set(ctx, storage.KeyItems, `{broken`)
	kv.Set(ctx, storage.KeyItemsV2, `{"products": [{"nome": "Capa", "quantidade": 3}]}`)

	items := Load(ctx, kv)
	if len(items) != 1 || items[0].Name != "Capa" {
		t.Fatalf("expected fallback to v2 candidate, got %+v", items)
	}
}

func TestLoadFirstParseableCandidateWins(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	// Current key parses to zero items; the older key must never be consulted.
	kv.Set(ctx, storage.KeyItems, `[]`)
	kv.Set(ctx, storage.KeyItemsV2, `[{"nome": "Capa"}]`)

	items := Load(ctx, kv)
	if len(items) != 0 {
		t.Fatalf("expected empty result from current key, got %+v", items)
	}
}

func TestLoadOldestGeneration(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	kv.Set(ctx, storage.KeyItemsV1, `[{"descricao": "Widget", "valor": 9.5, "quantidade": 4}]`)

	items := Load(ctx, kv)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Name != "Widget" || items[0].Quantity != 4 {
		t.Errorf("unexpected lifted item: %+v", items[0])
	}
}

func TestLoadEmptyStorage(t *testing.T) {
	items := Load(context.Background(), storage.NewMemory())
	if len(items) != 0 {
		t.Fatalf("expected no items, got %+v", items)
	}
}

func TestLoadDiscardsNonObjectRecords(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	kv.Set(ctx, storage.KeyItems, `[{"name": "A"}, "junk", null, 5]`)

	items := Load(ctx, kv)
	if len(items) != 1 || items[0].Name != "A" {
		t.Fatalf("expected non-objects discarded, got %+v", items)
	}
}
