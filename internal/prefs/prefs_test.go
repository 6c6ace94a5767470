package prefs

import (
	"context"
	"testing"

	"github.com/estoquepro/estoque/internal/inventory"
	"github.com/estoquepro/estoque/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	p := Load(context.Background(), storage.NewMemory())
	if p.Sort != inventory.SortTriage {
		t.Errorf("expected triage default, got %q", p.Sort)
	}
	if p.OnlyAttention || p.Group != "" {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()

	in := Prefs{Sort: inventory.SortRecent, OnlyAttention: true, Group: "Tools"}
	if err := Save(ctx, kv, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := Load(ctx, kv)
	if out != in {
		t.Errorf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestLoadIgnoresUnknownSortMode(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()
	kv.Set(ctx, storage.KeySortMode, "bogus")

	if p := Load(ctx, kv); p.Sort != inventory.SortTriage {
		t.Errorf("expected fallback to triage, got %q", p.Sort)
	}
}
