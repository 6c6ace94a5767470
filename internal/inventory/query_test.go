package inventory

import (
	"testing"

	"github.com/estoquepro/estoque/internal/model"
)

func fixture() []model.Item {
	return []model.Item{
		{ID: 1, Group: "Películas", Name: "Capa comum", Quantity: 10, LowThreshold: 2, UpdatedAt: "2024-03-01T10:00:00Z"},
		{ID: 2, Group: "Tools", Name: "Hammer", Quantity: 0, LowThreshold: 2, UpdatedAt: "2024-01-01T10:00:00Z"},
		{ID: 3, Group: "Tools", Name: "Wrench", Quantity: 1, LowThreshold: 2, UpdatedAt: "2024-02-01T10:00:00Z"},
	}
}

func TestFilterSearchIgnoresAccents(t *testing.T) {
	got := Filter(fixture(), Query{Search: "peliculas"})
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected accent-insensitive match, got %+v", got)
	}
}

func TestFilterSearchSpansFields(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "A", Location: "Shelf 3"},
		{ID: 2, Name: "B", Description: "spare part"},
	}
	if got := Filter(items, Query{Search: "shelf"}); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected location match, got %+v", got)
	}
	if got := Filter(items, Query{Search: "spare"}); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("expected description match, got %+v", got)
	}
}

func TestFilterGroup(t *testing.T) {
	got := Filter(fixture(), Query{Group: "tools"})
	if len(got) != 2 {
		t.Fatalf("expected 2 items in group, got %d", len(got))
	}
}

func TestFilterOnlyAttention(t *testing.T) {
	got := Filter(fixture(), Query{OnlyAttention: true})
	if len(got) != 2 {
		t.Fatalf("expected zero+low items, got %+v", got)
	}
	for _, item := range got {
		if !item.NeedsAttention() {
			t.Errorf("item %d should not be in attention filter", item.ID)
		}
	}
}

func TestTriageOrder(t *testing.T) {
	got := Filter(fixture(), Query{Sort: SortTriage})
	// Zero stock first, then low, then normal.
	if got[0].ID != 2 || got[1].ID != 3 || got[2].ID != 1 {
		t.Errorf("unexpected triage order: %v, %v, %v", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestTriageTieBreakAlphabetical(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "Zulu", Quantity: 0},
		{ID: 2, Name: "Alpha", Quantity: 0},
	}
	got := Filter(items, Query{Sort: SortTriage})
	if got[0].ID != 2 {
		t.Errorf("expected alphabetical tie-break, got %+v", got)
	}
}

func TestAlphaOrder(t *testing.T) {
	got := Filter(fixture(), Query{Sort: SortAlpha})
	if got[0].ID != 1 { // "Películas — Capa comum" < "Tools — ..."
		t.Errorf("unexpected alpha order: %+v", got)
	}
}

func TestRecentOrder(t *testing.T) {
	got := Filter(fixture(), Query{Sort: SortRecent})
	if got[0].ID != 1 || got[1].ID != 3 || got[2].ID != 2 {
		t.Errorf("unexpected recent order: %v, %v, %v", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	items := fixture()
	Filter(items, Query{Sort: SortAlpha})
	if items[0].ID != 1 || items[1].ID != 2 || items[2].ID != 3 {
		t.Error("Filter must not reorder the input slice")
	}
}
