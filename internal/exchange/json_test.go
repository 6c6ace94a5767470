package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/estoquepro/estoque/internal/inventory"
)

func TestJSONBackupRestoreRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	price := 9.5
	created, _ := s.Create(ctx, inventory.Draft{Name: "Hammer", Group: "Tools", Price: &price, Quantity: 3})
	s.AdjustQuantity(ctx, created.ID, -1, "sale")

	data, err := ExportJSON(s)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	target := newStore(t)
	count, err := RestoreJSON(ctx, target, data)
	if err != nil {
		t.Fatalf("RestoreJSON: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 item restored, got %d", count)
	}

	item := target.Items()[0]
	if item.Name != "Hammer" || item.Quantity != 2 {
		t.Errorf("unexpected restored item: %+v", item)
	}
	if item.Price == nil || *item.Price != 9.5 {
		t.Errorf("expected price 9.5, got %v", item.Price)
	}
	if len(target.Groups()) != 2 {
		t.Errorf("expected groups restored, got %v", target.Groups())
	}
	if len(target.Movements()) != 2 {
		t.Errorf("expected movements adopted, got %d", len(target.Movements()))
	}
}

func TestRestoreJSONBareArray(t *testing.T) {
	s := newStore(t)

	payload := `[{"nome": "Capa", "grupo": "Películas", "quantidade": 2}]`
	count, err := RestoreJSON(context.Background(), s, []byte(payload))
	if err != nil {
		t.Fatalf("RestoreJSON: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 item, got %d", count)
	}
	if s.Items()[0].Name != "Capa" {
		t.Errorf("unexpected item: %+v", s.Items()[0])
	}
	// Groups re-derived from item references plus the sentinel.
	if len(s.Groups()) != 2 {
		t.Errorf("expected derived groups, got %v", s.Groups())
	}
}

func TestRestoreJSONLegacyBackup(t *testing.T) {
	s := newStore(t)

	payload := `{"products": [{"descricao": "Widget", "valor": 9.5, "quantidade": 4}]}`
	count, err := RestoreJSON(context.Background(), s, []byte(payload))
	if err != nil || count != 1 {
		t.Fatalf("RestoreJSON: count=%d err=%v", count, err)
	}

	item := s.Items()[0]
	if item.Name != "Widget" || item.Quantity != 4 {
		t.Errorf("unexpected lifted item: %+v", item)
	}
}

func TestRestoreJSONMalformedLeavesStateUntouched(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	s.Create(ctx, inventory.Draft{Name: "Existing", Group: "Tools"})

	for _, payload := range []string{`{broken`, `{"other": 1}`, `42`} {
		_, err := RestoreJSON(ctx, s, []byte(payload))
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("expected ParseError for %q, got %v", payload, err)
		}
	}

	items := s.Items()
	if len(items) != 1 || items[0].Name != "Existing" {
		t.Errorf("expected state untouched, got %+v", items)
	}
	if len(s.Groups()) != 2 {
		t.Errorf("expected groups untouched, got %v", s.Groups())
	}
	if len(s.Movements()) != 1 {
		t.Errorf("expected movements untouched, got %d", len(s.Movements()))
	}
}

func TestRestoreJSONKeepsExistingMovementsWhenAbsent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	s.Create(ctx, inventory.Draft{Name: "Old"})

	if _, err := RestoreJSON(ctx, s, []byte(`[{"name": "New"}]`)); err != nil {
		t.Fatalf("RestoreJSON: %v", err)
	}
	if len(s.Movements()) != 1 {
		t.Errorf("expected existing history kept, got %d", len(s.Movements()))
	}
}
