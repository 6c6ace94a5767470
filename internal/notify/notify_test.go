package notify

import (
	"context"
	"testing"
	"time"

	"github.com/estoquepro/estoque/internal/model"
	"github.com/estoquepro/estoque/internal/storage"
)

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Send(title, body string) error {
	f.sent = append(f.sent, body)
	return nil
}

func lowItems() []model.Item {
	return []model.Item{
		{Name: "A", Quantity: 0, LowThreshold: 2},
		{Name: "B", Quantity: 1, LowThreshold: 2},
		{Name: "C", Quantity: 10, LowThreshold: 2},
	}
}

func TestCheckLowStockDisabledByDefault(t *testing.T) {
	sender := &fakeSender{}
	n := New(storage.NewMemory(), sender)

	sent, err := n.CheckLowStock(context.Background(), lowItems())
	if err != nil {
		t.Fatal(err)
	}
	if sent || len(sender.sent) != 0 {
		t.Error("expected no notification while disabled")
	}
}

func TestCheckLowStockSendsOnce(t *testing.T) {
	sender := &fakeSender{}
	n := New(storage.NewMemory(), sender)
	ctx := context.Background()
	n.SetEnabled(ctx, true)

	sent, err := n.CheckLowStock(ctx, lowItems())
	if err != nil {
		t.Fatal(err)
	}
	if !sent || len(sender.sent) != 1 {
		t.Fatalf("expected one notification, got %v", sender.sent)
	}

	// Second check within the cooldown window stays silent.
	sent, err = n.CheckLowStock(ctx, lowItems())
	if err != nil {
		t.Fatal(err)
	}
	if sent || len(sender.sent) != 1 {
		t.Error("expected cooldown to suppress repeat notification")
	}
}

func TestCheckLowStockAfterCooldown(t *testing.T) {
	sender := &fakeSender{}
	n := New(storage.NewMemory(), sender)
	ctx := context.Background()
	n.SetEnabled(ctx, true)

	current := time.Now()
	n.now = func() time.Time { return current }

	n.CheckLowStock(ctx, lowItems())
	current = current.Add(DefaultCooldown + time.Minute)

	sent, err := n.CheckLowStock(ctx, lowItems())
	if err != nil {
		t.Fatal(err)
	}
	if !sent || len(sender.sent) != 2 {
		t.Errorf("expected second notification after cooldown, got %v", sender.sent)
	}
}

func TestCheckLowStockNothingLow(t *testing.T) {
	sender := &fakeSender{}
	n := New(storage.NewMemory(), sender)
	ctx := context.Background()
	n.SetEnabled(ctx, true)

	items := []model.Item{{Name: "A", Quantity: 10, LowThreshold: 2}}
	sent, err := n.CheckLowStock(ctx, items)
	if err != nil {
		t.Fatal(err)
	}
	if sent {
		t.Error("expected no notification when nothing needs attention")
	}
}
