package auth

import (
	"context"
	"testing"

	"github.com/estoquepro/estoque/internal/storage"
)

func TestPINLifecycle(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()

	enabled, err := Enabled(ctx, kv)
	if err != nil {
		t.Fatal(err)
	}
	if enabled {
		t.Error("expected PIN disabled initially")
	}

	// With no PIN configured, every attempt passes.
	if ok, _ := VerifyPIN(ctx, kv, "anything"); !ok {
		t.Error("expected open gate without a PIN")
	}

	if err := SetPIN(ctx, kv, "1234"); err != nil {
		t.Fatalf("SetPIN: %v", err)
	}
	if enabled, _ := Enabled(ctx, kv); !enabled {
		t.Error("expected PIN enabled after set")
	}

	if ok, _ := VerifyPIN(ctx, kv, "1234"); !ok {
		t.Error("expected correct PIN to verify")
	}
	if ok, _ := VerifyPIN(ctx, kv, "9999"); ok {
		t.Error("expected wrong PIN to fail")
	}

	if err := ClearPIN(ctx, kv); err != nil {
		t.Fatalf("ClearPIN: %v", err)
	}
	if enabled, _ := Enabled(ctx, kv); enabled {
		t.Error("expected PIN disabled after clear")
	}
}

func TestSetPINTooShort(t *testing.T) {
	if err := SetPIN(context.Background(), storage.NewMemory(), "12"); err == nil {
		t.Error("expected error for short PIN")
	}
}

func TestPINStoredAsHashOnly(t *testing.T) {
	kv := storage.NewMemory()
	ctx := context.Background()

	SetPIN(ctx, kv, "1234")
	raw, _, _ := kv.Get(ctx, storage.KeyPINHash)
	if raw == "1234" {
		t.Error("PIN must never be stored in clear text")
	}
}
