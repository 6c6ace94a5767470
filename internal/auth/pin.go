// Package auth implements the optional PIN gate. Only a one-way bcrypt hash
// of the PIN is ever persisted; there are no sessions or recovery paths.
package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/estoquepro/estoque/internal/storage"
)

// MinPINLength is the minimum accepted PIN length.
const MinPINLength = 4

// SetPIN hashes and stores a new PIN, replacing any existing one.
func SetPIN(ctx context.Context, kv storage.KV, pin string) error {
	pin = strings.TrimSpace(pin)
	if len(pin) < MinPINLength {
		return fmt.Errorf("PIN must be at least %d characters", MinPINLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing PIN: %w", err)
	}
	if err := kv.Set(ctx, storage.KeyPINHash, string(hash)); err != nil {
		return fmt.Errorf("storing PIN hash: %w", err)
	}
	return nil
}

// Enabled reports whether a PIN has been configured.
func Enabled(ctx context.Context, kv storage.KV) (bool, error) {
	_, ok, err := kv.Get(ctx, storage.KeyPINHash)
	if err != nil {
		return false, fmt.Errorf("reading PIN hash: %w", err)
	}
	return ok, nil
}

// VerifyPIN checks a PIN attempt against the stored hash. When no PIN is
// configured the gate is open and every attempt verifies.
func VerifyPIN(ctx context.Context, kv storage.KV, pin string) (bool, error) {
	hash, ok, err := kv.Get(ctx, storage.KeyPINHash)
	if err != nil {
		return false, fmt.Errorf("reading PIN hash: %w", err)
	}
	if !ok {
		return true, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(pin))) == nil, nil
}

// ClearPIN removes the PIN gate.
func ClearPIN(ctx context.Context, kv storage.KV) error {
	if err := kv.Delete(ctx, storage.KeyPINHash); err != nil {
		return fmt.Errorf("clearing PIN hash: %w", err)
	}
	return nil
}
