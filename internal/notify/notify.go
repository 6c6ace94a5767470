// Package notify fires low-stock notifications through a platform-provided
// sender, at most once per cooldown window so repeated checks don't spam
// the user.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/estoquepro/estoque/internal/model"
	"github.com/estoquepro/estoque/internal/storage"
)

// DefaultCooldown is the minimum interval between notifications.
const DefaultCooldown = 12 * time.Hour

// Sender delivers a notification to the user. The platform layer provides
// the implementation; the core never talks to notification APIs directly.
type Sender interface {
	Send(title, body string) error
}

// Notifier checks the item collection for low or out-of-stock entries.
type Notifier struct {
	kv       storage.KV
	sender   Sender
	cooldown time.Duration
	now      func() time.Time
}

// New builds a notifier with the default cooldown.
func New(kv storage.KV, sender Sender) *Notifier {
	return &Notifier{kv: kv, sender: sender, cooldown: DefaultCooldown, now: time.Now}
}

// WithCooldown overrides the cooldown window.
func (n *Notifier) WithCooldown(d time.Duration) *Notifier {
	n.cooldown = d
	return n
}

// Enabled reports whether the user has turned notifications on.
func (n *Notifier) Enabled(ctx context.Context) (bool, error) {
	raw, ok, err := n.kv.Get(ctx, storage.KeyNotifyEnabled)
	if err != nil {
		return false, fmt.Errorf("reading notify flag: %w", err)
	}
	return ok && raw == "1", nil
}

// SetEnabled persists the notification flag.
func (n *Notifier) SetEnabled(ctx context.Context, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	if err := n.kv.Set(ctx, storage.KeyNotifyEnabled, value); err != nil {
		return fmt.Errorf("saving notify flag: %w", err)
	}
	return nil
}

// CheckLowStock sends one notification when any item needs attention, the
// flag is on and the cooldown window has elapsed. Reports whether a
// notification was sent.
func (n *Notifier) CheckLowStock(ctx context.Context, items []model.Item) (bool, error) {
	enabled, err := n.Enabled(ctx)
	if err != nil || !enabled {
		return false, err
	}

	attention := 0
	for i := range items {
		if items[i].NeedsAttention() {
			attention++
		}
	}
	if attention == 0 {
		return false, nil
	}

	if raw, ok, err := n.kv.Get(ctx, storage.KeyLastNotify); err != nil {
		return false, fmt.Errorf("reading last notification time: %w", err)
	} else if ok {
		if last, err := time.Parse(time.RFC3339, raw); err == nil {
			if n.now().Sub(last) < n.cooldown {
				return false, nil
			}
		}
	}

	body := fmt.Sprintf("%d item(s) low or out of stock", attention)
	if err := n.sender.Send("Low stock", body); err != nil {
		return false, fmt.Errorf("sending notification: %w", err)
	}

	if err := n.kv.Set(ctx, storage.KeyLastNotify, n.now().UTC().Format(time.RFC3339)); err != nil {
		return true, fmt.Errorf("recording notification time: %w", err)
	}
	return true, nil
}
