// Package storage provides the durable string-keyed store the inventory core
// persists into. The layout mirrors the single-profile browser storage of the
// original app: a handful of independent keys, each holding one JSON-encoded
// collection or one scalar preference.
package storage

import "context"

// Storage keys. Items moved keys across app generations; the current
// generation writes KeyItems and the migrate package still reads the two
// keys before it.
const (
	KeyItems   = "estoque_pro_pwa_v3"
	KeyItemsV2 = "estoque_pro_pwa_v2"
	KeyItemsV1 = "estoque_pwa"

	KeyGroups    = "estoque_groups"
	KeyMovements = "estoque_movements"

	KeySortMode    = "estoque_sort_mode"
	KeyOnlyLow     = "estoque_only_low"
	KeyGroupFilter = "estoque_group_filter"

	KeyPINHash       = "estoque_pin_hash"
	KeyNotifyEnabled = "estoque_notify_enabled"
	KeyLastNotify    = "estoque_last_notify"
)

// KV is a durable string-keyed store. Each Set must be atomic per key; the
// core runs one operation at a time and relies on read-modify-write-persist
// without interleaving.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
