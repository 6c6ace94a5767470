// Package normalize converts raw decoded records from any storage generation
// into canonical items. No version tag is stored anywhere, so the schema
// generation of a record is inferred structurally: the presence of any
// "modern" field name selects the modern mapping, everything else is treated
// as the oldest flat shape. The current generation writes English field
// names; the browser generations before it wrote Portuguese ones, and both
// spellings are accepted for every field.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/estoquepro/estoque/internal/model"
)

// modernKeys are the field names whose presence marks a record as modern.
var modernKeys = []string{"name", "model", "group", "nome", "modelo", "grupo"}

// Normalize maps an arbitrary decoded record to a canonical item, or nil if
// the record is not an object. index and seed synthesize unique ids for
// records that carry none: seed is a time-derived base shared by one batch.
func Normalize(raw any, index int, seed int64) *model.Item {
	rec, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	for _, key := range modernKeys {
		if _, ok := rec[key]; ok {
			return modern(rec, index, seed)
		}
	}
	return legacy(rec, index, seed)
}

func modern(rec map[string]any, index int, seed int64) *model.Item {
	item := &model.Item{
		ID:           recordID(rec, index, seed),
		Group:        str(rec, "group", "grupo"),
		Model:        str(rec, "model", "modelo"),
		Name:         str(rec, "name", "nome"),
		Description:  str(rec, "description", "descricao"),
		Location:     str(rec, "location", "local"),
		Photo:        str(rec, "photo", "foto"),
		Price:        price(field(rec, "price", "valor")),
		Quantity:     clamp(SafeNum(field(rec, "quantity", "quantidade"), 0)),
		LowThreshold: clamp(SafeNum(field(rec, "lowThreshold", "limite"), model.DefaultLowThreshold)),
		UpdatedAt:    stamp(field(rec, "updatedAt", "atualizado_em")),
	}
	if strings.TrimSpace(item.Group) == "" {
		item.Group = model.GroupUngrouped
	}
	return item
}

// legacy lifts the oldest flat shape {description, value, quantity} into the
// canonical form: the description becomes the name and the item lands in the
// sentinel group with default threshold.
func legacy(rec map[string]any, index int, seed int64) *model.Item {
	item := &model.Item{
		ID:           recordID(rec, index, seed),
		Group:        model.GroupUngrouped,
		Name:         str(rec, "descricao", "description"),
		Quantity:     clamp(SafeNum(field(rec, "quantidade", "quantity"), 0)),
		LowThreshold: model.DefaultLowThreshold,
		UpdatedAt:    stamp(field(rec, "atualizado_em", "updatedAt")),
	}
	if v, ok := firstField(rec, "valor", "value"); ok {
		item.Price = price(v)
		if item.Price == nil {
			zero := 0.0
			item.Price = &zero
		}
	}
	return item
}

// Collection extracts the item array from a decoded payload: either a bare
// array or a wrapper object with the collection under "products" (browser
// generations) or "items" (backup files).
func Collection(decoded any) ([]any, bool) {
	switch d := decoded.(type) {
	case []any:
		return d, true
	case map[string]any:
		for _, key := range []string{"products", "items"} {
			if arr, ok := d[key].([]any); ok {
				return arr, true
			}
		}
	}
	return nil, false
}

// SafeNum parses v as a number, substituting fallback when it is absent,
// unparsable or not finite.
func SafeNum(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fallback
		}
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsInf(f, 0) {
			return fallback
		}
		return f
	}
	return fallback
}

// ParseOptionalMoney parses a user-entered price. Empty input means "no
// price set" and yields nil; a negative or unparsable value is an error.
func ParseOptionalMoney(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return nil, fmt.Errorf("invalid price %q", s)
	}
	if n < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	return &n, nil
}

// price follows the legacy coercion rule for untrusted records: null and
// empty string mean no price, and a value that fails numeric coercion
// becomes 0 instead of an error. Old backups contain such records, so the
// rule is kept for compatibility.
func price(v any) *float64 {
	switch s := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(s) == "" {
			return nil
		}
	}
	n := SafeNum(v, 0)
	if n < 0 {
		n = 0
	}
	return &n
}

func clamp(n float64) int {
	if n < 0 {
		return 0
	}
	return int(n)
}

func recordID(rec map[string]any, index int, seed int64) int64 {
	id := int64(SafeNum(field(rec, "id"), 0))
	if id <= 0 {
		id = seed + int64(index)
	}
	return id
}

func stamp(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return model.NowISO()
}

// field returns the value of the first present key, or nil.
func field(rec map[string]any, keys ...string) any {
	v, _ := firstField(rec, keys...)
	return v
}

func firstField(rec map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := rec[key]; ok {
			return v, true
		}
	}
	return nil, false
}

func str(rec map[string]any, keys ...string) string {
	switch v := field(rec, keys...).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
