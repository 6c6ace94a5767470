package inventory

import (
	"sort"
	"strings"

	"github.com/estoquepro/estoque/internal/fold"
	"github.com/estoquepro/estoque/internal/model"
)

// SortMode selects the display order of a filtered item list. The values
// are the scalar tokens persisted in the sort preference.
type SortMode string

const (
	// SortTriage ranks out-of-stock items first, low-stock second and
	// normal items last, alphabetical within each rank.
	SortTriage SortMode = "low"
	// SortAlpha orders alphabetically by the composed title.
	SortAlpha SortMode = "az"
	// SortRecent orders by most recently updated first.
	SortRecent SortMode = "recent"
)

// Query selects and orders items for display.
type Query struct {
	Search        string
	Group         string
	OnlyAttention bool
	Sort          SortMode
}

// Filter is a pure function over an item collection: text search matches a
// case/accent-insensitive substring across group, model, name, location and
// description; the group filter requires an exact (case/accent-insensitive)
// group match; OnlyAttention keeps low and zero items.
func Filter(items []model.Item, q Query) []model.Item {
	needle := fold.Fold(q.Search)

	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if needle != "" && !matches(item, needle) {
			continue
		}
		if q.Group != "" && !fold.Equal(item.Group, q.Group) {
			continue
		}
		if q.OnlyAttention && !item.NeedsAttention() {
			continue
		}
		out = append(out, item)
	}

	sortItems(out, q.Sort)
	return out
}

func matches(item model.Item, needle string) bool {
	blob := strings.Join([]string{item.Group, item.Model, item.Name, item.Location, item.Description}, " ")
	return fold.Contains(blob, needle)
}

func sortItems(items []model.Item, mode SortMode) {
	switch mode {
	case SortAlpha:
		sort.SliceStable(items, func(i, j int) bool {
			return fold.Fold(items[i].Title()) < fold.Fold(items[j].Title())
		})
	case SortRecent:
		// ISO timestamps order lexically.
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UpdatedAt > items[j].UpdatedAt
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			ri, rj := triageRank(items[i]), triageRank(items[j])
			if ri != rj {
				return ri < rj
			}
			return fold.Fold(items[i].Title()) < fold.Fold(items[j].Title())
		})
	}
}

func triageRank(item model.Item) int {
	switch item.Level() {
	case model.StockZero:
		return 0
	case model.StockLow:
		return 1
	}
	return 2
}
