// Package inventory owns the canonical in-memory collections (items, groups,
// movements) and every mutation path over them. Each mutation validates,
// maintains cross-collection consistency and persists synchronously before
// it is visible; a failed persist leaves the previous state in place.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/estoquepro/estoque/internal/fold"
	"github.com/estoquepro/estoque/internal/ledger"
	"github.com/estoquepro/estoque/internal/migrate"
	"github.com/estoquepro/estoque/internal/model"
	"github.com/estoquepro/estoque/internal/storage"
)

// Store is the inventory state machine. Construct it once at startup with
// Open and keep it for the process lifetime; it assumes one operation at a
// time (no interleaved mutations).
type Store struct {
	kv     storage.KV
	items  []model.Item
	groups []string
	ledger *ledger.Ledger
}

// Draft carries the caller-editable fields for create and update.
type Draft struct {
	Group        string
	Model        string
	Name         string
	Description  string
	Location     string
	Photo        string
	Price        *float64
	Quantity     int
	LowThreshold int
}

// Open hydrates a store from durable storage, migrating items from whichever
// prior storage generation is present.
func Open(ctx context.Context, kv storage.KV) *Store {
	s := &Store{
		kv:     kv,
		items:  migrate.Load(ctx, kv),
		ledger: ledger.Load(ctx, kv),
	}
	s.groups = loadGroups(ctx, kv, s.items)
	return s
}

// Items returns a copy of the live item collection.
func (s *Store) Items() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the item with the given id.
func (s *Store) Item(id int64) (*model.Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, &NotFoundError{Kind: "item", ID: id}
	}
	item := s.items[idx]
	return &item, nil
}

// Groups returns a copy of the group list. The sentinel group is always
// present.
func (s *Store) Groups() []string {
	out := make([]string, len(s.groups))
	copy(out, s.groups)
	return out
}

// History returns the movements recorded against one item, newest first.
func (s *Store) History(itemID int64) []model.Movement {
	return s.ledger.ByItem(itemID)
}

// Movements returns the full movement history, newest first.
func (s *Store) Movements() []model.Movement {
	return s.ledger.All()
}

// Filter returns the items matching q, in q's sort order.
func (s *Store) Filter(q Query) []model.Item {
	return Filter(s.items, q)
}

// Create validates a draft, assigns the next id, ensures the group exists
// and appends the item plus a zero-delta "created" movement.
func (s *Store) Create(ctx context.Context, draft Draft) (*model.Item, error) {
	if err := validate(draft); err != nil {
		return nil, err
	}

	group, err := s.EnsureGroup(ctx, draft.Group)
	if err != nil {
		return nil, err
	}

	item := draftItem(draft, group)
	item.ID = s.nextID()
	item.UpdatedAt = model.NowISO()

	items := append(s.Items(), item)
	if err := s.persistItems(ctx, items); err != nil {
		return nil, err
	}
	s.items = items

	if _, err := s.ledger.Append(ctx, item.ID, 0, model.NoteCreated); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update replaces every mutable field of an existing item and records a
// zero-delta "edit" movement.
func (s *Store) Update(ctx context.Context, id int64, draft Draft) (*model.Item, error) {
	if err := validate(draft); err != nil {
		return nil, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, &NotFoundError{Kind: "item", ID: id}
	}

	group, err := s.EnsureGroup(ctx, draft.Group)
	if err != nil {
		return nil, err
	}

	item := draftItem(draft, group)
	item.ID = id
	item.UpdatedAt = model.NowISO()

	items := s.Items()
	items[idx] = item
	if err := s.persistItems(ctx, items); err != nil {
		return nil, err
	}
	s.items = items

	if _, err := s.ledger.Append(ctx, id, 0, model.NoteEdited); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes an item and prunes its movements.
func (s *Store) Delete(ctx context.Context, id int64) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return &NotFoundError{Kind: "item", ID: id}
	}

	items := append(s.Items()[:idx], s.items[idx+1:]...)
	if err := s.persistItems(ctx, items); err != nil {
		return err
	}
	s.items = items

	return s.ledger.PruneItem(ctx, id)
}

// AdjustQuantity applies a signed delta to an item's quantity, clamped at
// zero, and records the movement. The requested delta is recorded even when
// clamping makes the effective change smaller, so the ledger reflects what
// was asked for.
func (s *Store) AdjustQuantity(ctx context.Context, id int64, delta int, note string) (*model.Item, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, &NotFoundError{Kind: "item", ID: id}
	}

	items := s.Items()
	item := &items[idx]
	item.Quantity = max(0, item.Quantity+delta)
	item.UpdatedAt = model.NowISO()

	if err := s.persistItems(ctx, items); err != nil {
		return nil, err
	}
	s.items = items

	if _, err := s.ledger.Append(ctx, id, delta, note); err != nil {
		return nil, err
	}
	out := items[idx]
	return &out, nil
}

// EnsureGroup resolves a group label to its canonical entry, creating the
// entry when no case/accent-insensitive match exists. Empty input resolves
// to the sentinel group. Pre-existing casing wins.
func (s *Store) EnsureGroup(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.GroupUngrouped
	}

	for _, g := range s.groups {
		if fold.Equal(g, name) {
			return g, nil
		}
	}

	groups := append(s.Groups(), name)
	if err := s.persistGroups(ctx, groups); err != nil {
		return "", err
	}
	s.groups = groups
	return name, nil
}

// RenameGroup relabels a group and every item referencing it.
func (s *Store) RenameGroup(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return validationf("group name is required")
	}
	if fold.Equal(oldName, model.GroupUngrouped) {
		return validationf("the %q group cannot be renamed", model.GroupUngrouped)
	}

	oldIdx := -1
	for i, g := range s.groups {
		if fold.Equal(g, oldName) {
			oldIdx = i
		} else if fold.Equal(g, newName) {
			return validationf("a group named %q already exists", g)
		}
	}
	if oldIdx < 0 {
		return &NotFoundError{Kind: "group", Name: oldName}
	}

	groups := s.Groups()
	groups[oldIdx] = newName

	items := s.Items()
	for i := range items {
		if fold.Equal(items[i].Group, oldName) {
			items[i].Group = newName
			items[i].UpdatedAt = model.NowISO()
		}
	}

	if err := s.persistItems(ctx, items); err != nil {
		return err
	}
	if err := s.persistGroups(ctx, groups); err != nil {
		return err
	}
	s.items = items
	s.groups = groups
	return nil
}

// DeleteGroup removes a group, reassigning its items to the sentinel group.
// The sentinel group itself cannot be deleted.
func (s *Store) DeleteGroup(ctx context.Context, name string) error {
	if fold.Equal(name, model.GroupUngrouped) {
		return validationf("the %q group cannot be deleted", model.GroupUngrouped)
	}

	idx := -1
	for i, g := range s.groups {
		if fold.Equal(g, name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "group", Name: name}
	}

	groups := append(s.Groups()[:idx], s.groups[idx+1:]...)

	items := s.Items()
	for i := range items {
		if fold.Equal(items[i].Group, name) {
			items[i].Group = model.GroupUngrouped
			items[i].UpdatedAt = model.NowISO()
		}
	}

	if err := s.persistItems(ctx, items); err != nil {
		return err
	}
	if err := s.persistGroups(ctx, groups); err != nil {
		return err
	}
	s.items = items
	s.groups = groups
	return nil
}

// ReplaceAll swaps in a whole new state, used by restore and import. When
// groups is nil the group set is re-derived from the incoming items; when
// movements is nil the existing history is kept. Colliding or missing item
// ids are reassigned. Returns the number of items now in the store.
func (s *Store) ReplaceAll(ctx context.Context, items []model.Item, groups []string, movements []model.Movement) (int, error) {
	items = dedupeIDs(items)

	if groups == nil {
		groups = deriveGroups(items)
	} else {
		groups = dedupeGroups(groups)
	}

	if err := s.persistItems(ctx, items); err != nil {
		return 0, err
	}
	if err := s.persistGroups(ctx, groups); err != nil {
		return 0, err
	}
	if movements != nil {
		if err := s.ledger.Replace(ctx, movements); err != nil {
			return 0, err
		}
	}

	s.items = items
	s.groups = groups
	return len(items), nil
}

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) nextID() int64 {
	var maxID int64
	for i := range s.items {
		if s.items[i].ID > maxID {
			maxID = s.items[i].ID
		}
	}
	return maxID + 1
}

func (s *Store) persistItems(ctx context.Context, items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyItems, string(data)); err != nil {
		return fmt.Errorf("persisting items: %w", err)
	}
	return nil
}

func (s *Store) persistGroups(ctx context.Context, groups []string) error {
	data, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("encoding groups: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyGroups, string(data)); err != nil {
		return fmt.Errorf("persisting groups: %w", err)
	}
	return nil
}

func validate(d Draft) error {
	if strings.TrimSpace(d.Name) == "" {
		return validationf("name is required")
	}
	if d.Quantity < 0 {
		return validationf("quantity cannot be negative")
	}
	if d.Price != nil && (*d.Price < 0 || math.IsNaN(*d.Price) || math.IsInf(*d.Price, 0)) {
		return validationf("price must be empty or a non-negative number")
	}
	return nil
}

func draftItem(d Draft, group string) model.Item {
	return model.Item{
		Group:        group,
		Model:        strings.TrimSpace(d.Model),
		Name:         strings.TrimSpace(d.Name),
		Description:  strings.TrimSpace(d.Description),
		Location:     strings.TrimSpace(d.Location),
		Photo:        d.Photo,
		Price:        d.Price,
		Quantity:     d.Quantity,
		LowThreshold: max(0, d.LowThreshold),
	}
}

// loadGroups reads the persisted group list, falling back to deriving it
// from the item collection. The sentinel group is always included.
func loadGroups(ctx context.Context, kv storage.KV, items []model.Item) []string {
	raw, ok, err := kv.Get(ctx, storage.KeyGroups)
	if err == nil && ok && raw != "" {
		var groups []string
		if err := json.Unmarshal([]byte(raw), &groups); err == nil {
			return dedupeGroups(groups)
		}
	}
	return deriveGroups(items)
}

func deriveGroups(items []model.Item) []string {
	groups := []string{model.GroupUngrouped}
	for _, item := range items {
		groups = append(groups, item.Group)
	}
	return dedupeGroups(groups)
}

// dedupeGroups removes case/accent-insensitive duplicates (first occurrence
// wins) and guarantees the sentinel entry.
func dedupeGroups(groups []string) []string {
	out := []string{model.GroupUngrouped}
	seen := map[string]bool{fold.Fold(model.GroupUngrouped): true}
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		key := fold.Fold(g)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
	}
	return out
}

// dedupeIDs reassigns missing or colliding ids on an incoming collection so
// the uniqueness invariant holds after a wholesale replace.
func dedupeIDs(items []model.Item) []model.Item {
	seen := make(map[int64]bool, len(items))
	var maxID int64
	for i := range items {
		if items[i].ID > maxID {
			maxID = items[i].ID
		}
	}
	for i := range items {
		if items[i].ID <= 0 || seen[items[i].ID] {
			maxID++
			items[i].ID = maxID
		}
		seen[items[i].ID] = true
	}
	return items
}
