package exchange

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/estoquepro/estoque/internal/fold"
	"github.com/estoquepro/estoque/internal/inventory"
	"github.com/estoquepro/estoque/internal/model"
	"github.com/estoquepro/estoque/internal/normalize"
)

// Columns is the fixed CSV column order for export. Import matches columns
// by normalized header name, so files may order them differently. Photos
// are never carried over CSV.
var Columns = []string{
	"id", "group", "model", "name", "location", "description",
	"price", "quantity", "lowThreshold", "updatedAt",
}

// ExportCSV encodes the item collection with RFC4180 quoting.
func ExportCSV(items []model.Item) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for _, item := range items {
		price := ""
		if item.Price != nil {
			price = strconv.FormatFloat(*item.Price, 'f', -1, 64)
		}
		row := []string{
			strconv.FormatInt(item.ID, 10),
			item.Group,
			item.Model,
			item.Name,
			item.Location,
			item.Description,
			price,
			strconv.Itoa(item.Quantity),
			strconv.Itoa(item.LowThreshold),
			item.UpdatedAt,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportCSV replaces the whole catalog from a CSV file. Column lookup is
// header-driven and case-insensitive; missing columns default gracefully
// through the normalizer; rows whose name is empty after trimming are
// skipped. As destructive as RestoreJSON. Returns the item count.
func ImportCSV(ctx context.Context, s *inventory.Store, data []byte) (int, error) {
	// Spreadsheet exports often prepend a UTF-8 BOM.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return 0, &ParseError{Err: err}
	}
	if len(rows) == 0 {
		return 0, &ParseError{Err: fmt.Errorf("empty CSV file")}
	}

	columns := headerIndex(rows[0])
	if _, ok := columns["name"]; !ok {
		return 0, &ParseError{Err: fmt.Errorf("missing name column")}
	}

	seed := time.Now().UnixMilli()
	items := make([]model.Item, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec := make(map[string]any, len(columns))
		for name, col := range columns {
			if col < len(row) {
				rec[name] = row[col]
			}
		}

		item := normalize.Normalize(rec, i, seed)
		if item == nil || strings.TrimSpace(item.Name) == "" {
			continue
		}
		item.Photo = ""
		items = append(items, *item)
	}

	return s.ReplaceAll(ctx, items, nil, nil)
}

// headerIndex maps known canonical column names to their position in the
// header row. Unknown headers are ignored.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(Columns))
	for col, name := range header {
		for _, canonical := range Columns {
			if fold.Equal(name, canonical) {
				index[canonical] = col
				break
			}
		}
	}
	return index
}
