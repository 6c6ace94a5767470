package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. The kv table mirrors the string-keyed
// layout of the browser storage this app replaces: each key holds one
// JSON-encoded collection or one scalar preference.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
