package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TableBookmarks is the table every gateway query targets.
const TableBookmarks = "bookmarks_data"

var schemas = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS ` + TableBookmarks + ` (
	id          SERIAL PRIMARY KEY,
	title       TEXT NOT NULL,
	url         TEXT NOT NULL,
	description TEXT,
	rating      INTEGER NOT NULL
)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS ` + TableBookmarks + ` (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	url         TEXT NOT NULL,
	description TEXT,
	rating      INTEGER NOT NULL
)`,
}

// EnsureSchema creates bookmarks_data when it does not exist yet. Existing tables are left alone.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	ddl, ok := schemas[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", TableBookmarks, err)
	}
	return nil
}
