package store

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

// NewDB opens the DuckDB file holding both the catalog tables and the
// datasets charts query. ":memory:" gives a throwaway database for tests.
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb at %s: %w", path, err)
	}

	// DuckDB allows one writer. Capping the pool at a single connection
	// keeps idle connections from holding up WAL checkpoints.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Extensions land next to the database file instead of ~/.duckdb,
	// which may not be writable where the server runs.
	if path != ":memory:" {
		if _, err := db.Exec(fmt.Sprintf("SET extension_directory = '%s'", filepath.Dir(path))); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting extension directory: %w", err)
		}
	}

	return db, nil
}
