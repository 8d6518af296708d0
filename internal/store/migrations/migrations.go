// Package migrations creates and upgrades the dashboard metadata schema.
// Migrations run in version order and are recorded in schema_migrations so
// a restart never reapplies one.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type migration struct {
	version    int
	name       string
	statements []string
}

var all = []migration{
	{
		version: 1,
		name:    "create dashboards",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS dashboards (
				id VARCHAR PRIMARY KEY,
				name VARCHAR NOT NULL,
				slug VARCHAR NOT NULL UNIQUE,
				refresh_interval_seconds INTEGER NOT NULL DEFAULT 300
			)`,
		},
	},
	{
		version: 2,
		name:    "create charts",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS charts (
				id VARCHAR PRIMARY KEY,
				dashboard_id VARCHAR NOT NULL REFERENCES dashboards (id),
				name VARCHAR NOT NULL,
				query VARCHAR NOT NULL,
				sort_order INTEGER NOT NULL DEFAULT 0
			)`,
		},
	},
	{
		version: 3,
		name:    "create selectors",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS selectors (
				id VARCHAR PRIMARY KEY,
				dashboard_id VARCHAR NOT NULL REFERENCES dashboards (id),
				name VARCHAR NOT NULL,
				label VARCHAR NOT NULL DEFAULT '',
				type VARCHAR NOT NULL,
				default_operator VARCHAR NOT NULL,
				is_required BOOLEAN NOT NULL DEFAULT FALSE,
				sort_order INTEGER NOT NULL DEFAULT 0,
				value_source VARCHAR,
				UNIQUE (dashboard_id, name)
			)`,
		},
	},
	{
		version: 4,
		name:    "create mappings",
		statements: []string{`
			CREATE TABLE IF NOT EXISTS mappings (
				id VARCHAR PRIMARY KEY,
				selector_id VARCHAR NOT NULL REFERENCES selectors (id),
				chart_id VARCHAR NOT NULL REFERENCES charts (id),
				target_column VARCHAR NOT NULL,
				target_table VARCHAR NOT NULL DEFAULT '',
				operator_override VARCHAR NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (selector_id, chart_id, target_column, target_table)
			)`,
		},
	},
}

// Run applies all pending migrations in version order.
func Run(ctx context.Context, db *sql.DB) error {
	logger := zap.S().Named("migrations")

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range all {
		if applied[m.version] {
			continue
		}
		logger.Infow("applying migration", "version", m.version, "name", m.name)
		for _, stmt := range m.statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("applying migration %d (%s): %w", m.version, m.name, err)
			}
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
	}

	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
