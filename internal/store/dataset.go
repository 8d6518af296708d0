package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// DatasetStore runs read queries against the analytical tables charts draw
// from. It never touches the metadata tables.
type DatasetStore struct {
	db QueryInterceptor
}

func NewDatasetStore(db QueryInterceptor) *DatasetStore {
	return &DatasetStore{db: db}
}

// Columns returns the output column names of query without materializing any
// rows. The query runs wrapped in a LIMIT 0 subselect.
func (s *DatasetStore) Columns(ctx context.Context, query string) ([]string, error) {
	body := strings.TrimRight(strings.TrimSpace(query), "; \t\n\r")
	probe := fmt.Sprintf("SELECT * FROM (%s) probe LIMIT 0", body)

	rows, err := s.db.QueryContext(ctx, probe)
	if err != nil {
		return nil, fmt.Errorf("probing query columns: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading probe columns: %w", err)
	}
	return cols, rows.Err()
}

// Execute runs query and returns its column names and up to maxRows rows
// with every value rendered as a string. The third return reports whether
// rows were dropped by the cap. A maxRows of zero means no cap.
func (s *DatasetStore) Execute(ctx context.Context, query string, maxRows int) ([]string, [][]string, bool, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, false, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, false, fmt.Errorf("reading columns: %w", err)
	}

	values := make([]any, len(cols))
	scan := make([]any, len(cols))
	for i := range values {
		scan[i] = &values[i]
	}

	out := make([][]string, 0)
	truncated := false
	for rows.Next() {
		if maxRows > 0 && len(out) >= maxRows {
			truncated = true
			break
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, nil, false, fmt.Errorf("scanning row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = renderValue(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, fmt.Errorf("iterating rows: %w", err)
	}
	return cols, out, truncated, nil
}

// DistinctValues returns the distinct non-NULL values of a column rendered
// as strings, ordered ascending, capped at limit.
func (s *DatasetStore) DistinctValues(ctx context.Context, table, column string, limit uint64) ([]string, error) {
	query, args, err := sq.Select(quoteIdent(column)).
		Distinct().
		From(quoteIdent(table)).
		Where(quoteIdent(column) + " IS NOT NULL").
		OrderBy("1").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building distinct query for %s.%s: %w", table, column, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading distinct values of %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning distinct value: %w", err)
		}
		values = append(values, renderValue(v))
	}
	return values, rows.Err()
}

// Labels resolves display labels for a batch of values in one query. The
// result maps each rendered value to its rendered label; values without a
// label row are absent.
func (s *DatasetStore) Labels(ctx context.Context, table, valueColumn, labelColumn string, values []string) (map[string]string, error) {
	if len(values) == 0 {
		return map[string]string{}, nil
	}

	query, args, err := sq.Select(quoteIdent(valueColumn), quoteIdent(labelColumn)).
		From(quoteIdent(table)).
		Where(sq.Eq{quoteIdent(valueColumn): values}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building label query for %s: %w", table, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading labels from %s: %w", table, err)
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var value, label any
		if err := rows.Scan(&value, &label); err != nil {
			return nil, fmt.Errorf("scanning label row: %w", err)
		}
		labels[renderValue(value)] = renderValue(label)
	}
	return labels, rows.Err()
}

// Tables returns the names of all base tables in the main schema.
func (s *DatasetStore) Tables(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("table_name").
		From("information_schema.tables").
		Where(sq.Eq{"table_schema": "main"}).
		OrderBy("table_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building tables query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// metadataTables are dashlite's own tables, hidden from schema listings.
var metadataTables = map[string]bool{
	"dashboards":        true,
	"charts":            true,
	"selectors":         true,
	"mappings":          true,
	"schema_migrations": true,
}

// ColumnsByTable maps every analytical table to its column names in declared
// order. dashlite's own metadata tables are left out.
func (s *DatasetStore) ColumnsByTable(ctx context.Context) (map[string][]string, error) {
	query, args, err := sq.Select("table_name", "column_name").
		From("information_schema.columns").
		Where(sq.Eq{"table_schema": "main"}).
		OrderBy("table_name", "ordinal_position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building columns query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()

	columns := make(map[string][]string)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, fmt.Errorf("scanning column row: %w", err)
		}
		if metadataTables[table] {
			continue
		}
		columns[table] = append(columns[table], column)
	}
	return columns, rows.Err()
}

// renderValue turns a scanned DuckDB value into its display string.
func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// quoteIdent quotes an identifier so names with spaces or mixed case survive.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
