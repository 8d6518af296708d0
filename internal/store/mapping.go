package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/pkg/compose"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// Column name constants for the mappings table
const (
	mappingTable       = "mappings"
	mappingColID       = "id"
	mappingColSelector = "selector_id"
	mappingColChart    = "chart_id"
	mappingColColumn   = "target_column"
	mappingColTable    = "target_table"
	mappingColOperator = "operator_override"
	mappingColCreated  = "created_at"
)

type MappingStore struct {
	db QueryInterceptor
}

func NewMappingStore(db QueryInterceptor) *MappingStore {
	return &MappingStore{db: db}
}

// Create inserts a new mapping. An identical selector-chart-column binding
// is rejected.
func (s *MappingStore) Create(ctx context.Context, m *models.Mapping) error {
	exists, err := s.bindingExists(ctx, m)
	if err != nil {
		return err
	}
	if exists {
		return srvErrors.NewDuplicateMappingError()
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query, args, err := sq.Insert(mappingTable).
		Columns(mappingColID, mappingColSelector, mappingColChart, mappingColColumn,
			mappingColTable, mappingColOperator, mappingColCreated).
		Values(m.ID, m.SelectorID, m.ChartID, m.TargetColumn,
			m.TargetTable, string(m.OperatorOverride), m.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert for mapping %s: %w", m.ID, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting mapping %s: %w", m.ID, err)
	}
	return nil
}

// Get returns a mapping by its ID.
func (s *MappingStore) Get(ctx context.Context, id string) (*models.Mapping, error) {
	query, args, err := mappingSelect("").
		Where(sq.Eq{mappingColID: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query for mapping %s: %w", id, err)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	m, err := scanMapping(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewMappingNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning mapping %s: %w", id, err)
	}
	return m, nil
}

// ListByChart returns the mappings targeting a chart in creation order.
func (s *MappingStore) ListByChart(ctx context.Context, chartID string) ([]models.Mapping, error) {
	query, args, err := mappingSelect("").
		Where(sq.Eq{mappingColChart: chartID}).
		OrderBy(mappingColCreated, mappingColID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building mapping list query: %w", err)
	}
	return s.list(ctx, query, args)
}

// ListBySelector returns the mappings of one selector in creation order.
func (s *MappingStore) ListBySelector(ctx context.Context, selectorID string) ([]models.Mapping, error) {
	query, args, err := mappingSelect("").
		Where(sq.Eq{mappingColSelector: selectorID}).
		OrderBy(mappingColCreated, mappingColID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building mapping list query: %w", err)
	}
	return s.list(ctx, query, args)
}

// ListByDashboard returns every mapping whose selector belongs to the
// dashboard, in creation order.
func (s *MappingStore) ListByDashboard(ctx context.Context, dashboardID string) ([]models.Mapping, error) {
	query, args, err := mappingSelect("m").
		Join("selectors s ON m.selector_id = s.id").
		Where(sq.Eq{"s.dashboard_id": dashboardID}).
		OrderBy("m."+mappingColCreated, "m."+mappingColID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building mapping list query: %w", err)
	}
	return s.list(ctx, query, args)
}

func (s *MappingStore) list(ctx context.Context, query string, args []any) ([]models.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.Mapping
	for rows.Next() {
		m, err := scanMapping(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning mapping row: %w", err)
		}
		mappings = append(mappings, *m)
	}
	return mappings, rows.Err()
}

// Delete removes a mapping.
func (s *MappingStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	query, args, err := sq.Delete(mappingTable).
		Where(sq.Eq{mappingColID: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete for mapping %s: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting mapping %s: %w", id, err)
	}
	return nil
}

func (s *MappingStore) bindingExists(ctx context.Context, m *models.Mapping) (bool, error) {
	query, args, err := sq.Select(mappingColID).
		From(mappingTable).
		Where(sq.Eq{
			mappingColSelector: m.SelectorID,
			mappingColChart:    m.ChartID,
			mappingColColumn:   m.TargetColumn,
			mappingColTable:    m.TargetTable,
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("building mapping lookup: %w", err)
	}

	var id string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking mapping binding: %w", err)
	}
	return true, nil
}

func mappingSelect(alias string) sq.SelectBuilder {
	prefix := ""
	from := mappingTable
	if alias != "" {
		prefix = alias + "."
		from = mappingTable + " " + alias
	}
	return sq.Select(prefix+mappingColID, prefix+mappingColSelector, prefix+mappingColChart,
		prefix+mappingColColumn, prefix+mappingColTable, prefix+mappingColOperator,
		prefix+mappingColCreated).
		From(from)
}

func scanMapping(scan func(dest ...any) error) (*models.Mapping, error) {
	var m models.Mapping
	var operator string
	err := scan(&m.ID, &m.SelectorID, &m.ChartID, &m.TargetColumn,
		&m.TargetTable, &operator, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.OperatorOverride = compose.Operator(operator)
	return &m, nil
}
