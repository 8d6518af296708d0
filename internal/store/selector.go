package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/pkg/compose"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// Column name constants for the selectors table
const (
	selectorTable           = "selectors"
	selectorColID           = "id"
	selectorColDashboard    = "dashboard_id"
	selectorColName         = "name"
	selectorColLabel        = "label"
	selectorColType         = "type"
	selectorColDefaultOp    = "default_operator"
	selectorColIsRequired   = "is_required"
	selectorColSortOrder    = "sort_order"
	selectorColValueSource  = "value_source"
)

type SelectorStore struct {
	db QueryInterceptor
}

func NewSelectorStore(db QueryInterceptor) *SelectorStore {
	return &SelectorStore{db: db}
}

// Create inserts a new selector. The name must be free on its dashboard.
func (s *SelectorStore) Create(ctx context.Context, sel *models.Selector) error {
	taken, err := s.nameTaken(ctx, sel.DashboardID, sel.Name, "")
	if err != nil {
		return err
	}
	if taken {
		return srvErrors.NewDuplicateSelectorNameError(sel.Name)
	}

	valueSource, err := encodeValueSource(sel.ValueSource)
	if err != nil {
		return err
	}

	query, args, err := sq.Insert(selectorTable).
		Columns(selectorColID, selectorColDashboard, selectorColName, selectorColLabel,
			selectorColType, selectorColDefaultOp, selectorColIsRequired, selectorColSortOrder,
			selectorColValueSource).
		Values(sel.ID, sel.DashboardID, sel.Name, sel.Label,
			string(sel.Type), string(sel.DefaultOperator), sel.IsRequired, sel.SortOrder,
			valueSource).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert for selector %s: %w", sel.ID, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting selector %s: %w", sel.ID, err)
	}
	return nil
}

// Get returns a selector by its ID.
func (s *SelectorStore) Get(ctx context.Context, id string) (*models.Selector, error) {
	query, args, err := selectorSelect().
		Where(sq.Eq{selectorColID: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query for selector %s: %w", id, err)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	sel, err := scanSelector(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewSelectorNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning selector %s: %w", id, err)
	}
	return sel, nil
}

// ListByDashboard returns all selectors of a dashboard in display order.
func (s *SelectorStore) ListByDashboard(ctx context.Context, dashboardID string) ([]models.Selector, error) {
	query, args, err := selectorSelect().
		Where(sq.Eq{selectorColDashboard: dashboardID}).
		OrderBy(selectorColSortOrder, selectorColName, selectorColID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building selector list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing selectors of dashboard %s: %w", dashboardID, err)
	}
	defer rows.Close()

	var selectors []models.Selector
	for rows.Next() {
		sel, err := scanSelector(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning selector row: %w", err)
		}
		selectors = append(selectors, *sel)
	}
	return selectors, rows.Err()
}

// Update overwrites every mutable field of an existing selector.
func (s *SelectorStore) Update(ctx context.Context, sel *models.Selector) error {
	current, err := s.Get(ctx, sel.ID)
	if err != nil {
		return err
	}

	taken, err := s.nameTaken(ctx, current.DashboardID, sel.Name, sel.ID)
	if err != nil {
		return err
	}
	if taken {
		return srvErrors.NewDuplicateSelectorNameError(sel.Name)
	}

	valueSource, err := encodeValueSource(sel.ValueSource)
	if err != nil {
		return err
	}

	query, args, err := sq.Update(selectorTable).
		Set(selectorColName, sel.Name).
		Set(selectorColLabel, sel.Label).
		Set(selectorColType, string(sel.Type)).
		Set(selectorColDefaultOp, string(sel.DefaultOperator)).
		Set(selectorColIsRequired, sel.IsRequired).
		Set(selectorColSortOrder, sel.SortOrder).
		Set(selectorColValueSource, valueSource).
		Where(sq.Eq{selectorColID: sel.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update for selector %s: %w", sel.ID, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating selector %s: %w", sel.ID, err)
	}
	return nil
}

// Delete removes a selector and the mappings hanging off it.
func (s *SelectorStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM mappings WHERE selector_id = ?`, id); err != nil {
		return fmt.Errorf("deleting mappings of selector %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM selectors WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting selector %s: %w", id, err)
	}
	return nil
}

func (s *SelectorStore) nameTaken(ctx context.Context, dashboardID, name, excludeID string) (bool, error) {
	builder := sq.Select(selectorColID).
		From(selectorTable).
		Where(sq.Eq{selectorColDashboard: dashboardID, selectorColName: name})
	if excludeID != "" {
		builder = builder.Where(sq.NotEq{selectorColID: excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("building name lookup for %q: %w", name, err)
	}

	var id string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking selector name %q: %w", name, err)
	}
	return true, nil
}

func selectorSelect() sq.SelectBuilder {
	return sq.Select(selectorColID, selectorColDashboard, selectorColName, selectorColLabel,
		selectorColType, selectorColDefaultOp, selectorColIsRequired, selectorColSortOrder,
		selectorColValueSource).
		From(selectorTable)
}

func scanSelector(scan func(dest ...any) error) (*models.Selector, error) {
	var sel models.Selector
	var selType, defaultOp string
	var valueSource sql.NullString
	err := scan(&sel.ID, &sel.DashboardID, &sel.Name, &sel.Label,
		&selType, &defaultOp, &sel.IsRequired, &sel.SortOrder,
		&valueSource)
	if err != nil {
		return nil, err
	}
	sel.Type = compose.SelectorType(selType)
	sel.DefaultOperator = compose.Operator(defaultOp)
	sel.ValueSource, err = decodeValueSource(valueSource)
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

func encodeValueSource(vs *models.ValueSource) (*string, error) {
	if vs == nil {
		return nil, nil
	}
	raw, err := json.Marshal(vs)
	if err != nil {
		return nil, fmt.Errorf("encoding value source: %w", err)
	}
	encoded := string(raw)
	return &encoded, nil
}

func decodeValueSource(raw sql.NullString) (*models.ValueSource, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var vs models.ValueSource
	if err := json.Unmarshal([]byte(raw.String), &vs); err != nil {
		return nil, fmt.Errorf("decoding value source: %w", err)
	}
	return &vs, nil
}
