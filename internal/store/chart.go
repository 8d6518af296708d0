package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/dashlite/dashlite/internal/models"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// Column name constants for the charts table
const (
	chartTable        = "charts"
	chartColID        = "id"
	chartColDashboard = "dashboard_id"
	chartColName      = "name"
	chartColQuery     = "query"
	chartColSortOrder = "sort_order"
)

type ChartStore struct {
	db QueryInterceptor
}

func NewChartStore(db QueryInterceptor) *ChartStore {
	return &ChartStore{db: db}
}

// Create inserts a new chart.
func (s *ChartStore) Create(ctx context.Context, c *models.Chart) error {
	query, args, err := sq.Insert(chartTable).
		Columns(chartColID, chartColDashboard, chartColName, chartColQuery, chartColSortOrder).
		Values(c.ID, c.DashboardID, c.Name, c.Query, c.SortOrder).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert for chart %s: %w", c.ID, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting chart %s: %w", c.ID, err)
	}
	return nil
}

// Get returns a chart by its ID.
func (s *ChartStore) Get(ctx context.Context, id string) (*models.Chart, error) {
	query, args, err := sq.Select(chartColID, chartColDashboard, chartColName, chartColQuery, chartColSortOrder).
		From(chartTable).
		Where(sq.Eq{chartColID: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query for chart %s: %w", id, err)
	}

	var c models.Chart
	row := s.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&c.ID, &c.DashboardID, &c.Name, &c.Query, &c.SortOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewChartNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chart %s: %w", id, err)
	}
	return &c, nil
}

// ListByDashboard returns all charts of a dashboard in display order.
func (s *ChartStore) ListByDashboard(ctx context.Context, dashboardID string) ([]models.Chart, error) {
	query, args, err := sq.Select(chartColID, chartColDashboard, chartColName, chartColQuery, chartColSortOrder).
		From(chartTable).
		Where(sq.Eq{chartColDashboard: dashboardID}).
		OrderBy(chartColSortOrder, chartColName, chartColID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building chart list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing charts of dashboard %s: %w", dashboardID, err)
	}
	defer rows.Close()

	var charts []models.Chart
	for rows.Next() {
		var c models.Chart
		if err := rows.Scan(&c.ID, &c.DashboardID, &c.Name, &c.Query, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning chart row: %w", err)
		}
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

// Update overwrites every mutable field of an existing chart.
func (s *ChartStore) Update(ctx context.Context, c *models.Chart) error {
	if _, err := s.Get(ctx, c.ID); err != nil {
		return err
	}

	query, args, err := sq.Update(chartTable).
		Set(chartColName, c.Name).
		Set(chartColQuery, c.Query).
		Set(chartColSortOrder, c.SortOrder).
		Where(sq.Eq{chartColID: c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update for chart %s: %w", c.ID, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating chart %s: %w", c.ID, err)
	}
	return nil
}

// Delete removes a chart and the mappings targeting it.
func (s *ChartStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM mappings WHERE chart_id = ?`, id); err != nil {
		return fmt.Errorf("deleting mappings of chart %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting chart %s: %w", id, err)
	}
	return nil
}
