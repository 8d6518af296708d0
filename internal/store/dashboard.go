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

// Column name constants for the dashboards table
const (
	dashboardTable          = "dashboards"
	dashboardColID          = "id"
	dashboardColName        = "name"
	dashboardColSlug        = "slug"
	dashboardColRefreshSecs = "refresh_interval_seconds"
)

type DashboardStore struct {
	db QueryInterceptor
}

func NewDashboardStore(db QueryInterceptor) *DashboardStore {
	return &DashboardStore{db: db}
}

// Create inserts a new dashboard. The slug must not be taken.
func (s *DashboardStore) Create(ctx context.Context, d *models.Dashboard) error {
	taken, err := s.slugTaken(ctx, d.Slug, "")
	if err != nil {
		return err
	}
	if taken {
		return srvErrors.NewDuplicateDashboardSlugError(d.Slug)
	}

	query, args, err := sq.Insert(dashboardTable).
		Columns(dashboardColID, dashboardColName, dashboardColSlug, dashboardColRefreshSecs).
		Values(d.ID, d.Name, d.Slug, d.RefreshIntervalSeconds).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert for dashboard %s: %w", d.ID, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting dashboard %s: %w", d.ID, err)
	}
	return nil
}

// Get returns a dashboard by its ID.
func (s *DashboardStore) Get(ctx context.Context, id string) (*models.Dashboard, error) {
	return s.getBy(ctx, sq.Eq{dashboardColID: id}, id)
}

// GetBySlug returns a dashboard by its URL slug.
func (s *DashboardStore) GetBySlug(ctx context.Context, slug string) (*models.Dashboard, error) {
	return s.getBy(ctx, sq.Eq{dashboardColSlug: slug}, slug)
}

func (s *DashboardStore) getBy(ctx context.Context, pred sq.Eq, ref string) (*models.Dashboard, error) {
	query, args, err := sq.Select(dashboardColID, dashboardColName, dashboardColSlug, dashboardColRefreshSecs).
		From(dashboardTable).
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query for dashboard %s: %w", ref, err)
	}

	var d models.Dashboard
	row := s.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&d.ID, &d.Name, &d.Slug, &d.RefreshIntervalSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewDashboardNotFoundError(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning dashboard %s: %w", ref, err)
	}
	return &d, nil
}

// List returns all dashboards ordered by name.
func (s *DashboardStore) List(ctx context.Context) ([]models.Dashboard, error) {
	query, args, err := sq.Select(dashboardColID, dashboardColName, dashboardColSlug, dashboardColRefreshSecs).
		From(dashboardTable).
		OrderBy(dashboardColName, dashboardColID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building dashboard list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing dashboards: %w", err)
	}
	defer rows.Close()

	var dashboards []models.Dashboard
	for rows.Next() {
		var d models.Dashboard
		if err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.RefreshIntervalSeconds); err != nil {
			return nil, fmt.Errorf("scanning dashboard row: %w", err)
		}
		dashboards = append(dashboards, d)
	}
	return dashboards, rows.Err()
}

// Update overwrites every mutable field of an existing dashboard.
func (s *DashboardStore) Update(ctx context.Context, d *models.Dashboard) error {
	if _, err := s.Get(ctx, d.ID); err != nil {
		return err
	}

	taken, err := s.slugTaken(ctx, d.Slug, d.ID)
	if err != nil {
		return err
	}
	if taken {
		return srvErrors.NewDuplicateDashboardSlugError(d.Slug)
	}

	query, args, err := sq.Update(dashboardTable).
		Set(dashboardColName, d.Name).
		Set(dashboardColSlug, d.Slug).
		Set(dashboardColRefreshSecs, d.RefreshIntervalSeconds).
		Where(sq.Eq{dashboardColID: d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update for dashboard %s: %w", d.ID, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating dashboard %s: %w", d.ID, err)
	}
	return nil
}

// Delete removes a dashboard together with its charts, selectors and
// mappings. DuckDB has no cascading deletes, children go first.
func (s *DashboardStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	steps := []struct {
		name  string
		query string
	}{
		{"mappings", `DELETE FROM mappings WHERE chart_id IN (SELECT id FROM charts WHERE dashboard_id = ?)
			OR selector_id IN (SELECT id FROM selectors WHERE dashboard_id = ?)`},
		{"charts", `DELETE FROM charts WHERE dashboard_id = ?`},
		{"selectors", `DELETE FROM selectors WHERE dashboard_id = ?`},
		{"dashboard", `DELETE FROM dashboards WHERE id = ?`},
	}

	for _, step := range steps {
		args := []any{id}
		if step.name == "mappings" {
			args = []any{id, id}
		}
		if _, err := s.db.ExecContext(ctx, step.query, args...); err != nil {
			return fmt.Errorf("deleting %s of dashboard %s: %w", step.name, id, err)
		}
	}
	return nil
}

func (s *DashboardStore) slugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	builder := sq.Select(dashboardColID).
		From(dashboardTable).
		Where(sq.Eq{dashboardColSlug: slug})
	if excludeID != "" {
		builder = builder.Where(sq.NotEq{dashboardColID: excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("building slug lookup for %q: %w", slug, err)
	}

	var id string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking slug %q: %w", slug, err)
	}
	return true, nil
}
