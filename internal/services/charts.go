package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/pkg/compose"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// ChartService is the chart registry. Besides CRUD it answers the shape
// questions the mapping editor asks: which columns a chart's result has and
// which tables its query reads.
type ChartService struct {
	store *store.Store
}

func NewChartService(st *store.Store) *ChartService {
	return &ChartService{store: st}
}

// ChartParams carries the writable chart fields.
type ChartParams struct {
	Name      string
	Query     string
	SortOrder int
}

func (s *ChartService) Create(ctx context.Context, dashboardID string, params ChartParams) (*models.Chart, error) {
	if _, err := s.store.Dashboard().Get(ctx, dashboardID); err != nil {
		return nil, err
	}
	if err := s.validateChartParams(ctx, params); err != nil {
		return nil, err
	}

	chart := &models.Chart{
		ID:          uuid.NewString(),
		DashboardID: dashboardID,
		Name:        params.Name,
		Query:       params.Query,
		SortOrder:   params.SortOrder,
	}
	if err := s.store.Chart().Create(ctx, chart); err != nil {
		return nil, err
	}
	return chart, nil
}

func (s *ChartService) Get(ctx context.Context, id string) (*models.Chart, error) {
	return s.store.Chart().Get(ctx, id)
}

func (s *ChartService) ListByDashboard(ctx context.Context, dashboardID string) ([]models.Chart, error) {
	if _, err := s.store.Dashboard().Get(ctx, dashboardID); err != nil {
		return nil, err
	}
	return s.store.Chart().ListByDashboard(ctx, dashboardID)
}

func (s *ChartService) Update(ctx context.Context, id string, params ChartParams) (*models.Chart, error) {
	current, err := s.store.Chart().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateChartParams(ctx, params); err != nil {
		return nil, err
	}

	current.Name = params.Name
	current.Query = params.Query
	current.SortOrder = params.SortOrder
	if err := s.store.Chart().Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *ChartService) Delete(ctx context.Context, id string) error {
	return s.store.Chart().Delete(ctx, id)
}

// Query returns the stored SQL text of a chart.
func (s *ChartService) Query(ctx context.Context, id string) (string, error) {
	chart, err := s.store.Chart().Get(ctx, id)
	if err != nil {
		return "", err
	}
	return chart.Query, nil
}

// Columns probes the chart query for its result columns without
// materializing any rows.
func (s *ChartService) Columns(ctx context.Context, id string) ([]string, error) {
	chart, err := s.store.Chart().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	columns, err := s.store.Dataset().Columns(ctx, chart.Query)
	if err != nil {
		return nil, srvErrors.NewMalformedQueryError(fmt.Sprintf("probing chart columns: %v", err))
	}
	return columns, nil
}

// Tables lists the database tables the chart query reads, by intersecting
// the query's identifiers with the tables that actually exist. Quoted table
// names are not recognized.
func (s *ChartService) Tables(ctx context.Context, id string) ([]string, error) {
	chart, err := s.store.Chart().Get(ctx, id)
	if err != nil {
		return nil, err
	}

	identifiers, err := compose.Identifiers(chart.Query)
	if err != nil {
		return nil, err
	}
	known, err := s.store.Dataset().Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	knownByName := make(map[string]string, len(known))
	for _, name := range known {
		knownByName[strings.ToLower(name)] = name
	}

	var tables []string
	seen := make(map[string]bool)
	for _, ident := range identifiers {
		name, ok := knownByName[strings.ToLower(ident)]
		if ok && !seen[name] {
			seen[name] = true
			tables = append(tables, name)
		}
	}
	sort.Strings(tables)
	return tables, nil
}

// SchemaTables lists every analytical table with its columns, for the query
// editor's autocomplete.
func (s *ChartService) SchemaTables(ctx context.Context) ([]models.SchemaTable, error) {
	byTable, err := s.store.Dataset().ColumnsByTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	names := make([]string, 0, len(byTable))
	for name := range byTable {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]models.SchemaTable, 0, len(names))
	for _, name := range names {
		tables = append(tables, models.SchemaTable{Name: name, Columns: byTable[name]})
	}
	return tables, nil
}

// validateChartParams refuses charts whose query could never be filtered or
// executed. The probe runs the query with LIMIT 0, so a valid but expensive
// query stays cheap to register.
func (s *ChartService) validateChartParams(ctx context.Context, params ChartParams) error {
	if params.Name == "" {
		return srvErrors.NewValidationError("chart name is required")
	}
	if err := compose.Validate(params.Query); err != nil {
		return err
	}
	if _, err := s.store.Dataset().Columns(ctx, params.Query); err != nil {
		return srvErrors.NewMalformedQueryError(fmt.Sprintf("chart query does not run: %v", err))
	}
	return nil
}
