package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/pkg/scheduler"
)

// ExecutorService renders dashboards: it composes each chart's filtered
// query and runs them concurrently on the shared worker pool. One chart
// failing, whether its rewrite or its execution, never aborts its siblings.
type ExecutorService struct {
	store          *store.Store
	composer       *ComposerService
	scheduler      *scheduler.Scheduler
	maxRows        int
	defaultTimeout time.Duration
	logger         *zap.SugaredLogger
}

func NewExecutorService(st *store.Store, composer *ComposerService, sched *scheduler.Scheduler, maxRows int, defaultTimeout time.Duration) *ExecutorService {
	return &ExecutorService{
		store:          st,
		composer:       composer,
		scheduler:      sched,
		maxRows:        maxRows,
		defaultTimeout: defaultTimeout,
		logger:         zap.S().Named("executor"),
	}
}

// RenderDashboard executes every chart of a dashboard under the active
// filter values. A missing required filter fails the whole render before
// any chart runs; past that point failures stay within their chart's
// result. Results keep the dashboard's chart order.
func (e *ExecutorService) RenderDashboard(ctx context.Context, dashboardID string, values models.FilterValues) ([]models.ChartResult, error) {
	dashboard, err := e.store.Dashboard().Get(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	selectors, err := e.store.Selector().ListByDashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	if err := checkRequiredFilters(selectors, values); err != nil {
		return nil, err
	}
	charts, err := e.store.Chart().ListByDashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	mappings, err := e.store.Mapping().ListByDashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	selByID := selectorsByID(selectors)
	byChart := groupMappingsByChart(mappings)
	timeout := e.chartTimeout(dashboard)

	futures := make([]*models.Future[models.Result[any]], len(charts))
	for i := range charts {
		chart := charts[i]
		chartMappings := byChart[chart.ID]
		futures[i] = e.scheduler.AddWork(func(workCtx context.Context) (any, error) {
			return e.renderChart(workCtx, &chart, selByID, chartMappings, values, timeout), nil
		})
	}

	results := make([]models.ChartResult, 0, len(charts))
	for i, future := range futures {
		var result models.ChartResult
		select {
		case r := <-future.C():
			if r.Err != nil {
				result = models.ChartResult{ChartID: charts[i].ID, Name: charts[i].Name, Err: r.Err}
			} else {
				result = r.Data.(models.ChartResult)
			}
		case <-ctx.Done():
			future.Stop()
			result = models.ChartResult{ChartID: charts[i].ID, Name: charts[i].Name, Err: ctx.Err()}
		}
		if result.Err != nil {
			e.logger.Errorw("chart render failed", "dashboard", dashboardID, "chart", result.ChartID, "error", result.Err)
		}
		results = append(results, result)
	}

	e.logger.Infow("rendered dashboard", "dashboard", dashboardID, "charts", len(results))
	return results, nil
}

// RenderChart composes and executes a single chart synchronously. Unlike the
// dashboard render there is nothing to isolate, so failures return as plain
// errors. The export path runs on this.
func (e *ExecutorService) RenderChart(ctx context.Context, chartID string, values models.FilterValues) (*models.ChartResult, error) {
	chart, err := e.store.Chart().Get(ctx, chartID)
	if err != nil {
		return nil, err
	}
	dashboard, err := e.store.Dashboard().Get(ctx, chart.DashboardID)
	if err != nil {
		return nil, err
	}
	selectors, err := e.store.Selector().ListByDashboard(ctx, chart.DashboardID)
	if err != nil {
		return nil, err
	}
	if err := checkRequiredFilters(selectors, values); err != nil {
		return nil, err
	}
	mappings, err := e.store.Mapping().ListByChart(ctx, chartID)
	if err != nil {
		return nil, err
	}

	result := e.renderChart(ctx, chart, selectorsByID(selectors), mappings, values, e.chartTimeout(dashboard))
	if result.Err != nil {
		return nil, result.Err
	}
	return &result, nil
}

func (e *ExecutorService) renderChart(ctx context.Context, chart *models.Chart, selectors map[string]*models.Selector, mappings []models.Mapping, values models.FilterValues, timeout time.Duration) (result models.ChartResult) {
	result = models.ChartResult{ChartID: chart.ID, Name: chart.Name}
	started := time.Now()
	defer func() {
		result.Duration = time.Since(started)
	}()

	rewrite, err := e.composer.ComposeChart(chart, selectors, mappings, values)
	if err != nil {
		result.Err = fmt.Errorf("composing query: %w", err)
		return
	}
	result.Rewrite = rewrite

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	columns, rows, truncated, err := e.store.Dataset().Execute(execCtx, rewrite.FilteredSQL, e.maxRows)
	if err != nil {
		result.Err = fmt.Errorf("executing query: %w", err)
		return
	}
	result.Columns = columns
	result.Rows = rows
	result.RowCount = len(rows)
	result.Truncated = truncated
	return
}

// chartTimeout bounds a chart's execution by the dashboard's refresh
// interval. A chart still running when the next refresh is due only wastes
// the pool.
func (e *ExecutorService) chartTimeout(dashboard *models.Dashboard) time.Duration {
	timeout := e.defaultTimeout
	if refresh := time.Duration(dashboard.RefreshIntervalSeconds) * time.Second; refresh > 0 && refresh < timeout {
		timeout = refresh
	}
	return timeout
}
