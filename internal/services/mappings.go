package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/pkg/compose"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// MappingService binds selectors to chart columns. Only identifier shape is
// validated here; whether a column actually exists in the chart's tables is
// the editor's concern, answered through the chart registry endpoints.
type MappingService struct {
	store *store.Store
}

func NewMappingService(st *store.Store) *MappingService {
	return &MappingService{store: st}
}

// MappingParams carries the writable mapping fields. TargetTable
// disambiguates multi-table queries and may name a table alias. An empty
// OperatorOverride keeps the selector's default operator.
type MappingParams struct {
	ChartID          string
	TargetColumn     string
	TargetTable      string
	OperatorOverride compose.Operator
}

func (s *MappingService) Create(ctx context.Context, selectorID string, params MappingParams) (*models.Mapping, error) {
	selector, err := s.store.Selector().Get(ctx, selectorID)
	if err != nil {
		return nil, err
	}
	chart, err := s.store.Chart().Get(ctx, params.ChartID)
	if err != nil {
		return nil, err
	}
	if chart.DashboardID != selector.DashboardID {
		return nil, srvErrors.NewValidationError("chart %s and selector %s belong to different dashboards",
			chart.ID, selector.ID)
	}
	if err := validateMappingParams(selector, &params); err != nil {
		return nil, err
	}

	mapping := &models.Mapping{
		ID:               uuid.NewString(),
		SelectorID:       selectorID,
		ChartID:          params.ChartID,
		TargetColumn:     params.TargetColumn,
		TargetTable:      params.TargetTable,
		OperatorOverride: params.OperatorOverride,
	}
	if err := s.store.Mapping().Create(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

func (s *MappingService) Get(ctx context.Context, id string) (*models.Mapping, error) {
	return s.store.Mapping().Get(ctx, id)
}

func (s *MappingService) ListBySelector(ctx context.Context, selectorID string) ([]models.Mapping, error) {
	if _, err := s.store.Selector().Get(ctx, selectorID); err != nil {
		return nil, err
	}
	return s.store.Mapping().ListBySelector(ctx, selectorID)
}

func (s *MappingService) ListByChart(ctx context.Context, chartID string) ([]models.Mapping, error) {
	if _, err := s.store.Chart().Get(ctx, chartID); err != nil {
		return nil, err
	}
	return s.store.Mapping().ListByChart(ctx, chartID)
}

func (s *MappingService) Delete(ctx context.Context, id string) error {
	return s.store.Mapping().Delete(ctx, id)
}

func validateMappingParams(selector *models.Selector, params *MappingParams) error {
	if !identifierPattern.MatchString(params.TargetColumn) {
		return srvErrors.NewValidationError("target column %q is not a valid identifier", params.TargetColumn)
	}
	if params.TargetTable != "" && !identifierPattern.MatchString(params.TargetTable) {
		return srvErrors.NewValidationError("target table %q is not a valid identifier", params.TargetTable)
	}
	if params.OperatorOverride == "" {
		return nil
	}
	if !params.OperatorOverride.Valid() {
		return srvErrors.NewValidationError("unknown operator %q", string(params.OperatorOverride))
	}
	if !selector.Type.AllowsOperator(params.OperatorOverride) {
		return srvErrors.NewValidationError("operator %q does not fit selector type %q",
			string(params.OperatorOverride), string(selector.Type))
	}
	return nil
}
