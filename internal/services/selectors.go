package services

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/pkg/compose"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// selectorNamePattern keeps selector names identifier-safe. Names key the
// filter-value maps clients send, so renaming is a breaking change.
var selectorNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// identifierPattern matches bare SQL identifiers. Tables and columns coming
// from the editor must satisfy it before they reach a query.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SelectorService manages the filter controls attached to dashboards.
type SelectorService struct {
	store *store.Store
}

func NewSelectorService(st *store.Store) *SelectorService {
	return &SelectorService{store: st}
}

// SelectorParams carries the writable selector fields. An empty default
// operator resolves to the type's natural one.
type SelectorParams struct {
	Name            string
	Label           string
	Type            compose.SelectorType
	DefaultOperator compose.Operator
	IsRequired      bool
	SortOrder       int
	ValueSource     *models.ValueSource
}

func (s *SelectorService) Create(ctx context.Context, dashboardID string, params SelectorParams) (*models.Selector, error) {
	if _, err := s.store.Dashboard().Get(ctx, dashboardID); err != nil {
		return nil, err
	}
	if err := validateSelectorParams(&params); err != nil {
		return nil, err
	}

	selector := &models.Selector{
		ID:              uuid.NewString(),
		DashboardID:     dashboardID,
		Name:            params.Name,
		Label:           params.Label,
		Type:            params.Type,
		DefaultOperator: params.DefaultOperator,
		IsRequired:      params.IsRequired,
		SortOrder:       params.SortOrder,
		ValueSource:     params.ValueSource,
	}
	if err := s.store.Selector().Create(ctx, selector); err != nil {
		return nil, err
	}
	return selector, nil
}

func (s *SelectorService) Get(ctx context.Context, id string) (*models.Selector, error) {
	return s.store.Selector().Get(ctx, id)
}

func (s *SelectorService) ListByDashboard(ctx context.Context, dashboardID string) ([]models.Selector, error) {
	if _, err := s.store.Dashboard().Get(ctx, dashboardID); err != nil {
		return nil, err
	}
	return s.store.Selector().ListByDashboard(ctx, dashboardID)
}

func (s *SelectorService) Update(ctx context.Context, id string, params SelectorParams) (*models.Selector, error) {
	current, err := s.store.Selector().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateSelectorParams(&params); err != nil {
		return nil, err
	}

	current.Name = params.Name
	current.Label = params.Label
	current.Type = params.Type
	current.DefaultOperator = params.DefaultOperator
	current.IsRequired = params.IsRequired
	current.SortOrder = params.SortOrder
	current.ValueSource = params.ValueSource
	if err := s.store.Selector().Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *SelectorService) Delete(ctx context.Context, id string) error {
	return s.store.Selector().Delete(ctx, id)
}

func validateSelectorParams(params *SelectorParams) error {
	if !selectorNamePattern.MatchString(params.Name) {
		return srvErrors.NewValidationError("selector name %q must contain only letters, digits and underscores", params.Name)
	}
	if !params.Type.Valid() {
		return srvErrors.NewValidationError("unknown selector type %q", string(params.Type))
	}
	if params.DefaultOperator == "" {
		params.DefaultOperator = params.Type.DefaultOperator()
	}
	if !params.DefaultOperator.Valid() {
		return srvErrors.NewValidationError("unknown operator %q", string(params.DefaultOperator))
	}
	if !params.Type.AllowsOperator(params.DefaultOperator) {
		return srvErrors.NewValidationError("operator %q does not fit selector type %q",
			string(params.DefaultOperator), string(params.Type))
	}
	return validateValueSource(params.Type, params.ValueSource)
}

func validateValueSource(t compose.SelectorType, source *models.ValueSource) error {
	if source == nil {
		return nil
	}
	if !t.HasOptions() {
		return srvErrors.NewValidationError("selector type %q does not take a value source", string(t))
	}

	switch source.Kind {
	case models.ValueSourceStatic:
		for _, item := range source.Items {
			if item.Value == "" {
				return srvErrors.NewValidationError("static options must not have empty values")
			}
		}
		return nil
	case models.ValueSourceDatabase:
		if !identifierPattern.MatchString(source.SourceTable) {
			return srvErrors.NewValidationError("source table %q is not a valid identifier", source.SourceTable)
		}
		if !identifierPattern.MatchString(source.SourceColumn) {
			return srvErrors.NewValidationError("source column %q is not a valid identifier", source.SourceColumn)
		}
		hasLabelJoin := source.LabelTable != "" || source.LabelColumn != "" || source.LabelValueColumn != ""
		if !hasLabelJoin {
			return nil
		}
		for _, ident := range []string{source.LabelTable, source.LabelColumn, source.LabelValueColumn} {
			if !identifierPattern.MatchString(ident) {
				return srvErrors.NewValidationError("label join needs valid label_table, label_column and label_value_column identifiers")
			}
		}
		return nil
	default:
		return srvErrors.NewValidationError("unknown value source kind %q", string(source.Kind))
	}
}
