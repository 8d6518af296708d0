package services

import (
	"context"
	"fmt"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/store"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// maxOptionRows caps database-backed option lists. A selector over a column
// with more distinct values than this needs a narrower source query.
const maxOptionRows = 1000

// OptionService resolves the choices a dropdown or multi_select selector
// offers, either from its stored items or from a live DISTINCT query.
type OptionService struct {
	store *store.Store
}

func NewOptionService(st *store.Store) *OptionService {
	return &OptionService{store: st}
}

// ListOptions returns the choices of one selector. Selectors configured
// without a value source yield an empty list.
func (s *OptionService) ListOptions(ctx context.Context, selectorID string) ([]models.OptionItem, error) {
	selector, err := s.store.Selector().Get(ctx, selectorID)
	if err != nil {
		return nil, err
	}
	return s.optionsFor(ctx, selector)
}

// ListOptionsBatch resolves options for several selectors in one call, keyed
// by selector ID. Options drive the editor, so one failing selector fails
// the batch instead of returning a silently incomplete map.
func (s *OptionService) ListOptionsBatch(ctx context.Context, selectorIDs []string) (map[string][]models.OptionItem, error) {
	options := make(map[string][]models.OptionItem, len(selectorIDs))
	for _, id := range selectorIDs {
		if _, done := options[id]; done {
			continue
		}
		items, err := s.ListOptions(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("listing options of selector %s: %w", id, err)
		}
		options[id] = items
	}
	return options, nil
}

func (s *OptionService) optionsFor(ctx context.Context, selector *models.Selector) ([]models.OptionItem, error) {
	if !selector.Type.HasOptions() {
		return nil, srvErrors.NewValidationError("selector type %q has no options", string(selector.Type))
	}
	source := selector.ValueSource
	if source == nil {
		return []models.OptionItem{}, nil
	}

	switch source.Kind {
	case models.ValueSourceStatic:
		items := make([]models.OptionItem, len(source.Items))
		copy(items, source.Items)
		return items, nil
	case models.ValueSourceDatabase:
		return s.databaseOptions(ctx, source)
	default:
		return nil, srvErrors.NewValidationError("unknown value source kind %q", string(source.Kind))
	}
}

func (s *OptionService) databaseOptions(ctx context.Context, source *models.ValueSource) ([]models.OptionItem, error) {
	values, err := s.store.Dataset().DistinctValues(ctx, source.SourceTable, source.SourceColumn, maxOptionRows)
	if err != nil {
		return nil, fmt.Errorf("loading option values: %w", err)
	}

	labels := map[string]string{}
	if source.LabelTable != "" {
		labels, err = s.store.Dataset().Labels(ctx, source.LabelTable, source.LabelValueColumn, source.LabelColumn, values)
		if err != nil {
			return nil, fmt.Errorf("loading option labels: %w", err)
		}
	}

	items := make([]models.OptionItem, 0, len(values))
	for _, value := range values {
		label, ok := labels[value]
		if !ok {
			label = value
		}
		items = append(items, models.OptionItem{Value: value, Label: label})
	}
	return items, nil
}
