package services

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"github.com/dashlite/dashlite/internal/models"
	"github.com/dashlite/dashlite/internal/store"
	srvErrors "github.com/dashlite/dashlite/pkg/errors"
)

// slugPattern keeps dashboard slugs URL-safe: lowercase words joined by
// single dashes.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const (
	defaultRefreshIntervalSeconds = 300
	minRefreshIntervalSeconds     = 5
	maxRefreshIntervalSeconds     = 86400
)

// DashboardService manages dashboard definitions.
type DashboardService struct {
	store *store.Store
}

func NewDashboardService(st *store.Store) *DashboardService {
	return &DashboardService{store: st}
}

// DashboardParams carries the writable dashboard fields. A zero refresh
// interval means the default.
type DashboardParams struct {
	Name                   string
	Slug                   string
	RefreshIntervalSeconds int
}

func (s *DashboardService) Create(ctx context.Context, params DashboardParams) (*models.Dashboard, error) {
	if err := validateDashboardParams(&params); err != nil {
		return nil, err
	}

	dashboard := &models.Dashboard{
		ID:                     uuid.NewString(),
		Name:                   params.Name,
		Slug:                   params.Slug,
		RefreshIntervalSeconds: params.RefreshIntervalSeconds,
	}
	if err := s.store.Dashboard().Create(ctx, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (s *DashboardService) Get(ctx context.Context, id string) (*models.Dashboard, error) {
	return s.store.Dashboard().Get(ctx, id)
}

func (s *DashboardService) GetBySlug(ctx context.Context, slug string) (*models.Dashboard, error) {
	return s.store.Dashboard().GetBySlug(ctx, slug)
}

func (s *DashboardService) List(ctx context.Context) ([]models.Dashboard, error) {
	return s.store.Dashboard().List(ctx)
}

func (s *DashboardService) Update(ctx context.Context, id string, params DashboardParams) (*models.Dashboard, error) {
	if err := validateDashboardParams(&params); err != nil {
		return nil, err
	}

	dashboard := &models.Dashboard{
		ID:                     id,
		Name:                   params.Name,
		Slug:                   params.Slug,
		RefreshIntervalSeconds: params.RefreshIntervalSeconds,
	}
	if err := s.store.Dashboard().Update(ctx, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (s *DashboardService) Delete(ctx context.Context, id string) error {
	return s.store.Dashboard().Delete(ctx, id)
}

func validateDashboardParams(params *DashboardParams) error {
	if params.Name == "" {
		return srvErrors.NewValidationError("dashboard name is required")
	}
	if !slugPattern.MatchString(params.Slug) {
		return srvErrors.NewValidationError("slug %q must be lowercase words joined by dashes", params.Slug)
	}
	if params.RefreshIntervalSeconds == 0 {
		params.RefreshIntervalSeconds = defaultRefreshIntervalSeconds
	}
	if params.RefreshIntervalSeconds < minRefreshIntervalSeconds || params.RefreshIntervalSeconds > maxRefreshIntervalSeconds {
		return srvErrors.NewValidationError("refresh interval must be between %d and %d seconds",
			minRefreshIntervalSeconds, maxRefreshIntervalSeconds)
	}
	return nil
}
