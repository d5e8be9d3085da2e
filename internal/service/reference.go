package service

import (
	"context"
	"strings"

	"healthops-dashboard/internal/domain"
)

// ReferenceService manages the service type and healthcare provider catalogs. Anyone signed in
// can read them; only admins change them.
type ReferenceService struct {
	services  CatalogStore
	providers CatalogStore
}

func NewReferenceService(services, providers CatalogStore) *ReferenceService {
	return &ReferenceService{services: services, providers: providers}
}

func (s *ReferenceService) Services(ctx context.Context) ([]domain.CatalogItem, error) {
	return s.services.ListActive(ctx)
}

func (s *ReferenceService) CreateService(ctx context.Context, actor domain.Actor, name string) (domain.CatalogItem, error) {
	return createCatalogItem(ctx, s.services, actor, name, "Please enter a service name")
}

func (s *ReferenceService) DeactivateService(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.services.Deactivate(ctx, id)
}

func (s *ReferenceService) Providers(ctx context.Context) ([]domain.CatalogItem, error) {
	return s.providers.ListActive(ctx)
}

func (s *ReferenceService) CreateProvider(ctx context.Context, actor domain.Actor, name string) (domain.CatalogItem, error) {
	return createCatalogItem(ctx, s.providers, actor, name, "Please enter a provider name")
}

func (s *ReferenceService) DeactivateProvider(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.providers.Deactivate(ctx, id)
}

func createCatalogItem(ctx context.Context, store CatalogStore, actor domain.Actor, name, blankMsg string) (domain.CatalogItem, error) {
	if !actor.IsAdmin() {
		return domain.CatalogItem{}, domain.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.CatalogItem{}, domain.NewValidationError("name", blankMsg)
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	for _, it := range active {
		if strings.EqualFold(it.Name, name) {
			return domain.CatalogItem{}, domain.NewValidationError("name", "\""+name+"\" already exists")
		}
	}
	return store.Create(ctx, name)
}
