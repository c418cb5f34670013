package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/core/domain"
	"github.com/adboard/ad-directory/internal/core/ports"
)

// CatalogService owns offers, cities, categories, and their many-to-many
// links, enforcing uniqueness, reference-integrity-before-delete, and the
// zero-rows-affected reporting on link mutations.
type CatalogService struct {
	cities     ports.CityRepository
	categories ports.CategoryRepository
	offers     ports.OfferRepository
	logger     zerolog.Logger
}

func NewCatalogService(
	cities ports.CityRepository,
	categories ports.CategoryRepository,
	offers ports.OfferRepository,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{cities: cities, categories: categories, offers: offers, logger: logger}
}

// --- Cities ---

func (s *CatalogService) CreateCity(ctx context.Context, name string) (*domain.City, error) {
	city, err := s.cities.Create(ctx, &domain.City{Name: name})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("city", city.Name).Msg("city created")
	return city, nil
}

// DeleteCity refuses to delete a city that offers still reference, reporting
// the exact reference count for user messaging.
func (s *CatalogService) DeleteCity(ctx context.Context, id string) (int64, error) {
	linked, err := s.offers.CountByCity(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count offers for city: %w", err)
	}
	if linked > 0 {
		return 0, &domain.EntityLinkedError{Entity: "city", Count: linked}
	}

	affected, err := s.cities.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, domain.ErrCityNotFound
	}
	return affected, nil
}

func (s *CatalogService) ListCities(ctx context.Context) ([]domain.City, error) {
	return s.cities.List(ctx)
}

func (s *CatalogService) SearchCities(ctx context.Context, substring string) ([]domain.City, error) {
	cities, err := s.cities.Search(ctx, substring)
	if err != nil {
		return nil, err
	}
	if len(cities) == 0 {
		return nil, domain.ErrNoResults
	}
	return cities, nil
}

// --- Categories ---

func (s *CatalogService) CreateCategory(ctx context.Context, name, imageURL string) (*domain.Category, error) {
	category, err := s.categories.Create(ctx, &domain.Category{Name: name, ImageURL: imageURL})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("category", category.Name).Msg("category created")
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) (int64, error) {
	linked, err := s.offers.CountByCategory(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("count offers for category: %w", err)
	}
	if linked > 0 {
		return 0, &domain.EntityLinkedError{Entity: "category", Count: linked}
	}

	affected, err := s.categories.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, domain.ErrCategoryNotFound
	}
	return affected, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) SearchCategories(ctx context.Context, substring string) ([]domain.Category, error) {
	categories, err := s.categories.Search(ctx, substring)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, domain.ErrNoResults
	}
	return categories, nil
}

// --- Offers ---

func (s *CatalogService) CreateOffer(ctx context.Context, input ports.CreateOfferInput) (*domain.Offer, error) {
	if len(input.CategoryIDs) > domain.MaxOfferCategories {
		return nil, domain.ErrTooManyCategories
	}

	// Resolve referenced entities up front so a dangling id fails the whole
	// creation before any row is written.
	for _, cityID := range input.CityIDs {
		if _, err := s.cities.FindByID(ctx, cityID); err != nil {
			return nil, err
		}
	}
	for _, categoryID := range input.CategoryIDs {
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			return nil, err
		}
	}

	offer := &domain.Offer{
		Title:              input.Title,
		Description:        input.Description,
		BackgroundImageURL: input.BackgroundImageURL,
		CompanyLogoURL:     input.CompanyLogoURL,
		CompanyName:        input.CompanyName,
	}

	created, err := s.offers.Create(ctx, offer, input.CityIDs, input.CategoryIDs)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("offer", created.Title).
		Int("cities", len(input.CityIDs)).
		Int("categories", len(input.CategoryIDs)).
		Msg("offer created")
	return created, nil
}

func (s *CatalogService) DeleteOffer(ctx context.Context, id string) (int64, error) {
	affected, err := s.offers.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, domain.ErrOfferNotFound
	}
	return affected, nil
}

func (s *CatalogService) SearchOffers(ctx context.Context, substring string) ([]domain.Offer, error) {
	offers, err := s.offers.SearchByTitle(ctx, substring)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, domain.ErrNoResults
	}
	return offers, nil
}

// --- Offer-city links ---

// LinkOfferCity verifies both endpoints exist, then inserts the join row.
// An already-present pair affects zero rows and reports
// domain.ErrAssociationNotFound; the row is never duplicated.
func (s *CatalogService) LinkOfferCity(ctx context.Context, offerID, cityID string) (int64, error) {
	if err := s.checkLinkEndpoints(ctx, offerID, cityID); err != nil {
		return 0, err
	}

	affected, err := s.offers.LinkCity(ctx, offerID, cityID)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, domain.ErrAssociationNotFound
	}
	return affected, nil
}

// UnlinkOfferCity verifies both endpoints exist, then deletes the join row,
// reporting domain.ErrAssociationNotFound for an absent pair.
func (s *CatalogService) UnlinkOfferCity(ctx context.Context, offerID, cityID string) (int64, error) {
	if err := s.checkLinkEndpoints(ctx, offerID, cityID); err != nil {
		return 0, err
	}

	affected, err := s.offers.UnlinkCity(ctx, offerID, cityID)
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, domain.ErrAssociationNotFound
	}
	return affected, nil
}

func (s *CatalogService) checkLinkEndpoints(ctx context.Context, offerID, cityID string) error {
	if _, err := s.offers.FindByID(ctx, offerID); err != nil {
		return err
	}
	if _, err := s.cities.FindByID(ctx, cityID); err != nil {
		return err
	}
	return nil
}
