package ports

import (
	"context"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// CreateOfferInput carries all data needed to create a new offer.
type CreateOfferInput struct {
	Title              string
	Description        string
	BackgroundImageURL string
	CompanyLogoURL     string
	CompanyName        string
	CityIDs            []string
	CategoryIDs        []string
}

// CatalogService owns the offer, city, and category lifecycles and their
// many-to-many links.
type CatalogService interface {
	CreateCity(ctx context.Context, name string) (*domain.City, error)
	// DeleteCity fails with *domain.EntityLinkedError while offers still
	// reference the city, and with domain.ErrCityNotFound when it is absent.
	// On success it reports the number of affected rows.
	DeleteCity(ctx context.Context, id string) (int64, error)
	ListCities(ctx context.Context) ([]domain.City, error)
	// SearchCities fails with domain.ErrNoResults on an empty match.
	SearchCities(ctx context.Context, substring string) ([]domain.City, error)

	CreateCategory(ctx context.Context, name, imageURL string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) (int64, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	SearchCategories(ctx context.Context, substring string) ([]domain.Category, error)

	// CreateOffer rejects more than domain.MaxOfferCategories category ids and
	// persists the offer with all its join rows atomically.
	CreateOffer(ctx context.Context, input CreateOfferInput) (*domain.Offer, error)
	DeleteOffer(ctx context.Context, id string) (int64, error)
	SearchOffers(ctx context.Context, substring string) ([]domain.Offer, error)

	// LinkOfferCity and UnlinkOfferCity verify both endpoints exist before
	// mutating the join row, and report domain.ErrAssociationNotFound when the
	// mutation affected zero rows.
	LinkOfferCity(ctx context.Context, offerID, cityID string) (int64, error)
	UnlinkOfferCity(ctx context.Context, offerID, cityID string) (int64, error)
}
