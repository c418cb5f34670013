package ports

import (
	"context"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// CityRepository defines persistence for cities.
type CityRepository interface {
	// Create returns domain.ErrCityExists on a duplicate name.
	Create(ctx context.Context, city *domain.City) (*domain.City, error)
	// Delete removes a city and reports affected rows (0 or 1). The caller is
	// responsible for the linked-offers check before calling.
	Delete(ctx context.Context, id string) (int64, error)
	FindByID(ctx context.Context, id string) (*domain.City, error)
	List(ctx context.Context) ([]domain.City, error)
	// Search performs a case-insensitive substring match on the name,
	// ordered by name ascending. An empty slice is a valid result.
	Search(ctx context.Context, substring string) ([]domain.City, error)
}

// CategoryRepository defines persistence for categories.
type CategoryRepository interface {
	// Create returns domain.ErrCategoryExists on a duplicate name.
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) (int64, error)
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Search(ctx context.Context, substring string) ([]domain.Category, error)
}

// ListOffersFilter carries the directory listing parameters.
// CityID and CategoryID are optional; an empty value drops the join filter.
type ListOffersFilter struct {
	CityID     string
	CategoryID string
	Limit      int
	Offset     int
}

// OfferRepository owns offers and their join rows to cities and categories.
type OfferRepository interface {
	// Create inserts the offer plus all its join rows atomically.
	// Returns domain.ErrOfferExists on a duplicate title.
	Create(ctx context.Context, offer *domain.Offer, cityIDs, categoryIDs []string) (*domain.Offer, error)
	// Delete removes the offer and cascades its join rows, reporting how many
	// offer rows were affected (0 or 1).
	Delete(ctx context.Context, id string) (int64, error)
	FindByID(ctx context.Context, id string) (*domain.Offer, error)
	// List returns offers matching filter, ordered by creation time ascending,
	// with cities and categories eagerly resolved.
	List(ctx context.Context, filter ListOffersFilter) ([]domain.Offer, error)
	// SearchByTitle performs a case-insensitive substring match on the title,
	// ordered by title ascending.
	SearchByTitle(ctx context.Context, substring string) ([]domain.Offer, error)

	// LinkCity inserts the (offer, city) join row. A pair that already exists
	// is not duplicated and reports 0 affected rows.
	LinkCity(ctx context.Context, offerID, cityID string) (int64, error)
	// UnlinkCity deletes the (offer, city) join row, reporting affected rows.
	UnlinkCity(ctx context.Context, offerID, cityID string) (int64, error)

	// CountByCity reports how many offers reference the city.
	CountByCity(ctx context.Context, cityID string) (int64, error)
	// CountByCategory reports how many offers reference the category.
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}
