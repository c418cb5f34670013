package ports

import (
	"context"

	"github.com/adboard/ad-directory/internal/core/domain"
)

// ListOffersInput carries the directory read parameters together with the raw
// Authorization header, so the read can provision an anonymous identity.
type ListOffersInput struct {
	BearerHeader string
	CityID       string // optional; empty drops the city filter
	CategoryID   string // optional; empty drops the category filter
	Offset       int
}

// DirectoryService is the filtered, paginated read path over offers.
type DirectoryService interface {
	// ListOffers returns one fixed-size page ordered by creation time
	// ascending, plus the token issued for a freshly provisioned anonymous
	// identity (empty when the caller already had one).
	ListOffers(ctx context.Context, input ListOffersInput) ([]domain.Offer, string, error)
}
