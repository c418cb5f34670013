package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/core/domain"
	"github.com/adboard/ad-directory/internal/core/ports"
)

// DirectoryPageSize is the fixed page size of the offers listing.
const DirectoryPageSize = 5

// DirectoryService is the public read path over offers. Listing runs the
// identity resolver with anonymous provisioning enabled, so a caller without a
// credential leaves with one.
type DirectoryService struct {
	offers   ports.OfferRepository
	resolver ports.IdentityResolver
	logger   zerolog.Logger
}

func NewDirectoryService(offers ports.OfferRepository, resolver ports.IdentityResolver, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{offers: offers, resolver: resolver, logger: logger}
}

// ListOffers returns one page of offers ordered by creation time ascending,
// with cities and categories eagerly resolved, plus the token issued for a
// freshly provisioned anonymous identity. The token is empty exactly when the
// caller already presented a credential that resolved.
func (s *DirectoryService) ListOffers(ctx context.Context, input ports.ListOffersInput) ([]domain.Offer, string, error) {
	if input.Offset < 0 {
		return nil, "", domain.ErrInvalidOffset
	}

	resolved, err := s.resolver.Resolve(ctx, input.BearerHeader, true)
	if err != nil {
		return nil, "", err
	}

	offers, err := s.offers.List(ctx, ports.ListOffersFilter{
		CityID:     input.CityID,
		CategoryID: input.CategoryID,
		Limit:      DirectoryPageSize,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, "", fmt.Errorf("list offers: %w", err)
	}

	return offers, resolved.IssuedToken, nil
}
