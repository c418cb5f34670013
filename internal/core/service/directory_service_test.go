package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adboard/ad-directory/internal/core/domain"
	"github.com/adboard/ad-directory/internal/core/ports"
)

type directoryFixture struct {
	catalogFixture
	svc    *DirectoryService
	users  *stubUserRepo
	tokens *TokenService
}

func newDirectoryFixture() directoryFixture {
	cf := newCatalogFixture()
	users := newStubUserRepo()
	tokens := NewTokenService("test-secret", time.Hour)
	resolver := NewIdentityResolver(users, tokens, zerolog.Nop())
	return directoryFixture{
		catalogFixture: cf,
		svc:            NewDirectoryService(cf.offers, resolver, zerolog.Nop()),
		users:          users,
		tokens:         tokens,
	}
}

func TestDirectoryService_ListOffers_NegativeOffset(t *testing.T) {
	f := newDirectoryFixture()

	if _, _, err := f.svc.ListOffers(context.Background(), ports.ListOffersInput{Offset: -1}); !errors.Is(err, domain.ErrInvalidOffset) {
		t.Fatalf("expected ErrInvalidOffset, got %v", err)
	}
	if len(f.users.users) != 0 {
		t.Fatalf("validation failure must not provision an identity")
	}
}

func TestDirectoryService_ListOffers_FixedPageSize(t *testing.T) {
	f := newDirectoryFixture()
	city := f.seedCity(t, "Lisbon")
	for i := 0; i < DirectoryPageSize+2; i++ {
		f.seedOffer(t, fmt.Sprintf("Deal %02d", i), []string{city.ID}, nil)
	}

	page, _, err := f.svc.ListOffers(context.Background(), ports.ListOffersInput{})
	if err != nil {
		t.Fatalf("ListOffers returned error: %v", err)
	}
	if len(page) != DirectoryPageSize {
		t.Fatalf("expected %d offers, got %d", DirectoryPageSize, len(page))
	}
	if page[0].Title != "Deal 00" {
		t.Fatalf("expected oldest offer first, got %q", page[0].Title)
	}

	rest, _, err := f.svc.ListOffers(context.Background(), ports.ListOffersInput{Offset: DirectoryPageSize})
	if err != nil {
		t.Fatalf("ListOffers page 2 returned error: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 offers on second page, got %d", len(rest))
	}
}

func TestDirectoryService_ListOffers_CityFilter(t *testing.T) {
	f := newDirectoryFixture()
	lisbon := f.seedCity(t, "Lisbon")
	porto := f.seedCity(t, "Porto")
	f.seedOffer(t, "Lisbon only", []string{lisbon.ID}, nil)
	f.seedOffer(t, "Porto only", []string{porto.ID}, nil)
	f.seedOffer(t, "Both", []string{lisbon.ID, porto.ID}, nil)

	page, _, err := f.svc.ListOffers(context.Background(), ports.ListOffersInput{CityID: porto.ID})
	if err != nil {
		t.Fatalf("ListOffers returned error: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(page))
	}
	for _, o := range page {
		if o.Title == "Lisbon only" {
			t.Fatalf("filter leaked an unmatched offer")
		}
	}
}

func TestDirectoryService_ListOffers_CategoryFilter(t *testing.T) {
	f := newDirectoryFixture()
	city := f.seedCity(t, "Lisbon")
	food := f.seedCategory(t, "Food")
	travel := f.seedCategory(t, "Travel")
	f.seedOffer(t, "Lunch", []string{city.ID}, []string{food.ID})
	f.seedOffer(t, "Flight", []string{city.ID}, []string{travel.ID})

	page, _, err := f.svc.ListOffers(context.Background(), ports.ListOffersInput{CategoryID: food.ID})
	if err != nil {
		t.Fatalf("ListOffers returned error: %v", err)
	}
	if len(page) != 1 || page[0].Title != "Lunch" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestDirectoryService_ListOffers_TokenIssuanceAsymmetry(t *testing.T) {
	f := newDirectoryFixture()

	// No credential: a token is minted for the provisioned identity.
	_, issued, err := f.svc.ListOffers(context.Background(), ports.ListOffersInput{})
	if err != nil {
		t.Fatalf("ListOffers returned error: %v", err)
	}
	if issued == "" {
		t.Fatalf("expected an issued token for an anonymous caller")
	}

	// Replaying the issued token: same identity, nothing minted.
	_, second, err := f.svc.ListOffers(context.Background(), ports.ListOffersInput{BearerHeader: "Bearer " + issued})
	if err != nil {
		t.Fatalf("ListOffers with token returned error: %v", err)
	}
	if second != "" {
		t.Fatalf("a resolved credential must not mint another token")
	}
	if len(f.users.users) != 1 {
		t.Fatalf("expected one provisioned user, found %d", len(f.users.users))
	}
}

func TestDirectoryService_ListOffers_BadTokenRejected(t *testing.T) {
	f := newDirectoryFixture()

	if _, _, err := f.svc.ListOffers(context.Background(), ports.ListOffersInput{BearerHeader: "Bearer junk"}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
