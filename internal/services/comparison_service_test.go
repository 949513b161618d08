package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/senyabanana/offer-service/internal/models"
	"github.com/senyabanana/offer-service/internal/services"
)

func TestCompareOffers(t *testing.T) {
	requestRepo := newFakeRequestRepo()
	requestRepo.put(openRequest("request-1", "organizer-1"))

	offerRepo := newFakeOfferRepo()
	offerRepo.providers["provider-1"] = models.Provider{
		ID: "provider-1", Name: "Sound Co", Rating: 4.8, ReviewCount: 400, CompletedJobs: 300, Verified: true,
		CreatedAt: time.Now().UTC(),
	}
	offerRepo.providers["provider-2"] = models.Provider{
		ID: "provider-2", Name: "Loud Ltd", Rating: 4.1, ReviewCount: 120, CompletedJobs: 90, Verified: false,
		CreatedAt: time.Now().UTC(),
	}
	cheap := quotedOffer("offer-1", "request-1", "provider-1", 45000)
	cheap.DeliveryDays = 7
	pricey := quotedOffer("offer-2", "request-1", "provider-2", 60000)
	pricey.DeliveryDays = 21
	offerRepo.put(cheap)
	offerRepo.put(pricey)

	service := services.NewComparisonService(offerRepo, requestRepo, nil, testLogger())

	group, err := service.CompareOffers(context.Background(), "request-1")
	if err != nil {
		t.Fatalf("CompareOffers returned unexpected error: %v", err)
	}

	if group.QuoteRequestID != "request-1" {
		t.Errorf("quoteRequestId = %s, want request-1", group.QuoteRequestID)
	}
	if group.LowestPrice != 45000 || group.HighestPrice != 60000 {
		t.Errorf("price range = [%d, %d], want [45000, 60000]", group.LowestPrice, group.HighestPrice)
	}
	if group.RecommendedOfferID != "offer-1" {
		t.Errorf("recommendedOfferId = %s, want offer-1", group.RecommendedOfferID)
	}
	if len(group.Offers) != 2 {
		t.Fatalf("scored offers = %d, want 2", len(group.Offers))
	}
	if group.BestInCategory["price"] != "offer-1" {
		t.Errorf("bestInCategory[price] = %s, want offer-1", group.BestInCategory["price"])
	}
}

func TestCompareOffers_UnknownRequest(t *testing.T) {
	service := services.NewComparisonService(newFakeOfferRepo(), newFakeRequestRepo(), nil, testLogger())

	_, err := service.CompareOffers(context.Background(), "missing")
	if !models.IsKind(err, models.NotFoundError) {
		t.Errorf("CompareOffers(missing) error = %v, want not_found", err)
	}
}

func TestCompareOffers_EmptyRequestID(t *testing.T) {
	service := services.NewComparisonService(newFakeOfferRepo(), newFakeRequestRepo(), nil, testLogger())

	_, err := service.CompareOffers(context.Background(), "")
	if !models.IsKind(err, models.ValidationError) {
		t.Errorf("CompareOffers(\"\") error = %v, want validation error", err)
	}
}

func TestListOffers_Validation(t *testing.T) {
	service := services.NewComparisonService(newFakeOfferRepo(), newFakeRequestRepo(), nil, testLogger())
	ctx := context.Background()

	if _, err := service.ListOffers(ctx, "", models.ProviderParty, "", ""); !models.IsKind(err, models.ValidationError) {
		t.Errorf("empty userId error = %v, want validation error", err)
	}
	if _, err := service.ListOffers(ctx, "user-1", "spectator", "", ""); !models.IsKind(err, models.ValidationError) {
		t.Errorf("unknown role error = %v, want validation error", err)
	}
	if _, err := service.ListOffers(ctx, "user-1", models.ProviderParty, "100", ""); !models.IsKind(err, models.ValidationError) {
		t.Errorf("limit above cap error = %v, want validation error", err)
	}
}

func TestListOffers_ByRole(t *testing.T) {
	offerRepo := newFakeOfferRepo()
	offerRepo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	offerRepo.put(quotedOffer("offer-2", "request-2", "provider-2", 52000))
	service := services.NewComparisonService(offerRepo, newFakeRequestRepo(), nil, testLogger())

	offers, err := service.ListOffers(context.Background(), "provider-1", models.ProviderParty, "", "")
	if err != nil {
		t.Fatalf("ListOffers returned unexpected error: %v", err)
	}
	if len(offers) != 1 || offers[0].ID != "offer-1" {
		t.Errorf("offers = %+v, want only offer-1", offers)
	}
}

func TestGetOfferStatus(t *testing.T) {
	offerRepo := newFakeOfferRepo()
	offerRepo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	service := services.NewComparisonService(offerRepo, newFakeRequestRepo(), nil, testLogger())

	status, err := service.GetOfferStatus(context.Background(), "offer-1")
	if err != nil {
		t.Fatalf("GetOfferStatus returned unexpected error: %v", err)
	}
	if status != models.QuotedOffer {
		t.Errorf("status = %s, want quoted", status)
	}

	if _, err := service.GetOfferStatus(context.Background(), "missing"); !models.IsKind(err, models.NotFoundError) {
		t.Errorf("GetOfferStatus(missing) error = %v, want not_found", err)
	}
}
