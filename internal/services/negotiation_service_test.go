package services_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/senyabanana/offer-service/internal/models"
	"github.com/senyabanana/offer-service/internal/services"

	"github.com/google/uuid"
)

// fakeOfferRepo - репозиторий предложений в памяти с той же семантикой
// оптимистической блокировки, что и у Postgres-реализации.
type fakeOfferRepo struct {
	offers        map[string]*models.Offer
	providers     map[string]models.Provider
	conflictOnce  bool
	acceptTxCalls int
	siblingWrites int
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{
		offers:    make(map[string]*models.Offer),
		providers: make(map[string]models.Provider),
	}
}

func (f *fakeOfferRepo) put(offer models.Offer) {
	f.offers[offer.ID] = &offer
}

func cloneOffer(offer *models.Offer) *models.Offer {
	clone := *offer
	clone.History = append([]models.HistoryEntry{}, offer.History...)
	if offer.CounterOffer != nil {
		counter := *offer.CounterOffer
		clone.CounterOffer = &counter
	}
	return &clone
}

func (f *fakeOfferRepo) CreateOffer(_ context.Context, offerReq models.OfferRequest) (*models.Offer, error) {
	offer := models.Offer{
		ID:             uuid.New().String(),
		QuoteRequestID: offerReq.QuoteRequestID,
		ProviderID:     offerReq.ProviderID,
		OrganizerID:    offerReq.OrganizerID,
		Status:         models.PendingOffer,
		Amount:         offerReq.Amount,
		DeliveryDays:   offerReq.DeliveryDays,
		History:        []models.HistoryEntry{},
		Version:        1,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	f.offers[offer.ID] = &offer
	return cloneOffer(&offer), nil
}

func (f *fakeOfferRepo) GetOfferByID(_ context.Context, offerID string) (*models.Offer, error) {
	offer, ok := f.offers[offerID]
	if !ok {
		return nil, models.NewNotFoundError("offer not found")
	}
	return cloneOffer(offer), nil
}

func (f *fakeOfferRepo) GetUserOffers(_ context.Context, userID string, role models.Party, _, _ int) ([]models.Offer, error) {
	var out []models.Offer
	for _, offer := range f.offers {
		if (role == models.ProviderParty && offer.ProviderID == userID) ||
			(role == models.Organizer && offer.OrganizerID == userID) {
			out = append(out, *cloneOffer(offer))
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) GetRequestOffers(_ context.Context, requestID string) ([]models.Offer, error) {
	var out []models.Offer
	for _, offer := range f.offers {
		if offer.QuoteRequestID == requestID {
			out = append(out, *cloneOffer(offer))
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) HasLiveOffer(_ context.Context, requestID, providerID string) (bool, error) {
	for _, offer := range f.offers {
		if offer.QuoteRequestID == requestID && offer.ProviderID == providerID {
			switch offer.Status {
			case models.PendingOffer, models.QuotedOffer, models.CounterOfferedOffer:
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeOfferRepo) UpdateOffer(_ context.Context, offer *models.Offer, expectedVersion int32) (*models.Offer, error) {
	if f.conflictOnce {
		f.conflictOnce = false
		return nil, models.NewConcurrencyConflictError("offer was modified concurrently, re-read and retry")
	}
	stored, ok := f.offers[offer.ID]
	if !ok {
		return nil, models.NewNotFoundError("offer not found")
	}
	if stored.Version != expectedVersion {
		return nil, models.NewConcurrencyConflictError("offer was modified concurrently, re-read and retry")
	}
	updated := *cloneOffer(offer)
	updated.Version = expectedVersion + 1
	f.offers[offer.ID] = &updated
	return cloneOffer(&updated), nil
}

func (f *fakeOfferRepo) AcceptOfferTx(_ context.Context, accepted *models.Offer, expectedVersion int32) (*models.Offer, error) {
	f.acceptTxCalls++
	stored, ok := f.offers[accepted.ID]
	if !ok {
		return nil, models.NewNotFoundError("offer not found")
	}
	if stored.Version != expectedVersion {
		return nil, models.NewConcurrencyConflictError("offer was modified concurrently, re-read and retry")
	}

	target := *cloneOffer(accepted)
	target.Version = expectedVersion + 1
	f.offers[accepted.ID] = &target

	for _, sibling := range f.offers {
		if sibling.ID == accepted.ID || sibling.QuoteRequestID != accepted.QuoteRequestID {
			continue
		}
		switch sibling.Status {
		case models.PendingOffer, models.QuotedOffer, models.CounterOfferedOffer:
			sibling.Status = models.RejectedOffer
			sibling.History = append(sibling.History, models.HistoryEntry{
				ID:      uuid.New().String(),
				Type:    models.RejectedEntry,
				By:      models.Organizer,
				Date:    time.Now().UTC(),
				Message: fmt.Sprintf("auto-rejected: offer %s accepted", accepted.ID),
			})
			sibling.Version++
			f.siblingWrites++
		}
	}
	return cloneOffer(&target), nil
}

func (f *fakeOfferRepo) GetProviders(_ context.Context, providerIDs []string) (map[string]models.Provider, error) {
	out := make(map[string]models.Provider)
	for _, id := range providerIDs {
		if provider, ok := f.providers[id]; ok {
			out[id] = provider
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) ExpireDueOffers(_ context.Context) (int64, error) {
	var expired int64
	now := time.Now().UTC()
	for _, offer := range f.offers {
		switch offer.Status {
		case models.PendingOffer, models.QuotedOffer, models.CounterOfferedOffer:
			if offer.ValidUntil != nil && offer.ValidUntil.Before(now) {
				offer.Status = models.ExpiredOffer
				offer.Version++
				expired++
			}
		}
	}
	return expired, nil
}

func testLogger() *log.Logger {
	return log.New(os.Stdout, "TEST: ", log.LstdFlags)
}

func pendingOffer(id, requestID, providerID string) models.Offer {
	return models.Offer{
		ID:             id,
		QuoteRequestID: requestID,
		ProviderID:     providerID,
		OrganizerID:    "organizer-1",
		Status:         models.PendingOffer,
		History:        []models.HistoryEntry{},
		Version:        1,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

func quotedOffer(id, requestID, providerID string, amount int64) models.Offer {
	offer := pendingOffer(id, requestID, providerID)
	offer.Status = models.QuotedOffer
	offer.Amount = amount
	offer.History = []models.HistoryEntry{{
		ID:     uuid.New().String(),
		Type:   models.SubmittedEntry,
		By:     models.ProviderParty,
		Date:   time.Now().UTC(),
		Amount: &amount,
	}}
	offer.Version = 2
	return offer
}

func TestSubmitQuote(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(pendingOffer("offer-1", "request-1", "provider-1"))
	service := services.NewNegotiationService(repo, nil)

	offer, err := service.SubmitQuote(context.Background(), "offer-1", models.SubmitQuoteRequest{
		Amount:     45000,
		Message:    "full production package",
		ValidDays:  14,
		Inclusions: []string{"sound", "lighting"},
	})
	if err != nil {
		t.Fatalf("SubmitQuote returned unexpected error: %v", err)
	}

	if offer.Status != models.QuotedOffer {
		t.Errorf("status = %s, want %s", offer.Status, models.QuotedOffer)
	}
	if offer.Amount != 45000 {
		t.Errorf("amount = %d, want 45000", offer.Amount)
	}
	if len(offer.History) != 1 || offer.History[0].Type != models.SubmittedEntry {
		t.Errorf("history = %+v, want one submitted entry", offer.History)
	}
	if offer.ValidUntil == nil {
		t.Error("validUntil should be set from validDays")
	}
	if offer.Version != 2 {
		t.Errorf("version = %d, want 2", offer.Version)
	}
}

func TestSubmitQuote_NonPositiveAmount(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(pendingOffer("offer-1", "request-1", "provider-1"))
	service := services.NewNegotiationService(repo, nil)

	_, err := service.SubmitQuote(context.Background(), "offer-1", models.SubmitQuoteRequest{Amount: 0})
	if !models.IsKind(err, models.ValidationError) {
		t.Errorf("SubmitQuote(amount=0) error = %v, want validation error", err)
	}
}

func TestSubmitQuote_NotPending(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	service := services.NewNegotiationService(repo, nil)

	_, err := service.SubmitQuote(context.Background(), "offer-1", models.SubmitQuoteRequest{Amount: 45000})
	if !models.IsKind(err, models.InvalidTransitionError) {
		t.Errorf("SubmitQuote on quoted offer error = %v, want invalid_transition", err)
	}
}

func TestSendCounterOffer(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	service := services.NewNegotiationService(repo, nil)

	offer, err := service.SendCounterOffer(context.Background(), "offer-1", models.CounterOfferRequest{
		Amount: 40000,
		By:     models.Organizer,
	})
	if err != nil {
		t.Fatalf("SendCounterOffer returned unexpected error: %v", err)
	}

	if offer.Status != models.CounterOfferedOffer {
		t.Errorf("status = %s, want %s", offer.Status, models.CounterOfferedOffer)
	}
	if offer.CounterOffer == nil || offer.CounterOffer.Amount != 40000 || offer.CounterOffer.By != models.Organizer {
		t.Errorf("counterOffer = %+v, want {40000 organizer}", offer.CounterOffer)
	}
	if offer.History[len(offer.History)-1].Type != models.CounterEntry {
		t.Error("last history entry should be counter")
	}
}

func TestSendCounterOffer_TurnViolation(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	service := services.NewNegotiationService(repo, nil)

	// поставщик только что выставил цену и пытается сам себе ответить
	_, err := service.SendCounterOffer(context.Background(), "offer-1", models.CounterOfferRequest{
		Amount: 44000,
		By:     models.ProviderParty,
	})
	if !models.IsKind(err, models.TurnViolationError) {
		t.Errorf("self-counter error = %v, want turn_violation", err)
	}
}

func TestSendCounterOffer_AlternatingRounds(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	service := services.NewNegotiationService(repo, nil)

	ctx := context.Background()
	if _, err := service.SendCounterOffer(ctx, "offer-1", models.CounterOfferRequest{Amount: 40000, By: models.Organizer}); err != nil {
		t.Fatalf("organizer counter failed: %v", err)
	}
	offer, err := service.SendCounterOffer(ctx, "offer-1", models.CounterOfferRequest{Amount: 43000, By: models.ProviderParty})
	if err != nil {
		t.Fatalf("provider counter failed: %v", err)
	}
	if offer.CounterOffer.Amount != 43000 || offer.CounterOffer.By != models.ProviderParty {
		t.Errorf("counterOffer = %+v, want latest round {43000 provider}", offer.CounterOffer)
	}
	if len(offer.History) != 3 {
		t.Errorf("history length = %d, want 3 (submitted + 2 counters)", len(offer.History))
	}
}

func TestSendCounterOffer_ConcurrencyConflict(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	repo.conflictOnce = true
	service := services.NewNegotiationService(repo, nil)

	_, err := service.SendCounterOffer(context.Background(), "offer-1", models.CounterOfferRequest{
		Amount: 40000,
		By:     models.Organizer,
	})
	if !models.IsKind(err, models.ConcurrencyConflictError) {
		t.Errorf("conflicting write error = %v, want concurrency_conflict", err)
	}
}

func TestRejectOffer_Idempotent(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	service := services.NewNegotiationService(repo, nil)

	ctx := context.Background()
	first, err := service.RejectOffer(ctx, "offer-1", models.Organizer, "went another way")
	if err != nil {
		t.Fatalf("first RejectOffer returned unexpected error: %v", err)
	}
	if first.Status != models.RejectedOffer {
		t.Errorf("status = %s, want rejected", first.Status)
	}

	second, err := service.RejectOffer(ctx, "offer-1", models.Organizer, "went another way")
	if err != nil {
		t.Fatalf("repeated RejectOffer returned unexpected error: %v", err)
	}
	if len(second.History) != len(first.History) {
		t.Errorf("repeated reject appended history: %d -> %d entries", len(first.History), len(second.History))
	}
	if second.Version != first.Version {
		t.Errorf("repeated reject bumped version: %d -> %d", first.Version, second.Version)
	}
}

func TestRejectOffer_OtherTerminal(t *testing.T) {
	repo := newFakeOfferRepo()
	offer := quotedOffer("offer-1", "request-1", "provider-1", 45000)
	offer.Status = models.AcceptedOffer
	repo.put(offer)
	service := services.NewNegotiationService(repo, nil)

	_, err := service.RejectOffer(context.Background(), "offer-1", models.Organizer, "changed my mind")
	if !models.IsKind(err, models.InvalidTransitionError) {
		t.Errorf("reject on accepted offer error = %v, want invalid_transition", err)
	}
}

func TestCancelOffer_OnlyProvider(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	service := services.NewNegotiationService(repo, nil)

	if _, err := service.CancelOffer(context.Background(), "offer-1", models.Organizer); !models.IsKind(err, models.PermissionError) {
		t.Errorf("organizer cancel error = %v, want permission error", err)
	}

	offer, err := service.CancelOffer(context.Background(), "offer-1", models.ProviderParty)
	if err != nil {
		t.Fatalf("provider cancel returned unexpected error: %v", err)
	}
	if offer.Status != models.CancelledOffer {
		t.Errorf("status = %s, want cancelled", offer.Status)
	}
}

func TestMarkViewed(t *testing.T) {
	repo := newFakeOfferRepo()
	repo.put(quotedOffer("offer-1", "request-1", "provider-1", 45000))
	service := services.NewNegotiationService(repo, nil)

	offer, err := service.MarkViewed(context.Background(), "offer-1", models.Organizer)
	if err != nil {
		t.Fatalf("MarkViewed returned unexpected error: %v", err)
	}
	if offer.Status != models.QuotedOffer {
		t.Errorf("status = %s, view must not change status", offer.Status)
	}
	if offer.History[len(offer.History)-1].Type != models.ViewedEntry {
		t.Error("last history entry should be viewed")
	}
}

func TestMarkViewed_TerminalUntouched(t *testing.T) {
	repo := newFakeOfferRepo()
	offer := quotedOffer("offer-1", "request-1", "provider-1", 45000)
	offer.Status = models.RejectedOffer
	repo.put(offer)
	service := services.NewNegotiationService(repo, nil)

	viewed, err := service.MarkViewed(context.Background(), "offer-1", models.Organizer)
	if err != nil {
		t.Fatalf("MarkViewed returned unexpected error: %v", err)
	}
	if len(viewed.History) != len(offer.History) {
		t.Error("viewing a terminal offer must not append history")
	}
}

func TestNegotiation_OfferNotFound(t *testing.T) {
	service := services.NewNegotiationService(newFakeOfferRepo(), nil)

	_, err := service.SubmitQuote(context.Background(), "missing", models.SubmitQuoteRequest{Amount: 100})
	if !models.IsKind(err, models.NotFoundError) {
		t.Errorf("SubmitQuote(missing) error = %v, want not_found", err)
	}
}
