package lifecycle_test

import (
	"testing"
	"time"

	"github.com/senyabanana/offer-service/internal/lifecycle"
	"github.com/senyabanana/offer-service/internal/models"
)

func pendingOffer() models.Offer {
	return models.Offer{
		ID:             "offer-1",
		QuoteRequestID: "request-1",
		ProviderID:     "provider-1",
		OrganizerID:    "organizer-1",
		Status:         models.PendingOffer,
		Version:        1,
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestApply_SubmitQuote(t *testing.T) {
	offer := pendingOffer()

	updated, err := lifecycle.Apply(offer, lifecycle.Event{
		Kind:   lifecycle.EventSubmitQuote,
		By:     models.ProviderParty,
		Amount: 45000,
	})
	if err != nil {
		t.Fatalf("Apply(submit_quote) returned unexpected error: %v", err)
	}

	if updated.Status != models.QuotedOffer {
		t.Errorf("status = %s, want %s", updated.Status, models.QuotedOffer)
	}
	if updated.Amount != 45000 {
		t.Errorf("amount = %d, want 45000", updated.Amount)
	}
	if len(updated.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(updated.History))
	}
	entry := updated.History[0]
	if entry.Type != models.SubmittedEntry || entry.By != models.ProviderParty {
		t.Errorf("history entry = {%s %s}, want {submitted provider}", entry.Type, entry.By)
	}
	if entry.Amount == nil || *entry.Amount != 45000 {
		t.Errorf("history entry amount = %v, want 45000", entry.Amount)
	}

	// исходное предложение не должно мутироваться
	if offer.Status != models.PendingOffer || len(offer.History) != 0 {
		t.Error("Apply mutated the input offer")
	}
}

func TestApply_Counter(t *testing.T) {
	offer := pendingOffer()
	offer.Status = models.QuotedOffer
	offer.Amount = 45000
	offer.History = []models.HistoryEntry{{Type: models.SubmittedEntry, By: models.ProviderParty}}

	updated, err := lifecycle.Apply(offer, lifecycle.Event{
		Kind:    lifecycle.EventCounter,
		By:      models.Organizer,
		Amount:  40000,
		Message: "can you do it for less",
	})
	if err != nil {
		t.Fatalf("Apply(counter) returned unexpected error: %v", err)
	}

	if updated.Status != models.CounterOfferedOffer {
		t.Errorf("status = %s, want %s", updated.Status, models.CounterOfferedOffer)
	}
	if updated.CounterOffer == nil {
		t.Fatal("counterOffer is nil")
	}
	if updated.CounterOffer.Amount != 40000 || updated.CounterOffer.By != models.Organizer {
		t.Errorf("counterOffer = {%d %s}, want {40000 organizer}",
			updated.CounterOffer.Amount, updated.CounterOffer.By)
	}
	if len(updated.History) != 2 || updated.History[1].Type != models.CounterEntry {
		t.Errorf("history should end with a counter entry, got %+v", updated.History)
	}
}

func TestApply_CounterRounds(t *testing.T) {
	offer := pendingOffer()
	offer.Status = models.CounterOfferedOffer
	offer.CounterOffer = &models.CounterOffer{Amount: 40000, By: models.Organizer}

	updated, err := lifecycle.Apply(offer, lifecycle.Event{
		Kind:   lifecycle.EventCounter,
		By:     models.ProviderParty,
		Amount: 43000,
	})
	if err != nil {
		t.Fatalf("Apply(counter on counter_offered) returned unexpected error: %v", err)
	}
	if updated.CounterOffer.Amount != 43000 || updated.CounterOffer.By != models.ProviderParty {
		t.Errorf("counterOffer should be overwritten with the latest round, got %+v", updated.CounterOffer)
	}
}

func TestApply_AcceptUsesCounterAmount(t *testing.T) {
	offer := pendingOffer()
	offer.Status = models.CounterOfferedOffer
	offer.Amount = 45000
	offer.CounterOffer = &models.CounterOffer{Amount: 40000, By: models.Organizer}

	updated, err := lifecycle.Apply(offer, lifecycle.Event{
		Kind:   lifecycle.EventAccept,
		By:     models.ProviderParty,
		Amount: offer.EffectiveAmount(),
	})
	if err != nil {
		t.Fatalf("Apply(accept) returned unexpected error: %v", err)
	}
	if updated.FinalAmount == nil || *updated.FinalAmount != 40000 {
		t.Errorf("finalAmount = %v, want 40000", updated.FinalAmount)
	}
	if updated.History[len(updated.History)-1].Type != models.AcceptedEntry {
		t.Error("last history entry should be accepted")
	}
}

func TestApply_AcceptWithoutCounter(t *testing.T) {
	offer := pendingOffer()
	offer.Status = models.QuotedOffer
	offer.Amount = 45000

	updated, err := lifecycle.Apply(offer, lifecycle.Event{
		Kind:   lifecycle.EventAccept,
		By:     models.Organizer,
		Amount: offer.EffectiveAmount(),
	})
	if err != nil {
		t.Fatalf("Apply(accept) returned unexpected error: %v", err)
	}
	if updated.FinalAmount == nil || *updated.FinalAmount != 45000 {
		t.Errorf("finalAmount = %v, want 45000", updated.FinalAmount)
	}
}

func TestApply_InvalidEdges(t *testing.T) {
	cases := []struct {
		status models.OfferStatus
		kind   lifecycle.EventKind
	}{
		{models.PendingOffer, lifecycle.EventCounter},
		{models.AcceptedOffer, lifecycle.EventCounter},
		{models.AcceptedOffer, lifecycle.EventReject},
		{models.RejectedOffer, lifecycle.EventAccept},
		{models.RejectedOffer, lifecycle.EventSubmitQuote},
		{models.ExpiredOffer, lifecycle.EventAccept},
		{models.CancelledOffer, lifecycle.EventSubmitQuote},
		{models.QuotedOffer, lifecycle.EventSubmitQuote},
	}
	for _, c := range cases {
		offer := pendingOffer()
		offer.Status = c.status
		_, err := lifecycle.Apply(offer, lifecycle.Event{Kind: c.kind, By: models.ProviderParty, Amount: 100})
		if err == nil {
			t.Errorf("Apply(%s on %s) expected error, got nil", c.kind, c.status)
			continue
		}
		if !models.IsKind(err, models.InvalidTransitionError) {
			t.Errorf("Apply(%s on %s) error kind = %v, want invalid_transition", c.kind, c.status, err)
		}
	}
}

func TestApply_UnknownEvent(t *testing.T) {
	_, err := lifecycle.Apply(pendingOffer(), lifecycle.Event{Kind: "haggle"})
	if !models.IsKind(err, models.ValidationError) {
		t.Errorf("Apply(unknown event) error = %v, want validation error", err)
	}
}

func TestApply_HistoryAppendOnly(t *testing.T) {
	offer := pendingOffer()

	quoted, err := lifecycle.Apply(offer, lifecycle.Event{Kind: lifecycle.EventSubmitQuote, By: models.ProviderParty, Amount: 45000})
	if err != nil {
		t.Fatal(err)
	}
	countered, err := lifecycle.Apply(quoted, lifecycle.Event{Kind: lifecycle.EventCounter, By: models.Organizer, Amount: 40000})
	if err != nil {
		t.Fatal(err)
	}
	rejected, err := lifecycle.Apply(countered, lifecycle.Event{Kind: lifecycle.EventReject, By: models.Organizer, Message: "too expensive"})
	if err != nil {
		t.Fatal(err)
	}

	if len(quoted.History) != 1 || len(countered.History) != 2 || len(rejected.History) != 3 {
		t.Errorf("history lengths = %d/%d/%d, want 1/2/3",
			len(quoted.History), len(countered.History), len(rejected.History))
	}

	// ранние записи не меняются последующими событиями
	if countered.History[0].Type != models.SubmittedEntry {
		t.Error("first history entry changed after later events")
	}
	if rejected.History[2].Type != models.RejectedEntry || rejected.History[2].Message != "too expensive" {
		t.Errorf("terminal entry = %+v, want rejected with reason", rejected.History[2])
	}
}
