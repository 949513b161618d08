package lifecycle

import (
	"fmt"
	"time"

	"github.com/senyabanana/offer-service/internal/models"

	"github.com/google/uuid"
)

// EventKind - тип события переговоров.
type EventKind string

const (
	EventSubmitQuote EventKind = "submit_quote" // Поставщик выставляет первую цену
	EventCounter     EventKind = "counter"      // Одна из сторон предлагает другую цену
	EventAccept      EventKind = "accept"       // Предложение принимается
	EventReject      EventKind = "reject"       // Предложение отклоняется
	EventExpire      EventKind = "expire"       // Срок действия предложения истекает
	EventCancel      EventKind = "cancel"       // Предложение отзывается
)

// Event описывает одно событие переговоров, применяемое к предложению.
type Event struct {
	Kind    EventKind
	By      models.Party
	Amount  int64
	Message string
	At      time.Time
}

// targetStatus сопоставляет событие с целевым статусом.
var targetStatus = map[EventKind]models.OfferStatus{
	EventSubmitQuote: models.QuotedOffer,
	EventCounter:     models.CounterOfferedOffer,
	EventAccept:      models.AcceptedOffer,
	EventReject:      models.RejectedOffer,
	EventExpire:      models.ExpiredOffer,
	EventCancel:      models.CancelledOffer,
}

// entryType сопоставляет событие с типом записи в истории.
var entryType = map[EventKind]models.HistoryType{
	EventSubmitQuote: models.SubmittedEntry,
	EventCounter:     models.CounterEntry,
	EventAccept:      models.AcceptedEntry,
	EventReject:      models.RejectedEntry,
	EventExpire:      models.ExpiredEntry,
	EventCancel:      models.CancelledEntry,
}

// Apply применяет событие к предложению и возвращает новое значение Offer
// с обновлённым статусом и дописанной историей. Функция чистая: исходное
// предложение не мутируется, ввод-вывод не выполняется. Недопустимый переход
// возвращает ошибку invalid_transition с указанием отклонённого ребра.
func Apply(offer models.Offer, event Event) (models.Offer, error) {
	to, ok := targetStatus[event.Kind]
	if !ok {
		return models.Offer{}, models.NewValidationError(fmt.Sprintf("unknown negotiation event %q", event.Kind))
	}

	if !IsTransitionAllowed(offer.Status, to) {
		return models.Offer{}, models.NewInvalidTransitionError(
			fmt.Sprintf("transition %s -> %s is not allowed for event %s", offer.Status, to, event.Kind))
	}

	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	updated := offer
	updated.Status = to
	updated.UpdatedAt = at
	updated.History = appendEntry(offer.History, event, at)

	switch event.Kind {
	case EventSubmitQuote:
		updated.Amount = event.Amount
	case EventCounter:
		updated.CounterOffer = &models.CounterOffer{
			Amount:    event.Amount,
			By:        event.By,
			Message:   event.Message,
			Timestamp: at,
		}
	case EventAccept:
		final := offer.EffectiveAmount()
		updated.FinalAmount = &final
	}

	return updated, nil
}

// appendEntry дописывает запись о событии в копию истории.
func appendEntry(history []models.HistoryEntry, event Event, at time.Time) []models.HistoryEntry {
	entry := models.HistoryEntry{
		ID:      uuid.New().String(),
		Type:    entryType[event.Kind],
		By:      event.By,
		Date:    at,
		Message: event.Message,
	}
	switch event.Kind {
	case EventSubmitQuote, EventCounter, EventAccept:
		amount := event.Amount
		entry.Amount = &amount
	}

	out := make([]models.HistoryEntry, len(history), len(history)+1)
	copy(out, history)
	return append(out, entry)
}
