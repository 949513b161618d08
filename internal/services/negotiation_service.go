package services

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/offer-service/internal/lifecycle"
	"github.com/senyabanana/offer-service/internal/models"
	"github.com/senyabanana/offer-service/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// newEntryID генерирует идентификатор записи истории.
func newEntryID() string {
	return uuid.New().String()
}

// NegotiationService управляет обменом предложениями и встречными
// предложениями. Каждая мутация - это чтение-изменение-запись с
// оптимистической блокировкой по полю version.
type NegotiationService struct {
	Repo repository.OfferRepository
	rdb  *redis.Client
}

// NewNegotiationService создает новый экземпляр NegotiationService.
func NewNegotiationService(repo repository.OfferRepository, rdb *redis.Client) *NegotiationService {
	return &NegotiationService{Repo: repo, rdb: rdb}
}

// CompareCacheKey возвращает ключ кеша сравнения предложений по заявке.
func CompareCacheKey(requestID string) string {
	return "compare:" + requestID
}

// invalidateCompareCache сбрасывает кеш сравнения после мутации предложения.
// Ошибки кеша не фатальны: следующий читатель пересчитает сводку из базы.
func invalidateCompareCache(ctx context.Context, rdb *redis.Client, requestID string) {
	if rdb == nil {
		return
	}
	rdb.Del(ctx, CompareCacheKey(requestID))
}

// SubmitQuote выставляет первую цену по предложению в статусе pending.
func (s *NegotiationService) SubmitQuote(ctx context.Context, offerID string, quoteReq models.SubmitQuoteRequest) (*models.Offer, error) {
	if quoteReq.Amount <= 0 {
		return nil, models.NewValidationError("amount must be a positive integer")
	}
	if quoteReq.ValidDays < 0 {
		return nil, models.NewValidationError("validDays must be non-negative")
	}

	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	updated, err := lifecycle.Apply(*offer, lifecycle.Event{
		Kind:    lifecycle.EventSubmitQuote,
		By:      models.ProviderParty,
		Amount:  quoteReq.Amount,
		Message: quoteReq.Message,
	})
	if err != nil {
		return nil, err
	}

	updated.Inclusions = quoteReq.Inclusions
	updated.Exclusions = quoteReq.Exclusions
	if quoteReq.ValidDays > 0 {
		validUntil := time.Now().UTC().AddDate(0, 0, quoteReq.ValidDays)
		updated.ValidUntil = &validUntil
	}

	saved, err := s.Repo.UpdateOffer(ctx, &updated, offer.Version)
	if err != nil {
		return nil, err
	}
	invalidateCompareCache(ctx, s.rdb, saved.QuoteRequestID)
	return saved, nil
}

// SendCounterOffer отправляет встречное предложение по цене. Очерёдность
// сторон обязательна: та же сторона не может сделать два ценовых хода подряд
// без ответа контрагента.
func (s *NegotiationService) SendCounterOffer(ctx context.Context, offerID string, counterReq models.CounterOfferRequest) (*models.Offer, error) {
	if counterReq.Amount <= 0 {
		return nil, models.NewValidationError("amount must be a positive integer")
	}
	if counterReq.By != models.Organizer && counterReq.By != models.ProviderParty {
		return nil, models.NewValidationError("by must be either 'organizer' or 'provider'")
	}

	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if lifecycle.LastProposer(offer.History) == counterReq.By {
		return nil, models.NewTurnViolationError(
			fmt.Sprintf("%s already made the last price proposal, wait for the counterpart", counterReq.By))
	}

	updated, err := lifecycle.Apply(*offer, lifecycle.Event{
		Kind:    lifecycle.EventCounter,
		By:      counterReq.By,
		Amount:  counterReq.Amount,
		Message: counterReq.Message,
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.Repo.UpdateOffer(ctx, &updated, offer.Version)
	if err != nil {
		return nil, err
	}
	invalidateCompareCache(ctx, s.rdb, saved.QuoteRequestID)
	return saved, nil
}

// RejectOffer отклоняет предложение из любого нетерминального статуса.
// Повторный вызов по уже отклонённому предложению возвращает его текущее
// состояние без новой записи в истории, поэтому операцию безопасно повторять.
func (s *NegotiationService) RejectOffer(ctx context.Context, offerID string, by models.Party, reason string) (*models.Offer, error) {
	if by != models.Organizer && by != models.ProviderParty {
		return nil, models.NewValidationError("by must be either 'organizer' or 'provider'")
	}

	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.Status == models.RejectedOffer {
		return offer, nil
	}

	updated, err := lifecycle.Apply(*offer, lifecycle.Event{
		Kind:    lifecycle.EventReject,
		By:      by,
		Message: reason,
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.Repo.UpdateOffer(ctx, &updated, offer.Version)
	if err != nil {
		return nil, err
	}
	invalidateCompareCache(ctx, s.rdb, saved.QuoteRequestID)
	return saved, nil
}

// CancelOffer отзывает предложение. Доступно только поставщику,
// сделавшему предложение.
func (s *NegotiationService) CancelOffer(ctx context.Context, offerID string, by models.Party) (*models.Offer, error) {
	if by != models.ProviderParty {
		return nil, models.NewPermissionError("only the provider may cancel an offer")
	}

	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.Status == models.CancelledOffer {
		return offer, nil
	}

	updated, err := lifecycle.Apply(*offer, lifecycle.Event{
		Kind: lifecycle.EventCancel,
		By:   by,
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.Repo.UpdateOffer(ctx, &updated, offer.Version)
	if err != nil {
		return nil, err
	}
	invalidateCompareCache(ctx, s.rdb, saved.QuoteRequestID)
	return saved, nil
}

// MarkViewed дописывает в историю запись о просмотре предложения второй
// стороной. Статус не меняется; просмотр терминального предложения историю
// не трогает, чтобы терминальная запись оставалась последней.
func (s *NegotiationService) MarkViewed(ctx context.Context, offerID string, by models.Party) (*models.Offer, error) {
	if by != models.Organizer && by != models.ProviderParty {
		return nil, models.NewValidationError("by must be either 'organizer' or 'provider'")
	}

	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if lifecycle.IsTerminal(offer.Status) {
		return offer, nil
	}

	updated := *offer
	updated.History = append(append([]models.HistoryEntry{}, offer.History...), models.HistoryEntry{
		ID:   newEntryID(),
		Type: models.ViewedEntry,
		By:   by,
		Date: time.Now().UTC(),
	})

	return s.Repo.UpdateOffer(ctx, &updated, offer.Version)
}
