package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/senyabanana/offer-service/internal/lifecycle"
	"github.com/senyabanana/offer-service/internal/models"
	"github.com/senyabanana/offer-service/internal/repository"

	"github.com/redis/go-redis/v9"
)

// OfferEventsChannel - канал Redis, в который публикуются события о принятых
// предложениях для доставки на клиент.
const OfferEventsChannel = "offer_events"

// AcceptanceService выполняет принятие предложения: целевое предложение
// становится accepted, все конкурирующие предложения той же заявки
// отклоняются в той же транзакции.
type AcceptanceService struct {
	Repo   repository.OfferRepository
	rdb    *redis.Client
	logger *log.Logger
}

// NewAcceptanceService создает новый экземпляр AcceptanceService.
func NewAcceptanceService(repo repository.OfferRepository, rdb *redis.Client, logger *log.Logger) *AcceptanceService {
	return &AcceptanceService{Repo: repo, rdb: rdb, logger: logger}
}

// AcceptOffer принимает предложение от имени стороны by.
// Итоговая сумма - сумма последнего встречного предложения, если оно есть,
// иначе исходная сумма. Сторона, сделавшая последний ценовой ход, принять
// собственное предложение не может. Если предложение уже в терминальном
// статусе, операция возвращает ошибку и не трогает конкурирующие предложения.
func (s *AcceptanceService) AcceptOffer(ctx context.Context, offerID string, by models.Party) (*models.Offer, error) {
	if by != models.Organizer && by != models.ProviderParty {
		return nil, models.NewValidationError("by must be either 'organizer' or 'provider'")
	}

	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if proposer := lifecycle.LastProposer(offer.History); proposer != "" && proposer == by {
		return nil, models.NewPermissionError(
			fmt.Sprintf("%s made the last price proposal and cannot accept it, only the receiving party may", by))
	}

	updated, err := lifecycle.Apply(*offer, lifecycle.Event{
		Kind:   lifecycle.EventAccept,
		By:     by,
		Amount: offer.EffectiveAmount(),
	})
	if err != nil {
		return nil, err
	}

	accepted, err := s.Repo.AcceptOfferTx(ctx, &updated, offer.Version)
	if err != nil {
		return nil, err
	}

	// принятие уже зафиксировано: сбои кеша и публикации только логируются,
	// откат видимого результата недопустим
	invalidateCompareCache(ctx, s.rdb, accepted.QuoteRequestID)
	s.publishAccepted(ctx, accepted)

	return accepted, nil
}

// publishAccepted публикует событие о принятом предложении в Redis.
func (s *AcceptanceService) publishAccepted(ctx context.Context, offer *models.Offer) {
	if s.rdb == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":           "offer_accepted",
		"offerId":        offer.ID,
		"quoteRequestId": offer.QuoteRequestID,
		"finalAmount":    offer.FinalAmount,
	})
	if err != nil {
		s.logger.Printf("marshal accepted event for offer %s: %v", offer.ID, err)
		return
	}
	if err := s.rdb.Publish(ctx, OfferEventsChannel, payload).Err(); err != nil {
		s.logger.Printf("publish accepted event for offer %s: %v", offer.ID, err)
	}
}
