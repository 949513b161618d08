package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/senyabanana/offer-service/internal/models"
	"github.com/senyabanana/offer-service/internal/repository"
	"github.com/senyabanana/offer-service/internal/scoring"
	"github.com/senyabanana/offer-service/internal/utils"

	"github.com/redis/go-redis/v9"
)

// compareCacheTTL - время жизни закешированной сводки сравнения.
// Сводка производная, устаревание на десятки секунд допустимо.
const compareCacheTTL = 30 * time.Second

// ComparisonService отвечает за запросы чтения: списки предложений и
// сравнение конкурирующих предложений по заявке. Записей не выполняет.
type ComparisonService struct {
	OfferRepo   repository.OfferRepository
	RequestRepo repository.RequestRepository
	rdb         *redis.Client
	weights     scoring.Weights
	logger      *log.Logger
}

// NewComparisonService создает новый экземпляр ComparisonService.
func NewComparisonService(offerRepo repository.OfferRepository, requestRepo repository.RequestRepository, rdb *redis.Client, logger *log.Logger) *ComparisonService {
	return &ComparisonService{
		OfferRepo:   offerRepo,
		RequestRepo: requestRepo,
		rdb:         rdb,
		weights:     scoring.DefaultWeights(),
		logger:      logger,
	}
}

// ListOffers возвращает предложения пользователя в указанной роли.
func (s *ComparisonService) ListOffers(ctx context.Context, userID string, role models.Party, limitStr, offsetStr string) ([]models.Offer, error) {
	if userID == "" {
		return nil, models.NewValidationError("userId is required")
	}
	if role != models.Organizer && role != models.ProviderParty {
		return nil, models.NewValidationError("role must be either 'organizer' or 'provider'")
	}

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.OfferRepo.GetUserOffers(ctx, userID, role, limit, offset)
}

// ListRequestOffers возвращает все предложения по заявке.
func (s *ComparisonService) ListRequestOffers(ctx context.Context, requestID string) ([]models.Offer, error) {
	if requestID == "" {
		return nil, models.NewValidationError("requestId is required")
	}

	exists, err := s.RequestRepo.RequestExists(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("quote request not found")
	}
	return s.OfferRepo.GetRequestOffers(ctx, requestID)
}

// GetOfferStatus возвращает статус предложения.
func (s *ComparisonService) GetOfferStatus(ctx context.Context, offerID string) (models.OfferStatus, error) {
	offer, err := s.OfferRepo.GetOfferByID(ctx, offerID)
	if err != nil {
		return "", err
	}
	return offer.Status, nil
}

// CompareOffers строит сводку по всем предложениям заявки: оценки по
// критериям, диапазон цен, средний рейтинг и рекомендованное предложение.
// Сводка кешируется в Redis; любая мутация предложения сбрасывает кеш.
func (s *ComparisonService) CompareOffers(ctx context.Context, requestID string) (*models.GroupedOffers, error) {
	if requestID == "" {
		return nil, models.NewValidationError("requestId is required")
	}

	if cached := s.fromCache(ctx, requestID); cached != nil {
		return cached, nil
	}

	exists, err := s.RequestRepo.RequestExists(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("quote request not found")
	}

	offers, err := s.OfferRepo.GetRequestOffers(ctx, requestID)
	if err != nil {
		return nil, err
	}

	providerIDs := make([]string, 0, len(offers))
	seen := make(map[string]bool, len(offers))
	for _, offer := range offers {
		if !seen[offer.ProviderID] {
			seen[offer.ProviderID] = true
			providerIDs = append(providerIDs, offer.ProviderID)
		}
	}
	providers, err := s.OfferRepo.GetProviders(ctx, providerIDs)
	if err != nil {
		return nil, err
	}

	group := scoring.GroupOffers(requestID, offers, providers, s.weights)
	s.toCache(ctx, &group)
	return &group, nil
}

// fromCache возвращает закешированную сводку или nil.
func (s *ComparisonService) fromCache(ctx context.Context, requestID string) *models.GroupedOffers {
	if s.rdb == nil {
		return nil
	}

	payload, err := s.rdb.Get(ctx, CompareCacheKey(requestID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Printf("read compare cache for request %s: %v", requestID, err)
		}
		return nil
	}

	var group models.GroupedOffers
	if err := json.Unmarshal(payload, &group); err != nil {
		s.logger.Printf("unmarshal compare cache for request %s: %v", requestID, err)
		return nil
	}
	return &group
}

// toCache сохраняет сводку в кеш; сбои кеша не фатальны.
func (s *ComparisonService) toCache(ctx context.Context, group *models.GroupedOffers) {
	if s.rdb == nil {
		return
	}

	payload, err := json.Marshal(group)
	if err != nil {
		s.logger.Printf("marshal compare cache for request %s: %v", group.QuoteRequestID, err)
		return
	}
	if err := s.rdb.Set(ctx, CompareCacheKey(group.QuoteRequestID), payload, compareCacheTTL).Err(); err != nil {
		s.logger.Printf("write compare cache for request %s: %v", group.QuoteRequestID, err)
	}
}
