package services

import (
	"context"
	"time"

	"github.com/senyabanana/offer-service/internal/models"
	"github.com/senyabanana/offer-service/internal/repository"
	"github.com/senyabanana/offer-service/internal/utils"
)

// RequestService управляет заявками на услуги и созданием предложений по ним.
type RequestService struct {
	Repo      repository.RequestRepository
	OfferRepo repository.OfferRepository
}

// NewRequestService создает новый экземпляр RequestService.
func NewRequestService(repo repository.RequestRepository, offerRepo repository.OfferRepository) *RequestService {
	return &RequestService{Repo: repo, OfferRepo: offerRepo}
}

// CreateRequest создает новую заявку на услугу.
func (s *RequestService) CreateRequest(ctx context.Context, requestReq models.QuoteRequestRequest) (*models.QuoteRequest, error) {
	if requestReq.EventID == "" || requestReq.OrganizerID == "" || requestReq.ServiceCategory == "" {
		return nil, models.NewValidationError("missing required fields: eventId, organizerId or serviceCategory")
	}
	if requestReq.RequestType != models.OpenRequest && requestReq.RequestType != models.InvitedRequest {
		return nil, models.NewValidationError("requestType must be either 'open' or 'invited'")
	}
	if requestReq.BudgetMin < 0 || requestReq.BudgetMax < requestReq.BudgetMin {
		return nil, models.NewValidationError("budget range is invalid")
	}
	if requestReq.Deadline.Before(time.Now().UTC()) {
		return nil, models.NewValidationError("deadline must be in the future")
	}
	return s.Repo.CreateRequest(ctx, requestReq)
}

// GetUserRequests возвращает список заявок организатора.
func (s *RequestService) GetUserRequests(ctx context.Context, organizerID, limitStr, offsetStr string) ([]models.QuoteRequest, error) {
	if organizerID == "" {
		return nil, models.NewValidationError("organizerId is required")
	}

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Repo.GetUserRequests(ctx, organizerID, limit, offset)
}

// GetRequestStatus возвращает статус заявки.
func (s *RequestService) GetRequestStatus(ctx context.Context, requestID string) (models.RequestStatus, error) {
	request, err := s.Repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return "", err
	}
	return request.Status, nil
}

// UpdateRequestStatus меняет статус заявки с проверкой допустимости перехода.
// Статус awarded выставляется только транзакцией принятия предложения.
func (s *RequestService) UpdateRequestStatus(ctx context.Context, requestID string, status models.RequestStatus) (*models.QuoteRequest, error) {
	request, err := s.Repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	allowedStatusTransition := map[models.RequestStatus][]models.RequestStatus{
		models.OpenedRequest:  {models.ClosedRequest},
		models.ClosedRequest:  {},
		models.AwardedRequest: {},
	}

	validTransition := allowedStatusTransition[request.Status]
	if !utils.ContainsRequestStatus(validTransition, status) {
		return nil, models.NewInvalidTransitionError("invalid quote request status")
	}
	return s.Repo.UpdateRequestStatus(ctx, requestID, status)
}

// CreateOffer создает предложение поставщика по заявке в статусе pending.
// У поставщика может быть не больше одного живого предложения по заявке.
func (s *RequestService) CreateOffer(ctx context.Context, offerReq models.OfferRequest) (*models.Offer, error) {
	if offerReq.QuoteRequestID == "" || offerReq.ProviderID == "" || offerReq.OrganizerID == "" {
		return nil, models.NewValidationError("missing required fields: quoteRequestId, providerId or organizerId")
	}
	if offerReq.Amount < 0 {
		return nil, models.NewValidationError("amount must be non-negative")
	}
	if offerReq.DeliveryDays < 0 {
		return nil, models.NewValidationError("deliveryDays must be non-negative")
	}

	request, err := s.Repo.GetRequestByID(ctx, offerReq.QuoteRequestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.OpenedRequest {
		return nil, models.NewInvalidTransitionError("quote request is not open for offers")
	}

	providerExists, err := s.Repo.ProviderExists(ctx, offerReq.ProviderID)
	if err != nil {
		return nil, err
	}
	if !providerExists {
		return nil, models.NewNotFoundError("provider not found")
	}

	hasLive, err := s.OfferRepo.HasLiveOffer(ctx, offerReq.QuoteRequestID, offerReq.ProviderID)
	if err != nil {
		return nil, err
	}
	if hasLive {
		return nil, models.NewValidationError("provider already has a live offer for this quote request")
	}

	return s.OfferRepo.CreateOffer(ctx, offerReq)
}
