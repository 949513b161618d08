package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/offer-service/internal/models"
	"github.com/senyabanana/offer-service/internal/services"
	"github.com/senyabanana/offer-service/internal/utils"
)

// OfferHandler - структура для обработки HTTP-запросов по предложениям.
type OfferHandler struct {
	Negotiation *services.NegotiationService
	Acceptance  *services.AcceptanceService
	Comparison  *services.ComparisonService
	Logger      *log.Logger
	Timeout     time.Duration
}

// NewOfferHandler создает новый экземпляр OfferHandler.
func NewOfferHandler(negotiation *services.NegotiationService, acceptance *services.AcceptanceService, comparison *services.ComparisonService, logger *log.Logger, timeout time.Duration) *OfferHandler {
	return &OfferHandler{
		Negotiation: negotiation,
		Acceptance:  acceptance,
		Comparison:  comparison,
		Logger:      logger,
		Timeout:     timeout,
	}
}

// GetUserOffers обрабатывает запросы для получения списка предложений пользователя.
func (h *OfferHandler) GetUserOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only GET is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	userID := r.URL.Query().Get("userId")
	role := models.Party(r.URL.Query().Get("role"))
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	offers, err := h.Comparison.ListOffers(ctx, userID, role, limitStr, offsetStr)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to retrieve offers"))
		return
	}

	if offers == nil {
		offers = []models.Offer{}
	}
	utils.SendJSON(w, http.StatusOK, offers)
}

// GetOfferStatus обрабатывает запросы для получения статуса предложения.
func (h *OfferHandler) GetOfferStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID := r.PathValue("offerId")

	status, err := h.Comparison.GetOfferStatus(ctx, offerID)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to retrieve offer status"))
		return
	}

	utils.SendJSON(w, http.StatusOK, status)
}

// SubmitQuote обрабатывает запросы на выставление первой цены по предложению.
func (h *OfferHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID := r.PathValue("offerId")

	var quoteReq models.SubmitQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&quoteReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	offer, err := h.Negotiation.SubmitQuote(ctx, offerID, quoteReq)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to submit quote"))
		return
	}

	utils.SendJSON(w, http.StatusOK, offer)
}

// SendCounterOffer обрабатывает запросы на встречное предложение.
func (h *OfferHandler) SendCounterOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID := r.PathValue("offerId")

	var counterReq models.CounterOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&counterReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	offer, err := h.Negotiation.SendCounterOffer(ctx, offerID, counterReq)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to send counter offer"))
		return
	}

	utils.SendJSON(w, http.StatusOK, offer)
}

// AcceptOffer обрабатывает запросы на принятие предложения.
func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID := r.PathValue("offerId")

	var decisionReq models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&decisionReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	offer, err := h.Acceptance.AcceptOffer(ctx, offerID, decisionReq.By)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to accept offer"))
		return
	}

	utils.SendJSON(w, http.StatusOK, offer)
}

// RejectOffer обрабатывает запросы на отклонение предложения.
func (h *OfferHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID := r.PathValue("offerId")

	var decisionReq models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&decisionReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	offer, err := h.Negotiation.RejectOffer(ctx, offerID, decisionReq.By, decisionReq.Reason)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to reject offer"))
		return
	}

	utils.SendJSON(w, http.StatusOK, offer)
}

// CancelOffer обрабатывает запросы на отзыв предложения поставщиком.
func (h *OfferHandler) CancelOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID := r.PathValue("offerId")

	var decisionReq models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&decisionReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	offer, err := h.Negotiation.CancelOffer(ctx, offerID, decisionReq.By)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to cancel offer"))
		return
	}

	utils.SendJSON(w, http.StatusOK, offer)
}

// MarkViewed обрабатывает запросы на отметку о просмотре предложения.
func (h *OfferHandler) MarkViewed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID := r.PathValue("offerId")

	var decisionReq models.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&decisionReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	offer, err := h.Negotiation.MarkViewed(ctx, offerID, decisionReq.By)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to mark offer as viewed"))
		return
	}

	utils.SendJSON(w, http.StatusOK, offer)
}
