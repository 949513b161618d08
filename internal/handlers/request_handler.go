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

// RequestHandler - структура для обработки HTTP-запросов по заявкам.
type RequestHandler struct {
	Service    *services.RequestService
	Comparison *services.ComparisonService
	Logger     *log.Logger
	Timeout    time.Duration
}

// NewRequestHandler создает новый экземпляр RequestHandler.
func NewRequestHandler(service *services.RequestService, comparison *services.ComparisonService, logger *log.Logger, timeout time.Duration) *RequestHandler {
	return &RequestHandler{
		Service:    service,
		Comparison: comparison,
		Logger:     logger,
		Timeout:    timeout,
	}
}

// CreateRequest обрабатывает запросы для создания заявки на услугу.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var requestReq models.QuoteRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&requestReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	newRequest, err := h.Service.CreateRequest(ctx, requestReq)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to create quote request"))
		return
	}

	utils.SendJSON(w, http.StatusOK, newRequest)
}

// GetUserRequests обрабатывает запросы для получения списка заявок организатора.
func (h *RequestHandler) GetUserRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only GET is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	organizerID := r.URL.Query().Get("organizerId")
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	requests, err := h.Service.GetUserRequests(ctx, organizerID, limitStr, offsetStr)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to retrieve quote requests"))
		return
	}

	if requests == nil {
		requests = []models.QuoteRequest{}
	}
	utils.SendJSON(w, http.StatusOK, requests)
}

// GetRequestStatus обрабатывает запросы для получения статуса заявки.
func (h *RequestHandler) GetRequestStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID := r.PathValue("requestId")

	status, err := h.Service.GetRequestStatus(ctx, requestID)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to retrieve request status"))
		return
	}

	utils.SendJSON(w, http.StatusOK, status)
}

// UpdateRequestStatus обрабатывает запросы для смены статуса заявки.
func (h *RequestHandler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID := r.PathValue("requestId")
	status := models.RequestStatus(r.URL.Query().Get("status"))

	request, err := h.Service.UpdateRequestStatus(ctx, requestID, status)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to update request status"))
		return
	}

	utils.SendJSON(w, http.StatusOK, request)
}

// GetRequestOffers обрабатывает запросы для получения предложений по заявке.
func (h *RequestHandler) GetRequestOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only GET is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID := r.PathValue("requestId")

	offers, err := h.Comparison.ListRequestOffers(ctx, requestID)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to retrieve offers for request"))
		return
	}

	if offers == nil {
		offers = []models.Offer{}
	}
	utils.SendJSON(w, http.StatusOK, offers)
}

// CompareOffers обрабатывает запросы на сравнение предложений по заявке.
func (h *RequestHandler) CompareOffers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only GET is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID := r.PathValue("requestId")

	group, err := h.Comparison.CompareOffers(ctx, requestID)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to compare offers"))
		return
	}

	utils.SendJSON(w, http.StatusOK, group)
}

// CreateOffer обрабатывает запросы для создания предложения по заявке.
func (h *RequestHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.SendErrorResponse(w, models.NewValidationError("invalid method, only POST is allowed"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var offerReq models.OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&offerReq); err != nil {
		utils.SendErrorResponse(w, models.NewValidationError("invalid request body"))
		return
	}

	newOffer, err := h.Service.CreateOffer(ctx, offerReq)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendErrorResponse(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, models.NewInternalError("failed to create offer"))
		return
	}

	utils.SendJSON(w, http.StatusOK, newOffer)
}
