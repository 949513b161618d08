package router

import (
	"net/http"

	"github.com/senyabanana/offer-service/internal/handlers"
)

func InitRoutes(requestHandler *handlers.RequestHandler, offerHandler *handlers.OfferHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/ping", handlers.PingHandler)

	mux.HandleFunc("/api/requests/new", requestHandler.CreateRequest)
	mux.HandleFunc("/api/requests/my", requestHandler.GetUserRequests)
	mux.HandleFunc("GET /api/requests/{requestId}/status", requestHandler.GetRequestStatus)
	mux.HandleFunc("PUT /api/requests/{requestId}/status", requestHandler.UpdateRequestStatus)
	mux.HandleFunc("/api/requests/{requestId}/offers", requestHandler.GetRequestOffers)
	mux.HandleFunc("/api/requests/{requestId}/compare", requestHandler.CompareOffers)

	mux.HandleFunc("/api/offers/new", requestHandler.CreateOffer)
	mux.HandleFunc("/api/offers/my", offerHandler.GetUserOffers)
	mux.HandleFunc("GET /api/offers/{offerId}/status", offerHandler.GetOfferStatus)
	mux.HandleFunc("/api/offers/{offerId}/submit_quote", offerHandler.SubmitQuote)
	mux.HandleFunc("/api/offers/{offerId}/counter", offerHandler.SendCounterOffer)
	mux.HandleFunc("/api/offers/{offerId}/accept", offerHandler.AcceptOffer)
	mux.HandleFunc("/api/offers/{offerId}/reject", offerHandler.RejectOffer)
	mux.HandleFunc("/api/offers/{offerId}/cancel", offerHandler.CancelOffer)
	mux.HandleFunc("/api/offers/{offerId}/view", offerHandler.MarkViewed)

	return mux
}
