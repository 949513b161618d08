package scoring

import (
	"sort"

	"github.com/senyabanana/offer-service/internal/models"
)

// GroupByRequest разбивает предложения по заявкам и строит сводку по каждой
// группе: диапазон цен, средний рейтинг поставщиков и рекомендованное
// предложение с максимальной итоговой оценкой. При равных оценках
// рекомендуется предложение, созданное раньше.
func GroupByRequest(offers []models.Offer, providers map[string]models.Provider, weights Weights) []models.GroupedOffers {
	byRequest := make(map[string][]models.Offer)
	order := make([]string, 0)
	for _, offer := range offers {
		if _, ok := byRequest[offer.QuoteRequestID]; !ok {
			order = append(order, offer.QuoteRequestID)
		}
		byRequest[offer.QuoteRequestID] = append(byRequest[offer.QuoteRequestID], offer)
	}

	groups := make([]models.GroupedOffers, 0, len(order))
	for _, requestID := range order {
		groups = append(groups, GroupOffers(requestID, byRequest[requestID], providers, weights))
	}
	return groups
}

// GroupOffers строит сводку по предложениям одной заявки.
func GroupOffers(requestID string, offers []models.Offer, providers map[string]models.Provider, weights Weights) models.GroupedOffers {
	scored := ScoreOffers(offers, providers, weights)

	group := models.GroupedOffers{
		QuoteRequestID: requestID,
		Offers:         scored,
		BestInCategory: BestInCategory(offers, providers),
	}
	if len(scored) == 0 {
		return group
	}

	group.LowestPrice = offers[0].EffectiveAmount()
	group.HighestPrice = offers[0].EffectiveAmount()
	var ratingSum float64
	for _, offer := range offers {
		price := offer.EffectiveAmount()
		if price < group.LowestPrice {
			group.LowestPrice = price
		}
		if price > group.HighestPrice {
			group.HighestPrice = price
		}
		ratingSum += providers[offer.ProviderID].Rating
	}
	group.AvgRating = ratingSum / float64(len(offers))
	group.RecommendedOfferID = recommend(scored)

	return group
}

// recommend выбирает предложение с максимальной итоговой оценкой,
// при равенстве - созданное раньше.
func recommend(scored []models.ScoredOffer) string {
	best := scored[0]
	for _, candidate := range scored[1:] {
		if candidate.OverallScore > best.OverallScore ||
			(candidate.OverallScore == best.OverallScore && candidate.CreatedAt.Before(best.CreatedAt)) {
			best = candidate
		}
	}
	return best.ID
}

// BestInCategory возвращает по каждому критерию идентификатор предложения
// с лучшим сырым значением (до нормализации). Используется для бейджей
// "лучшая цена", "лучший рейтинг", "самая быстрая поставка".
func BestInCategory(offers []models.Offer, providers map[string]models.Provider) map[string]string {
	if len(offers) == 0 {
		return map[string]string{}
	}

	// копия с устойчивым порядком, чтобы при равных значениях
	// побеждало предложение, созданное раньше
	sorted := make([]models.Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	bestPrice := sorted[0]
	bestRating := sorted[0]
	fastest := sorted[0]
	mostExperienced := sorted[0]
	for _, offer := range sorted[1:] {
		if offer.EffectiveAmount() < bestPrice.EffectiveAmount() {
			bestPrice = offer
		}
		if providers[offer.ProviderID].Rating > providers[bestRating.ProviderID].Rating {
			bestRating = offer
		}
		if offer.DeliveryDays < fastest.DeliveryDays {
			fastest = offer
		}
		if providers[offer.ProviderID].CompletedJobs > providers[mostExperienced.ProviderID].CompletedJobs {
			mostExperienced = offer
		}
	}

	return map[string]string{
		"price":      bestPrice.ID,
		"rating":     bestRating.ID,
		"delivery":   fastest.ID,
		"experience": mostExperienced.ID,
	}
}
