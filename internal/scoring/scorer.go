// Package scoring реализует движок многокритериальной оценки предложений.
// Все функции чистые и безопасны для выполнения над read-only срезом данных.
package scoring

import (
	"math"

	"github.com/senyabanana/offer-service/internal/models"
)

// Фиксированный потолок нормализации для количества отзывов и выполненных
// заказов. Нормализация относительно константы, а не максимума по выборке,
// сохраняет сопоставимость оценок между разными заявками.
const referenceCeiling = 500

// Weights определяет относительную важность каждого критерия сравнения.
// Сумма весов равна 1.
type Weights struct {
	Price      float64
	Rating     float64
	Reviews    float64
	Verified   float64
	Delivery   float64
	Experience float64
}

// DefaultWeights возвращает веса критериев по умолчанию.
func DefaultWeights() Weights {
	return Weights{
		Price:      0.35,
		Rating:     0.25,
		Reviews:    0.10,
		Verified:   0.10,
		Delivery:   0.15,
		Experience: 0.05,
	}
}

// Normalize приводит значение к шкале 0..100 относительно min и max.
// При вырожденном диапазоне (min == max) возвращается 100 для всех
// предложений: единственное или полностью совпадающее значение не должно
// трактоваться как худшее.
func Normalize(value, min, max float64) int {
	if max == min {
		return 100
	}
	return int(math.Round(100 * (value - min) / (max - min)))
}

// NormalizeInverse приводит значение к шкале 0..100, где меньшее значение
// лучше (цена, срок поставки).
func NormalizeInverse(value, min, max float64) int {
	if max == min {
		return 100
	}
	return int(math.Round(100 * (max - value) / (max - min)))
}

// normalizeCapped нормализует значение относительно фиксированного потолка.
func normalizeCapped(value int) int {
	if value > referenceCeiling {
		value = referenceCeiling
	}
	if value < 0 {
		value = 0
	}
	return Normalize(float64(value), 0, referenceCeiling)
}

// ScoreOffers вычисляет нормализованные оценки по критериям и итоговую
// взвешенную оценку для каждого предложения одной заявки. Профили
// поставщиков передаются картой по ProviderID; отсутствующий профиль
// трактуется как нулевой.
func ScoreOffers(offers []models.Offer, providers map[string]models.Provider, weights Weights) []models.ScoredOffer {
	if len(offers) == 0 {
		return nil
	}

	minPrice, maxPrice := priceRange(offers)
	minRating, maxRating := ratingRange(offers, providers)
	minDelivery, maxDelivery := deliveryRange(offers)

	scored := make([]models.ScoredOffer, 0, len(offers))
	for _, offer := range offers {
		provider := providers[offer.ProviderID]

		priceScore := NormalizeInverse(float64(offer.EffectiveAmount()), minPrice, maxPrice)
		ratingScore := Normalize(provider.Rating, minRating, maxRating)
		deliveryScore := NormalizeInverse(float64(offer.DeliveryDays), minDelivery, maxDelivery)

		verifiedScore := 0
		if provider.Verified {
			verifiedScore = 100
		}

		overall := math.Round(
			float64(priceScore)*weights.Price +
				float64(ratingScore)*weights.Rating +
				float64(deliveryScore)*weights.Delivery +
				float64(verifiedScore)*weights.Verified +
				float64(normalizeCapped(provider.ReviewCount))*weights.Reviews +
				float64(normalizeCapped(provider.CompletedJobs))*weights.Experience)

		scored = append(scored, models.ScoredOffer{
			Offer:         offer,
			PriceScore:    priceScore,
			RatingScore:   ratingScore,
			DeliveryScore: deliveryScore,
			OverallScore:  int(overall),
		})
	}
	return scored
}

func priceRange(offers []models.Offer) (float64, float64) {
	min := float64(offers[0].EffectiveAmount())
	max := min
	for _, o := range offers[1:] {
		v := float64(o.EffectiveAmount())
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func ratingRange(offers []models.Offer, providers map[string]models.Provider) (float64, float64) {
	min := providers[offers[0].ProviderID].Rating
	max := min
	for _, o := range offers[1:] {
		v := providers[o.ProviderID].Rating
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func deliveryRange(offers []models.Offer) (float64, float64) {
	min := float64(offers[0].DeliveryDays)
	max := min
	for _, o := range offers[1:] {
		v := float64(o.DeliveryDays)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
