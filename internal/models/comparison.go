package models

// ScoredOffer представляет предложение с нормализованными оценками по критериям.
type ScoredOffer struct {
	Offer
	PriceScore    int `json:"priceScore"`
	RatingScore   int `json:"ratingScore"`
	DeliveryScore int `json:"deliveryScore"`
	OverallScore  int `json:"overallScore"`
}

// GroupedOffers представляет сводку по всем предложениям одной заявки.
// Структура производная, пересчитывается при каждом чтении и не является
// источником истины.
type GroupedOffers struct {
	QuoteRequestID     string            `json:"quoteRequestId"`
	Offers             []ScoredOffer     `json:"offers"`
	LowestPrice        int64             `json:"lowestPrice"`
	HighestPrice       int64             `json:"highestPrice"`
	AvgRating          float64           `json:"avgRating"`
	RecommendedOfferID string            `json:"recommendedOfferId"`
	BestInCategory     map[string]string `json:"bestInCategory"`
}
