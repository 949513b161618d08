package models

import "time"

type (
	OfferStatus string // Статус предложения
	Party       string // Сторона переговоров
	HistoryType string // Тип записи в истории переговоров
)

const (
	Organizer     Party = "organizer" // Организатор мероприятия
	ProviderParty Party = "provider"  // Поставщик услуги

	PendingOffer        OfferStatus = "pending"         // Предложение создано, цена ещё не выставлена
	QuotedOffer         OfferStatus = "quoted"          // Поставщик выставил первую цену
	CounterOfferedOffer OfferStatus = "counter_offered" // Идёт обмен встречными предложениями
	AcceptedOffer       OfferStatus = "accepted"        // Предложение принято
	RejectedOffer       OfferStatus = "rejected"        // Предложение отклонено
	ExpiredOffer        OfferStatus = "expired"         // Срок действия предложения истёк
	CancelledOffer      OfferStatus = "cancelled"       // Предложение отозвано

	SubmittedEntry HistoryType = "submitted" // Выставлена первая цена
	ViewedEntry    HistoryType = "viewed"    // Предложение просмотрено второй стороной
	CounterEntry   HistoryType = "counter"   // Отправлено встречное предложение
	AcceptedEntry  HistoryType = "accepted"  // Предложение принято
	RejectedEntry  HistoryType = "rejected"  // Предложение отклонено
	ExpiredEntry   HistoryType = "expired"   // Предложение просрочено
	CancelledEntry HistoryType = "cancelled" // Предложение отозвано
)

// CounterOffer представляет последнее встречное предложение по цене.
type CounterOffer struct {
	Amount    int64     `json:"amount"`
	By        Party     `json:"by"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryEntry представляет неизменяемую запись в истории переговоров.
// Поля сериализуются в том виде, в котором их потребляет таймлайн на клиенте.
type HistoryEntry struct {
	ID      string      `json:"id"`
	Type    HistoryType `json:"type"`
	By      Party       `json:"by"`
	Date    time.Time   `json:"date"`
	Amount  *int64      `json:"amount,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Offer представляет модель предложения по заявке.
type Offer struct {
	ID             string         `json:"id"`
	QuoteRequestID string         `json:"quoteRequestId"`
	ProviderID     string         `json:"providerId"`
	OrganizerID    string         `json:"organizerId"`
	Status         OfferStatus    `json:"status"`
	Amount         int64          `json:"amount"`
	CounterOffer   *CounterOffer  `json:"counterOffer,omitempty"`
	FinalAmount    *int64         `json:"finalAmount,omitempty"`
	DeliveryDays   int            `json:"deliveryDays"`
	Inclusions     []string       `json:"inclusions,omitempty"`
	Exclusions     []string       `json:"exclusions,omitempty"`
	ValidUntil     *time.Time     `json:"validUntil,omitempty"`
	History        []HistoryEntry `json:"history"`
	Version        int32          `json:"version"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// OfferRequest представляет структуру запроса для создания предложения.
type OfferRequest struct {
	QuoteRequestID string `json:"quoteRequestId"`
	ProviderID     string `json:"providerId"`
	OrganizerID    string `json:"organizerId"`
	Amount         int64  `json:"amount"`
	DeliveryDays   int    `json:"deliveryDays"`
}

// SubmitQuoteRequest представляет структуру запроса для выставления первой цены.
type SubmitQuoteRequest struct {
	Amount     int64    `json:"amount"`
	Message    string   `json:"message,omitempty"`
	ValidDays  int      `json:"validDays"`
	Inclusions []string `json:"inclusions,omitempty"`
	Exclusions []string `json:"exclusions,omitempty"`
}

// CounterOfferRequest представляет структуру запроса для встречного предложения.
type CounterOfferRequest struct {
	Amount  int64  `json:"amount"`
	By      Party  `json:"by"`
	Message string `json:"message,omitempty"`
}

// DecisionRequest представляет структуру запроса для принятия или отклонения предложения.
type DecisionRequest struct {
	By     Party  `json:"by"`
	Reason string `json:"reason,omitempty"`
}

// EffectiveAmount возвращает актуальную цену предложения:
// сумму последнего встречного предложения, если оно есть, иначе исходную.
func (o *Offer) EffectiveAmount() int64 {
	if o.CounterOffer != nil {
		return o.CounterOffer.Amount
	}
	return o.Amount
}
