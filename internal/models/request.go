package models

import "time"

type (
	RequestType   string // Тип заявки на услугу
	RequestStatus string // Статус заявки
)

const (
	OpenRequest    RequestType = "open"    // Открытая заявка, откликнуться может любой поставщик
	InvitedRequest RequestType = "invited" // Заявка по приглашению

	OpenedRequest  RequestStatus = "open"    // Заявка открыта для предложений
	ClosedRequest  RequestStatus = "closed"  // Заявка закрыта организатором
	AwardedRequest RequestStatus = "awarded" // По заявке принято предложение
)

// QuoteRequest представляет модель заявки на услугу для мероприятия.
type QuoteRequest struct {
	ID              string        `json:"id"`
	EventID         string        `json:"eventId"`
	OrganizerID     string        `json:"organizerId"`
	ServiceCategory string        `json:"serviceCategory"`
	BudgetMin       int64         `json:"budgetMin"`
	BudgetMax       int64         `json:"budgetMax"`
	Deadline        time.Time     `json:"deadline"`
	RequestType     RequestType   `json:"requestType"`
	Status          RequestStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// QuoteRequestRequest представляет структуру запроса для создания заявки.
type QuoteRequestRequest struct {
	EventID         string      `json:"eventId"`
	OrganizerID     string      `json:"organizerId"`
	ServiceCategory string      `json:"serviceCategory"`
	BudgetMin       int64       `json:"budgetMin"`
	BudgetMax       int64       `json:"budgetMax"`
	Deadline        time.Time   `json:"deadline"`
	RequestType     RequestType `json:"requestType"`
}
