// Package lifecycle определяет конечный автомат статусов предложения.
//
// Граф допустимых переходов:
//
//	pending ──► quoted ──► counter_offered ─┐
//	   │           │             │  ▲       │
//	   │           │             └──┘       │
//	   ├───────────┴─────────────┬──────────┴──► accepted
//	   └─────────────────────────┴──► rejected | expired | cancelled
//
// accepted, rejected, expired и cancelled - терминальные статусы.
package lifecycle

import (
	"fmt"

	"github.com/senyabanana/offer-service/internal/models"
)

// validTransitions перечисляет все допустимые пары (из → в).
var validTransitions = map[models.OfferStatus][]models.OfferStatus{
	models.PendingOffer: {
		models.QuotedOffer,
		models.AcceptedOffer,
		models.RejectedOffer,
		models.ExpiredOffer,
		models.CancelledOffer,
	},
	models.QuotedOffer: {
		models.CounterOfferedOffer,
		models.AcceptedOffer,
		models.RejectedOffer,
		models.ExpiredOffer,
		models.CancelledOffer,
	},
	models.CounterOfferedOffer: {
		models.CounterOfferedOffer,
		models.AcceptedOffer,
		models.RejectedOffer,
		models.ExpiredOffer,
		models.CancelledOffer,
	},
	// терминальные статусы исходящих переходов не имеют
}

// ParseStatus преобразует строку в OfferStatus, возвращая ошибку
// для неизвестных значений.
func ParseStatus(s string) (models.OfferStatus, error) {
	st := models.OfferStatus(s)
	switch st {
	case models.PendingOffer, models.QuotedOffer, models.CounterOfferedOffer,
		models.AcceptedOffer, models.RejectedOffer, models.ExpiredOffer, models.CancelledOffer:
		return st, nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

// IsTerminal сообщает, является ли статус терминальным.
func IsTerminal(s models.OfferStatus) bool {
	switch s {
	case models.AcceptedOffer, models.RejectedOffer, models.ExpiredOffer, models.CancelledOffer:
		return true
	}
	return false
}

// IsTransitionAllowed сообщает, разрешён ли переход из статуса from в статус to.
func IsTransitionAllowed(from, to models.OfferStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// LastProposer возвращает сторону, сделавшую последнее ценовое предложение
// (запись типа submitted или counter). Если таких записей нет, возвращает
// пустое значение.
func LastProposer(history []models.HistoryEntry) models.Party {
	for i := len(history) - 1; i >= 0; i-- {
		switch history[i].Type {
		case models.SubmittedEntry, models.CounterEntry:
			return history[i].By
		}
	}
	return ""
}
