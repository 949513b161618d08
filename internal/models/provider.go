package models

import "time"

// Provider представляет профиль поставщика услуг.
// Рейтинговые поля используются движком сравнения предложений.
type Provider struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	CompletedJobs int       `json:"completedJobs"`
	Verified      bool      `json:"verified"`
	CreatedAt     time.Time `json:"createdAt"`
}
