// Package expiry содержит периодическую задачу, переводящую просроченные
// предложения в статус expired. Дедлайн заявки и срок действия предложения
// проверяются активно по расписанию, а не лениво при чтении.
package expiry

import (
	"context"
	"fmt"
	"log"

	"github.com/senyabanana/offer-service/internal/repository"

	"github.com/robfig/cron/v3"
)

// Sweeper оборачивает robfig/cron и управляет циклом проверки сроков.
type Sweeper struct {
	cron   *cron.Cron
	repo   repository.OfferRepository
	logger *log.Logger
	spec   string
}

// NewSweeper создает Sweeper, срабатывающий каждые intervalMinutes минут.
func NewSweeper(repo repository.OfferRepository, logger *log.Logger, intervalMinutes int) *Sweeper {
	if intervalMinutes <= 0 {
		intervalMinutes = 5
	}
	return &Sweeper{
		cron:   cron.New(),
		repo:   repo,
		logger: logger,
		spec:   fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start регистрирует задачу и запускает планировщик. Первая проверка
// выполняется сразу, не дожидаясь первого тика.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Printf("expiry sweeper started, spec: %s", s.spec)

	go s.runSweep(ctx)

	return nil
}

// Stop останавливает планировщик.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	s.logger.Println("expiry sweeper stopped")
}

// runSweep помечает просроченные предложения.
func (s *Sweeper) runSweep(ctx context.Context) {
	expired, err := s.repo.ExpireDueOffers(ctx)
	if err != nil {
		s.logger.Printf("expiry sweep failed: %v", err)
		return
	}
	if expired > 0 {
		s.logger.Printf("expiry sweep: %d offer(s) expired", expired)
	}
}
