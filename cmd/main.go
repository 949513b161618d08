package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/senyabanana/offer-service/internal/db"
	"github.com/senyabanana/offer-service/internal/expiry"
	"github.com/senyabanana/offer-service/internal/handlers"
	"github.com/senyabanana/offer-service/internal/repository"
	"github.com/senyabanana/offer-service/internal/router"
	"github.com/senyabanana/offer-service/internal/router/config"
	"github.com/senyabanana/offer-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.InitRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("error initializing redis: %v", err)
	}
	defer rdb.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	offerRepo := repository.NewPostgresOfferRepository(dbPool)
	requestRepo := repository.NewPostgresRequestRepository(dbPool)

	negotiationService := services.NewNegotiationService(offerRepo, rdb)
	acceptanceService := services.NewAcceptanceService(offerRepo, rdb, logger)
	comparisonService := services.NewComparisonService(offerRepo, requestRepo, rdb, logger)
	requestService := services.NewRequestService(requestRepo, offerRepo)

	requestHandler := handlers.NewRequestHandler(requestService, comparisonService, logger, 5*time.Second)
	offerHandler := handlers.NewOfferHandler(negotiationService, acceptanceService, comparisonService, logger, 5*time.Second)

	sweeper := expiry.NewSweeper(offerRepo, logger, cfg.ExpirySweepMin)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("error starting expiry sweeper: %v", err)
	}
	defer sweeper.Stop()

	routes := router.InitRoutes(requestHandler, offerHandler)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      routes,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server is listening on %s...", cfg.ServerAddress)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("server stopped")
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
