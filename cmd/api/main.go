package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/encorehq/stagehold/internal/app"
	"github.com/encorehq/stagehold/internal/clock"
	"github.com/encorehq/stagehold/internal/config"
	"github.com/encorehq/stagehold/internal/notify"
	"github.com/encorehq/stagehold/internal/storage/postgres"
	transporthttp "github.com/encorehq/stagehold/internal/transport/http"
	"github.com/encorehq/stagehold/migrations"
)

func main() {
	logger := log.Default()
	config.LoadEnvFile(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	holdRepo := postgres.NewHoldRepository(pool)
	bidRepo := postgres.NewBidRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)

	notifier := notify.NewLog(logger)
	holdSvc := app.NewHoldService(holdRepo, bidRepo, notifier, clk, app.WithHoldTTL(cfg.HoldTTL))
	adminSvc := app.NewAdminService(adminRepo, clk)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := app.NewExpirySweeper(holdRepo, holdSvc, cfg.SweepInterval, clk, logger)
	sweeper.Start(sweepCtx)

	handler := transporthttp.NewRouter(holdSvc, adminSvc, cfg.CORSOrigins, logger)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}
