package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kairo/internal/broker"
	"kairo/internal/config"
	"kairo/internal/infra"
	"kairo/internal/router"
	"kairo/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events broker.Publisher = broker.Nop{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		events = broker.NewProducer(brokers, cfg.KafkaTopic)
	}
	defer events.Close()

	deps := router.Deps{
		DB:         db,
		RDB:        rdb,
		Metrics:    infra.NewMetrics(),
		Events:     events,
		Dispatcher: worker.NewDispatcher(rdb),
	}
	if cfg.CotizacionesURL != "" {
		deps.Cotizaciones = infra.NewCotizacionesClient(cfg.CotizacionesURL)
	}
	svcs := router.NewServices(cfg, deps)

	// Background jobs are wired here (composition root)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Processor{
		worker.QueueRecordatorios: worker.NewRecordatorioWorker(infra.NewMailer(cfg)),
	})
	worker.StartAntiguedadCron(ctx, worker.AntiguedadCronConfig{
		Empresas: svcs.MonedaRepo,
		Cuentas:  svcs.Cuentas,
		Interval: cfg.AntiguedadInterval,
	})
	if deps.Cotizaciones != nil {
		worker.StartCotizacionesCron(ctx, worker.CotizacionesCronConfig{
			Empresas: svcs.MonedaRepo,
			Monedas:  svcs.Monedas,
			Source:   deps.Cotizaciones,
			Metrics:  deps.Metrics,
			Interval: cfg.CotizacionesInterval,
		})
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(cfg, deps, svcs),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("kairo ledger listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
