// Command ledgerctl is the operator CLI: migrations, aging reports, manual
// rate overrides and DLQ replay against the same database the API uses.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kairo/internal/config"
	"kairo/internal/infra"
	"kairo/internal/router"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operación del ledger de cuentas por cobrar y por pagar",
	Long: `ledgerctl runs maintenance tasks against the ledger database.

Configuration is read from the same environment variables as the API server
(DATABASE_URL, REDIS_URL, ...).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// openDB loads config and connects to Postgres.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	return cfg, db, nil
}

// services builds the service layer without Kafka or the job queue. Redis is
// used when reachable so that rate overrides invalidate the API's cache.
func services() (router.Services, error) {
	cfg, db, err := openDB()
	if err != nil {
		return router.Services{}, err
	}
	deps := router.Deps{DB: db}
	if rdb, err := infra.NewRedis(cfg.RedisURL); err == nil {
		deps.RDB = rdb
	} else {
		log.Warn().Err(err).Msg("redis unavailable, currency cache will expire on its own")
	}
	return router.NewServices(cfg, deps), nil
}

func empresaFlag(cmd *cobra.Command) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("empresa")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--empresa debe ser un UUID: %w", err)
	}
	return id, nil
}
