package worker

// antiguedad_cron.go
// Background goroutine that refreshes the stored "vencida" snapshot of past-due
// accounts for every tenant and, through the service, queues one reminder per
// account on its transition to overdue.

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	antiguedadBatchSize   = 200
	antiguedadParallelism = 4
)

// EmpresaLister returns every tenant with an initialised currency registry.
type EmpresaLister interface {
	ListEmpresas(ctx context.Context) ([]uuid.UUID, error)
}

// VencimientoMarker marks up to limit past-due accounts of one tenant and
// returns how many changed.
type VencimientoMarker interface {
	MarcarVencidas(ctx context.Context, empresaID uuid.UUID, limit int) (int, error)
}

// AntiguedadCronConfig holds all dependencies for the aging goroutine.
type AntiguedadCronConfig struct {
	Empresas EmpresaLister
	Cuentas  VencimientoMarker
	Interval time.Duration
}

// StartAntiguedadCron runs one pass immediately and then every Interval until
// ctx is cancelled.
func StartAntiguedadCron(ctx context.Context, cfg AntiguedadCronConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("antiguedad_cron: started")
		RunAntiguedad(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("antiguedad_cron: shutting down")
				return
			case <-ticker.C:
				RunAntiguedad(ctx, cfg)
			}
		}
	}()
}

// RunAntiguedad performs one pass over all tenants and returns the number of
// accounts marked overdue. A failing tenant is logged and does not stop the
// others.
func RunAntiguedad(ctx context.Context, cfg AntiguedadCronConfig) int {
	empresas, err := cfg.Empresas.ListEmpresas(ctx)
	if err != nil {
		log.Error().Err(err).Msg("antiguedad_cron: failed to list tenants")
		return 0
	}

	counts := make([]int, len(empresas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(antiguedadParallelism)
	for i, empresaID := range empresas {
		i, empresaID := i, empresaID
		g.Go(func() error {
			for {
				n, err := cfg.Cuentas.MarcarVencidas(gctx, empresaID, antiguedadBatchSize)
				if err != nil {
					log.Error().Err(err).Str("empresa_id", empresaID.String()).Msg("antiguedad_cron: tenant pass failed")
					return nil
				}
				counts[i] += n
				if n < antiguedadBatchSize || gctx.Err() != nil {
					return nil
				}
			}
		})
	}
	_ = g.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}
	if total > 0 {
		log.Info().Int("cuentas", total).Int("empresas", len(empresas)).Msg("antiguedad_cron: accounts marked overdue")
	}
	return total
}
