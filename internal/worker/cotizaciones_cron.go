package worker

// cotizaciones_cron.go
// Periodically pulls exchange rates from the provider and stores them as
// tasa_vs_base for every tenant. Skips the tick while the provider's
// circuit breaker is open.

import (
	"context"
	"time"

	"kairo/internal/infra"
	"kairo/internal/ledger"
	"kairo/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// RateSource is implemented by infra.CotizacionesClient.
type RateSource interface {
	Obtener(ctx context.Context, base string) (*infra.CotizacionesResponse, error)
	Estado() string
}

// RateUpdater is the subset of the currency service the cron drives.
type RateUpdater interface {
	Registro(ctx context.Context, empresaID uuid.UUID) ([]model.Moneda, error)
	ActualizarTasas(ctx context.Context, empresaID uuid.UUID, tasas map[string]decimal.Decimal) (int, error)
}

type CotizacionesCronConfig struct {
	Empresas EmpresaLister
	Monedas  RateUpdater
	Source   RateSource
	Metrics  *infra.Metrics
	Interval time.Duration
}

func StartCotizacionesCron(ctx context.Context, cfg CotizacionesCronConfig) {
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("cotizaciones_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("cotizaciones_cron: shutting down")
				return
			case <-ticker.C:
				RunCotizaciones(ctx, cfg)
			}
		}
	}()
}

// RunCotizaciones refreshes rates tenant by tenant and returns how many
// currencies changed.
func RunCotizaciones(ctx context.Context, cfg CotizacionesCronConfig) int {
	if cfg.Source.Estado() == gobreaker.StateOpen.String() {
		log.Debug().Msg("cotizaciones_cron: circuit breaker is open, skipping tick")
		cfg.Metrics.RecordCotizacion("omitida")
		return 0
	}

	empresas, err := cfg.Empresas.ListEmpresas(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cotizaciones_cron: failed to list tenants")
		return 0
	}

	// quotes are shared across tenants with the same base currency
	porBase := make(map[string]*infra.CotizacionesResponse)
	total := 0
	for _, empresaID := range empresas {
		// the breaker may have tripped mid-batch
		if cfg.Source.Estado() == gobreaker.StateOpen.String() {
			log.Debug().Msg("cotizaciones_cron: circuit breaker opened mid-batch, stopping")
			return total
		}

		l := log.With().Str("empresa_id", empresaID.String()).Logger()
		monedas, err := cfg.Monedas.Registro(ctx, empresaID)
		if err != nil {
			l.Error().Err(err).Msg("cotizaciones_cron: registry unavailable")
			continue
		}
		base, err := ledger.BaseCurrency(monedas)
		if err != nil {
			l.Warn().Err(err).Msg("cotizaciones_cron: tenant skipped")
			continue
		}

		resp, ok := porBase[base.Codigo]
		if !ok {
			resp, err = cfg.Source.Obtener(ctx, base.Codigo)
			if err != nil {
				cfg.Metrics.RecordCotizacion("error")
				l.Warn().Err(err).Str("base", base.Codigo).Msg("cotizaciones_cron: provider call failed")
				continue
			}
			cfg.Metrics.RecordCotizacion("ok")
			porBase[base.Codigo] = resp
		}

		n, err := cfg.Monedas.ActualizarTasas(ctx, empresaID, resp.Tasas)
		if err != nil {
			l.Error().Err(err).Msg("cotizaciones_cron: failed to store rates")
		}
		total += n
	}
	if total > 0 {
		log.Info().Int("monedas", total).Msg("cotizaciones_cron: rates updated")
	}
	return total
}
