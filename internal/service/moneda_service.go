package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"kairo/internal/dto"
	"kairo/internal/infra"
	"kairo/internal/ledger"
	"kairo/internal/model"
	"kairo/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type MonedaService interface {
	Crear(ctx context.Context, empresaID uuid.UUID, req dto.CrearMonedaRequest) (*dto.MonedaResponse, error)
	Listar(ctx context.Context, empresaID uuid.UUID) ([]dto.MonedaResponse, error)
	Actualizar(ctx context.Context, empresaID, id uuid.UUID, req dto.ActualizarMonedaRequest) (*dto.MonedaResponse, error)
	Desactivar(ctx context.Context, empresaID, id uuid.UUID) error
	Convertir(ctx context.Context, empresaID uuid.UUID, req dto.ConvertirRequest) (*dto.ConvertirResponse, error)
	// ActualizarTasas applies provider rates keyed by currency code and
	// returns how many currencies changed. Base and unknown codes are skipped.
	ActualizarTasas(ctx context.Context, empresaID uuid.UUID, tasas map[string]decimal.Decimal) (int, error)
	// Registro returns the tenant's full registry, served from Redis when cached.
	Registro(ctx context.Context, empresaID uuid.UUID) ([]model.Moneda, error)
}

type monedaService struct {
	repo    repository.MonedaRepository
	rdb     *redis.Client
	ttl     time.Duration
	metrics *infra.Metrics
	now     func() time.Time
}

// NewMonedaService builds the registry service. rdb may be nil (no cache).
func NewMonedaService(repo repository.MonedaRepository, rdb *redis.Client, ttl time.Duration, metrics *infra.Metrics) MonedaService {
	return &monedaService{repo: repo, rdb: rdb, ttl: ttl, metrics: metrics, now: time.Now}
}

// The registry is cached under a per-tenant version. Writers bump the version
// after their change is stored, so a reader that loaded the registry before
// the write can only refill a key nobody reads anymore.
func monedasVersionKey(empresaID uuid.UUID) string { return "monedas:" + empresaID.String() + ":version" }

func monedasCacheKey(empresaID uuid.UUID, version int64) string {
	return fmt.Sprintf("monedas:%s:%d", empresaID, version)
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *monedaService) Crear(ctx context.Context, empresaID uuid.UUID, req dto.CrearMonedaRequest) (*dto.MonedaResponse, error) {
	codigo := strings.ToUpper(strings.TrimSpace(req.Codigo))
	if existing, err := s.repo.FindByCodigo(ctx, empresaID, codigo); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, codigo)
	}

	monedas, err := s.repo.List(ctx, empresaID)
	if err != nil {
		return nil, err
	}

	tasa := req.TasaVsBase
	if req.EsBase {
		if base, err := ledger.BaseCurrency(monedas); err == nil {
			return nil, fmt.Errorf("%w: ya existe %s", ledger.ErrAmbiguousBaseCurrency, base.Codigo)
		}
		tasa = decimal.NewFromInt(1)
	} else if !ledger.Round2(tasa).IsPositive() {
		return nil, fmt.Errorf("%w: %s", ledger.ErrInvalidRate, tasa)
	}

	now := s.now()
	m := &model.Moneda{
		EmpresaID:         empresaID,
		Codigo:            codigo,
		Nombre:            strings.TrimSpace(req.Nombre),
		Simbolo:           req.Simbolo,
		Decimales:         req.Decimales,
		Activo:            true,
		EsBase:            req.EsBase,
		TasaVsBase:        tasa,
		TasaActualizadaAt: &now,
	}
	// a concurrent create can still lose on the unique indexes
	if err := s.repo.Create(ctx, m); err != nil {
		switch {
		case errors.Is(err, repository.ErrBaseDuplicada):
			return nil, fmt.Errorf("%w: %s", ledger.ErrAmbiguousBaseCurrency, codigo)
		case errors.Is(err, repository.ErrCodigoDuplicado):
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, codigo)
		}
		return nil, err
	}
	s.invalidar(ctx, empresaID)

	resp := toMonedaResponse(m)
	return &resp, nil
}

// ── Listar ────────────────────────────────────────────────────────────────────

func (s *monedaService) Listar(ctx context.Context, empresaID uuid.UUID) ([]dto.MonedaResponse, error) {
	monedas, err := s.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MonedaResponse, 0, len(monedas))
	for i := range monedas {
		out = append(out, toMonedaResponse(&monedas[i]))
	}
	return out, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Rate changes never touch stored abonos: their converted amount is final.

func (s *monedaService) Actualizar(ctx context.Context, empresaID, id uuid.UUID, req dto.ActualizarMonedaRequest) (*dto.MonedaResponse, error) {
	m, err := s.repo.FindByID(ctx, empresaID, id)
	if err != nil {
		return nil, notFound(err, "moneda")
	}

	if req.TasaVsBase != nil && !req.TasaVsBase.Equal(m.TasaVsBase) {
		if m.EsBase {
			return nil, ErrBaseCurrencyLocked
		}
		if !ledger.Round2(*req.TasaVsBase).IsPositive() {
			return nil, fmt.Errorf("%w: %s", ledger.ErrInvalidRate, req.TasaVsBase)
		}
		now := s.now()
		m.TasaVsBase = *req.TasaVsBase
		m.TasaActualizadaAt = &now
	}
	if req.Activo != nil {
		if m.EsBase && !*req.Activo {
			return nil, ErrBaseCurrencyLocked
		}
		m.Activo = *req.Activo
	}
	if req.Nombre != nil {
		m.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Simbolo != nil {
		m.Simbolo = *req.Simbolo
	}
	if req.Decimales != nil {
		m.Decimales = *req.Decimales
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	s.invalidar(ctx, empresaID)

	resp := toMonedaResponse(m)
	return &resp, nil
}

// ── Desactivar ────────────────────────────────────────────────────────────────
// Currencies are never deleted; accounts and abonos keep referencing them.

func (s *monedaService) Desactivar(ctx context.Context, empresaID, id uuid.UUID) error {
	activo := false
	_, err := s.Actualizar(ctx, empresaID, id, dto.ActualizarMonedaRequest{Activo: &activo})
	return err
}

// ── Convertir ─────────────────────────────────────────────────────────────────

func (s *monedaService) Convertir(ctx context.Context, empresaID uuid.UUID, req dto.ConvertirRequest) (*dto.ConvertirResponse, error) {
	monedas, err := s.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	conv, err := ledger.Convert(req.Monto, req.Desde, req.Hacia, monedas)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordConversion(string(conv.Outcome))

	resp := &dto.ConvertirResponse{Monto: conv.Amount, Resultado: string(conv.Outcome)}
	if conv.PassedThrough() {
		aviso := conv.Cause.Error() + "; monto sin convertir"
		resp.Aviso = &aviso
	}
	return resp, nil
}

// ── ActualizarTasas ───────────────────────────────────────────────────────────

func (s *monedaService) ActualizarTasas(ctx context.Context, empresaID uuid.UUID, tasas map[string]decimal.Decimal) (int, error) {
	monedas, err := s.repo.List(ctx, empresaID)
	if err != nil {
		return 0, err
	}

	porCodigo := make(map[string]decimal.Decimal, len(tasas))
	for codigo, tasa := range tasas {
		porCodigo[strings.ToUpper(strings.TrimSpace(codigo))] = tasa
	}

	now := s.now()
	cambios := 0
	for i := range monedas {
		m := &monedas[i]
		tasa, ok := porCodigo[strings.ToUpper(m.Codigo)]
		if !ok || m.EsBase || tasa.Equal(m.TasaVsBase) {
			continue
		}
		if !ledger.Round2(tasa).IsPositive() {
			log.Warn().Str("empresa_id", empresaID.String()).Str("codigo", m.Codigo).
				Str("tasa", tasa.String()).Msg("moneda: tasa del proveedor descartada")
			continue
		}
		m.TasaVsBase = tasa
		m.TasaActualizadaAt = &now
		if err := s.repo.Update(ctx, m); err != nil {
			return cambios, err
		}
		cambios++
	}
	if cambios > 0 {
		s.invalidar(ctx, empresaID)
	}
	return cambios, nil
}

// ── Registro ──────────────────────────────────────────────────────────────────

func (s *monedaService) Registro(ctx context.Context, empresaID uuid.UUID) ([]model.Moneda, error) {
	key := ""
	if s.rdb != nil {
		version, err := s.rdb.Get(ctx, monedasVersionKey(empresaID)).Int64()
		switch {
		case err == nil || errors.Is(err, redis.Nil):
			key = monedasCacheKey(empresaID, version)
		default:
			log.Warn().Err(err).Msg("moneda: cache no disponible")
		}
	}
	if key != "" {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var monedas []model.Moneda
			if jsonErr := json.Unmarshal(cached, &monedas); jsonErr == nil {
				s.metrics.RecordCache(true)
				return monedas, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("moneda: cache no disponible")
		}
		s.metrics.RecordCache(false)
	}

	monedas, err := s.repo.List(ctx, empresaID)
	if err != nil {
		return nil, err
	}

	// best effort, ignore errors
	if key != "" {
		if b, jsonErr := json.Marshal(monedas); jsonErr == nil {
			_ = s.rdb.Set(ctx, key, b, s.ttl).Err()
		}
	}
	return monedas, nil
}

func (s *monedaService) invalidar(ctx context.Context, empresaID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, monedasVersionKey(empresaID)).Err(); err != nil {
		log.Warn().Err(err).Str("empresa_id", empresaID.String()).Msg("moneda: no se pudo invalidar la cache")
	}
}
