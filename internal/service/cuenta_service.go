package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kairo/internal/broker"
	"kairo/internal/dto"
	"kairo/internal/infra"
	"kairo/internal/ledger"
	"kairo/internal/model"
	"kairo/internal/repository"
	"kairo/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type CuentaService interface {
	Crear(ctx context.Context, empresaID uuid.UUID, req dto.CrearCuentaRequest) (*dto.CuentaResponse, error)
	ObtenerPorID(ctx context.Context, empresaID, id uuid.UUID) (*dto.CuentaResponse, error)
	Listar(ctx context.Context, empresaID uuid.UUID, filter dto.CuentaFilter) (*dto.CuentaListResponse, error)
	AplicarAbono(ctx context.Context, empresaID, cuentaID uuid.UUID, req dto.AplicarAbonoRequest) (*dto.AplicarAbonoResponse, error)
	RevertirAbono(ctx context.Context, empresaID, cuentaID, abonoID uuid.UUID) (*dto.CuentaResponse, error)
	Anular(ctx context.Context, empresaID, cuentaID uuid.UUID, motivo string) (*dto.CuentaResponse, error)
	Antiguedad(ctx context.Context, empresaID uuid.UUID, tipo string) (*dto.AntiguedadResponse, error)
	// ResumenPorContraparte converts every non-void account to monedaRef
	// (the base currency when empty) and groups them by counterparty.
	ResumenPorContraparte(ctx context.Context, empresaID uuid.UUID, tipo, monedaRef string) (*dto.ResumenResponse, error)
	// MarcarVencidas refreshes the stored estado of up to limit past-due
	// accounts and queues their reminder. Returns how many were marked.
	MarcarVencidas(ctx context.Context, empresaID uuid.UUID, limit int) (int, error)
}

// RecordatorioQueue is implemented by worker.Dispatcher.
type RecordatorioQueue interface {
	EnqueueRecordatorio(ctx context.Context, payload worker.RecordatorioPayload) error
}

// CuentaConfig carries the ledger policies. Now defaults to time.Now.
type CuentaConfig struct {
	Sobrepago  ledger.OverpaymentPolicy
	Antiguedad ledger.AgingPolicy
	Now        func() time.Time
}

type cuentaService struct {
	repo          repository.CuentaRepository
	contrapartes  repository.ContraparteRepository
	monedas       MonedaService
	recordatorios RecordatorioQueue
	events        broker.Publisher
	metrics       *infra.Metrics
	cfg           CuentaConfig
	locks         *keyedMutex
}

func NewCuentaService(
	repo repository.CuentaRepository,
	contrapartes repository.ContraparteRepository,
	monedas MonedaService,
	recordatorios RecordatorioQueue,
	events broker.Publisher,
	metrics *infra.Metrics,
	cfg CuentaConfig,
) CuentaService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sobrepago == "" {
		cfg.Sobrepago = ledger.OverpaymentReject
	}
	if cfg.Antiguedad == (ledger.AgingPolicy{}) {
		cfg.Antiguedad = ledger.DefaultAgingPolicy()
	}
	if events == nil {
		events = broker.Nop{}
	}
	return &cuentaService{
		repo:          repo,
		contrapartes:  contrapartes,
		monedas:       monedas,
		recordatorios: recordatorios,
		events:        events,
		metrics:       metrics,
		cfg:           cfg,
		locks:         newKeyedMutex(),
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *cuentaService) Crear(ctx context.Context, empresaID uuid.UUID, req dto.CrearCuentaRequest) (_ *dto.CuentaResponse, err error) {
	ctx, span := tracer.Start(ctx, "CuentaService.Crear")
	start := time.Now()
	defer func() {
		s.metrics.RecordOperacion("crear_cuenta", start, err)
		endSpan(span, err)
	}()

	contraparteID, err := uuid.Parse(req.ContraparteID)
	if err != nil {
		return nil, fmt.Errorf("%w: contraparte_id", ErrIDInvalido)
	}
	monedaID, err := uuid.Parse(req.MonedaID)
	if err != nil {
		return nil, fmt.Errorf("%w: moneda_id", ErrIDInvalido)
	}
	if req.Total.IsNegative() {
		return nil, fmt.Errorf("%w: total %s", ledger.ErrInvalidAmount, req.Total)
	}

	monedas, err := s.monedas.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	moneda, ok := ledger.LookupID(monedas, monedaID)
	if !ok {
		return nil, fmt.Errorf("moneda %w", ErrNotFound)
	}
	if !moneda.Activo {
		return nil, fmt.Errorf("%w: %s", ErrInactiveCurrency, moneda.Codigo)
	}

	contraparte, err := s.contrapartes.FindByID(ctx, empresaID, contraparteID)
	if err != nil {
		return nil, notFound(err, "contraparte")
	}
	if !contraparte.Activo || contraparte.Tipo != contraparteEsperada(req.Tipo) {
		return nil, ErrContraparteInvalida
	}

	now := s.cfg.Now()
	emitida := now
	if req.EmitidaAt != nil {
		emitida = *req.EmitidaAt
	}
	if req.VenceAt != nil && req.VenceAt.Before(emitida) {
		return nil, ErrFechasInvalidas
	}

	total := ledger.Round2(req.Total)
	c := &model.Cuenta{
		ID:            uuid.New(),
		EmpresaID:     empresaID,
		Tipo:          req.Tipo,
		ContraparteID: contraparteID,
		MonedaID:      monedaID,
		Total:         total,
		Saldo:         total,
		EmitidaAt:     emitida,
		VenceAt:       req.VenceAt,
		Comentario:    req.Comentario,
	}
	if req.TransaccionOrigenID != nil {
		origen, err := uuid.Parse(*req.TransaccionOrigenID)
		if err != nil {
			return nil, fmt.Errorf("%w: transaccion_origen_id", ErrIDInvalido)
		}
		c.TransaccionOrigenID = &origen
	}
	c.Estado = ledger.Status(c, now)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("cuenta_id", c.ID.String()))

	log.Info().
		Str("empresa_id", empresaID.String()).
		Str("cuenta_id", c.ID.String()).
		Str("tipo", c.Tipo).
		Str("total", total.StringFixed(2)).
		Str("moneda", moneda.Codigo).
		Msg("cuenta creada")
	s.publish(ctx, broker.EventoCuentaCreada, c, nil, now)

	resp := toCuentaResponse(c, monedas, s.cfg.Antiguedad, now)
	return &resp, nil
}

func contraparteEsperada(tipoCuenta string) string {
	if tipoCuenta == model.CuentaPorPagar {
		return model.ContraparteProveedor
	}
	return model.ContraparteCliente
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cuentaService) ObtenerPorID(ctx context.Context, empresaID, id uuid.UUID) (*dto.CuentaResponse, error) {
	c, err := s.repo.FindByID(ctx, empresaID, id)
	if err != nil {
		return nil, notFound(err, "cuenta")
	}
	monedas, err := s.monedas.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	resp := toCuentaResponse(c, monedas, s.cfg.Antiguedad, s.cfg.Now())
	return &resp, nil
}

func (s *cuentaService) Listar(ctx context.Context, empresaID uuid.UUID, filter dto.CuentaFilter) (*dto.CuentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	cuentas, total, err := s.repo.List(ctx, empresaID, filter)
	if err != nil {
		return nil, err
	}
	monedas, err := s.monedas.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	out := &dto.CuentaListResponse{
		Data:  make([]dto.CuentaResponse, 0, len(cuentas)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range cuentas {
		out.Data = append(out.Data, toCuentaResponse(&cuentas[i], monedas, s.cfg.Antiguedad, now))
	}
	return out, nil
}

// ── AplicarAbono ──────────────────────────────────────────────────────────────
// One transaction per payment:
//   1. lock the account (keyed mutex + SELECT ... FOR UPDATE)
//   2. apply the payment on the locked snapshot
//   3. insert the abono and persist saldo/estado
// Events and metrics run after commit.

func (s *cuentaService) AplicarAbono(ctx context.Context, empresaID, cuentaID uuid.UUID, req dto.AplicarAbonoRequest) (_ *dto.AplicarAbonoResponse, err error) {
	ctx, span := tracer.Start(ctx, "CuentaService.AplicarAbono",
		trace.WithAttributes(attribute.String("cuenta_id", cuentaID.String())))
	start := time.Now()
	defer func() {
		s.metrics.RecordOperacion("aplicar_abono", start, err)
		endSpan(span, err)
	}()

	monedaID, err := uuid.Parse(req.MonedaID)
	if err != nil {
		return nil, fmt.Errorf("%w: moneda_id", ErrIDInvalido)
	}
	monedas, err := s.monedas.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	// payments only in the tenant's own registry
	moneda, ok := ledger.LookupID(monedas, monedaID)
	if !ok {
		return nil, fmt.Errorf("moneda %w", ErrNotFound)
	}
	if !moneda.Activo {
		return nil, fmt.Errorf("%w: %s", ErrInactiveCurrency, moneda.Codigo)
	}

	unlock := s.locks.Lock(cuentaID)
	defer unlock()

	now := s.cfg.Now()
	var result ledger.PaymentResult
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cuenta, err := s.repo.FindForUpdate(ctx, tx, empresaID, cuentaID)
		if err != nil {
			return notFound(err, "cuenta")
		}
		result, err = ledger.ApplyPayment(*cuenta, monedas, ledger.PaymentRequest{
			Monto:      req.Monto,
			MonedaID:   monedaID,
			Tasa:       req.Tasa,
			MetodoPago: req.MetodoPago,
			Referencia: req.Referencia,
			FechaPago:  req.FechaPago,
		}, s.cfg.Sobrepago, now)
		if err != nil {
			return err
		}
		if err := s.repo.CreateAbono(ctx, tx, &result.Abono); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, &result.Cuenta)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordConversion(string(result.Conversion.Outcome))
	l := log.With().
		Str("empresa_id", empresaID.String()).
		Str("cuenta_id", cuentaID.String()).
		Str("abono_id", result.Abono.ID.String()).
		Logger()
	resp := &dto.AplicarAbonoResponse{
		Cuenta: toCuentaResponse(&result.Cuenta, monedas, s.cfg.Antiguedad, now),
		Abono:  toAbonoResponse(&result.Abono),
	}
	switch {
	case result.Conversion.PassedThrough():
		aviso := result.Conversion.Cause.Error() + "; el abono se aplicó sin convertir"
		resp.Aviso = &aviso
		l.Warn().Err(result.Conversion.Cause).Msg("abono aplicado sin conversión")
	case result.Abono.Excedente.GreaterThan(ledger.Tolerance):
		aviso := fmt.Sprintf("excedente de %s no aplicado", result.Abono.Excedente.StringFixed(2))
		resp.Aviso = &aviso
	}
	l.Info().
		Str("aplicado", result.Abono.MontoEnMonedaCuenta.StringFixed(2)).
		Str("saldo", result.Cuenta.Saldo.StringFixed(2)).
		Str("conversion", result.Abono.Conversion).
		Msg("abono aplicado")
	s.publish(ctx, broker.EventoAbonoAplicado, &result.Cuenta, &result.Abono, now)

	return resp, nil
}

// ── RevertirAbono ─────────────────────────────────────────────────────────────

func (s *cuentaService) RevertirAbono(ctx context.Context, empresaID, cuentaID, abonoID uuid.UUID) (_ *dto.CuentaResponse, err error) {
	ctx, span := tracer.Start(ctx, "CuentaService.RevertirAbono",
		trace.WithAttributes(attribute.String("cuenta_id", cuentaID.String()), attribute.String("abono_id", abonoID.String())))
	start := time.Now()
	defer func() {
		s.metrics.RecordOperacion("revertir_abono", start, err)
		endSpan(span, err)
	}()

	unlock := s.locks.Lock(cuentaID)
	defer unlock()

	now := s.cfg.Now()
	var cuenta model.Cuenta
	var abono model.Abono
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.FindForUpdate(ctx, tx, empresaID, cuentaID)
		if err != nil {
			return notFound(err, "cuenta")
		}
		cuenta, abono, err = ledger.ReversePayment(*locked, abonoID, now)
		if err != nil {
			return err
		}
		n, err := s.repo.DeleteAbono(ctx, tx, empresaID, cuentaID, abonoID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ledger.ErrPaymentNotFound
		}
		return s.repo.Update(ctx, tx, &cuenta)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("empresa_id", empresaID.String()).
		Str("cuenta_id", cuentaID.String()).
		Str("abono_id", abonoID.String()).
		Str("restituido", abono.MontoEnMonedaCuenta.StringFixed(2)).
		Str("saldo", cuenta.Saldo.StringFixed(2)).
		Msg("abono revertido")
	s.publish(ctx, broker.EventoAbonoRevertido, &cuenta, &abono, now)

	monedas, err := s.monedas.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	resp := toCuentaResponse(&cuenta, monedas, s.cfg.Antiguedad, now)
	return &resp, nil
}

// ── Anular ────────────────────────────────────────────────────────────────────

func (s *cuentaService) Anular(ctx context.Context, empresaID, cuentaID uuid.UUID, motivo string) (_ *dto.CuentaResponse, err error) {
	ctx, span := tracer.Start(ctx, "CuentaService.Anular",
		trace.WithAttributes(attribute.String("cuenta_id", cuentaID.String())))
	start := time.Now()
	defer func() {
		s.metrics.RecordOperacion("anular_cuenta", start, err)
		endSpan(span, err)
	}()

	unlock := s.locks.Lock(cuentaID)
	defer unlock()

	now := s.cfg.Now()
	var cuenta model.Cuenta
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.FindForUpdate(ctx, tx, empresaID, cuentaID)
		if err != nil {
			return notFound(err, "cuenta")
		}
		cuenta, err = ledger.Void(*locked, strings.TrimSpace(motivo), now)
		if err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, &cuenta)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("empresa_id", empresaID.String()).Str("cuenta_id", cuentaID.String()).
		Str("motivo", motivo).Msg("cuenta anulada")
	s.publish(ctx, broker.EventoCuentaAnulada, &cuenta, nil, now)

	monedas, err := s.monedas.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	resp := toCuentaResponse(&cuenta, monedas, s.cfg.Antiguedad, now)
	return &resp, nil
}

// ── Antiguedad ────────────────────────────────────────────────────────────────

func (s *cuentaService) Antiguedad(ctx context.Context, empresaID uuid.UUID, tipo string) (*dto.AntiguedadResponse, error) {
	ctx, span := tracer.Start(ctx, "CuentaService.Antiguedad")
	defer span.End()

	cuentas, err := s.repo.ListVigentes(ctx, empresaID, tipo, true)
	if err != nil {
		return nil, err
	}
	monedas, err := s.monedas.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}

	now := s.cfg.Now()
	resp := &dto.AntiguedadResponse{
		Fecha:   now,
		Cuentas: make([]dto.CuentaResponse, 0, len(cuentas)),
		Totales: make([]dto.AntiguedadMoneda, 0),
	}
	porMoneda := make(map[uuid.UUID]int)
	for i := range cuentas {
		c := &cuentas[i]
		item := toCuentaResponse(c, monedas, s.cfg.Antiguedad, now)
		resp.Cuentas = append(resp.Cuentas, item)

		pos, ok := porMoneda[c.MonedaID]
		if !ok {
			pos = len(resp.Totales)
			porMoneda[c.MonedaID] = pos
			resp.Totales = append(resp.Totales, nuevaAntiguedadMoneda(c.MonedaID, item.MonedaCodigo))
		}
		for b := range resp.Totales[pos].Bandas {
			banda := &resp.Totales[pos].Bandas[b]
			if banda.Banda == item.Banda {
				banda.Cantidad++
				banda.Saldo = banda.Saldo.Add(item.Saldo)
			}
		}
	}

	// most overdue first
	sort.SliceStable(resp.Cuentas, func(i, j int) bool {
		return resp.Cuentas[i].DiasVencida > resp.Cuentas[j].DiasVencida
	})
	sort.Slice(resp.Totales, func(i, j int) bool {
		return resp.Totales[i].MonedaCodigo < resp.Totales[j].MonedaCodigo
	})
	return resp, nil
}

func nuevaAntiguedadMoneda(monedaID uuid.UUID, codigo string) dto.AntiguedadMoneda {
	out := dto.AntiguedadMoneda{
		MonedaID:     monedaID.String(),
		MonedaCodigo: codigo,
		Bandas:       make([]dto.AntiguedadBanda, 0, len(ledger.Bandas)),
	}
	for _, b := range ledger.Bandas {
		out.Bandas = append(out.Bandas, dto.AntiguedadBanda{Banda: b, Saldo: decimal.Zero})
	}
	return out
}

// ── ResumenPorContraparte ─────────────────────────────────────────────────────

func (s *cuentaService) ResumenPorContraparte(ctx context.Context, empresaID uuid.UUID, tipo, monedaRef string) (*dto.ResumenResponse, error) {
	ctx, span := tracer.Start(ctx, "CuentaService.ResumenPorContraparte")
	defer span.End()

	monedas, err := s.monedas.Registro(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	var destino model.Moneda
	if monedaRef == "" {
		if destino, err = ledger.BaseCurrency(monedas); err != nil {
			return nil, err
		}
	} else {
		var ok bool
		if destino, ok = ledger.Lookup(monedas, monedaRef); !ok {
			return nil, fmt.Errorf("%w: %s", ledger.ErrUnresolvedCurrency, monedaRef)
		}
	}

	cuentas, err := s.repo.ListVigentes(ctx, empresaID, tipo, false)
	if err != nil {
		return nil, err
	}

	resp := &dto.ResumenResponse{
		Tipo:         tipo,
		MonedaID:     destino.ID.String(),
		MonedaCodigo: destino.Codigo,
		Items:        make([]dto.ResumenContraparteItem, 0),
	}
	convertidas := make([]model.Cuenta, 0, len(cuentas))
	for i := range cuentas {
		c := cuentas[i]
		saldo, err := ledger.Convert(ledger.ClampedSaldo(&c), c.MonedaID.String(), destino.ID.String(), monedas)
		if err != nil {
			return nil, err
		}
		total, err := ledger.Convert(c.Total, c.MonedaID.String(), destino.ID.String(), monedas)
		if err != nil {
			return nil, err
		}
		if saldo.PassedThrough() || total.PassedThrough() {
			resp.SinConvertir++
			continue
		}
		c.MonedaID = destino.ID
		c.Saldo = saldo.Amount
		c.Total = total.Amount
		convertidas = append(convertidas, c)
	}

	filas, err := ledger.SummarizeByCounterparty(convertidas)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(filas))
	for _, f := range filas {
		ids = append(ids, f.ContraparteID)
	}
	contrapartes, err := s.contrapartes.FindByIDs(ctx, empresaID, ids)
	if err != nil {
		return nil, err
	}
	nombres := make(map[uuid.UUID]string, len(contrapartes))
	for _, c := range contrapartes {
		nombres[c.ID] = c.Nombre
	}

	for _, f := range filas {
		resp.Items = append(resp.Items, dto.ResumenContraparteItem{
			ContraparteID: f.ContraparteID.String(),
			Nombre:        nombres[f.ContraparteID],
			Cantidad:      f.Cantidad,
			SaldoTotal:    f.SaldoTotal,
			TotalOriginal: f.TotalOriginal,
		})
	}
	if resp.SinConvertir > 0 {
		log.Warn().Str("empresa_id", empresaID.String()).Int("cuentas", resp.SinConvertir).
			Msg("resumen: cuentas excluidas por moneda sin resolver")
	}
	return resp, nil
}

// ── MarcarVencidas ────────────────────────────────────────────────────────────

func (s *cuentaService) MarcarVencidas(ctx context.Context, empresaID uuid.UUID, limit int) (int, error) {
	ctx, span := tracer.Start(ctx, "CuentaService.MarcarVencidas",
		trace.WithAttributes(attribute.String("empresa_id", empresaID.String())))
	defer span.End()

	now := s.cfg.Now()
	hoy := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cuentas, err := s.repo.ListPorVencer(ctx, empresaID, hoy, limit)
	if err != nil {
		return 0, err
	}

	var monedas []model.Moneda
	marcadas := 0
	for i := range cuentas {
		c := &cuentas[i]
		if ledger.Status(c, now) != model.EstadoVencida {
			continue
		}
		ok, err := s.repo.MarcarVencida(ctx, empresaID, c.ID, now)
		if err != nil {
			return marcadas, err
		}
		if !ok {
			// paid or voided since it was listed
			continue
		}
		s.enviarRecordatorio(ctx, c, &monedas, now)
		c.Estado = model.EstadoVencida
		marcadas++
		s.publish(ctx, broker.EventoCuentaVencida, c, nil, now)
	}
	s.metrics.RecordVencidas(marcadas)
	return marcadas, nil
}

// enviarRecordatorio queues the overdue reminder when the counterparty has an
// e-mail. monedas is loaded lazily and shared across the batch. A queue
// failure is logged; the account is still marked so reminders never repeat.
func (s *cuentaService) enviarRecordatorio(ctx context.Context, c *model.Cuenta, monedas *[]model.Moneda, now time.Time) {
	if s.recordatorios == nil || c.Contraparte == nil || c.Contraparte.Email == nil || *c.Contraparte.Email == "" {
		return
	}
	codigo := ""
	if c.Moneda != nil {
		codigo = c.Moneda.Codigo
	} else {
		if *monedas == nil {
			m, err := s.monedas.Registro(ctx, c.EmpresaID)
			if err != nil {
				log.Warn().Err(err).Msg("recordatorio: registro de monedas no disponible")
			}
			*monedas = m
		}
		if m, ok := ledger.LookupID(*monedas, c.MonedaID); ok {
			codigo = m.Codigo
		}
	}

	payload := worker.RecordatorioPayload{
		EmpresaID:   c.EmpresaID.String(),
		CuentaID:    c.ID.String(),
		Tipo:        c.Tipo,
		Contraparte: c.Contraparte.Nombre,
		Email:       *c.Contraparte.Email,
		Saldo:       ledger.ClampedSaldo(c).StringFixed(2),
		Moneda:      codigo,
		VenceAt:     *c.VenceAt,
		DiasVencida: ledger.DaysOverdue(c, now),
	}
	if err := s.recordatorios.EnqueueRecordatorio(ctx, payload); err != nil {
		log.Warn().Err(err).Str("cuenta_id", c.ID.String()).Msg("recordatorio: no se pudo encolar")
	}
}

func (s *cuentaService) publish(ctx context.Context, tipo string, c *model.Cuenta, a *model.Abono, now time.Time) {
	evt := broker.Evento{
		Tipo:      tipo,
		EmpresaID: c.EmpresaID.String(),
		CuentaID:  c.ID.String(),
		Saldo:     ledger.ClampedSaldo(c).StringFixed(2),
		Estado:    ledger.Status(c, now),
		At:        now,
	}
	if a != nil {
		evt.AbonoID = a.ID.String()
		evt.Monto = a.MontoEnMonedaCuenta.StringFixed(2)
	}
	s.events.Publish(ctx, evt)
}
