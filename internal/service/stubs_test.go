package service_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kairo/internal/broker"
	"kairo/internal/dto"
	"kairo/internal/model"
	"kairo/internal/repository"
	"kairo/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	_ repository.MonedaRepository      = (*memMonedaRepo)(nil)
	_ repository.ContraparteRepository = (*memContraparteRepo)(nil)
	_ repository.CuentaRepository      = (*memCuentaRepo)(nil)
)

var (
	empresaID = uuid.MustParse("7b0c7f4e-3c1a-4c55-9d2e-0f6a9b1e2d11")
	fixedNow  = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func clock() time.Time { return fixedNow }

// ── In-memory MonedaRepository ───────────────────────────────────────────────

type memMonedaRepo struct {
	mu        sync.Mutex
	monedas   map[uuid.UUID]model.Moneda
	lists     int
	createErr error
}

func newMemMonedaRepo() *memMonedaRepo {
	return &memMonedaRepo{monedas: make(map[uuid.UUID]model.Moneda)}
}

func (r *memMonedaRepo) Create(_ context.Context, m *model.Moneda) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.monedas[m.ID] = *m
	return nil
}

func (r *memMonedaRepo) FindByID(_ context.Context, empresa, id uuid.UUID) (*model.Moneda, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.monedas[id]
	if !ok || m.EmpresaID != empresa {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *memMonedaRepo) FindByCodigo(_ context.Context, empresa uuid.UUID, codigo string) (*model.Moneda, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.monedas {
		if m.EmpresaID == empresa && strings.EqualFold(m.Codigo, codigo) {
			m := m
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memMonedaRepo) List(_ context.Context, empresa uuid.UUID) ([]model.Moneda, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	out := make([]model.Moneda, 0)
	for _, m := range r.monedas {
		if m.EmpresaID == empresa {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Codigo < out[j].Codigo })
	return out, nil
}

func (r *memMonedaRepo) Update(_ context.Context, m *model.Moneda) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monedas[m.ID] = *m
	return nil
}

func (r *memMonedaRepo) ListEmpresas(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, m := range r.monedas {
		if m.EsBase && !seen[m.EmpresaID] {
			seen[m.EmpresaID] = true
			out = append(out, m.EmpresaID)
		}
	}
	return out, nil
}

// seed stores a currency directly and returns it.
func (r *memMonedaRepo) seed(codigo string, tasa string, base bool) model.Moneda {
	m := model.Moneda{
		ID:         uuid.New(),
		EmpresaID:  empresaID,
		Codigo:     codigo,
		Nombre:     codigo,
		Simbolo:    "$",
		Decimales:  2,
		Activo:     true,
		EsBase:     base,
		TasaVsBase: dec(tasa),
	}
	_ = r.Create(context.Background(), &m)
	return m
}

// ── In-memory ContraparteRepository ──────────────────────────────────────────

type memContraparteRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Contraparte
}

func newMemContraparteRepo() *memContraparteRepo {
	return &memContraparteRepo{items: make(map[uuid.UUID]model.Contraparte)}
}

func (r *memContraparteRepo) Create(_ context.Context, c *model.Contraparte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.items[c.ID] = *c
	return nil
}

func (r *memContraparteRepo) FindByID(_ context.Context, empresa, id uuid.UUID) (*model.Contraparte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.EmpresaID != empresa {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *memContraparteRepo) FindByIDs(_ context.Context, empresa uuid.UUID, ids []uuid.UUID) ([]model.Contraparte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Contraparte
	for _, id := range ids {
		if c, ok := r.items[id]; ok && c.EmpresaID == empresa {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memContraparteRepo) List(_ context.Context, empresa uuid.UUID, tipo string, page, limit int) ([]model.Contraparte, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []model.Contraparte
	for _, c := range r.items {
		if c.EmpresaID == empresa && c.Activo && (tipo == "" || c.Tipo == tipo) {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Nombre < all[j].Nombre })
	total := int64(len(all))
	from := (page - 1) * limit
	if from >= len(all) {
		return []model.Contraparte{}, total, nil
	}
	to := from + limit
	if to > len(all) {
		to = len(all)
	}
	return all[from:to], total, nil
}

func (r *memContraparteRepo) SoftDelete(_ context.Context, empresa, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.EmpresaID != empresa {
		return gorm.ErrRecordNotFound
	}
	c.Activo = false
	r.items[id] = c
	return nil
}

func (r *memContraparteRepo) seed(tipo, nombre string, email *string) model.Contraparte {
	c := model.Contraparte{EmpresaID: empresaID, Tipo: tipo, Nombre: nombre, Email: email, Activo: true}
	_ = r.Create(context.Background(), &c)
	return c
}

// ── In-memory CuentaRepository ───────────────────────────────────────────────

type memCuentaRepo struct {
	mu           sync.Mutex
	cuentas      map[uuid.UUID]model.Cuenta
	abonos       []model.Abono
	contrapartes *memContraparteRepo
}

func newMemCuentaRepo(contrapartes *memContraparteRepo) *memCuentaRepo {
	return &memCuentaRepo{
		cuentas:      make(map[uuid.UUID]model.Cuenta),
		contrapartes: contrapartes,
	}
}

func (r *memCuentaRepo) DB() *gorm.DB { return nil }

func (r *memCuentaRepo) Create(_ context.Context, c *model.Cuenta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stored := *c
	stored.Abonos = nil
	r.cuentas[c.ID] = stored
	return nil
}

func (r *memCuentaRepo) load(empresa, id uuid.UUID) (*model.Cuenta, error) {
	c, ok := r.cuentas[id]
	if !ok || c.EmpresaID != empresa {
		return nil, gorm.ErrRecordNotFound
	}
	c.Abonos = nil
	for _, a := range r.abonos {
		if a.CuentaID == id {
			c.Abonos = append(c.Abonos, a)
		}
	}
	return &c, nil
}

func (r *memCuentaRepo) FindByID(_ context.Context, empresa, id uuid.UUID) (*model.Cuenta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(empresa, id)
}

func (r *memCuentaRepo) FindForUpdate(_ context.Context, _ *gorm.DB, empresa, id uuid.UUID) (*model.Cuenta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(empresa, id)
}

func (r *memCuentaRepo) Update(_ context.Context, _ *gorm.DB, c *model.Cuenta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.cuentas[c.ID]
	stored.Saldo = c.Saldo
	stored.Estado = c.Estado
	stored.AnuladaAt = c.AnuladaAt
	stored.MotivoAnulacion = c.MotivoAnulacion
	r.cuentas[c.ID] = stored
	return nil
}

func (r *memCuentaRepo) List(_ context.Context, empresa uuid.UUID, filter dto.CuentaFilter) ([]model.Cuenta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Cuenta
	for _, c := range r.cuentas {
		if c.EmpresaID == empresa && (filter.Tipo == "" || c.Tipo == filter.Tipo) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memCuentaRepo) ListVigentes(_ context.Context, empresa uuid.UUID, tipo string, soloConSaldo bool) ([]model.Cuenta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Cuenta
	for _, c := range r.cuentas {
		if c.EmpresaID != empresa || c.AnuladaAt != nil || (tipo != "" && c.Tipo != tipo) {
			continue
		}
		if soloConSaldo && !c.Saldo.IsPositive() {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *memCuentaRepo) ListPorVencer(_ context.Context, empresa uuid.UUID, before time.Time, limit int) ([]model.Cuenta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Cuenta
	for _, c := range r.cuentas {
		if c.EmpresaID != empresa || c.AnuladaAt != nil || !c.Saldo.IsPositive() ||
			c.VenceAt == nil || !c.VenceAt.Before(before) || c.RecordatorioEnviadoAt != nil {
			continue
		}
		if cp, err := r.contrapartes.FindByID(context.Background(), empresa, c.ContraparteID); err == nil {
			c.Contraparte = cp
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memCuentaRepo) MarcarVencida(_ context.Context, empresa, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cuentas[id]
	if !ok || c.EmpresaID != empresa || c.AnuladaAt != nil || !c.Saldo.IsPositive() || c.RecordatorioEnviadoAt != nil {
		return false, nil
	}
	c.Estado = model.EstadoVencida
	c.RecordatorioEnviadoAt = &at
	r.cuentas[id] = c
	return true, nil
}

func (r *memCuentaRepo) CreateAbono(_ context.Context, _ *gorm.DB, a *model.Abono) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abonos = append(r.abonos, *a)
	return nil
}

func (r *memCuentaRepo) DeleteAbono(_ context.Context, _ *gorm.DB, empresa, cuentaID, abonoID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.abonos {
		if a.ID == abonoID && a.CuentaID == cuentaID && a.EmpresaID == empresa {
			r.abonos = append(r.abonos[:i], r.abonos[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memCuentaRepo) stored(id uuid.UUID) model.Cuenta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cuentas[id]
}

// ── Side-effect recorders ────────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []broker.Evento
}

func (p *recordingPublisher) Publish(_ context.Context, evt broker.Evento) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) tipos() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Tipo)
	}
	return out
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []worker.RecordatorioPayload
}

func (q *fakeQueue) EnqueueRecordatorio(_ context.Context, p worker.RecordatorioPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, p)
	return nil
}
