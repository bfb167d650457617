package repository

import (
	"context"
	"time"

	"kairo/internal/dto"
	"kairo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CuentaRepository interface {
	Create(ctx context.Context, c *model.Cuenta) error
	FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Cuenta, error)
	// FindForUpdate loads the account and its abonos, holding a row lock on
	// the account until tx ends.
	FindForUpdate(ctx context.Context, tx *gorm.DB, empresaID, id uuid.UUID) (*model.Cuenta, error)
	Update(ctx context.Context, tx *gorm.DB, c *model.Cuenta) error
	List(ctx context.Context, empresaID uuid.UUID, filter dto.CuentaFilter) ([]model.Cuenta, int64, error)
	// ListVigentes returns the tenant's non-void accounts, optionally only
	// those with saldo > 0. An empty tipo matches both directions.
	ListVigentes(ctx context.Context, empresaID uuid.UUID, tipo string, soloConSaldo bool) ([]model.Cuenta, error)
	// ListPorVencer returns open accounts due before the given instant that
	// the aging pass has not processed yet, with their counterparty loaded.
	ListPorVencer(ctx context.Context, empresaID uuid.UUID, before time.Time, limit int) ([]model.Cuenta, error)
	// MarcarVencida stores estado=vencida and stamps recordatorio_enviado_at.
	// It reports false when the account no longer qualifies.
	MarcarVencida(ctx context.Context, empresaID, id uuid.UUID, at time.Time) (bool, error)
	CreateAbono(ctx context.Context, tx *gorm.DB, a *model.Abono) error
	// DeleteAbono returns the number of rows removed (0 when already reversed).
	DeleteAbono(ctx context.Context, tx *gorm.DB, empresaID, cuentaID, abonoID uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type cuentaRepo struct{ db *gorm.DB }

func NewCuentaRepository(db *gorm.DB) CuentaRepository { return &cuentaRepo{db: db} }

func (r *cuentaRepo) DB() *gorm.DB { return r.db }

func (r *cuentaRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *cuentaRepo) Create(ctx context.Context, c *model.Cuenta) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *cuentaRepo) FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Cuenta, error) {
	var c model.Cuenta
	err := r.db.WithContext(ctx).
		Preload("Moneda").
		Preload("Abonos", func(db *gorm.DB) *gorm.DB { return db.Order("fecha_pago ASC, created_at ASC") }).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		First(&c).Error
	return &c, err
}

func (r *cuentaRepo) FindForUpdate(ctx context.Context, tx *gorm.DB, empresaID, id uuid.UUID) (*model.Cuenta, error) {
	db := r.conn(tx).WithContext(ctx)
	var c model.Cuenta
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	err = db.Where("cuenta_id = ?", c.ID).Order("fecha_pago ASC, created_at ASC").Find(&c.Abonos).Error
	return &c, err
}

func (r *cuentaRepo) Update(ctx context.Context, tx *gorm.DB, c *model.Cuenta) error {
	return r.conn(tx).WithContext(ctx).Model(&model.Cuenta{}).
		Where("id = ? AND empresa_id = ?", c.ID, c.EmpresaID).
		Updates(map[string]interface{}{
			"saldo":            c.Saldo,
			"estado":           c.Estado,
			"anulada_at":       c.AnuladaAt,
			"motivo_anulacion": c.MotivoAnulacion,
			"updated_at":       time.Now(),
		}).Error
}

func (r *cuentaRepo) List(ctx context.Context, empresaID uuid.UUID, filter dto.CuentaFilter) ([]model.Cuenta, int64, error) {
	var cuentas []model.Cuenta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Cuenta{}).Where("empresa_id = ?", empresaID)
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ContraparteID != "" {
		q = q.Where("contraparte_id = ?", filter.ContraparteID)
	}
	if filter.MonedaID != "" {
		q = q.Where("moneda_id = ?", filter.MonedaID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Moneda").
		Order("emitida_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&cuentas).Error
	return cuentas, total, err
}

func (r *cuentaRepo) ListVigentes(ctx context.Context, empresaID uuid.UUID, tipo string, soloConSaldo bool) ([]model.Cuenta, error) {
	var cuentas []model.Cuenta
	q := r.db.WithContext(ctx).Where("empresa_id = ? AND anulada_at IS NULL", empresaID)
	if soloConSaldo {
		q = q.Where("saldo > 0")
	}
	if tipo != "" {
		q = q.Where("tipo = ?", tipo)
	}
	err := q.Preload("Moneda").Order("vence_at ASC NULLS LAST").Find(&cuentas).Error
	return cuentas, err
}

func (r *cuentaRepo) ListPorVencer(ctx context.Context, empresaID uuid.UUID, before time.Time, limit int) ([]model.Cuenta, error) {
	var cuentas []model.Cuenta
	err := r.db.WithContext(ctx).
		Preload("Contraparte").
		Preload("Moneda").
		Where("empresa_id = ? AND anulada_at IS NULL AND saldo > 0 AND vence_at < ? AND recordatorio_enviado_at IS NULL",
			empresaID, before).
		Order("vence_at ASC").
		Limit(limit).
		Find(&cuentas).Error
	return cuentas, err
}

func (r *cuentaRepo) MarcarVencida(ctx context.Context, empresaID, id uuid.UUID, at time.Time) (bool, error) {
	// re-checks the listing predicate so a payment or void committed since
	// ListPorVencer is never overwritten
	res := r.db.WithContext(ctx).Model(&model.Cuenta{}).
		Where("id = ? AND empresa_id = ? AND anulada_at IS NULL AND saldo > 0 AND recordatorio_enviado_at IS NULL", id, empresaID).
		Updates(map[string]interface{}{
			"estado":                  model.EstadoVencida,
			"recordatorio_enviado_at": at,
			"updated_at":              time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

func (r *cuentaRepo) CreateAbono(ctx context.Context, tx *gorm.DB, a *model.Abono) error {
	return r.conn(tx).WithContext(ctx).Create(a).Error
}

func (r *cuentaRepo) DeleteAbono(ctx context.Context, tx *gorm.DB, empresaID, cuentaID, abonoID uuid.UUID) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Where("id = ? AND cuenta_id = ? AND empresa_id = ?", abonoID, cuentaID, empresaID).
		Delete(&model.Abono{})
	return res.RowsAffected, res.Error
}
