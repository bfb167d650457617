package repository

import (
	"context"
	"errors"

	"kairo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Unique indexes on monedas, see migrations/00001_ledger.sql.
var (
	ErrCodigoDuplicado = errors.New("codigo de moneda duplicado")
	ErrBaseDuplicada   = errors.New("la empresa ya tiene moneda base")
)

var monedaUniqueIndexes = map[string]error{
	"uni_monedas_empresa_codigo": ErrCodigoDuplicado,
	"uni_monedas_empresa_base":   ErrBaseDuplicada,
}

// uniqueViolation maps a Postgres unique_violation (23505) on a known index
// to its sentinel; other errors are returned unchanged.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if sentinel, ok := monedaUniqueIndexes[pgErr.ConstraintName]; ok {
			return sentinel
		}
	}
	return err
}

type MonedaRepository interface {
	Create(ctx context.Context, m *model.Moneda) error
	FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Moneda, error)
	FindByCodigo(ctx context.Context, empresaID uuid.UUID, codigo string) (*model.Moneda, error)
	// List returns the whole registry, inactive currencies included, so that
	// historical accounts keep resolving.
	List(ctx context.Context, empresaID uuid.UUID) ([]model.Moneda, error)
	Update(ctx context.Context, m *model.Moneda) error
	// ListEmpresas returns every tenant with an initialised registry.
	ListEmpresas(ctx context.Context) ([]uuid.UUID, error)
}

type monedaRepo struct{ db *gorm.DB }

func NewMonedaRepository(db *gorm.DB) MonedaRepository { return &monedaRepo{db: db} }

func (r *monedaRepo) Create(ctx context.Context, m *model.Moneda) error {
	return uniqueViolation(r.db.WithContext(ctx).Create(m).Error)
}

func (r *monedaRepo) FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Moneda, error) {
	var m model.Moneda
	err := r.db.WithContext(ctx).Where("id = ? AND empresa_id = ?", id, empresaID).First(&m).Error
	return &m, err
}

func (r *monedaRepo) FindByCodigo(ctx context.Context, empresaID uuid.UUID, codigo string) (*model.Moneda, error) {
	var m model.Moneda
	err := r.db.WithContext(ctx).Where("empresa_id = ? AND UPPER(codigo) = UPPER(?)", empresaID, codigo).First(&m).Error
	return &m, err
}

func (r *monedaRepo) List(ctx context.Context, empresaID uuid.UUID) ([]model.Moneda, error) {
	var monedas []model.Moneda
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).Order("es_base DESC, codigo ASC").Find(&monedas).Error
	return monedas, err
}

func (r *monedaRepo) Update(ctx context.Context, m *model.Moneda) error {
	return uniqueViolation(r.db.WithContext(ctx).Save(m).Error)
}

func (r *monedaRepo) ListEmpresas(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Moneda{}).Where("es_base = true").Distinct().Pluck("empresa_id", &ids).Error
	return ids, err
}
