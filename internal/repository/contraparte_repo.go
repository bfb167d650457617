package repository

import (
	"context"

	"kairo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContraparteRepository interface {
	Create(ctx context.Context, c *model.Contraparte) error
	FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Contraparte, error)
	FindByIDs(ctx context.Context, empresaID uuid.UUID, ids []uuid.UUID) ([]model.Contraparte, error)
	List(ctx context.Context, empresaID uuid.UUID, tipo string, page, limit int) ([]model.Contraparte, int64, error)
	SoftDelete(ctx context.Context, empresaID, id uuid.UUID) error
}

type contraparteRepo struct{ db *gorm.DB }

func NewContraparteRepository(db *gorm.DB) ContraparteRepository { return &contraparteRepo{db: db} }

func (r *contraparteRepo) Create(ctx context.Context, c *model.Contraparte) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contraparteRepo) FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Contraparte, error) {
	var c model.Contraparte
	err := r.db.WithContext(ctx).Where("id = ? AND empresa_id = ?", id, empresaID).First(&c).Error
	return &c, err
}

func (r *contraparteRepo) FindByIDs(ctx context.Context, empresaID uuid.UUID, ids []uuid.UUID) ([]model.Contraparte, error) {
	var out []model.Contraparte
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("empresa_id = ? AND id IN ?", empresaID, ids).Find(&out).Error
	return out, err
}

func (r *contraparteRepo) List(ctx context.Context, empresaID uuid.UUID, tipo string, page, limit int) ([]model.Contraparte, int64, error) {
	var out []model.Contraparte
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Contraparte{}).Where("empresa_id = ? AND activo = true", empresaID)
	if tipo != "" {
		q = q.Where("tipo = ?", tipo)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("nombre ASC").Offset((page - 1) * limit).Limit(limit).Find(&out).Error
	return out, total, err
}

func (r *contraparteRepo) SoftDelete(ctx context.Context, empresaID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Contraparte{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		Update("activo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
