package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Moneda is a currency in a tenant's registry.
// TasaVsBase satisfies: monto_en_esta_moneda * TasaVsBase = monto_en_moneda_base.
// The base currency (EsBase) always carries TasaVsBase = 1.
type Moneda struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EmpresaID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"empresa_id"`
	Codigo            string          `gorm:"type:varchar(10);not null" json:"codigo"`
	Nombre            string          `gorm:"type:varchar(60);not null" json:"nombre"`
	Simbolo           string          `gorm:"type:varchar(8);not null" json:"simbolo"`
	Decimales         int             `gorm:"not null;default:2" json:"decimales"`
	Activo            bool            `gorm:"not null;default:true" json:"activo"`
	EsBase            bool            `gorm:"not null;default:false" json:"es_base"`
	TasaVsBase        decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"tasa_vs_base"`
	TasaActualizadaAt *time.Time      `json:"tasa_actualizada_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (Moneda) TableName() string { return "monedas" }
