package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resultado de la conversión registrada en el abono.
const (
	ConversionIdentidad    = "identidad"
	ConversionConvertido   = "convertido"
	ConversionSinConvertir = "sin_convertir"
)

// Abono is a partial payment applied to a Cuenta. It is an immutable fact:
// MontoEnMonedaCuenta is fixed at application time and never recomputed.
// A reversal deletes the row and restores exactly MontoEnMonedaCuenta.
type Abono struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CuentaID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	MonedaID  uuid.UUID       `gorm:"type:uuid;not null"`
	// MontoEnMonedaCuenta is the amount actually subtracted from Cuenta.Saldo.
	MontoEnMonedaCuenta decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	// Excedente is the converted amount that did not fit in the saldo.
	Excedente    decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	TasaAplicada *decimal.Decimal `gorm:"type:decimal(18,6)"`
	Conversion   string           `gorm:"type:varchar(16);not null"`
	MetodoPago   *string          `gorm:"type:varchar(20)"`
	Referencia   *string
	FechaPago    time.Time `gorm:"not null"`
	CreatedAt    time.Time
}

func (Abono) TableName() string { return "abonos" }
