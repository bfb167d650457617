package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipo de cuenta.
const (
	CuentaPorCobrar = "por_cobrar"
	CuentaPorPagar  = "por_pagar"
)

// Estado de cuenta. Only EstadoAnulada is authoritative in storage; the rest
// are derived from Saldo and VenceAt and persisted as a query snapshot.
const (
	EstadoAbierta     = "abierta"
	EstadoPagoParcial = "pago_parcial"
	EstadoSaldada     = "saldada"
	EstadoAnulada     = "anulada"
	EstadoVencida     = "vencida"
)

// Cuenta is a receivable (por_cobrar) or payable (por_pagar) owed in a single
// currency by or to a counterparty.
type Cuenta struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo                string          `gorm:"type:varchar(12);not null"`
	ContraparteID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	MonedaID            uuid.UUID       `gorm:"type:uuid;not null"`
	Total               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Saldo               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Estado              string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	EmitidaAt           time.Time       `gorm:"not null"`
	VenceAt             *time.Time
	TransaccionOrigenID *uuid.UUID `gorm:"type:uuid"`
	Comentario          *string
	AnuladaAt           *time.Time
	MotivoAnulacion     *string
	// RecordatorioEnviadoAt is stamped by the aging pass when the account turns
	// overdue, whether or not a reminder could be queued.
	RecordatorioEnviadoAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Moneda      *Moneda      `gorm:"foreignKey:MonedaID"`
	Contraparte *Contraparte `gorm:"foreignKey:ContraparteID"`
	Abonos      []Abono      `gorm:"foreignKey:CuentaID"`
}

func (Cuenta) TableName() string { return "cuentas" }

// Anulada reports whether the account was explicitly voided.
func (c *Cuenta) Anulada() bool { return c.AnuladaAt != nil }
