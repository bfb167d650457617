package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContraparteCliente   = "cliente"
	ContraparteProveedor = "proveedor"
)

// Contraparte is the client or supplier an account is held against.
// Tipo: "cliente" | "proveedor"
type Contraparte struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo           string    `gorm:"type:varchar(12);not null"`
	Nombre         string    `gorm:"not null"`
	Identificacion *string   `gorm:"type:varchar(30)"`
	Email          *string
	Telefono       *string
	Activo         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Contraparte) TableName() string { return "contrapartes" }
