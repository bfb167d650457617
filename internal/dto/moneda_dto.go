package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearMonedaRequest struct {
	Codigo    string          `json:"codigo"       validate:"required,min=2,max=10"`
	Nombre    string          `json:"nombre"       validate:"required,min=2,max=60"`
	Simbolo   string          `json:"simbolo"      validate:"required,max=8"`
	Decimales int             `json:"decimales"    validate:"min=0,max=6"`
	EsBase    bool            `json:"es_base"`
	// TasaVsBase is ignored (forced to 1) for the base currency.
	TasaVsBase decimal.Decimal `json:"tasa_vs_base" validate:"min=0"`
}

type ActualizarMonedaRequest struct {
	Nombre     *string          `json:"nombre"    validate:"omitempty,min=2,max=60"`
	Simbolo    *string          `json:"simbolo"   validate:"omitempty,max=8"`
	Decimales  *int             `json:"decimales" validate:"omitempty,min=0,max=6"`
	TasaVsBase *decimal.Decimal `json:"tasa_vs_base"`
	Activo     *bool            `json:"activo"`
}

type ConvertirRequest struct {
	Monto   decimal.Decimal `json:"monto"`
	Desde   string          `json:"desde"   validate:"required"` // id o código
	Hacia   string          `json:"hacia"   validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MonedaResponse struct {
	ID                string          `json:"id"`
	Codigo            string          `json:"codigo"`
	Nombre            string          `json:"nombre"`
	Simbolo           string          `json:"simbolo"`
	Decimales         int             `json:"decimales"`
	Activo            bool            `json:"activo"`
	EsBase            bool            `json:"es_base"`
	TasaVsBase        decimal.Decimal `json:"tasa_vs_base"`
	TasaActualizadaAt *time.Time      `json:"tasa_actualizada_at"`
}

type ConvertirResponse struct {
	Monto     decimal.Decimal `json:"monto"`
	Resultado string          `json:"resultado"` // identidad | convertido | sin_convertir
	Aviso     *string         `json:"aviso,omitempty"`
}
