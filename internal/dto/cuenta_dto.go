package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearCuentaRequest struct {
	Tipo                string          `json:"tipo"                  validate:"required,oneof=por_cobrar por_pagar"`
	ContraparteID       string          `json:"contraparte_id"        validate:"required,uuid"`
	MonedaID            string          `json:"moneda_id"             validate:"required,uuid"`
	Total               decimal.Decimal `json:"total"`
	EmitidaAt           *time.Time      `json:"emitida_at"`
	VenceAt             *time.Time      `json:"vence_at"`
	TransaccionOrigenID *string         `json:"transaccion_origen_id" validate:"omitempty,uuid"`
	Comentario          *string         `json:"comentario"            validate:"omitempty,max=500"`
}

type AplicarAbonoRequest struct {
	Monto    decimal.Decimal `json:"monto"`
	MonedaID string          `json:"moneda_id" validate:"required,uuid"`
	// Tasa converts monto straight into the account currency when present.
	Tasa       *decimal.Decimal `json:"tasa"`
	MetodoPago *string          `json:"metodo_pago" validate:"omitempty,oneof=efectivo debito credito transferencia cheque"`
	Referencia *string          `json:"referencia"  validate:"omitempty,max=120"`
	FechaPago  *time.Time       `json:"fecha_pago"`
}

type AnularCuentaRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=300"`
}

// CuentaFilter is bound from query params.
type CuentaFilter struct {
	Tipo          string `form:"tipo"           validate:"omitempty,oneof=por_cobrar por_pagar"`
	Estado        string `form:"estado"         validate:"omitempty,oneof=abierta pago_parcial saldada anulada vencida"`
	ContraparteID string `form:"contraparte_id" validate:"omitempty,uuid"`
	MonedaID      string `form:"moneda_id"      validate:"omitempty,uuid"`
	Page          int    `form:"page"`
	Limit         int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type AbonoResponse struct {
	ID                  string           `json:"id"`
	CuentaID            string           `json:"cuenta_id"`
	Monto               decimal.Decimal  `json:"monto"`
	MonedaID            string           `json:"moneda_id"`
	MontoEnMonedaCuenta decimal.Decimal  `json:"monto_en_moneda_cuenta"`
	Excedente           decimal.Decimal  `json:"excedente"`
	TasaAplicada        *decimal.Decimal `json:"tasa_aplicada"`
	Conversion          string           `json:"conversion"` // identidad | convertido | sin_convertir
	MetodoPago          *string          `json:"metodo_pago"`
	Referencia          *string          `json:"referencia"`
	FechaPago           time.Time        `json:"fecha_pago"`
}

type CuentaResponse struct {
	ID                  string          `json:"id"`
	Tipo                string          `json:"tipo"`
	ContraparteID       string          `json:"contraparte_id"`
	MonedaID            string          `json:"moneda_id"`
	MonedaCodigo        string          `json:"moneda_codigo,omitempty"`
	Total               decimal.Decimal `json:"total"`
	Saldo               decimal.Decimal `json:"saldo"`
	MontoPagado         decimal.Decimal `json:"monto_pagado"`
	Clasificacion       string          `json:"clasificacion"` // pendiente | parcial | pagado
	Estado              string          `json:"estado"`
	DiasVencida         int             `json:"dias_vencida"`
	Banda               string          `json:"banda"`
	EmitidaAt           time.Time       `json:"emitida_at"`
	VenceAt             *time.Time      `json:"vence_at"`
	TransaccionOrigenID *string         `json:"transaccion_origen_id"`
	Comentario          *string         `json:"comentario"`
	AnuladaAt           *time.Time      `json:"anulada_at,omitempty"`
	MotivoAnulacion     *string         `json:"motivo_anulacion,omitempty"`
	Abonos              []AbonoResponse `json:"abonos"`
}

type CuentaListResponse struct {
	Data  []CuentaResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type AplicarAbonoResponse struct {
	Cuenta CuentaResponse `json:"cuenta"`
	Abono  AbonoResponse  `json:"abono"`
	Aviso  *string        `json:"aviso,omitempty"`
}

type AntiguedadBanda struct {
	Banda    string          `json:"banda"`
	Cantidad int             `json:"cantidad"`
	Saldo    decimal.Decimal `json:"saldo"`
}

// AntiguedadMoneda groups the aging report per account currency; saldos in
// different currencies are never added together.
type AntiguedadMoneda struct {
	MonedaID     string            `json:"moneda_id"`
	MonedaCodigo string            `json:"moneda_codigo"`
	Bandas       []AntiguedadBanda `json:"bandas"`
}

type AntiguedadResponse struct {
	Fecha   time.Time          `json:"fecha"`
	Cuentas []CuentaResponse   `json:"cuentas"`
	Totales []AntiguedadMoneda `json:"totales"`
}

type ResumenContraparteItem struct {
	ContraparteID string          `json:"contraparte_id"`
	Nombre        string          `json:"nombre"`
	Cantidad      int             `json:"cantidad"`
	SaldoTotal    decimal.Decimal `json:"saldo_total"`
	TotalOriginal decimal.Decimal `json:"total_original"`
}

type ResumenResponse struct {
	Tipo         string                   `json:"tipo"`
	MonedaID     string                   `json:"moneda_id"`
	MonedaCodigo string                   `json:"moneda_codigo"`
	SinConvertir int                      `json:"sin_convertir"` // accounts whose currency could not be resolved
	Items        []ResumenContraparteItem `json:"items"`
}
