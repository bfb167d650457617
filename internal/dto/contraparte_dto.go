package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ContraparteRequest struct {
	Tipo           string  `json:"tipo"           validate:"required,oneof=cliente proveedor"`
	Nombre         string  `json:"nombre"         validate:"required,min=2,max=200"`
	Identificacion *string `json:"identificacion" validate:"omitempty,max=30"`
	Email          *string `json:"email"          validate:"omitempty,email"`
	Telefono       *string `json:"telefono"       validate:"omitempty,max=30"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ContraparteResponse struct {
	ID             string  `json:"id"`
	Tipo           string  `json:"tipo"`
	Nombre         string  `json:"nombre"`
	Identificacion *string `json:"identificacion"`
	Email          *string `json:"email"`
	Telefono       *string `json:"telefono"`
	Activo         bool    `json:"activo"`
}

type ContraparteListResponse struct {
	Data  []ContraparteResponse `json:"data"`
	Total int64                 `json:"total"`
}
