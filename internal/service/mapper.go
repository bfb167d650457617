package service

import (
	"time"

	"kairo/internal/dto"
	"kairo/internal/ledger"
	"kairo/internal/model"
)

func toMonedaResponse(m *model.Moneda) dto.MonedaResponse {
	return dto.MonedaResponse{
		ID:                m.ID.String(),
		Codigo:            m.Codigo,
		Nombre:            m.Nombre,
		Simbolo:           m.Simbolo,
		Decimales:         m.Decimales,
		Activo:            m.Activo,
		EsBase:            m.EsBase,
		TasaVsBase:        m.TasaVsBase,
		TasaActualizadaAt: m.TasaActualizadaAt,
	}
}

func toContraparteResponse(c *model.Contraparte) dto.ContraparteResponse {
	return dto.ContraparteResponse{
		ID:             c.ID.String(),
		Tipo:           c.Tipo,
		Nombre:         c.Nombre,
		Identificacion: c.Identificacion,
		Email:          c.Email,
		Telefono:       c.Telefono,
		Activo:         c.Activo,
	}
}

func toAbonoResponse(a *model.Abono) dto.AbonoResponse {
	return dto.AbonoResponse{
		ID:                  a.ID.String(),
		CuentaID:            a.CuentaID.String(),
		Monto:               a.Monto,
		MonedaID:            a.MonedaID.String(),
		MontoEnMonedaCuenta: a.MontoEnMonedaCuenta,
		Excedente:           a.Excedente,
		TasaAplicada:        a.TasaAplicada,
		Conversion:          a.Conversion,
		MetodoPago:          a.MetodoPago,
		Referencia:          a.Referencia,
		FechaPago:           a.FechaPago,
	}
}

// toCuentaResponse derives classification, state and aging at read time;
// the stored estado snapshot is never echoed back.
func toCuentaResponse(c *model.Cuenta, monedas []model.Moneda, aging ledger.AgingPolicy, now time.Time) dto.CuentaResponse {
	dias := ledger.DaysOverdue(c, now)
	resp := dto.CuentaResponse{
		ID:              c.ID.String(),
		Tipo:            c.Tipo,
		ContraparteID:   c.ContraparteID.String(),
		MonedaID:        c.MonedaID.String(),
		Total:           c.Total,
		Saldo:           ledger.ClampedSaldo(c),
		MontoPagado:     ledger.AmountPaid(c),
		Clasificacion:   ledger.Classify(c),
		Estado:          ledger.Status(c, now),
		DiasVencida:     dias,
		Banda:           aging.Band(dias),
		EmitidaAt:       c.EmitidaAt,
		VenceAt:         c.VenceAt,
		Comentario:      c.Comentario,
		AnuladaAt:       c.AnuladaAt,
		MotivoAnulacion: c.MotivoAnulacion,
		Abonos:          make([]dto.AbonoResponse, 0, len(c.Abonos)),
	}
	if m, ok := ledger.LookupID(monedas, c.MonedaID); ok {
		resp.MonedaCodigo = m.Codigo
	}
	if c.TransaccionOrigenID != nil {
		s := c.TransaccionOrigenID.String()
		resp.TransaccionOrigenID = &s
	}
	for i := range c.Abonos {
		resp.Abonos = append(resp.Abonos, toAbonoResponse(&c.Abonos[i]))
	}
	return resp
}
