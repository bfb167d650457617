package ledger_test

import (
	"time"

	"kairo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	empresaID = uuid.MustParse("5b1d8a1e-0000-4000-8000-000000000001")
	now       = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func registro() (usd, gtq, mxn model.Moneda, all []model.Moneda) {
	usd = model.Moneda{ID: uuid.New(), EmpresaID: empresaID, Codigo: "USD", EsBase: true, Activo: true, TasaVsBase: decimal.NewFromInt(1)}
	gtq = model.Moneda{ID: uuid.New(), EmpresaID: empresaID, Codigo: "GTQ", Activo: true, TasaVsBase: dec("0.13")}
	mxn = model.Moneda{ID: uuid.New(), EmpresaID: empresaID, Codigo: "MXN", Activo: true, TasaVsBase: dec("0.058")}
	return usd, gtq, mxn, []model.Moneda{usd, gtq, mxn}
}

func cuenta(moneda model.Moneda, total string) model.Cuenta {
	t := dec(total)
	return model.Cuenta{
		ID:            uuid.New(),
		EmpresaID:     empresaID,
		Tipo:          model.CuentaPorCobrar,
		ContraparteID: uuid.New(),
		MonedaID:      moneda.ID,
		Total:         t,
		Saldo:         t,
		Estado:        model.EstadoAbierta,
		EmitidaAt:     now.AddDate(0, 0, -10),
	}
}
