package ledger

import (
	"sort"

	"kairo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CounterpartySummary aggregates the accounts held against one counterparty.
type CounterpartySummary struct {
	ContraparteID uuid.UUID
	Cantidad      int
	SaldoTotal    decimal.Decimal
	TotalOriginal decimal.Decimal
}

// SummarizeByCounterparty groups accounts by counterparty and sums saldo and
// total. All accounts must be in the same currency; callers convert first.
// Rows are ordered by SaldoTotal descending, then counterparty id ascending.
func SummarizeByCounterparty(cuentas []model.Cuenta) ([]CounterpartySummary, error) {
	if len(cuentas) == 0 {
		return []CounterpartySummary{}, nil
	}
	moneda := cuentas[0].MonedaID
	idx := make(map[uuid.UUID]int)
	out := make([]CounterpartySummary, 0)
	for i := range cuentas {
		c := &cuentas[i]
		if c.MonedaID != moneda {
			return nil, ErrMixedCurrencies
		}
		pos, ok := idx[c.ContraparteID]
		if !ok {
			pos = len(out)
			idx[c.ContraparteID] = pos
			out = append(out, CounterpartySummary{ContraparteID: c.ContraparteID})
		}
		out[pos].Cantidad++
		out[pos].SaldoTotal = out[pos].SaldoTotal.Add(ClampedSaldo(c))
		out[pos].TotalOriginal = out[pos].TotalOriginal.Add(c.Total)
	}

	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].SaldoTotal.Cmp(out[j].SaldoTotal); cmp != 0 {
			return cmp > 0
		}
		return out[i].ContraparteID.String() < out[j].ContraparteID.String()
	})
	return out, nil
}
