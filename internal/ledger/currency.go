package ledger

import (
	"fmt"
	"strings"

	"kairo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Registry ──────────────────────────────────────────────────────────────────

// BaseCurrency returns the single currency flagged EsBase.
// Zero matches is ErrMissingBaseCurrency; more than one is ErrAmbiguousBaseCurrency.
func BaseCurrency(monedas []model.Moneda) (model.Moneda, error) {
	var base *model.Moneda
	for i := range monedas {
		if !monedas[i].EsBase {
			continue
		}
		if base != nil {
			return model.Moneda{}, fmt.Errorf("%w: %s y %s", ErrAmbiguousBaseCurrency, base.Codigo, monedas[i].Codigo)
		}
		base = &monedas[i]
	}
	if base == nil {
		return model.Moneda{}, ErrMissingBaseCurrency
	}
	return *base, nil
}

// Lookup resolves ref as a currency id, falling back to a case-insensitive code match.
func Lookup(monedas []model.Moneda, ref string) (model.Moneda, bool) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return LookupID(monedas, id)
	}
	for _, m := range monedas {
		if strings.EqualFold(m.Codigo, ref) {
			return m, true
		}
	}
	return model.Moneda{}, false
}

// LookupID resolves a currency by id.
func LookupID(monedas []model.Moneda, id uuid.UUID) (model.Moneda, bool) {
	for _, m := range monedas {
		if m.ID == id {
			return m, true
		}
	}
	return model.Moneda{}, false
}

// ── Conversion ────────────────────────────────────────────────────────────────

// Outcome tags how a Conversion was produced.
type Outcome string

const (
	OutcomeIdentity    Outcome = model.ConversionIdentidad
	OutcomeConverted   Outcome = model.ConversionConvertido
	OutcomePassThrough Outcome = model.ConversionSinConvertir
)

// Conversion is the tagged result of Convert. A pass-through carries the
// input amount unconverted and Cause set to ErrUnresolvedCurrency.
type Conversion struct {
	Amount  decimal.Decimal
	Outcome Outcome
	Cause   error
}

// PassedThrough reports whether the amount was returned unconverted.
func (c Conversion) PassedThrough() bool { return c.Outcome == OutcomePassThrough }

func isBase(m, base model.Moneda) bool {
	return m.ID == base.ID || m.EsBase
}

// roundedRate is the rate actually used by the conversion policy.
func roundedRate(m model.Moneda) (decimal.Decimal, error) {
	r := Round2(m.TasaVsBase)
	if !r.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s tasa_vs_base=%s", ErrInvalidRate, m.Codigo, m.TasaVsBase)
	}
	return r, nil
}

// ToBase converts amount from `from` into the base currency:
// round2(amount * round2(from.TasaVsBase)).
func ToBase(amount decimal.Decimal, from, base model.Moneda) (decimal.Decimal, error) {
	if isBase(from, base) {
		return Round2(amount), nil
	}
	rate, err := roundedRate(from)
	if err != nil {
		return decimal.Zero, err
	}
	return Round2(amount.Mul(rate)), nil
}

// FromBase converts a base-currency amount into `to`:
// round2(amount / round2(to.TasaVsBase)).
func FromBase(amount decimal.Decimal, to, base model.Moneda) (decimal.Decimal, error) {
	if isBase(to, base) {
		return Round2(amount), nil
	}
	rate, err := roundedRate(to)
	if err != nil {
		return decimal.Zero, err
	}
	return Round2(amount.Div(rate)), nil
}

// Convert moves amount between two currency references (id or code), always
// through the base currency. An unresolved reference never fails: the amount
// is passed through and the result is tagged OutcomePassThrough. A registry
// without exactly one base currency is a hard error.
func Convert(amount decimal.Decimal, fromRef, toRef string, monedas []model.Moneda) (Conversion, error) {
	from, okFrom := Lookup(monedas, fromRef)
	to, okTo := Lookup(monedas, toRef)
	if !okFrom || !okTo {
		missing := fromRef
		if okFrom {
			missing = toRef
		}
		return Conversion{
			Amount:  Round2(amount),
			Outcome: OutcomePassThrough,
			Cause:   fmt.Errorf("%w: %s", ErrUnresolvedCurrency, missing),
		}, nil
	}
	if from.ID == to.ID {
		return Conversion{Amount: Round2(amount), Outcome: OutcomeIdentity}, nil
	}

	base, err := BaseCurrency(monedas)
	if err != nil {
		return Conversion{}, err
	}
	inBase, err := ToBase(amount, from, base)
	if err != nil {
		return Conversion{}, err
	}
	out, err := FromBase(inBase, to, base)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{Amount: out, Outcome: OutcomeConverted}, nil
}
