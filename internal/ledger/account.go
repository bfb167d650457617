package ledger

import (
	"math"
	"time"

	"kairo/internal/model"

	"github.com/shopspring/decimal"
)

// Clasificación de pago, recomputed from Saldo on every read.
const (
	ClasificacionPendiente = "pendiente"
	ClasificacionParcial   = "parcial"
	ClasificacionPagado    = "pagado"
)

// ClampedSaldo returns the saldo with rounding noise below zero clamped to 0.
func ClampedSaldo(c *model.Cuenta) decimal.Decimal {
	if c.Saldo.IsNegative() {
		return decimal.Zero
	}
	return c.Saldo
}

// AmountPaid is total − saldo.
func AmountPaid(c *model.Cuenta) decimal.Decimal {
	return c.Total.Sub(ClampedSaldo(c))
}

// Classify returns "pagado" when nothing is owed, "pendiente" when nothing
// has been paid, and "parcial" otherwise.
func Classify(c *model.Cuenta) string {
	switch {
	case !ClampedSaldo(c).IsPositive():
		return ClasificacionPagado
	case AmountPaid(c).IsZero():
		return ClasificacionPendiente
	default:
		return ClasificacionParcial
	}
}

// Status derives the lifecycle state. Only the void flag is read from storage.
func Status(c *model.Cuenta, now time.Time) string {
	switch {
	case c.Anulada():
		return model.EstadoAnulada
	case !ClampedSaldo(c).IsPositive():
		return model.EstadoSaldada
	case DaysOverdue(c, now) > 0:
		return model.EstadoVencida
	case AmountPaid(c).IsPositive():
		return model.EstadoPagoParcial
	default:
		return model.EstadoAbierta
	}
}

// ── Aging ─────────────────────────────────────────────────────────────────────

// Bandas de antigüedad.
const (
	BandaAlDia         = "al_dia"
	BandaRiesgoBajo    = "riesgo_bajo"
	BandaRiesgoMedio   = "riesgo_medio"
	BandaRiesgoElevado = "riesgo_elevado"
	BandaRiesgoAlto    = "riesgo_alto"
)

// Bandas lists the aging bands from least to most overdue.
var Bandas = []string{BandaAlDia, BandaRiesgoBajo, BandaRiesgoMedio, BandaRiesgoElevado, BandaRiesgoAlto}

// AgingPolicy holds the inclusive upper bound (in days) of each risk band.
// Anything above Elevado is riesgo_alto.
type AgingPolicy struct {
	Bajo    int
	Medio   int
	Elevado int
}

func DefaultAgingPolicy() AgingPolicy {
	return AgingPolicy{Bajo: 30, Medio: 60, Elevado: 90}
}

// Band classifies a days-overdue count.
func (p AgingPolicy) Band(days int) string {
	switch {
	case days <= 0:
		return BandaAlDia
	case days <= p.Bajo:
		return BandaRiesgoBajo
	case days <= p.Medio:
		return BandaRiesgoMedio
	case days <= p.Elevado:
		return BandaRiesgoElevado
	default:
		return BandaRiesgoAlto
	}
}

// DaysOverdue is max(0, today − vence_at) in whole calendar days, measured in
// now's location. Settled, void and undated accounts are never overdue.
func DaysOverdue(c *model.Cuenta, now time.Time) int {
	if c.VenceAt == nil || c.Anulada() || !ClampedSaldo(c).IsPositive() {
		return 0
	}
	today := startOfDay(now)
	due := startOfDay(c.VenceAt.In(now.Location()))
	days := int(math.Round(today.Sub(due).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
