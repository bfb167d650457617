package ledger_test

import (
	"testing"
	"time"

	"kairo/internal/ledger"
	"kairo/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	usd, _, _, _ := registro()
	c := cuenta(usd, "1000")
	assert.Equal(t, ledger.ClasificacionPendiente, ledger.Classify(&c))

	c.Saldo = dec("600")
	assert.Equal(t, ledger.ClasificacionParcial, ledger.Classify(&c))
	assert.Equal(t, "400", ledger.AmountPaid(&c).String())

	c.Saldo = dec("-0.004")
	assert.Equal(t, ledger.ClasificacionPagado, ledger.Classify(&c))
	assert.Equal(t, "1000", ledger.AmountPaid(&c).String())

	// reading twice without mutation yields the same answer
	assert.Equal(t, ledger.Classify(&c), ledger.Classify(&c))
}

func TestClassify_CuentaEnCeroEsPagada(t *testing.T) {
	usd, _, _, _ := registro()
	c := cuenta(usd, "0")
	assert.Equal(t, ledger.ClasificacionPagado, ledger.Classify(&c))
	assert.Equal(t, model.EstadoSaldada, ledger.Status(&c, now))
}

func TestStatus(t *testing.T) {
	usd, _, _, _ := registro()
	c := cuenta(usd, "500")
	assert.Equal(t, model.EstadoAbierta, ledger.Status(&c, now))

	c.Saldo = dec("200")
	assert.Equal(t, model.EstadoPagoParcial, ledger.Status(&c, now))

	vence := now.AddDate(0, 0, -1)
	c.VenceAt = &vence
	assert.Equal(t, model.EstadoVencida, ledger.Status(&c, now))

	c.Saldo = dec("0")
	assert.Equal(t, model.EstadoSaldada, ledger.Status(&c, now))

	c.Saldo = dec("200")
	anulada := now
	c.AnuladaAt = &anulada
	assert.Equal(t, model.EstadoAnulada, ledger.Status(&c, now))
}

func TestDaysOverdue_Escenario45Dias(t *testing.T) {
	usd, _, _, _ := registro()
	c := cuenta(usd, "300")
	vence := now.AddDate(0, 0, -45)
	c.VenceAt = &vence

	days := ledger.DaysOverdue(&c, now)
	assert.Equal(t, 45, days)
	assert.Equal(t, ledger.BandaRiesgoMedio, ledger.DefaultAgingPolicy().Band(days))
}

func TestDaysOverdue_DiasCalendario(t *testing.T) {
	usd, _, _, _ := registro()
	c := cuenta(usd, "300")

	// due late yesterday, read early today: one calendar day
	vence := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	c.VenceAt = &vence
	assert.Equal(t, 1, ledger.DaysOverdue(&c, time.Date(2025, 3, 15, 0, 1, 0, 0, time.UTC)))

	// due later today: not overdue yet
	hoy := now.Add(3 * time.Hour)
	c.VenceAt = &hoy
	assert.Equal(t, 0, ledger.DaysOverdue(&c, now))

	futuro := now.AddDate(0, 0, 10)
	c.VenceAt = &futuro
	assert.Equal(t, 0, ledger.DaysOverdue(&c, now))
}

func TestDaysOverdue_SaldadaAnuladaOSinVencimiento(t *testing.T) {
	usd, _, _, _ := registro()
	vence := now.AddDate(0, 0, -100)

	sinVence := cuenta(usd, "10")
	assert.Equal(t, 0, ledger.DaysOverdue(&sinVence, now))

	saldada := cuenta(usd, "10")
	saldada.VenceAt = &vence
	saldada.Saldo = dec("0")
	assert.Equal(t, 0, ledger.DaysOverdue(&saldada, now))

	anulada := cuenta(usd, "10")
	anulada.VenceAt = &vence
	at := now
	anulada.AnuladaAt = &at
	assert.Equal(t, 0, ledger.DaysOverdue(&anulada, now))
}

func TestAgingPolicy_Bandas(t *testing.T) {
	p := ledger.DefaultAgingPolicy()
	cases := map[int]string{
		0:   ledger.BandaAlDia,
		1:   ledger.BandaRiesgoBajo,
		30:  ledger.BandaRiesgoBajo,
		31:  ledger.BandaRiesgoMedio,
		60:  ledger.BandaRiesgoMedio,
		61:  ledger.BandaRiesgoElevado,
		90:  ledger.BandaRiesgoElevado,
		91:  ledger.BandaRiesgoAlto,
		400: ledger.BandaRiesgoAlto,
	}
	for days, want := range cases {
		assert.Equal(t, want, p.Band(days), "días %d", days)
	}

	custom := ledger.AgingPolicy{Bajo: 15, Medio: 30, Elevado: 45}
	assert.Equal(t, ledger.BandaRiesgoMedio, custom.Band(16))
	assert.Equal(t, ledger.BandaRiesgoAlto, custom.Band(46))
}
