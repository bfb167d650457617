package ledger_test

import (
	"math/rand"
	"testing"

	"kairo/internal/ledger"
	"kairo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pago(monto string, moneda model.Moneda) ledger.PaymentRequest {
	return ledger.PaymentRequest{Monto: dec(monto), MonedaID: moneda.ID}
}

func TestApplyPayment_AbonoParcialYTotal(t *testing.T) {
	usd, _, _, all := registro()
	c := cuenta(usd, "1000.00")

	res, err := ledger.ApplyPayment(c, all, pago("400.00", usd), ledger.OverpaymentReject, now)
	require.NoError(t, err)
	assert.Equal(t, "600", res.Cuenta.Saldo.String())
	assert.Equal(t, ledger.ClasificacionParcial, ledger.Classify(&res.Cuenta))
	assert.Equal(t, model.EstadoPagoParcial, res.Cuenta.Estado)
	assert.Equal(t, "400", res.Abono.MontoEnMonedaCuenta.String())
	assert.Equal(t, model.ConversionIdentidad, res.Abono.Conversion)
	assert.Equal(t, now, res.Abono.FechaPago)
	require.Len(t, res.Cuenta.Abonos, 1)

	res, err = ledger.ApplyPayment(res.Cuenta, all, pago("600.00", usd), ledger.OverpaymentReject, now)
	require.NoError(t, err)
	assert.True(t, res.Cuenta.Saldo.IsZero())
	assert.Equal(t, ledger.ClasificacionPagado, ledger.Classify(&res.Cuenta))
	assert.Equal(t, model.EstadoSaldada, res.Cuenta.Estado)
	assert.Len(t, res.Cuenta.Abonos, 2)
}

func TestApplyPayment_NoMutaLaCuentaOriginal(t *testing.T) {
	usd, _, _, all := registro()
	c := cuenta(usd, "100")
	_, err := ledger.ApplyPayment(c, all, pago("40", usd), ledger.OverpaymentReject, now)
	require.NoError(t, err)
	assert.Equal(t, "100", c.Saldo.String())
	assert.Empty(t, c.Abonos)
}

func TestApplyPayment_SobrepagoEnGTQRechazado(t *testing.T) {
	usd, gtq, _, all := registro()
	c := cuenta(gtq, "100.00")

	// 50 USD → round2(50 / 0.13) = 384.62 GTQ, far above the 100 GTQ saldo
	_, err := ledger.ApplyPayment(c, all, pago("50.00", usd), ledger.OverpaymentReject, now)
	require.ErrorIs(t, err, ledger.ErrOverpayment)
	assert.Equal(t, "100", c.Saldo.String())
}

func TestApplyPayment_SobrepagoEnGTQAjustado(t *testing.T) {
	usd, gtq, _, all := registro()
	c := cuenta(gtq, "100.00")

	res, err := ledger.ApplyPayment(c, all, pago("50.00", usd), ledger.OverpaymentClamp, now)
	require.NoError(t, err)
	assert.True(t, res.Cuenta.Saldo.IsZero())
	assert.Equal(t, "100", res.Abono.MontoEnMonedaCuenta.String())
	assert.Equal(t, "284.62", res.Abono.Excedente.String())
	assert.Equal(t, "384.62", res.Conversion.Amount.String())
	assert.Equal(t, model.ConversionConvertido, res.Abono.Conversion)
}

func TestApplyPayment_ToleranciaDeRedondeo(t *testing.T) {
	usd, _, _, all := registro()
	c := cuenta(usd, "100.00")

	res, err := ledger.ApplyPayment(c, all, pago("100.01", usd), ledger.OverpaymentReject, now)
	require.NoError(t, err)
	assert.True(t, res.Cuenta.Saldo.IsZero())
	assert.Equal(t, "100", res.Abono.MontoEnMonedaCuenta.String())
	assert.Equal(t, "0.01", res.Abono.Excedente.String())

	_, err = ledger.ApplyPayment(c, all, pago("100.02", usd), ledger.OverpaymentReject, now)
	assert.ErrorIs(t, err, ledger.ErrOverpayment)
}

func TestApplyPayment_CuentaAnulada(t *testing.T) {
	usd, _, _, all := registro()
	c := cuenta(usd, "100")
	c, err := ledger.Void(c, "error de carga", now)
	require.NoError(t, err)

	_, err = ledger.ApplyPayment(c, all, pago("10", usd), ledger.OverpaymentReject, now)
	assert.ErrorIs(t, err, ledger.ErrVoidAccount)
}

func TestApplyPayment_MontoInvalidoYCuentaSaldada(t *testing.T) {
	usd, _, _, all := registro()
	c := cuenta(usd, "100")

	_, err := ledger.ApplyPayment(c, all, pago("0", usd), ledger.OverpaymentReject, now)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = ledger.ApplyPayment(c, all, pago("-5", usd), ledger.OverpaymentReject, now)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	c.Saldo = decimal.Zero
	_, err = ledger.ApplyPayment(c, all, pago("5", usd), ledger.OverpaymentClamp, now)
	assert.ErrorIs(t, err, ledger.ErrAccountSettled)
}

func TestApplyPayment_TasaExplicita(t *testing.T) {
	usd, gtq, _, all := registro()
	c := cuenta(gtq, "100")

	req := pago("10", usd)
	tasa := dec("7.7")
	req.Tasa = &tasa
	res, err := ledger.ApplyPayment(c, all, req, ledger.OverpaymentReject, now)
	require.NoError(t, err)
	assert.Equal(t, "77", res.Abono.MontoEnMonedaCuenta.String())
	assert.Equal(t, "23", res.Cuenta.Saldo.String())
	require.NotNil(t, res.Abono.TasaAplicada)
	assert.Equal(t, "7.7", res.Abono.TasaAplicada.String())

	tasa = dec("0.001")
	_, err = ledger.ApplyPayment(c, all, req, ledger.OverpaymentReject, now)
	assert.ErrorIs(t, err, ledger.ErrInvalidRate)
}

func TestApplyPayment_MontoQueRedondeaACero(t *testing.T) {
	usd, gtq, _, all := registro()
	c := cuenta(gtq, "100")

	req := pago("0.004", usd)
	tasa := dec("7.70")
	req.Tasa = &tasa
	_, err := ledger.ApplyPayment(c, all, req, ledger.OverpaymentReject, now)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	// the stored amount and the converted amount come from the same rounded value
	req = pago("0.005", usd)
	req.Tasa = &tasa
	res, err := ledger.ApplyPayment(c, all, req, ledger.OverpaymentReject, now)
	require.NoError(t, err)
	assert.Equal(t, "0.01", res.Abono.Monto.StringFixed(2))
	assert.Equal(t, "0.08", res.Abono.MontoEnMonedaCuenta.StringFixed(2))
}

func TestApplyPayment_MonedaDesconocidaPasaSinConvertir(t *testing.T) {
	usd, _, _, all := registro()
	c := cuenta(usd, "100")

	req := ledger.PaymentRequest{Monto: dec("30"), MonedaID: uuid.New()}
	res, err := ledger.ApplyPayment(c, all, req, ledger.OverpaymentReject, now)
	require.NoError(t, err)
	assert.True(t, res.Conversion.PassedThrough())
	assert.Equal(t, model.ConversionSinConvertir, res.Abono.Conversion)
	assert.Equal(t, "70", res.Cuenta.Saldo.String())
}

func TestApplyPayment_SinMonedaBaseFalla(t *testing.T) {
	_, gtq, mxn, _ := registro()
	c := cuenta(gtq, "100")
	_, err := ledger.ApplyPayment(c, []model.Moneda{gtq, mxn}, pago("10", mxn), ledger.OverpaymentReject, now)
	assert.ErrorIs(t, err, ledger.ErrMissingBaseCurrency)
}

func TestReversePayment_RestauraSaldo(t *testing.T) {
	usd, _, _, all := registro()
	c := cuenta(usd, "1000.00")

	res, err := ledger.ApplyPayment(c, all, pago("400.00", usd), ledger.OverpaymentReject, now)
	require.NoError(t, err)

	revertida, abono, err := ledger.ReversePayment(res.Cuenta, res.Abono.ID, now)
	require.NoError(t, err)
	assert.Equal(t, res.Abono.ID, abono.ID)
	assert.Equal(t, "1000", revertida.Saldo.String())
	assert.Empty(t, revertida.Abonos)
	assert.Equal(t, ledger.ClasificacionPendiente, ledger.Classify(&revertida))
	assert.Equal(t, model.EstadoAbierta, revertida.Estado)

	_, _, err = ledger.ReversePayment(revertida, res.Abono.ID, now)
	assert.ErrorIs(t, err, ledger.ErrPaymentNotFound)
}

func TestReversePayment_AbonoAjustadoRestauraLoAplicado(t *testing.T) {
	usd, gtq, _, all := registro()
	c := cuenta(gtq, "100.00")

	res, err := ledger.ApplyPayment(c, all, pago("50.00", usd), ledger.OverpaymentClamp, now)
	require.NoError(t, err)

	revertida, _, err := ledger.ReversePayment(res.Cuenta, res.Abono.ID, now)
	require.NoError(t, err)
	assert.Equal(t, "100", revertida.Saldo.String())
}

func TestAbono_InmutableAnteCambioDeTasa(t *testing.T) {
	usd, gtq, mxn, _ := registro()
	c := cuenta(gtq, "1000.00")

	res, err := ledger.ApplyPayment(c, []model.Moneda{usd, gtq, mxn}, pago("50.00", usd), ledger.OverpaymentReject, now)
	require.NoError(t, err)
	assert.Equal(t, "384.62", res.Abono.MontoEnMonedaCuenta.String())

	gtq.TasaVsBase = dec("0.20")
	conv, err := ledger.Convert(dec("50"), usd.Codigo, gtq.Codigo, []model.Moneda{usd, gtq, mxn})
	require.NoError(t, err)
	assert.Equal(t, "250", conv.Amount.String())

	// the stored amount is what gets restored, not a reconversion at today's rate
	assert.Equal(t, "384.62", res.Cuenta.Abonos[0].MontoEnMonedaCuenta.String())
	revertida, _, err := ledger.ReversePayment(res.Cuenta, res.Abono.ID, now)
	require.NoError(t, err)
	assert.Equal(t, "1000", revertida.Saldo.String())
}

func TestVoid(t *testing.T) {
	usd, _, _, all := registro()
	c := cuenta(usd, "100")

	conAbono, err := ledger.ApplyPayment(c, all, pago("10", usd), ledger.OverpaymentReject, now)
	require.NoError(t, err)
	_, err = ledger.Void(conAbono.Cuenta, "", now)
	assert.ErrorIs(t, err, ledger.ErrAccountHasPayments)

	saldada := c
	saldada.Saldo = decimal.Zero
	_, err = ledger.Void(saldada, "", now)
	assert.ErrorIs(t, err, ledger.ErrAccountSettled)

	anulada, err := ledger.Void(c, "duplicada", now)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoAnulada, anulada.Estado)
	require.NotNil(t, anulada.MotivoAnulacion)
	assert.Equal(t, "duplicada", *anulada.MotivoAnulacion)

	_, err = ledger.Void(anulada, "", now)
	assert.ErrorIs(t, err, ledger.ErrVoidAccount)
}

func TestInvarianteDeSaldo_SecuenciaAleatoria(t *testing.T) {
	usd, gtq, mxn, all := registro()
	monedas := []model.Moneda{usd, gtq, mxn}
	rng := rand.New(rand.NewSource(7))

	for _, politica := range []ledger.OverpaymentPolicy{ledger.OverpaymentReject, ledger.OverpaymentClamp} {
		c := cuenta(gtq, "2500.00")
		for step := 0; step < 500; step++ {
			if len(c.Abonos) > 0 && rng.Intn(3) == 0 {
				victima := c.Abonos[rng.Intn(len(c.Abonos))].ID
				next, _, err := ledger.ReversePayment(c, victima, now)
				require.NoError(t, err)
				c = next
			} else {
				monto := decimal.New(rng.Int63n(40000)+1, -2)
				req := ledger.PaymentRequest{Monto: monto, MonedaID: monedas[rng.Intn(len(monedas))].ID}
				res, err := ledger.ApplyPayment(c, all, req, politica, now)
				if err == nil {
					c = res.Cuenta
				}
			}
			assert.False(t, c.Saldo.LessThan(ledger.Tolerance.Neg()), "paso %d: saldo %s < 0", step, c.Saldo)
			assert.True(t, c.Saldo.LessThanOrEqual(c.Total), "paso %d: saldo %s > total", step, c.Saldo)
		}

		for len(c.Abonos) > 0 {
			next, _, err := ledger.ReversePayment(c, c.Abonos[0].ID, now)
			require.NoError(t, err)
			c = next
		}
		assert.True(t, c.Total.Equal(c.Saldo), "%s: saldo final %s", politica, c.Saldo)
	}
}
