package ledger

import (
	"fmt"
	"time"

	"kairo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverpaymentPolicy decides what happens when a payment exceeds the saldo by
// more than Tolerance.
type OverpaymentPolicy string

const (
	// OverpaymentReject fails with ErrOverpayment.
	OverpaymentReject OverpaymentPolicy = "rechazar"
	// OverpaymentClamp applies only the outstanding saldo and reports the rest
	// as Excedente.
	OverpaymentClamp OverpaymentPolicy = "ajustar"
)

// PaymentRequest is an abono to be applied. Tasa, when set and the currencies
// differ, converts Monto straight into the account currency.
type PaymentRequest struct {
	Monto      decimal.Decimal
	MonedaID   uuid.UUID
	Tasa       *decimal.Decimal
	MetodoPago *string
	Referencia *string
	FechaPago  *time.Time
}

// PaymentResult carries the updated account and the new payment record.
type PaymentResult struct {
	Cuenta     model.Cuenta
	Abono      model.Abono
	Conversion Conversion
}

// ApplyPayment subtracts a payment from the account saldo. The returned Abono
// holds the immutable amount applied in the account currency.
func ApplyPayment(cuenta model.Cuenta, monedas []model.Moneda, req PaymentRequest, policy OverpaymentPolicy, now time.Time) (PaymentResult, error) {
	if cuenta.Anulada() {
		return PaymentResult{}, ErrVoidAccount
	}
	// rounded once; everything below works on the stored amount
	req.Monto = Round2(req.Monto)
	if !req.Monto.IsPositive() {
		return PaymentResult{}, ErrInvalidAmount
	}
	if !ClampedSaldo(&cuenta).IsPositive() {
		return PaymentResult{}, ErrAccountSettled
	}

	conv, tasa, err := convertPayment(cuenta, monedas, req)
	if err != nil {
		return PaymentResult{}, err
	}
	if !conv.Amount.IsPositive() {
		return PaymentResult{}, fmt.Errorf("%w: %s equivale a %s en la moneda de la cuenta", ErrInvalidAmount, req.Monto, conv.Amount)
	}

	aplicado := conv.Amount
	excedente := decimal.Zero
	if nuevo := cuenta.Saldo.Sub(aplicado); nuevo.IsNegative() {
		if nuevo.Neg().GreaterThan(Tolerance) && policy != OverpaymentClamp {
			return PaymentResult{}, fmt.Errorf("%w: saldo %s, abono %s", ErrOverpayment, cuenta.Saldo.StringFixed(2), aplicado.StringFixed(2))
		}
		aplicado = ClampedSaldo(&cuenta)
		excedente = conv.Amount.Sub(aplicado)
	}

	fecha := now
	if req.FechaPago != nil {
		fecha = *req.FechaPago
	}
	abono := model.Abono{
		ID:                  uuid.New(),
		EmpresaID:           cuenta.EmpresaID,
		CuentaID:            cuenta.ID,
		Monto:               req.Monto,
		MonedaID:            req.MonedaID,
		MontoEnMonedaCuenta: aplicado,
		Excedente:           excedente,
		TasaAplicada:        tasa,
		Conversion:          string(conv.Outcome),
		MetodoPago:          req.MetodoPago,
		Referencia:          req.Referencia,
		FechaPago:           fecha,
	}

	cuenta.Saldo = cuenta.Saldo.Sub(aplicado)
	cuenta.Abonos = append(append([]model.Abono(nil), cuenta.Abonos...), abono)
	cuenta.Estado = Status(&cuenta, now)

	return PaymentResult{Cuenta: cuenta, Abono: abono, Conversion: conv}, nil
}

// convertPayment returns the payment amount in the account currency and the
// override rate when one was used.
func convertPayment(cuenta model.Cuenta, monedas []model.Moneda, req PaymentRequest) (Conversion, *decimal.Decimal, error) {
	if req.MonedaID == cuenta.MonedaID {
		return Conversion{Amount: Round2(req.Monto), Outcome: OutcomeIdentity}, nil, nil
	}
	if req.Tasa != nil {
		tasa := Round2(*req.Tasa)
		if !tasa.IsPositive() {
			return Conversion{}, nil, fmt.Errorf("%w: %s", ErrInvalidRate, req.Tasa.String())
		}
		return Conversion{Amount: Round2(req.Monto.Mul(tasa)), Outcome: OutcomeConverted}, &tasa, nil
	}
	conv, err := Convert(req.Monto, req.MonedaID.String(), cuenta.MonedaID.String(), monedas)
	if err != nil {
		return Conversion{}, nil, err
	}
	return conv, nil, nil
}

// ReversePayment restores exactly the stored MontoEnMonedaCuenta of the given
// payment and drops it from the account. A payment that is not attached to the
// account (already reversed, or foreign) fails with ErrPaymentNotFound.
func ReversePayment(cuenta model.Cuenta, abonoID uuid.UUID, now time.Time) (model.Cuenta, model.Abono, error) {
	if cuenta.Anulada() {
		return cuenta, model.Abono{}, ErrVoidAccount
	}
	idx := -1
	for i := range cuenta.Abonos {
		if cuenta.Abonos[i].ID == abonoID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cuenta, model.Abono{}, ErrPaymentNotFound
	}
	abono := cuenta.Abonos[idx]

	saldo := ClampedSaldo(&cuenta).Add(abono.MontoEnMonedaCuenta)
	if saldo.GreaterThan(cuenta.Total) {
		saldo = cuenta.Total
	}
	cuenta.Saldo = saldo

	restantes := make([]model.Abono, 0, len(cuenta.Abonos)-1)
	restantes = append(restantes, cuenta.Abonos[:idx]...)
	restantes = append(restantes, cuenta.Abonos[idx+1:]...)
	cuenta.Abonos = restantes
	cuenta.Estado = Status(&cuenta, now)

	return cuenta, abono, nil
}

// Void cancels an account. Accounts with payments must have them reversed first.
func Void(cuenta model.Cuenta, motivo string, now time.Time) (model.Cuenta, error) {
	switch {
	case cuenta.Anulada():
		return cuenta, ErrVoidAccount
	case len(cuenta.Abonos) > 0:
		return cuenta, ErrAccountHasPayments
	case !ClampedSaldo(&cuenta).IsPositive():
		return cuenta, ErrAccountSettled
	}
	at := now
	cuenta.AnuladaAt = &at
	if motivo != "" {
		cuenta.MotivoAnulacion = &motivo
	}
	cuenta.Estado = model.EstadoAnulada
	return cuenta, nil
}
