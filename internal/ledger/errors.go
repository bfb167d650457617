package ledger

import "errors"

// Error kinds returned by the engine. Callers match them with errors.Is.
var (
	// ErrUnresolvedCurrency is never returned by Convert; it is the cause
	// attached to a pass-through Conversion.
	ErrUnresolvedCurrency    = errors.New("moneda no encontrada en el registro")
	ErrMissingBaseCurrency   = errors.New("el registro no tiene moneda base")
	ErrAmbiguousBaseCurrency = errors.New("el registro tiene más de una moneda base")
	ErrInvalidRate           = errors.New("tasa de cambio inválida")
	ErrInvalidAmount         = errors.New("el monto debe ser mayor a cero")
	ErrVoidAccount           = errors.New("la cuenta está anulada")
	ErrOverpayment           = errors.New("el abono excede el saldo de la cuenta")
	ErrPaymentNotFound       = errors.New("el abono no existe o ya fue revertido")
	ErrAccountHasPayments    = errors.New("la cuenta tiene abonos; reviértalos antes de anular")
	ErrAccountSettled        = errors.New("la cuenta ya está saldada")
	ErrMixedCurrencies       = errors.New("no se pueden sumar cuentas en monedas distintas")
)
