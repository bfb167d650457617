// Package ledger holds the pure multi-currency ledger engine: currency
// registry resolution, conversion with two-stage rounding, account state
// derivation, payment application and reversal, aging and aggregation.
//
// Nothing here performs I/O. Callers load currencies and accounts, call into
// the engine, and persist the returned values.
package ledger

import "github.com/shopspring/decimal"

// Tolerance is the largest negative saldo treated as rounding noise.
var Tolerance = decimal.New(1, -2)

// Round2 rounds half away from zero to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
