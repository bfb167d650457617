package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Service-level error kinds; engine kinds live in package ledger.
var (
	ErrNotFound            = errors.New("no encontrado")
	ErrInactiveCurrency    = errors.New("la moneda está desactivada")
	ErrDuplicateCode       = errors.New("ya existe una moneda con ese código")
	ErrBaseCurrencyLocked  = errors.New("la moneda base no puede desactivarse ni cambiar su tasa")
	ErrContraparteInvalida = errors.New("la contraparte no corresponde al tipo de cuenta")
	ErrFechasInvalidas     = errors.New("vence_at no puede ser anterior a emitida_at")
	ErrIDInvalido          = errors.New("identificador inválido")
)

// notFound maps gorm.ErrRecordNotFound to ErrNotFound, naming the entity.
func notFound(err error, entidad string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", entidad, ErrNotFound)
	}
	return err
}
