package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	wrap := func(code, constraint string) error {
		return fmt.Errorf("insert monedas: %w", &pgconn.PgError{Code: code, ConstraintName: constraint})
	}

	assert.ErrorIs(t, uniqueViolation(wrap("23505", "uni_monedas_empresa_base")), ErrBaseDuplicada)
	assert.ErrorIs(t, uniqueViolation(wrap("23505", "uni_monedas_empresa_codigo")), ErrCodigoDuplicado)

	otro := wrap("23505", "abonos_pkey")
	assert.Equal(t, otro, uniqueViolation(otro))
	fk := wrap("23503", "uni_monedas_empresa_base")
	assert.Equal(t, fk, uniqueViolation(fk))
	assert.NoError(t, uniqueViolation(nil))

	plain := errors.New("conexión cerrada")
	assert.Equal(t, plain, uniqueViolation(plain))
}
