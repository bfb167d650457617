package service_test

import (
	"context"
	"testing"

	"kairo/internal/dto"
	"kairo/internal/ledger"
	"kairo/internal/repository"
	"kairo/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMonedaSvc() (service.MonedaService, *memMonedaRepo) {
	repo := newMemMonedaRepo()
	return service.NewMonedaService(repo, nil, 0, nil), repo
}

func TestMonedaCrear_BaseForcesUnitRate(t *testing.T) {
	svc, _ := newMonedaSvc()
	resp, err := svc.Crear(context.Background(), empresaID, dto.CrearMonedaRequest{
		Codigo: "usd", Nombre: "Dólar", Simbolo: "$", Decimales: 2, EsBase: true, TasaVsBase: dec("3"),
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Codigo)
	assert.True(t, resp.TasaVsBase.Equal(decimal.NewFromInt(1)))
	assert.True(t, resp.Activo)
}

func TestMonedaCrear_SecondBaseRejected(t *testing.T) {
	svc, repo := newMonedaSvc()
	repo.seed("USD", "1", true)

	_, err := svc.Crear(context.Background(), empresaID, dto.CrearMonedaRequest{
		Codigo: "EUR", Nombre: "Euro", Simbolo: "€", EsBase: true,
	})
	assert.ErrorIs(t, err, ledger.ErrAmbiguousBaseCurrency)
}

func TestMonedaCrear_DuplicateCodeIsCaseInsensitive(t *testing.T) {
	svc, repo := newMonedaSvc()
	repo.seed("USD", "1", true)

	_, err := svc.Crear(context.Background(), empresaID, dto.CrearMonedaRequest{
		Codigo: "usd", Nombre: "Otro", Simbolo: "$", TasaVsBase: dec("1"),
	})
	assert.ErrorIs(t, err, service.ErrDuplicateCode)
}

func TestMonedaCrear_LosingConcurrentInsertIsAConflict(t *testing.T) {
	svc, repo := newMonedaSvc()

	// both checks passed; the unique index rejects the insert
	repo.createErr = repository.ErrBaseDuplicada
	_, err := svc.Crear(context.Background(), empresaID, dto.CrearMonedaRequest{
		Codigo: "USD", Nombre: "Dólar", Simbolo: "$", EsBase: true,
	})
	assert.ErrorIs(t, err, ledger.ErrAmbiguousBaseCurrency)

	repo.createErr = repository.ErrCodigoDuplicado
	_, err = svc.Crear(context.Background(), empresaID, dto.CrearMonedaRequest{
		Codigo: "GTQ", Nombre: "Quetzal", Simbolo: "Q", TasaVsBase: dec("0.13"),
	})
	assert.ErrorIs(t, err, service.ErrDuplicateCode)
}

func TestMonedaCrear_RateRoundingToZeroRejected(t *testing.T) {
	svc, repo := newMonedaSvc()
	repo.seed("USD", "1", true)

	_, err := svc.Crear(context.Background(), empresaID, dto.CrearMonedaRequest{
		Codigo: "VES", Nombre: "Bolívar", Simbolo: "Bs", TasaVsBase: dec("0.004"),
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidRate)
}

func TestMonedaActualizar_BaseIsLocked(t *testing.T) {
	svc, repo := newMonedaSvc()
	usd := repo.seed("USD", "1", true)

	tasa := dec("2")
	_, err := svc.Actualizar(context.Background(), empresaID, usd.ID, dto.ActualizarMonedaRequest{TasaVsBase: &tasa})
	assert.ErrorIs(t, err, service.ErrBaseCurrencyLocked)

	err = svc.Desactivar(context.Background(), empresaID, usd.ID)
	assert.ErrorIs(t, err, service.ErrBaseCurrencyLocked)
}

func TestMonedaActualizar_RateStampsTimestamp(t *testing.T) {
	svc, repo := newMonedaSvc()
	repo.seed("USD", "1", true)
	gtq := repo.seed("GTQ", "0.13", false)

	tasa := dec("0.128")
	resp, err := svc.Actualizar(context.Background(), empresaID, gtq.ID, dto.ActualizarMonedaRequest{TasaVsBase: &tasa})
	require.NoError(t, err)
	assert.True(t, resp.TasaVsBase.Equal(tasa))
	assert.NotNil(t, resp.TasaActualizadaAt)
}

func TestMonedaDesactivar_StaysInRegistry(t *testing.T) {
	svc, repo := newMonedaSvc()
	repo.seed("USD", "1", true)
	gtq := repo.seed("GTQ", "0.13", false)

	require.NoError(t, svc.Desactivar(context.Background(), empresaID, gtq.ID))

	monedas, err := svc.Registro(context.Background(), empresaID)
	require.NoError(t, err)
	m, ok := ledger.LookupID(monedas, gtq.ID)
	require.True(t, ok)
	assert.False(t, m.Activo)
}

func TestMonedaConvertir(t *testing.T) {
	svc, repo := newMonedaSvc()
	repo.seed("USD", "1", true)
	repo.seed("GTQ", "0.13", false)
	repo.seed("MXN", "0.058", false)

	resp, err := svc.Convertir(context.Background(), empresaID, dto.ConvertirRequest{Monto: dec("100"), Desde: "gtq", Hacia: "MXN"})
	require.NoError(t, err)
	assert.Equal(t, "216.67", resp.Monto.StringFixed(2))
	assert.Equal(t, string(ledger.OutcomeConverted), resp.Resultado)
	assert.Nil(t, resp.Aviso)
}

func TestMonedaConvertir_UnknownCurrencyPassesThroughWithWarning(t *testing.T) {
	svc, repo := newMonedaSvc()
	repo.seed("USD", "1", true)

	resp, err := svc.Convertir(context.Background(), empresaID, dto.ConvertirRequest{Monto: dec("42.5"), Desde: "USD", Hacia: "JPY"})
	require.NoError(t, err)
	assert.Equal(t, "42.50", resp.Monto.StringFixed(2))
	assert.Equal(t, string(ledger.OutcomePassThrough), resp.Resultado)
	require.NotNil(t, resp.Aviso)
}

func TestMonedaActualizarTasas_SkipsBaseAndUnknown(t *testing.T) {
	svc, repo := newMonedaSvc()
	repo.seed("USD", "1", true)
	gtq := repo.seed("GTQ", "0.13", false)
	mxn := repo.seed("MXN", "0.058", false)

	n, err := svc.ActualizarTasas(context.Background(), empresaID, map[string]decimal.Decimal{
		"usd": dec("2"),     // base, ignored
		"gtq": dec("0.129"), // changed
		"MXN": dec("0.058"), // unchanged
		"BRL": dec("0.2"),   // not registered
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, _ := repo.FindByID(context.Background(), empresaID, gtq.ID)
	assert.Equal(t, "0.129", stored.TasaVsBase.String())
	stored, _ = repo.FindByID(context.Background(), empresaID, mxn.ID)
	assert.Nil(t, stored.TasaActualizadaAt)
}
