package handler

import (
	"errors"
	"net/http"
	"reflect"

	"kairo/internal/apierror"
	"kairo/internal/ledger"
	"kairo/internal/middleware"
	"kairo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal validates as a float so that min/gt tags work on money fields.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs validator tags. On failure it
// writes the response and returns false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("json_invalido", "JSON invalido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametros_invalidos", "Parametros invalidos: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.NewCode("validacion", err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses a path parameter, writing a 400 when malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCode("id_invalido", "ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

type errorKind struct {
	target error
	status int
	code   string
}

// errorKinds maps every domain error to its HTTP status and stable code.
// Order matters only for wrapped chains; kinds are disjoint today.
var errorKinds = []errorKind{
	{service.ErrNotFound, http.StatusNotFound, "no_encontrado"},
	{ledger.ErrPaymentNotFound, http.StatusNotFound, "abono_no_encontrado"},
	{ledger.ErrOverpayment, http.StatusConflict, "sobrepago"},
	{ledger.ErrVoidAccount, http.StatusConflict, "cuenta_anulada"},
	{ledger.ErrAccountSettled, http.StatusConflict, "cuenta_saldada"},
	{ledger.ErrAccountHasPayments, http.StatusConflict, "cuenta_con_abonos"},
	{ledger.ErrAmbiguousBaseCurrency, http.StatusConflict, "moneda_base_ambigua"},
	{service.ErrDuplicateCode, http.StatusConflict, "codigo_duplicado"},
	{service.ErrBaseCurrencyLocked, http.StatusConflict, "moneda_base_bloqueada"},
	{ledger.ErrMissingBaseCurrency, http.StatusUnprocessableEntity, "moneda_base_faltante"},
	{ledger.ErrInvalidRate, http.StatusUnprocessableEntity, "tasa_invalida"},
	{ledger.ErrInvalidAmount, http.StatusUnprocessableEntity, "monto_invalido"},
	{ledger.ErrUnresolvedCurrency, http.StatusUnprocessableEntity, "moneda_desconocida"},
	{ledger.ErrMixedCurrencies, http.StatusUnprocessableEntity, "monedas_mezcladas"},
	{service.ErrInactiveCurrency, http.StatusUnprocessableEntity, "moneda_inactiva"},
	{service.ErrContraparteInvalida, http.StatusUnprocessableEntity, "contraparte_invalida"},
	{service.ErrFechasInvalidas, http.StatusUnprocessableEntity, "fechas_invalidas"},
	{service.ErrIDInvalido, http.StatusBadRequest, "id_invalido"},
}

// respondError writes the mapped status for domain errors. Anything else is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			c.JSON(k.status, apierror.NewCode(k.code, err.Error()))
			return
		}
	}
	log.Error().Err(err).
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.FullPath()).
		Msg("handler: unexpected error")
	c.JSON(http.StatusInternalServerError, apierror.NewCode("interno", "Error interno del servidor"))
}
