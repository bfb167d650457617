package handler

import (
	"net/http"

	"kairo/internal/apierror"
	"kairo/internal/dto"
	"kairo/internal/middleware"
	"kairo/internal/service"

	"github.com/gin-gonic/gin"
)

type CuentasHandler struct{ svc service.CuentaService }

func NewCuentasHandler(svc service.CuentaService) *CuentasHandler { return &CuentasHandler{svc: svc} }

// Crear godoc
// @Summary      Emitir cuenta por cobrar o por pagar
// @Description  Crea la cuenta con saldo igual al total. La contraparte debe ser cliente (por_cobrar) o proveedor (por_pagar).
// @Tags         cuentas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CrearCuentaRequest true "Cuenta"
// @Success      201  {object} dto.CuentaResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/cuentas [post]
func (h *CuentasHandler) Crear(c *gin.Context) {
	var req dto.CrearCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetEmpresaID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar cuentas
// @Tags         cuentas
// @Produce      json
// @Security     BearerAuth
// @Param        tipo           query    string false "por_cobrar | por_pagar"
// @Param        estado         query    string false "abierta | pago_parcial | saldada | anulada | vencida"
// @Param        contraparte_id query    string false "UUID"
// @Param        moneda_id      query    string false "UUID"
// @Param        page           query    int    false "Página"
// @Param        limit          query    int    false "Tamaño de página (máx 100)"
// @Success      200            {object} dto.CuentaListResponse
// @Router       /v1/cuentas [get]
func (h *CuentasHandler) Listar(c *gin.Context) {
	var filter dto.CuentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetEmpresaID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener cuenta con sus abonos
// @Tags         cuentas
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID de la cuenta"
// @Success      200 {object} dto.CuentaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/cuentas/{id} [get]
func (h *CuentasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), middleware.GetEmpresaID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AplicarAbono godoc
// @Summary      Aplicar abono
// @Description  Convierte el pago a la moneda de la cuenta y lo descuenta del saldo. Un sobrepago se rechaza o se ajusta según POLITICA_SOBREPAGO.
// @Tags         cuentas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                  true "UUID de la cuenta"
// @Param        body body     dto.AplicarAbonoRequest true "Abono"
// @Success      201  {object} dto.AplicarAbonoResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/cuentas/{id}/abonos [post]
func (h *CuentasHandler) AplicarAbono(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AplicarAbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AplicarAbono(c.Request.Context(), middleware.GetEmpresaID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RevertirAbono godoc
// @Summary      Revertir abono
// @Description  Restituye exactamente el monto aplicado. Revertir dos veces devuelve 404.
// @Tags         cuentas
// @Produce      json
// @Security     BearerAuth
// @Param        id       path     string true "UUID de la cuenta"
// @Param        abono_id path     string true "UUID del abono"
// @Success      200      {object} dto.CuentaResponse
// @Failure      404      {object} apierror.APIError
// @Router       /v1/cuentas/{id}/abonos/{abono_id} [delete]
func (h *CuentasHandler) RevertirAbono(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	abonoID, ok := paramUUID(c, "abono_id")
	if !ok {
		return
	}
	resp, err := h.svc.RevertirAbono(c.Request.Context(), middleware.GetEmpresaID(c), id, abonoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Anular godoc
// @Summary      Anular cuenta
// @Description  Solo cuentas sin abonos y con saldo pendiente.
// @Tags         cuentas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                  true "UUID de la cuenta"
// @Param        body body     dto.AnularCuentaRequest true "Motivo"
// @Success      200  {object} dto.CuentaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/cuentas/{id}/anular [post]
func (h *CuentasHandler) Anular(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AnularCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), middleware.GetEmpresaID(c), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Antiguedad godoc
// @Summary      Reporte de antigüedad de saldos
// @Tags         cuentas
// @Produce      json
// @Security     BearerAuth
// @Param        tipo query    string false "por_cobrar | por_pagar"
// @Success      200  {object} dto.AntiguedadResponse
// @Router       /v1/cuentas/antiguedad [get]
func (h *CuentasHandler) Antiguedad(c *gin.Context) {
	tipo, ok := tipoQuery(c)
	if !ok {
		return
	}
	resp, err := h.svc.Antiguedad(c.Request.Context(), middleware.GetEmpresaID(c), tipo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary      Resumen de saldos por contraparte
// @Description  Convierte cada cuenta a la moneda de reporte (la base si se omite) y agrupa por contraparte.
// @Tags         cuentas
// @Produce      json
// @Security     BearerAuth
// @Param        tipo   query    string false "por_cobrar | por_pagar"
// @Param        moneda query    string false "Código o UUID de la moneda de reporte"
// @Success      200    {object} dto.ResumenResponse
// @Router       /v1/cuentas/resumen [get]
func (h *CuentasHandler) Resumen(c *gin.Context) {
	tipo, ok := tipoQuery(c)
	if !ok {
		return
	}
	resp, err := h.svc.ResumenPorContraparte(c.Request.Context(), middleware.GetEmpresaID(c), tipo, c.Query("moneda"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func tipoQuery(c *gin.Context) (string, bool) {
	tipo := c.Query("tipo")
	switch tipo {
	case "", "por_cobrar", "por_pagar":
		return tipo, true
	}
	c.JSON(http.StatusBadRequest, apierror.NewCode("parametros_invalidos", "tipo debe ser por_cobrar o por_pagar"))
	return "", false
}
