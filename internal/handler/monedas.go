package handler

import (
	"net/http"

	"kairo/internal/dto"
	"kairo/internal/middleware"
	"kairo/internal/service"

	"github.com/gin-gonic/gin"
)

type MonedasHandler struct{ svc service.MonedaService }

func NewMonedasHandler(svc service.MonedaService) *MonedasHandler { return &MonedasHandler{svc: svc} }

// Listar godoc
// @Summary      Listar monedas
// @Description  Retorna el registro completo de monedas de la empresa, incluidas las desactivadas.
// @Tags         monedas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.MonedaResponse
// @Router       /v1/monedas [get]
func (h *MonedasHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetEmpresaID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary      Crear moneda
// @Description  Registra una moneda. Solo puede existir una moneda base por empresa.
// @Tags         monedas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.CrearMonedaRequest true "Moneda"
// @Success      201  {object} dto.MonedaResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/monedas [post]
func (h *MonedasHandler) Crear(c *gin.Context) {
	var req dto.CrearMonedaRequest
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

// Actualizar godoc
// @Summary      Actualizar moneda
// @Description  Cambia nombre, símbolo, decimales, tasa contra la base o estado. Los abonos ya registrados no se recalculan.
// @Tags         monedas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                      true "UUID de la moneda"
// @Param        body body     dto.ActualizarMonedaRequest true "Campos a cambiar"
// @Success      200  {object} dto.MonedaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/monedas/{id} [put]
func (h *MonedasHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarMonedaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.GetEmpresaID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar godoc
// @Summary      Desactivar moneda
// @Tags         monedas
// @Security     BearerAuth
// @Param        id   path     string true "UUID de la moneda"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/monedas/{id} [delete]
func (h *MonedasHandler) Desactivar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), middleware.GetEmpresaID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Convertir godoc
// @Summary      Convertir monto entre monedas
// @Description  Convierte pasando por la moneda base. Si alguna moneda no existe el monto se devuelve sin convertir con resultado "sin_convertir" y un aviso.
// @Tags         monedas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.ConvertirRequest true "Monto y monedas (id o código)"
// @Success      200  {object} dto.ConvertirResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/monedas/convertir [post]
func (h *MonedasHandler) Convertir(c *gin.Context) {
	var req dto.ConvertirRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Convertir(c.Request.Context(), middleware.GetEmpresaID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
