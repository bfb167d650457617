package handler

import (
	"net/http"
	"strconv"

	"kairo/internal/apierror"
	"kairo/internal/dto"
	"kairo/internal/middleware"
	"kairo/internal/service"

	"github.com/gin-gonic/gin"
)

type ContrapartesHandler struct{ svc service.ContraparteService }

func NewContrapartesHandler(svc service.ContraparteService) *ContrapartesHandler {
	return &ContrapartesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear contraparte
// @Tags         contrapartes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body     dto.ContraparteRequest true "Cliente o proveedor"
// @Success      201  {object} dto.ContraparteResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/contrapartes [post]
func (h *ContrapartesHandler) Crear(c *gin.Context) {
	var req dto.ContraparteRequest
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
// @Summary      Listar contrapartes activas
// @Tags         contrapartes
// @Produce      json
// @Security     BearerAuth
// @Param        tipo  query    string false "cliente | proveedor"
// @Param        page  query    int    false "Página (default 1)"
// @Param        limit query    int    false "Tamaño de página (default 50)"
// @Success      200   {object} dto.ContraparteListResponse
// @Router       /v1/contrapartes [get]
func (h *ContrapartesHandler) Listar(c *gin.Context) {
	tipo := c.Query("tipo")
	if tipo != "" && tipo != "cliente" && tipo != "proveedor" {
		c.JSON(http.StatusBadRequest, apierror.NewCode("parametros_invalidos", "tipo debe ser cliente o proveedor"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	resp, err := h.svc.Listar(c.Request.Context(), middleware.GetEmpresaID(c), tipo, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener contraparte
// @Tags         contrapartes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "UUID"
// @Success      200 {object} dto.ContraparteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/contrapartes/{id} [get]
func (h *ContrapartesHandler) ObtenerPorID(c *gin.Context) {
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

// Eliminar godoc
// @Summary      Desactivar contraparte
// @Tags         contrapartes
// @Security     BearerAuth
// @Param        id  path string true "UUID"
// @Success      204
// @Router       /v1/contrapartes/{id} [delete]
func (h *ContrapartesHandler) Eliminar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetEmpresaID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
