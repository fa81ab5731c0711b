package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"comercial-backend/internal/domains/descuento/model"
	"comercial-backend/internal/domains/descuento/service"
	"comercial-backend/internal/shared/response"
	"comercial-backend/pkg/logger"
)

// DescuentoHandler expone los endpoints de cupones y promociones
type DescuentoHandler struct {
	service service.ServiceInterface
}

func NewDescuentoHandler(service service.ServiceInterface) *DescuentoHandler {
	return &DescuentoHandler{service: service}
}

// -------------------------------------------------------------------
// APLICACIÓN
// -------------------------------------------------------------------

// AplicarDescuento valida un código contra una compra
// POST /v1/descuentos/aplicar
func (h *DescuentoHandler) AplicarDescuento(c *gin.Context) {
	var req model.AplicarDescuentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	resultado, err := h.service.AplicarDescuento(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resultado)
}

// RegistrarUso consume un cupo al confirmarse la venta
// POST /v1/descuentos/usos
func (h *DescuentoHandler) RegistrarUso(c *gin.Context) {
	var req model.RegistrarUsoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	var ipCliente *string
	if ip := c.GetString("client_ip"); ip != "" {
		ipCliente = &ip
	}

	uso, err := h.service.RegistrarUso(c.Request.Context(), &req, ipCliente)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, uso)
}

// GET /v1/admin/descuentos/:id/usos
func (h *DescuentoHandler) ListarUsos(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID de descuento inválido")
		return
	}

	skip, limit := parsePaginacion(c)

	usos, err := h.service.ListarUsos(c.Request.Context(), id, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, usos)
}

// -------------------------------------------------------------------
// CRUD
// -------------------------------------------------------------------

// POST /v1/admin/descuentos
func (h *DescuentoHandler) CrearDescuento(c *gin.Context) {
	var req model.CrearDescuentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	descuento, err := h.service.CrearDescuento(c.Request.Context(), &req, usuarioActual(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, descuento)
}

// GET /v1/admin/descuentos
func (h *DescuentoHandler) ListarDescuentos(c *gin.Context) {
	filtros := parseFiltros(c)
	skip, limit := parsePaginacion(c)

	descuentos, err := h.service.ListarDescuentos(c.Request.Context(), filtros, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, descuentos)
}

// ListarDisponibles expone los cupones que un cliente puede usar ahora:
// activos y dentro de su ventana de vigencia.
// GET /v1/descuentos/disponibles
func (h *DescuentoHandler) ListarDisponibles(c *gin.Context) {
	esActivo := true
	estado := model.EstadoActivo
	filtros := &model.DescuentoFiltros{
		Estado:       &estado,
		EsActivo:     &esActivo,
		SoloVigentes: true,
	}
	if v := c.Query("cliente_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filtros.ClienteID = &id
		}
	}
	skip, limit := parsePaginacion(c)

	descuentos, err := h.service.ListarDescuentos(c.Request.Context(), filtros, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, descuentos)
}

// GET /v1/descuentos/codigo/:codigo
func (h *DescuentoHandler) ObtenerPorCodigo(c *gin.Context) {
	codigo := c.Param("codigo")
	if codigo == "" {
		response.BadRequest(c, "Código de descuento requerido")
		return
	}

	d, err := h.service.ObtenerDescuentoPorCodigo(c.Request.Context(), codigo)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if d == nil {
		response.NotFound(c, "Código de descuento no encontrado")
		return
	}

	response.Success(c, http.StatusOK, d)
}

// GET /v1/admin/descuentos/:id
func (h *DescuentoHandler) ObtenerDescuento(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID de descuento inválido")
		return
	}

	descuento, err := h.service.ObtenerDescuento(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, descuento)
}

// PUT /v1/admin/descuentos/:id
func (h *DescuentoHandler) ActualizarDescuento(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID de descuento inválido")
		return
	}

	var req model.ActualizarDescuentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	descuento, err := h.service.ActualizarDescuento(c.Request.Context(), id, &req, usuarioActual(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, descuento)
}

// -------------------------------------------------------------------
// ESTADÍSTICAS Y BARRIDO
// -------------------------------------------------------------------

// GET /v1/admin/descuentos/estadisticas
func (h *DescuentoHandler) ObtenerEstadisticas(c *gin.Context) {
	stats, err := h.service.ObtenerEstadisticas(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// POST /v1/admin/descuentos/actualizar-estados
func (h *DescuentoHandler) ActualizarEstados(c *gin.Context) {
	resultado, err := h.service.ActualizarEstadosDescuentos(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resultado)
}

// -------------------------------------------------------------------
// PROMOCIONES
// -------------------------------------------------------------------

// POST /v1/admin/promociones
func (h *DescuentoHandler) CrearPromocion(c *gin.Context) {
	var req model.CrearPromocionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	promocion, err := h.service.CrearPromocion(c.Request.Context(), &req, usuarioActual(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, promocion)
}

// GET /v1/promociones
func (h *DescuentoHandler) ListarPromociones(c *gin.Context) {
	soloActivas := c.DefaultQuery("solo_activas", "true") == "true"
	skip, limit := parsePaginacion(c)

	promociones, err := h.service.ListarPromociones(c.Request.Context(), soloActivas, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, promociones)
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

func (h *DescuentoHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		response.UnprocessableEntity(c, "Datos inválidos", validationErrs)
		return
	}

	if errors.Is(err, model.ErrDescuentoAgotado) {
		response.ErrorResponse(c, http.StatusConflict, string(model.ErrCodeDescuentoAgotado), "El descuento ha alcanzado su límite de usos")
		return
	}

	var appErr *model.AppError
	if errors.As(err, &appErr) {
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
		return
	}

	logger.Error("Error no manejado en descuentos", err)
	response.InternalServerError(c, "Error interno")
}

func usuarioActual(c *gin.Context) *int64 {
	v, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func parseFiltros(c *gin.Context) *model.DescuentoFiltros {
	filtros := &model.DescuentoFiltros{}

	if v := c.Query("codigo"); v != "" {
		filtros.Codigo = &v
	}
	if v := c.Query("tipo"); v != "" {
		filtros.Tipo = &v
	}
	if v := c.Query("estado"); v != "" {
		filtros.Estado = &v
	}
	if v := c.Query("es_activo"); v != "" {
		activo := v == "true"
		filtros.EsActivo = &activo
	}
	if v := c.Query("fecha_desde"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filtros.FechaDesde = &t
		}
	}
	if v := c.Query("fecha_hasta"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filtros.FechaHasta = &t
		}
	}
	if v := c.Query("cliente_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filtros.ClienteID = &id
		}
	}
	if v := c.Query("producto_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filtros.ProductoID = &id
		}
	}

	return filtros
}

func parsePaginacion(c *gin.Context) (int, int) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	return skip, limit
}
