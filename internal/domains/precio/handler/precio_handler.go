package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"comercial-backend/internal/domains/precio/model"
	"comercial-backend/internal/domains/precio/service"
	"comercial-backend/internal/shared/response"
	"comercial-backend/pkg/logger"
)

// PrecioHandler expone los endpoints de precios dinámicos
type PrecioHandler struct {
	service service.ServiceInterface
}

func NewPrecioHandler(service service.ServiceInterface) *PrecioHandler {
	return &PrecioHandler{service: service}
}

// -------------------------------------------------------------------
// RESOLUCIÓN
// -------------------------------------------------------------------

// AplicarPrecio resuelve y registra el mejor precio para una línea de venta
// POST /v1/precios/aplicar
func (h *PrecioHandler) AplicarPrecio(c *gin.Context) {
	var req model.AplicarPrecioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	resultado, err := h.service.AplicarPrecioDinamico(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resultado)
}

// SimularPrecio corre la resolución sin dejar rastro
// POST /v1/precios/simular
func (h *PrecioHandler) SimularPrecio(c *gin.Context) {
	var req model.SimularPrecioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	resultado, err := h.service.SimularPrecio(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resultado)
}

// -------------------------------------------------------------------
// REGLAS DE PRODUCTO
// -------------------------------------------------------------------

// CrearPrecioProducto crea una regla de precio de producto (admin)
// POST /v1/admin/precios/producto
func (h *PrecioHandler) CrearPrecioProducto(c *gin.Context) {
	var req model.CrearPrecioProductoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	precio, err := h.service.CrearPrecioProducto(c.Request.Context(), &req, usuarioActual(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, precio)
}

// ListarPreciosProducto lista reglas con filtros opcionales
// GET /v1/precios/producto
func (h *PrecioHandler) ListarPreciosProducto(c *gin.Context) {
	filtros := parseFiltros(c)
	skip, limit := parsePaginacion(c)

	precios, err := h.service.ListarPreciosProducto(c.Request.Context(), filtros, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, precios)
}

// ActualizarPrecioProducto actualiza parcialmente una regla (admin)
// PUT /v1/admin/precios/producto/:id
func (h *PrecioHandler) ActualizarPrecioProducto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID de precio inválido")
		return
	}

	var req model.ActualizarPrecioProductoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	precio, err := h.service.ActualizarPrecioProducto(c.Request.Context(), id, &req, usuarioActual(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, precio)
}

// -------------------------------------------------------------------
// REGLAS POR VOLUMEN
// -------------------------------------------------------------------

// POST /v1/admin/precios/volumen
func (h *PrecioHandler) CrearPrecioVolumen(c *gin.Context) {
	var req model.CrearPrecioVolumenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	precio, err := h.service.CrearPrecioVolumen(c.Request.Context(), &req, usuarioActual(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, precio)
}

// GET /v1/precios/volumen
func (h *PrecioHandler) ListarPreciosVolumen(c *gin.Context) {
	filtros := parseFiltros(c)
	skip, limit := parsePaginacion(c)

	precios, err := h.service.ListarPreciosVolumen(c.Request.Context(), filtros, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, precios)
}

// -------------------------------------------------------------------
// REGLAS POR CATEGORÍA
// -------------------------------------------------------------------

// POST /v1/admin/precios/categoria
func (h *PrecioHandler) CrearPrecioCategoria(c *gin.Context) {
	var req model.CrearPrecioCategoriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	precio, err := h.service.CrearPrecioCategoria(c.Request.Context(), &req, usuarioActual(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, precio)
}

// GET /v1/precios/categoria
func (h *PrecioHandler) ListarPreciosCategoria(c *gin.Context) {
	filtros := parseFiltros(c)
	skip, limit := parsePaginacion(c)

	precios, err := h.service.ListarPreciosCategoria(c.Request.Context(), filtros, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, precios)
}

// -------------------------------------------------------------------
// REGLAS ESTACIONALES
// -------------------------------------------------------------------

// POST /v1/admin/precios/estacionales
func (h *PrecioHandler) CrearPrecioEstacional(c *gin.Context) {
	var req model.CrearPrecioEstacionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	precio, err := h.service.CrearPrecioEstacional(c.Request.Context(), &req, usuarioActual(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, precio)
}

// GET /v1/precios/estacionales
func (h *PrecioHandler) ListarPreciosEstacionales(c *gin.Context) {
	filtros := parseFiltros(c)
	skip, limit := parsePaginacion(c)

	precios, err := h.service.ListarPreciosEstacionales(c.Request.Context(), filtros, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, precios)
}

// -------------------------------------------------------------------
// TRAZABILIDAD Y AGREGADOS
// -------------------------------------------------------------------

// GET /v1/precios/historial
func (h *PrecioHandler) ObtenerHistorial(c *gin.Context) {
	var productoID *int64
	if v := c.Query("producto_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "producto_id inválido")
			return
		}
		productoID = &id
	}

	skip, limit := parsePaginacion(c)

	historial, err := h.service.ObtenerHistorial(c.Request.Context(), productoID, skip, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, historial)
}

// GET /v1/precios/aplicados/:venta_id
func (h *PrecioHandler) ObtenerPreciosAplicados(c *gin.Context) {
	ventaID, err := strconv.ParseInt(c.Param("venta_id"), 10, 64)
	if err != nil || ventaID <= 0 {
		response.BadRequest(c, "ID de venta inválido")
		return
	}

	aplicados, err := h.service.ObtenerPreciosAplicados(c.Request.Context(), ventaID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, aplicados)
}

// GET /v1/precios/resumen
func (h *PrecioHandler) ObtenerResumen(c *gin.Context) {
	resumen, err := h.service.ObtenerResumen(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resumen)
}

// GET /v1/precios/estadisticas
func (h *PrecioHandler) ObtenerEstadisticas(c *gin.Context) {
	stats, err := h.service.ObtenerEstadisticas(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

func (h *PrecioHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		response.UnprocessableEntity(c, "Datos inválidos", validationErrs)
		return
	}

	var appErr *model.AppError
	if errors.As(err, &appErr) {
		response.ErrorResponse(c, appErr.HTTPStatus, string(appErr.Code), appErr.Message)
		return
	}

	logger.Error("Error no manejado en precios", err)
	response.InternalServerError(c, "Error interno")
}

// usuarioActual extrae el user_id numérico que dejó el middleware de auth
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

func parseFiltros(c *gin.Context) *model.PrecioFiltros {
	filtros := &model.PrecioFiltros{}

	if v := c.Query("producto_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filtros.ProductoID = &id
		}
	}
	if v := c.Query("cliente_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filtros.ClienteID = &id
		}
	}
	if v := c.Query("categoria_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filtros.CategoriaID = &id
		}
	}
	if v := c.Query("tipo"); v != "" {
		filtros.Tipo = &v
	}
	if v := c.Query("estado"); v != "" {
		filtros.Estado = &v
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
	filtros.SoloActivos = c.Query("solo_activos") == "true"
	filtros.SoloVigentes = c.Query("solo_vigentes") == "true"

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
