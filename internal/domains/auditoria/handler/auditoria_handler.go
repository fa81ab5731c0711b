package handler

import (
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"comercial-backend/internal/domains/auditoria/model"
	"comercial-backend/internal/domains/auditoria/service"
	"comercial-backend/internal/shared/response"
	"comercial-backend/pkg/logger"
)

// AuditoriaHandler expone la bitácora de auditoría
type AuditoriaHandler struct {
	service service.ServiceInterface
}

func NewAuditoriaHandler(service service.ServiceInterface) *AuditoriaHandler {
	return &AuditoriaHandler{service: service}
}

// RegistrarEvento registra un evento manual
// POST /v1/admin/auditoria
func (h *AuditoriaHandler) RegistrarEvento(c *gin.Context) {
	var req model.RegistrarEventoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Cuerpo del request inválido")
		return
	}

	var ip *string
	if v := c.GetString("client_ip"); v != "" {
		ip = &v
	}

	evento, err := h.service.RegistrarEvento(c.Request.Context(), &req, ip)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, evento)
}

// ListarEventos pagina la bitácora de más reciente a más antiguo
// GET /v1/admin/auditoria
func (h *AuditoriaHandler) ListarEventos(c *gin.Context) {
	filtros := &model.EventoFiltros{}
	if v := c.Query("usuario"); v != "" {
		filtros.Usuario = &v
	}
	if v := c.Query("accion"); v != "" {
		filtros.Accion = &v
	}
	if v := c.Query("entidad"); v != "" {
		filtros.Entidad = &v
	}
	if v := c.Query("entidad_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filtros.EntidadID = &id
		}
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	lista, err := h.service.ListarEventos(c.Request.Context(), filtros, offset, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, lista)
}

// GET /v1/admin/auditoria/:id
func (h *AuditoriaHandler) ObtenerEvento(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID de evento inválido")
		return
	}

	evento, err := h.service.ObtenerEvento(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, evento)
}

// DELETE /v1/admin/auditoria/:id
func (h *AuditoriaHandler) EliminarEvento(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID de evento inválido")
		return
	}

	if err := h.service.EliminarEvento(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted_id": id})
}

func (h *AuditoriaHandler) handleError(c *gin.Context, err error) {
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

	logger.Error("Error no manejado en auditoría", err)
	response.InternalServerError(c, "Error interno")
}
