package main

import (
	"github.com/hibiken/asynq"

	auditoriaJob "comercial-backend/internal/domains/auditoria/job"
	descuentoJob "comercial-backend/internal/domains/descuento/job"
	"comercial-backend/internal/shared"
	"comercial-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	actualizarEstados  *descuentoJob.ActualizarEstadosHandler
	registrarAuditoria *auditoriaJob.RegistrarHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		actualizarEstados:  descuentoJob.NewActualizarEstadosHandler(c.DescuentoService),
		registrarAuditoria: auditoriaJob.NewRegistrarHandler(c.AuditoriaService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeActualizarEstadosDescuentos, h.actualizarEstados.ProcessTask)
	mux.HandleFunc(shared.TypeRegistrarAuditoria, h.registrarAuditoria.ProcessTask)
}
