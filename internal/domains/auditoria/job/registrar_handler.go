package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"comercial-backend/internal/domains/auditoria/service"
	"comercial-backend/internal/shared"
	"comercial-backend/pkg/logger"
)

// RegistrarHandler persiste los eventos de auditoría que llegan por la cola.
// Los servicios encolan y siguen; este worker es el único que escribe la bitácora.
type RegistrarHandler struct {
	service service.ServiceInterface
}

func NewRegistrarHandler(service service.ServiceInterface) *RegistrarHandler {
	return &RegistrarHandler{service: service}
}

func (h *RegistrarHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.RegistrarAuditoriaPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload de auditoría: %w", err)
	}

	evento, err := h.service.RegistrarDesdeCola(ctx, payload)
	if err != nil {
		logger.Error("No se pudo persistir el evento de auditoría", err)
		return fmt.Errorf("registrar evento de auditoría: %w", err)
	}

	logger.Info("Evento de auditoría registrado", map[string]interface{}{
		"id":     evento.ID,
		"accion": evento.Accion,
	})

	return nil
}
