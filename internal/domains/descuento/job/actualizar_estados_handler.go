package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"comercial-backend/internal/domains/descuento/service"
	"comercial-backend/pkg/logger"
)

// ActualizarEstadosHandler ejecuta el barrido periódico de estados de cupones.
// Expira los vencidos y reactiva los inactivos cuya ventana ya abrió.
type ActualizarEstadosHandler struct {
	service service.ServiceInterface
}

func NewActualizarEstadosHandler(service service.ServiceInterface) *ActualizarEstadosHandler {
	return &ActualizarEstadosHandler{service: service}
}

func (h *ActualizarEstadosHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	inicio := time.Now()

	logger.Info("Iniciando barrido de estados de descuentos", map[string]interface{}{
		"started_at": inicio,
	})

	resultado, err := h.service.ActualizarEstadosDescuentos(ctx)
	if err != nil {
		logger.Error("Fallo el barrido de estados de descuentos", err)
		return fmt.Errorf("actualizar estados de descuentos: %w", err)
	}

	logger.Info("Barrido de estados de descuentos terminado", map[string]interface{}{
		"expirados":   resultado.Expirados,
		"reactivados": resultado.Reactivados,
		"total":       resultado.Total,
		"duration":    time.Since(inicio).String(),
	})

	return nil
}
