package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"comercial-backend/internal/shared"
)

// Client envuelve el cliente de asynq con los encolados que usan los
// servicios. Implementa las interfaces AuditPublisher de cada dominio.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddress, password string, db int) *Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddress,
		Password: password,
		DB:       db,
	})

	return &Client{client: client}
}

// EncolarAuditoria manda el evento a la cola de auditoría. El worker es el
// único que escribe la bitácora; acá solo se encola y se sigue.
func (c *Client) EncolarAuditoria(ctx context.Context, payload shared.RegistrarAuditoriaPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload de auditoría: %w", err)
	}

	task := asynq.NewTask(shared.TypeRegistrarAuditoria, data)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueAuditoria),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("encolar auditoría: %w", err)
	}

	return nil
}

// EncolarActualizarEstados dispara el barrido de estados a demanda,
// fuera del cron del scheduler.
func (c *Client) EncolarActualizarEstados(ctx context.Context) error {
	data, err := json.Marshal(shared.ActualizarEstadosPayload{})
	if err != nil {
		return fmt.Errorf("marshal payload de barrido: %w", err)
	}

	task := asynq.NewTask(shared.TypeActualizarEstadosDescuentos, data)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueDescuento),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("encolar barrido de estados: %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
