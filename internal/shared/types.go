package shared

import "time"

// Task types de asynq
const (
	TypeActualizarEstadosDescuentos = "descuento:actualizar_estados"
	TypeRegistrarAuditoria          = "auditoria:registrar"
)

// Queues
const (
	QueueDescuento = "descuento"
	QueueAuditoria = "auditoria"
)

// ActualizarEstadosPayload es el payload del barrido periódico de estados.
// No lleva datos: el job relee todo desde la base.
type ActualizarEstadosPayload struct{}

// RegistrarAuditoriaPayload transporta una entrada de auditoría
// desde la API hacia el worker que la persiste.
type RegistrarAuditoriaPayload struct {
	Usuario   string    `json:"usuario"`
	Accion    string    `json:"accion"`
	Entidad   string    `json:"entidad"`
	EntidadID int64     `json:"entidad_id"`
	Detalle   string    `json:"detalle"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
}
