package model

import "time"

// Acciones reconocidas en la bitácora
const (
	AccionCrear      = "CREATE"
	AccionActualizar = "UPDATE"
	AccionEliminar   = "DELETE"
)

// Evento es un asiento de la bitácora de auditoría. Se escribe una vez
// y nunca se modifica.
type Evento struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
	Usuario   *string   `json:"usuario,omitempty"`
	Accion    string    `json:"accion"`
	Entidad   *string   `json:"entidad,omitempty"`
	EntidadID *int64    `json:"entidad_id,omitempty"`
	Detalle   *string   `json:"detalle,omitempty"`
	IPAddress *string   `json:"ip_address,omitempty"`
}
