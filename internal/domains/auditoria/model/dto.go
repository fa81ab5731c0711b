package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RegistrarEventoRequest registra un evento manual en la bitácora
type RegistrarEventoRequest struct {
	Accion    string  `json:"accion"`
	Usuario   *string `json:"usuario"`
	Entidad   *string `json:"entidad"`
	EntidadID *int64  `json:"entidad_id"`
	Detalle   *string `json:"detalle"`
}

func (r *RegistrarEventoRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Accion,
			validation.Required.Error("La acción es obligatoria"),
			validation.Length(1, 120),
		),
	)
}

// EventoFiltros acota el listado de la bitácora
type EventoFiltros struct {
	Usuario   *string
	Accion    *string
	Entidad   *string
	EntidadID *int64
}

// ListaEventos es la página de resultados del listado
type ListaEventos struct {
	Items  []*Evento `json:"items"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}
