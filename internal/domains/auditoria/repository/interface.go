package repository

import (
	"context"

	"comercial-backend/internal/domains/auditoria/model"
)

// AuditoriaRepository define el acceso a la bitácora de auditoría
type AuditoriaRepository interface {
	Registrar(ctx context.Context, e *model.Evento) (*model.Evento, error)
	Listar(ctx context.Context, filtros *model.EventoFiltros, offset, limit int) ([]*model.Evento, error)
	Obtener(ctx context.Context, id int64) (*model.Evento, error)
	Eliminar(ctx context.Context, id int64) error
}
