package service

import (
	"context"

	"comercial-backend/internal/domains/auditoria/model"
	"comercial-backend/internal/domains/auditoria/repository"
	"comercial-backend/internal/shared"
)

// ServiceInterface define la lógica de negocio de la bitácora
type ServiceInterface interface {
	RegistrarEvento(ctx context.Context, req *model.RegistrarEventoRequest, ip *string) (*model.Evento, error)
	// RegistrarDesdeCola persiste un evento llegado por la cola de trabajos
	RegistrarDesdeCola(ctx context.Context, payload shared.RegistrarAuditoriaPayload) (*model.Evento, error)
	ListarEventos(ctx context.Context, filtros *model.EventoFiltros, offset, limit int) (*model.ListaEventos, error)
	ObtenerEvento(ctx context.Context, id int64) (*model.Evento, error)
	EliminarEvento(ctx context.Context, id int64) error
}

// AuditoriaService implementa ServiceInterface
type AuditoriaService struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaService(repo repository.AuditoriaRepository) ServiceInterface {
	return &AuditoriaService{repo: repo}
}

func (s *AuditoriaService) RegistrarEvento(ctx context.Context, req *model.RegistrarEventoRequest, ip *string) (*model.Evento, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	e := &model.Evento{
		Usuario:   req.Usuario,
		Accion:    req.Accion,
		Entidad:   req.Entidad,
		EntidadID: req.EntidadID,
		Detalle:   req.Detalle,
		IPAddress: ip,
	}

	return s.repo.Registrar(ctx, e)
}

func (s *AuditoriaService) RegistrarDesdeCola(ctx context.Context, payload shared.RegistrarAuditoriaPayload) (*model.Evento, error) {
	e := &model.Evento{
		Accion: payload.Accion,
	}
	if payload.Usuario != "" {
		e.Usuario = &payload.Usuario
	}
	if payload.Entidad != "" {
		e.Entidad = &payload.Entidad
	}
	if payload.EntidadID != 0 {
		e.EntidadID = &payload.EntidadID
	}
	if payload.Detalle != "" {
		e.Detalle = &payload.Detalle
	}
	if payload.IPAddress != "" {
		e.IPAddress = &payload.IPAddress
	}

	return s.repo.Registrar(ctx, e)
}

func (s *AuditoriaService) ListarEventos(ctx context.Context, filtros *model.EventoFiltros, offset, limit int) (*model.ListaEventos, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.Listar(ctx, filtros, offset, limit)
	if err != nil {
		return nil, err
	}

	return &model.ListaEventos{
		Items:  items,
		Offset: offset,
		Limit:  limit,
	}, nil
}

func (s *AuditoriaService) ObtenerEvento(ctx context.Context, id int64) (*model.Evento, error) {
	return s.repo.Obtener(ctx, id)
}

func (s *AuditoriaService) EliminarEvento(ctx context.Context, id int64) error {
	return s.repo.Eliminar(ctx, id)
}
