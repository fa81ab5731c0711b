package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercial-backend/internal/domains/auditoria/model"
	"comercial-backend/internal/shared"
)

type fakeAuditoriaRepo struct {
	eventos []*model.Evento
}

func (f *fakeAuditoriaRepo) Registrar(ctx context.Context, e *model.Evento) (*model.Evento, error) {
	e.ID = int64(len(f.eventos) + 1)
	e.Timestamp = time.Now().UTC()
	f.eventos = append(f.eventos, e)
	return e, nil
}

func (f *fakeAuditoriaRepo) Listar(ctx context.Context, filtros *model.EventoFiltros, offset, limit int) ([]*model.Evento, error) {
	return f.eventos, nil
}

func (f *fakeAuditoriaRepo) Obtener(ctx context.Context, id int64) (*model.Evento, error) {
	for _, e := range f.eventos {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, model.ErrEventoNotFound
}

func (f *fakeAuditoriaRepo) Eliminar(ctx context.Context, id int64) error {
	for i, e := range f.eventos {
		if e.ID == id {
			f.eventos = append(f.eventos[:i], f.eventos[i+1:]...)
			return nil
		}
	}
	return model.ErrEventoNotFound
}

func TestRegistrarEvento_RequiereAccion(t *testing.T) {
	svc := NewAuditoriaService(&fakeAuditoriaRepo{})

	_, err := svc.RegistrarEvento(context.Background(), &model.RegistrarEventoRequest{}, nil)
	assert.Error(t, err)
}

func TestRegistrarDesdeCola_OmiteCamposVacios(t *testing.T) {
	repo := &fakeAuditoriaRepo{}
	svc := NewAuditoriaService(repo)

	e, err := svc.RegistrarDesdeCola(context.Background(), shared.RegistrarAuditoriaPayload{
		Accion: "crear_descuento",
	})
	require.NoError(t, err)

	assert.Equal(t, "crear_descuento", e.Accion)
	assert.Nil(t, e.Usuario)
	assert.Nil(t, e.Entidad)
	assert.Nil(t, e.EntidadID)
	assert.Nil(t, e.IPAddress)
}

func TestRegistrarDesdeCola_MapeaElPayloadCompleto(t *testing.T) {
	repo := &fakeAuditoriaRepo{}
	svc := NewAuditoriaService(repo)

	e, err := svc.RegistrarDesdeCola(context.Background(), shared.RegistrarAuditoriaPayload{
		Usuario:   "usuario:7",
		Accion:    "usar_descuento",
		Entidad:   "descuento",
		EntidadID: 12,
		Detalle:   "Descuento PROMO10 usado",
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)

	require.NotNil(t, e.Usuario)
	assert.Equal(t, "usuario:7", *e.Usuario)
	require.NotNil(t, e.EntidadID)
	assert.Equal(t, int64(12), *e.EntidadID)
	require.NotNil(t, e.IPAddress)
	assert.Equal(t, "10.0.0.1", *e.IPAddress)
}

func TestListarEventos_NormalizaPaginacion(t *testing.T) {
	repo := &fakeAuditoriaRepo{}
	svc := NewAuditoriaService(repo)

	lista, err := svc.ListarEventos(context.Background(), nil, -5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, lista.Offset)
	assert.Equal(t, 50, lista.Limit)

	lista, err = svc.ListarEventos(context.Background(), nil, 10, 500)
	require.NoError(t, err)
	assert.Equal(t, 10, lista.Offset)
	assert.Equal(t, 50, lista.Limit)
}

func TestEliminarEvento(t *testing.T) {
	repo := &fakeAuditoriaRepo{}
	svc := NewAuditoriaService(repo)

	e, err := svc.RegistrarDesdeCola(context.Background(), shared.RegistrarAuditoriaPayload{Accion: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.EliminarEvento(context.Background(), e.ID))

	_, err = svc.ObtenerEvento(context.Background(), e.ID)
	assert.Error(t, err)
}
