package service

import (
	"context"

	"comercial-backend/internal/domains/descuento/model"
)

// ServiceInterface define la lógica de negocio de cupones y promociones
type ServiceInterface interface {
	CrearDescuento(ctx context.Context, req *model.CrearDescuentoRequest, creadoPor *int64) (*model.Descuento, error)
	ObtenerDescuento(ctx context.Context, id int64) (*model.Descuento, error)
	ObtenerDescuentoPorCodigo(ctx context.Context, codigo string) (*model.Descuento, error)
	ListarDescuentos(ctx context.Context, filtros *model.DescuentoFiltros, skip, limit int) ([]*model.Descuento, error)
	ActualizarDescuento(ctx context.Context, id int64, req *model.ActualizarDescuentoRequest, usuarioID *int64) (*model.Descuento, error)

	// AplicarDescuento evalúa un código contra una compra sin consumir usos
	AplicarDescuento(ctx context.Context, req *model.AplicarDescuentoRequest) (*model.DescuentoResultado, error)
	// RegistrarUso consume un cupo del descuento y deja el asiento en el libro
	RegistrarUso(ctx context.Context, req *model.RegistrarUsoRequest, ipCliente *string) (*model.DescuentoUso, error)
	ListarUsos(ctx context.Context, descuentoID int64, skip, limit int) ([]*model.DescuentoUso, error)

	ObtenerEstadisticas(ctx context.Context) (*model.DescuentoEstadisticas, error)
	ActualizarEstadosDescuentos(ctx context.Context) (*model.ResultadoBarrido, error)

	CrearPromocion(ctx context.Context, req *model.CrearPromocionRequest, creadoPor *int64) (*model.Promocion, error)
	ListarPromociones(ctx context.Context, soloActivas bool, skip, limit int) ([]*model.Promocion, error)
}
