package service

import (
	"context"

	"comercial-backend/internal/domains/precio/model"
)

type ServiceInterface interface {
	// Resolución de precios
	AplicarPrecioDinamico(ctx context.Context, req *model.AplicarPrecioRequest) (*model.AplicarPrecioResponse, error)
	SimularPrecio(ctx context.Context, req *model.SimularPrecioRequest) (*model.AplicarPrecioResponse, error)

	// Reglas de producto
	CrearPrecioProducto(ctx context.Context, req *model.CrearPrecioProductoRequest, creadoPor *int64) (*model.PrecioProducto, error)
	ListarPreciosProducto(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioProducto, error)
	ActualizarPrecioProducto(ctx context.Context, id int64, req *model.ActualizarPrecioProductoRequest, usuarioID *int64) (*model.PrecioProducto, error)

	// Reglas por volumen
	CrearPrecioVolumen(ctx context.Context, req *model.CrearPrecioVolumenRequest, creadoPor *int64) (*model.PrecioVolumen, error)
	ListarPreciosVolumen(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioVolumen, error)

	// Reglas por categoría
	CrearPrecioCategoria(ctx context.Context, req *model.CrearPrecioCategoriaRequest, creadoPor *int64) (*model.PrecioCategoria, error)
	ListarPreciosCategoria(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioCategoria, error)

	// Reglas estacionales
	CrearPrecioEstacional(ctx context.Context, req *model.CrearPrecioEstacionalRequest, creadoPor *int64) (*model.PrecioEstacional, error)
	ListarPreciosEstacionales(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioEstacional, error)

	// Trazabilidad
	ObtenerHistorial(ctx context.Context, productoID *int64, skip, limit int) ([]*model.PrecioHistorial, error)
	ObtenerPreciosAplicados(ctx context.Context, ventaID int64) ([]*model.PrecioAplicado, error)

	// Agregados
	ObtenerResumen(ctx context.Context) (*model.PrecioResumen, error)
	ObtenerEstadisticas(ctx context.Context) (*model.PrecioEstadisticas, error)
}
