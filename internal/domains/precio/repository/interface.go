package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"comercial-backend/internal/domains/precio/model"
)

// PrecioRepository define el acceso a datos de las reglas de precio
type PrecioRepository interface {
	// Precios de producto
	CrearPrecioProducto(ctx context.Context, p *model.PrecioProducto) error
	ObtenerPrecioProducto(ctx context.Context, id int64) (*model.PrecioProducto, error)
	ListarPreciosProducto(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioProducto, error)
	ActualizarPrecioProducto(ctx context.Context, p *model.PrecioProducto) error

	// Precios por volumen
	CrearPrecioVolumen(ctx context.Context, p *model.PrecioVolumen) error
	ListarPreciosVolumen(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioVolumen, error)

	// Precios por categoría
	CrearPrecioCategoria(ctx context.Context, p *model.PrecioCategoria) error
	ListarPreciosCategoria(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioCategoria, error)

	// Precios estacionales
	CrearPrecioEstacional(ctx context.Context, p *model.PrecioEstacional) error
	ListarPreciosEstacionales(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioEstacional, error)

	// Lookups de resolución: devuelven la mejor regla vigente o nil
	BuscarPrecioCliente(ctx context.Context, productoID, clienteID int64, ahora time.Time) (*model.PrecioProducto, error)
	BuscarPrecioVolumen(ctx context.Context, productoID int64, cantidad decimal.Decimal, ahora time.Time) (*model.PrecioVolumen, error)
	BuscarPrecioEstacional(ctx context.Context, productoID int64, hoy time.Time) (*model.PrecioEstacional, error)

	// Precios aplicados
	GuardarPrecioAplicado(ctx context.Context, a *model.PrecioAplicado) error
	ListarPreciosAplicados(ctx context.Context, ventaID int64) ([]*model.PrecioAplicado, error)

	// Historial
	RegistrarHistorial(ctx context.Context, h *model.PrecioHistorial) error
	ListarHistorial(ctx context.Context, productoID *int64, skip, limit int) ([]*model.PrecioHistorial, error)

	// Agregados
	ObtenerResumen(ctx context.Context) (*model.PrecioResumen, error)
	ObtenerEstadisticas(ctx context.Context) (*model.PrecioEstadisticas, error)
}
