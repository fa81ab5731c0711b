package repository

import (
	"context"

	"comercial-backend/internal/domains/descuento/model"
)

// DescuentoRepository define el acceso a datos de cupones y promociones
type DescuentoRepository interface {
	Crear(ctx context.Context, d *model.Descuento) (*model.Descuento, error)
	Obtener(ctx context.Context, id int64) (*model.Descuento, error)
	// ObtenerPorCodigo busca por código exacto ya normalizado; devuelve nil sin error si no existe
	ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Descuento, error)
	Listar(ctx context.Context, filtros *model.DescuentoFiltros, skip, limit int) ([]*model.Descuento, error)
	Actualizar(ctx context.Context, d *model.Descuento) (*model.Descuento, error)

	// RegistrarUso inserta el asiento de uso e incrementa el contador en la misma
	// transacción; devuelve model.ErrDescuentoAgotado si el límite ya se consumió
	RegistrarUso(ctx context.Context, uso *model.DescuentoUso) (*model.DescuentoUso, error)
	ListarUsos(ctx context.Context, descuentoID int64, skip, limit int) ([]*model.DescuentoUso, error)
	ContarUsosCliente(ctx context.Context, descuentoID, clienteID int64) (int, error)

	ObtenerEstadisticas(ctx context.Context) (*model.DescuentoEstadisticas, error)
	// ActualizarEstados expira los vencidos y reactiva los inactivos en ventana
	ActualizarEstados(ctx context.Context) (*model.ResultadoBarrido, error)

	CrearPromocion(ctx context.Context, p *model.Promocion) (*model.Promocion, error)
	ListarPromociones(ctx context.Context, soloActivas bool, skip, limit int) ([]*model.Promocion, error)
}
