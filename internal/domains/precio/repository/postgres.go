package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"comercial-backend/internal/domains/precio/model"
	"comercial-backend/internal/shared/utils"
)

// PostgresRepository implementa PrecioRepository sobre PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) PrecioRepository {
	return &PostgresRepository{db: db}
}

// -------------------------------------------------------------------
// PRECIOS DE PRODUCTO
// -------------------------------------------------------------------

func (r *PostgresRepository) CrearPrecioProducto(ctx context.Context, p *model.PrecioProducto) error {
	query := `
		INSERT INTO precios_producto (
			producto_id, tipo, estado,
			precio_base, precio_especial, descuento_porcentaje, descuento_monto,
			cliente_id, categoria_id, cantidad_minima, cantidad_maxima,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por, activo, prioridad
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
		RETURNING id, fecha_creacion
	`

	err := r.db.QueryRow(ctx, query,
		p.ProductoID,
		p.Tipo,
		p.Estado,
		p.PrecioBase,
		p.PrecioEspecial,
		p.DescuentoPorcentaje,
		p.DescuentoMonto,
		p.ClienteID,
		p.CategoriaID,
		p.CantidadMinima,
		p.CantidadMaxima,
		p.FechaInicio,
		p.FechaFin,
		p.Nombre,
		p.Descripcion,
		p.CreadoPor,
		p.Activo,
		p.Prioridad,
	).Scan(&p.ID, &p.FechaCreacion)
	if err != nil {
		return fmt.Errorf("crear precio producto: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ObtenerPrecioProducto(ctx context.Context, id int64) (*model.PrecioProducto, error) {
	query := `
		SELECT
			id, producto_id, tipo, estado,
			precio_base, precio_especial, descuento_porcentaje, descuento_monto,
			cliente_id, categoria_id, cantidad_minima, cantidad_maxima,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por,
			fecha_creacion, fecha_actualizacion, activo, prioridad
		FROM precios_producto
		WHERE id = $1
	`

	p, err := scanPrecioProducto(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPrecioNotFound
		}
		return nil, fmt.Errorf("obtener precio producto: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ListarPreciosProducto(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioProducto, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filtros != nil {
		if filtros.ProductoID != nil {
			clauses = append(clauses, fmt.Sprintf("producto_id = $%d", idx))
			args = append(args, *filtros.ProductoID)
			idx++
		}
		if filtros.ClienteID != nil {
			clauses = append(clauses, fmt.Sprintf("cliente_id = $%d", idx))
			args = append(args, *filtros.ClienteID)
			idx++
		}
		if filtros.CategoriaID != nil {
			clauses = append(clauses, fmt.Sprintf("categoria_id = $%d", idx))
			args = append(args, *filtros.CategoriaID)
			idx++
		}
		if filtros.Tipo != nil {
			clauses = append(clauses, fmt.Sprintf("tipo = $%d", idx))
			args = append(args, *filtros.Tipo)
			idx++
		}
		if filtros.Estado != nil {
			clauses = append(clauses, fmt.Sprintf("estado = $%d", idx))
			args = append(args, *filtros.Estado)
			idx++
		}
		if filtros.FechaDesde != nil {
			clauses = append(clauses, fmt.Sprintf("fecha_inicio >= $%d", idx))
			args = append(args, *filtros.FechaDesde)
			idx++
		}
		if filtros.FechaHasta != nil {
			clauses = append(clauses, fmt.Sprintf("fecha_inicio <= $%d", idx))
			args = append(args, *filtros.FechaHasta)
			idx++
		}
		if filtros.SoloActivos {
			clauses = append(clauses, "activo = TRUE")
		}
		if filtros.SoloVigentes {
			clauses = append(clauses, fmt.Sprintf("fecha_inicio <= $%d AND (fecha_fin IS NULL OR fecha_fin >= $%d)", idx, idx))
			args = append(args, time.Now().UTC())
			idx++
		}
	}

	query := fmt.Sprintf(`
		SELECT
			id, producto_id, tipo, estado,
			precio_base, precio_especial, descuento_porcentaje, descuento_monto,
			cliente_id, categoria_id, cantidad_minima, cantidad_maxima,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por,
			fecha_creacion, fecha_actualizacion, activo, prioridad
		FROM precios_producto
		WHERE %s
		ORDER BY prioridad ASC, fecha_creacion DESC
		OFFSET $%d LIMIT $%d
	`, utils.JoinWithAnd(clauses), idx, idx+1)
	args = append(args, skip, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar precios producto: %w", err)
	}
	defer rows.Close()

	var precios []*model.PrecioProducto
	for rows.Next() {
		p, err := scanPrecioProducto(rows)
		if err != nil {
			return nil, fmt.Errorf("listar precios producto: %w", err)
		}
		precios = append(precios, p)
	}

	return precios, rows.Err()
}

func (r *PostgresRepository) ActualizarPrecioProducto(ctx context.Context, p *model.PrecioProducto) error {
	query := `
		UPDATE precios_producto SET
			precio_base = $2,
			precio_especial = $3,
			descuento_porcentaje = $4,
			descuento_monto = $5,
			cantidad_minima = $6,
			cantidad_maxima = $7,
			fecha_inicio = $8,
			fecha_fin = $9,
			nombre = $10,
			descripcion = $11,
			estado = $12,
			activo = $13,
			prioridad = $14,
			fecha_actualizacion = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		p.ID,
		p.PrecioBase,
		p.PrecioEspecial,
		p.DescuentoPorcentaje,
		p.DescuentoMonto,
		p.CantidadMinima,
		p.CantidadMaxima,
		p.FechaInicio,
		p.FechaFin,
		p.Nombre,
		p.Descripcion,
		p.Estado,
		p.Activo,
		p.Prioridad,
	)
	if err != nil {
		return fmt.Errorf("actualizar precio producto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPrecioNotFound
	}

	return nil
}

// -------------------------------------------------------------------
// PRECIOS POR VOLUMEN
// -------------------------------------------------------------------

func (r *PostgresRepository) CrearPrecioVolumen(ctx context.Context, p *model.PrecioVolumen) error {
	query := `
		INSERT INTO precios_volumen (
			producto_id, cantidad_minima, cantidad_maxima,
			descuento_porcentaje, descuento_monto, precio_especial,
			cliente_id, categoria_id,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por, activo, prioridad
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING id, fecha_creacion
	`

	err := r.db.QueryRow(ctx, query,
		p.ProductoID,
		p.CantidadMinima,
		p.CantidadMaxima,
		p.DescuentoPorcentaje,
		p.DescuentoMonto,
		p.PrecioEspecial,
		p.ClienteID,
		p.CategoriaID,
		p.FechaInicio,
		p.FechaFin,
		p.Nombre,
		p.Descripcion,
		p.CreadoPor,
		p.Activo,
		p.Prioridad,
	).Scan(&p.ID, &p.FechaCreacion)
	if err != nil {
		return fmt.Errorf("crear precio volumen: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListarPreciosVolumen(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioVolumen, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filtros != nil {
		if filtros.ProductoID != nil {
			clauses = append(clauses, fmt.Sprintf("producto_id = $%d", idx))
			args = append(args, *filtros.ProductoID)
			idx++
		}
		if filtros.ClienteID != nil {
			clauses = append(clauses, fmt.Sprintf("cliente_id = $%d", idx))
			args = append(args, *filtros.ClienteID)
			idx++
		}
		if filtros.CategoriaID != nil {
			clauses = append(clauses, fmt.Sprintf("categoria_id = $%d", idx))
			args = append(args, *filtros.CategoriaID)
			idx++
		}
		if filtros.FechaDesde != nil {
			clauses = append(clauses, fmt.Sprintf("fecha_inicio >= $%d", idx))
			args = append(args, *filtros.FechaDesde)
			idx++
		}
		if filtros.FechaHasta != nil {
			clauses = append(clauses, fmt.Sprintf("fecha_inicio <= $%d", idx))
			args = append(args, *filtros.FechaHasta)
			idx++
		}
		if filtros.SoloActivos {
			clauses = append(clauses, "activo = TRUE")
		}
		if filtros.SoloVigentes {
			clauses = append(clauses, fmt.Sprintf("fecha_inicio <= $%d AND (fecha_fin IS NULL OR fecha_fin >= $%d)", idx, idx))
			args = append(args, time.Now().UTC())
			idx++
		}
	}

	query := fmt.Sprintf(`
		SELECT
			id, producto_id, cantidad_minima, cantidad_maxima,
			descuento_porcentaje, descuento_monto, precio_especial,
			cliente_id, categoria_id,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por, fecha_creacion, activo, prioridad
		FROM precios_volumen
		WHERE %s
		ORDER BY prioridad ASC, cantidad_minima ASC
		OFFSET $%d LIMIT $%d
	`, utils.JoinWithAnd(clauses), idx, idx+1)
	args = append(args, skip, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar precios volumen: %w", err)
	}
	defer rows.Close()

	var precios []*model.PrecioVolumen
	for rows.Next() {
		p, err := scanPrecioVolumen(rows)
		if err != nil {
			return nil, fmt.Errorf("listar precios volumen: %w", err)
		}
		precios = append(precios, p)
	}

	return precios, rows.Err()
}

// -------------------------------------------------------------------
// PRECIOS POR CATEGORÍA
// -------------------------------------------------------------------

func (r *PostgresRepository) CrearPrecioCategoria(ctx context.Context, p *model.PrecioCategoria) error {
	query := `
		INSERT INTO precios_categoria (
			categoria_id, descuento_porcentaje, descuento_monto, multiplicador,
			cliente_id, producto_id,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por, activo, prioridad
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING id, fecha_creacion
	`

	err := r.db.QueryRow(ctx, query,
		p.CategoriaID,
		p.DescuentoPorcentaje,
		p.DescuentoMonto,
		p.Multiplicador,
		p.ClienteID,
		p.ProductoID,
		p.FechaInicio,
		p.FechaFin,
		p.Nombre,
		p.Descripcion,
		p.CreadoPor,
		p.Activo,
		p.Prioridad,
	).Scan(&p.ID, &p.FechaCreacion)
	if err != nil {
		return fmt.Errorf("crear precio categoria: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListarPreciosCategoria(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioCategoria, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filtros != nil {
		if filtros.CategoriaID != nil {
			clauses = append(clauses, fmt.Sprintf("categoria_id = $%d", idx))
			args = append(args, *filtros.CategoriaID)
			idx++
		}
		if filtros.ClienteID != nil {
			clauses = append(clauses, fmt.Sprintf("cliente_id = $%d", idx))
			args = append(args, *filtros.ClienteID)
			idx++
		}
		if filtros.ProductoID != nil {
			clauses = append(clauses, fmt.Sprintf("producto_id = $%d", idx))
			args = append(args, *filtros.ProductoID)
			idx++
		}
		if filtros.SoloActivos {
			clauses = append(clauses, "activo = TRUE")
		}
		if filtros.SoloVigentes {
			clauses = append(clauses, fmt.Sprintf("fecha_inicio <= $%d AND (fecha_fin IS NULL OR fecha_fin >= $%d)", idx, idx))
			args = append(args, time.Now().UTC())
			idx++
		}
	}

	query := fmt.Sprintf(`
		SELECT
			id, categoria_id, descuento_porcentaje, descuento_monto, multiplicador,
			cliente_id, producto_id,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por, fecha_creacion, activo, prioridad
		FROM precios_categoria
		WHERE %s
		ORDER BY prioridad ASC, fecha_creacion DESC
		OFFSET $%d LIMIT $%d
	`, utils.JoinWithAnd(clauses), idx, idx+1)
	args = append(args, skip, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar precios categoria: %w", err)
	}
	defer rows.Close()

	var precios []*model.PrecioCategoria
	for rows.Next() {
		var p model.PrecioCategoria
		err := rows.Scan(
			&p.ID,
			&p.CategoriaID,
			&p.DescuentoPorcentaje,
			&p.DescuentoMonto,
			&p.Multiplicador,
			&p.ClienteID,
			&p.ProductoID,
			&p.FechaInicio,
			&p.FechaFin,
			&p.Nombre,
			&p.Descripcion,
			&p.CreadoPor,
			&p.FechaCreacion,
			&p.Activo,
			&p.Prioridad,
		)
		if err != nil {
			return nil, fmt.Errorf("listar precios categoria: %w", err)
		}
		precios = append(precios, &p)
	}

	return precios, rows.Err()
}

// -------------------------------------------------------------------
// PRECIOS ESTACIONALES
// -------------------------------------------------------------------

func (r *PostgresRepository) CrearPrecioEstacional(ctx context.Context, p *model.PrecioEstacional) error {
	query := `
		INSERT INTO precios_estacionales (
			producto_id, nombre_temporada,
			descuento_porcentaje, descuento_monto, precio_especial,
			cliente_id, categoria_id,
			fecha_inicio, fecha_fin,
			descripcion, creado_por, activo, prioridad
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING id, fecha_creacion
	`

	err := r.db.QueryRow(ctx, query,
		p.ProductoID,
		p.NombreTemporada,
		p.DescuentoPorcentaje,
		p.DescuentoMonto,
		p.PrecioEspecial,
		p.ClienteID,
		p.CategoriaID,
		p.FechaInicio,
		p.FechaFin,
		p.Descripcion,
		p.CreadoPor,
		p.Activo,
		p.Prioridad,
	).Scan(&p.ID, &p.FechaCreacion)
	if err != nil {
		return fmt.Errorf("crear precio estacional: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListarPreciosEstacionales(ctx context.Context, filtros *model.PrecioFiltros, skip, limit int) ([]*model.PrecioEstacional, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filtros != nil {
		if filtros.ProductoID != nil {
			clauses = append(clauses, fmt.Sprintf("producto_id = $%d", idx))
			args = append(args, *filtros.ProductoID)
			idx++
		}
		if filtros.ClienteID != nil {
			clauses = append(clauses, fmt.Sprintf("cliente_id = $%d", idx))
			args = append(args, *filtros.ClienteID)
			idx++
		}
		if filtros.CategoriaID != nil {
			clauses = append(clauses, fmt.Sprintf("categoria_id = $%d", idx))
			args = append(args, *filtros.CategoriaID)
			idx++
		}
		if filtros.SoloActivos {
			clauses = append(clauses, "activo = TRUE")
		}
		if filtros.SoloVigentes {
			// Las temporadas se comparan por fecha calendario
			clauses = append(clauses, fmt.Sprintf("fecha_inicio <= $%d AND fecha_fin >= $%d", idx, idx))
			args = append(args, time.Now().UTC().Truncate(24*time.Hour))
			idx++
		}
	}

	query := fmt.Sprintf(`
		SELECT
			id, producto_id, nombre_temporada,
			descuento_porcentaje, descuento_monto, precio_especial,
			cliente_id, categoria_id,
			fecha_inicio, fecha_fin,
			descripcion, creado_por, fecha_creacion, activo, prioridad
		FROM precios_estacionales
		WHERE %s
		ORDER BY prioridad ASC, fecha_inicio ASC
		OFFSET $%d LIMIT $%d
	`, utils.JoinWithAnd(clauses), idx, idx+1)
	args = append(args, skip, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar precios estacionales: %w", err)
	}
	defer rows.Close()

	var precios []*model.PrecioEstacional
	for rows.Next() {
		p, err := scanPrecioEstacional(rows)
		if err != nil {
			return nil, fmt.Errorf("listar precios estacionales: %w", err)
		}
		precios = append(precios, p)
	}

	return precios, rows.Err()
}

// -------------------------------------------------------------------
// LOOKUPS DE RESOLUCIÓN
// -------------------------------------------------------------------

// BuscarPrecioCliente busca la regla vigente de tipo cliente con mayor
// prioridad. Devuelve (nil, nil) cuando no hay ninguna aplicable.
func (r *PostgresRepository) BuscarPrecioCliente(ctx context.Context, productoID, clienteID int64, ahora time.Time) (*model.PrecioProducto, error) {
	query := `
		SELECT
			id, producto_id, tipo, estado,
			precio_base, precio_especial, descuento_porcentaje, descuento_monto,
			cliente_id, categoria_id, cantidad_minima, cantidad_maxima,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por,
			fecha_creacion, fecha_actualizacion, activo, prioridad
		FROM precios_producto
		WHERE producto_id = $1
		  AND cliente_id = $2
		  AND tipo = 'cliente'
		  AND activo = TRUE
		  AND fecha_inicio <= $3
		  AND (fecha_fin IS NULL OR fecha_fin >= $3)
		ORDER BY prioridad ASC
		LIMIT 1
	`

	p, err := scanPrecioProducto(r.db.QueryRow(ctx, query, productoID, clienteID, ahora))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("buscar precio cliente: %w", err)
	}

	return p, nil
}

// BuscarPrecioVolumen busca el tramo vigente que cubre la cantidad.
// Ante empate de prioridad gana el tramo de mayor cantidad_minima.
func (r *PostgresRepository) BuscarPrecioVolumen(ctx context.Context, productoID int64, cantidad decimal.Decimal, ahora time.Time) (*model.PrecioVolumen, error) {
	query := `
		SELECT
			id, producto_id, cantidad_minima, cantidad_maxima,
			descuento_porcentaje, descuento_monto, precio_especial,
			cliente_id, categoria_id,
			fecha_inicio, fecha_fin,
			nombre, descripcion, creado_por, fecha_creacion, activo, prioridad
		FROM precios_volumen
		WHERE producto_id = $1
		  AND cantidad_minima <= $2
		  AND (cantidad_maxima IS NULL OR cantidad_maxima >= $2)
		  AND activo = TRUE
		  AND fecha_inicio <= $3
		  AND (fecha_fin IS NULL OR fecha_fin >= $3)
		ORDER BY prioridad ASC, cantidad_minima DESC
		LIMIT 1
	`

	p, err := scanPrecioVolumen(r.db.QueryRow(ctx, query, productoID, cantidad, ahora))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("buscar precio volumen: %w", err)
	}

	return p, nil
}

// BuscarPrecioEstacional busca la temporada activa para el día de hoy
func (r *PostgresRepository) BuscarPrecioEstacional(ctx context.Context, productoID int64, hoy time.Time) (*model.PrecioEstacional, error) {
	query := `
		SELECT
			id, producto_id, nombre_temporada,
			descuento_porcentaje, descuento_monto, precio_especial,
			cliente_id, categoria_id,
			fecha_inicio, fecha_fin,
			descripcion, creado_por, fecha_creacion, activo, prioridad
		FROM precios_estacionales
		WHERE producto_id = $1
		  AND fecha_inicio <= $2
		  AND fecha_fin >= $2
		  AND activo = TRUE
		ORDER BY prioridad ASC
		LIMIT 1
	`

	p, err := scanPrecioEstacional(r.db.QueryRow(ctx, query, productoID, hoy))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("buscar precio estacional: %w", err)
	}

	return p, nil
}

// -------------------------------------------------------------------
// PRECIOS APLICADOS E HISTORIAL
// -------------------------------------------------------------------

func (r *PostgresRepository) GuardarPrecioAplicado(ctx context.Context, a *model.PrecioAplicado) error {
	query := `
		INSERT INTO precios_aplicados (
			venta_id, producto_id, cliente_id,
			precio_base, precio_final, descuento_aplicado, porcentaje_descuento,
			tipo_precio, precio_id, precio_tabla,
			cantidad, subtotal
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING id, fecha_aplicacion
	`

	err := r.db.QueryRow(ctx, query,
		a.VentaID,
		a.ProductoID,
		a.ClienteID,
		a.PrecioBase,
		a.PrecioFinal,
		a.DescuentoAplicado,
		a.PorcentajeDescuento,
		a.TipoPrecio,
		a.PrecioID,
		a.PrecioTabla,
		a.Cantidad,
		a.Subtotal,
	).Scan(&a.ID, &a.FechaAplicacion)
	if err != nil {
		return fmt.Errorf("guardar precio aplicado: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListarPreciosAplicados(ctx context.Context, ventaID int64) ([]*model.PrecioAplicado, error) {
	query := `
		SELECT
			id, venta_id, producto_id, cliente_id,
			precio_base, precio_final, descuento_aplicado, porcentaje_descuento,
			tipo_precio, precio_id, precio_tabla,
			cantidad, subtotal, fecha_aplicacion
		FROM precios_aplicados
		WHERE venta_id = $1
		ORDER BY fecha_aplicacion ASC
	`

	rows, err := r.db.Query(ctx, query, ventaID)
	if err != nil {
		return nil, fmt.Errorf("listar precios aplicados: %w", err)
	}
	defer rows.Close()

	var aplicados []*model.PrecioAplicado
	for rows.Next() {
		var a model.PrecioAplicado
		err := rows.Scan(
			&a.ID,
			&a.VentaID,
			&a.ProductoID,
			&a.ClienteID,
			&a.PrecioBase,
			&a.PrecioFinal,
			&a.DescuentoAplicado,
			&a.PorcentajeDescuento,
			&a.TipoPrecio,
			&a.PrecioID,
			&a.PrecioTabla,
			&a.Cantidad,
			&a.Subtotal,
			&a.FechaAplicacion,
		)
		if err != nil {
			return nil, fmt.Errorf("listar precios aplicados: %w", err)
		}
		aplicados = append(aplicados, &a)
	}

	return aplicados, rows.Err()
}

func (r *PostgresRepository) RegistrarHistorial(ctx context.Context, h *model.PrecioHistorial) error {
	query := `
		INSERT INTO precio_historial (
			producto_id, tipo_cambio,
			precio_anterior, precio_nuevo, descuento_anterior, descuento_nuevo,
			precio_id, precio_tabla,
			motivo, usuario_id, ip_address, user_agent
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING id, fecha_cambio
	`

	err := r.db.QueryRow(ctx, query,
		h.ProductoID,
		h.TipoCambio,
		h.PrecioAnterior,
		h.PrecioNuevo,
		h.DescuentoAnterior,
		h.DescuentoNuevo,
		h.PrecioID,
		h.PrecioTabla,
		h.Motivo,
		h.UsuarioID,
		h.IPAddress,
		h.UserAgent,
	).Scan(&h.ID, &h.FechaCambio)
	if err != nil {
		return fmt.Errorf("registrar historial: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListarHistorial(ctx context.Context, productoID *int64, skip, limit int) ([]*model.PrecioHistorial, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if productoID != nil {
		clauses = append(clauses, fmt.Sprintf("producto_id = $%d", idx))
		args = append(args, *productoID)
		idx++
	}

	query := fmt.Sprintf(`
		SELECT
			id, producto_id, tipo_cambio,
			precio_anterior, precio_nuevo, descuento_anterior, descuento_nuevo,
			precio_id, precio_tabla,
			motivo, usuario_id, fecha_cambio, ip_address, user_agent
		FROM precio_historial
		WHERE %s
		ORDER BY fecha_cambio DESC
		OFFSET $%d LIMIT $%d
	`, utils.JoinWithAnd(clauses), idx, idx+1)
	args = append(args, skip, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar historial: %w", err)
	}
	defer rows.Close()

	var historial []*model.PrecioHistorial
	for rows.Next() {
		var h model.PrecioHistorial
		err := rows.Scan(
			&h.ID,
			&h.ProductoID,
			&h.TipoCambio,
			&h.PrecioAnterior,
			&h.PrecioNuevo,
			&h.DescuentoAnterior,
			&h.DescuentoNuevo,
			&h.PrecioID,
			&h.PrecioTabla,
			&h.Motivo,
			&h.UsuarioID,
			&h.FechaCambio,
			&h.IPAddress,
			&h.UserAgent,
		)
		if err != nil {
			return nil, fmt.Errorf("listar historial: %w", err)
		}
		historial = append(historial, &h)
	}

	return historial, rows.Err()
}

// -------------------------------------------------------------------
// AGREGADOS
// -------------------------------------------------------------------

func (r *PostgresRepository) ObtenerResumen(ctx context.Context) (*model.PrecioResumen, error) {
	resumen := &model.PrecioResumen{
		PreciosPorTipo: make(map[string]int64),
	}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE activo = TRUE),
			COUNT(*) FILTER (WHERE cliente_id IS NOT NULL),
			COALESCE(AVG(descuento_porcentaje) FILTER (WHERE descuento_porcentaje IS NOT NULL), 0)
		FROM precios_producto
	`
	err := r.db.QueryRow(ctx, query).Scan(
		&resumen.TotalPrecios,
		&resumen.PreciosActivos,
		&resumen.PreciosPorCliente,
		&resumen.DescuentoPromedio,
	)
	if err != nil {
		return nil, fmt.Errorf("obtener resumen: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT tipo, COUNT(*) FROM precios_producto GROUP BY tipo`)
	if err != nil {
		return nil, fmt.Errorf("obtener resumen por tipo: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tipo string
		var count int64
		if err := rows.Scan(&tipo, &count); err != nil {
			return nil, fmt.Errorf("obtener resumen por tipo: %w", err)
		}
		resumen.PreciosPorTipo[tipo] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("obtener resumen por tipo: %w", err)
	}

	// Todos los tipos aparecen en el mapa, aunque no tengan reglas
	for _, tipo := range model.TiposPrecio {
		if _, ok := resumen.PreciosPorTipo[string(tipo)]; !ok {
			resumen.PreciosPorTipo[string(tipo)] = 0
		}
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM precios_volumen`).Scan(&resumen.PreciosPorVolumen); err != nil {
		return nil, fmt.Errorf("obtener resumen volumen: %w", err)
	}
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM precios_estacionales`).Scan(&resumen.PreciosEstacionales); err != nil {
		return nil, fmt.Errorf("obtener resumen estacionales: %w", err)
	}

	return resumen, nil
}

func (r *PostgresRepository) ObtenerEstadisticas(ctx context.Context) (*model.PrecioEstadisticas, error) {
	resumen, err := r.ObtenerResumen(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.PrecioEstadisticas{
		TotalPrecios:             resumen.TotalPrecios,
		PreciosPorTipo:           resumen.PreciosPorTipo,
		PreciosPorEstado:         make(map[string]int64),
		DescuentoPromedioPorTipo: make(map[string]decimal.Decimal),
	}

	rows, err := r.db.Query(ctx, `SELECT estado, COUNT(*) FROM precios_producto GROUP BY estado`)
	if err != nil {
		return nil, fmt.Errorf("obtener estadisticas por estado: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var estado string
		var count int64
		if err := rows.Scan(&estado, &count); err != nil {
			return nil, fmt.Errorf("obtener estadisticas por estado: %w", err)
		}
		stats.PreciosPorEstado[estado] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("obtener estadisticas por estado: %w", err)
	}

	for _, estado := range model.EstadosPrecio {
		if _, ok := stats.PreciosPorEstado[string(estado)]; !ok {
			stats.PreciosPorEstado[string(estado)] = 0
		}
	}

	avgRows, err := r.db.Query(ctx, `
		SELECT tipo, COALESCE(AVG(descuento_porcentaje), 0)
		FROM precios_producto
		WHERE descuento_porcentaje IS NOT NULL
		GROUP BY tipo
	`)
	if err != nil {
		return nil, fmt.Errorf("obtener descuento promedio por tipo: %w", err)
	}
	defer avgRows.Close()

	for avgRows.Next() {
		var tipo string
		var promedio decimal.Decimal
		if err := avgRows.Scan(&tipo, &promedio); err != nil {
			return nil, fmt.Errorf("obtener descuento promedio por tipo: %w", err)
		}
		stats.DescuentoPromedioPorTipo[tipo] = promedio
	}
	if err := avgRows.Err(); err != nil {
		return nil, fmt.Errorf("obtener descuento promedio por tipo: %w", err)
	}

	for _, tipo := range model.TiposPrecio {
		if _, ok := stats.DescuentoPromedioPorTipo[string(tipo)]; !ok {
			stats.DescuentoPromedioPorTipo[string(tipo)] = decimal.Zero
		}
	}

	return stats, nil
}

// -------------------------------------------------------------------
// SCAN HELPERS
// -------------------------------------------------------------------

func scanPrecioProducto(row pgx.Row) (*model.PrecioProducto, error) {
	var p model.PrecioProducto
	err := row.Scan(
		&p.ID,
		&p.ProductoID,
		&p.Tipo,
		&p.Estado,
		&p.PrecioBase,
		&p.PrecioEspecial,      // nullable
		&p.DescuentoPorcentaje, // nullable
		&p.DescuentoMonto,      // nullable
		&p.ClienteID,
		&p.CategoriaID,
		&p.CantidadMinima,
		&p.CantidadMaxima,
		&p.FechaInicio,
		&p.FechaFin,
		&p.Nombre,
		&p.Descripcion,
		&p.CreadoPor,
		&p.FechaCreacion,
		&p.FechaActualizacion,
		&p.Activo,
		&p.Prioridad,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPrecioVolumen(row pgx.Row) (*model.PrecioVolumen, error) {
	var p model.PrecioVolumen
	err := row.Scan(
		&p.ID,
		&p.ProductoID,
		&p.CantidadMinima,
		&p.CantidadMaxima,
		&p.DescuentoPorcentaje,
		&p.DescuentoMonto,
		&p.PrecioEspecial,
		&p.ClienteID,
		&p.CategoriaID,
		&p.FechaInicio,
		&p.FechaFin,
		&p.Nombre,
		&p.Descripcion,
		&p.CreadoPor,
		&p.FechaCreacion,
		&p.Activo,
		&p.Prioridad,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPrecioEstacional(row pgx.Row) (*model.PrecioEstacional, error) {
	var p model.PrecioEstacional
	err := row.Scan(
		&p.ID,
		&p.ProductoID,
		&p.NombreTemporada,
		&p.DescuentoPorcentaje,
		&p.DescuentoMonto,
		&p.PrecioEspecial,
		&p.ClienteID,
		&p.CategoriaID,
		&p.FechaInicio,
		&p.FechaFin,
		&p.Descripcion,
		&p.CreadoPor,
		&p.FechaCreacion,
		&p.Activo,
		&p.Prioridad,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
