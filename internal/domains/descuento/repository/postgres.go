package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"comercial-backend/internal/domains/descuento/model"
	"comercial-backend/internal/shared/utils"
	"comercial-backend/pkg/database"
)

// PostgresRepository implementa DescuentoRepository sobre PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) DescuentoRepository {
	return &PostgresRepository{db: db}
}

const descuentoColumns = `
	id, codigo, nombre, descripcion,
	tipo, valor, valor_minimo, valor_maximo,
	limite_usos, usos_por_cliente, usos_actuales,
	fecha_inicio, fecha_fin, fecha_creacion,
	estado, es_activo, aplica_envio, aplica_impuestos,
	productos_ids, clientes_ids, categorias_ids,
	creado_por, notas_internas
`

// -------------------------------------------------------------------
// CUPONES
// -------------------------------------------------------------------

func (r *PostgresRepository) Crear(ctx context.Context, d *model.Descuento) (*model.Descuento, error) {
	query := `
		INSERT INTO descuentos (
			codigo, nombre, descripcion,
			tipo, valor, valor_minimo, valor_maximo,
			limite_usos, usos_por_cliente,
			fecha_inicio, fecha_fin,
			estado, es_activo, aplica_envio, aplica_impuestos,
			productos_ids, clientes_ids, categorias_ids,
			creado_por, notas_internas
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING id, usos_actuales, fecha_creacion
	`

	err := r.db.QueryRow(ctx, query,
		d.Codigo,
		d.Nombre,
		d.Descripcion,
		d.Tipo,
		d.Valor,
		d.ValorMinimo,
		d.ValorMaximo,
		d.LimiteUsos,
		d.UsosPorCliente,
		d.FechaInicio,
		d.FechaFin,
		d.Estado,
		d.EsActivo,
		d.AplicaEnvio,
		d.AplicaImpuestos,
		pq.Array(d.ProductosIDs),
		pq.Array(d.ClientesIDs),
		pq.Array(d.CategoriasIDs),
		d.CreadoPor,
		d.NotasInternas,
	).Scan(&d.ID, &d.UsosActuales, &d.FechaCreacion)
	if err != nil {
		if esCodigoDuplicado(err) {
			return nil, model.ErrDescuentoConflict
		}
		return nil, fmt.Errorf("crear descuento: %w", err)
	}

	return d, nil
}

func (r *PostgresRepository) Obtener(ctx context.Context, id int64) (*model.Descuento, error) {
	query := `SELECT ` + descuentoColumns + ` FROM descuentos WHERE id = $1`

	d, err := scanDescuento(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDescuentoNotFound
		}
		return nil, fmt.Errorf("obtener descuento: %w", err)
	}

	return d, nil
}

func (r *PostgresRepository) ObtenerPorCodigo(ctx context.Context, codigo string) (*model.Descuento, error) {
	query := `SELECT ` + descuentoColumns + ` FROM descuentos WHERE codigo = $1`

	d, err := scanDescuento(r.db.QueryRow(ctx, query, codigo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("obtener descuento por código: %w", err)
	}

	return d, nil
}

func (r *PostgresRepository) Listar(ctx context.Context, filtros *model.DescuentoFiltros, skip, limit int) ([]*model.Descuento, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filtros != nil {
		if filtros.Codigo != nil {
			clauses = append(clauses, fmt.Sprintf("codigo ILIKE $%d", idx))
			args = append(args, "%"+*filtros.Codigo+"%")
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
		if filtros.EsActivo != nil {
			clauses = append(clauses, fmt.Sprintf("es_activo = $%d", idx))
			args = append(args, *filtros.EsActivo)
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
		// NULL o lista vacía significa cupón global
		if filtros.ClienteID != nil {
			clauses = append(clauses, fmt.Sprintf("(clientes_ids IS NULL OR cardinality(clientes_ids) = 0 OR $%d = ANY(clientes_ids))", idx))
			args = append(args, *filtros.ClienteID)
			idx++
		}
		if filtros.ProductoID != nil {
			clauses = append(clauses, fmt.Sprintf("(productos_ids IS NULL OR cardinality(productos_ids) = 0 OR $%d = ANY(productos_ids))", idx))
			args = append(args, *filtros.ProductoID)
			idx++
		}
		if filtros.SoloVigentes {
			clauses = append(clauses, "fecha_inicio <= NOW()", "(fecha_fin IS NULL OR fecha_fin >= NOW())")
		}
	}

	query := fmt.Sprintf(`
		SELECT %s FROM descuentos
		WHERE %s
		ORDER BY fecha_creacion DESC
		OFFSET $%d LIMIT $%d
	`, descuentoColumns, utils.JoinWithAnd(clauses), idx, idx+1)
	args = append(args, skip, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar descuentos: %w", err)
	}
	defer rows.Close()

	descuentos := []*model.Descuento{}
	for rows.Next() {
		d, err := scanDescuento(rows)
		if err != nil {
			return nil, fmt.Errorf("listar descuentos: %w", err)
		}
		descuentos = append(descuentos, d)
	}

	return descuentos, rows.Err()
}

func (r *PostgresRepository) Actualizar(ctx context.Context, d *model.Descuento) (*model.Descuento, error) {
	query := `
		UPDATE descuentos SET
			nombre = $2,
			descripcion = $3,
			valor = $4,
			valor_minimo = $5,
			valor_maximo = $6,
			limite_usos = $7,
			usos_por_cliente = $8,
			fecha_inicio = $9,
			fecha_fin = $10,
			estado = $11,
			es_activo = $12,
			aplica_envio = $13,
			aplica_impuestos = $14,
			productos_ids = $15,
			clientes_ids = $16,
			categorias_ids = $17,
			notas_internas = $18
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		d.ID,
		d.Nombre,
		d.Descripcion,
		d.Valor,
		d.ValorMinimo,
		d.ValorMaximo,
		d.LimiteUsos,
		d.UsosPorCliente,
		d.FechaInicio,
		d.FechaFin,
		d.Estado,
		d.EsActivo,
		d.AplicaEnvio,
		d.AplicaImpuestos,
		pq.Array(d.ProductosIDs),
		pq.Array(d.ClientesIDs),
		pq.Array(d.CategoriasIDs),
		d.NotasInternas,
	)
	if err != nil {
		return nil, fmt.Errorf("actualizar descuento: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, model.ErrDescuentoNotFound
	}

	return d, nil
}

// -------------------------------------------------------------------
// LIBRO MAYOR DE USOS
// -------------------------------------------------------------------

// RegistrarUso ejecuta el asiento de uso y el incremento del contador en una
// sola transacción. El UPDATE es condicional: si otro uso concurrente consumió
// el último cupo, no afecta filas y la transacción se revierte.
func (r *PostgresRepository) RegistrarUso(ctx context.Context, uso *model.DescuentoUso) (*model.DescuentoUso, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.DescuentoUso, error) {
		update := `
			UPDATE descuentos SET
				usos_actuales = usos_actuales + 1,
				estado = CASE
					WHEN limite_usos IS NOT NULL AND usos_actuales + 1 >= limite_usos THEN 'agotado'
					ELSE estado
				END,
				es_activo = CASE
					WHEN limite_usos IS NOT NULL AND usos_actuales + 1 >= limite_usos THEN FALSE
					ELSE es_activo
				END
			WHERE id = $1
			  AND (limite_usos IS NULL OR usos_actuales < limite_usos)
		`

		tag, err := tx.Exec(ctx, update, uso.DescuentoID)
		if err != nil {
			return nil, fmt.Errorf("incrementar usos: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, model.ErrDescuentoAgotado
		}

		insert := `
			INSERT INTO descuento_usos (
				descuento_id, cliente_id, venta_id,
				monto_original, monto_descuento, monto_final,
				ip_cliente, user_agent
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, fecha_uso
		`

		err = tx.QueryRow(ctx, insert,
			uso.DescuentoID,
			uso.ClienteID,
			uso.VentaID,
			uso.MontoOriginal,
			uso.MontoDescuento,
			uso.MontoFinal,
			uso.IPCliente,
			uso.UserAgent,
		).Scan(&uso.ID, &uso.FechaUso)
		if err != nil {
			return nil, fmt.Errorf("registrar uso: %w", err)
		}

		return uso, nil
	})
}

func (r *PostgresRepository) ListarUsos(ctx context.Context, descuentoID int64, skip, limit int) ([]*model.DescuentoUso, error) {
	query := `
		SELECT
			id, descuento_id, cliente_id, venta_id,
			monto_original, monto_descuento, monto_final,
			fecha_uso, ip_cliente, user_agent
		FROM descuento_usos
		WHERE descuento_id = $1
		ORDER BY fecha_uso DESC
		OFFSET $2 LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, descuentoID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("listar usos: %w", err)
	}
	defer rows.Close()

	usos := []*model.DescuentoUso{}
	for rows.Next() {
		u := &model.DescuentoUso{}
		err := rows.Scan(
			&u.ID, &u.DescuentoID, &u.ClienteID, &u.VentaID,
			&u.MontoOriginal, &u.MontoDescuento, &u.MontoFinal,
			&u.FechaUso, &u.IPCliente, &u.UserAgent,
		)
		if err != nil {
			return nil, fmt.Errorf("listar usos: %w", err)
		}
		usos = append(usos, u)
	}

	return usos, rows.Err()
}

func (r *PostgresRepository) ContarUsosCliente(ctx context.Context, descuentoID, clienteID int64) (int, error) {
	query := `SELECT COUNT(*) FROM descuento_usos WHERE descuento_id = $1 AND cliente_id = $2`

	var count int
	if err := r.db.QueryRow(ctx, query, descuentoID, clienteID).Scan(&count); err != nil {
		return 0, fmt.Errorf("contar usos de cliente: %w", err)
	}

	return count, nil
}

// -------------------------------------------------------------------
// ESTADÍSTICAS Y BARRIDO
// -------------------------------------------------------------------

func (r *PostgresRepository) ObtenerEstadisticas(ctx context.Context) (*model.DescuentoEstadisticas, error) {
	stats := &model.DescuentoEstadisticas{
		DescuentosPorTipo: make(map[string]int64),
		TopDescuentos:     []model.TopDescuento{},
		UsosPorMes:        []model.UsoMensual{},
	}

	resumen := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE es_activo),
			COUNT(*) FILTER (WHERE estado = 'expirado')
		FROM descuentos
	`
	if err := r.db.QueryRow(ctx, resumen).Scan(
		&stats.TotalDescuentos,
		&stats.DescuentosActivos,
		&stats.DescuentosExpirados,
	); err != nil {
		return nil, fmt.Errorf("estadísticas de descuentos: %w", err)
	}

	usos := `SELECT COUNT(*), COALESCE(SUM(monto_descuento), 0) FROM descuento_usos`
	if err := r.db.QueryRow(ctx, usos).Scan(&stats.TotalUsos, &stats.MontoTotalDescuentado); err != nil {
		return nil, fmt.Errorf("estadísticas de usos: %w", err)
	}
	stats.MontoTotalDescuentado = stats.MontoTotalDescuentado.Round(2)

	for _, tipo := range model.TiposDescuento {
		stats.DescuentosPorTipo[tipo] = 0
	}
	porTipo := `SELECT tipo, COUNT(*) FROM descuentos GROUP BY tipo`
	rows, err := r.db.Query(ctx, porTipo)
	if err != nil {
		return nil, fmt.Errorf("descuentos por tipo: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tipo string
		var count int64
		if err := rows.Scan(&tipo, &count); err != nil {
			return nil, fmt.Errorf("descuentos por tipo: %w", err)
		}
		stats.DescuentosPorTipo[tipo] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top := `
		SELECT d.codigo, d.nombre, COUNT(u.id), COALESCE(SUM(u.monto_descuento), 0)
		FROM descuentos d
		JOIN descuento_usos u ON u.descuento_id = d.id
		GROUP BY d.id, d.codigo, d.nombre
		ORDER BY COUNT(u.id) DESC
		LIMIT 10
	`
	topRows, err := r.db.Query(ctx, top)
	if err != nil {
		return nil, fmt.Errorf("top descuentos: %w", err)
	}
	defer topRows.Close()
	for topRows.Next() {
		var t model.TopDescuento
		if err := topRows.Scan(&t.Codigo, &t.Nombre, &t.Usos, &t.MontoDescuentado); err != nil {
			return nil, fmt.Errorf("top descuentos: %w", err)
		}
		t.MontoDescuentado = t.MontoDescuentado.Round(2)
		stats.TopDescuentos = append(stats.TopDescuentos, t)
	}
	if err := topRows.Err(); err != nil {
		return nil, err
	}

	// Últimos 12 meses
	mensual := `
		SELECT
			to_char(date_trunc('month', fecha_uso), 'YYYY-MM'),
			COUNT(id),
			COALESCE(SUM(monto_descuento), 0)
		FROM descuento_usos
		WHERE fecha_uso >= NOW() - INTERVAL '365 days'
		GROUP BY date_trunc('month', fecha_uso)
		ORDER BY date_trunc('month', fecha_uso)
	`
	mesRows, err := r.db.Query(ctx, mensual)
	if err != nil {
		return nil, fmt.Errorf("usos por mes: %w", err)
	}
	defer mesRows.Close()
	for mesRows.Next() {
		var m model.UsoMensual
		if err := mesRows.Scan(&m.Mes, &m.Usos, &m.MontoDescuentado); err != nil {
			return nil, fmt.Errorf("usos por mes: %w", err)
		}
		m.MontoDescuentado = m.MontoDescuentado.Round(2)
		stats.UsosPorMes = append(stats.UsosPorMes, m)
	}

	return stats, mesRows.Err()
}

func (r *PostgresRepository) ActualizarEstados(ctx context.Context) (*model.ResultadoBarrido, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (*model.ResultadoBarrido, error) {
		expirar := `
			UPDATE descuentos
			SET estado = 'expirado', es_activo = FALSE
			WHERE estado = 'activo' AND fecha_fin IS NOT NULL AND fecha_fin < NOW()
		`
		expTag, err := tx.Exec(ctx, expirar)
		if err != nil {
			return nil, fmt.Errorf("expirar descuentos: %w", err)
		}

		reactivar := `
			UPDATE descuentos
			SET estado = 'activo', es_activo = TRUE
			WHERE estado = 'inactivo'
			  AND fecha_inicio <= NOW()
			  AND (fecha_fin IS NULL OR fecha_fin > NOW())
		`
		actTag, err := tx.Exec(ctx, reactivar)
		if err != nil {
			return nil, fmt.Errorf("reactivar descuentos: %w", err)
		}

		resultado := &model.ResultadoBarrido{
			Expirados:   expTag.RowsAffected(),
			Reactivados: actTag.RowsAffected(),
		}
		resultado.Total = resultado.Expirados + resultado.Reactivados

		return resultado, nil
	})
}

// -------------------------------------------------------------------
// PROMOCIONES
// -------------------------------------------------------------------

func (r *PostgresRepository) CrearPromocion(ctx context.Context, p *model.Promocion) (*model.Promocion, error) {
	query := `
		INSERT INTO promociones (
			nombre, descripcion, tipo, valor, condicion_minima,
			fecha_inicio, fecha_fin, estado, es_activo,
			productos_ids, clientes_ids, creado_por
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, fecha_creacion
	`

	err := r.db.QueryRow(ctx, query,
		p.Nombre,
		p.Descripcion,
		p.Tipo,
		p.Valor,
		p.CondicionMinima,
		p.FechaInicio,
		p.FechaFin,
		p.Estado,
		p.EsActivo,
		pq.Array(p.ProductosIDs),
		pq.Array(p.ClientesIDs),
		p.CreadoPor,
	).Scan(&p.ID, &p.FechaCreacion)
	if err != nil {
		return nil, fmt.Errorf("crear promoción: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ListarPromociones(ctx context.Context, soloActivas bool, skip, limit int) ([]*model.Promocion, error) {
	clauses := []string{"1=1"}
	if soloActivas {
		clauses = append(clauses, "es_activo = TRUE", "fecha_inicio <= NOW()", "(fecha_fin IS NULL OR fecha_fin > NOW())")
	}

	query := fmt.Sprintf(`
		SELECT
			id, nombre, descripcion, tipo, valor, condicion_minima,
			fecha_inicio, fecha_fin, fecha_creacion,
			estado, es_activo, productos_ids, clientes_ids, creado_por
		FROM promociones
		WHERE %s
		ORDER BY fecha_creacion DESC
		OFFSET $1 LIMIT $2
	`, utils.JoinWithAnd(clauses))

	rows, err := r.db.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("listar promociones: %w", err)
	}
	defer rows.Close()

	promociones := []*model.Promocion{}
	for rows.Next() {
		p := &model.Promocion{}
		err := rows.Scan(
			&p.ID, &p.Nombre, &p.Descripcion, &p.Tipo, &p.Valor, &p.CondicionMinima,
			&p.FechaInicio, &p.FechaFin, &p.FechaCreacion,
			&p.Estado, &p.EsActivo, &p.ProductosIDs, &p.ClientesIDs, &p.CreadoPor,
		)
		if err != nil {
			return nil, fmt.Errorf("listar promociones: %w", err)
		}
		promociones = append(promociones, p)
	}

	return promociones, rows.Err()
}

// -------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDescuento(row rowScanner) (*model.Descuento, error) {
	d := &model.Descuento{}
	err := row.Scan(
		&d.ID, &d.Codigo, &d.Nombre, &d.Descripcion,
		&d.Tipo, &d.Valor, &d.ValorMinimo, &d.ValorMaximo,
		&d.LimiteUsos, &d.UsosPorCliente, &d.UsosActuales,
		&d.FechaInicio, &d.FechaFin, &d.FechaCreacion,
		&d.Estado, &d.EsActivo, &d.AplicaEnvio, &d.AplicaImpuestos,
		&d.ProductosIDs, &d.ClientesIDs, &d.CategoriasIDs,
		&d.CreadoPor, &d.NotasInternas,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// 23505 es unique_violation
func esCodigoDuplicado(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
