package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"comercial-backend/internal/domains/auditoria/model"
	"comercial-backend/internal/shared/utils"
)

// PostgresRepository implementa AuditoriaRepository sobre PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) AuditoriaRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Registrar(ctx context.Context, e *model.Evento) (*model.Evento, error) {
	query := `
		INSERT INTO auditoria (usuario, accion, entidad, entidad_id, detalle, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, ts
	`

	err := r.db.QueryRow(ctx, query,
		e.Usuario,
		e.Accion,
		e.Entidad,
		e.EntidadID,
		e.Detalle,
		e.IPAddress,
	).Scan(&e.ID, &e.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("registrar evento de auditoría: %w", err)
	}

	return e, nil
}

func (r *PostgresRepository) Listar(ctx context.Context, filtros *model.EventoFiltros, offset, limit int) ([]*model.Evento, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filtros != nil {
		if filtros.Usuario != nil {
			clauses = append(clauses, fmt.Sprintf("usuario = $%d", idx))
			args = append(args, *filtros.Usuario)
			idx++
		}
		if filtros.Accion != nil {
			clauses = append(clauses, fmt.Sprintf("accion = $%d", idx))
			args = append(args, *filtros.Accion)
			idx++
		}
		if filtros.Entidad != nil {
			clauses = append(clauses, fmt.Sprintf("entidad = $%d", idx))
			args = append(args, *filtros.Entidad)
			idx++
		}
		if filtros.EntidadID != nil {
			clauses = append(clauses, fmt.Sprintf("entidad_id = $%d", idx))
			args = append(args, *filtros.EntidadID)
			idx++
		}
	}

	query := fmt.Sprintf(`
		SELECT id, ts, usuario, accion, entidad, entidad_id, detalle, ip_address
		FROM auditoria
		WHERE %s
		ORDER BY ts DESC, id DESC
		OFFSET $%d LIMIT $%d
	`, utils.JoinWithAnd(clauses), idx, idx+1)
	args = append(args, offset, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar eventos de auditoría: %w", err)
	}
	defer rows.Close()

	eventos := []*model.Evento{}
	for rows.Next() {
		e := &model.Evento{}
		err := rows.Scan(&e.ID, &e.Timestamp, &e.Usuario, &e.Accion, &e.Entidad, &e.EntidadID, &e.Detalle, &e.IPAddress)
		if err != nil {
			return nil, fmt.Errorf("listar eventos de auditoría: %w", err)
		}
		eventos = append(eventos, e)
	}

	return eventos, rows.Err()
}

func (r *PostgresRepository) Obtener(ctx context.Context, id int64) (*model.Evento, error) {
	query := `
		SELECT id, ts, usuario, accion, entidad, entidad_id, detalle, ip_address
		FROM auditoria
		WHERE id = $1
	`

	e := &model.Evento{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Timestamp, &e.Usuario, &e.Accion, &e.Entidad, &e.EntidadID, &e.Detalle, &e.IPAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrEventoNotFound
		}
		return nil, fmt.Errorf("obtener evento de auditoría: %w", err)
	}

	return e, nil
}

func (r *PostgresRepository) Eliminar(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM auditoria WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("eliminar evento de auditoría: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrEventoNotFound
	}

	return nil
}
