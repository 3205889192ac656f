package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
)

var _ repository.CafRepository = (*CafRepo)(nil)

// CafRepo implementa CafRepository sobre PostgreSQL.
//
// Las garantías de concurrencia del motor de folios viven aquí:
//   - CommitFolio es un UPDATE condicional (compare-and-swap sobre folio_actual),
//     nunca un read-then-write.
//   - RotateToNext toma la fila agotada con FOR UPDATE y hace la transición
//     desactivar/activar dentro de una sola transacción.
type CafRepo struct {
	pool *pgxpool.Pool
}

// NewCafRepository construye el repositorio.
func NewCafRepository(pool *pgxpool.Pool) *CafRepo {
	return &CafRepo{pool: pool}
}

const cafColumns = `id, empresa_id, tipo_dte, folio_desde, folio_hasta, folio_actual, activo, caf_archivo, created_at`

func (r *CafRepo) InsertAsActive(ctx context.Context, caf *entity.Caf) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Desactivar los CAF activos del mismo espacio de numeración antes de
	// insertar el nuevo: ningún lector concurrente puede ver dos activos.
	_, err = tx.Exec(ctx, `
		UPDATE folio_caf SET activo = false
		WHERE empresa_id = $1 AND tipo_dte = $2 AND activo = true`,
		caf.CompanyID, caf.DocumentType,
	)
	if err != nil {
		return fmt.Errorf("desactivar CAF previos: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO folio_caf
			(empresa_id, tipo_dte, folio_desde, folio_hasta, folio_actual, activo, caf_archivo, created_at)
		VALUES ($1, $2, $3, $4, $5, true, $6, now())
		RETURNING id, created_at`,
		caf.CompanyID, caf.DocumentType, caf.RangeStart, caf.RangeEnd, caf.Cursor, caf.Artifact,
	).Scan(&caf.ID, &caf.CreatedAt)
	if err != nil {
		return fmt.Errorf("insertar CAF: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *CafRepo) GetActive(ctx context.Context, companyID int64, documentType int) (*entity.Caf, error) {
	q := `
		SELECT ` + cafColumns + `
		FROM folio_caf
		WHERE empresa_id = $1 AND tipo_dte = $2 AND activo = true
		ORDER BY folio_desde ASC, created_at ASC
		LIMIT 1`
	caf, err := scanCaf(r.pool.QueryRow(ctx, q, companyID, documentType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get CAF activo: %w", err)
	}
	return caf, nil
}

func (r *CafRepo) GetByID(ctx context.Context, id int64) (*entity.Caf, error) {
	q := `SELECT ` + cafColumns + ` FROM folio_caf WHERE id = $1`
	caf, err := scanCaf(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get CAF por id: %w", err)
	}
	return caf, nil
}

// CommitFolio avanza el cursor con semántica CAS: la cláusula
// folio_actual = $2 hace que solo un asignador concurrente pueda ganar;
// el resto ve 0 filas afectadas y reintenta.
func (r *CafRepo) CommitFolio(ctx context.Context, cafID, lastCursor int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE folio_caf
		SET folio_actual = $2 + 1
		WHERE id = $1 AND folio_actual = $2 AND activo = true AND folio_actual < folio_hasta`,
		cafID, lastCursor,
	)
	if err != nil {
		return false, fmt.Errorf("commit folio: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CafRepo) RotateToNext(ctx context.Context, exhausted *entity.Caf) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Tomar la fila agotada con lock de fila. Si ya no está activa, otro
	// caller (rotación concurrente o una carga nueva) hizo la transición.
	var cursor, rangeEnd int64
	err = tx.QueryRow(ctx, `
		SELECT folio_actual, folio_hasta FROM folio_caf
		WHERE id = $1 AND activo = true
		FOR UPDATE`,
		exhausted.ID,
	).Scan(&cursor, &rangeEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lock CAF agotado: %w", err)
	}
	if cursor < rangeEnd {
		// Lectura obsoleta del caller: el CAF aún tiene folios.
		return false, nil
	}

	// Sucesor: el CAF pendiente (sin consumir) de rango más bajo por encima
	// del agotado. created_at desempata rangos coincidentes, que no deberían
	// ocurrir.
	var successorID int64
	err = tx.QueryRow(ctx, `
		SELECT id FROM folio_caf
		WHERE empresa_id = $1 AND tipo_dte = $2 AND activo = false
		  AND folio_desde > $3 AND folio_actual = folio_desde - 1
		ORDER BY folio_desde ASC, created_at ASC
		LIMIT 1
		FOR UPDATE`,
		exhausted.CompanyID, exhausted.DocumentType, exhausted.RangeEnd,
	).Scan(&successorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Sin sucesor el agotado permanece activo: así el agotamiento se
			// sigue reportando como ErrCafExhausted y no como falta de CAF.
			return false, domain.ErrCafExhausted
		}
		return false, fmt.Errorf("buscar CAF sucesor: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE folio_caf SET activo = false WHERE id = $1`, exhausted.ID); err != nil {
		return false, fmt.Errorf("desactivar CAF agotado: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE folio_caf SET activo = true WHERE id = $1`, successorID); err != nil {
		return false, fmt.Errorf("activar CAF sucesor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}

func (r *CafRepo) ListByCompany(ctx context.Context, companyID int64) ([]*entity.Caf, error) {
	q := `
		SELECT ` + cafColumns + `
		FROM folio_caf
		WHERE empresa_id = $1
		ORDER BY tipo_dte ASC, folio_desde ASC`
	rows, err := r.pool.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar CAF: %w", err)
	}
	defer rows.Close()
	var list []*entity.Caf
	for rows.Next() {
		caf, err := scanCaf(rows)
		if err != nil {
			return nil, fmt.Errorf("scan CAF: %w", err)
		}
		list = append(list, caf)
	}
	return list, rows.Err()
}

func scanCaf(row pgxScanner) (*entity.Caf, error) {
	var c entity.Caf
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.DocumentType,
		&c.RangeStart, &c.RangeEnd, &c.Cursor,
		&c.Active, &c.Artifact, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
