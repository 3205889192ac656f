package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/miposra/pos-api/internal/application/importer"
	"github.com/miposra/pos-api/internal/domain"
)

var _ importer.BulkInserter = (*ImportRepo)(nil)

// Tablas y columnas que la importación puede poblar. Todo lo demás se rechaza:
// los identificadores llegan del cliente y jamás se interpolan sin validar.
var importAllowlist = map[string]map[string]bool{
	"producto": {
		"id_empresa": true, "nombre": true, "codigo_barra": true, "marca": true,
		"proveedor": true, "descripcion": true, "categoria": true, "precio": true, "stock": true,
	},
	"empresa": {
		"rut": true, "razon_social": true, "giro": true, "direccion": true,
		"comuna": true, "ciudad": true, "telefono": true, "correo": true,
	},
}

// ImportRepo inserción masiva para la importación de dumps.
type ImportRepo struct {
	pool *pgxpool.Pool
}

// NewImportRepository construye el repositorio.
func NewImportRepository(pool *pgxpool.Pool) *ImportRepo {
	return &ImportRepo{pool: pool}
}

// BulkInsert inserta las filas en una sola transacción. Los valores viajan como
// parámetros de texto; PostgreSQL los castea al tipo de la columna destino.
// Filas que violen restricciones únicas se omiten (ON CONFLICT DO NOTHING).
func (r *ImportRepo) BulkInsert(ctx context.Context, table string, columns []string, rows [][]string) (int64, error) {
	allowed, ok := importAllowlist[table]
	if !ok {
		return 0, fmt.Errorf("tabla destino %q no importable: %w", table, domain.ErrInvalidInput)
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("sin columnas destino: %w", domain.ErrInvalidInput)
	}
	for _, col := range columns {
		if !allowed[col] {
			return 0, fmt.Errorf("columna %q no importable en %s: %w", col, table, domain.ErrInvalidInput)
		}
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING`,
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("abrir transacción: %w", err)
	}
	defer tx.Rollback(ctx)

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("fila con %d valores para %d columnas: %w", len(row), len(columns), domain.ErrInvalidInput)
		}
		args := make([]any, len(row))
		for i, v := range row {
			if v == "" || strings.EqualFold(v, "NULL") {
				args[i] = nil
			} else {
				args[i] = v
			}
		}
		tag, err := tx.Exec(ctx, q, args...)
		if err != nil {
			return 0, fmt.Errorf("insertar fila en %s: %w", table, err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit importación: %w", err)
	}
	return inserted, nil
}
