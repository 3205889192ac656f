package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/miposra/pos-api/internal/domain/repository"
)

var _ repository.StatsRepository = (*StatsRepo)(nil)

// StatsRepo implementa StatsRepository sobre PostgreSQL. La agregación se hace
// en SQL (date_trunc + GROUP BY), no trayendo las ventas crudas a memoria.
type StatsRepo struct {
	pool *pgxpool.Pool
}

// NewStatsRepository construye el repositorio.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

// SalesByDay total vendido por día dentro del rango. Los filtros de categoría
// y marca acotan a ventas con al menos un producto que calce.
func (r *StatsRepo) SalesByDay(ctx context.Context, f repository.StatsFilter) ([]repository.DailySales, error) {
	q := `
		SELECT to_char(date_trunc('day', v.fecha), 'YYYY-MM-DD') AS dia,
		       COALESCE(SUM(v.total), 0)
		FROM venta v
		WHERE v.id_empresa = $1 AND v.fecha >= $2 AND v.fecha <= $3`
	args := []any{f.CompanyID, f.From, f.To}
	q, args = appendProductFilters(q, args, f)
	q += `
		GROUP BY dia
		ORDER BY dia ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("ventas por día: %w", err)
	}
	defer rows.Close()
	var out []repository.DailySales
	for rows.Next() {
		var d repository.DailySales
		if err := rows.Scan(&d.Date, &d.Total); err != nil {
			return nil, fmt.Errorf("scan ventas por día: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *StatsRepo) TopProducts(ctx context.Context, f repository.StatsFilter, limit int) ([]repository.ProductRanking, error) {
	q := `
		SELECT d.nombre, SUM(d.cantidad), SUM(d.subtotal)
		FROM detalle_venta d
		JOIN venta v ON v.id_venta = d.id_venta
		JOIN producto p ON p.id_producto = d.id_producto
		WHERE v.id_empresa = $1 AND v.fecha >= $2 AND v.fecha <= $3`
	args := []any{f.CompanyID, f.From, f.To}
	if f.Category != "" {
		args = append(args, f.Category)
		q += fmt.Sprintf(` AND p.categoria = $%d`, len(args))
	}
	if f.Brand != "" {
		args = append(args, "%"+f.Brand+"%")
		q += fmt.Sprintf(` AND p.marca ILIKE $%d`, len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(`
		GROUP BY d.nombre
		ORDER BY SUM(d.subtotal) DESC
		LIMIT $%d`, len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("top productos: %w", err)
	}
	defer rows.Close()
	var out []repository.ProductRanking
	for rows.Next() {
		var p repository.ProductRanking
		if err := rows.Scan(&p.Name, &p.Quantity, &p.Total); err != nil {
			return nil, fmt.Errorf("scan top productos: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *StatsRepo) Brands(ctx context.Context, companyID int64) ([]string, error) {
	return r.distinctColumn(ctx, "marca", companyID)
}

func (r *StatsRepo) Categories(ctx context.Context, companyID int64) ([]string, error) {
	return r.distinctColumn(ctx, "categoria", companyID)
}

func (r *StatsRepo) distinctColumn(ctx context.Context, column string, companyID int64) ([]string, error) {
	// column viene de un conjunto fijo interno, nunca del usuario.
	q := fmt.Sprintf(`
		SELECT DISTINCT %s FROM producto
		WHERE id_empresa = $1 AND %s <> ''
		ORDER BY %s ASC`, column, column, column)
	rows, err := r.pool.Query(ctx, q, companyID)
	if err != nil {
		return nil, fmt.Errorf("valores de %s: %w", column, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// appendProductFilters agrega el EXISTS sobre detalle/producto cuando hay
// filtro de categoría o marca (mismo criterio que el POS original: basta una
// línea que calce).
func appendProductFilters(q string, args []any, f repository.StatsFilter) (string, []any) {
	if f.Category == "" && f.Brand == "" {
		return q, args
	}
	sub := `
		AND EXISTS (
			SELECT 1 FROM detalle_venta d
			JOIN producto p ON p.id_producto = d.id_producto
			WHERE d.id_venta = v.id_venta`
	if f.Category != "" {
		args = append(args, f.Category)
		sub += fmt.Sprintf(` AND p.categoria = $%d`, len(args))
	}
	if f.Brand != "" {
		args = append(args, "%"+f.Brand+"%")
		sub += fmt.Sprintf(` AND p.marca ILIKE $%d`, len(args))
	}
	sub += `)`
	return q + sub, args
}
