package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementa SaleRepository sobre PostgreSQL.
type SaleRepo struct {
	pool *pgxpool.Pool
}

// NewSaleRepository construye el repositorio.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepo {
	return &SaleRepo{pool: pool}
}

// Create inserta la venta, sus detalles y pagos en una sola transacción.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO venta
			(id_empresa, id_usuario, fecha, total, tipo_dte, folio, dte_estado, timbre, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, '', now(), now())
		RETURNING id_venta, created_at, updated_at`,
		sale.CompanyID, sale.UserID, sale.Date, sale.Total, sale.DocumentType, sale.DTEStatus,
	).Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insertar venta: %w", err)
	}

	for i := range sale.Details {
		d := &sale.Details[i]
		d.SaleID = sale.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO detalle_venta (id_venta, id_producto, nombre, cantidad, precio_unitario, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id_detalle`,
			d.SaleID, d.ProductID, d.Name, d.Quantity, d.UnitPrice, d.Subtotal,
		).Scan(&d.ID)
		if err != nil {
			return fmt.Errorf("insertar detalle de venta: %w", err)
		}
	}

	for i := range sale.Payments {
		p := &sale.Payments[i]
		p.SaleID = sale.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO venta_pago (id_venta, id_pago, monto)
			VALUES ($1, $2, $3)
			RETURNING id_venta_pago`,
			p.SaleID, p.MethodID, p.Amount,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insertar pago de venta: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	var s entity.Sale
	err := r.pool.QueryRow(ctx, `
		SELECT id_venta, id_empresa, id_usuario, fecha, total, tipo_dte, folio, dte_estado, timbre, created_at, updated_at
		FROM venta WHERE id_venta = $1`, id,
	).Scan(&s.ID, &s.CompanyID, &s.UserID, &s.Date, &s.Total, &s.DocumentType,
		&s.Folio, &s.DTEStatus, &s.Timbre, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venta por id: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id_detalle, id_venta, id_producto, nombre, cantidad, precio_unitario, subtotal
		FROM detalle_venta WHERE id_venta = $1 ORDER BY id_detalle`, id)
	if err != nil {
		return nil, fmt.Errorf("get detalles de venta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.SaleDetail
		if err := rows.Scan(&d.ID, &d.SaleID, &d.ProductID, &d.Name, &d.Quantity, &d.UnitPrice, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scan detalle de venta: %w", err)
		}
		s.Details = append(s.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	payRows, err := r.pool.Query(ctx, `
		SELECT id_venta_pago, id_venta, id_pago, monto
		FROM venta_pago WHERE id_venta = $1 ORDER BY id_venta_pago`, id)
	if err != nil {
		return nil, fmt.Errorf("get pagos de venta: %w", err)
	}
	defer payRows.Close()
	for payRows.Next() {
		var p entity.SalePayment
		if err := payRows.Scan(&p.ID, &p.SaleID, &p.MethodID, &p.Amount); err != nil {
			return nil, fmt.Errorf("scan pago de venta: %w", err)
		}
		s.Payments = append(s.Payments, p)
	}
	return &s, payRows.Err()
}

func (r *SaleRepo) UpdateDTEResult(ctx context.Context, saleID, folio int64, status, timbre string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE venta SET folio = $2, dte_estado = $3, timbre = $4, updated_at = now()
		WHERE id_venta = $1`,
		saleID, folio, status, timbre,
	)
	if err != nil {
		return fmt.Errorf("actualizar resultado DTE: %w", err)
	}
	return nil
}

func (r *SaleRepo) ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id_venta, id_empresa, id_usuario, fecha, total, tipo_dte, folio, dte_estado, timbre, created_at, updated_at
		FROM venta WHERE id_empresa = $1
		ORDER BY fecha DESC
		LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		err := rows.Scan(&s.ID, &s.CompanyID, &s.UserID, &s.Date, &s.Total, &s.DocumentType,
			&s.Folio, &s.DTEStatus, &s.Timbre, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan venta: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
