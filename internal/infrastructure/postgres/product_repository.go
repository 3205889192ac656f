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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementa ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepository construye el repositorio.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id_producto, id_empresa, nombre, codigo_barra, marca, proveedor, descripcion, categoria, precio, stock, created_at, updated_at`

func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO producto
			(id_empresa, nombre, codigo_barra, marca, proveedor, descripcion, categoria, precio, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id_producto, created_at, updated_at`,
		product.CompanyID, product.Name, product.Barcode, product.Brand,
		product.Supplier, product.Description, product.Category, product.Price, product.Stock,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insertar producto: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	q := `SELECT ` + productColumns + ` FROM producto WHERE id_producto = $1`
	product, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get producto por id: %w", err)
	}
	return product, nil
}

// List busca en nombre, código de barra, marca, proveedor y descripción cuando
// Search no viene vacío; igual que la búsqueda libre del POS original.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	q := `SELECT ` + productColumns + ` FROM producto WHERE id_empresa = $1`
	args := []any{filter.CompanyID}
	if filter.Search != "" {
		q += ` AND (nombre ILIKE $2 OR codigo_barra ILIKE $2 OR marca ILIKE $2 OR proveedor ILIKE $2 OR descripcion ILIKE $2)`
		args = append(args, "%"+filter.Search+"%")
	}
	q += fmt.Sprintf(` ORDER BY nombre ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		list = append(list, product)
	}
	return list, rows.Err()
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE producto
		SET nombre = $2, codigo_barra = $3, marca = $4, proveedor = $5,
		    descripcion = $6, categoria = $7, precio = $8, stock = $9, updated_at = now()
		WHERE id_producto = $1`,
		product.ID, product.Name, product.Barcode, product.Brand, product.Supplier,
		product.Description, product.Category, product.Price, product.Stock,
	)
	if err != nil {
		return fmt.Errorf("actualizar producto: %w", err)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM producto WHERE id_producto = $1`, id)
	if err != nil {
		return fmt.Errorf("eliminar producto: %w", err)
	}
	return nil
}

// AdjustStock incremento/decremento atómico en la fila del producto.
func (r *ProductRepo) AdjustStock(ctx context.Context, id int64, delta int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE producto SET stock = stock + $2, updated_at = now()
		WHERE id_producto = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("ajustar stock: %w", err)
	}
	return nil
}

func scanProduct(row pgxScanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Name, &p.Barcode, &p.Brand,
		&p.Supplier, &p.Description, &p.Category, &p.Price, &p.Stock,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
