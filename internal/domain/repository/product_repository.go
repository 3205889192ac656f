package repository

import (
	"context"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// ProductFilter filtros de búsqueda del catálogo. Search aplica sobre nombre,
// código de barra, marca, proveedor y descripción.
type ProductFilter struct {
	CompanyID int64
	Search    string
	Limit     int
	Offset    int
}

// ProductRepository define el puerto de persistencia para productos.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int64) error

	// AdjustStock suma delta (puede ser negativo) al stock del producto de
	// forma atómica en la fila.
	AdjustStock(ctx context.Context, id int64, delta int64) error
}
