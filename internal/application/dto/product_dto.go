package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// CreateProductRequest datos para crear un producto del catálogo.
type CreateProductRequest struct {
	Name        string          `json:"nombre"`
	Barcode     string          `json:"codigo_barra"`
	Brand       string          `json:"marca"`
	Supplier    string          `json:"proveedor"`
	Description string          `json:"descripcion"`
	Category    string          `json:"categoria"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int64           `json:"stock"`
}

// UpdateProductRequest campos actualizables del producto.
type UpdateProductRequest struct {
	Name        *string          `json:"nombre"`
	Barcode     *string          `json:"codigo_barra"`
	Brand       *string          `json:"marca"`
	Supplier    *string          `json:"proveedor"`
	Description *string          `json:"descripcion"`
	Category    *string          `json:"categoria"`
	Price       *decimal.Decimal `json:"precio"`
	Stock       *int64           `json:"stock"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID          int64           `json:"id"`
	CompanyID   int64           `json:"company_id"`
	Name        string          `json:"nombre"`
	Barcode     string          `json:"codigo_barra"`
	Brand       string          `json:"marca"`
	Supplier    string          `json:"proveedor"`
	Description string          `json:"descripcion"`
	Category    string          `json:"categoria"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int64           `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductToResponse mapea la entidad a su DTO.
func ProductToResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		Name:        p.Name,
		Barcode:     p.Barcode,
		Brand:       p.Brand,
		Supplier:    p.Supplier,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}
