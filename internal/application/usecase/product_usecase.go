package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
)

// ProductUseCase lógica de aplicación para el catálogo de productos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create registra un producto del catálogo de la empresa.
func (u *ProductUseCase) Create(ctx context.Context, companyID int64, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nombre es requerido: %w", domain.ErrInvalidInput)
	}
	if in.Price.Sign() < 0 {
		return nil, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}

	product := &entity.Product{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(in.Name),
		Barcode:     in.Barcode,
		Brand:       in.Brand,
		Supplier:    in.Supplier,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := u.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return dto.ProductToResponse(product), nil
}

// GetByID devuelve el producto; nil si no existe.
func (u *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar producto %d: %w", id, err)
	}
	return dto.ProductToResponse(product), nil
}

// List busca en el catálogo de la empresa. search aplica sobre nombre, código
// de barra, marca, proveedor y descripción.
func (u *ProductUseCase) List(ctx context.Context, companyID int64, search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	products, err := u.repo.List(ctx, repository.ProductFilter{
		CompanyID: companyID,
		Search:    strings.TrimSpace(search),
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, *dto.ProductToResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update aplica cambios parciales al producto.
func (u *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar producto %d: %w", id, err)
	}
	if product == nil {
		return nil, nil
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	if in.Brand != nil {
		product.Brand = *in.Brand
	}
	if in.Supplier != nil {
		product.Supplier = *in.Supplier
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Price != nil {
		if in.Price.Sign() < 0 {
			return nil, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
		}
		product.Price = *in.Price
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	product.UpdatedAt = time.Now()

	if err := u.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("actualizar producto %d: %w", id, err)
	}
	return dto.ProductToResponse(product), nil
}

// Delete elimina el producto del catálogo.
func (u *ProductUseCase) Delete(ctx context.Context, id int64) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("eliminar producto %d: %w", id, err)
	}
	return nil
}
