package repository

import (
	"context"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	// Create persiste la venta con sus detalles y pagos en una sola
	// transacción y completa los IDs generados.
	Create(ctx context.Context, sale *entity.Sale) error

	// GetByID devuelve la venta con detalles y pagos cargados; nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)

	// UpdateDTEResult registra el desenlace de la emisión: folio asignado,
	// estado (EMITIDA o ERROR) y timbre. Se invoca también cuando la firma
	// falla, porque el folio ya quedó quemado y debe quedar rastro.
	UpdateDTEResult(ctx context.Context, saleID, folio int64, status, timbre string) error

	ListByCompany(ctx context.Context, companyID int64, limit, offset int) ([]*entity.Sale, error)
}
