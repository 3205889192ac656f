package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
	"github.com/miposra/pos-api/internal/infrastructure/escpos"
)

// DTEEmitter es el puerto hacia el orquestador de emisión de boletas.
type DTEEmitter interface {
	EmitFromSale(ctx context.Context, saleID int64, reference string) (*dto.DTEResult, error)
}

// UseCase registra ventas y coordina la emisión completa: venta en DB, boleta
// electrónica (folio + firma) y ticket ESC/POS para la impresora.
type UseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	companyRepo repository.CompanyRepository
	emitter     DTEEmitter
}

// NewUseCase construye el caso de uso de ventas.
func NewUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	emitter DTEEmitter,
) *UseCase {
	return &UseCase{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		companyRepo: companyRepo,
		emitter:     emitter,
	}
}

// Create registra la venta con sus detalles y pagos, y descuenta stock.
// Los subtotales y el total se calculan en el servidor; el total del cliente
// no se confía.
func (u *UseCase) Create(ctx context.Context, companyID int64, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Details) == 0 {
		return nil, fmt.Errorf("la venta no tiene items: %w", domain.ErrInvalidInput)
	}

	total := decimal.Zero
	details := make([]entity.SaleDetail, 0, len(in.Details))
	for _, d := range in.Details {
		if d.Quantity.Sign() <= 0 {
			return nil, fmt.Errorf("cantidad inválida para producto %d: %w", d.ProductID, domain.ErrInvalidInput)
		}
		subtotal := d.Quantity.Mul(d.UnitPrice)
		total = total.Add(subtotal)
		details = append(details, entity.SaleDetail{
			ProductID: d.ProductID,
			Name:      d.Name,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Subtotal:  subtotal,
		})
	}

	payments := make([]entity.SalePayment, 0, len(in.Payments))
	for _, p := range in.Payments {
		payments = append(payments, entity.SalePayment{MethodID: p.MethodID, Amount: p.Amount})
	}

	sale := &entity.Sale{
		CompanyID:    companyID,
		UserID:       in.UserID,
		Date:         time.Now(),
		Total:        total,
		DocumentType: entity.DTETypeBoleta,
		DTEStatus:    entity.DTEStatusPending,
		Details:      details,
		Payments:     payments,
	}
	if err := u.saleRepo.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("registrar venta: %w", err)
	}

	// Descuento de stock por línea. Si un producto no existe en el catálogo
	// (venta libre) se omite sin abortar la venta ya registrada.
	for _, d := range details {
		if d.ProductID == 0 {
			continue
		}
		if err := u.productRepo.AdjustStock(ctx, d.ProductID, -d.Quantity.IntPart()); err != nil {
			log.Warn().
				Err(err).
				Int64("sale_id", sale.ID).
				Int64("product_id", d.ProductID).
				Msg("no se pudo descontar stock")
		}
	}

	return dto.SaleToResponse(sale), nil
}

// EmitFull registra la venta, emite la boleta electrónica y genera el ticket.
//
// Si la emisión falla la venta ya quedó persistida (con el folio quemado
// registrado cuando la firma falló) y el error se propaga: no se entrega
// ticket con folio inventado.
func (u *UseCase) EmitFull(ctx context.Context, companyID int64, in dto.CreateSaleRequest, reference string) (*dto.EmitSaleResponse, error) {
	sale, err := u.Create(ctx, companyID, in)
	if err != nil {
		return nil, err
	}

	result, err := u.emitter.EmitFromSale(ctx, sale.ID, reference)
	if err != nil {
		return nil, fmt.Errorf("venta %d registrada pero sin boleta: %w", sale.ID, err)
	}
	sale.Folio = result.Folio
	sale.DTEStatus = result.Status

	ticket, err := u.buildTicket(ctx, sale)
	if err != nil {
		return nil, err
	}
	return &dto.EmitSaleResponse{Sale: sale, DTE: result, Ticket: ticket}, nil
}

// Ticket genera el ticket ESC/POS de una venta ya registrada (reimpresión).
func (u *UseCase) Ticket(ctx context.Context, saleID int64) (*dto.TicketResponse, error) {
	sale, err := u.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("buscar venta %d: %w", saleID, err)
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %d: %w", saleID, domain.ErrNotFound)
	}
	return u.buildTicket(ctx, dto.SaleToResponse(sale))
}

// GetByID devuelve la venta; nil si no existe.
func (u *UseCase) GetByID(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	sale, err := u.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar venta %d: %w", id, err)
	}
	return dto.SaleToResponse(sale), nil
}

// List ventas de la empresa, más recientes primero.
func (u *UseCase) List(ctx context.Context, companyID int64, limit, offset int) ([]dto.SaleResponse, error) {
	sales, err := u.saleRepo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}
	out := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, *dto.SaleToResponse(s))
	}
	return out, nil
}

func (u *UseCase) buildTicket(ctx context.Context, sale *dto.SaleResponse) (*dto.TicketResponse, error) {
	company, err := u.companyRepo.GetByID(ctx, sale.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("buscar empresa %d: %w", sale.CompanyID, err)
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}

	details := make([]entity.SaleDetail, 0, len(sale.Details))
	for _, d := range sale.Details {
		details = append(details, entity.SaleDetail{
			ProductID: d.ProductID,
			Name:      d.Name,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Subtotal:  d.Subtotal,
		})
	}
	ticket := escpos.Ticket{
		Company: company,
		SaleID:  sale.ID,
		Date:    sale.Date,
		Folio:   sale.Folio,
		Details: details,
		Total:   sale.Total,
	}

	b64, err := escpos.RenderBase64(ticket)
	if err != nil {
		return nil, fmt.Errorf("generar ticket: %w", err)
	}
	return &dto.TicketResponse{
		TicketBase64: b64,
		TextPreview:  escpos.TextPreview(ticket),
	}, nil
}
