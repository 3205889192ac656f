package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// SaleDetailRequest una línea de la venta entrante.
type SaleDetailRequest struct {
	ProductID int64           `json:"id_producto"`
	Name      string          `json:"nombre"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

// SalePaymentRequest un medio de pago aplicado a la venta.
type SalePaymentRequest struct {
	MethodID int64           `json:"id_pago"`
	Amount   decimal.Decimal `json:"monto"`
}

// CreateSaleRequest datos para registrar una venta.
type CreateSaleRequest struct {
	UserID   int64                `json:"id_usuario"`
	Total    decimal.Decimal      `json:"total"`
	Details  []SaleDetailRequest  `json:"detalles"`
	Payments []SalePaymentRequest `json:"pagos"`
}

// SaleDetailResponse una línea de la venta.
type SaleDetailResponse struct {
	ProductID int64           `json:"id_producto"`
	Name      string          `json:"nombre"`
	Quantity  decimal.Decimal `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse representación HTTP de una venta.
type SaleResponse struct {
	ID           int64                `json:"id_venta"`
	CompanyID    int64                `json:"id_empresa"`
	UserID       int64                `json:"id_usuario"`
	Date         time.Time            `json:"fecha"`
	Total        decimal.Decimal      `json:"total"`
	DocumentType int                  `json:"tipo_dte"`
	Folio        int64                `json:"folio"`
	DTEStatus    string               `json:"dte_estado"`
	Details      []SaleDetailResponse `json:"detalles"`
}

// DTEResult desenlace de la emisión de la boleta electrónica.
type DTEResult struct {
	SaleID int64  `json:"id_venta"`
	Folio  int64  `json:"folio"`
	Status string `json:"estado"` // EMITIDA | ERROR
	Timbre string `json:"timbre,omitempty"`
	XML    string `json:"xml,omitempty"`
}

// TicketResponse ticket ESC/POS listo para el cliente de impresión.
type TicketResponse struct {
	TicketBase64 string `json:"ticketBase64"`
	TextPreview  string `json:"textPreview"`
}

// EmitSaleResponse respuesta de la emisión completa: venta registrada, boleta
// (si se emitió DTE) y ticket para la impresora.
type EmitSaleResponse struct {
	Sale   *SaleResponse   `json:"venta"`
	DTE    *DTEResult      `json:"dte,omitempty"`
	Ticket *TicketResponse `json:"ticket,omitempty"`
}

// SaleToResponse mapea la entidad a su DTO.
func SaleToResponse(s *entity.Sale) *SaleResponse {
	if s == nil {
		return nil
	}
	details := make([]SaleDetailResponse, 0, len(s.Details))
	for _, d := range s.Details {
		details = append(details, SaleDetailResponse{
			ProductID: d.ProductID,
			Name:      d.Name,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			Subtotal:  d.Subtotal,
		})
	}
	return &SaleResponse{
		ID:           s.ID,
		CompanyID:    s.CompanyID,
		UserID:       s.UserID,
		Date:         s.Date,
		Total:        s.Total,
		DocumentType: s.DocumentType,
		Folio:        s.Folio,
		DTEStatus:    s.DTEStatus,
		Details:      details,
	}
}
