package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo DTE de una venta.
const (
	DTEStatusPending = "PENDIENTE" // venta registrada, boleta aún no emitida
	DTEStatusIssued  = "EMITIDA"   // boleta firmada y timbrada
	DTEStatusError   = "ERROR"     // la firma falló; el folio asignado quedó quemado
)

// Sale representa una venta registrada en el punto de venta.
// Folio y Timbre se completan al emitir la boleta electrónica.
type Sale struct {
	ID           int64
	CompanyID    int64
	UserID       int64
	Date         time.Time
	Total        decimal.Decimal
	DocumentType int    // tipo de DTE emitido (39 boleta por defecto)
	Folio        int64  // folio asignado por el motor de folios; 0 = sin emitir
	DTEStatus    string // ver constantes DTEStatus*
	Timbre       string // TED devuelto por el firmador (base64)
	Details      []SaleDetail
	Payments     []SalePayment
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SaleDetail una línea de la venta.
type SaleDetail struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Name      string // nombre al momento de la venta (el catálogo puede cambiar después)
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// SalePayment un medio de pago aplicado a la venta.
type SalePayment struct {
	ID        int64
	SaleID    int64
	MethodID  int64 // efectivo, débito, crédito, etc.
	Amount    decimal.Decimal
}
