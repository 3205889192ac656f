package dto

import (
	"time"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// CafResponse representación HTTP de un CAF cargado.
// Warning se completa cuando la carga procedió con advertencias (ej: RUT del
// CAF distinto al de la empresa).
type CafResponse struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	DocumentType int       `json:"document_type"`
	RangeStart   int64     `json:"folio_desde"`
	RangeEnd     int64     `json:"folio_hasta"`
	Cursor       int64     `json:"folio_actual"`
	Active       bool      `json:"activo"`
	Remaining    int64     `json:"folios_restantes"`
	State        string    `json:"estado"`
	CreatedAt    time.Time `json:"created_at"`
	Warning      string    `json:"warning,omitempty"`
}

// CafToResponse mapea la entidad a su DTO.
func CafToResponse(c *entity.Caf) *CafResponse {
	if c == nil {
		return nil
	}
	return &CafResponse{
		ID:           c.ID,
		CompanyID:    c.CompanyID,
		DocumentType: c.DocumentType,
		RangeStart:   c.RangeStart,
		RangeEnd:     c.RangeEnd,
		Cursor:       c.Cursor,
		Active:       c.Active,
		Remaining:    c.Remaining(),
		State:        c.State(),
		CreatedAt:    c.CreatedAt,
	}
}
