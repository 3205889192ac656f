package entity

import "time"

// Tipos de DTE soportados (códigos oficiales SII).
const (
	DTETypeBoleta       = 39 // Boleta electrónica afecta
	DTETypeBoletaExenta = 41 // Boleta electrónica exenta
	DTETypeFactura      = 33 // Factura electrónica
)

// Caf representa un Código de Autorización de Folios emitido por el SII:
// el permiso para usar un rango contiguo de folios de un tipo de documento.
// Invariante central del sistema: a lo más un CAF activo por
// (empresa, tipo de documento) en todo momento.
//
// Cursor es el último folio ya consumido; parte en RangeStart-1 al cargar el CAF
// y solo avanza (nunca retrocede). Un folio comprometido queda quemado aunque la
// firma posterior falle: el SII exige anularlos formalmente, nunca reutilizarlos.
type Caf struct {
	ID           int64
	CompanyID    int64
	DocumentType int
	RangeStart   int64
	RangeEnd     int64
	Cursor       int64
	Active       bool
	Artifact     string // XML <AUTORIZACION> normalizado, inmutable; el firmador lo exige byte a byte
	CreatedAt    time.Time
}

// Estados derivados del ciclo de vida de un CAF.
// Pendiente → Activo → Agotado (terminal). Un CAF desplazado por una carga
// nueva antes de agotarse queda Superseded (terminal, cursor < RangeEnd).
const (
	CafStatePending    = "pendiente"
	CafStateActive     = "activo"
	CafStateExhausted  = "agotado"
	CafStateSuperseded = "reemplazado"
)

// Remaining cuántos folios quedan sin consumir en el rango.
func (c *Caf) Remaining() int64 {
	return c.RangeEnd - c.Cursor
}

// Exhausted el rango completo ya fue consumido.
func (c *Caf) Exhausted() bool {
	return c.Cursor >= c.RangeEnd
}

// State devuelve el estado derivado del CAF.
func (c *Caf) State() string {
	switch {
	case c.Active:
		return CafStateActive
	case c.Exhausted():
		return CafStateExhausted
	case c.Cursor > c.RangeStart-1:
		return CafStateSuperseded
	default:
		return CafStatePending
	}
}
