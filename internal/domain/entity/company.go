package entity

import "time"

// Company representa una empresa emisora (contribuyente SII).
type Company struct {
	ID        int64
	Name      string // Razón social
	RUT       string // RUT chileno con dígito verificador (ej: "76.543.210-K")
	Activity  string // Giro declarado ante el SII
	Address   string
	Commune   string
	City      string
	Phone     string
	Email     string
	Logo      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
