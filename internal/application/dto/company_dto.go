package dto

import (
	"time"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// CreateCompanyRequest datos para registrar una empresa emisora.
type CreateCompanyRequest struct {
	Name     string `json:"razon_social"`
	RUT      string `json:"rut"`
	Activity string `json:"giro"`
	Address  string `json:"direccion"`
	Commune  string `json:"comuna"`
	City     string `json:"ciudad"`
	Phone    string `json:"telefono"`
	Email    string `json:"correo"`
	Logo     string `json:"logo"`
}

// UpdateCompanyRequest campos actualizables de la empresa.
type UpdateCompanyRequest struct {
	Name     *string `json:"razon_social"`
	Activity *string `json:"giro"`
	Address  *string `json:"direccion"`
	Commune  *string `json:"comuna"`
	City     *string `json:"ciudad"`
	Phone    *string `json:"telefono"`
	Email    *string `json:"correo"`
	Logo     *string `json:"logo"`
}

// CompanyResponse representación HTTP de una empresa.
type CompanyResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"razon_social"`
	RUT       string    `json:"rut"`
	Activity  string    `json:"giro"`
	Address   string    `json:"direccion"`
	Commune   string    `json:"comuna"`
	City      string    `json:"ciudad"`
	Phone     string    `json:"telefono"`
	Email     string    `json:"correo"`
	Logo      string    `json:"logo"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyToResponse mapea la entidad a su DTO.
func CompanyToResponse(c *entity.Company) *CompanyResponse {
	if c == nil {
		return nil
	}
	return &CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		RUT:       c.RUT,
		Activity:  c.Activity,
		Address:   c.Address,
		Commune:   c.Commune,
		City:      c.City,
		Phone:     c.Phone,
		Email:     c.Email,
		Logo:      c.Logo,
		CreatedAt: c.CreatedAt,
	}
}
