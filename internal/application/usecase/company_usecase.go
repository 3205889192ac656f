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
	"github.com/miposra/pos-api/pkg/rut"
)

// CompanyUseCase lógica de aplicación para empresas emisoras.
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create registra una empresa. El RUT se valida (módulo 11) y se guarda
// normalizado para que las comparaciones posteriores (carga de CAF) no
// dependan del formato de entrada.
func (u *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("razon_social es requerida: %w", domain.ErrInvalidInput)
	}
	normalized, err := rut.Normalize(in.RUT)
	if err != nil {
		return nil, fmt.Errorf("rut: %w", domain.ErrInvalidInput)
	}
	if err := rut.Validate(normalized); err != nil {
		return nil, fmt.Errorf("rut con dígito verificador incorrecto: %w", domain.ErrInvalidInput)
	}

	company := &entity.Company{
		Name:      strings.TrimSpace(in.Name),
		RUT:       normalized,
		Activity:  in.Activity,
		Address:   in.Address,
		Commune:   in.Commune,
		City:      in.City,
		Phone:     in.Phone,
		Email:     in.Email,
		Logo:      in.Logo,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := u.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return dto.CompanyToResponse(company), nil
}

// GetByID devuelve la empresa; nil si no existe.
func (u *CompanyUseCase) GetByID(ctx context.Context, id int64) (*dto.CompanyResponse, error) {
	company, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar empresa %d: %w", id, err)
	}
	return dto.CompanyToResponse(company), nil
}

// List devuelve las empresas registradas.
func (u *CompanyUseCase) List(ctx context.Context, limit, offset int) ([]dto.CompanyResponse, error) {
	companies, err := u.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar empresas: %w", err)
	}
	out := make([]dto.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, *dto.CompanyToResponse(c))
	}
	return out, nil
}

// Update aplica cambios parciales. El RUT no es actualizable: cambiarlo
// invalidaría los CAF cargados para la empresa.
func (u *CompanyUseCase) Update(ctx context.Context, id int64, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("buscar empresa %d: %w", id, err)
	}
	if company == nil {
		return nil, nil
	}

	if in.Name != nil {
		company.Name = *in.Name
	}
	if in.Activity != nil {
		company.Activity = *in.Activity
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Commune != nil {
		company.Commune = *in.Commune
	}
	if in.City != nil {
		company.City = *in.City
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	if in.Logo != nil {
		company.Logo = *in.Logo
	}
	company.UpdatedAt = time.Now()

	if err := u.repo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("actualizar empresa %d: %w", id, err)
	}
	return dto.CompanyToResponse(company), nil
}
