package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/repository"
)

// Tope del ranking de productos más vendidos.
const topProductsLimit = 10

// StatsUseCase consultas agregadas de ventas para el dashboard.
type StatsUseCase struct {
	repo repository.StatsRepository
}

// NewStatsUseCase construye el caso de uso.
func NewStatsUseCase(repo repository.StatsRepository) *StatsUseCase {
	return &StatsUseCase{repo: repo}
}

// parseFilter valida el rango de fechas. Sin fechas se usa el mes en curso.
func parseFilter(companyID int64, in dto.StatsRequest) (repository.StatsFilter, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	var err error
	if in.From != "" {
		if from, err = time.Parse("2006-01-02", in.From); err != nil {
			return repository.StatsFilter{}, fmt.Errorf("desde inválido (YYYY-MM-DD): %w", domain.ErrInvalidInput)
		}
	}
	if in.To != "" {
		if to, err = time.Parse("2006-01-02", in.To); err != nil {
			return repository.StatsFilter{}, fmt.Errorf("hasta inválido (YYYY-MM-DD): %w", domain.ErrInvalidInput)
		}
		// Inclusivo: cubre el día completo.
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if to.Before(from) {
		return repository.StatsFilter{}, fmt.Errorf("rango de fechas invertido: %w", domain.ErrInvalidInput)
	}

	return repository.StatsFilter{
		CompanyID: companyID,
		From:      from,
		To:        to,
		Category:  in.Category,
		Brand:     in.Brand,
	}, nil
}

// SalesByDay total vendido por día del período.
func (u *StatsUseCase) SalesByDay(ctx context.Context, companyID int64, in dto.StatsRequest) ([]dto.DailySalesResponse, error) {
	filter, err := parseFilter(companyID, in)
	if err != nil {
		return nil, err
	}
	rows, err := u.repo.SalesByDay(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ventas por día: %w", err)
	}
	out := make([]dto.DailySalesResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.DailySalesResponse{Date: r.Date, Total: r.Total})
	}
	return out, nil
}

// TopProducts ranking de productos más vendidos del período.
func (u *StatsUseCase) TopProducts(ctx context.Context, companyID int64, in dto.StatsRequest) ([]dto.ProductRankingResponse, error) {
	filter, err := parseFilter(companyID, in)
	if err != nil {
		return nil, err
	}
	rows, err := u.repo.TopProducts(ctx, filter, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("ranking de productos: %w", err)
	}
	out := make([]dto.ProductRankingResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProductRankingResponse{Name: r.Name, Quantity: r.Quantity, Total: r.Total})
	}
	return out, nil
}

// Filters marcas y categorías disponibles para acotar las consultas.
func (u *StatsUseCase) Filters(ctx context.Context, companyID int64) (*dto.StatsFiltersResponse, error) {
	brands, err := u.repo.Brands(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("marcas: %w", err)
	}
	categories, err := u.repo.Categories(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("categorías: %w", err)
	}
	return &dto.StatsFiltersResponse{Brands: brands, Categories: categories}, nil
}
