package dto

import "github.com/shopspring/decimal"

// StatsRequest filtros de estadísticas (query params).
type StatsRequest struct {
	From     string `query:"desde"`     // YYYY-MM-DD
	To       string `query:"hasta"`     // YYYY-MM-DD
	Category string `query:"categoria"` // opcional
	Brand    string `query:"marca"`     // opcional
}

// DailySalesResponse total vendido por día.
type DailySalesResponse struct {
	Date  string          `json:"fecha"`
	Total decimal.Decimal `json:"total"`
}

// ProductRankingResponse posición en el ranking de productos vendidos.
type ProductRankingResponse struct {
	Name     string          `json:"nombre"`
	Quantity decimal.Decimal `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

// StatsFiltersResponse valores disponibles para filtrar (marcas y categorías).
type StatsFiltersResponse struct {
	Brands     []string `json:"marcas"`
	Categories []string `json:"categorias"`
}
