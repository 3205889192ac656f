package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailySales total vendido en un día (para el gráfico de ventas).
type DailySales struct {
	Date  string // YYYY-MM-DD
	Total decimal.Decimal
}

// ProductRanking posición de un producto en el ranking de ventas del período.
type ProductRanking struct {
	Name     string
	Quantity decimal.Decimal
	Total    decimal.Decimal
}

// StatsFilter acota las consultas de estadísticas. Category y Brand son
// opcionales (vacío = sin filtro).
type StatsFilter struct {
	CompanyID int64
	From      time.Time
	To        time.Time
	Category  string
	Brand     string
}

// StatsRepository define el puerto de consultas agregadas de ventas.
// La agrupación se hace en SQL, no en memoria.
type StatsRepository interface {
	SalesByDay(ctx context.Context, f StatsFilter) ([]DailySales, error)
	TopProducts(ctx context.Context, f StatsFilter, limit int) ([]ProductRanking, error)
	Brands(ctx context.Context, companyID int64) ([]string, error)
	Categories(ctx context.Context, companyID int64) ([]string, error)
}
