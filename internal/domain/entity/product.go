package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de una empresa.
type Product struct {
	ID          int64
	CompanyID   int64
	Name        string
	Barcode     string
	Brand       string
	Supplier    string
	Description string
	Category    string
	Price       decimal.Decimal // precio unitario bruto (IVA incluido)
	Stock       int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
