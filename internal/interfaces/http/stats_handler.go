package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/application/usecase"
)

// StatsHandler consultas agregadas para el dashboard (protegido).
type StatsHandler struct {
	uc *usecase.StatsUseCase
}

// NewStatsHandler construye el handler.
func NewStatsHandler(uc *usecase.StatsUseCase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

func statsRequest(c *fiber.Ctx) dto.StatsRequest {
	return dto.StatsRequest{
		From:     c.Query("desde"),
		To:       c.Query("hasta"),
		Category: c.Query("categoria"),
		Brand:    c.Query("marca"),
	}
}

// SalesByDay godoc
// @Summary      Total vendido por día
// @Tags         estadisticas
// @Security     Bearer
// @Produce      json
// @Param        desde      query  string  false  "Fecha inicial (YYYY-MM-DD)"
// @Param        hasta      query  string  false  "Fecha final inclusiva (YYYY-MM-DD)"
// @Param        categoria  query  string  false  "Filtrar por categoría"
// @Param        marca      query  string  false  "Filtrar por marca"
// @Success      200  {array}  dto.DailySalesResponse
// @Router       /api/estadisticas/ventas-por-dia [get]
func (h *StatsHandler) SalesByDay(c *fiber.Ctx) error {
	out, err := h.uc.SalesByDay(c.Context(), GetCompanyID(c), statsRequest(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// TopProducts godoc
// @Summary      Ranking de productos más vendidos
// @Tags         estadisticas
// @Security     Bearer
// @Produce      json
// @Param        desde  query  string  false  "Fecha inicial (YYYY-MM-DD)"
// @Param        hasta  query  string  false  "Fecha final inclusiva (YYYY-MM-DD)"
// @Success      200  {array}  dto.ProductRankingResponse
// @Router       /api/estadisticas/top-productos [get]
func (h *StatsHandler) TopProducts(c *fiber.Ctx) error {
	out, err := h.uc.TopProducts(c.Context(), GetCompanyID(c), statsRequest(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Filters godoc
// @Summary      Marcas y categorías disponibles
// @Tags         estadisticas
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StatsFiltersResponse
// @Router       /api/estadisticas/filtros [get]
func (h *StatsHandler) Filters(c *fiber.Ctx) error {
	out, err := h.uc.Filters(c.Context(), GetCompanyID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}
