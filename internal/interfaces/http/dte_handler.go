package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/miposra/pos-api/internal/application/dte"
	"github.com/miposra/pos-api/internal/application/dto"
)

// DTEHandler emisión de boletas para ventas ya registradas (protegido).
type DTEHandler struct {
	orchestrator *dte.Orchestrator
}

// NewDTEHandler construye el handler.
func NewDTEHandler(orchestrator *dte.Orchestrator) *DTEHandler {
	return &DTEHandler{orchestrator: orchestrator}
}

// Emit godoc
// @Summary      Emitir boleta de una venta existente
// @Description  Consume un folio del CAF activo y firma la boleta. Si la firma falla el folio queda quemado y la venta en estado ERROR.
// @Tags         dte
// @Security     Bearer
// @Produce      json
// @Param        idVenta  path   int     true   "ID de la venta"
// @Param        caso     query  string  false  "Caso del set de pruebas SII"
// @Success      200  {object}  dto.DTEResult
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "Sin CAF activo o CAF agotado"
// @Router       /api/dte/emitir/{idVenta} [post]
func (h *DTEHandler) Emit(c *fiber.Ctx) error {
	saleID, err := c.ParamsInt("idVenta")
	if err != nil || saleID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "idVenta numérico requerido"})
	}
	out, err := h.orchestrator.EmitFromSale(c.Context(), int64(saleID), c.Query("caso"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}
