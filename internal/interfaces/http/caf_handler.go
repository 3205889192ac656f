package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/application/folios"
	"github.com/miposra/pos-api/internal/domain/entity"
)

// CafHandler maneja la carga y consulta de CAF (protegido).
type CafHandler struct {
	ingest    *folios.IngestService
	allocator *folios.Allocator
}

// NewCafHandler construye el handler.
func NewCafHandler(ingest *folios.IngestService, allocator *folios.Allocator) *CafHandler {
	return &CafHandler{ingest: ingest, allocator: allocator}
}

// Upload godoc
// @Summary      Cargar archivo CAF del SII
// @Description  Activa el CAF para (empresa, tipo de documento), desplazando el activo anterior.
// @Tags         folios
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Archivo CAF XML"
// @Success      201   {object}  dto.CafResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/folios/upload [post]
func (h *CafHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "archivo CAF requerido (campo file)"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"})
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: "no se pudo leer el archivo"})
	}

	out, err := h.ingest.Ingest(c.Context(), GetCompanyID(c), string(raw))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar CAF de la empresa (históricos incluidos)
// @Tags         folios
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CafResponse
// @Router       /api/folios [get]
func (h *CafHandler) List(c *fiber.Ctx) error {
	out, err := h.ingest.List(c.Context(), GetCompanyID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Allocate godoc
// @Summary      Consumir el siguiente folio
// @Description  Consume definitivamente un folio del CAF activo. El folio devuelto nunca se vuelve a entregar, aunque el caller no lo use.
// @Tags         folios
// @Security     Bearer
// @Produce      json
// @Param        tipo_dte  query  int  false  "Tipo de DTE"  default(39)
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/folios/asignar [post]
func (h *CafHandler) Allocate(c *fiber.Ctx) error {
	docType := c.QueryInt("tipo_dte", entity.DTETypeBoleta)
	alloc, err := h.allocator.Allocate(c.Context(), GetCompanyID(c), docType)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"folio":    alloc.Folio,
		"tipo_dte": docType,
	})
}
