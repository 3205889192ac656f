package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/application/importer"
)

// ImportHandler migración de datos desde dumps SQL de otros sistemas.
// Todas las rutas exigen rol administrador.
type ImportHandler struct {
	svc *importer.Service
}

// NewImportHandler construye el handler.
func NewImportHandler(svc *importer.Service) *ImportHandler {
	return &ImportHandler{svc: svc}
}

// Upload godoc
// @Summary      Subir dump SQL
// @Description  El dump se guarda para análisis, nunca se ejecuta contra la base.
// @Tags         import
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Dump SQL"
// @Success      201   {object}  dto.UploadResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/import/upload [post]
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "dump SQL requerido (campo file)"})
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

	out, err := h.svc.Upload(raw)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Tables godoc
// @Summary      Tablas y columnas del dump
// @Tags         import
// @Security     Bearer
// @Produce      json
// @Param        uploadId  path  string  true  "ID del upload"
// @Success      200  {array}  dto.ParsedTable
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/import/tables/{uploadId} [get]
func (h *ImportHandler) Tables(c *fiber.Ctx) error {
	out, err := h.svc.Tables(c.Params("uploadId"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Preview godoc
// @Summary      Previsualizar el mapeo de columnas
// @Tags         import
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MappingRequest  true  "Mapeo origen a destino"
// @Success      200   {object}  dto.PreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/import/preview [post]
func (h *ImportHandler) Preview(c *fiber.Ctx) error {
	var in dto.MappingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.svc.Preview(in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}

// Apply godoc
// @Summary      Aplicar la importación
// @Description  Inserta todas las filas mapeadas en la tabla destino y borra el dump.
// @Tags         import
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MappingRequest  true  "Mapeo origen a destino"
// @Success      200   {object}  dto.ApplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/import/apply [post]
func (h *ImportHandler) Apply(c *fiber.Ctx) error {
	var in dto.MappingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.svc.Apply(c.Context(), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(out)
}
