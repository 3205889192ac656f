package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
)

// errorJSON mapea los errores de dominio a respuestas HTTP. El código textual
// permite al frontend distinguir los desenlaces de folios: sin CAF cargado,
// CAF agotado y conflicto transitorio piden acciones distintas del operador.
func errorJSON(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrCafMalformed):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CAF_MALFORMED", Message: err.Error()})
	case errors.Is(err, domain.ErrCompanyNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "COMPANY_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrNoActiveCaf):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NO_ACTIVE_CAF", Message: err.Error()})
	case errors.Is(err, domain.ErrCafExhausted):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CAF_EXHAUSTED", Message: err.Error()})
	case errors.Is(err, domain.ErrFolioConflict):
		// Transitorio: el cliente puede reintentar.
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "FOLIO_CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
