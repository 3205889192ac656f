package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// ErrCompanyNotFound la empresa destino de una operación no existe.
	ErrCompanyNotFound = errors.New("empresa no encontrada")

	// ErrCafMalformed el archivo CAF subido no es un XML de autorización SII válido
	// (campos faltantes, valores no numéricos o rango invertido).
	ErrCafMalformed = errors.New("archivo CAF inválido o incompleto")

	// ErrNoActiveCaf no existe CAF activo para (empresa, tipo de documento).
	// El operador debe cargar un CAF antes de poder emitir.
	ErrNoActiveCaf = errors.New("no hay CAF activo para esta empresa")

	// ErrCafExhausted el CAF activo consumió todo su rango y no hay CAF sucesor
	// cargado. El operador debe solicitar y cargar un nuevo CAF al SII.
	ErrCafExhausted = errors.New("CAF agotado, no hay más folios")

	// ErrFolioConflict dos asignaciones concurrentes compitieron por el mismo
	// cursor y se agotaron los reintentos. Transitorio: el caller puede reintentar.
	ErrFolioConflict = errors.New("conflicto de concurrencia al consumir folio")
)
