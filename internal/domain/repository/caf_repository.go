package repository

import (
	"context"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// CafRepository define el puerto de persistencia para los CAF (autorizaciones
// de folios del SII). Las tres operaciones de mutación son las que sostienen la
// corrección del motor de folios; sus contratos atómicos son obligatorios para
// cualquier implementación.
type CafRepository interface {
	// InsertAsActive desactiva todos los CAF activos de (empresa, tipo) e
	// inserta caf como el nuevo activo, en una sola unidad atómica. Un
	// asignador concurrente nunca debe observar cero CAF activos entre ambos
	// pasos, ni dos activos después.
	InsertAsActive(ctx context.Context, caf *entity.Caf) error

	// GetActive devuelve el CAF activo de (empresa, tipo), ordenado por
	// range_start ascendente si por alguna razón hubiera más de uno.
	// Devuelve nil, nil si no hay ninguno.
	GetActive(ctx context.Context, companyID int64, documentType int) (*entity.Caf, error)

	GetByID(ctx context.Context, id int64) (*entity.Caf, error)

	// CommitFolio avanza el cursor del CAF de lastCursor a lastCursor+1 con
	// semántica compare-and-swap: la escritura solo procede si el cursor aún
	// vale lastCursor. Devuelve false si otro asignador ganó la carrera.
	// Una vez que devuelve true el folio lastCursor+1 queda consumido para
	// siempre, aunque el caller falle después.
	CommitFolio(ctx context.Context, cafID, lastCursor int64) (bool, error)

	// RotateToNext desactiva exhausted y activa el siguiente CAF pendiente con
	// range_start > exhausted.RangeEnd (orden ascendente), todo en una unidad
	// atómica. Devuelve (true, nil) si rotó, (false, nil) si otro caller ya
	// hizo la transición (el perdedor reintenta contra el nuevo activo) y
	// domain.ErrCafExhausted si no existe sucesor: en ese caso el CAF agotado
	// permanece activo para que el agotamiento se siga reportando como tal.
	RotateToNext(ctx context.Context, exhausted *entity.Caf) (bool, error)

	// ListByCompany lista los CAF de una empresa (activos e históricos, nunca
	// se borran: se conservan para auditoría).
	ListByCompany(ctx context.Context, companyID int64) ([]*entity.Caf, error)
}
