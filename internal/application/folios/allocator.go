package folios

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/repository"
)

const (
	// maxAttempts tope de reintentos cuando el compare-and-swap del cursor
	// pierde contra asignadores concurrentes. Cada derrota implica que otro
	// caller avanzó, así que el límite solo se alcanza bajo contención extrema.
	maxAttempts = 64

	// maxRotations tope de CAFs encadenados que una misma llamada puede rotar.
	// Una cadena más larga que esto indica datos corruptos y debe fallar
	// ruidosamente, no recursar.
	maxRotations = 16
)

// Allocation resultado de asignar un folio: el número y el XML del CAF que lo
// autoriza, tal como debe reenviarse al firmador (byte a byte).
type Allocation struct {
	Folio       int64
	CafArtifact string
}

// Allocator es el dispensador de folios: entrega el siguiente número no usado
// de (empresa, tipo de documento) exactamente una vez, detecta agotamiento y
// rota al siguiente CAF disponible en orden de rango.
//
// La corrección no depende de locks en memoria: cada commit de cursor es un
// update condicional en el store (ver repository.CafRepository.CommitFolio),
// por lo que varias réplicas del proceso pueden asignar en paralelo.
type Allocator struct {
	cafRepo repository.CafRepository
}

// NewAllocator construye el asignador.
func NewAllocator(cafRepo repository.CafRepository) *Allocator {
	return &Allocator{cafRepo: cafRepo}
}

// Allocate consume y devuelve el siguiente folio de (empresa, tipo).
//
// Errores: domain.ErrNoActiveCaf si no hay CAF cargado, domain.ErrCafExhausted
// si el activo se agotó y no hay sucesor, domain.ErrFolioConflict si la
// contención agotó los reintentos. Un folio devuelto queda consumido para
// siempre: si el caller falla después, el folio se pierde (quemado), nunca se
// vuelve a entregar.
func (a *Allocator) Allocate(ctx context.Context, companyID int64, documentType int) (*Allocation, error) {
	attempts := 0
	rotations := 0
	for {
		caf, err := a.cafRepo.GetActive(ctx, companyID, documentType)
		if err != nil {
			return nil, fmt.Errorf("buscar CAF activo: %w", err)
		}
		if caf == nil {
			return nil, domain.ErrNoActiveCaf
		}

		next := caf.Cursor + 1
		if next > caf.RangeEnd {
			rotations++
			if rotations > maxRotations {
				return nil, fmt.Errorf("cadena de CAFs supera %d rotaciones: %w", maxRotations, domain.ErrFolioConflict)
			}
			rotated, err := a.cafRepo.RotateToNext(ctx, caf)
			if err != nil {
				// Incluye domain.ErrCafExhausted: sin sucesor no hay nada que asignar.
				return nil, err
			}
			if rotated {
				log.Info().
					Int64("company_id", companyID).
					Int("document_type", documentType).
					Int64("caf_agotado", caf.ID).
					Msg("CAF agotado, rotado al siguiente rango")
			}
			// Rotación ganada o perdida: la siguiente vuelta lee el nuevo activo.
			continue
		}

		ok, err := a.cafRepo.CommitFolio(ctx, caf.ID, caf.Cursor)
		if err != nil {
			return nil, fmt.Errorf("comprometer folio %d: %w", next, err)
		}
		if !ok {
			// Otro asignador consumió este cursor; reintentar desde la lectura.
			attempts++
			if attempts >= maxAttempts {
				return nil, domain.ErrFolioConflict
			}
			continue
		}

		return &Allocation{Folio: next, CafArtifact: caf.Artifact}, nil
	}
}
