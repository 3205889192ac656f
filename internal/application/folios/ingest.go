package folios

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
	"github.com/miposra/pos-api/internal/domain/sii"
	"github.com/miposra/pos-api/pkg/rut"
)

// IngestService admite archivos CAF subidos por el operador y los deja como el
// CAF activo de su (empresa, tipo de documento).
type IngestService struct {
	cafRepo     repository.CafRepository
	companyRepo repository.CompanyRepository
}

// NewIngestService construye el servicio de carga de CAF.
func NewIngestService(cafRepo repository.CafRepository, companyRepo repository.CompanyRepository) *IngestService {
	return &IngestService{cafRepo: cafRepo, companyRepo: companyRepo}
}

// Ingest parsea y persiste un CAF para la empresa indicada.
//
// El RUT del CAF que no coincide con el de la empresa NO bloquea la carga:
// los errores de digitación aguas arriba son frecuentes y dejar a la empresa
// sin folios sería peor. Se registra la advertencia y se informa al caller.
// La desactivación de los CAF activos previos y la inserción del nuevo ocurren
// en una sola unidad atómica (contrato de CafRepository.InsertAsActive).
func (s *IngestService) Ingest(ctx context.Context, companyID int64, rawXML string) (*dto.CafResponse, error) {
	desc, err := sii.ParseCaf(rawXML)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("buscar empresa %d: %w", companyID, err)
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}

	warning := ""
	if !sameRUT(company.RUT, desc.IssuerRUT) {
		warning = fmt.Sprintf("el RUT del CAF (%s) no coincide con el de la empresa (%s)", desc.IssuerRUT, company.RUT)
		log.Warn().
			Int64("company_id", companyID).
			Str("rut_caf", desc.IssuerRUT).
			Str("rut_empresa", company.RUT).
			Msg("CAF con RUT emisor distinto al de la empresa; se carga igual")
	}

	caf := &entity.Caf{
		CompanyID:    companyID,
		DocumentType: desc.DocumentType,
		RangeStart:   desc.RangeStart,
		RangeEnd:     desc.RangeEnd,
		Cursor:       desc.RangeStart - 1,
		Active:       true,
		Artifact:     desc.NormalizedArtifact,
		CreatedAt:    time.Now(),
	}
	if err := s.cafRepo.InsertAsActive(ctx, caf); err != nil {
		return nil, fmt.Errorf("persistir CAF: %w", err)
	}

	log.Info().
		Int64("company_id", companyID).
		Int("document_type", caf.DocumentType).
		Int64("desde", caf.RangeStart).
		Int64("hasta", caf.RangeEnd).
		Msg("CAF cargado y activado")

	resp := dto.CafToResponse(caf)
	resp.Warning = warning
	return resp, nil
}

// List devuelve los CAF de una empresa, históricos incluidos.
func (s *IngestService) List(ctx context.Context, companyID int64) ([]dto.CafResponse, error) {
	cafs, err := s.cafRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar CAF: %w", err)
	}
	out := make([]dto.CafResponse, 0, len(cafs))
	for _, c := range cafs {
		out = append(out, *dto.CafToResponse(c))
	}
	return out, nil
}

// sameRUT compara dos RUT en forma normalizada; si alguno no normaliza,
// compara el texto tal cual.
func sameRUT(a, b string) bool {
	na, errA := rut.Normalize(a)
	nb, errB := rut.Normalize(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return na == nb
}
