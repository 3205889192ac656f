package dte

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
	"github.com/miposra/pos-api/pkg/rut"
)

// Receptor genérico para boletas de consumo (sin identificar al comprador).
const (
	genericReceiverRUT  = "66666666-6"
	genericReceiverName = "Cliente Boleta"
)

// Config del orquestador de emisión. La contraseña del certificado viaja en el
// payload al firmador; el resto de la autenticación la maneja el Signer.
type Config struct {
	CertPassword      string
	IndicadorServicio int // 3 = boletas de venta y servicios
}

// Orchestrator coordina la emisión de la boleta electrónica de una venta:
//
//	Asignar folio → construir documento → firmar (SimpleAPI) → persistir resultado
//
// El folio se consume ANTES de firmar. Si la firma falla el folio queda quemado:
// se registra la venta en estado ERROR con ese folio y nunca se reutiliza. Esa
// es la semántica que exige el SII; un folio emitido dos veces es causal de
// rechazo de todo el rango.
type Orchestrator struct {
	saleRepo    repository.SaleRepository
	companyRepo repository.CompanyRepository
	allocator   FolioAllocator
	signer      Signer
	cfg         Config
}

// NewOrchestrator construye el orquestador con sus dependencias.
func NewOrchestrator(
	saleRepo repository.SaleRepository,
	companyRepo repository.CompanyRepository,
	allocator FolioAllocator,
	signer Signer,
	cfg Config,
) *Orchestrator {
	if cfg.IndicadorServicio == 0 {
		cfg.IndicadorServicio = 3
	}
	return &Orchestrator{
		saleRepo:    saleRepo,
		companyRepo: companyRepo,
		allocator:   allocator,
		signer:      signer,
		cfg:         cfg,
	}
}

// EmitFromSale emite la boleta electrónica de una venta ya persistida.
// reference es el nombre del caso cuando se corre el set de pruebas del SII
// (vacío en operación normal).
//
// Errores de asignación (ErrNoActiveCaf, ErrCafExhausted, ErrFolioConflict) se
// propagan sin tocar la venta: sin folio no hay nada que quemar. Un error del
// firmador deja la venta en ERROR con el folio quemado registrado.
func (o *Orchestrator) EmitFromSale(ctx context.Context, saleID int64, reference string) (*dto.DTEResult, error) {
	sale, err := o.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("buscar venta %d: %w", saleID, err)
	}
	if sale == nil {
		return nil, fmt.Errorf("venta %d: %w", saleID, domain.ErrNotFound)
	}
	if sale.DTEStatus == entity.DTEStatusIssued {
		return nil, fmt.Errorf("la venta %d ya tiene boleta emitida (folio %d): %w", saleID, sale.Folio, domain.ErrInvalidInput)
	}

	company, err := o.companyRepo.GetByID(ctx, sale.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("buscar empresa %d: %w", sale.CompanyID, err)
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}

	alloc, err := o.allocator.Allocate(ctx, sale.CompanyID, sale.DocumentType)
	if err != nil {
		return nil, err
	}

	boleta := o.buildBoleta(sale, company, alloc.Folio, reference)

	result, err := o.signer.Sign(ctx, boleta, alloc.CafArtifact)
	if err != nil {
		// El folio ya se consumió; queda quemado y con rastro en la venta.
		log.Error().
			Err(err).
			Int64("sale_id", saleID).
			Int64("folio", alloc.Folio).
			Msg("firma de boleta fallida, folio quemado")
		if uerr := o.saleRepo.UpdateDTEResult(ctx, saleID, alloc.Folio, entity.DTEStatusError, ""); uerr != nil {
			log.Error().Err(uerr).Int64("sale_id", saleID).Msg("no se pudo registrar el folio quemado")
		}
		return nil, fmt.Errorf("firmar boleta (folio %d): %w", alloc.Folio, err)
	}

	if err := o.saleRepo.UpdateDTEResult(ctx, saleID, alloc.Folio, entity.DTEStatusIssued, result.Timbre); err != nil {
		return nil, fmt.Errorf("persistir boleta emitida: %w", err)
	}

	log.Info().
		Int64("sale_id", saleID).
		Int64("folio", alloc.Folio).
		Int("document_type", sale.DocumentType).
		Msg("boleta emitida")

	return &dto.DTEResult{
		SaleID: saleID,
		Folio:  alloc.Folio,
		Status: entity.DTEStatusIssued,
		Timbre: result.Timbre,
		XML:    result.XML,
	}, nil
}

func (o *Orchestrator) buildBoleta(sale *entity.Sale, company *entity.Company, folio int64, reference string) *BoletaRequest {
	issuerRUT := company.RUT
	if n, err := rut.Normalize(company.RUT); err == nil {
		issuerRUT = n
	}

	detalles := make([]Detalle, 0, len(sale.Details))
	for i, d := range sale.Details {
		nombre := d.Name
		if len(nombre) > 80 {
			nombre = nombre[:80]
		}
		detalles = append(detalles, Detalle{
			NroLinDet: i + 1,
			Nombre:    nombre,
			Cantidad:  d.Quantity.InexactFloat64(),
			Precio:    d.UnitPrice.Round(0).IntPart(),
			MontoItem: d.Subtotal.Round(0).IntPart(),
		})
	}

	var referencias []Referencia
	if reference != "" {
		referencias = []Referencia{{
			NroLinRef: 1,
			TpoDocRef: "SET",
			FolioRef:  "0",
			RazonRef:  reference,
		}}
	}

	return &BoletaRequest{
		Documento: Documento{
			Encabezado: Encabezado{
				IdentificacionDTE: IdentificacionDTE{
					TipoDTE:           sale.DocumentType,
					Folio:             folio,
					FechaEmision:      time.Now().Format("2006-01-02"),
					IndicadorServicio: o.cfg.IndicadorServicio,
				},
				Emisor: Emisor{
					Rut:               issuerRUT,
					RazonSocialBoleta: company.Name,
					GiroBoleta:        company.Activity,
					DireccionOrigen:   company.Address,
					ComunaOrigen:      company.Commune,
				},
				Receptor: Receptor{
					Rut:         genericReceiverRUT,
					RazonSocial: genericReceiverName,
					Direccion:   company.Address,
					Comuna:      company.Commune,
				},
				Totales: Totales{
					MontoTotal: sale.Total.Round(0).IntPart(),
				},
			},
			Detalles:    detalles,
			Referencias: referencias,
		},
		Certificado: Certificado{
			Rut:      issuerRUT,
			Password: o.cfg.CertPassword,
		},
	}
}
