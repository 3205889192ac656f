package dte

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miposra/pos-api/internal/application/folios"
	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

// fakeAllocator entrega folios secuenciales desde next. Cada Allocate consume
// un folio, igual que el dispensador real: no hay devoluciones.
type fakeAllocator struct {
	next     int64
	artifact string
	err      error
	calls    int
}

func (f *fakeAllocator) Allocate(_ context.Context, _ int64, _ int) (*folios.Allocation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	folio := f.next
	f.next++
	return &folios.Allocation{Folio: folio, CafArtifact: f.artifact}, nil
}

// fakeSigner captura lo que recibe y responde según esté configurado.
type fakeSigner struct {
	lastBoleta *BoletaRequest
	lastCaf    string
	result     *SignResult
	err        error
}

func (f *fakeSigner) Sign(_ context.Context, boleta *BoletaRequest, cafXML string) (*SignResult, error) {
	f.lastBoleta = boleta
	f.lastCaf = cafXML
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.Folio = boleta.Documento.Encabezado.IdentificacionDTE.Folio
	return &res, nil
}

type fakeSaleRepo struct {
	sales map[int64]*entity.Sale
}

func newFakeSaleRepo(sales ...*entity.Sale) *fakeSaleRepo {
	m := make(map[int64]*entity.Sale)
	for _, s := range sales {
		m[s.ID] = s
	}
	return &fakeSaleRepo{sales: m}
}

func (f *fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	f.sales[sale.ID] = sale
	return nil
}

func (f *fakeSaleRepo) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSaleRepo) UpdateDTEResult(_ context.Context, saleID, folio int64, status, timbre string) error {
	s, ok := f.sales[saleID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Folio = folio
	s.DTEStatus = status
	s.Timbre = timbre
	return nil
}

func (f *fakeSaleRepo) ListByCompany(_ context.Context, _ int64, _, _ int) ([]*entity.Sale, error) {
	return nil, nil
}

type fakeCompanyRepo struct {
	companies map[int64]*entity.Company
}

func (f *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error { return nil }
func (f *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	return f.companies[id], nil
}
func (f *fakeCompanyRepo) GetByRUT(_ context.Context, _ string) (*entity.Company, error) {
	return nil, nil
}
func (f *fakeCompanyRepo) List(_ context.Context, _, _ int) ([]*entity.Company, error) {
	return nil, nil
}
func (f *fakeCompanyRepo) Update(_ context.Context, _ *entity.Company) error { return nil }

// ── helpers ───────────────────────────────────────────────────────────────────

func testSale() *entity.Sale {
	return &entity.Sale{
		ID:           100,
		CompanyID:    7,
		UserID:       1,
		Date:         time.Now(),
		Total:        decimal.NewFromInt(2380),
		DocumentType: entity.DTETypeBoleta,
		DTEStatus:    entity.DTEStatusPending,
		Details: []entity.SaleDetail{
			{ProductID: 1, Name: "Arroz", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(990), Subtotal: decimal.NewFromInt(1980)},
			{ProductID: 2, Name: "Pan", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(400), Subtotal: decimal.NewFromInt(400)},
		},
	}
}

func testCompany() *entity.Company {
	return &entity.Company{
		ID:       7,
		Name:     "Comercial Temuco SpA",
		RUT:      "76.543.210-3",
		Activity: "Venta de artículos electrónicos",
		Address:  "Av. Alemania 671",
		Commune:  "Temuco",
	}
}

func newOrchestratorForTest(sale *entity.Sale) (*Orchestrator, *fakeSaleRepo, *fakeAllocator, *fakeSigner) {
	saleRepo := newFakeSaleRepo(sale)
	companyRepo := &fakeCompanyRepo{companies: map[int64]*entity.Company{7: testCompany()}}
	allocator := &fakeAllocator{next: 42, artifact: "<AUTORIZACION>...</AUTORIZACION>"}
	signer := &fakeSigner{result: &SignResult{Timbre: "VEVE...base64", XML: "<DTE/>"}}
	o := NewOrchestrator(saleRepo, companyRepo, allocator, signer, Config{CertPassword: "secreto"})
	return o, saleRepo, allocator, signer
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestOrchestrator_EmiteBoleta(t *testing.T) {
	sale := testSale()
	o, saleRepo, _, signer := newOrchestratorForTest(sale)

	res, err := o.EmitFromSale(context.Background(), sale.ID, "")
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.Folio, "debe usar el folio asignado")
	assert.Equal(t, entity.DTEStatusIssued, res.Status)
	assert.Equal(t, "VEVE...base64", res.Timbre)

	// La venta quedó con el desenlace registrado.
	stored := saleRepo.sales[sale.ID]
	assert.Equal(t, int64(42), stored.Folio)
	assert.Equal(t, entity.DTEStatusIssued, stored.DTEStatus)
	assert.Equal(t, "VEVE...base64", stored.Timbre)

	// Documento construido a partir de la venta y la empresa.
	doc := signer.lastBoleta.Documento
	assert.Equal(t, entity.DTETypeBoleta, doc.Encabezado.IdentificacionDTE.TipoDTE)
	assert.Equal(t, int64(42), doc.Encabezado.IdentificacionDTE.Folio)
	assert.Equal(t, 3, doc.Encabezado.IdentificacionDTE.IndicadorServicio)
	assert.Equal(t, "76543210-3", doc.Encabezado.Emisor.Rut, "RUT del emisor normalizado")
	assert.Equal(t, "66666666-6", doc.Encabezado.Receptor.Rut, "receptor genérico de boleta")
	assert.Equal(t, int64(2380), doc.Encabezado.Totales.MontoTotal)
	require.Len(t, doc.Detalles, 2)
	assert.Equal(t, 1, doc.Detalles[0].NroLinDet)
	assert.Equal(t, "Arroz", doc.Detalles[0].Nombre)
	assert.Equal(t, int64(1980), doc.Detalles[0].MontoItem)
	assert.Equal(t, 2, doc.Detalles[1].NroLinDet)
	assert.Empty(t, doc.Referencias, "sin referencia fuera del set de pruebas")
	assert.Equal(t, "secreto", signer.lastBoleta.Certificado.Password)
}

func TestOrchestrator_ArtefactoCafIntacto(t *testing.T) {
	sale := testSale()
	o, _, allocator, signer := newOrchestratorForTest(sale)
	allocator.artifact = "<AUTORIZACION>\n  <CAF version=\"1.0\"><DA><RE>76543210-K</RE></DA></CAF>\n</AUTORIZACION>"

	_, err := o.EmitFromSale(context.Background(), sale.ID, "")
	require.NoError(t, err)

	assert.Equal(t, allocator.artifact, signer.lastCaf,
		"el CAF debe llegar al firmador byte a byte")
}

func TestOrchestrator_ReferenciaSetPruebas(t *testing.T) {
	sale := testSale()
	o, _, _, signer := newOrchestratorForTest(sale)

	_, err := o.EmitFromSale(context.Background(), sale.ID, "CASO-1")
	require.NoError(t, err)

	require.Len(t, signer.lastBoleta.Documento.Referencias, 1)
	ref := signer.lastBoleta.Documento.Referencias[0]
	assert.Equal(t, "SET", ref.TpoDocRef)
	assert.Equal(t, "CASO-1", ref.RazonRef)
}

func TestOrchestrator_FolioQuemadoCuandoFirmaFalla(t *testing.T) {
	sale := testSale()
	o, saleRepo, allocator, signer := newOrchestratorForTest(sale)
	signer.err = errors.New("SimpleAPI: 500")

	_, err := o.EmitFromSale(context.Background(), sale.ID, "")
	require.Error(t, err)

	// La venta quedó en ERROR con el folio quemado registrado.
	stored := saleRepo.sales[sale.ID]
	assert.Equal(t, entity.DTEStatusError, stored.DTEStatus)
	assert.Equal(t, int64(42), stored.Folio, "el folio quemado queda con rastro")
	assert.Empty(t, stored.Timbre)

	// Un reintento consume el folio siguiente: el quemado no se reutiliza.
	signer.err = nil
	res, err := o.EmitFromSale(context.Background(), sale.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(43), res.Folio)
	assert.Equal(t, 2, allocator.calls)
}

func TestOrchestrator_SinCafActivoNoTocaLaVenta(t *testing.T) {
	sale := testSale()
	o, saleRepo, allocator, _ := newOrchestratorForTest(sale)
	allocator.err = domain.ErrNoActiveCaf

	_, err := o.EmitFromSale(context.Background(), sale.ID, "")
	require.ErrorIs(t, err, domain.ErrNoActiveCaf)

	stored := saleRepo.sales[sale.ID]
	assert.Equal(t, entity.DTEStatusPending, stored.DTEStatus, "sin folio no hay nada que quemar")
	assert.Zero(t, stored.Folio)
}

func TestOrchestrator_CafAgotadoSePropaga(t *testing.T) {
	sale := testSale()
	o, _, allocator, _ := newOrchestratorForTest(sale)
	allocator.err = domain.ErrCafExhausted

	_, err := o.EmitFromSale(context.Background(), sale.ID, "")
	require.ErrorIs(t, err, domain.ErrCafExhausted,
		"agotamiento debe fallar ruidosamente, nunca emitir con folio inventado")
}

func TestOrchestrator_VentaYaEmitida(t *testing.T) {
	sale := testSale()
	sale.DTEStatus = entity.DTEStatusIssued
	sale.Folio = 10
	o, _, allocator, _ := newOrchestratorForTest(sale)

	_, err := o.EmitFromSale(context.Background(), sale.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, allocator.calls, "no debe consumir folio para una venta ya emitida")
}

func TestOrchestrator_VentaInexistente(t *testing.T) {
	o, _, _, _ := newOrchestratorForTest(testSale())

	_, err := o.EmitFromSale(context.Background(), 999, "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
