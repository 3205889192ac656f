package sales

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales  map[int64]*entity.Sale
	nextID int64
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[int64]*entity.Sale), nextID: 1}
}

func (f *fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	sale.ID = f.nextID
	f.nextID++
	cp := *sale
	f.sales[sale.ID] = &cp
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
	s := f.sales[saleID]
	s.Folio = folio
	s.DTEStatus = status
	s.Timbre = timbre
	return nil
}

func (f *fakeSaleRepo) ListByCompany(_ context.Context, companyID int64, _, _ int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range f.sales {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, nil
}

type stockCall struct {
	productID int64
	delta     int64
}

type fakeProductRepo struct {
	stockCalls []stockCall
	adjustErr  error
}

func (f *fakeProductRepo) Create(_ context.Context, _ *entity.Product) error { return nil }
func (f *fakeProductRepo) GetByID(_ context.Context, _ int64) (*entity.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) List(_ context.Context, _ repository.ProductFilter) ([]*entity.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Update(_ context.Context, _ *entity.Product) error { return nil }
func (f *fakeProductRepo) Delete(_ context.Context, _ int64) error           { return nil }
func (f *fakeProductRepo) AdjustStock(_ context.Context, id int64, delta int64) error {
	if f.adjustErr != nil {
		return f.adjustErr
	}
	f.stockCalls = append(f.stockCalls, stockCall{productID: id, delta: delta})
	return nil
}

type fakeCompanyRepo struct {
	company *entity.Company
}

func (f *fakeCompanyRepo) Create(_ context.Context, _ *entity.Company) error { return nil }
func (f *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	if f.company != nil && f.company.ID == id {
		return f.company, nil
	}
	return nil, nil
}
func (f *fakeCompanyRepo) GetByRUT(_ context.Context, _ string) (*entity.Company, error) {
	return nil, nil
}
func (f *fakeCompanyRepo) List(_ context.Context, _, _ int) ([]*entity.Company, error) {
	return nil, nil
}
func (f *fakeCompanyRepo) Update(_ context.Context, _ *entity.Company) error { return nil }

type fakeEmitter struct {
	result *dto.DTEResult
	err    error
	calls  int
}

func (f *fakeEmitter) EmitFromSale(_ context.Context, saleID int64, _ string) (*dto.DTEResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.SaleID = saleID
	return &res, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

const testCompanyID = int64(7)

func newUseCaseForTest() (*UseCase, *fakeSaleRepo, *fakeProductRepo, *fakeEmitter) {
	saleRepo := newFakeSaleRepo()
	productRepo := &fakeProductRepo{}
	companyRepo := &fakeCompanyRepo{company: &entity.Company{
		ID: testCompanyID, Name: "Comercial Temuco SpA", RUT: "76.543.210-3", Email: "contacto@temuco-demo.cl",
	}}
	emitter := &fakeEmitter{result: &dto.DTEResult{Folio: 42, Status: entity.DTEStatusIssued, Timbre: "TED..."}}
	return NewUseCase(saleRepo, productRepo, companyRepo, emitter), saleRepo, productRepo, emitter
}

func saleRequest() dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		UserID: 1,
		Details: []dto.SaleDetailRequest{
			{ProductID: 10, Name: "Arroz", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(990)},
			{ProductID: 11, Name: "Pan", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(400)},
		},
		Payments: []dto.SalePaymentRequest{{MethodID: 1, Amount: decimal.NewFromInt(2380)}},
	}
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestCreate_CalculaTotalesEnServidor(t *testing.T) {
	uc, saleRepo, _, _ := newUseCaseForTest()

	out, err := uc.Create(context.Background(), testCompanyID, saleRequest())
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(2380).Equal(out.Total), "total = suma de subtotales")
	require.Len(t, out.Details, 2)
	assert.True(t, decimal.NewFromInt(1980).Equal(out.Details[0].Subtotal))
	assert.Equal(t, entity.DTEStatusPending, out.DTEStatus)
	assert.Zero(t, out.Folio, "sin emitir no hay folio")

	stored := saleRepo.sales[out.ID]
	require.NotNil(t, stored)
	assert.Len(t, stored.Payments, 1)
}

func TestCreate_DescuentaStock(t *testing.T) {
	uc, _, productRepo, _ := newUseCaseForTest()

	_, err := uc.Create(context.Background(), testCompanyID, saleRequest())
	require.NoError(t, err)

	require.Len(t, productRepo.stockCalls, 2)
	assert.Equal(t, stockCall{productID: 10, delta: -2}, productRepo.stockCalls[0])
	assert.Equal(t, stockCall{productID: 11, delta: -1}, productRepo.stockCalls[1])
}

func TestCreate_SinItems(t *testing.T) {
	uc, _, _, _ := newUseCaseForTest()

	_, err := uc.Create(context.Background(), testCompanyID, dto.CreateSaleRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_CantidadInvalida(t *testing.T) {
	uc, _, _, _ := newUseCaseForTest()
	in := saleRequest()
	in.Details[0].Quantity = decimal.Zero

	_, err := uc.Create(context.Background(), testCompanyID, in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEmitFull_VentaBoletaYTicket(t *testing.T) {
	uc, _, _, emitter := newUseCaseForTest()

	out, err := uc.EmitFull(context.Background(), testCompanyID, saleRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, emitter.calls)
	assert.Equal(t, int64(42), out.Sale.Folio)
	assert.Equal(t, entity.DTEStatusIssued, out.Sale.DTEStatus)
	require.NotNil(t, out.DTE)
	assert.Equal(t, "TED...", out.DTE.Timbre)
	require.NotNil(t, out.Ticket)
	assert.NotEmpty(t, out.Ticket.TicketBase64)
	assert.Contains(t, out.Ticket.TextPreview, "Boleta electronica N 42")
	assert.Contains(t, out.Ticket.TextPreview, "TOTAL: $2380")
}

func TestEmitFull_SinCafPropagaError(t *testing.T) {
	uc, saleRepo, _, emitter := newUseCaseForTest()
	emitter.err = domain.ErrNoActiveCaf

	_, err := uc.EmitFull(context.Background(), testCompanyID, saleRequest(), "")
	require.ErrorIs(t, err, domain.ErrNoActiveCaf)

	// La venta quedó registrada aunque la emisión haya fallado.
	assert.Len(t, saleRepo.sales, 1)
}

func TestEmitFull_AgotamientoFallaRuidosamente(t *testing.T) {
	uc, _, _, emitter := newUseCaseForTest()
	emitter.err = domain.ErrCafExhausted

	_, err := uc.EmitFull(context.Background(), testCompanyID, saleRequest(), "")
	require.ErrorIs(t, err, domain.ErrCafExhausted,
		"nunca se entrega ticket con folio inventado")
}

func TestTicket_Reimpresion(t *testing.T) {
	uc, _, _, _ := newUseCaseForTest()
	created, err := uc.Create(context.Background(), testCompanyID, saleRequest())
	require.NoError(t, err)

	ticket, err := uc.Ticket(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.TicketBase64)
	assert.NotContains(t, ticket.TextPreview, "Boleta electronica", "venta sin boleta emitida")
}

func TestTicket_VentaInexistente(t *testing.T) {
	uc, _, _, _ := newUseCaseForTest()

	_, err := uc.Ticket(context.Background(), 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
