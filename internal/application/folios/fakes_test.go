package folios_test

import (
	"context"
	"sync"

	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
)

// fakeCafRepo implementación en memoria de repository.CafRepository con los
// mismos contratos atómicos que la implementación PostgreSQL: GetActive
// devuelve una copia (lectura snapshot, puede quedar desactualizada) y las
// mutaciones se serializan bajo un mutex.
type fakeCafRepo struct {
	mu     sync.Mutex
	cafs   []*entity.Caf
	nextID int64
}

var _ repository.CafRepository = (*fakeCafRepo)(nil)

func newFakeCafRepo() *fakeCafRepo {
	return &fakeCafRepo{nextID: 1}
}

func (r *fakeCafRepo) InsertAsActive(_ context.Context, caf *entity.Caf) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cafs {
		if c.CompanyID == caf.CompanyID && c.DocumentType == caf.DocumentType {
			c.Active = false
		}
	}
	caf.ID = r.nextID
	r.nextID++
	caf.Active = true
	stored := *caf
	r.cafs = append(r.cafs, &stored)
	return nil
}

func (r *fakeCafRepo) GetActive(_ context.Context, companyID int64, documentType int) (*entity.Caf, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *entity.Caf
	for _, c := range r.cafs {
		if c.CompanyID != companyID || c.DocumentType != documentType || !c.Active {
			continue
		}
		if best == nil || c.RangeStart < best.RangeStart {
			best = c
		}
	}
	if best == nil {
		return nil, nil
	}
	snapshot := *best
	return &snapshot, nil
}

func (r *fakeCafRepo) GetByID(_ context.Context, id int64) (*entity.Caf, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cafs {
		if c.ID == id {
			snapshot := *c
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *fakeCafRepo) CommitFolio(_ context.Context, cafID, lastCursor int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cafs {
		if c.ID == cafID && c.Active && c.Cursor == lastCursor && c.Cursor < c.RangeEnd {
			c.Cursor = lastCursor + 1
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCafRepo) RotateToNext(_ context.Context, exhausted *entity.Caf) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current *entity.Caf
	for _, c := range r.cafs {
		if c.ID == exhausted.ID {
			current = c
			break
		}
	}
	// Otro caller ya hizo la transición o la lectura quedó obsoleta.
	if current == nil || !current.Active || current.Cursor < current.RangeEnd {
		return false, nil
	}

	var successor *entity.Caf
	for _, c := range r.cafs {
		if c.CompanyID != current.CompanyID || c.DocumentType != current.DocumentType {
			continue
		}
		if c.Active || c.RangeStart <= current.RangeEnd || c.Cursor != c.RangeStart-1 {
			continue
		}
		if successor == nil || c.RangeStart < successor.RangeStart ||
			(c.RangeStart == successor.RangeStart && c.CreatedAt.Before(successor.CreatedAt)) {
			successor = c
		}
	}
	if successor == nil {
		return false, domain.ErrCafExhausted
	}
	current.Active = false
	successor.Active = true
	return true, nil
}

func (r *fakeCafRepo) ListByCompany(_ context.Context, companyID int64) ([]*entity.Caf, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Caf
	for _, c := range r.cafs {
		if c.CompanyID == companyID {
			snapshot := *c
			out = append(out, &snapshot)
		}
	}
	return out, nil
}

// activeCount cuántos CAF activos hay para (empresa, tipo). Usado para
// verificar el invariante "a lo más uno activo" después de cada operación.
func (r *fakeCafRepo) activeCount(companyID int64, documentType int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.cafs {
		if c.CompanyID == companyID && c.DocumentType == documentType && c.Active {
			n++
		}
	}
	return n
}

// ── fakeCompanyRepo ───────────────────────────────────────────────────────────

type fakeCompanyRepo struct {
	mu        sync.Mutex
	companies map[int64]*entity.Company
}

var _ repository.CompanyRepository = (*fakeCompanyRepo)(nil)

func newFakeCompanyRepo(companies ...*entity.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: make(map[int64]*entity.Company)}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) Create(_ context.Context, company *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[company.ID] = company
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.companies[id], nil
}

func (r *fakeCompanyRepo) GetByRUT(_ context.Context, rut string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.RUT == rut {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) List(_ context.Context, _, _ int) ([]*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Company
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, company *entity.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[company.ID] = company
	return nil
}
