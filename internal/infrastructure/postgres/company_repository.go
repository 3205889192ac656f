package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementa CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository construye el repositorio.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

const companyColumns = `id_empresa, rut, razon_social, giro, direccion, comuna, ciudad, telefono, correo, logo, created_at, updated_at`

func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO empresa
			(rut, razon_social, giro, direccion, comuna, ciudad, telefono, correo, logo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id_empresa, created_at, updated_at`,
		company.RUT, company.Name, company.Activity, company.Address,
		company.Commune, company.City, company.Phone, company.Email, company.Logo,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insertar empresa: %w", err)
	}
	return nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM empresa WHERE id_empresa = $1`
	company, err := scanCompany(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get empresa por id: %w", err)
	}
	return company, nil
}

func (r *CompanyRepo) GetByRUT(ctx context.Context, rut string) (*entity.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM empresa WHERE rut = $1`
	company, err := scanCompany(r.pool.QueryRow(ctx, q, rut))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get empresa por rut: %w", err)
	}
	return company, nil
}

func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM empresa ORDER BY razon_social ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listar empresas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan empresa: %w", err)
		}
		list = append(list, company)
	}
	return list, rows.Err()
}

func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE empresa
		SET rut = $2, razon_social = $3, giro = $4, direccion = $5, comuna = $6,
		    ciudad = $7, telefono = $8, correo = $9, logo = $10, updated_at = now()
		WHERE id_empresa = $1`,
		company.ID, company.RUT, company.Name, company.Activity, company.Address,
		company.Commune, company.City, company.Phone, company.Email, company.Logo,
	)
	if err != nil {
		return fmt.Errorf("actualizar empresa: %w", err)
	}
	return nil
}

func scanCompany(row pgxScanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.RUT, &c.Name, &c.Activity, &c.Address,
		&c.Commune, &c.City, &c.Phone, &c.Email, &c.Logo,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
