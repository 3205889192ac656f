package repository

import (
	"context"

	"github.com/miposra/pos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmailAndCompany(ctx context.Context, email string, companyID int64) (*entity.User, error)
}
