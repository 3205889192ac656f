package entity

import "time"

// Roles de usuario del POS.
const (
	RoleAdmin  = "admin"
	RoleCajero = "cajero"
)

// User representa un usuario del sistema (cajero o administrador de una empresa).
type User struct {
	ID           int64
	CompanyID    int64
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string // ver constantes Role*
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
