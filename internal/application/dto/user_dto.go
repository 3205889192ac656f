package dto

// RegisterRequest registro de usuario (cajero o admin) en una empresa.
type RegisterRequest struct {
	CompanyID int64  `json:"id_empresa"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"nombre"`
	Role      string `json:"rol"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	CompanyID int64  `json:"id_empresa"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthResponse token emitido tras registro o login.
type AuthResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"nombre"`
	Role      string `json:"rol"`
}
