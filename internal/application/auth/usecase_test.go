package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miposra/pos-api/internal/application/dto"
	"github.com/miposra/pos-api/internal/domain"
	"github.com/miposra/pos-api/internal/domain/entity"
	"github.com/miposra/pos-api/pkg/jwt"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	users  map[string]*entity.User // clave: email
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if _, ok := f.users[user.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmailAndCompany(_ context.Context, email string, companyID int64) (*entity.User, error) {
	u, ok := f.users[email]
	if !ok || u.CompanyID != companyID {
		return nil, nil
	}
	return u, nil
}

type fakeCompanyRepo struct {
	companies map[int64]*entity.Company
}

func (f *fakeCompanyRepo) Create(_ context.Context, _ *entity.Company) error { return nil }
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

const testSecret = "secreto-de-prueba-no-usar"

func newUseCaseForTest() (*AuthUseCase, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	companyRepo := &fakeCompanyRepo{companies: map[int64]*entity.Company{
		7: {ID: 7, Name: "Comercial Temuco SpA", RUT: "76543210-3"},
	}}
	uc := NewAuthUseCase(userRepo, companyRepo, JWTConfig{
		Secret:     testSecret,
		ExpMinutes: 60,
		Issuer:     "test",
	})
	return uc, userRepo
}

func registerRequest() dto.RegisterRequest {
	return dto.RegisterRequest{
		CompanyID: 7,
		Email:     "cajero@temuco-demo.cl",
		Password:  "contrasena-larga",
		Name:      "Cajero Uno",
		Role:      entity.RoleCajero,
	}
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestRegister_EmiteTokenConClaims(t *testing.T) {
	uc, userRepo := newUseCaseForTest()

	out, err := uc.Register(context.Background(), registerRequest())
	require.NoError(t, err)
	require.NotEmpty(t, out.Token)

	userID, companyID, role, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.UserID, userID)
	assert.Equal(t, int64(7), companyID)
	assert.Equal(t, entity.RoleCajero, role)

	// La contraseña no se guarda en claro.
	stored := userRepo.users["cajero@temuco-demo.cl"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "contrasena-larga", stored.PasswordHash)
}

func TestRegister_EmpresaInexistente(t *testing.T) {
	uc, _ := newUseCaseForTest()
	in := registerRequest()
	in.CompanyID = 999

	_, err := uc.Register(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrCompanyNotFound)
}

func TestRegister_ContrasenaCorta(t *testing.T) {
	uc, _ := newUseCaseForTest()
	in := registerRequest()
	in.Password = "corta"

	_, err := uc.Register(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	uc, _ := newUseCaseForTest()
	_, err := uc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), registerRequest())
	require.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_CredencialesCorrectas(t *testing.T) {
	uc, _ := newUseCaseForTest()
	_, err := uc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	out, err := uc.Login(context.Background(), dto.LoginRequest{
		CompanyID: 7,
		Email:     "Cajero@Temuco-Demo.cl", // el email no distingue mayúsculas
		Password:  "contrasena-larga",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "Cajero Uno", out.Name)
}

func TestLogin_ContrasenaIncorrecta(t *testing.T) {
	uc, _ := newUseCaseForTest()
	_, err := uc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{
		CompanyID: 7,
		Email:     "cajero@temuco-demo.cl",
		Password:  "otra-cosa",
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistenteMismoError(t *testing.T) {
	uc, _ := newUseCaseForTest()

	_, err := uc.Login(context.Background(), dto.LoginRequest{
		CompanyID: 7,
		Email:     "nadie@temuco-demo.cl",
		Password:  "da igual",
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized,
		"usuario inexistente y contraseña mala deben ser indistinguibles")
}

func TestLogin_EmpresaEquivocada(t *testing.T) {
	uc, _ := newUseCaseForTest()
	_, err := uc.Register(context.Background(), registerRequest())
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{
		CompanyID: 8,
		Email:     "cajero@temuco-demo.cl",
		Password:  "contrasena-larga",
	})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
