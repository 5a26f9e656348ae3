package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-compras/internal/application/auth"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/inventario-compras/pkg/jwt"
)

const secret = "secret-de-pruebas"

var admin = auth.AdminIdentity{
	ID:       "00000000-0000-0000-0000-000000000000",
	Email:    "admin@example.com",
	Password: "admin-pass",
	Name:     "Administrador",
}

func newAuth() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewStore().Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"}, admin)
}

func TestRegisterYLogin(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	reg, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: " Ana@Example.com ", Password: "secreto1", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", reg.User.Email)
	assert.Equal(t, entity.RoleUser, reg.User.Role)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ANA@example.com", Password: "secreto1"})
	require.NoError(t, err)
	id, err := pkgjwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.UserID)
	assert.Equal(t, entity.RoleUser, id.Role)

	me, err := uc.Me(ctx, entity.Actor{UserID: id.UserID, Role: id.Role})
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Name)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreto1", Name: "Ana"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ANA@example.com", Password: "otro123", Name: "Ana 2"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: admin.Email, Password: "otro123", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreto1", Name: "Ana"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "mal"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_AdminEstatico(t *testing.T) {
	ctx := context.Background()
	uc := newAuth()

	out, err := uc.Login(ctx, dto.LoginRequest{Email: admin.Email, Password: admin.Password})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.User.Role)

	id, err := pkgjwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, id.UserID)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: admin.Email, Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	me, err := uc.Me(ctx, entity.Actor{UserID: admin.ID, Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, admin.Email, me.Email)
}
