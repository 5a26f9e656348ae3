package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
	"github.com/jhoicas/inventario-compras/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AdminIdentity identidad administradora estática; no vive en la tabla users.
type AdminIdentity struct {
	ID       string
	Email    string
	Password string
	Name     string
}

func (a AdminIdentity) enabled() bool { return a.Email != "" && a.Password != "" }

// AuthUseCase casos de uso de autenticación: registro, login y perfil propio.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	admin    AdminIdentity
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, admin AdminIdentity) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, admin: admin}
}

// RegisterUser crea un usuario con rol user: hashea password con bcrypt y persiste.
// Devuelve ErrEmailAlreadyExists si el email ya está tomado.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(in.Email)
	if uc.isAdminEmail(email) {
		return nil, domain.ErrEmailAlreadyExists
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         entity.RoleUser,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return uc.issue(*ToUserResponse(user))
}

// Login verifica email/password, genera JWT y retorna token + usuario.
// Credenciales inválidas (email inexistente o password incorrecto) son ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(in.Email)
	if uc.isAdminEmail(email) {
		if subtle.ConstantTimeCompare([]byte(in.Password), []byte(uc.admin.Password)) != 1 {
			return nil, domain.ErrUnauthorized
		}
		return uc.issue(uc.adminResponse())
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	return uc.issue(*ToUserResponse(user))
}

// Me devuelve el perfil del actor autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
	if actor.IsAdmin() && actor.UserID == uc.admin.ID {
		out := uc.adminResponse()
		return &out, nil
	}
	user, err := uc.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return ToUserResponse(user), nil
}

func (uc *AuthUseCase) issue(u dto.UserResponse) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: u}, nil
}

func (uc *AuthUseCase) isAdminEmail(email string) bool {
	return uc.admin.enabled() && strings.EqualFold(email, uc.admin.Email)
}

func (uc *AuthUseCase) adminResponse() dto.UserResponse {
	return dto.UserResponse{
		ID:     uc.admin.ID,
		Email:  uc.admin.Email,
		Name:   uc.admin.Name,
		Role:   entity.RoleAdmin,
		Status: entity.UserStatusActive,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ToUserResponse mapea un usuario sin exponer el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
