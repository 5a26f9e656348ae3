package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/auth"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/inventory"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

// UserUseCase gestión de usuarios por el admin.
type UserUseCase struct {
	repo      repository.UserRepository
	movements MovementRecorder
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, movements MovementRecorder) *UserUseCase {
	return &UserUseCase{repo: repo, movements: movements}
}

// List lista usuarios, más recientes primero.
func (uc *UserUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *auth.ToUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return auth.ToUserResponse(user), nil
}

// Update edita nombre, email, rol, estado o password.
func (uc *UserUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	before := inventory.UserFields(user)
	passwordChanged := false

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			other, err := uc.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, domain.ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
		passwordChanged = true
	}

	changes := inventory.Diff(before, inventory.UserFields(user))
	if changes == nil && !passwordChanged {
		return auth.ToUserResponse(user), nil
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventUserUpdated,
		Description: fmt.Sprintf("Usuario %s actualizado", user.Email),
		Actor:       actor,
		Metadata:    map[string]any{"targetUserId": user.ID, "passwordChanged": passwordChanged},
		Changes:     changes,
	})
	return auth.ToUserResponse(user), nil
}

// Delete elimina el usuario y todo lo que le pertenece.
func (uc *UserUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if id == actor.UserID {
		return domain.Invalid("id", "no puede eliminarse a sí mismo")
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := uc.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	uc.movements.Record(ctx, audit.Entry{
		EventType:   entity.EventUserDeleted,
		Description: fmt.Sprintf("Usuario %s eliminado", user.Email),
		Actor:       actor,
		Metadata:    map[string]any{"targetUserId": user.ID},
		Changes:     inventory.Snapshot(inventory.UserFields(user), nil),
	})
	return nil
}
