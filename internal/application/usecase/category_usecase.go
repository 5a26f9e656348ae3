package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/inventory"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

// CategoryUseCase CRUD de categorías; nombre único por dueño sin distinguir mayúsculas.
type CategoryUseCase struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, productRepo repository.ProductRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, productRepo: productRepo}
}

// Create crea una categoría del actor.
func (uc *CategoryUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	existing, err := uc.repo.GetByOwnerAndNameKey(ctx, actor.UserID, inventory.Key(name))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: la categoría %q ya existe", domain.ErrDuplicate, name)
	}
	now := time.Now().UTC()
	c := &entity.Category{
		ID:          uuid.New().String(),
		UserID:      actor.UserID,
		Name:        name,
		NameKey:     inventory.Key(name),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// GetByID obtiene una categoría visible para el actor.
func (uc *CategoryUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(c), nil
}

// List categorías del actor ordenadas por nombre.
func (uc *CategoryUseCase) List(ctx context.Context, actor entity.Actor) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

// Update renombra o cambia la descripción.
func (uc *CategoryUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	if key := inventory.Key(name); key != c.NameKey {
		other, err := uc.repo.GetByOwnerAndNameKey(ctx, c.UserID, key)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != c.ID {
			return nil, fmt.Errorf("%w: la categoría %q ya existe", domain.ErrDuplicate, name)
		}
	}
	c.Name = name
	c.NameKey = inventory.Key(name)
	c.Description = in.Description
	c.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// Delete elimina la categoría si ningún producto la usa.
func (uc *CategoryUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	c, err := uc.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	n, err := uc.productRepo.CountByCategory(ctx, c.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d producto(s) usan la categoría", domain.ErrInUse, n)
	}
	return uc.repo.Delete(ctx, c.ID)
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
