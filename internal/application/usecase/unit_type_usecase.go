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

// UnitTypeUseCase CRUD de unidades de medida. Nombre y abreviatura son únicos por dueño.
type UnitTypeUseCase struct {
	repo        repository.UnitTypeRepository
	productRepo repository.ProductRepository
}

// NewUnitTypeUseCase construye el caso de uso.
func NewUnitTypeUseCase(repo repository.UnitTypeRepository, productRepo repository.ProductRepository) *UnitTypeUseCase {
	return &UnitTypeUseCase{repo: repo, productRepo: productRepo}
}

// Create crea una unidad del actor.
func (uc *UnitTypeUseCase) Create(ctx context.Context, actor entity.Actor, in dto.UnitTypeRequest) (*dto.UnitTypeResponse, error) {
	now := time.Now().UTC()
	u := &entity.UnitType{ID: uuid.New().String(), UserID: actor.UserID, CreatedAt: now, UpdatedAt: now}
	if err := uc.apply(ctx, u, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return toUnitTypeResponse(u), nil
}

// GetByID obtiene una unidad visible para el actor.
func (uc *UnitTypeUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.UnitTypeResponse, error) {
	u, err := uc.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return toUnitTypeResponse(u), nil
}

// List unidades del actor.
func (uc *UnitTypeUseCase) List(ctx context.Context, actor entity.Actor) ([]dto.UnitTypeResponse, error) {
	list, err := uc.repo.List(ctx, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	out := make([]dto.UnitTypeResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *toUnitTypeResponse(u))
	}
	return out, nil
}

// Update cambia nombre y abreviatura.
func (uc *UnitTypeUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UnitTypeRequest) (*dto.UnitTypeResponse, error) {
	u, err := uc.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.apply(ctx, u, in); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return toUnitTypeResponse(u), nil
}

// Delete elimina la unidad si ningún producto la usa.
func (uc *UnitTypeUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	u, err := uc.repo.GetByID(ctx, id, actor.OwnerScope())
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrNotFound
	}
	n, err := uc.productRepo.CountByUnitType(ctx, u.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d producto(s) usan la unidad", domain.ErrInUse, n)
	}
	return uc.repo.Delete(ctx, u.ID)
}

func (uc *UnitTypeUseCase) apply(ctx context.Context, u *entity.UnitType, in dto.UnitTypeRequest) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Invalid("name", "es requerido")
	}
	abbr := strings.TrimSpace(in.Abbreviation)
	nameKey, abbrKey := inventory.Key(name), inventory.Key(abbr)
	conflict, err := uc.repo.FindConflict(ctx, u.UserID, nameKey, abbrKey, u.ID)
	if err != nil {
		return err
	}
	if conflict != nil {
		if conflict.NameKey == nameKey {
			return fmt.Errorf("%w: la unidad %q ya existe", domain.ErrDuplicate, name)
		}
		return fmt.Errorf("%w: la abreviatura %q ya existe", domain.ErrDuplicate, abbr)
	}
	u.Name, u.NameKey = name, nameKey
	u.Abbreviation, u.AbbreviationKey = abbr, abbrKey
	return nil
}

func toUnitTypeResponse(u *entity.UnitType) *dto.UnitTypeResponse {
	return &dto.UnitTypeResponse{
		ID:           u.ID,
		UserID:       u.UserID,
		Name:         u.Name,
		Abbreviation: u.Abbreviation,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
