package repository

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id, ownerID string) (*entity.Category, error)
	GetByOwnerAndNameKey(ctx context.Context, ownerID, nameKey string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	List(ctx context.Context, ownerID string) ([]*entity.Category, error)
	Delete(ctx context.Context, id string) error
}
