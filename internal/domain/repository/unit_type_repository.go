package repository

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// UnitTypeRepository define el puerto de persistencia para UnitType (DIP).
type UnitTypeRepository interface {
	Create(ctx context.Context, unit *entity.UnitType) error
	GetByID(ctx context.Context, id, ownerID string) (*entity.UnitType, error)
	// FindConflict devuelve una unidad del dueño con el mismo nombre o abreviatura (plegados), excluyendo excludeID.
	FindConflict(ctx context.Context, ownerID, nameKey, abbreviationKey, excludeID string) (*entity.UnitType, error)
	Update(ctx context.Context, unit *entity.UnitType) error
	List(ctx context.Context, ownerID string) ([]*entity.UnitType, error)
	Delete(ctx context.Context, id string) error
}
