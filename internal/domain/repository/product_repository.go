package repository

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// ownerID vacío significa sin filtro de dueño (admin).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id, ownerID string) (*entity.Product, error)
	// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE). Solo dentro de TxRunner.
	GetForUpdate(ctx context.Context, id, ownerID string) (*entity.Product, error)
	GetByOwnerAndSKUKey(ctx context.Context, ownerID, skuKey string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// SetQuantity fija la cantidad (ya calculada con piso en cero por el motor de stock).
	SetQuantity(ctx context.Context, id string, quantity int) error
	List(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, ownerID string) ([]*entity.Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	CountByUnitType(ctx context.Context, unitTypeID string) (int, error)
	Delete(ctx context.Context, id string) error
}
