package repository

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para Purchase y sus líneas.
type PurchaseRepository interface {
	// Create persiste la compra y todas sus líneas.
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id, ownerID string) (*entity.Purchase, error)
	// Update actualiza solo los campos de cabecera (las líneas son inmutables).
	Update(ctx context.Context, purchase *entity.Purchase) error
	List(ctx context.Context, ownerID string, limit, offset int) ([]*entity.Purchase, error)
	Delete(ctx context.Context, id string) error
}
