package repository

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// MovementRepository puerto append-only para movimientos auditados.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// GetByID devuelve el movimiento con referencias pobladas. ownerID vacío = cualquiera.
	GetByID(ctx context.Context, id, ownerID string) (*entity.Movement, error)
	// List ordena por created_at DESC y puebla referencias ligeras (producto, compra, categoría).
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error)
	// Correct aplica una corrección cosmética (title, description, metadata).
	Correct(ctx context.Context, id string, patch entity.MovementPatch) error
}
