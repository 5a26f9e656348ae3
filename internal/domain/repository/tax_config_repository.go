package repository

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// TaxConfigRepository persistencia del singleton global de impuestos.
type TaxConfigRepository interface {
	// GetGlobal devuelve la configuración con is_global = true, o nil si no existe.
	GetGlobal(ctx context.Context) (*entity.TaxConfig, error)
	// CreateGlobal inserta la configuración global. Si otra request la creó primero devuelve
	// la existente (el índice único parcial sobre is_global lo garantiza).
	CreateGlobal(ctx context.Context, cfg *entity.TaxConfig) (*entity.TaxConfig, error)
	// Save actualiza los valores y agrega change al historial (nunca lo trunca).
	Save(ctx context.Context, cfg *entity.TaxConfig, change entity.TaxChange) error
}
