package repository

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// UserSettingsRepository persistencia de preferencias por usuario.
type UserSettingsRepository interface {
	// GetOrCreate devuelve la fila del usuario creándola con defaults si no existe.
	GetOrCreate(ctx context.Context, defaults *entity.UserSettings) (*entity.UserSettings, error)
	Update(ctx context.Context, settings *entity.UserSettings) error
}
