package usecase

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// MovementRecorder puerto hacia el Movement Logger. Record nunca falla hacia el caller.
type MovementRecorder interface {
	Record(ctx context.Context, e audit.Entry) *entity.Movement
}
