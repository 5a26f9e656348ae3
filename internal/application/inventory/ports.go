package inventory

import (
	"context"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Toda mutación de cantidad pasa por aquí: las filas de producto se bloquean con GetForUpdate
// y cualquier error revierte la operación completa.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		purchaseRepo repository.PurchaseRepository,
	) error) error
}

// MovementRecorder puerto hacia el Movement Logger.
type MovementRecorder interface {
	Record(ctx context.Context, e audit.Entry) *entity.Movement
	Movements(ctx context.Context, f entity.MovementFilter) ([]*entity.Movement, error)
}

// PurchasePDFGenerator genera el comprobante PDF de una compra.
type PurchasePDFGenerator interface {
	Generate(purchase *entity.Purchase) ([]byte, error)
}
