package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// GroupCount conteo por clave de agrupación.
type GroupCount struct {
	Key   string `db:"key"`
	Label string `db:"label"`
	Count int    `db:"count"`
}

// Totals conteos básicos de un alcance (dueño o global).
type Totals struct {
	Products       int
	Categories     int
	UnitTypes      int
	Purchases      int
	Movements      int
	LowStock       int
	OutOfStock     int
	StockUnits     int
	InventoryValue decimal.Decimal // Σ quantity × cost_price
	PurchasesTotal decimal.Decimal // Σ total_amount
}

// StatsRepository consultas read-only de agregación. ownerID vacío = global.
type StatsRepository interface {
	Totals(ctx context.Context, ownerID string) (*Totals, error)
	CountUsers(ctx context.Context) (int, error)
	MovementsByEventType(ctx context.Context, ownerID string) ([]GroupCount, error)
	ProductsByCategory(ctx context.Context, ownerID string) ([]GroupCount, error)
	PurchasesByStatus(ctx context.Context, ownerID string) ([]GroupCount, error)
}
