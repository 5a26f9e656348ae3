package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// TaxConfigResponse configuración global de impuestos.
type TaxConfigResponse struct {
	ID          string         `json:"id"`
	IsGlobal    bool           `json:"isGlobal"`
	GST         entity.TaxRate `json:"gst"`
	PlatformFee entity.TaxRate `json:"platformFee"`
	Status      string         `json:"status"`
	UpdatedBy   string         `json:"updatedBy,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TaxRatePatch merge parcial de una tasa.
type TaxRatePatch struct {
	Enabled *bool            `json:"enabled"`
	Rate    *decimal.Decimal `json:"rate" validate:"omitempty,min=0,max=100"`
}

// UpdateTaxRequest escritura admin sobre el singleton global.
type UpdateTaxRequest struct {
	GST         *TaxRatePatch `json:"gst"`
	PlatformFee *TaxRatePatch `json:"platformFee"`
	Status      *string       `json:"status" validate:"omitempty,oneof=active inactive"`
	Description string        `json:"description" validate:"max=500"`
}

// TaxHistoryResponse historial permanente de cambios.
type TaxHistoryResponse struct {
	ConfigID string             `json:"configId"`
	History  []entity.TaxChange `json:"history"`
}

// GroupCountResponse conteo agrupado.
type GroupCountResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsResponse estadísticas de un alcance (usuario o global).
type StatsResponse struct {
	TotalProducts      int                  `json:"totalProducts"`
	TotalCategories    int                  `json:"totalCategories"`
	TotalUnitTypes     int                  `json:"totalUnitTypes"`
	TotalPurchases     int                  `json:"totalPurchases"`
	TotalMovements     int                  `json:"totalMovements"`
	LowStockCount      int                  `json:"lowStockCount"`
	OutOfStockCount    int                  `json:"outOfStockCount"`
	StockUnits         int                  `json:"stockUnits"`
	InventoryValue     decimal.Decimal      `json:"inventoryValue"`
	PurchasesTotal     decimal.Decimal      `json:"purchasesTotal"`
	ProductsByCategory []GroupCountResponse `json:"productsByCategory"`
	PurchasesByStatus  []GroupCountResponse `json:"purchasesByStatus"`
	MovementsByType    []GroupCountResponse `json:"movementsByType"`
	RecentMovements    []MovementResponse   `json:"recentMovements"`
}

// AdminStatsResponse estadísticas globales para el admin.
type AdminStatsResponse struct {
	TotalUsers int `json:"totalUsers"`
	StatsResponse
}
