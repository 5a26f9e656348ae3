package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// PurchaseItemRequest línea de una compra nueva. El precio unitario no se recibe:
// se congela desde el costo actual del producto.
type PurchaseItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreatePurchaseRequest entrada para registrar una compra.
type CreatePurchaseRequest struct {
	Items         []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount   decimal.Decimal       `json:"totalAmount" validate:"gt=0"`
	Status        string                `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Supplier      string                `json:"supplier" validate:"max=200"`
	PaymentMethod string                `json:"paymentMethod" validate:"max=50"`
	Notes         string                `json:"notes" validate:"max=2000"`
	PurchaseDate  *time.Time            `json:"purchaseDate"`
}

// UpdatePurchaseRequest solo campos de cabecera; las líneas no se editan.
type UpdatePurchaseRequest struct {
	Status        *string    `json:"status" validate:"omitempty,oneof=pending completed cancelled"`
	Supplier      *string    `json:"supplier" validate:"omitempty,max=200"`
	PaymentMethod *string    `json:"paymentMethod" validate:"omitempty,max=50"`
	Notes         *string    `json:"notes" validate:"omitempty,max=2000"`
	PurchaseDate  *time.Time `json:"purchaseDate"`
}

// PurchaseItemResponse línea de compra con precio congelado.
type PurchaseItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId,omitempty"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// PurchaseResponse salida de una compra.
type PurchaseResponse struct {
	ID             string                 `json:"id"`
	PurchaseNumber string                 `json:"purchaseNumber"`
	UserID         string                 `json:"userId"`
	Items          []PurchaseItemResponse `json:"items"`
	TotalAmount    decimal.Decimal        `json:"totalAmount"`
	Status         string                 `json:"status"`
	Supplier       string                 `json:"supplier"`
	PaymentMethod  string                 `json:"paymentMethod"`
	Notes          string                 `json:"notes"`
	PurchaseDate   time.Time              `json:"purchaseDate"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

// PurchaseListResponse lista paginada de compras.
type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockWarning producto cuyo stock no alcanzó para revertir la compra y quedó en cero.
type StockWarning struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	Message     string `json:"message"`
}

// DeletePurchaseResponse resultado del borrado de una compra.
type DeletePurchaseResponse struct {
	ID       string         `json:"id"`
	Warnings []StockWarning `json:"warnings"`
}

// RefResponse referencia ligera poblada en movimientos.
type RefResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	SKU    string `json:"sku,omitempty"`
	Number string `json:"purchaseNumber,omitempty"`
}

// MovementResponse salida de un movimiento auditado.
type MovementResponse struct {
	ID          string           `json:"id"`
	EventType   entity.EventType `json:"eventType"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	UserID      string           `json:"userId"`
	UserEmail   string           `json:"userEmail,omitempty"`
	Product     *RefResponse     `json:"product,omitempty"`
	Purchase    *RefResponse     `json:"purchase,omitempty"`
	Category    *RefResponse     `json:"category,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
	Changes     *entity.Changes  `json:"changes,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// MovementQuery parámetros de GET /api/movements. EventType admite varios separados por coma.
type MovementQuery struct {
	EventType string `query:"eventType"`
	UserID    string `query:"userId"`
	ProductID string `query:"productId"`
	DateFrom  string `query:"dateFrom"`
	DateTo    string `query:"dateTo"`
	Limit     int    `query:"limit"`
}

// HistoryQuery parámetros de los historiales de stock y precio.
type HistoryQuery struct {
	PriceType string `query:"priceType"`
	StartDate string `query:"startDate"`
	EndDate   string `query:"endDate"`
	Limit     int    `query:"limit"`
}

// StockEntryResponse punto del historial de stock.
type StockEntryResponse struct {
	MovementID     string           `json:"movementId"`
	EventType      entity.EventType `json:"eventType"`
	Description    string           `json:"description"`
	UserID         string           `json:"userId"`
	Date           time.Time        `json:"date"`
	QuantityBefore int              `json:"quantityBefore"`
	QuantityAfter  int              `json:"quantityAfter"`
	QuantityChange int              `json:"quantityChange"`
}

// StockStatsResponse acumulados del historial de stock.
type StockStatsResponse struct {
	TotalAdded     int     `json:"totalAdded"`
	TotalRemoved   int     `json:"totalRemoved"`
	ZeroStockCount int     `json:"zeroStockCount"`
	AverageLevel   float64 `json:"averageLevel"`
	CurrentLevel   int     `json:"currentLevel"`
	Entries        int     `json:"entries"`
}

// StockHistoryResponse historial de stock de un producto.
type StockHistoryResponse struct {
	ProductID       string               `json:"productId"`
	ProductName     string               `json:"productName"`
	SKU             string               `json:"sku"`
	CurrentQuantity int                  `json:"currentQuantity"`
	History         []StockEntryResponse `json:"history"`
	Stats           StockStatsResponse   `json:"stats"`
}

// PriceEntryResponse cambio de precio.
type PriceEntryResponse struct {
	MovementID    string           `json:"movementId"`
	EventType     entity.EventType `json:"eventType"`
	PriceType     string           `json:"priceType"`
	Date          time.Time        `json:"date"`
	Before        *decimal.Decimal `json:"before"`
	After         decimal.Decimal  `json:"after"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent decimal.Decimal  `json:"changePercent"`
}

// PriceStatsResponse acumulados por tipo de precio.
type PriceStatsResponse struct {
	Count   int             `json:"count"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Current decimal.Decimal `json:"current"`
}

// PriceHistoryResponse historial de precios de un producto.
type PriceHistoryResponse struct {
	ProductID           string                        `json:"productId"`
	ProductName         string                        `json:"productName"`
	SKU                 string                        `json:"sku"`
	CurrentCostPrice    decimal.Decimal               `json:"currentCostPrice"`
	CurrentSellingPrice decimal.Decimal               `json:"currentSellingPrice"`
	History             []PriceEntryResponse          `json:"history"`
	Stats               map[string]PriceStatsResponse `json:"stats"`
}
