package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	SKU               string          `json:"sku" validate:"required,min=1,max=100"`
	Description       string          `json:"description" validate:"max=2000"`
	CategoryID        string          `json:"categoryId" validate:"omitempty,uuid"`
	UnitTypeID        string          `json:"unitTypeId" validate:"omitempty,uuid"`
	Quantity          int             `json:"quantity" validate:"min=0"`
	CostPrice         decimal.Decimal `json:"costPrice" validate:"min=0"`
	SellingPrice      decimal.Decimal `json:"sellingPrice" validate:"min=0"`
	Supplier          entity.Supplier `json:"supplier"`
	LowStockThreshold int             `json:"lowStockThreshold" validate:"min=0"`
}

// UpdateProductRequest edición directa. Quantity se fija tal cual (sin delta);
// un valor negativo se lleva a cero.
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SKU               *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Description       *string          `json:"description" validate:"omitempty,max=2000"`
	CategoryID        *string          `json:"categoryId" validate:"omitempty,len=0|uuid"`
	UnitTypeID        *string          `json:"unitTypeId" validate:"omitempty,len=0|uuid"`
	Quantity          *int             `json:"quantity"`
	CostPrice         *decimal.Decimal `json:"costPrice" validate:"omitempty,min=0"`
	SellingPrice      *decimal.Decimal `json:"sellingPrice" validate:"omitempty,min=0"`
	Supplier          *entity.Supplier `json:"supplier"`
	LowStockThreshold *int             `json:"lowStockThreshold" validate:"omitempty,min=0"`
}

// RefillRequest recarga de stock sobre un producto.
type RefillRequest struct {
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Note     string `json:"note" validate:"max=500"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Description       string          `json:"description"`
	CategoryID        string          `json:"categoryId,omitempty"`
	UnitTypeID        string          `json:"unitTypeId,omitempty"`
	Quantity          int             `json:"quantity"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	SellingPrice      decimal.Decimal `json:"sellingPrice"`
	Supplier          entity.Supplier `json:"supplier"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	IsLowStock        bool            `json:"isLowStock"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CategoryRequest alta o edición de categoría.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UnitTypeRequest alta o edición de unidad de medida.
type UnitTypeRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	Abbreviation string `json:"abbreviation" validate:"max=20"`
}

// UnitTypeResponse salida de una unidad de medida.
type UnitTypeResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
