package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier datos de contacto del proveedor de un producto.
type Supplier struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// Product representa un producto del inventario de un usuario.
// Quantity nunca es negativa; SKUKey es el SKU plegado usado para la unicidad por dueño.
type Product struct {
	ID                string
	UserID            string
	Name              string
	SKU               string
	SKUKey            string
	Description       string
	CategoryID        string // vacío si no tiene
	UnitTypeID        string // vacío si no tiene
	Quantity          int
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	Supplier          Supplier
	LowStockThreshold int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock indica si la cantidad está en o por debajo del umbral.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}
