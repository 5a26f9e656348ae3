package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de compra.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusCancelled = "cancelled"
)

// Purchase compra a proveedor. Al crearse incrementa el stock de cada producto referenciado.
type Purchase struct {
	ID             string
	PurchaseNumber string
	UserID         string
	Items          []PurchaseItem
	TotalAmount    decimal.Decimal
	Status         string
	Supplier       string
	PaymentMethod  string
	Notes          string
	PurchaseDate   time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PurchaseItem línea de compra. UnitPrice es una copia congelada del costo del producto
// al momento de la compra; ProductName y SKU también, para sobrevivir al borrado del producto.
type PurchaseItem struct {
	ID          string
	PurchaseID  string
	ProductID   string // vacío si el producto fue eliminado
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}
