package inventory

import "github.com/shopspring/decimal"

// ClampQuantity aplica el piso de cero a una cantidad.
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

// IncreaseStock suma qty a la cantidad actual.
func IncreaseStock(current, qty int) int {
	return ClampQuantity(current + qty)
}

// DecreaseStock resta qty con piso en cero. clamped indica que el resultado real
// habría sido negativo (hubo ediciones intermedias y la reversión no es exacta).
func DecreaseStock(current, qty int) (next int, clamped bool) {
	next = current - qty
	if next < 0 {
		return 0, true
	}
	return next, false
}

// LineSubtotal subtotal de una línea de compra: cantidad × precio unitario.
func LineSubtotal(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}
