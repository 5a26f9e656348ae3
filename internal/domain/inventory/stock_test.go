package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-compras/internal/domain/inventory"
)

func TestDecreaseStock_PisoEnCero(t *testing.T) {
	next, clamped := inventory.DecreaseStock(2, 5)
	assert.Equal(t, 0, next, "nunca debe quedar negativo")
	assert.True(t, clamped)

	next, clamped = inventory.DecreaseStock(10, 5)
	assert.Equal(t, 5, next)
	assert.False(t, clamped)
}

func TestIncreaseStock(t *testing.T) {
	assert.Equal(t, 15, inventory.IncreaseStock(10, 5))
	assert.Equal(t, 0, inventory.ClampQuantity(-3))
}

func TestLineSubtotal(t *testing.T) {
	got := inventory.LineSubtotal(5, decimal.NewFromInt(10))
	assert.True(t, got.Equal(decimal.NewFromInt(50)), "5 × 10 = 50, got %s", got)
}

func TestKey_IgnoraMayusculasYEspacios(t *testing.T) {
	assert.Equal(t, inventory.Key("  ABC-123 "), inventory.Key("abc-123"))
	assert.Equal(t, inventory.Key("Straße"), inventory.Key("STRASSE"))
	assert.NotEqual(t, inventory.Key("abc"), inventory.Key("abd"))
}
