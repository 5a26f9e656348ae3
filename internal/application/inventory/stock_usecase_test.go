package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
)

func TestRefill_SumaYRegistra(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, ana, "R1", 2, 10)

	got, err := f.stock.Refill(ctx, ana, p.ID, dto.RefillRequest{Quantity: 8, Note: "reposición semanal"})
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)
	assert.Equal(t, 10, f.quantity(t, p.ID))

	movs, err := f.store.Movements().List(ctx, entity.MovementFilter{EventTypes: []entity.EventType{entity.EventStockRefill}})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, p.ID, movs[0].ProductID)
	assert.Equal(t, "R1", movs[0].ProductSKU)
}

func TestRefill_CantidadInvalida(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, ana, "R1", 2, 10)
	_, err := f.stock.Refill(context.Background(), ana, p.ID, dto.RefillRequest{Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockHistory_TernasYAcumulados(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, ana, "H1", 0, 10)

	out, err := f.purchases.Create(ctx, ana, purchaseReq(50, item(p.ID, 5)))
	require.NoError(t, err)
	_, err = f.stock.Refill(ctx, ana, p.ID, dto.RefillRequest{Quantity: 3})
	require.NoError(t, err)
	_, err = f.purchases.Delete(ctx, ana, out.ID)
	require.NoError(t, err)

	h, err := f.stock.StockHistory(ctx, ana, p.ID, dto.HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, h.History, 3)
	assert.Equal(t, 3, h.CurrentQuantity)
	assert.Equal(t, 8, h.Stats.TotalAdded)
	assert.Equal(t, 5, h.Stats.TotalRemoved)
	assert.Equal(t, 3, h.Stats.CurrentLevel)

	for _, e := range h.History {
		assert.Equal(t, e.QuantityAfter-e.QuantityBefore, e.QuantityChange)
	}
}

func TestHistory_ProductoAjenoEsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ajeno := f.product(t, beto, "B1", 4, 10)

	_, err := f.stock.StockHistory(ctx, ana, ajeno.ID, dto.HistoryQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.stock.PriceHistory(ctx, ana, ajeno.ID, dto.HistoryQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	admin := entity.Actor{UserID: "00000000-0000-0000-0000-000000000000", Role: entity.RoleAdmin}
	h, err := f.stock.StockHistory(ctx, admin, ajeno.ID, dto.HistoryQuery{})
	require.NoError(t, err)
	assert.Equal(t, ajeno.ID, h.ProductID)
}

func TestPriceHistory_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, ana, "P1", 0, 10)
	_, err := f.stock.PriceHistory(context.Background(), ana, p.ID, dto.HistoryQuery{PriceType: "wholesale"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPriceHistory_SinMovimientos(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, ana, "P1", 0, 10)
	h, err := f.stock.PriceHistory(context.Background(), ana, p.ID, dto.HistoryQuery{PriceType: "cost"})
	require.NoError(t, err)
	assert.Empty(t, h.History)
	assert.True(t, h.CurrentCostPrice.Equal(decimal.NewFromInt(10)))
}
