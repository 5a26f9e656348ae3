package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/memory"
)

var errAbortar = errors.New("abortar")

func producto(id, sku string, qty int) *entity.Product {
	return &entity.Product{ID: id, UserID: "u1", Name: sku, SKU: sku, SKUKey: sku, Quantity: qty}
}

func TestTxRunner_RollbackConservaEscriturasAjenas(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Products().Create(ctx, producto("p1", "A", 5)))

	err := s.TxRunner().Run(ctx, func(products repository.ProductRepository, purchases repository.PurchaseRepository) error {
		require.NoError(t, products.SetQuantity(ctx, "p1", 50))
		require.NoError(t, products.Create(ctx, producto("p2", "B", 1)))
		require.NoError(t, purchases.Create(ctx, &entity.Purchase{ID: "c1", PurchaseNumber: "PO-1", UserID: "u1"}))

		// Escritura fuera de la transacción mientras sigue abierta.
		done := make(chan error)
		go func() { done <- s.Products().Create(ctx, producto("p3", "C", 7)) }()
		require.NoError(t, <-done)
		return errAbortar
	})
	require.ErrorIs(t, err, errAbortar)

	p1, err := s.Products().GetByID(ctx, "p1", "")
	require.NoError(t, err)
	require.NotNil(t, p1)
	assert.Equal(t, 5, p1.Quantity)

	p2, err := s.Products().GetByID(ctx, "p2", "")
	require.NoError(t, err)
	assert.Nil(t, p2)

	c1, err := s.Purchases().GetByID(ctx, "c1", "")
	require.NoError(t, err)
	assert.Nil(t, c1)

	p3, err := s.Products().GetByID(ctx, "p3", "")
	require.NoError(t, err)
	require.NotNil(t, p3)
	assert.Equal(t, 7, p3.Quantity)
}

func TestTxRunner_RollbackRestauraBorrados(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Products().Create(ctx, producto("p1", "A", 5)))
	require.NoError(t, s.Purchases().Create(ctx, &entity.Purchase{
		ID: "c1", PurchaseNumber: "PO-1", UserID: "u1",
		Items: []entity.PurchaseItem{{ID: "i1", PurchaseID: "c1", ProductID: "p1", Quantity: 2}},
	}))

	err := s.TxRunner().Run(ctx, func(products repository.ProductRepository, _ repository.PurchaseRepository) error {
		require.NoError(t, products.Delete(ctx, "p1"))
		return errAbortar
	})
	require.ErrorIs(t, err, errAbortar)

	p1, err := s.Products().GetByID(ctx, "p1", "")
	require.NoError(t, err)
	assert.NotNil(t, p1)
	c1, err := s.Purchases().GetByID(ctx, "c1", "")
	require.NoError(t, err)
	require.Len(t, c1.Items, 1)
	assert.Equal(t, "p1", c1.Items[0].ProductID)
}

func TestTxRunner_CommitPersiste(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Products().Create(ctx, producto("p1", "A", 5)))

	err := s.TxRunner().Run(ctx, func(products repository.ProductRepository, _ repository.PurchaseRepository) error {
		return products.SetQuantity(ctx, "p1", 9)
	})
	require.NoError(t, err)

	p1, err := s.Products().GetByID(ctx, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, 9, p1.Quantity)
}
