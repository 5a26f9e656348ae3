package tax_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/application/tax"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

var (
	admin = entity.Actor{UserID: "00000000-0000-0000-0000-000000000000", Email: "admin@example.com", Role: entity.RoleAdmin}
	ana   = entity.Actor{UserID: "u-ana", Email: "ana@example.com", Role: entity.RoleUser}
)

func newManager() (*tax.Manager, *memory.Store) {
	store := memory.NewStore()
	return tax.NewManager(store.TaxConfig(), audit.NewLogger(store.Movements(), nil, logger.Nop())), store
}

func events(t *testing.T, store *memory.Store) []entity.EventType {
	t.Helper()
	list, err := store.Movements().List(context.Background(), entity.MovementFilter{})
	require.NoError(t, err)
	out := make([]entity.EventType, 0, len(list))
	for _, m := range list {
		out = append(out, m.EventType)
	}
	return out
}

func TestGet_CreaDefaultsUnaSolaVez(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager()

	first, err := m.Get(ctx)
	require.NoError(t, err)
	assert.True(t, first.IsGlobal)
	assert.False(t, first.GST.Enabled)
	assert.True(t, first.GST.Rate.Equal(decimal.NewFromInt(18)))
	assert.False(t, first.PlatformFee.Enabled)
	assert.True(t, first.PlatformFee.Rate.IsZero())

	second, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestUpsert_MergeEHistorial(t *testing.T) {
	ctx := context.Background()
	m, store := newManager()

	on := true
	rate := decimal.NewFromInt(12)
	out, err := m.Upsert(ctx, admin, dto.UpdateTaxRequest{
		GST:         &dto.TaxRatePatch{Enabled: &on, Rate: &rate},
		Description: "GST reducido",
	})
	require.NoError(t, err)
	assert.True(t, out.GST.Enabled)
	assert.True(t, out.GST.Rate.Equal(rate))
	assert.False(t, out.PlatformFee.Enabled, "los campos no enviados se conservan")
	assert.Equal(t, admin.Email, out.UpdatedBy)

	fee := decimal.RequireFromString("2.5")
	_, err = m.Upsert(ctx, admin, dto.UpdateTaxRequest{PlatformFee: &dto.TaxRatePatch{Rate: &fee}})
	require.NoError(t, err)

	h, err := m.History(ctx)
	require.NoError(t, err)
	require.Len(t, h.History, 2)
	assert.Equal(t, "GST reducido", h.History[0].Description)
	assert.Equal(t, false, h.History[0].Before["gstEnabled"])
	assert.Equal(t, true, h.History[0].After["gstEnabled"])
	assert.Equal(t, admin.Email, h.History[1].ChangedBy)

	assert.ElementsMatch(t, []entity.EventType{entity.EventTaxCreated, entity.EventTaxUpdated}, events(t, store))
}

func TestUpsert_SoloAdmin(t *testing.T) {
	m, _ := newManager()
	_, err := m.Upsert(context.Background(), ana, dto.UpdateTaxRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpsert_TasaFueraDeRango(t *testing.T) {
	m, _ := newManager()
	bad := decimal.NewFromInt(150)
	_, err := m.Upsert(context.Background(), admin, dto.UpdateTaxRequest{GST: &dto.TaxRatePatch{Rate: &bad}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_BorradoLogicoConservaHistorial(t *testing.T) {
	ctx := context.Background()
	m, store := newManager()

	_, err := m.Delete(ctx, admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	on := true
	_, err = m.Upsert(ctx, admin, dto.UpdateTaxRequest{GST: &dto.TaxRatePatch{Enabled: &on}})
	require.NoError(t, err)

	out, err := m.Delete(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, entity.TaxStatusInactive, out.Status)

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, out.ID, got.ID)
	assert.Equal(t, entity.TaxStatusInactive, got.Status)
	assert.True(t, got.GST.Enabled)

	h, err := m.History(ctx)
	require.NoError(t, err)
	assert.Len(t, h.History, 2)
	assert.Contains(t, events(t, store), entity.EventTaxDeleted)
}

type failingMovements struct {
	repository.MovementRepository
}

func (failingMovements) Create(context.Context, *entity.Movement) error {
	return errors.New("almacén de movimientos caído")
}

func TestUpsert_FallaDeAuditoriaNoFallaElCambio(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := tax.NewManager(store.TaxConfig(), audit.NewLogger(failingMovements{store.Movements()}, nil, logger.Nop()))

	on := true
	out, err := m.Upsert(ctx, admin, dto.UpdateTaxRequest{GST: &dto.TaxRatePatch{Enabled: &on}})
	require.NoError(t, err)
	assert.True(t, out.GST.Enabled)

	got, err := m.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.GST.Enabled)
	assert.Empty(t, events(t, store))
}
