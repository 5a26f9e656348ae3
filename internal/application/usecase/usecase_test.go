package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/dto"
	"github.com/jhoicas/inventario-compras/internal/application/usecase"
	"github.com/jhoicas/inventario-compras/internal/domain"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/domain/inventory"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

var (
	ana   = entity.Actor{UserID: "11111111-1111-1111-1111-111111111111", Email: "ana@example.com", Role: entity.RoleUser}
	beto  = entity.Actor{UserID: "22222222-2222-2222-2222-222222222222", Email: "beto@example.com", Role: entity.RoleUser}
	admin = entity.Actor{UserID: "00000000-0000-0000-0000-000000000000", Email: "admin@example.com", Role: entity.RoleAdmin}
)

type env struct {
	store      *memory.Store
	products   *usecase.ProductUseCase
	categories *usecase.CategoryUseCase
	units      *usecase.UnitTypeUseCase
	users      *usecase.UserUseCase
	settings   *usecase.SettingsUseCase
	stats      *usecase.StatsUseCase
}

func newEnv() *env {
	store := memory.NewStore()
	movements := audit.NewLogger(store.Movements(), nil, logger.Nop())
	return &env{
		store:      store,
		products:   usecase.NewProductUseCase(store.TxRunner(), store.Products(), store.Categories(), store.UnitTypes(), movements),
		categories: usecase.NewCategoryUseCase(store.Categories(), store.Products()),
		units:      usecase.NewUnitTypeUseCase(store.UnitTypes(), store.Products()),
		users:      usecase.NewUserUseCase(store.Users(), movements),
		settings:   usecase.NewSettingsUseCase(store.UserSettings()),
		stats:      usecase.NewStatsUseCase(store.Stats(), store.Movements()),
	}
}

func (e *env) movements(t *testing.T, types ...entity.EventType) []*entity.Movement {
	t.Helper()
	list, err := e.store.Movements().List(context.Background(), entity.MovementFilter{EventTypes: types})
	require.NoError(t, err)
	return list
}

func newProduct(sku string, qty int) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Name:         "Producto " + sku,
		SKU:          sku,
		Quantity:     qty,
		CostPrice:    decimal.NewFromInt(10),
		SellingPrice: decimal.NewFromInt(15),
	}
}

func TestProductCreate_SKUDuplicadoSinMayusculas(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	_, err := e.products.Create(ctx, ana, newProduct("ABC-1", 3))
	require.NoError(t, err)

	_, err = e.products.Create(ctx, ana, newProduct(" abc-1 ", 1))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := e.products.List(ctx, ana, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	// otro dueño puede usar el mismo SKU
	_, err = e.products.Create(ctx, beto, newProduct("abc-1", 1))
	assert.NoError(t, err)

	assert.Len(t, e.movements(t, entity.EventProductCreated), 2)
}

func TestProductCreate_CategoriaInexistente(t *testing.T) {
	e := newEnv()
	req := newProduct("X1", 1)
	req.CategoryID = uuid.New().String()
	_, err := e.products.Create(context.Background(), ana, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUpdate_UnMovimientoSoloConCambios(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	p, err := e.products.Create(ctx, ana, newProduct("U1", 10))
	require.NoError(t, err)

	qty := 4
	price := decimal.NewFromInt(18)
	same := decimal.RequireFromString("10.00")
	desc := "nueva descripción"
	out, err := e.products.Update(ctx, ana, p.ID, dto.UpdateProductRequest{
		Quantity: &qty, SellingPrice: &price, CostPrice: &same, Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Quantity)

	movs := e.movements(t, entity.EventProductUpdated)
	require.Len(t, movs, 1)
	ch := movs[0].Changes
	require.NotNil(t, ch)
	assert.Equal(t, entity.FieldSet{inventory.FieldQuantity: 10, inventory.FieldSellingPrice: decimal.NewFromInt(15)}, ch.Before)
	assert.Len(t, ch.After, 2)
	assert.Equal(t, 4, ch.After[inventory.FieldQuantity])
}

func TestProductUpdate_SinCambiosNoRegistra(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	p, err := e.products.Create(ctx, ana, newProduct("S1", 3))
	require.NoError(t, err)

	qty := 3
	name := p.Name
	out, err := e.products.Update(ctx, ana, p.ID, dto.UpdateProductRequest{Quantity: &qty, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Quantity)
	assert.True(t, out.UpdatedAt.Equal(p.UpdatedAt))
	assert.Empty(t, e.movements(t, entity.EventProductUpdated))

	_, err = e.products.Update(ctx, ana, p.ID, dto.UpdateProductRequest{})
	require.NoError(t, err)
	assert.Empty(t, e.movements(t, entity.EventProductUpdated))

	// un campo fuera del diff auditado sí cuenta como cambio
	desc := "otra"
	_, err = e.products.Update(ctx, ana, p.ID, dto.UpdateProductRequest{Description: &desc})
	require.NoError(t, err)
	assert.Len(t, e.movements(t, entity.EventProductUpdated), 1)
}

type failingMovements struct {
	repository.MovementRepository
}

func (failingMovements) Create(context.Context, *entity.Movement) error {
	return errors.New("almacén de movimientos caído")
}

func TestProductUpdate_FallaDeAuditoriaNoFallaLaEdicion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	movements := audit.NewLogger(failingMovements{store.Movements()}, nil, logger.Nop())
	products := usecase.NewProductUseCase(store.TxRunner(), store.Products(), store.Categories(), store.UnitTypes(), movements)

	p, err := products.Create(ctx, ana, newProduct("F1", 2))
	require.NoError(t, err)

	qty := 9
	out, err := products.Update(ctx, ana, p.ID, dto.UpdateProductRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 9, out.Quantity)

	got, err := products.GetByID(ctx, ana, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
}

func TestProductUpdate_CantidadNegativaSePisa(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	p, err := e.products.Create(ctx, ana, newProduct("N1", 5))
	require.NoError(t, err)

	qty := -7
	out, err := e.products.Update(ctx, ana, p.ID, dto.UpdateProductRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Quantity)
}

func TestProductUpdate_SKUEnConflicto(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, err := e.products.Create(ctx, ana, newProduct("S1", 1))
	require.NoError(t, err)
	p2, err := e.products.Create(ctx, ana, newProduct("S2", 1))
	require.NoError(t, err)

	sku := "s1"
	_, err = e.products.Update(ctx, ana, p2.ID, dto.UpdateProductRequest{SKU: &sku})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := e.products.GetByID(ctx, ana, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, "S2", got.SKU)
	assert.Empty(t, e.movements(t, entity.EventProductUpdated))

	// cambiar solo mayúsculas del propio SKU está permitido
	own := "s2"
	got, err = e.products.Update(ctx, ana, p2.ID, dto.UpdateProductRequest{SKU: &own})
	require.NoError(t, err)
	assert.Equal(t, "s2", got.SKU)
}

func TestProduct_AjenoNoSeVe(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	p, err := e.products.Create(ctx, ana, newProduct("A1", 1))
	require.NoError(t, err)

	_, err = e.products.GetByID(ctx, beto, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	qty := 9
	_, err = e.products.Update(ctx, beto, p.ID, dto.UpdateProductRequest{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, e.products.Delete(ctx, beto, p.ID), domain.ErrNotFound)

	got, err := e.products.GetByID(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}

func TestProductDelete_RegistraSnapshot(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	p, err := e.products.Create(ctx, ana, newProduct("D1", 2))
	require.NoError(t, err)

	require.NoError(t, e.products.Delete(ctx, ana, p.ID))
	movs := e.movements(t, entity.EventProductDeleted)
	require.Len(t, movs, 1)
	assert.Equal(t, "D1", movs[0].Changes.Before[inventory.FieldSKU])
	assert.Empty(t, movs[0].Changes.After)
}

func TestProductLowStock(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	low := newProduct("L1", 2)
	low.LowStockThreshold = 5
	_, err := e.products.Create(ctx, ana, low)
	require.NoError(t, err)
	ok := newProduct("L2", 20)
	ok.LowStockThreshold = 5
	_, err = e.products.Create(ctx, ana, ok)
	require.NoError(t, err)

	list, err := e.products.LowStock(ctx, ana)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "L1", list[0].SKU)
	assert.True(t, list[0].IsLowStock)
}

func TestCategory_DuplicadoYEnUso(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	c, err := e.categories.Create(ctx, ana, dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)

	_, err = e.categories.Create(ctx, ana, dto.CategoryRequest{Name: "BEBIDAS"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	list, err := e.categories.List(ctx, ana)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	req := newProduct("B1", 1)
	req.CategoryID = c.ID
	_, err = e.products.Create(ctx, ana, req)
	require.NoError(t, err)

	assert.ErrorIs(t, e.categories.Delete(ctx, ana, c.ID), domain.ErrInUse)

	renamed, err := e.categories.Update(ctx, ana, c.ID, dto.CategoryRequest{Name: "bebidas frías"})
	require.NoError(t, err)
	assert.Equal(t, "bebidas frías", renamed.Name)
}

func TestUnitType_NombreOAbreviaturaDuplicados(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u, err := e.units.Create(ctx, ana, dto.UnitTypeRequest{Name: "Kilogramo", Abbreviation: "kg"})
	require.NoError(t, err)

	_, err = e.units.Create(ctx, ana, dto.UnitTypeRequest{Name: "kilogramo", Abbreviation: "kilo"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = e.units.Create(ctx, ana, dto.UnitTypeRequest{Name: "Kilos", Abbreviation: "KG"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = e.units.Create(ctx, beto, dto.UnitTypeRequest{Name: "Kilogramo", Abbreviation: "kg"})
	assert.NoError(t, err)

	// sin abreviatura no hay conflicto por abreviatura vacía
	_, err = e.units.Create(ctx, ana, dto.UnitTypeRequest{Name: "Caja"})
	require.NoError(t, err)
	_, err = e.units.Create(ctx, ana, dto.UnitTypeRequest{Name: "Bolsa"})
	require.NoError(t, err)

	updated, err := e.units.Update(ctx, ana, u.ID, dto.UnitTypeRequest{Name: "Kilogramo", Abbreviation: "KG"})
	require.NoError(t, err)
	assert.Equal(t, "KG", updated.Abbreviation)
}

func seedUser(t *testing.T, e *env, email string) *entity.User {
	t.Helper()
	now := time.Now().UTC()
	u := &entity.User{
		ID: uuid.New().String(), Email: email, Name: "Usuario", Role: entity.RoleUser,
		Status: entity.UserStatusActive, PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func TestUserUpdate_RegistraCambios(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u := seedUser(t, e, "carla@example.com")
	seedUser(t, e, "dario@example.com")

	taken := "dario@example.com"
	_, err := e.users.Update(ctx, admin, u.ID, dto.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	status := entity.UserStatusInactive
	out, err := e.users.Update(ctx, admin, u.ID, dto.UpdateUserRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, status, out.Status)

	movs := e.movements(t, entity.EventUserUpdated)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.UserStatusActive, movs[0].Changes.Before["status"])
	assert.Equal(t, admin.UserID, movs[0].UserID)
}

func TestUserDelete_BorraSusDatos(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	u := seedUser(t, e, "carla@example.com")
	owner := entity.Actor{UserID: u.ID, Role: entity.RoleUser}
	_, err := e.products.Create(ctx, owner, newProduct("C1", 1))
	require.NoError(t, err)

	require.NoError(t, e.users.Delete(ctx, admin, u.ID))
	_, err = e.users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	list, err := e.products.List(ctx, admin, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Len(t, e.movements(t, entity.EventUserDeleted), 1)

	assert.ErrorIs(t, e.users.Delete(ctx, admin, admin.UserID), domain.ErrInvalidInput)
}

func TestSettings_DefaultsPerezosos(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	s, err := e.settings.Get(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, "light", s.Theme)
	assert.True(t, s.LowStockAlerts)

	theme := "dark"
	alerts := false
	s, err = e.settings.Update(ctx, ana, dto.UpdateSettingsRequest{Theme: &theme, LowStockAlerts: &alerts})
	require.NoError(t, err)
	assert.Equal(t, "dark", s.Theme)
	assert.False(t, s.LowStockAlerts)

	again, err := e.settings.Get(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, "dark", again.Theme)

	other, err := e.settings.Get(ctx, beto)
	require.NoError(t, err)
	assert.Equal(t, "light", other.Theme)
}

func TestStats_UsuarioYGlobal(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	seedUser(t, e, "carla@example.com")
	_, err := e.products.Create(ctx, ana, newProduct("A1", 3))
	require.NoError(t, err)
	_, err = e.products.Create(ctx, ana, newProduct("A2", 0))
	require.NoError(t, err)
	_, err = e.products.Create(ctx, beto, newProduct("B1", 1))
	require.NoError(t, err)

	s, err := e.stats.ForUser(ctx, ana)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalProducts)
	assert.Equal(t, 3, s.StockUnits)
	assert.Equal(t, 1, s.OutOfStockCount)
	assert.True(t, s.InventoryValue.Equal(decimal.NewFromInt(30)))
	assert.Len(t, s.RecentMovements, 2)

	_, err = e.stats.Global(ctx, ana)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	g, err := e.stats.Global(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, g.TotalUsers)
	assert.Equal(t, 3, g.TotalProducts)
	require.NotEmpty(t, g.MovementsByType)
	assert.Equal(t, string(entity.EventProductCreated), g.MovementsByType[0].Key)
	assert.Equal(t, 3, g.MovementsByType[0].Count)
}
