package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/auth"
	"github.com/jhoicas/inventario-compras/internal/application/inventory"
	"github.com/jhoicas/inventario-compras/internal/application/tax"
	"github.com/jhoicas/inventario-compras/internal/application/usecase"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventario-compras/internal/interfaces/http"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-secreto"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// buildApp arma la API completa sobre el almacenamiento en memoria.
func buildApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	movements := audit.NewLogger(store.Movements(), nil, log)
	tx := store.TxRunner()

	app := apphttp.NewApp(log, apphttp.AppOptions{Name: "test", AllowOrigins: "*"})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(store.Users(),
			auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
			auth.AdminIdentity{ID: "00000000-0000-0000-0000-000000000000", Email: adminEmail, Password: adminPassword, Name: "Admin"}),
		ProductUC:  usecase.NewProductUseCase(tx, store.Products(), store.Categories(), store.UnitTypes(), movements),
		CategoryUC: usecase.NewCategoryUseCase(store.Categories(), store.Products()),
		UnitTypeUC: usecase.NewUnitTypeUseCase(store.UnitTypes(), store.Products()),
		UserUC:     usecase.NewUserUseCase(store.Users(), movements),
		SettingsUC: usecase.NewSettingsUseCase(store.UserSettings()),
		StatsUC:    usecase.NewStatsUseCase(store.Stats(), store.Movements()),
		PurchaseUC: inventory.NewPurchaseUseCase(tx, store.Purchases(), movements, pdf.NewPurchasePDFGenerator("Test")),
		StockUC:    inventory.NewStockUseCase(tx, store.Products(), movements),
		TaxManager: tax.NewManager(store.TaxConfig(), movements),
		Movements:  movements,
		JWTSecret:  testJWTSecret,
		AppName:    "test",
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func register(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "email": email, "password": "secreto123",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, env, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": adminEmail, "password": adminPassword,
	})
	require.Equal(t, http.StatusOK, status)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, env, &out)
	return out.Token
}

func createProduct(t *testing.T, app *fiber.App, token, sku string, qty int) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/products", token, map[string]any{
		"name": "Producto " + sku, "sku": sku, "quantity": qty,
		"costPrice": "10.50", "sellingPrice": "15", "lowStockThreshold": 3,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var p struct {
		ID string `json:"id"`
	}
	decode(t, env, &p)
	return p.ID
}

func TestHealth(t *testing.T) {
	app := buildApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_RegistroLoginMe(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")

	status, env := call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, _ = call(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Otra", "email": "ANA@example.com", "password": "secreto123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, env = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "incorrecta",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, env = call(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "no-es-email", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, env.Message)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	app := buildApp(t)
	for _, path := range []string{"/api/products", "/api/purchases", "/api/movements", "/api/tax", "/api/admin/users"} {
		status, env := call(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.False(t, env.Success, path)
	}
}

func TestAdmin_SoloRolAdmin(t *testing.T) {
	app := buildApp(t)
	user := register(t, app, "ana@example.com")

	status, _ := call(t, app, http.MethodGet, "/api/admin/users", user, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodPut, "/api/tax", user, map[string]any{"gst": map[string]any{"rate": "5"}})
	assert.Equal(t, http.StatusForbidden, status)

	admin := adminToken(t, app)
	status, env := call(t, app, http.MethodGet, "/api/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Items []struct {
			Email string `json:"email"`
		} `json:"items"`
	}
	decode(t, env, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "ana@example.com", list.Items[0].Email)

	status, _ = call(t, app, http.MethodGet, "/api/admin/stats", admin, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProductos_ValidacionYDuplicado(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")

	status, env := call(t, app, http.MethodPost, "/api/products", token, map[string]any{"name": "Sin SKU"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "sku")

	createProduct(t, app, token, "ABC-1", 0)
	status, _ = call(t, app, http.MethodPost, "/api/products", token, map[string]any{
		"name": "Repetido", "sku": "abc-1",
	})
	assert.Equal(t, http.StatusConflict, status)

	// otro usuario no ve el producto ajeno
	other := register(t, app, "beto@example.com")
	status, env = call(t, app, http.MethodGet, "/api/products", other, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Items []json.RawMessage `json:"items"`
	}
	decode(t, env, &list)
	assert.Empty(t, list.Items)
}

func TestCompra_CicloDeStock(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")
	productID := createProduct(t, app, token, "TOR-01", 0)

	status, env := call(t, app, http.MethodPost, "/api/purchases", token, map[string]any{
		"items":       []map[string]any{{"productId": productID, "quantity": 5}},
		"totalAmount": "52.50",
		"supplier":    "Ferretería Central",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var purchase struct {
		ID    string `json:"id"`
		Items []struct {
			UnitPrice string `json:"unitPrice"`
		} `json:"items"`
	}
	decode(t, env, &purchase)
	require.Len(t, purchase.Items, 1)
	assert.Equal(t, "10.5", purchase.Items[0].UnitPrice)

	status, env = call(t, app, http.MethodGet, "/api/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, status)
	var product struct {
		Quantity int `json:"quantity"`
	}
	decode(t, env, &product)
	assert.Equal(t, 5, product.Quantity)

	status, _ = call(t, app, http.MethodPut, "/api/products/"+productID, token, map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodDelete, "/api/purchases/"+purchase.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	var deleted struct {
		Warnings []struct {
			Requested int `json:"requested"`
			Available int `json:"available"`
		} `json:"warnings"`
	}
	decode(t, env, &deleted)
	require.Len(t, deleted.Warnings, 1)
	assert.Equal(t, 5, deleted.Warnings[0].Requested)
	assert.Equal(t, 2, deleted.Warnings[0].Available)

	_, env = call(t, app, http.MethodGet, "/api/products/"+productID, token, nil)
	decode(t, env, &product)
	assert.Equal(t, 0, product.Quantity)

	status, env = call(t, app, http.MethodGet, "/api/movements?eventType=purchase.created,purchase.deleted", token, nil)
	require.Equal(t, http.StatusOK, status)
	var movs []struct {
		EventType string `json:"eventType"`
	}
	decode(t, env, &movs)
	require.Len(t, movs, 2)

	status, _ = call(t, app, http.MethodGet, "/api/movements?eventType=nope", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCompra_ProductoInexistente(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")

	status, _ := call(t, app, http.MethodPost, "/api/purchases", token, map[string]any{
		"items":       []map[string]any{{"productId": "00000000-0000-0000-0000-00000000dead", "quantity": 1}},
		"totalAmount": "1",
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/api/purchases", token, map[string]any{"items": []any{}, "totalAmount": "1"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRefillEHistorial(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")
	productID := createProduct(t, app, token, "REF-1", 0)

	status, env := call(t, app, http.MethodPost, "/api/products/"+productID+"/refill", token, map[string]any{"quantity": 4, "note": "reposición"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = call(t, app, http.MethodGet, "/api/products/"+productID+"/stock-history", token, nil)
	require.Equal(t, http.StatusOK, status)
	var hist struct {
		CurrentQuantity int `json:"currentQuantity"`
		Stats           struct {
			TotalAdded int `json:"totalAdded"`
		} `json:"stats"`
	}
	decode(t, env, &hist)
	assert.Equal(t, 4, hist.CurrentQuantity)
	assert.Equal(t, 4, hist.Stats.TotalAdded)

	other := register(t, app, "beto@example.com")
	status, _ = call(t, app, http.MethodGet, "/api/products/"+productID+"/stock-history", other, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCategoria_EnUso(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")

	status, env := call(t, app, http.MethodPost, "/api/categories", token, map[string]any{"name": "Herramientas"})
	require.Equal(t, http.StatusCreated, status)
	var cat struct {
		ID string `json:"id"`
	}
	decode(t, env, &cat)

	status, _ = call(t, app, http.MethodPost, "/api/categories", token, map[string]any{"name": "herramientas"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = call(t, app, http.MethodPost, "/api/products", token, map[string]any{
		"name": "Martillo", "sku": "MAR-1", "categoryId": cat.ID,
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = call(t, app, http.MethodDelete, "/api/categories/"+cat.ID, token, nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestMovimientos_Correccion(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")
	createProduct(t, app, token, "MOV-1", 1)

	_, env := call(t, app, http.MethodGet, "/api/movements", token, nil)
	var movs []struct {
		ID string `json:"id"`
	}
	decode(t, env, &movs)
	require.NotEmpty(t, movs)
	id := movs[0].ID

	status, _ := call(t, app, http.MethodPatch, "/api/movements/"+id, token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	admin := adminToken(t, app)
	status, _ = call(t, app, http.MethodPatch, "/api/movements/"+id, admin, map[string]any{"eventType": "stock.refill"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodPatch, "/api/movements/"+id, admin, map[string]any{"title": "Alta corregida"})
	require.Equal(t, http.StatusOK, status)
	var out struct {
		Title string `json:"title"`
	}
	decode(t, env, &out)
	assert.Equal(t, "Alta corregida", out.Title)
}

func TestTax_LecturaYEscrituraAdmin(t *testing.T) {
	app := buildApp(t)
	user := register(t, app, "ana@example.com")
	admin := adminToken(t, app)

	status, _ := call(t, app, http.MethodGet, "/api/tax", user, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, app, http.MethodPut, "/api/tax", admin, map[string]any{
		"gst": map[string]any{"enabled": true, "rate": "18"}, "description": "ajuste",
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, _ = call(t, app, http.MethodPut, "/api/tax", admin, map[string]any{"gst": map[string]any{"rate": "150"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodGet, "/api/tax/history", user, nil)
	require.Equal(t, http.StatusOK, status)
	var hist struct {
		History []json.RawMessage `json:"history"`
	}
	decode(t, env, &hist)
	assert.NotEmpty(t, hist.History)
}

func TestSettings_GetYUpdate(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")

	status, _ := call(t, app, http.MethodGet, "/api/settings", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := call(t, app, http.MethodPut, "/api/settings", token, map[string]any{"theme": "dark"})
	require.Equal(t, http.StatusOK, status)
	var st struct {
		Theme string `json:"theme"`
	}
	decode(t, env, &st)
	assert.Equal(t, "dark", st.Theme)

	status, _ = call(t, app, http.MethodPut, "/api/settings", token, map[string]any{"theme": "neon"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestIdentificadoresMalformados(t *testing.T) {
	app := buildApp(t)
	token := register(t, app, "ana@example.com")
	admin := adminToken(t, app)
	productID := createProduct(t, app, token, "UUID-1", 5)

	for _, path := range []string{
		"/api/products/abc",
		"/api/products/abc/stock-history",
		"/api/purchases/abc",
		"/api/categories/abc",
		"/api/movements/abc",
	} {
		status, _ := call(t, app, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusNotFound, status, path)
	}
	status, _ := call(t, app, http.MethodGet, "/api/admin/users/abc", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, app, http.MethodPost, "/api/purchases", token, map[string]any{
		"items":       []map[string]any{{"productId": "abc", "quantity": 1}},
		"totalAmount": "1",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodPut, "/api/products/"+productID, token, map[string]any{"categoryId": "abc"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, env := call(t, app, http.MethodPut, "/api/products/"+productID, token, map[string]any{"categoryId": ""})
	assert.Equal(t, http.StatusOK, status, env.Message)

	status, _ = call(t, app, http.MethodGet, "/api/movements?productId=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
