package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/inventario-compras/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventario-compras/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "inventario-compras-test"
	testExpMin    = 60
)

// buildGuardedApp app mínima: AuthMiddleware + RequireRole + handler que devuelve la identidad.
func buildGuardedApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			a := apphttp.GetActor(c)
			return c.JSON(fiber.Map{"userId": a.UserID, "email": a.Email, "role": a.Role})
		},
	)
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, Email: "ana@example.com", Role: role}, testIssuer, testExpMin)
	require.NoError(t, err)
	return tok
}

func getProtected(t *testing.T, app *fiber.App, target, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireRole_AdminPasa(t *testing.T) {
	app := buildGuardedApp("admin")
	resp := getProtected(t, app, "/protected", "Bearer "+tokenForRole(t, "admin"))
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "admin", body["role"])
	assert.Equal(t, testUserID, body["userId"])
	assert.Equal(t, "ana@example.com", body["email"])
}

func TestRequireRole_VariosRoles(t *testing.T) {
	app := buildGuardedApp("admin", "user")
	resp := getProtected(t, app, "/protected", "Bearer "+tokenForRole(t, "user"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_UsuarioEnRutaAdmin_403(t *testing.T) {
	app := buildGuardedApp("admin")
	resp := getProtected(t, app, "/protected", "Bearer "+tokenForRole(t, "user"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
	assert.Contains(t, string(body), `"success":false`)
}

func TestRequireRole_TokenSinRol_401(t *testing.T) {
	app := buildGuardedApp("admin")
	resp := getProtected(t, app, "/protected", "Bearer "+tokenForRole(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, Role: "user"}, testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otro-secret", pkgjwt.Identity{UserID: testUserID, Role: "user"}, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := map[string]string{
		"sin header":     "",
		"sin Bearer":     tokenForRole(t, "user"),
		"token vacío":    "Bearer ",
		"expirado":       "Bearer " + expired,
		"otro secret":    "Bearer " + foreign,
		"token corrupto": "Bearer abc.def.ghi",
	}
	app := buildGuardedApp("user")
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			resp := getProtected(t, app, "/protected", header)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuthMiddleware_TokenEnQuery(t *testing.T) {
	app := buildGuardedApp("user")
	resp := getProtected(t, app, "/protected?token="+tokenForRole(t, "user"), "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
