package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/pkg/jwt"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

// Locals keys para la identidad resuelta en Fiber.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// AuthMiddleware valida el Bearer Token JWT y deja la identidad en c.Locals.
// Los navegadores no pueden mandar headers en el upgrade de WebSocket: ahí se acepta ?token=.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, errText := bearerToken(c)
		if errText != "" {
			return failWith(c, fiber.StatusUnauthorized, "no autorizado", errText)
		}
		id, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return failWith(c, fiber.StatusUnauthorized, "no autorizado", "token inválido o expirado")
		}
		c.Locals(LocalUserID, id.UserID)
		c.Locals(LocalEmail, id.Email)
		c.Locals(LocalRole, id.Role)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, ""
		}
		return "", "Authorization header requerido"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "formato: Bearer <token>"
	}
	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return "", "token vacío"
	}
	return tokenString, ""
}

// RequireRole deja pasar solo si el rol del token está en roles. Debe ir después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return failWith(c, fiber.StatusUnauthorized, "no autorizado", "MISSING_ROLE")
		}
		if _, ok := allowed[role]; !ok {
			return failWith(c, fiber.StatusForbidden, "acceso denegado", "FORBIDDEN")
		}
		return c.Next()
	}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string { return localString(c, LocalRole) }

// GetActor arma la identidad que consumen los casos de uso.
func GetActor(c *fiber.Ctx) entity.Actor {
	return entity.Actor{
		UserID: localString(c, LocalUserID),
		Email:  localString(c, LocalEmail),
		Role:   localString(c, LocalRole),
	}
}

// RequestLogger una línea por request: método, ruta, status, latencia y usuario.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return err
	}
}
