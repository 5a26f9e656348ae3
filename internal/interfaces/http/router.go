package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/auth"
	"github.com/jhoicas/inventario-compras/internal/application/inventory"
	"github.com/jhoicas/inventario-compras/internal/application/tax"
	"github.com/jhoicas/inventario-compras/internal/application/usecase"
	"github.com/jhoicas/inventario-compras/internal/domain/entity"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/ws"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ProductUC  *usecase.ProductUseCase
	CategoryUC *usecase.CategoryUseCase
	UnitTypeUC *usecase.UnitTypeUseCase
	UserUC     *usecase.UserUseCase
	SettingsUC *usecase.SettingsUseCase
	StatsUC    *usecase.StatsUseCase
	PurchaseUC *inventory.PurchaseUseCase
	StockUC    *inventory.StockUseCase
	TaxManager *tax.Manager
	Movements  *audit.Logger
	Hub        *ws.Hub // nil desactiva /ws/movements
	JWTSecret  string
	AppName    string
}

// AppOptions parámetros del servidor Fiber.
type AppOptions struct {
	Name         string
	AllowOrigins string
	ExposeErrors bool
}

// NewApp crea la app Fiber con el ErrorHandler y los middlewares comunes (recover, cors, log de requests).
func NewApp(log *logger.Logger, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(log, opts.ExposeErrors),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(RequestLogger(log.Component("http")))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	if deps.Hub != nil {
		registerWS(app, deps)
	}

	api := app.Group("/api")

	// Auth (público salvo /me)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.StockUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Post("/:id/refill", productHandler.Refill)
	products.Get("/:id/stock-history", productHandler.StockHistory)
	products.Get("/:id/price-history", productHandler.PriceHistory)

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)

	units := protected.Group("/unit-types")
	unitHandler := NewUnitTypeHandler(deps.UnitTypeUC)
	units.Post("/", unitHandler.Create)
	units.Get("/", unitHandler.List)
	units.Get("/:id", unitHandler.GetByID)
	units.Put("/:id", unitHandler.Update)
	units.Delete("/:id", unitHandler.Delete)

	purchases := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Get("/:id/pdf", purchaseHandler.PDF)
	purchases.Put("/:id", purchaseHandler.Update)
	purchases.Delete("/:id", purchaseHandler.Delete)

	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.Movements)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Patch("/:id", adminOnly, movementHandler.Correct)

	taxGroup := protected.Group("/tax")
	taxHandler := NewTaxHandler(deps.TaxManager)
	taxGroup.Get("/", taxHandler.Get)
	taxGroup.Get("/history", taxHandler.History)
	taxGroup.Put("/", adminOnly, taxHandler.Upsert)
	taxGroup.Delete("/", adminOnly, taxHandler.Delete)

	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	protected.Get("/settings", settingsHandler.Get)
	protected.Put("/settings", settingsHandler.Update)

	statsHandler := NewStatsHandler(deps.StatsUC)
	protected.Get("/stats", statsHandler.Mine)

	// Admin
	admin := protected.Group("/admin", adminOnly)
	userHandler := NewUserHandler(deps.UserUC)
	admin.Get("/users", userHandler.List)
	admin.Get("/users/:id", userHandler.GetByID)
	admin.Put("/users/:id", userHandler.Update)
	admin.Delete("/users/:id", userHandler.Delete)
	admin.Get("/stats", statsHandler.Global)
}

// registerWS feed en vivo de movimientos. El token viaja como ?token= en el upgrade.
func registerWS(app *fiber.App, deps RouterDeps) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/movements", AuthMiddleware(deps.JWTSecret), websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(LocalUserID).(string)
		role, _ := conn.Locals(LocalRole).(string)
		deps.Hub.Serve(conn, userID, role == entity.RoleAdmin)
	}))
}
