package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/joho/godotenv"

	"github.com/jhoicas/inventario-compras/internal/application/audit"
	"github.com/jhoicas/inventario-compras/internal/application/auth"
	"github.com/jhoicas/inventario-compras/internal/application/inventory"
	"github.com/jhoicas/inventario-compras/internal/application/tax"
	"github.com/jhoicas/inventario-compras/internal/application/usecase"
	"github.com/jhoicas/inventario-compras/internal/domain/repository"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-compras/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-compras/internal/infrastructure/ws"
	httpRouter "github.com/jhoicas/inventario-compras/internal/interfaces/http"
	"github.com/jhoicas/inventario-compras/pkg/config"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

// repos puertos de persistencia resueltos según STORE_DRIVER.
type repos struct {
	users      repository.UserRepository
	products   repository.ProductRepository
	categories repository.CategoryRepository
	units      repository.UnitTypeRepository
	purchases  repository.PurchaseRepository
	movements  repository.MovementRepository
	tax        repository.TaxConfigRepository
	settings   repository.UserSettingsRepository
	stats      repository.StatsRepository
	tx         inventory.TxRunner
	close      func()
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")
	if !cfg.Admin.Enabled() {
		log.Warn().Msg("ADMIN_EMAIL/ADMIN_PASSWORD sin configurar: no habrá sesión de administrador")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	r, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer r.close()

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	movements := audit.NewLogger(r.movements, hub, log)
	authUC := auth.NewAuthUseCase(r.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, auth.AdminIdentity{
		ID:       cfg.Admin.ID,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	})

	app := httpRouter.NewApp(log, httpRouter.AppOptions{
		Name:         cfg.App.Name,
		AllowOrigins: cfg.CORS.AllowOrigins,
		ExposeErrors: cfg.App.Env == "development",
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario y Compras API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ProductUC:  usecase.NewProductUseCase(r.tx, r.products, r.categories, r.units, movements),
		CategoryUC: usecase.NewCategoryUseCase(r.categories, r.products),
		UnitTypeUC: usecase.NewUnitTypeUseCase(r.units, r.products),
		UserUC:     usecase.NewUserUseCase(r.users, movements),
		SettingsUC: usecase.NewSettingsUseCase(r.settings),
		StatsUC:    usecase.NewStatsUseCase(r.stats, r.movements),
		PurchaseUC: inventory.NewPurchaseUseCase(r.tx, r.purchases, movements, infrapdf.NewPurchasePDFGenerator(cfg.App.Name)),
		StockUC:    inventory.NewStockUseCase(r.tx, r.products, movements),
		TaxManager: tax.NewManager(r.tax, movements),
		Movements:  movements,
		Hub:        hub,
		JWTSecret:  cfg.JWT.Secret,
		AppName:    cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}

func openStore(ctx context.Context, cfg *config.Config) (*repos, error) {
	if cfg.Store.Driver == "memory" {
		s := memory.NewStore()
		return &repos{
			users:      s.Users(),
			products:   s.Products(),
			categories: s.Categories(),
			units:      s.UnitTypes(),
			purchases:  s.Purchases(),
			movements:  s.Movements(),
			tax:        s.TaxConfig(),
			settings:   s.UserSettings(),
			stats:      s.Stats(),
			tx:         s.TxRunner(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	movementRepo, err := postgres.NewMovementRepository(pool, cfg.Audit.CompressThreshold)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &repos{
		users:      postgres.NewUserRepository(pool),
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		units:      postgres.NewUnitTypeRepository(pool),
		purchases:  postgres.NewPurchaseRepository(pool),
		movements:  movementRepo,
		tax:        postgres.NewTaxConfigRepository(pool),
		settings:   postgres.NewUserSettingsRepository(pool),
		stats:      postgres.NewStatsRepository(pool),
		tx:         postgres.NewTxRunner(pool),
		close:      pool.Close,
	}, nil
}
