package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/jhoicas/inventario-compras/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-compras/pkg/config"
	"github.com/jhoicas/inventario-compras/pkg/logger"
)

// Uso: migrate [-steps N] up|down|version
func main() {
	steps := flag.Int("steps", 1, "migraciones a revertir con down")
	flag.Parse()

	// .env opcional; las variables del entorno tienen prioridad.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("migrate")

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	mg, err := postgres.NewMigrator(cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer mg.Close()

	switch cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down(*steps)
	case "version":
	default:
		log.Error().Str("cmd", cmd).Msg("comando desconocido; use up, down o version")
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración fallida")
	}

	v, dirty, err := mg.Version()
	if err != nil {
		log.Fatal().Err(err).Msg("leer versión")
	}
	log.Info().Str("cmd", cmd).Uint("version", v).Bool("dirty", dirty).Msg("migraciones al día")
}
