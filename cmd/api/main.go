package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/auth"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/review"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/domain/validacion"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/infrastructure/ocr"
	infrapdf "github.com/CarlosHuyghusrl/facturaia-api/internal/infrastructure/pdf"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/infrastructure/postgres"
	httpRouter "github.com/CarlosHuyghusrl/facturaia-api/internal/interfaces/http"
	"github.com/CarlosHuyghusrl/facturaia-api/pkg/config"
	"github.com/CarlosHuyghusrl/facturaia-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	usuarioRepo := postgres.NewUsuarioRepository(pool)
	facturaRepo := postgres.NewFacturaRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Extractor OCR — opcional: sin OCR_BASE_URL la API solo acepta campos
	// ya extraídos (POST /api/facturas) y /escanear responde 400.
	var extractor review.Extractor
	if cfg.OCR.BaseURL != "" {
		extractor = ocr.NewClient(cfg.OCR)
	}

	validador := validacion.NewValidador(validacion.ConfigPorDefecto())
	constancia := infrapdf.NewConstanciaGenerator()
	reviewUC := review.NewCoordinator(facturaRepo, txRunner, extractor, constancia, validador, log)

	authUC := auth.NewAuthUseCase(usuarioRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "FacturaIA API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		Review:    reviewUC,
		JWTSecret: cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
