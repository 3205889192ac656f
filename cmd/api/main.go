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

	"github.com/miposra/pos-api/internal/application/auth"
	"github.com/miposra/pos-api/internal/application/dte"
	"github.com/miposra/pos-api/internal/application/folios"
	"github.com/miposra/pos-api/internal/application/importer"
	"github.com/miposra/pos-api/internal/application/sales"
	"github.com/miposra/pos-api/internal/application/usecase"
	"github.com/miposra/pos-api/internal/infrastructure/postgres"
	infrasii "github.com/miposra/pos-api/internal/infrastructure/sii"
	httpRouter "github.com/miposra/pos-api/internal/interfaces/http"
	"github.com/miposra/pos-api/pkg/config"
	"github.com/miposra/pos-api/pkg/logger"
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
		Str("sii_env", cfg.SII.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	cafRepo := postgres.NewCafRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)

	// Motor de folios: ingesta de CAF y asignación exactly-once.
	allocator := folios.NewAllocator(cafRepo)
	ingestSvc := folios.NewIngestService(cafRepo, companyRepo)

	// Firmador externo (SimpleAPI). La API key y el certificado .pfx viajan en
	// cada petición de firma.
	signer := infrasii.NewSimpleAPIClient(cfg.SII.APIURL, cfg.SII.APIKey, cfg.SII.CertPath)
	orchestrator := dte.NewOrchestrator(saleRepo, companyRepo, allocator, signer, dte.Config{
		CertPassword: cfg.SII.CertPassword,
	})

	salesUC := sales.NewUseCase(saleRepo, productRepo, companyRepo, orchestrator)
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	statsUC := usecase.NewStatsUseCase(statsRepo)
	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	importSvc, err := importer.NewService("uploads_sql", postgres.NewImportRepository(pool))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar importador")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    20 * 1024 * 1024, // dumps SQL de importación
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "MiPosra API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:    companyUC,
		ProductUC:    productUC,
		StatsUC:      statsUC,
		SalesUC:      salesUC,
		Orchestrator: orchestrator,
		Ingest:       ingestSvc,
		Allocator:    allocator,
		Importer:     importSvc,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
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
