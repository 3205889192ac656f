package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/miposra/pos-api/internal/application/auth"
	"github.com/miposra/pos-api/internal/application/dte"
	"github.com/miposra/pos-api/internal/application/folios"
	"github.com/miposra/pos-api/internal/application/importer"
	"github.com/miposra/pos-api/internal/application/sales"
	"github.com/miposra/pos-api/internal/application/usecase"
	"github.com/miposra/pos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC    *usecase.CompanyUseCase
	ProductUC    *usecase.ProductUseCase
	StatsUC      *usecase.StatsUseCase
	SalesUC      *sales.UseCase
	Orchestrator *dte.Orchestrator
	Ingest       *folios.IngestService
	Allocator    *folios.Allocator
	Importer     *importer.Service
	AuthUC       *auth.AuthUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Empresas (alta pública para el onboarding; actualización protegida)
	companies := api.Group("/empresas")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", AuthMiddleware(deps.JWTSecret), companyHandler.Update)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Productos (protegido)
	products := protected.Group("/productos")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Ventas (protegido)
	ventas := protected.Group("/ventas")
	saleHandler := NewSaleHandler(deps.SalesUC)
	ventas.Post("/", saleHandler.Create)
	ventas.Post("/emitir", saleHandler.Emit)
	ventas.Get("/", saleHandler.List)
	ventas.Get("/:id", saleHandler.GetByID)
	ventas.Get("/:id/ticket", saleHandler.Ticket)

	// DTE: emisión de boleta para ventas ya registradas (protegido)
	dteGroup := protected.Group("/dte")
	dteHandler := NewDTEHandler(deps.Orchestrator)
	dteGroup.Post("/emitir/:idVenta", dteHandler.Emit)

	// Folios CAF (protegido)
	foliosGroup := protected.Group("/folios")
	cafHandler := NewCafHandler(deps.Ingest, deps.Allocator)
	foliosGroup.Post("/upload", cafHandler.Upload)
	foliosGroup.Get("/", cafHandler.List)
	foliosGroup.Post("/asignar", cafHandler.Allocate)

	// Estadísticas (protegido)
	stats := protected.Group("/estadisticas")
	statsHandler := NewStatsHandler(deps.StatsUC)
	stats.Get("/ventas-por-dia", statsHandler.SalesByDay)
	stats.Get("/top-productos", statsHandler.TopProducts)
	stats.Get("/filtros", statsHandler.Filters)

	// Importación de dumps SQL (solo administradores)
	importGroup := protected.Group("/import", RequireRole(entity.RoleAdmin))
	importHandler := NewImportHandler(deps.Importer)
	importGroup.Post("/upload", importHandler.Upload)
	importGroup.Get("/tables/:uploadId", importHandler.Tables)
	importGroup.Post("/preview", importHandler.Preview)
	importGroup.Post("/apply", importHandler.Apply)
}
