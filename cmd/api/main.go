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
	"github.com/jhoicas/Restaurante-api/internal/application/availability"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
	"github.com/jhoicas/Restaurante-api/internal/application/inventory"
	appledger "github.com/jhoicas/Restaurante-api/internal/application/ledger"
	apppurchase "github.com/jhoicas/Restaurante-api/internal/application/purchase"
	apprecipe "github.com/jhoicas/Restaurante-api/internal/application/recipe"
	"github.com/jhoicas/Restaurante-api/internal/infrastructure/memcache"
	infrapdf "github.com/jhoicas/Restaurante-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Restaurante-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Restaurante-api/internal/infrastructure/rabbitmq"
	httpRouter "github.com/jhoicas/Restaurante-api/internal/interfaces/http"
	"github.com/jhoicas/Restaurante-api/pkg/config"
	"github.com/jhoicas/Restaurante-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
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

	ingredientRepo := postgres.NewIngredientRepository(pool)
	menuItemRepo := postgres.NewMenuItemRepository(pool)
	recipeRepo := postgres.NewRecipeRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	poRepo := postgres.NewPurchaseOrderRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Caché de disponibilidad en memoria con barrido periódico.
	cache := memcache.New(cfg.Cache.SweepInterval)
	defer cache.Stop()

	// Broker de eventos de stock. RABBITMQ_URL vacío deja los eventos apagados.
	var events fulfillment.StockEventPublisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.Connect(cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer publisher.Close()
		events = publisher
	} else {
		log.Warn().Msg("RABBITMQ_URL vacío: eventos de stock deshabilitados")
	}

	ledgerSvc := appledger.NewService(movementRepo, ingredientRepo, menuItemRepo, log)
	recipeResolver := apprecipe.NewResolver(recipeRepo, ingredientRepo, menuItemRepo, nil)
	availabilitySvc := availability.NewService(menuItemRepo, recipeResolver, cache, cfg.Cache.TTL, log)
	// El resolver invalida disponibilidad al editar recetas; se liga después de
	// construir el servicio porque ambos se referencian.
	recipeResolver.SetInvalidator(availabilitySvc)

	ingredientUC := inventory.NewUseCase(txRunner, ingredientRepo, ledgerSvc)
	fulfillmentUC := fulfillment.NewUseCase(txRunner, recipeRepo, menuItemRepo, ledgerSvc, availabilitySvc, events, log)
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	purchaseUC := apppurchase.NewUseCase(
		txRunner, poRepo, supplierRepo, ingredientRepo,
		ledgerSvc, availabilitySvc, events, pdfGenerator, log,
	)

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
		Title:    "Restaurante API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		IngredientUC:    ingredientUC,
		FulfillmentUC:   fulfillmentUC,
		LedgerSvc:       ledgerSvc,
		RecipeResolver:  recipeResolver,
		PurchaseUC:      purchaseUC,
		AvailabilitySvc: availabilitySvc,
		JWTSecret:       cfg.JWT.Secret,
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
