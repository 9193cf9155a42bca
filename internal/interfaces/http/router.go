package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Restaurante-api/internal/application/availability"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
	"github.com/jhoicas/Restaurante-api/internal/application/inventory"
	appledger "github.com/jhoicas/Restaurante-api/internal/application/ledger"
	apppurchase "github.com/jhoicas/Restaurante-api/internal/application/purchase"
	apprecipe "github.com/jhoicas/Restaurante-api/internal/application/recipe"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IngredientUC    *inventory.UseCase
	FulfillmentUC   *fulfillment.UseCase
	LedgerSvc       *appledger.Service
	RecipeResolver  *apprecipe.Resolver
	PurchaseUC      *apppurchase.UseCase
	AvailabilitySvc *availability.Service
	JWTSecret       string
}

// Router registra las rutas de la API. Todas requieren Bearer Token: el
// restaurant_id del tenant sale del JWT, nunca del request.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Ingredients
	ingredients := api.Group("/ingredients")
	ingredientHandler := NewIngredientHandler(deps.IngredientUC)
	ingredients.Post("/", ingredientHandler.Create)
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Get("/replenishment", ingredientHandler.ReplenishmentList)
	ingredients.Get("/:id", ingredientHandler.GetByID)
	ingredients.Put("/:id", ingredientHandler.Update)
	ingredients.Delete("/:id", ingredientHandler.Deactivate)

	// Stock engine: consumo, reversos, mermas, ajustes y ledger
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.FulfillmentUC, deps.LedgerSvc)
	stock.Post("/consume", stockHandler.Consume)
	stock.Post("/orders/:orderId/reverse", stockHandler.Reverse)
	stock.Post("/waste", stockHandler.RecordWaste)
	stock.Post("/adjust", RequireRole("admin"), stockHandler.Adjust)
	stock.Get("/movements/:referenceType/:referenceId", stockHandler.Movements)
	stock.Get("/reconcile/:referenceType/:referenceId", stockHandler.Reconcile)
	stock.Get("/waste-report", stockHandler.WasteReport)

	// Recipes
	recipes := api.Group("/recipes")
	recipeHandler := NewRecipeHandler(deps.RecipeResolver)
	recipes.Post("/", recipeHandler.Create)
	recipes.Put("/", recipeHandler.Update)
	recipes.Get("/", recipeHandler.List)
	recipes.Delete("/:id", recipeHandler.Delete)
	recipes.Get("/menu-items/:menuItemId/cost", recipeHandler.EstimateCost)

	// Purchase orders
	orders := api.Group("/purchase-orders")
	purchaseHandler := NewPurchaseOrderHandler(deps.PurchaseUC)
	orders.Post("/", purchaseHandler.Create)
	orders.Get("/", purchaseHandler.List)
	orders.Get("/:id", purchaseHandler.GetByID)
	orders.Get("/:id/pdf", purchaseHandler.PDF)
	orders.Post("/:id/submit", purchaseHandler.Submit)
	orders.Post("/:id/approve", RequireRole("admin", "compras"), purchaseHandler.Approve)
	orders.Post("/:id/ordered", purchaseHandler.MarkAsOrdered)
	orders.Post("/:id/receive", purchaseHandler.Receive)
	orders.Post("/:id/cancel", purchaseHandler.Cancel)

	// Suppliers
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.PurchaseUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Put("/:id", supplierHandler.Update)
	suppliers.Delete("/:id", supplierHandler.Deactivate)

	// Availability (solo lectura, cacheado)
	avail := api.Group("/availability")
	availabilityHandler := NewAvailabilityHandler(deps.AvailabilitySvc)
	avail.Get("/menu", availabilityHandler.ListMenu)
	avail.Get("/menu/:menuItemId", availabilityHandler.CheckItem)
}
