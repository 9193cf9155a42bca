package fulfillment

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// repositorios atados a esa tx. Garantiza el todo-o-nada del motor de stock.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		menuItemRepo repository.MenuItemRepository,
	) error) error
}

// AvailabilityInvalidator invalida las claves de disponibilidad cacheadas de un
// restaurante. Se llama después de commit en toda escritura que toque stock.
type AvailabilityInvalidator interface {
	InvalidateRestaurant(restaurantID string)
}

// StockChangedEvent notifica un cambio de stock ya commiteado.
type StockChangedEvent struct {
	RestaurantID  string          `json:"restaurant_id"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	MovementType  string          `json:"movement_type"`
	NewStock      decimal.Decimal `json:"new_stock"`
	OrderID       string          `json:"order_id,omitempty"`
}

// LowStockEvent notifica que un insumo quedó bajo su punto de reorden.
type LowStockEvent struct {
	RestaurantID    string          `json:"restaurant_id"`
	IngredientID    string          `json:"ingredient_id"`
	Name            string          `json:"name"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
}

// StockEventPublisher publica eventos de stock hacia el broker (best effort:
// un fallo de publicación se loggea, nunca revierte la operación ya commiteada).
type StockEventPublisher interface {
	PublishStockChanged(ctx context.Context, ev StockChangedEvent) error
	PublishLowStock(ctx context.Context, ev LowStockEvent) error
}
