package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// IngredientRepository define el puerto de persistencia para Ingredient (DIP).
// El stock solo se escribe vía UpdateStock dentro de la misma transacción que
// registra el movimiento del ledger.
type IngredientRepository interface {
	Create(ctx context.Context, ing *entity.Ingredient) error
	GetByID(ctx context.Context, id, restaurantID string) (*entity.Ingredient, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.Ingredient, error)
	Update(ctx context.Context, ing *entity.Ingredient) error
	UpdateStock(ctx context.Context, id string, newStock decimal.Decimal) error
	// UpdateCost escribe el costo promedio ponderado tras una recepción.
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
	ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Ingredient, error)
	ListBelowReorderPoint(ctx context.Context, restaurantID string) ([]*entity.Ingredient, error)
	Deactivate(ctx context.Context, id, restaurantID string) error
}
