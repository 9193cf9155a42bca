package repository

import (
	"context"

	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// RecipeRepository define el puerto de persistencia para Recipe.
// GetByMenuItem devuelve nil sin error si el plato no tiene receta:
// la ausencia es un estado válido (control manual), no un error.
type RecipeRepository interface {
	Create(ctx context.Context, rec *entity.Recipe) error
	Update(ctx context.Context, rec *entity.Recipe) error
	Delete(ctx context.Context, id, restaurantID string) error
	GetByID(ctx context.Context, id, restaurantID string) (*entity.Recipe, error)
	GetByMenuItem(ctx context.Context, menuItemID, restaurantID string) (*entity.Recipe, error)
	ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Recipe, error)
}
