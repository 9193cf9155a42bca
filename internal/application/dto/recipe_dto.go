package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeLineRequest línea de receta: cantidad de un insumo por unidad del plato.
type RecipeLineRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
}

// UpsertRecipeRequest body para POST/PUT de recetas.
type UpsertRecipeRequest struct {
	MenuItemID      string              `json:"menu_item_id"`
	Ingredients     []RecipeLineRequest `json:"ingredients"`
	PreparationTime int                 `json:"preparation_time"`
	CookingTime     int                 `json:"cooking_time"`
	Yield           int                 `json:"yield"`
}

// RecipeResponse representación de una receta en respuestas.
type RecipeResponse struct {
	ID              string              `json:"id"`
	MenuItemID      string              `json:"menu_item_id"`
	Ingredients     []RecipeLineRequest `json:"ingredients"`
	PreparationTime int                 `json:"preparation_time"`
	CookingTime     int                 `json:"cooking_time"`
	Yield           int                 `json:"yield"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// RecipeCostResponse costo estimado de producir una unidad del plato.
type RecipeCostResponse struct {
	MenuItemID    string          `json:"menu_item_id"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}
