package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe mapea un MenuItem a los insumos necesarios para producir una unidad.
// Un MenuItem tiene a lo sumo una receta activa por restaurante; la ausencia de
// receta no es un error (significa que el plato se controla manualmente).
type Recipe struct {
	ID              string
	RestaurantID    string
	MenuItemID      string // único por restaurante
	Ingredients     []RecipeIngredient
	PreparationTime int // minutos
	CookingTime     int // minutos
	Yield           int // porciones que produce una preparación
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecipeIngredient es una línea de receta: cantidad de un insumo por unidad del plato.
type RecipeIngredient struct {
	IngredientID string
	Quantity     decimal.Decimal // > 0
	Unit         string
}
