// Package recipe contiene la matemática pura de recetas: faltantes de insumos
// para un multiplicador dado y costo estimado por porción.
package recipe

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// FirstShortfall devuelve el primer faltante de la receta para producir
// multiplier unidades, o nil si alcanza todo. Corta en el primer insumo corto;
// quien necesite la lista completa usa Shortfalls.
func FirstShortfall(rec *entity.Recipe, ingredients map[string]*entity.Ingredient, multiplier decimal.Decimal) *domain.Shortfall {
	for _, line := range rec.Ingredients {
		required := line.Quantity.Mul(multiplier)
		ing, ok := ingredients[line.IngredientID]
		if !ok {
			return &domain.Shortfall{IngredientID: line.IngredientID, Required: required, Available: decimal.Zero}
		}
		if ing.CurrentStock.LessThan(required) {
			return &domain.Shortfall{IngredientID: ing.ID, Name: ing.Name, Required: required, Available: ing.CurrentStock}
		}
	}
	return nil
}

// Shortfalls devuelve todos los faltantes de la receta para multiplier unidades.
func Shortfalls(rec *entity.Recipe, ingredients map[string]*entity.Ingredient, multiplier decimal.Decimal) []domain.Shortfall {
	var out []domain.Shortfall
	for _, line := range rec.Ingredients {
		required := line.Quantity.Mul(multiplier)
		ing, ok := ingredients[line.IngredientID]
		if !ok {
			out = append(out, domain.Shortfall{IngredientID: line.IngredientID, Required: required, Available: decimal.Zero})
			continue
		}
		if ing.CurrentStock.LessThan(required) {
			out = append(out, domain.Shortfall{IngredientID: ing.ID, Name: ing.Name, Required: required, Available: ing.CurrentStock})
		}
	}
	return out
}

// EstimateCost suma ingredient.Cost * line.Quantity de todas las líneas.
// Insumos que ya no existen aportan cero: la estimación degrada en vez de fallar.
func EstimateCost(rec *entity.Recipe, ingredients map[string]*entity.Ingredient) decimal.Decimal {
	total := decimal.Zero
	for _, line := range rec.Ingredients {
		ing, ok := ingredients[line.IngredientID]
		if !ok {
			continue
		}
		total = total.Add(ing.Cost.Mul(line.Quantity))
	}
	return total
}
