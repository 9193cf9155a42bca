package recipe_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/recipe"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// receta de pizza: 0.25 kg de harina y 0.1 kg de queso por unidad.
func pizzaRecipe() *entity.Recipe {
	return &entity.Recipe{
		ID:         "rec-pizza",
		MenuItemID: "menu-pizza",
		Ingredients: []entity.RecipeIngredient{
			{IngredientID: "ing-harina", Quantity: dec("0.25"), Unit: "kg"},
			{IngredientID: "ing-queso", Quantity: dec("0.1"), Unit: "kg"},
		},
	}
}

func stocks(harina, queso string) map[string]*entity.Ingredient {
	return map[string]*entity.Ingredient{
		"ing-harina": {ID: "ing-harina", Name: "Harina", CurrentStock: dec(harina), Cost: dec("2")},
		"ing-queso":  {ID: "ing-queso", Name: "Queso", CurrentStock: dec(queso), Cost: dec("8")},
	}
}

func TestFirstShortfall_AlcanzaTodo(t *testing.T) {
	short := recipe.FirstShortfall(pizzaRecipe(), stocks("10", "10"), dec("4"))
	assert.Nil(t, short, "con stock de sobra no hay faltante")
}

func TestFirstShortfall_CortaEnElPrimero(t *testing.T) {
	// Para 10 pizzas hacen falta 2.5 kg de harina y 1 kg de queso; faltan ambos
	// pero FirstShortfall reporta solo el primero según el orden de la receta.
	short := recipe.FirstShortfall(pizzaRecipe(), stocks("2", "0.5"), dec("10"))
	require.NotNil(t, short)
	assert.Equal(t, "ing-harina", short.IngredientID)
	assert.Equal(t, "Harina", short.Name)
	assert.True(t, short.Required.Equal(dec("2.5")))
	assert.True(t, short.Available.Equal(dec("2")))
}

func TestFirstShortfall_InsumoInexistenteCuentaComoCero(t *testing.T) {
	ings := stocks("10", "10")
	delete(ings, "ing-queso")
	short := recipe.FirstShortfall(pizzaRecipe(), ings, dec("1"))
	require.NotNil(t, short, "un insumo borrado equivale a disponible cero")
	assert.Equal(t, "ing-queso", short.IngredientID)
	assert.True(t, short.Available.IsZero())
}

func TestShortfalls_ListaCompleta(t *testing.T) {
	shorts := recipe.Shortfalls(pizzaRecipe(), stocks("2", "0.5"), dec("10"))
	require.Len(t, shorts, 2, "deben reportarse TODOS los faltantes, no solo el primero")
	assert.Equal(t, "ing-harina", shorts[0].IngredientID)
	assert.Equal(t, "ing-queso", shorts[1].IngredientID)
	assert.True(t, shorts[1].Required.Equal(dec("1")))
	assert.True(t, shorts[1].Available.Equal(dec("0.5")))
}

func TestShortfalls_SinFaltantes(t *testing.T) {
	shorts := recipe.Shortfalls(pizzaRecipe(), stocks("10", "10"), dec("1"))
	assert.Empty(t, shorts)
}

func TestEstimateCost_SumaLineas(t *testing.T) {
	// 0.25 kg * 2 + 0.1 kg * 8 = 0.5 + 0.8 = 1.3 por pizza.
	got := recipe.EstimateCost(pizzaRecipe(), stocks("10", "10"))
	assert.True(t, got.Equal(dec("1.3")), "esperado 1.3, obtenido %s", got)
}

func TestEstimateCost_InsumoInexistenteAportaCero(t *testing.T) {
	ings := stocks("10", "10")
	delete(ings, "ing-queso")
	got := recipe.EstimateCost(pizzaRecipe(), ings)
	assert.True(t, got.Equal(dec("0.5")), "la estimación degrada en vez de fallar")
}
