package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Restaurante-api/internal/application/apptest"
	"github.com/jhoicas/Restaurante-api/internal/application/inventory"
	appledger "github.com/jhoicas/Restaurante-api/internal/application/ledger"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

const (
	testRestaurant = "rest-1"
	testUser       = "user-1"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newUseCase(store *apptest.Store) *inventory.UseCase {
	ledgerSvc := appledger.NewService(
		&apptest.MovementRepo{S: store},
		&apptest.IngredientRepo{S: store},
		&apptest.MenuItemRepo{S: store},
		apptest.NewTestLogger(),
	)
	return inventory.NewUseCase(&apptest.TxRunner{S: store}, &apptest.IngredientRepo{S: store}, ledgerSvc)
}

func createInput(name string) inventory.CreateIngredientInput {
	return inventory.CreateIngredientInput{
		RestaurantID: testRestaurant, UserID: testUser,
		Name: name, Unit: "kg",
		OpeningStock: dec("10"), Cost: dec("2"),
		MinStockLevel: dec("1"), ReorderPoint: dec("3"), ReorderQuantity: dec("5"),
		Category: "secos",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateIngredient
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateIngredient_AperturaPorLedger(t *testing.T) {
	store := apptest.NewStore()
	uc := newUseCase(store)

	ing, err := uc.CreateIngredient(context.Background(), createInput("Harina"))
	require.NoError(t, err)
	assert.True(t, ing.CurrentStock.Equal(dec("10")))
	assert.True(t, ing.IsActive)

	// El stock inicial entra como primera entrada del historial, no como
	// escritura directa: el plegado del ledger arranca coincidiendo.
	require.Len(t, store.Movements, 1)
	m := store.Movements[0]
	assert.Equal(t, entity.MovementTypeAdjustment, m.Type)
	assert.Equal(t, ing.ID, m.ReferenceID)
	assert.True(t, m.PreviousStock.IsZero())
	assert.True(t, m.NewStock.Equal(dec("10")))
	require.NotNil(t, m.Cost)
	assert.True(t, m.Cost.Equal(dec("20")), "la apertura se valoriza a costo")
}

func TestCreateIngredient_SinStockInicialNoGeneraMovimiento(t *testing.T) {
	store := apptest.NewStore()
	uc := newUseCase(store)

	in := createInput("Sal")
	in.OpeningStock = decimal.Zero
	ing, err := uc.CreateIngredient(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, ing.CurrentStock.IsZero())
	assert.Empty(t, store.Movements)
}

func TestCreateIngredient_NombreDuplicadoRevierteTodo(t *testing.T) {
	store := apptest.NewStore()
	uc := newUseCase(store)
	ctx := context.Background()

	_, err := uc.CreateIngredient(ctx, createInput("Harina"))
	require.NoError(t, err)

	_, err = uc.CreateIngredient(ctx, createInput("Harina"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.Len(t, store.Ingredients, 1)
	assert.Len(t, store.Movements, 1, "el intento fallido no dejó rastro en el ledger")
}

func TestCreateIngredient_Validaciones(t *testing.T) {
	uc := newUseCase(apptest.NewStore())
	ctx := context.Background()

	in := createInput("Harina")
	in.Name = ""
	_, err := uc.CreateIngredient(ctx, in)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	in = createInput("Harina")
	in.OpeningStock = dec("-1")
	_, err = uc.CreateIngredient(ctx, in)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "stock inicial negativo es inválido")

	in = createInput("Harina")
	in.Cost = dec("-2")
	_, err = uc.CreateIngredient(ctx, in)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateIngredient
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateIngredient_NoTocaElStock(t *testing.T) {
	store := apptest.NewStore()
	uc := newUseCase(store)
	ctx := context.Background()

	ing, err := uc.CreateIngredient(ctx, createInput("Harina"))
	require.NoError(t, err)

	updated, err := uc.UpdateIngredient(ctx, inventory.UpdateIngredientInput{
		ID: ing.ID, RestaurantID: testRestaurant,
		Name: "Harina 000", Unit: "kg",
		MinStockLevel: dec("2"), ReorderPoint: dec("4"), ReorderQuantity: dec("6"),
		Cost: dec("2.5"), Category: "secos",
	})
	require.NoError(t, err)
	assert.Equal(t, "Harina 000", updated.Name)
	assert.True(t, updated.CurrentStock.Equal(dec("10")),
		"las correcciones de cantidad van por el camino del ledger, no por aquí")
	assert.True(t, store.Ingredients[ing.ID].CurrentStock.Equal(dec("10")))
}

func TestUpdateIngredient_Inexistente(t *testing.T) {
	uc := newUseCase(apptest.NewStore())
	_, err := uc.UpdateIngredient(context.Background(), inventory.UpdateIngredientInput{
		ID: "ing-fantasma", RestaurantID: testRestaurant, Name: "X", Unit: "kg",
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Deactivate / ReplenishmentList
// ──────────────────────────────────────────────────────────────────────────────

func TestDeactivate_SoftDelete(t *testing.T) {
	store := apptest.NewStore()
	uc := newUseCase(store)
	ctx := context.Background()

	ing, err := uc.CreateIngredient(ctx, createInput("Harina"))
	require.NoError(t, err)
	require.NoError(t, uc.Deactivate(ctx, ing.ID, testRestaurant))

	assert.False(t, store.Ingredients[ing.ID].IsActive)
	list, err := uc.List(ctx, testRestaurant, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "los inactivos no se listan")

	err = uc.Deactivate(ctx, "ing-fantasma", testRestaurant)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReplenishmentList_OrdenaPorDeficit(t *testing.T) {
	store := apptest.NewStore()
	uc := newUseCase(store)
	store.Ingredients["ing-a"] = &entity.Ingredient{
		ID: "ing-a", RestaurantID: testRestaurant, Name: "Aceite", Unit: "l",
		CurrentStock: dec("2"), ReorderPoint: dec("3"), ReorderQuantity: dec("4"),
		Cost: dec("10"), IsActive: true,
	}
	store.Ingredients["ing-b"] = &entity.Ingredient{
		ID: "ing-b", RestaurantID: testRestaurant, Name: "Arroz", Unit: "kg",
		CurrentStock: dec("1"), ReorderPoint: dec("8"), ReorderQuantity: dec("0"), // sin cantidad configurada
		Cost: dec("3"), IsActive: true,
	}
	store.Ingredients["ing-c"] = &entity.Ingredient{
		ID: "ing-c", RestaurantID: testRestaurant, Name: "Azúcar", Unit: "kg",
		CurrentStock: dec("9"), ReorderPoint: dec("3"), IsActive: true, // sobrado
	}

	list, err := uc.ReplenishmentList(context.Background(), testRestaurant)
	require.NoError(t, err)
	require.Len(t, list, 2, "solo los insumos bajo su punto de reorden")

	// Arroz tiene el mayor déficit (7 contra 1): va primero.
	assert.Equal(t, "ing-b", list[0].IngredientID)
	assert.Equal(t, 1, list[0].Priority)
	// Sin cantidad configurada: reponer hasta 1.5x el punto de reorden.
	assert.True(t, list[0].SuggestedOrderQty.Equal(dec("11")), "8*1.5 - 1 = 11")

	assert.Equal(t, "ing-a", list[1].IngredientID)
	assert.Equal(t, 2, list[1].Priority)
	assert.True(t, list[1].SuggestedOrderQty.Equal(dec("4")), "usa la cantidad configurada")
	assert.True(t, list[1].EstimatedCost.Equal(dec("40")))
}
