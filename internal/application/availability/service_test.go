package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Restaurante-api/internal/application/apptest"
	"github.com/jhoicas/Restaurante-api/internal/application/availability"
	"github.com/jhoicas/Restaurante-api/internal/application/recipe"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/infrastructure/memcache"
)

const testRestaurant = "rest-1"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// newService arma el servicio contra el caché real en memoria y un restaurante
// con un plato por receta (pizza), uno de stock directo (tarta) y uno libre.
func newService(t *testing.T) (*availability.Service, *apptest.Store) {
	t.Helper()
	store := apptest.NewStore()
	store.Ingredients["ing-queso"] = &entity.Ingredient{
		ID: "ing-queso", RestaurantID: testRestaurant, Name: "Queso", Unit: "kg",
		CurrentStock: dec("1"), Cost: dec("8"), IsActive: true,
	}
	store.MenuItems["menu-pizza"] = &entity.MenuItem{
		ID: "menu-pizza", RestaurantID: testRestaurant, Name: "Pizza",
		Price: dec("12"), IsActive: true, Available: true,
	}
	store.MenuItems["menu-tarta"] = &entity.MenuItem{
		ID: "menu-tarta", RestaurantID: testRestaurant, Name: "Tarta",
		Price: dec("6"), Amount: dec("0"), TrackInventory: true, IsActive: true,
	}
	store.MenuItems["menu-ensalada"] = &entity.MenuItem{
		ID: "menu-ensalada", RestaurantID: testRestaurant, Name: "Ensalada",
		Price: dec("5"), IsActive: true, Available: true,
	}
	store.Recipes["rec-pizza"] = &entity.Recipe{
		ID: "rec-pizza", RestaurantID: testRestaurant, MenuItemID: "menu-pizza",
		Ingredients: []entity.RecipeIngredient{
			{IngredientID: "ing-queso", Quantity: dec("0.5"), Unit: "kg"},
		},
	}

	cache := memcache.New(time.Minute)
	t.Cleanup(cache.Stop)

	resolver := recipe.NewResolver(
		&apptest.RecipeRepo{S: store},
		&apptest.IngredientRepo{S: store},
		&apptest.MenuItemRepo{S: store},
		nil,
	)
	svc := availability.NewService(
		&apptest.MenuItemRepo{S: store}, resolver, cache, 30*time.Second, apptest.NewTestLogger(),
	)
	resolver.SetInvalidator(svc)
	return svc, store
}

func TestListMenuAvailability(t *testing.T) {
	svc, _ := newService(t)
	list, err := svc.ListMenuAvailability(context.Background(), testRestaurant, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)

	byID := make(map[string]availability.MenuAvailability, len(list))
	for _, item := range list {
		byID[item.MenuItemID] = item
	}
	assert.True(t, byID["menu-pizza"].Available, "hay queso para media pizza")
	assert.False(t, byID["menu-tarta"].Available, "stock directo en cero apaga el plato")
	assert.True(t, byID["menu-ensalada"].Available, "sin receta ni control: siempre disponible")
}

func TestCheckItem_CacheaYSeInvalida(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	ok, err := svc.CheckItem(ctx, testRestaurant, "menu-pizza")
	require.NoError(t, err)
	assert.True(t, ok)

	// El stock cae a cero pero la respuesta cacheada sigue viva (consultiva).
	store.Ingredients["ing-queso"].CurrentStock = decimal.Zero
	ok, err = svc.CheckItem(ctx, testRestaurant, "menu-pizza")
	require.NoError(t, err)
	assert.True(t, ok, "dentro del TTL se sirve el valor cacheado")

	// Tras invalidar se recalcula contra el stock real.
	svc.InvalidateRestaurant(testRestaurant)
	ok, err = svc.CheckItem(ctx, testRestaurant, "menu-pizza")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckItem_PlatoInexistente(t *testing.T) {
	svc, _ := newService(t)
	ok, err := svc.CheckItem(context.Background(), testRestaurant, "menu-fantasma")
	require.NoError(t, err)
	assert.False(t, ok)
}
