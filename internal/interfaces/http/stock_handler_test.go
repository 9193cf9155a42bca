package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Restaurante-api/internal/application/apptest"
	"github.com/jhoicas/Restaurante-api/internal/application/dto"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
	appledger "github.com/jhoicas/Restaurante-api/internal/application/ledger"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	apphttp "github.com/jhoicas/Restaurante-api/internal/interfaces/http"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// buildStockApp levanta las rutas de stock contra fakes en memoria, con el
// middleware de auth real delante: el tenant sale del token, como en producción.
func buildStockApp(t *testing.T) (*fiber.App, *apptest.Store) {
	t.Helper()
	store := apptest.NewStore()
	store.Ingredients["ing-harina"] = &entity.Ingredient{
		ID: "ing-harina", RestaurantID: testRestaurantID, Name: "Harina", Unit: "kg",
		CurrentStock: dec("10"), Cost: dec("2"), IsActive: true,
	}
	store.MenuItems["menu-pizza"] = &entity.MenuItem{
		ID: "menu-pizza", RestaurantID: testRestaurantID, Name: "Pizza",
		Amount: dec("8"), TrackInventory: true, Available: true, IsActive: true,
	}
	store.Recipes["rec-pizza"] = &entity.Recipe{
		ID: "rec-pizza", RestaurantID: testRestaurantID, MenuItemID: "menu-pizza",
		Ingredients: []entity.RecipeIngredient{
			{IngredientID: "ing-harina", Quantity: dec("2"), Unit: "kg"},
		},
	}

	log := apptest.NewTestLogger()
	ledgerSvc := appledger.NewService(
		&apptest.MovementRepo{S: store},
		&apptest.IngredientRepo{S: store},
		&apptest.MenuItemRepo{S: store},
		log,
	)
	uc := fulfillment.NewUseCase(
		&apptest.TxRunner{S: store},
		&apptest.RecipeRepo{S: store},
		&apptest.MenuItemRepo{S: store},
		ledgerSvc, &apptest.CacheSpy{}, nil, log,
	)
	handler := apphttp.NewStockHandler(uc, ledgerSvc)

	app := fiber.New()
	stock := app.Group("/api/stock", apphttp.AuthMiddleware(testJWTSecret))
	stock.Post("/consume", handler.Consume)
	stock.Post("/orders/:orderId/reverse", handler.Reverse)
	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "cocina"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestStockConsume_OK(t *testing.T) {
	app, store := buildStockApp(t)
	resp := postJSON(t, app, "/api/stock/consume", dto.ConsumeOrderRequest{
		OrderID: "order-1",
		Lines:   []dto.OrderLineRequest{{MenuItemID: "menu-pizza", Quantity: 2}},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.FulfillmentResultResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "order-1", body.OrderID)
	assert.Len(t, body.Changes, 2, "plato + insumo de la receta")

	assert.True(t, store.Ingredients["ing-harina"].CurrentStock.Equal(dec("6")))
	assert.True(t, store.MenuItems["menu-pizza"].Amount.Equal(dec("6")))
}

func TestStockConsume_FaltantesResponde400ConDetalle(t *testing.T) {
	app, store := buildStockApp(t)
	resp := postJSON(t, app, "/api/stock/consume", dto.ConsumeOrderRequest{
		OrderID: "order-2",
		Lines:   []dto.OrderLineRequest{{MenuItemID: "menu-pizza", Quantity: 6}}, // 12 kg de harina, hay 10
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.InsufficientStockResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	require.Len(t, body.Shortfalls, 1)
	assert.Equal(t, "ing-harina", body.Shortfalls[0].IngredientID)
	assert.True(t, body.Shortfalls[0].Required.Equal(dec("12")))
	assert.True(t, body.Shortfalls[0].Available.Equal(dec("10")))

	assert.True(t, store.Ingredients["ing-harina"].CurrentStock.Equal(dec("10")), "nada cambió")
}

func TestStockReverse_DobleReversoResponde409(t *testing.T) {
	app, _ := buildStockApp(t)
	resp := postJSON(t, app, "/api/stock/consume", dto.ConsumeOrderRequest{
		OrderID: "order-3",
		Lines:   []dto.OrderLineRequest{{MenuItemID: "menu-pizza", Quantity: 1}},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/api/stock/orders/order-3/reverse", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/api/stock/orders/order-3/reverse", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "CONFLICT", body.Code)
}

func TestStockConsume_SinTokenResponde401(t *testing.T) {
	app, _ := buildStockApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/stock/consume", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
