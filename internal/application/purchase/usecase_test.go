package purchase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Restaurante-api/internal/application/apptest"
	appledger "github.com/jhoicas/Restaurante-api/internal/application/ledger"
	"github.com/jhoicas/Restaurante-api/internal/application/purchase"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

const (
	testRestaurant = "rest-1"
	testUser       = "user-1"
	testApprover   = "user-admin"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type env struct {
	store  *apptest.Store
	cache  *apptest.CacheSpy
	events *apptest.EventsSpy
	uc     *purchase.UseCase
}

// fakePDF evita depender del generador real en los tests del caso de uso.
type fakePDF struct{}

func (fakePDF) GeneratePurchaseOrderPDF(ctx context.Context, po *entity.PurchaseOrder, supplier *entity.Supplier) ([]byte, error) {
	return []byte("%PDF-fake"), nil
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := apptest.NewStore()
	store.Suppliers["sup-1"] = &entity.Supplier{
		ID: "sup-1", RestaurantID: testRestaurant, Name: "Distribuidora Norte", IsActive: true,
	}
	store.Ingredients["ing-harina"] = &entity.Ingredient{
		ID: "ing-harina", RestaurantID: testRestaurant, Name: "Harina", Unit: "kg",
		CurrentStock: dec("10"), Cost: dec("2"), IsActive: true,
	}
	store.Ingredients["ing-queso"] = &entity.Ingredient{
		ID: "ing-queso", RestaurantID: testRestaurant, Name: "Queso", Unit: "kg",
		CurrentStock: dec("0"), Cost: dec("0"), IsActive: true,
	}

	log := apptest.NewTestLogger()
	ledgerSvc := appledger.NewService(
		&apptest.MovementRepo{S: store},
		&apptest.IngredientRepo{S: store},
		&apptest.MenuItemRepo{S: store},
		log,
	)
	cache := &apptest.CacheSpy{}
	events := &apptest.EventsSpy{}
	uc := purchase.NewUseCase(
		&apptest.TxRunner{S: store},
		&apptest.PurchaseOrderRepo{S: store},
		&apptest.SupplierRepo{S: store},
		&apptest.IngredientRepo{S: store},
		ledgerSvc, cache, events, fakePDF{}, log,
	)
	return &env{store: store, cache: cache, events: events, uc: uc}
}

// createOrder da de alta una orden de 100 kg de harina a 3.00 y 20 kg de queso a 5.00.
func (e *env) createOrder(t *testing.T) *entity.PurchaseOrder {
	t.Helper()
	po, err := e.uc.Create(context.Background(), purchase.CreateInput{
		RestaurantID: testRestaurant, UserID: testUser, SupplierID: "sup-1",
		Items: []purchase.ItemInput{
			{IngredientID: "ing-harina", Quantity: dec("100"), UnitCost: dec("3")},
			{IngredientID: "ing-queso", Quantity: dec("20"), UnitCost: dec("5")},
		},
		Tax: dec("10"), Shipping: dec("15"),
	})
	require.NoError(t, err)
	return po
}

// approveOrder lleva la orden hasta approved, lista para recibir.
func (e *env) approveOrder(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.uc.Submit(ctx, id, testRestaurant)
	require.NoError(t, err)
	_, err = e.uc.Approve(ctx, id, testRestaurant, testApprover)
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_OrdenEnDraftConTotales(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)

	assert.Equal(t, entity.POStatusDraft, po.Status)
	assert.Equal(t, entity.POPaymentPending, po.PaymentStatus)
	assert.Regexp(t, `^PO-\d{4}-0001$`, po.OrderNumber)
	assert.True(t, po.Subtotal.Equal(dec("400")), "100*3 + 20*5")
	assert.True(t, po.Total.Equal(dec("425")), "subtotal + tax + shipping")

	// Nombre y unidad desnormalizados para conservar el histórico.
	require.Len(t, po.Items, 2)
	assert.Equal(t, "Harina", po.Items[0].Name)
	assert.Equal(t, "kg", po.Items[0].Unit)
	assert.True(t, po.Items[0].ReceivedQuantity.IsZero())

	// Crear nunca toca el stock.
	assert.True(t, e.store.Ingredients["ing-harina"].CurrentStock.Equal(dec("10")))
	assert.Empty(t, e.store.Movements)
}

func TestCreate_ConsecutivoPorRestauranteYAnio(t *testing.T) {
	e := newEnv(t)
	first := e.createOrder(t)
	second := e.createOrder(t)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
	assert.Regexp(t, `^PO-\d{4}-0002$`, second.OrderNumber)
}

func TestCreate_ProveedorInactivoRechazado(t *testing.T) {
	e := newEnv(t)
	e.store.Suppliers["sup-1"].IsActive = false
	_, err := e.uc.Create(context.Background(), purchase.CreateInput{
		RestaurantID: testRestaurant, UserID: testUser, SupplierID: "sup-1",
		Items: []purchase.ItemInput{{IngredientID: "ing-harina", Quantity: dec("1"), UnitCost: dec("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreate_ValidaLineas(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.uc.Create(ctx, purchase.CreateInput{
		RestaurantID: testRestaurant, UserID: testUser, SupplierID: "sup-1",
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "una orden sin líneas es inválida")

	_, err = e.uc.Create(ctx, purchase.CreateInput{
		RestaurantID: testRestaurant, UserID: testUser, SupplierID: "sup-1",
		Items: []purchase.ItemInput{{IngredientID: "ing-harina", Quantity: dec("0"), UnitCost: dec("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad cero es inválida")

	_, err = e.uc.Create(ctx, purchase.CreateInput{
		RestaurantID: testRestaurant, UserID: testUser, SupplierID: "sup-1",
		Items: []purchase.ItemInput{{IngredientID: "ing-fantasma", Quantity: dec("1"), UnitCost: dec("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "insumo inexistente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestLifecycle_CaminoCompleto(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	po := e.createOrder(t)

	po, err := e.uc.Submit(ctx, po.ID, testRestaurant)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusPending, po.Status)

	po, err = e.uc.Approve(ctx, po.ID, testRestaurant, testApprover)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusApproved, po.Status)
	require.NotNil(t, po.ApprovedBy)
	assert.Equal(t, testApprover, *po.ApprovedBy)
	assert.NotNil(t, po.ApprovedAt)

	po, err = e.uc.MarkAsOrdered(ctx, po.ID, testRestaurant)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusOrdered, po.Status)
}

func TestLifecycle_AprobarSinPasarPorPending(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)
	_, err := e.uc.Approve(context.Background(), po.ID, testRestaurant, testApprover)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	var tr *domain.InvalidTransitionError
	require.True(t, errors.As(err, &tr))
	assert.Equal(t, entity.POStatusDraft, tr.From)
	assert.Equal(t, entity.POStatusApproved, tr.To)
}

func TestLifecycle_CancelarNoTocaStock(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)
	e.approveOrder(t, po.ID)

	po, err := e.uc.Cancel(context.Background(), po.ID, testRestaurant)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusCancelled, po.Status)
	assert.Empty(t, e.store.Movements, "una orden no recibida nunca afectó el stock")

	_, err = e.uc.Cancel(context.Background(), po.ID, testRestaurant)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition), "cancelled es terminal")
}

func TestLifecycle_OrdenInexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.Submit(context.Background(), "po-fantasma", testRestaurant)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// txRunnerSpy cuenta cuántas operaciones pasan por el runner transaccional.
type txRunnerSpy struct {
	apptest.TxRunner
	purchaseRuns int
}

func (s *txRunnerSpy) RunPurchase(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	s.purchaseRuns++
	return s.TxRunner.RunPurchase(ctx, fn)
}

// Cada transición de ciclo de vida corre dentro del runner transaccional con
// candado de fila, igual que la recepción: un Cancel concurrente a un
// MarkAsReceived no puede pisar cantidades recién acreditadas ni cancelar una
// orden que acaba de pasar a received.
func TestLifecycle_TransicionesCorrenBajoElRunnerTransaccional(t *testing.T) {
	e := newEnv(t)
	spy := &txRunnerSpy{TxRunner: apptest.TxRunner{S: e.store}}
	log := apptest.NewTestLogger()
	ledgerSvc := appledger.NewService(
		&apptest.MovementRepo{S: e.store},
		&apptest.IngredientRepo{S: e.store},
		&apptest.MenuItemRepo{S: e.store},
		log,
	)
	uc := purchase.NewUseCase(
		spy,
		&apptest.PurchaseOrderRepo{S: e.store},
		&apptest.SupplierRepo{S: e.store},
		&apptest.IngredientRepo{S: e.store},
		ledgerSvc, e.cache, e.events, fakePDF{}, log,
	)

	ctx := context.Background()
	po, err := uc.Create(ctx, purchase.CreateInput{
		RestaurantID: testRestaurant, UserID: testUser, SupplierID: "sup-1",
		Items: []purchase.ItemInput{
			{IngredientID: "ing-harina", Quantity: dec("100"), UnitCost: dec("3")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, spy.purchaseRuns, "Create no necesita el candado: la orden aún no existe")

	_, err = uc.Submit(ctx, po.ID, testRestaurant)
	require.NoError(t, err)
	_, err = uc.Approve(ctx, po.ID, testRestaurant, testApprover)
	require.NoError(t, err)
	_, err = uc.MarkAsOrdered(ctx, po.ID, testRestaurant)
	require.NoError(t, err)
	assert.Equal(t, 3, spy.purchaseRuns, "cada transición toma el candado de la orden")

	_, err = uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, spy.purchaseRuns)

	// Con la orden ya received, el Cancel rezagado se rechaza dentro de la
	// transacción y no deja rastro: ni estado ni stock cambian.
	_, err = uc.Cancel(ctx, po.ID, testRestaurant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	got := e.store.Orders[po.ID]
	assert.Equal(t, entity.POStatusReceived, got.Status)
	assert.True(t, got.Items[0].ReceivedQuantity.Equal(dec("100")),
		"lo acreditado por la recepción sigue intacto")
}

// ──────────────────────────────────────────────────────────────────────────────
// MarkAsReceived
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_CompletaAcreditaYPromedia(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)
	e.approveOrder(t, po.ID)

	// Sin mapa: todas las líneas se asumen completas.
	po, err := e.uc.MarkAsReceived(context.Background(), purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, po.Status)
	require.NotNil(t, po.ReceivedBy)
	assert.Equal(t, testUser, *po.ReceivedBy)

	harina := e.store.Ingredients["ing-harina"]
	assert.True(t, harina.CurrentStock.Equal(dec("110")), "10 + 100 recibidos")
	// Promedio ponderado: (10*2 + 100*3) / 110 = 320/110.
	assert.True(t, harina.Cost.Equal(dec("320").Div(dec("110"))), "costo promedio, obtenido %s", harina.Cost)

	queso := e.store.Ingredients["ing-queso"]
	assert.True(t, queso.CurrentStock.Equal(dec("20")))
	assert.True(t, queso.Cost.Equal(dec("5")), "sin stock previo el costo pasa al de la recepción")

	// Un movimiento purchase por línea acreditada, ligado a la orden y al proveedor.
	require.Len(t, e.store.Movements, 2)
	for _, m := range e.store.Movements {
		assert.Equal(t, entity.MovementTypePurchase, m.Type)
		require.NotNil(t, m.PurchaseOrderID)
		assert.Equal(t, po.ID, *m.PurchaseOrderID)
		require.NotNil(t, m.SupplierID)
		assert.Equal(t, "sup-1", *m.SupplierID)
	}
	assert.Contains(t, e.cache.Invalidated, testRestaurant)
	assert.Len(t, e.events.Changed, 2)
}

func TestReceive_ParcialAcumulaSoloElDelta(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)
	e.approveOrder(t, po.ID)
	ctx := context.Background()

	// Primera recepción: 60 de 100 kg de harina, nada de queso.
	po1, err := e.uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
		ReceivedQuantities: map[string]decimal.Decimal{
			"ing-harina": dec("60"),
			"ing-queso":  dec("0"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusPartial, po1.Status)
	assert.True(t, e.store.Ingredients["ing-harina"].CurrentStock.Equal(dec("70")))
	require.Len(t, e.store.Movements, 1)
	assert.True(t, e.store.Movements[0].Quantity.Equal(dec("60")))

	// Segunda recepción: el acumulado sube a 100; solo se acreditan los 40 nuevos.
	po2, err := e.uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
		ReceivedQuantities: map[string]decimal.Decimal{
			"ing-harina": dec("100"),
			"ing-queso":  dec("20"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, po2.Status)
	assert.True(t, e.store.Ingredients["ing-harina"].CurrentStock.Equal(dec("110")))
	require.Len(t, e.store.Movements, 3, "60 + delta 40 de harina + 20 de queso")
	assert.True(t, e.store.Movements[1].Quantity.Equal(dec("40")), "nunca se acredita dos veces lo mismo")
}

func TestReceive_RepetirElMismoAcumuladoEsNoOp(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)
	e.approveOrder(t, po.ID)
	ctx := context.Background()

	quantities := map[string]decimal.Decimal{
		"ing-harina": dec("60"),
		"ing-queso":  dec("0"),
	}
	_, err := e.uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser, ReceivedQuantities: quantities,
	})
	require.NoError(t, err)
	stockAfter := e.store.Ingredients["ing-harina"].CurrentStock
	movsAfter := len(e.store.Movements)

	// El mismo mapa otra vez (reintento del cliente): cero delta, cero crédito.
	po2, err := e.uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser, ReceivedQuantities: quantities,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusPartial, po2.Status)
	assert.True(t, e.store.Ingredients["ing-harina"].CurrentStock.Equal(stockAfter))
	assert.Len(t, e.store.Movements, movsAfter, "la recepción idempotente no genera movimientos")
}

func TestReceive_ReducirLoYaRecibidoSeRechaza(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)
	e.approveOrder(t, po.ID)
	ctx := context.Background()

	_, err := e.uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
		ReceivedQuantities: map[string]decimal.Decimal{"ing-harina": dec("60"), "ing-queso": dec("0")},
	})
	require.NoError(t, err)

	_, err = e.uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
		ReceivedQuantities: map[string]decimal.Decimal{"ing-harina": dec("50"), "ing-queso": dec("0")},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput),
		"el acumulado recibido jamás baja; lo recibido de más se corrige con un adjustment")
	assert.True(t, e.store.Ingredients["ing-harina"].CurrentStock.Equal(dec("70")), "nada cambió")
}

func TestReceive_ValidacionesDelMapa(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)
	e.approveOrder(t, po.ID)
	ctx := context.Background()

	_, err := e.uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
		ReceivedQuantities: map[string]decimal.Decimal{"ing-harina": dec("101")},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "recibir más de lo pedido se rechaza")

	_, err = e.uc.MarkAsReceived(ctx, purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
		ReceivedQuantities: map[string]decimal.Decimal{"ing-ajeno": dec("1")},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "insumo ajeno a la orden se rechaza")

	assert.Empty(t, e.store.Movements, "ninguna validación fallida acredita stock")
}

func TestReceive_EstadoNoRecibibleSeRechaza(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t) // sigue en draft

	_, err := e.uc.MarkAsReceived(context.Background(), purchase.ReceiveInput{
		ID: po.ID, RestaurantID: testRestaurant, UserID: testUser,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.Empty(t, e.store.Movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas y PDF
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorEstado(t *testing.T) {
	e := newEnv(t)
	first := e.createOrder(t)
	e.createOrder(t)
	_, err := e.uc.Submit(context.Background(), first.ID, testRestaurant)
	require.NoError(t, err)

	pending, err := e.uc.List(context.Background(), testRestaurant, entity.POStatusPending, 20, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	all, err := e.uc.List(context.Background(), testRestaurant, "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGeneratePDF(t *testing.T) {
	e := newEnv(t)
	po := e.createOrder(t)

	data, err := e.uc.GeneratePDF(context.Background(), po.ID, testRestaurant)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = e.uc.GeneratePDF(context.Background(), "po-fantasma", testRestaurant)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Proveedores
// ──────────────────────────────────────────────────────────────────────────────

func TestSuppliers_CRUD(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	s, err := e.uc.CreateSupplier(ctx, purchase.SupplierInput{
		RestaurantID: testRestaurant, Name: "Lácteos Sur", ContactName: "Marta", Email: "ventas@lacteossur.test",
	})
	require.NoError(t, err)
	assert.True(t, s.IsActive)

	s, err = e.uc.UpdateSupplier(ctx, s.ID, purchase.SupplierInput{
		RestaurantID: testRestaurant, Name: "Lácteos Sur SRL",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lácteos Sur SRL", s.Name)

	list, err := e.uc.ListSuppliers(ctx, testRestaurant, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2, "el sembrado más el nuevo")

	require.NoError(t, e.uc.DeactivateSupplier(ctx, s.ID, testRestaurant))
	list, err = e.uc.ListSuppliers(ctx, testRestaurant, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1, "los inactivos no se listan")

	err = e.uc.DeactivateSupplier(ctx, "sup-fantasma", testRestaurant)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateSupplier_NombreObligatorio(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.CreateSupplier(context.Background(), purchase.SupplierInput{RestaurantID: testRestaurant})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
