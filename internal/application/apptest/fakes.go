// Package apptest provee dobles en memoria de los puertos de persistencia y
// mensajería para los tests de los casos de uso. El Store simula la semántica
// transaccional de la BD con snapshot/restore: si la función dentro del
// TxRunner falla, el estado vuelve exactamente al de antes.
package apptest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
	"github.com/jhoicas/Restaurante-api/pkg/logger"
)

// Store es la "base de datos" en memoria compartida por todos los fakes.
type Store struct {
	Ingredients map[string]*entity.Ingredient
	MenuItems   map[string]*entity.MenuItem
	Recipes     map[string]*entity.Recipe
	Movements   []*entity.StockMovement
	Orders      map[string]*entity.PurchaseOrder
	Suppliers   map[string]*entity.Supplier

	poSeq map[string]int
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		Ingredients: make(map[string]*entity.Ingredient),
		MenuItems:   make(map[string]*entity.MenuItem),
		Recipes:     make(map[string]*entity.Recipe),
		Orders:      make(map[string]*entity.PurchaseOrder),
		Suppliers:   make(map[string]*entity.Supplier),
		poSeq:       make(map[string]int),
	}
}

// NewTestLogger devuelve un logger silencioso para los tests (solo errores, JSON).
func NewTestLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "fatal"})
}

// ── clones ────────────────────────────────────────────────────────────────────
// Los fakes devuelven copias, igual que un repo real devuelve filas escaneadas:
// mutar el resultado de un Get jamás toca el Store.

func cloneIngredient(in *entity.Ingredient) *entity.Ingredient {
	out := *in
	return &out
}

func cloneMenuItem(in *entity.MenuItem) *entity.MenuItem {
	out := *in
	return &out
}

func cloneRecipe(in *entity.Recipe) *entity.Recipe {
	out := *in
	out.Ingredients = append([]entity.RecipeIngredient(nil), in.Ingredients...)
	return &out
}

func cloneMovement(in *entity.StockMovement) *entity.StockMovement {
	out := *in
	return &out
}

func clonePurchaseOrder(in *entity.PurchaseOrder) *entity.PurchaseOrder {
	out := *in
	out.Items = append([]entity.PurchaseOrderItem(nil), in.Items...)
	return &out
}

func cloneSupplier(in *entity.Supplier) *entity.Supplier {
	out := *in
	return &out
}

func (s *Store) snapshot() *Store {
	snap := NewStore()
	for k, v := range s.Ingredients {
		snap.Ingredients[k] = cloneIngredient(v)
	}
	for k, v := range s.MenuItems {
		snap.MenuItems[k] = cloneMenuItem(v)
	}
	for k, v := range s.Recipes {
		snap.Recipes[k] = cloneRecipe(v)
	}
	for _, m := range s.Movements {
		snap.Movements = append(snap.Movements, cloneMovement(m))
	}
	for k, v := range s.Orders {
		snap.Orders[k] = clonePurchaseOrder(v)
	}
	for k, v := range s.Suppliers {
		snap.Suppliers[k] = cloneSupplier(v)
	}
	for k, v := range s.poSeq {
		snap.poSeq[k] = v
	}
	return snap
}

func (s *Store) restore(snap *Store) {
	s.Ingredients = snap.Ingredients
	s.MenuItems = snap.MenuItems
	s.Recipes = snap.Recipes
	s.Movements = snap.Movements
	s.Orders = snap.Orders
	s.Suppliers = snap.Suppliers
	s.poSeq = snap.poSeq
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

// TxRunner simula la unidad de trabajo: snapshot antes de fn, restore si falla.
type TxRunner struct {
	S *Store
}

var _ fulfillment.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn con los repos de fulfillment sobre el Store.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	menuItemRepo repository.MenuItemRepository,
) error) error {
	snap := r.S.snapshot()
	if err := fn(&MovementRepo{S: r.S}, &IngredientRepo{S: r.S}, &MenuItemRepo{S: r.S}); err != nil {
		r.S.restore(snap)
		return err
	}
	return nil
}

// RunPurchase ejecuta fn con los repos de recepción de mercadería sobre el Store.
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	snap := r.S.snapshot()
	if err := fn(&MovementRepo{S: r.S}, &IngredientRepo{S: r.S}, &PurchaseOrderRepo{S: r.S}); err != nil {
		r.S.restore(snap)
		return err
	}
	return nil
}

// ── IngredientRepo ────────────────────────────────────────────────────────────

type IngredientRepo struct {
	S *Store
}

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

func (r *IngredientRepo) Create(ctx context.Context, ing *entity.Ingredient) error {
	for _, existing := range r.S.Ingredients {
		if existing.RestaurantID == ing.RestaurantID && existing.Name == ing.Name {
			return domain.ErrDuplicate
		}
	}
	r.S.Ingredients[ing.ID] = cloneIngredient(ing)
	return nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.Ingredient, error) {
	ing, ok := r.S.Ingredients[id]
	if !ok || ing.RestaurantID != restaurantID {
		return nil, nil
	}
	return cloneIngredient(ing), nil
}

func (r *IngredientRepo) GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.Ingredient, error) {
	return r.GetByID(ctx, id, restaurantID)
}

func (r *IngredientRepo) Update(ctx context.Context, ing *entity.Ingredient) error {
	stored, ok := r.S.Ingredients[ing.ID]
	if !ok || stored.RestaurantID != ing.RestaurantID {
		return domain.ErrNotFound
	}
	// El UPDATE de metadatos nunca toca current_stock.
	next := cloneIngredient(ing)
	next.CurrentStock = stored.CurrentStock
	r.S.Ingredients[ing.ID] = next
	return nil
}

func (r *IngredientRepo) UpdateStock(ctx context.Context, id string, newStock decimal.Decimal) error {
	stored, ok := r.S.Ingredients[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.CurrentStock = newStock
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *IngredientRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	stored, ok := r.S.Ingredients[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Cost = cost
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *IngredientRepo) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Ingredient, error) {
	var out []*entity.Ingredient
	for _, ing := range r.S.Ingredients {
		if ing.RestaurantID == restaurantID && ing.IsActive {
			out = append(out, cloneIngredient(ing))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *IngredientRepo) ListBelowReorderPoint(ctx context.Context, restaurantID string) ([]*entity.Ingredient, error) {
	var out []*entity.Ingredient
	for _, ing := range r.S.Ingredients {
		if ing.RestaurantID == restaurantID && ing.IsActive && ing.CurrentStock.LessThan(ing.ReorderPoint) {
			out = append(out, cloneIngredient(ing))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		defI := out[i].ReorderPoint.Sub(out[i].CurrentStock)
		defJ := out[j].ReorderPoint.Sub(out[j].CurrentStock)
		return defI.GreaterThan(defJ)
	})
	return out, nil
}

func (r *IngredientRepo) Deactivate(ctx context.Context, id, restaurantID string) error {
	stored, ok := r.S.Ingredients[id]
	if !ok || stored.RestaurantID != restaurantID {
		return domain.ErrNotFound
	}
	stored.IsActive = false
	return nil
}

// ── MenuItemRepo ──────────────────────────────────────────────────────────────

type MenuItemRepo struct {
	S *Store
}

var _ repository.MenuItemRepository = (*MenuItemRepo)(nil)

func (r *MenuItemRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.MenuItem, error) {
	item, ok := r.S.MenuItems[id]
	if !ok || item.RestaurantID != restaurantID {
		return nil, nil
	}
	return cloneMenuItem(item), nil
}

func (r *MenuItemRepo) GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.MenuItem, error) {
	return r.GetByID(ctx, id, restaurantID)
}

func (r *MenuItemRepo) UpdateStock(ctx context.Context, id string, amount decimal.Decimal, available bool) error {
	stored, ok := r.S.MenuItems[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Amount = amount
	stored.Available = available
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *MenuItemRepo) ListActive(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.MenuItem, error) {
	var out []*entity.MenuItem
	for _, item := range r.S.MenuItems {
		if item.RestaurantID == restaurantID && item.IsActive {
			out = append(out, cloneMenuItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// ── RecipeRepo ────────────────────────────────────────────────────────────────

type RecipeRepo struct {
	S *Store
}

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

func (r *RecipeRepo) Create(ctx context.Context, rec *entity.Recipe) error {
	for _, existing := range r.S.Recipes {
		if existing.RestaurantID == rec.RestaurantID && existing.MenuItemID == rec.MenuItemID {
			return domain.ErrDuplicate
		}
	}
	r.S.Recipes[rec.ID] = cloneRecipe(rec)
	return nil
}

func (r *RecipeRepo) Update(ctx context.Context, rec *entity.Recipe) error {
	stored, ok := r.S.Recipes[rec.ID]
	if !ok || stored.RestaurantID != rec.RestaurantID {
		return domain.ErrNotFound
	}
	r.S.Recipes[rec.ID] = cloneRecipe(rec)
	return nil
}

func (r *RecipeRepo) Delete(ctx context.Context, id, restaurantID string) error {
	stored, ok := r.S.Recipes[id]
	if !ok || stored.RestaurantID != restaurantID {
		return domain.ErrNotFound
	}
	delete(r.S.Recipes, id)
	return nil
}

func (r *RecipeRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.Recipe, error) {
	rec, ok := r.S.Recipes[id]
	if !ok || rec.RestaurantID != restaurantID {
		return nil, nil
	}
	return cloneRecipe(rec), nil
}

func (r *RecipeRepo) GetByMenuItem(ctx context.Context, menuItemID, restaurantID string) (*entity.Recipe, error) {
	for _, rec := range r.S.Recipes {
		if rec.RestaurantID == restaurantID && rec.MenuItemID == menuItemID {
			return cloneRecipe(rec), nil
		}
	}
	return nil, nil
}

func (r *RecipeRepo) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Recipe, error) {
	var out []*entity.Recipe
	for _, rec := range r.S.Recipes {
		if rec.RestaurantID == restaurantID {
			out = append(out, cloneRecipe(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MenuItemID < out[j].MenuItemID })
	return page(out, limit, offset), nil
}

// ── MovementRepo ──────────────────────────────────────────────────────────────

type MovementRepo struct {
	S *Store
}

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	r.S.Movements = append(r.S.Movements, cloneMovement(m))
	return nil
}

func (r *MovementRepo) ListByReference(ctx context.Context, referenceID, referenceType string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	all, _ := r.ListAllByReference(ctx, referenceID, referenceType)
	var out []*entity.StockMovement
	for _, m := range all {
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		out = append(out, m)
	}
	// Orden de historial: más reciente primero.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return page(out, limit, offset), nil
}

func (r *MovementRepo) ListAllByReference(ctx context.Context, referenceID, referenceType string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.S.Movements {
		if m.ReferenceID == referenceID && m.ReferenceType == referenceType {
			out = append(out, cloneMovement(m))
		}
	}
	return out, nil
}

func (r *MovementRepo) ListByOrder(ctx context.Context, orderID, restaurantID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.S.Movements {
		if m.RestaurantID == restaurantID && m.OrderID != nil && *m.OrderID == orderID {
			out = append(out, cloneMovement(m))
		}
	}
	return out, nil
}

func (r *MovementRepo) WasteReport(ctx context.Context, restaurantID string, from, to *time.Time) ([]repository.WasteReportRow, error) {
	rows := make(map[string]*repository.WasteReportRow)
	for _, m := range r.S.Movements {
		if m.RestaurantID != restaurantID || m.Type != entity.MovementTypeWaste {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		row, ok := rows[m.ReferenceID]
		if !ok {
			row = &repository.WasteReportRow{
				ReferenceID:   m.ReferenceID,
				ReferenceType: m.ReferenceType,
				Unit:          m.Unit,
			}
			if ing, ok := r.S.Ingredients[m.ReferenceID]; ok {
				row.Name = ing.Name
			} else if item, ok := r.S.MenuItems[m.ReferenceID]; ok {
				row.Name = item.Name
			}
			rows[m.ReferenceID] = row
		}
		row.TotalQuantity = row.TotalQuantity.Add(m.Quantity)
		if m.Cost != nil {
			row.TotalCost = row.TotalCost.Add(*m.Cost)
		}
		row.Entries++
	}
	out := make([]repository.WasteReportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalCost.GreaterThan(out[j].TotalCost) })
	return out, nil
}

// ── PurchaseOrderRepo ─────────────────────────────────────────────────────────

type PurchaseOrderRepo struct {
	S *Store
}

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	if _, ok := r.S.Orders[po.ID]; ok {
		return domain.ErrDuplicate
	}
	r.S.Orders[po.ID] = clonePurchaseOrder(po)
	return nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error) {
	po, ok := r.S.Orders[id]
	if !ok || po.RestaurantID != restaurantID {
		return nil, nil
	}
	return clonePurchaseOrder(po), nil
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id, restaurantID)
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	stored, ok := r.S.Orders[po.ID]
	if !ok || stored.RestaurantID != po.RestaurantID {
		return domain.ErrNotFound
	}
	r.S.Orders[po.ID] = clonePurchaseOrder(po)
	return nil
}

func (r *PurchaseOrderRepo) List(ctx context.Context, restaurantID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, po := range r.S.Orders {
		if po.RestaurantID != restaurantID {
			continue
		}
		if status != "" && po.Status != status {
			continue
		}
		out = append(out, clonePurchaseOrder(po))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *PurchaseOrderRepo) NextOrderNumber(ctx context.Context, restaurantID string, year int) (string, error) {
	key := fmt.Sprintf("%s-%d", restaurantID, year)
	r.S.poSeq[key]++
	return fmt.Sprintf("PO-%d-%04d", year, r.S.poSeq[key]), nil
}

// ── SupplierRepo ──────────────────────────────────────────────────────────────

type SupplierRepo struct {
	S *Store
}

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	if _, ok := r.S.Suppliers[s.ID]; ok {
		return domain.ErrDuplicate
	}
	r.S.Suppliers[s.ID] = cloneSupplier(s)
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.Supplier, error) {
	s, ok := r.S.Suppliers[id]
	if !ok || s.RestaurantID != restaurantID {
		return nil, nil
	}
	return cloneSupplier(s), nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	stored, ok := r.S.Suppliers[s.ID]
	if !ok || stored.RestaurantID != s.RestaurantID {
		return domain.ErrNotFound
	}
	r.S.Suppliers[s.ID] = cloneSupplier(s)
	return nil
}

func (r *SupplierRepo) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	for _, s := range r.S.Suppliers {
		if s.RestaurantID == restaurantID && s.IsActive {
			out = append(out, cloneSupplier(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *SupplierRepo) Deactivate(ctx context.Context, id, restaurantID string) error {
	stored, ok := r.S.Suppliers[id]
	if !ok || stored.RestaurantID != restaurantID {
		return domain.ErrNotFound
	}
	stored.IsActive = false
	return nil
}

// ── espías de caché y eventos ─────────────────────────────────────────────────

// CacheSpy registra las invalidaciones de disponibilidad por restaurante.
type CacheSpy struct {
	Invalidated []string
}

func (c *CacheSpy) InvalidateRestaurant(restaurantID string) {
	c.Invalidated = append(c.Invalidated, restaurantID)
}

// EventsSpy registra los eventos de stock publicados.
type EventsSpy struct {
	Changed []fulfillment.StockChangedEvent
	Low     []fulfillment.LowStockEvent
	Err     error // si se setea, toda publicación falla con este error
}

var _ fulfillment.StockEventPublisher = (*EventsSpy)(nil)

func (e *EventsSpy) PublishStockChanged(ctx context.Context, ev fulfillment.StockChangedEvent) error {
	if e.Err != nil {
		return e.Err
	}
	e.Changed = append(e.Changed, ev)
	return nil
}

func (e *EventsSpy) PublishLowStock(ctx context.Context, ev fulfillment.LowStockEvent) error {
	if e.Err != nil {
		return e.Err
	}
	e.Low = append(e.Low, ev)
	return nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
