package fulfillment

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/application/ledger"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
	"github.com/jhoicas/Restaurante-api/pkg/logger"
)

// UseCase orquesta el consumo de stock al confirmar un pedido y su reverso al
// cancelarlo, todo dentro de una unidad de trabajo atómica: pre-chequeo con
// bloqueo de fila (SELECT FOR UPDATE), mutaciones y entradas de ledger commitean
// juntas o no commitea nada.
type UseCase struct {
	txRunner   TxRunner
	recipeRepo repository.RecipeRepository
	menuRepo   repository.MenuItemRepository
	ledger     *ledger.Service
	cache      AvailabilityInvalidator
	events     StockEventPublisher // puede ser nil si no hay broker configurado
	log        *logger.Logger
}

// NewUseCase construye el coordinador de fulfillment.
func NewUseCase(
	txRunner TxRunner,
	recipeRepo repository.RecipeRepository,
	menuRepo repository.MenuItemRepository,
	ledgerSvc *ledger.Service,
	cache AvailabilityInvalidator,
	events StockEventPublisher,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:   txRunner,
		recipeRepo: recipeRepo,
		menuRepo:   menuRepo,
		ledger:     ledgerSvc,
		cache:      cache,
		events:     events,
		log:        log,
	}
}

// OrderLine es una línea del pedido tal como la emite el ciclo de vida de órdenes.
type OrderLine struct {
	MenuItemID string
	Quantity   int
}

// ConsumeInput entrada para Consume (pedido confirmado).
type ConsumeInput struct {
	OrderID      string
	RestaurantID string
	UserID       string
	Lines        []OrderLine
}

// WasteInput entrada para RecordWaste. Quantity es magnitud positiva.
type WasteInput struct {
	RestaurantID  string
	UserID        string
	ReferenceType string // ingredient | menu_item
	ReferenceID   string
	Quantity      decimal.Decimal
}

// AdjustInput entrada para Adjust. Quantity lleva signo.
type AdjustInput struct {
	RestaurantID  string
	UserID        string
	ReferenceType string
	ReferenceID   string
	Quantity      decimal.Decimal
}

// StockChange snapshot de un registro de stock afectado por una operación.
type StockChange struct {
	ReferenceType string
	ReferenceID   string
	Name          string
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
}

// Result resultado de una operación de fulfillment ya commiteada.
type Result struct {
	OrderID string
	Changes []StockChange
}

// plan de consumo resuelto antes de la transacción: deducciones de stock
// directo por plato y necesidades agregadas de insumos vía receta.
type consumePlan struct {
	menuIDs         []string
	menuQty         map[string]decimal.Decimal
	ingredientIDs   []string
	ingredientNeeds map[string]decimal.Decimal
}

// Consume descuenta el stock de un pedido confirmado: platos con TrackInventory
// bajan su Amount y cada línea con receta descuenta sus insumos multiplicados
// por la cantidad pedida. Todo-o-nada: si algún insumo no alcanza, se devuelve
// InsufficientStockError con TODOS los faltantes y ningún stock cambia.
func (uc *UseCase) Consume(ctx context.Context, input ConsumeInput) (*Result, error) {
	if input.OrderID == "" || input.RestaurantID == "" || input.UserID == "" || len(input.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range input.Lines {
		if l.MenuItemID == "" || l.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	plan, err := uc.resolvePlan(ctx, input)
	if err != nil {
		return nil, err
	}

	res := &Result{OrderID: input.OrderID}
	var lowStock []LowStockEvent

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		menuItemRepo repository.MenuItemRepository,
	) error {
		// Pre-chequeo con bloqueo de fila; se recolectan TODOS los faltantes.
		menuItems := make(map[string]*entity.MenuItem, len(plan.menuIDs))
		ingredients := make(map[string]*entity.Ingredient, len(plan.ingredientIDs))
		var shortfalls []domain.Shortfall

		for _, id := range plan.menuIDs {
			item, err := menuItemRepo.GetForUpdate(ctx, id, input.RestaurantID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			menuItems[id] = item
			need := plan.menuQty[id]
			if item.TrackInventory && item.Amount.LessThan(need) {
				shortfalls = append(shortfalls, domain.Shortfall{
					IngredientID: item.ID, Name: item.Name, Required: need, Available: item.Amount,
				})
			}
		}
		for _, id := range plan.ingredientIDs {
			ing, err := ingredientRepo.GetForUpdate(ctx, id, input.RestaurantID)
			if err != nil {
				return err
			}
			if ing == nil {
				return domain.ErrNotFound
			}
			ingredients[id] = ing
			need := plan.ingredientNeeds[id]
			if ing.CurrentStock.LessThan(need) {
				shortfalls = append(shortfalls, domain.Shortfall{
					IngredientID: ing.ID, Name: ing.Name, Required: need, Available: ing.CurrentStock,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &domain.InsufficientStockError{Shortfalls: shortfalls}
		}

		// Mutación: un movimiento de ledger por registro afectado. Append
		// re-valida la no-negatividad por escritura (defensa ante carreras).
		for _, id := range plan.menuIDs {
			item := menuItems[id]
			if !item.TrackInventory {
				continue
			}
			qty := plan.menuQty[id]
			mov := &entity.StockMovement{
				RestaurantID:  input.RestaurantID,
				Type:          entity.MovementTypeConsumption,
				ReferenceType: entity.ReferenceTypeMenuItem,
				ReferenceID:   item.ID,
				Quantity:      qty,
				Unit:          "unidad",
				PreviousStock: item.Amount,
				OrderID:       &input.OrderID,
				PerformedBy:   input.UserID,
			}
			newStock, err := uc.ledger.Append(ctx, movRepo, mov)
			if err != nil {
				return err
			}
			available := newStock.GreaterThan(decimal.Zero) && item.IsActive
			if err := menuItemRepo.UpdateStock(ctx, item.ID, newStock, available); err != nil {
				return err
			}
			res.Changes = append(res.Changes, StockChange{
				ReferenceType: entity.ReferenceTypeMenuItem, ReferenceID: item.ID,
				Name: item.Name, PreviousStock: item.Amount, NewStock: newStock,
			})
		}
		for _, id := range plan.ingredientIDs {
			ing := ingredients[id]
			need := plan.ingredientNeeds[id]
			cost := ing.Cost.Mul(need)
			mov := &entity.StockMovement{
				RestaurantID:  input.RestaurantID,
				Type:          entity.MovementTypeConsumption,
				ReferenceType: entity.ReferenceTypeIngredient,
				ReferenceID:   ing.ID,
				Quantity:      need,
				Unit:          ing.Unit,
				PreviousStock: ing.CurrentStock,
				Cost:          &cost,
				OrderID:       &input.OrderID,
				PerformedBy:   input.UserID,
			}
			newStock, err := uc.ledger.Append(ctx, movRepo, mov)
			if err != nil {
				return err
			}
			if err := ingredientRepo.UpdateStock(ctx, ing.ID, newStock); err != nil {
				return err
			}
			res.Changes = append(res.Changes, StockChange{
				ReferenceType: entity.ReferenceTypeIngredient, ReferenceID: ing.ID,
				Name: ing.Name, PreviousStock: ing.CurrentStock, NewStock: newStock,
			})
			if newStock.LessThan(ing.ReorderPoint) {
				lowStock = append(lowStock, LowStockEvent{
					RestaurantID: input.RestaurantID, IngredientID: ing.ID, Name: ing.Name,
					CurrentStock: newStock, ReorderPoint: ing.ReorderPoint, ReorderQuantity: ing.ReorderQuantity,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, input.RestaurantID, entity.MovementTypeConsumption, input.OrderID, res.Changes, lowStock)
	return res, nil
}

// resolvePlan expande las líneas del pedido en deducciones de stock directo y
// necesidades agregadas de insumos. Lecturas previas a la transacción; los
// valores de stock se releen bajo bloqueo dentro de ella.
func (uc *UseCase) resolvePlan(ctx context.Context, input ConsumeInput) (*consumePlan, error) {
	plan := &consumePlan{
		menuQty:         make(map[string]decimal.Decimal),
		ingredientNeeds: make(map[string]decimal.Decimal),
	}
	for _, line := range input.Lines {
		qty := decimal.NewFromInt(int64(line.Quantity))

		item, err := uc.menuRepo.GetByID(ctx, line.MenuItemID, input.RestaurantID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		if _, seen := plan.menuQty[item.ID]; !seen {
			plan.menuIDs = append(plan.menuIDs, item.ID)
		}
		plan.menuQty[item.ID] = plan.menuQty[item.ID].Add(qty)

		// Sin receta no es error: el plato se controla manualmente.
		rec, err := uc.recipeRepo.GetByMenuItem(ctx, line.MenuItemID, input.RestaurantID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		for _, ri := range rec.Ingredients {
			if _, seen := plan.ingredientNeeds[ri.IngredientID]; !seen {
				plan.ingredientIDs = append(plan.ingredientIDs, ri.IngredientID)
			}
			plan.ingredientNeeds[ri.IngredientID] = plan.ingredientNeeds[ri.IngredientID].Add(ri.Quantity.Mul(qty))
		}
	}
	// Orden estable de bloqueo: evita deadlocks entre pedidos concurrentes.
	sort.Strings(plan.menuIDs)
	sort.Strings(plan.ingredientIDs)
	return plan, nil
}

// Reverse aplica el inverso exacto de Consume para un pedido cancelado tras su
// confirmación: cada movimiento consumption del pedido genera un return por la
// misma magnitud. Un pedido ya revertido devuelve ErrConflict.
func (uc *UseCase) Reverse(ctx context.Context, orderID, restaurantID, userID string) (*Result, error) {
	if orderID == "" || restaurantID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}
	res := &Result{OrderID: orderID}

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		menuItemRepo repository.MenuItemRepository,
	) error {
		movs, err := movRepo.ListByOrder(ctx, orderID, restaurantID)
		if err != nil {
			return err
		}
		var consumptions []*entity.StockMovement
		for _, m := range movs {
			switch m.Type {
			case entity.MovementTypeReturn:
				return domain.ErrConflict // ya revertido
			case entity.MovementTypeConsumption:
				consumptions = append(consumptions, m)
			}
		}
		if len(consumptions) == 0 {
			return domain.ErrNotFound
		}
		sort.Slice(consumptions, func(i, j int) bool {
			return consumptions[i].ReferenceID < consumptions[j].ReferenceID
		})

		for _, m := range consumptions {
			ret := &entity.StockMovement{
				RestaurantID:  restaurantID,
				Type:          entity.MovementTypeReturn,
				ReferenceType: m.ReferenceType,
				ReferenceID:   m.ReferenceID,
				Quantity:      m.Quantity,
				Unit:          m.Unit,
				Cost:          m.Cost,
				OrderID:       &orderID,
				PerformedBy:   userID,
			}
			switch m.ReferenceType {
			case entity.ReferenceTypeIngredient:
				ing, err := ingredientRepo.GetForUpdate(ctx, m.ReferenceID, restaurantID)
				if err != nil {
					return err
				}
				if ing == nil {
					return domain.ErrNotFound
				}
				ret.PreviousStock = ing.CurrentStock
				newStock, err := uc.ledger.Append(ctx, movRepo, ret)
				if err != nil {
					return err
				}
				if err := ingredientRepo.UpdateStock(ctx, ing.ID, newStock); err != nil {
					return err
				}
				res.Changes = append(res.Changes, StockChange{
					ReferenceType: m.ReferenceType, ReferenceID: ing.ID,
					Name: ing.Name, PreviousStock: ing.CurrentStock, NewStock: newStock,
				})
			case entity.ReferenceTypeMenuItem:
				item, err := menuItemRepo.GetForUpdate(ctx, m.ReferenceID, restaurantID)
				if err != nil {
					return err
				}
				if item == nil {
					return domain.ErrNotFound
				}
				ret.PreviousStock = item.Amount
				newStock, err := uc.ledger.Append(ctx, movRepo, ret)
				if err != nil {
					return err
				}
				// Restaurar stock re-habilita el plato solo si sigue activo.
				available := newStock.GreaterThan(decimal.Zero) && item.IsActive
				if err := menuItemRepo.UpdateStock(ctx, item.ID, newStock, available); err != nil {
					return err
				}
				res.Changes = append(res.Changes, StockChange{
					ReferenceType: m.ReferenceType, ReferenceID: item.ID,
					Name: item.Name, PreviousStock: item.Amount, NewStock: newStock,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, restaurantID, entity.MovementTypeReturn, orderID, res.Changes, nil)
	return res, nil
}

// RecordWaste registra una merma: nunca la bloquea la disponibilidad (el
// desperdicio ya ocurrió físicamente) pero sí la no-negatividad: desperdiciar
// más de lo que existe es un error, no un recorte.
func (uc *UseCase) RecordWaste(ctx context.Context, input WasteInput) (*Result, error) {
	if input.RestaurantID == "" || input.UserID == "" || input.ReferenceID == "" || !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	return uc.applySingle(ctx, entity.MovementTypeWaste, input.RestaurantID, input.UserID, input.ReferenceType, input.ReferenceID, input.Quantity)
}

// Adjust aplica una corrección manual con signo a un registro de stock,
// pasando por el mismo camino de ledger que todo lo demás.
func (uc *UseCase) Adjust(ctx context.Context, input AdjustInput) (*Result, error) {
	if input.RestaurantID == "" || input.UserID == "" || input.ReferenceID == "" || input.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	return uc.applySingle(ctx, entity.MovementTypeAdjustment, input.RestaurantID, input.UserID, input.ReferenceType, input.ReferenceID, input.Quantity)
}

// applySingle ejecuta un movimiento suelto (waste o adjustment) sobre una única
// referencia: bloqueo, pre-chequeo de no-negatividad, append y write-back.
func (uc *UseCase) applySingle(ctx context.Context, movType, restaurantID, userID, refType, refID string, qty decimal.Decimal) (*Result, error) {
	if refType == "" {
		refType = entity.ReferenceTypeIngredient
	}
	if refType != entity.ReferenceTypeIngredient && refType != entity.ReferenceTypeMenuItem {
		return nil, domain.ErrInvalidInput
	}
	res := &Result{}
	var lowStock []LowStockEvent

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		menuItemRepo repository.MenuItemRepository,
	) error {
		mov := &entity.StockMovement{
			RestaurantID:  restaurantID,
			Type:          movType,
			ReferenceType: refType,
			ReferenceID:   refID,
			Quantity:      qty,
			PerformedBy:   userID,
		}
		switch refType {
		case entity.ReferenceTypeIngredient:
			ing, err := ingredientRepo.GetForUpdate(ctx, refID, restaurantID)
			if err != nil {
				return err
			}
			if ing == nil {
				return domain.ErrNotFound
			}
			if short := singleShortfall(movType, ing.CurrentStock, qty); short != nil {
				short.IngredientID = ing.ID
				short.Name = ing.Name
				return &domain.InsufficientStockError{Shortfalls: []domain.Shortfall{*short}}
			}
			mov.Unit = ing.Unit
			if movType == entity.MovementTypeWaste {
				cost := ing.Cost.Mul(qty)
				mov.Cost = &cost
			}
			mov.PreviousStock = ing.CurrentStock
			newStock, err := uc.ledger.Append(ctx, movRepo, mov)
			if err != nil {
				return err
			}
			if err := ingredientRepo.UpdateStock(ctx, ing.ID, newStock); err != nil {
				return err
			}
			res.Changes = append(res.Changes, StockChange{
				ReferenceType: refType, ReferenceID: ing.ID, Name: ing.Name,
				PreviousStock: ing.CurrentStock, NewStock: newStock,
			})
			if newStock.LessThan(ing.ReorderPoint) {
				lowStock = append(lowStock, LowStockEvent{
					RestaurantID: restaurantID, IngredientID: ing.ID, Name: ing.Name,
					CurrentStock: newStock, ReorderPoint: ing.ReorderPoint, ReorderQuantity: ing.ReorderQuantity,
				})
			}
		case entity.ReferenceTypeMenuItem:
			item, err := menuItemRepo.GetForUpdate(ctx, refID, restaurantID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrNotFound
			}
			if short := singleShortfall(movType, item.Amount, qty); short != nil {
				short.IngredientID = item.ID
				short.Name = item.Name
				return &domain.InsufficientStockError{Shortfalls: []domain.Shortfall{*short}}
			}
			mov.Unit = "unidad"
			mov.PreviousStock = item.Amount
			newStock, err := uc.ledger.Append(ctx, movRepo, mov)
			if err != nil {
				return err
			}
			available := newStock.GreaterThan(decimal.Zero) && item.IsActive
			if err := menuItemRepo.UpdateStock(ctx, item.ID, newStock, available); err != nil {
				return err
			}
			res.Changes = append(res.Changes, StockChange{
				ReferenceType: refType, ReferenceID: item.ID, Name: item.Name,
				PreviousStock: item.Amount, NewStock: newStock,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, restaurantID, movType, "", res.Changes, lowStock)
	return res, nil
}

// singleShortfall pre-chequea la no-negatividad de un movimiento suelto.
func singleShortfall(movType string, current, qty decimal.Decimal) *domain.Shortfall {
	switch movType {
	case entity.MovementTypeWaste:
		if current.LessThan(qty) {
			return &domain.Shortfall{Required: qty, Available: current}
		}
	case entity.MovementTypeAdjustment:
		if current.Add(qty).IsNegative() {
			return &domain.Shortfall{Required: qty.Neg(), Available: current}
		}
	}
	return nil
}

// afterCommit invalida la caché de disponibilidad del restaurante y publica los
// eventos de stock. Best effort: un fallo aquí jamás revierte lo ya commiteado.
func (uc *UseCase) afterCommit(ctx context.Context, restaurantID, movType, orderID string, changes []StockChange, lowStock []LowStockEvent) {
	uc.cache.InvalidateRestaurant(restaurantID)
	if uc.events == nil {
		return
	}
	for _, ch := range changes {
		ev := StockChangedEvent{
			RestaurantID:  restaurantID,
			ReferenceType: ch.ReferenceType,
			ReferenceID:   ch.ReferenceID,
			MovementType:  movType,
			NewStock:      ch.NewStock,
			OrderID:       orderID,
		}
		if err := uc.events.PublishStockChanged(ctx, ev); err != nil {
			uc.log.Warn().Err(err).Str("reference_id", ch.ReferenceID).Msg("no se pudo publicar stock.changed")
		}
	}
	for _, ev := range lowStock {
		if err := uc.events.PublishLowStock(ctx, ev); err != nil {
			uc.log.Warn().Err(err).Str("ingredient_id", ev.IngredientID).Msg("no se pudo publicar stock.low")
		}
	}
}
