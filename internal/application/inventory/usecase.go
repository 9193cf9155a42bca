package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
	appledger "github.com/jhoicas/Restaurante-api/internal/application/ledger"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

// UseCase administra el catálogo de insumos. El stock inicial de un insumo
// nuevo entra por el ledger (movimiento adjustment desde cero) para que el
// plegado del historial siempre coincida con el stock almacenado.
type UseCase struct {
	txRunner       fulfillment.TxRunner
	ingredientRepo repository.IngredientRepository
	ledger         *appledger.Service
}

// NewUseCase construye el caso de uso de insumos.
func NewUseCase(txRunner fulfillment.TxRunner, ingredientRepo repository.IngredientRepository, ledgerSvc *appledger.Service) *UseCase {
	return &UseCase{txRunner: txRunner, ingredientRepo: ingredientRepo, ledger: ledgerSvc}
}

// CreateIngredientInput entrada para CreateIngredient.
type CreateIngredientInput struct {
	RestaurantID    string
	UserID          string
	Name            string
	Unit            string
	OpeningStock    decimal.Decimal
	MinStockLevel   decimal.Decimal
	ReorderPoint    decimal.Decimal
	ReorderQuantity decimal.Decimal
	Cost            decimal.Decimal
	Category        string
	ExpiryDate      *time.Time
	IsPerishable    bool
}

// CreateIngredient da de alta un insumo; si trae stock inicial, la apertura se
// registra como primera entrada del ledger en la misma transacción.
func (uc *UseCase) CreateIngredient(ctx context.Context, input CreateIngredientInput) (*entity.Ingredient, error) {
	if input.RestaurantID == "" || input.UserID == "" || input.Name == "" || input.Unit == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.OpeningStock.IsNegative() || input.Cost.IsNegative() ||
		input.MinStockLevel.IsNegative() || input.ReorderPoint.IsNegative() || input.ReorderQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	ing := &entity.Ingredient{
		ID:              uuid.New().String(),
		RestaurantID:    input.RestaurantID,
		Name:            input.Name,
		Unit:            input.Unit,
		CurrentStock:    decimal.Zero,
		MinStockLevel:   input.MinStockLevel,
		ReorderPoint:    input.ReorderPoint,
		ReorderQuantity: input.ReorderQuantity,
		Cost:            input.Cost,
		Category:        input.Category,
		ExpiryDate:      input.ExpiryDate,
		IsPerishable:    input.IsPerishable,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		_ repository.MenuItemRepository,
	) error {
		if err := ingredientRepo.Create(ctx, ing); err != nil {
			return err
		}
		if !input.OpeningStock.GreaterThan(decimal.Zero) {
			return nil
		}
		cost := input.Cost.Mul(input.OpeningStock)
		mov := &entity.StockMovement{
			RestaurantID:  input.RestaurantID,
			Type:          entity.MovementTypeAdjustment,
			ReferenceType: entity.ReferenceTypeIngredient,
			ReferenceID:   ing.ID,
			Quantity:      input.OpeningStock,
			Unit:          ing.Unit,
			PreviousStock: decimal.Zero,
			Cost:          &cost,
			PerformedBy:   input.UserID,
		}
		newStock, err := uc.ledger.Append(ctx, movRepo, mov)
		if err != nil {
			return err
		}
		if err := ingredientRepo.UpdateStock(ctx, ing.ID, newStock); err != nil {
			return err
		}
		ing.CurrentStock = newStock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ing, nil
}

// UpdateIngredientInput entrada para UpdateIngredient. No toca el stock:
// las correcciones de cantidad van por fulfillment.Adjust (camino del ledger).
type UpdateIngredientInput struct {
	ID              string
	RestaurantID    string
	Name            string
	Unit            string
	MinStockLevel   decimal.Decimal
	ReorderPoint    decimal.Decimal
	ReorderQuantity decimal.Decimal
	Cost            decimal.Decimal
	Category        string
	ExpiryDate      *time.Time
	IsPerishable    bool
}

// UpdateIngredient edita los metadatos del insumo.
func (uc *UseCase) UpdateIngredient(ctx context.Context, input UpdateIngredientInput) (*entity.Ingredient, error) {
	if input.ID == "" || input.RestaurantID == "" || input.Name == "" || input.Unit == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Cost.IsNegative() || input.MinStockLevel.IsNegative() || input.ReorderPoint.IsNegative() || input.ReorderQuantity.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	ing, err := uc.ingredientRepo.GetByID(ctx, input.ID, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, domain.ErrNotFound
	}
	ing.Name = input.Name
	ing.Unit = input.Unit
	ing.MinStockLevel = input.MinStockLevel
	ing.ReorderPoint = input.ReorderPoint
	ing.ReorderQuantity = input.ReorderQuantity
	ing.Cost = input.Cost
	ing.Category = input.Category
	ing.ExpiryDate = input.ExpiryDate
	ing.IsPerishable = input.IsPerishable
	ing.UpdatedAt = time.Now()
	if err := uc.ingredientRepo.Update(ctx, ing); err != nil {
		return nil, err
	}
	return ing, nil
}

// Get devuelve un insumo del restaurante.
func (uc *UseCase) Get(ctx context.Context, id, restaurantID string) (*entity.Ingredient, error) {
	ing, err := uc.ingredientRepo.GetByID(ctx, id, restaurantID)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, domain.ErrNotFound
	}
	return ing, nil
}

// List lista los insumos del restaurante.
func (uc *UseCase) List(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Ingredient, error) {
	return uc.ingredientRepo.ListByRestaurant(ctx, restaurantID, limit, offset)
}

// Deactivate marca el insumo como inactivo (soft delete).
func (uc *UseCase) Deactivate(ctx context.Context, id, restaurantID string) error {
	ing, err := uc.ingredientRepo.GetByID(ctx, id, restaurantID)
	if err != nil {
		return err
	}
	if ing == nil {
		return domain.ErrNotFound
	}
	return uc.ingredientRepo.Deactivate(ctx, id, restaurantID)
}

// ReplenishmentSuggestion sugerencia de reposición para un insumo bajo reorden.
type ReplenishmentSuggestion struct {
	IngredientID      string          `json:"ingredient_id"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	Priority          int             `json:"priority"` // 1 = más urgente
}

// ReplenishmentList devuelve los insumos bajo su punto de reorden con la
// cantidad sugerida de pedido, ordenados por déficit absoluto.
func (uc *UseCase) ReplenishmentList(ctx context.Context, restaurantID string) ([]ReplenishmentSuggestion, error) {
	items, err := uc.ingredientRepo.ListBelowReorderPoint(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	suggestions := make([]ReplenishmentSuggestion, 0, len(items))
	for _, ing := range items {
		qty := ing.ReorderQuantity
		if !qty.GreaterThan(decimal.Zero) {
			// Sin cantidad configurada: reponer hasta 1.5x el punto de reorden.
			qty = ing.ReorderPoint.Mul(decimal.NewFromFloat(1.5)).Sub(ing.CurrentStock)
		}
		if !qty.GreaterThan(decimal.Zero) {
			continue
		}
		suggestions = append(suggestions, ReplenishmentSuggestion{
			IngredientID:      ing.ID,
			Name:              ing.Name,
			Unit:              ing.Unit,
			CurrentStock:      ing.CurrentStock,
			ReorderPoint:      ing.ReorderPoint,
			SuggestedOrderQty: qty,
			EstimatedCost:     qty.Mul(ing.Cost),
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		defI := suggestions[i].ReorderPoint.Sub(suggestions[i].CurrentStock)
		defJ := suggestions[j].ReorderPoint.Sub(suggestions[j].CurrentStock)
		return defI.GreaterThan(defJ)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
