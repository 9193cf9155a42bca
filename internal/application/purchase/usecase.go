package purchase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
	appledger "github.com/jhoicas/Restaurante-api/internal/application/ledger"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/purchase"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
	"github.com/jhoicas/Restaurante-api/pkg/logger"
)

// UseCase gobierna el ciclo de vida de las órdenes de compra
// (draft → pending → approved → ordered → partial/received; cancelled desde
// cualquier no terminal) y acredita stock vía ledger al recibir mercadería.
type UseCase struct {
	txRunner     TxRunner
	poRepo       repository.PurchaseOrderRepository
	supplierRepo repository.SupplierRepository
	ingRepo      repository.IngredientRepository
	ledger       *appledger.Service
	cache        fulfillment.AvailabilityInvalidator
	events       fulfillment.StockEventPublisher // puede ser nil
	pdf          PDFGenerator
	log          *logger.Logger
}

// NewUseCase construye el caso de uso de órdenes de compra.
func NewUseCase(
	txRunner TxRunner,
	poRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	ingRepo repository.IngredientRepository,
	ledgerSvc *appledger.Service,
	cache fulfillment.AvailabilityInvalidator,
	events fulfillment.StockEventPublisher,
	pdf PDFGenerator,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		poRepo:       poRepo,
		supplierRepo: supplierRepo,
		ingRepo:      ingRepo,
		ledger:       ledgerSvc,
		cache:        cache,
		events:       events,
		pdf:          pdf,
		log:          log,
	}
}

// ItemInput línea de una orden de compra nueva.
type ItemInput struct {
	IngredientID string
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
}

// CreateInput entrada para Create.
type CreateInput struct {
	RestaurantID string
	UserID       string
	SupplierID   string
	Items        []ItemInput
	Tax          decimal.Decimal
	Shipping     decimal.Decimal
	Notes        string
}

// Create registra una orden en draft. Valida proveedor e insumos y desnormaliza
// nombre y unidad de cada insumo para conservar el histórico.
func (uc *UseCase) Create(ctx context.Context, input CreateInput) (*entity.PurchaseOrder, error) {
	if input.RestaurantID == "" || input.UserID == "" || input.SupplierID == "" || len(input.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.Tax.IsNegative() || input.Shipping.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, input.SupplierID, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if supplier == nil || !supplier.IsActive {
		return nil, domain.ErrNotFound
	}

	items := make([]entity.PurchaseOrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		if !it.Quantity.GreaterThan(decimal.Zero) || it.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		ing, err := uc.ingRepo.GetByID(ctx, it.IngredientID, input.RestaurantID)
		if err != nil {
			return nil, err
		}
		if ing == nil {
			return nil, domain.ErrNotFound
		}
		items = append(items, entity.PurchaseOrderItem{
			IngredientID: ing.ID,
			Name:         ing.Name, // desnormalizado a propósito
			Unit:         ing.Unit,
			Quantity:     it.Quantity,
			UnitCost:     it.UnitCost,
		})
	}

	now := time.Now()
	number, err := uc.poRepo.NextOrderNumber(ctx, input.RestaurantID, now.Year())
	if err != nil {
		return nil, err
	}
	po := &entity.PurchaseOrder{
		ID:            uuid.New().String(),
		RestaurantID:  input.RestaurantID,
		OrderNumber:   number,
		SupplierID:    input.SupplierID,
		Items:         items,
		Status:        entity.POStatusDraft,
		Tax:           input.Tax,
		Shipping:      input.Shipping,
		PaymentStatus: entity.POPaymentPending,
		Notes:         input.Notes,
		CreatedBy:     input.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	purchase.CalculateTotals(po)
	if err := uc.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// Submit pasa la orden de draft a pending.
func (uc *UseCase) Submit(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, id, restaurantID, entity.POStatusPending, nil)
}

// Approve aprueba una orden pending y estampa quién y cuándo. Sin efecto en stock.
func (uc *UseCase) Approve(ctx context.Context, id, restaurantID, userID string) (*entity.PurchaseOrder, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, id, restaurantID, entity.POStatusApproved, func(po *entity.PurchaseOrder) {
		now := time.Now()
		po.ApprovedBy = &userID
		po.ApprovedAt = &now
	})
}

// MarkAsOrdered marca la orden aprobada como enviada al proveedor.
func (uc *UseCase) MarkAsOrdered(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, id, restaurantID, entity.POStatusOrdered, nil)
}

// Cancel cancela una orden no terminal. No revierte stock: una orden no
// recibida nunca lo afectó.
func (uc *UseCase) Cancel(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, id, restaurantID, entity.POStatusCancelled, nil)
}

// transition ejecuta el cambio de estado bajo el mismo candado de fila que la
// recepción: sin él, un Cancel concurrente a un MarkAsReceived podría pisar
// cantidades recién acreditadas o cancelar una orden ya recibida.
func (uc *UseCase) transition(ctx context.Context, id, restaurantID, to string, stamp func(*entity.PurchaseOrder)) (*entity.PurchaseOrder, error) {
	var result *entity.PurchaseOrder
	err := uc.txRunner.RunPurchase(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.IngredientRepository,
		poRepo repository.PurchaseOrderRepository,
	) error {
		po, err := poRepo.GetForUpdate(ctx, id, restaurantID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if err := purchase.Transition(po, to); err != nil {
			return err
		}
		if stamp != nil {
			stamp(po)
		}
		po.UpdatedAt = time.Now()
		purchase.CalculateTotals(po)
		if err := poRepo.Update(ctx, po); err != nil {
			return err
		}
		result = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReceiveInput entrada para MarkAsReceived. ReceivedQuantities mapea insumo →
// cantidad TOTAL acumulada recibida; las líneas ausentes se asumen completas.
type ReceiveInput struct {
	ID                 string
	RestaurantID       string
	UserID             string
	ReceivedQuantities map[string]decimal.Decimal
}

// MarkAsReceived acredita mercadería recibida. Re-entrante y sin doble conteo:
// cada línea acumula ReceivedQuantity y solo se acredita el delta contra la
// última recepción; un mapa que reduzca lo ya registrado se rechaza. Si todas
// las líneas quedan completas la orden pasa a received, si no a partial.
func (uc *UseCase) MarkAsReceived(ctx context.Context, input ReceiveInput) (*entity.PurchaseOrder, error) {
	if input.ID == "" || input.RestaurantID == "" || input.UserID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.PurchaseOrder
	var changes []fulfillment.StockChangedEvent

	err := uc.txRunner.RunPurchase(ctx, func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		poRepo repository.PurchaseOrderRepository,
	) error {
		po, err := poRepo.GetForUpdate(ctx, input.ID, input.RestaurantID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if !purchase.CanReceive(po.Status) {
			return &domain.InvalidTransitionError{From: po.Status, To: entity.POStatusReceived}
		}

		// Validar el mapa completo antes de mutar nada.
		byIngredient := make(map[string]*entity.PurchaseOrderItem, len(po.Items))
		for i := range po.Items {
			byIngredient[po.Items[i].IngredientID] = &po.Items[i]
		}
		for ingID, target := range input.ReceivedQuantities {
			line, ok := byIngredient[ingID]
			if !ok {
				return domain.ErrInvalidInput // insumo ajeno a la orden
			}
			if target.IsNegative() || target.GreaterThan(line.Quantity) {
				return domain.ErrInvalidInput // receivedQuantity <= quantity siempre
			}
			if target.LessThan(line.ReceivedQuantity) {
				return domain.ErrInvalidInput // reducir lo ya recibido se rechaza
			}
		}

		for i := range po.Items {
			line := &po.Items[i]
			target := line.Quantity // por defecto: línea completa
			if t, ok := input.ReceivedQuantities[line.IngredientID]; ok {
				target = t
			}
			delta := target.Sub(line.ReceivedQuantity)
			if !delta.GreaterThan(decimal.Zero) {
				continue // nada nuevo que acreditar en esta línea
			}
			ing, err := ingredientRepo.GetForUpdate(ctx, line.IngredientID, input.RestaurantID)
			if err != nil {
				return err
			}
			if ing == nil {
				return domain.ErrNotFound
			}
			cost := line.UnitCost.Mul(delta)
			mov := &entity.StockMovement{
				RestaurantID:    input.RestaurantID,
				Type:            entity.MovementTypePurchase,
				ReferenceType:   entity.ReferenceTypeIngredient,
				ReferenceID:     ing.ID,
				Quantity:        delta,
				Unit:            line.Unit,
				PreviousStock:   ing.CurrentStock,
				Cost:            &cost,
				PurchaseOrderID: &po.ID,
				SupplierID:      &po.SupplierID,
				PerformedBy:     input.UserID,
			}
			newStock, err := uc.ledger.Append(ctx, movRepo, mov)
			if err != nil {
				return err
			}
			if err := ingredientRepo.UpdateStock(ctx, ing.ID, newStock); err != nil {
				return err
			}
			// Costo promedio ponderado con la entrada recibida.
			newCost := purchase.WeightedAverageCost(ing.CurrentStock, ing.Cost, delta, line.UnitCost)
			if err := ingredientRepo.UpdateCost(ctx, ing.ID, newCost); err != nil {
				return err
			}
			line.ReceivedQuantity = target
			changes = append(changes, fulfillment.StockChangedEvent{
				RestaurantID:  input.RestaurantID,
				ReferenceType: entity.ReferenceTypeIngredient,
				ReferenceID:   ing.ID,
				MovementType:  entity.MovementTypePurchase,
				NewStock:      newStock,
			})
		}

		if len(changes) == 0 && po.Status != entity.POStatusPartial {
			// Recepción sin delta sobre una orden aún no parcial: no-op.
			result = po
			return nil
		}
		to := entity.POStatusPartial
		if purchase.FullyReceived(po) {
			to = entity.POStatusReceived
		}
		if err := purchase.Transition(po, to); err != nil {
			return err
		}
		now := time.Now()
		po.ReceivedBy = &input.UserID
		po.ReceivedAt = &now
		po.UpdatedAt = now
		purchase.CalculateTotals(po)
		if err := poRepo.Update(ctx, po); err != nil {
			return err
		}
		result = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		uc.cache.InvalidateRestaurant(input.RestaurantID)
	}
	if uc.events != nil {
		for _, ev := range changes {
			if err := uc.events.PublishStockChanged(ctx, ev); err != nil {
				uc.log.Warn().Err(err).Str("reference_id", ev.ReferenceID).Msg("no se pudo publicar stock.changed")
			}
		}
	}
	return result, nil
}

// Get devuelve una orden del restaurante.
func (uc *UseCase) Get(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error) {
	po, err := uc.poRepo.GetByID(ctx, id, restaurantID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

// List lista las órdenes del restaurante, opcionalmente filtradas por estado.
func (uc *UseCase) List(ctx context.Context, restaurantID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	return uc.poRepo.List(ctx, restaurantID, status, limit, offset)
}

// GeneratePDF genera el PDF de la orden para enviar al proveedor.
func (uc *UseCase) GeneratePDF(ctx context.Context, id, restaurantID string) ([]byte, error) {
	po, err := uc.Get(ctx, id, restaurantID)
	if err != nil {
		return nil, err
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, po.SupplierID, restaurantID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	return uc.pdf.GeneratePurchaseOrderPDF(ctx, po, supplier)
}
