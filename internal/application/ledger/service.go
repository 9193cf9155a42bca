package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/ledger"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
	"github.com/jhoicas/Restaurante-api/pkg/logger"
)

// Service es el punto único de escritura del ledger y expone las consultas de
// reporte y la reconciliación. Append se usa siempre dentro de la transacción
// del caller (recibe el repo atado a esa tx); las lecturas usan los repos del
// pool inyectados al construir.
type Service struct {
	movRepo        repository.StockMovementRepository
	ingredientRepo repository.IngredientRepository
	menuItemRepo   repository.MenuItemRepository
	log            *logger.Logger
}

// NewService construye el servicio de ledger.
func NewService(
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	menuItemRepo repository.MenuItemRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		movRepo:        movRepo,
		ingredientRepo: ingredientRepo,
		menuItemRepo:   menuItemRepo,
		log:            log,
	}
}

// Append calcula NewStock = PreviousStock + delta firmado, valida el invariante
// de no-negatividad, persiste la entrada y devuelve el stock resultante para que
// el caller lo escriba en Ingredient/MenuItem dentro de la misma unidad de trabajo.
// Una violación aquí es señal de bug o carrera: se loggea fuerte y se aborta.
func (s *Service) Append(ctx context.Context, movRepo repository.StockMovementRepository, m *entity.StockMovement) (decimal.Decimal, error) {
	delta, err := ledger.SignedDelta(m.Type, m.Quantity)
	if err != nil {
		return decimal.Zero, err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.NewStock = m.PreviousStock.Add(delta)

	if err := ledger.Validate(m); err != nil {
		s.log.Error().
			Str("reference_id", m.ReferenceID).
			Str("reference_type", m.ReferenceType).
			Str("movement_type", m.Type).
			Str("previous_stock", m.PreviousStock.String()).
			Str("quantity", m.Quantity.String()).
			Err(err).
			Msg("invariante de ledger violado, operación abortada")
		return decimal.Zero, err
	}
	if err := movRepo.Create(ctx, m); err != nil {
		return decimal.Zero, err
	}
	return m.NewStock, nil
}

// QueryByReference lista el historial de movimientos de una referencia en un
// rango de fechas, paginado. Solo lectura; se usa para reportes.
func (s *Service) QueryByReference(ctx context.Context, referenceID, referenceType string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if referenceType != entity.ReferenceTypeIngredient && referenceType != entity.ReferenceTypeMenuItem {
		return nil, domain.ErrInvalidInput
	}
	return s.movRepo.ListByReference(ctx, referenceID, referenceType, from, to, limit, offset)
}

// WasteReport agrega la merma del restaurante por referencia en un rango de fechas.
func (s *Service) WasteReport(ctx context.Context, restaurantID string, from, to *time.Time) ([]repository.WasteReportRow, error) {
	return s.movRepo.WasteReport(ctx, restaurantID, from, to)
}

// ReconcileResult compara el ledger plegado contra el stock almacenado.
type ReconcileResult struct {
	ReferenceID   string
	ReferenceType string
	LedgerTotal   decimal.Decimal
	StoredStock   decimal.Decimal
	Consistent    bool
}

// Reconcile pliega todas las entradas del ledger de una referencia y las compara
// con el CurrentStock/Amount almacenado. Es la herramienta de auditoría del
// invariante central: ambos valores deben coincidir siempre.
func (s *Service) Reconcile(ctx context.Context, referenceID, referenceType, restaurantID string) (*ReconcileResult, error) {
	var stored decimal.Decimal
	switch referenceType {
	case entity.ReferenceTypeIngredient:
		ing, err := s.ingredientRepo.GetByID(ctx, referenceID, restaurantID)
		if err != nil {
			return nil, err
		}
		if ing == nil {
			return nil, domain.ErrNotFound
		}
		stored = ing.CurrentStock
	case entity.ReferenceTypeMenuItem:
		item, err := s.menuItemRepo.GetByID(ctx, referenceID, restaurantID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		stored = item.Amount
	default:
		return nil, domain.ErrInvalidInput
	}

	entries, err := s.movRepo.ListAllByReference(ctx, referenceID, referenceType)
	if err != nil {
		return nil, err
	}
	total, err := ledger.Fold(entries)
	if err != nil {
		return nil, err
	}
	res := &ReconcileResult{
		ReferenceID:   referenceID,
		ReferenceType: referenceType,
		LedgerTotal:   total,
		StoredStock:   stored,
		Consistent:    total.Equal(stored),
	}
	if !res.Consistent {
		s.log.Error().
			Str("reference_id", referenceID).
			Str("ledger_total", total.String()).
			Str("stored_stock", stored.String()).
			Msg("reconciliación de ledger inconsistente")
	}
	return res, nil
}
