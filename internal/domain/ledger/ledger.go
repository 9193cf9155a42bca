// Package ledger contiene la lógica pura del libro de movimientos de stock:
// el delta firmado que implica cada tipo de movimiento, el plegado de entradas
// para reconciliación y la validación de snapshots. Sin dependencias de
// infraestructura; todo lo demás del motor se apoya aquí.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// SignedDelta devuelve el cambio de stock que implica un movimiento según su tipo.
// consumption y waste restan la magnitud; purchase y return la suman;
// adjustment y transfer llevan el signo en la propia cantidad.
func SignedDelta(movType string, quantity decimal.Decimal) (decimal.Decimal, error) {
	switch movType {
	case entity.MovementTypePurchase, entity.MovementTypeReturn:
		return quantity.Abs(), nil
	case entity.MovementTypeConsumption, entity.MovementTypeWaste:
		return quantity.Abs().Neg(), nil
	case entity.MovementTypeAdjustment, entity.MovementTypeTransfer:
		return quantity, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, movType)
	}
}

// Fold pliega todas las entradas del ledger de una referencia a su cantidad
// acumulada. Por el invariante de reconciliación, el resultado debe coincidir
// con el CurrentStock almacenado de la entidad referenciada.
func Fold(entries []*entity.StockMovement) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range entries {
		delta, err := SignedDelta(e.Type, e.Quantity)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(delta)
	}
	return total, nil
}

// Validate verifica la coherencia interna de una entrada antes de persistirla:
// NewStock - PreviousStock debe ser exactamente el delta firmado del tipo, y
// NewStock no puede ser negativo.
func Validate(m *entity.StockMovement) error {
	delta, err := SignedDelta(m.Type, m.Quantity)
	if err != nil {
		return err
	}
	if !m.NewStock.Sub(m.PreviousStock).Equal(delta) {
		return &domain.InvariantViolationError{
			ReferenceID: m.ReferenceID,
			Detail: fmt.Sprintf("delta del movimiento %s no coincide con snapshots (prev=%s new=%s delta=%s)",
				m.Type, m.PreviousStock, m.NewStock, delta),
		}
	}
	if m.NewStock.IsNegative() {
		return &domain.InvariantViolationError{
			ReferenceID: m.ReferenceID,
			Detail:      fmt.Sprintf("el movimiento dejaría stock negativo (new=%s)", m.NewStock),
		}
	}
	return nil
}
