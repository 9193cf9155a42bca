package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// WasteReportRow agrega la merma de una referencia en un rango de fechas.
type WasteReportRow struct {
	ReferenceID   string
	ReferenceType string
	Name          string
	Unit          string
	TotalQuantity decimal.Decimal
	TotalCost     decimal.Decimal
	Entries       int
}

// StockMovementRepository define el puerto de persistencia del ledger.
// Las entradas son inmutables: solo Create y lecturas, nunca update ni delete.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByReference(ctx context.Context, referenceID, referenceType string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// ListAllByReference devuelve el historial completo ordenado por fecha,
	// para plegar el ledger en la reconciliación.
	ListAllByReference(ctx context.Context, referenceID, referenceType string) ([]*entity.StockMovement, error)
	ListByOrder(ctx context.Context, orderID, restaurantID string) ([]*entity.StockMovement, error)
	WasteReport(ctx context.Context, restaurantID string, from, to *time.Time) ([]WasteReportRow, error)
}
