package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, restaurant_id, type, reference_type, reference_id, quantity, unit, previous_stock, new_stock, cost, order_id, purchase_order_id, supplier_id, performed_by, created_at`

// StockMovementRepo implementación del puerto StockMovementRepository sobre PostgreSQL.
// La tabla stock_movements es solo-inserción: no hay UPDATE ni DELETE de entradas.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta una entrada del ledger.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.RestaurantID, m.Type, m.ReferenceType, m.ReferenceID,
		m.Quantity, m.Unit, m.PreviousStock, m.NewStock, m.Cost,
		m.OrderID, m.PurchaseOrderID, m.SupplierID, m.PerformedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByReference lista movimientos de una referencia, filtrados opcionalmente
// por rango de fechas, más recientes primero.
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceID, referenceType string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE reference_id = $1 AND reference_type = $2
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at <= $4)
		ORDER BY created_at DESC LIMIT $5 OFFSET $6`
	rows, err := r.q.Query(ctx, query, referenceID, referenceType, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// ListAllByReference devuelve el historial completo en orden cronológico
// ascendente, para plegar el ledger en la reconciliación.
func (r *StockMovementRepo) ListAllByReference(ctx context.Context, referenceID, referenceType string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE reference_id = $1 AND reference_type = $2
		ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, referenceID, referenceType)
	if err != nil {
		return nil, fmt.Errorf("list all stock movements: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// ListByOrder devuelve los movimientos generados por un pedido (consumos y
// reversos), en orden cronológico. Lo usa el camino de cancelación.
func (r *StockMovementRepo) ListByOrder(ctx context.Context, orderID, restaurantID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE order_id = $1 AND restaurant_id = $2
		ORDER BY created_at ASC`
	rows, err := r.q.Query(ctx, query, orderID, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements by order: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// WasteReport agrega los movimientos de merma por referencia en el rango dado.
// El nombre y la unidad se resuelven contra ingredients o menu_items según el
// tipo de referencia; el costo total usa el costo registrado en el movimiento.
func (r *StockMovementRepo) WasteReport(ctx context.Context, restaurantID string, from, to *time.Time) ([]repository.WasteReportRow, error) {
	query := `
		SELECT sm.reference_id, sm.reference_type,
		       COALESCE(i.name, mi.name, '') AS name,
		       COALESCE(i.unit, sm.unit) AS unit,
		       SUM(sm.quantity) AS total_quantity,
		       SUM(COALESCE(sm.cost, 0)) AS total_cost,
		       COUNT(*) AS entries
		FROM stock_movements sm
		LEFT JOIN ingredients i ON sm.reference_type = 'ingredient' AND i.id = sm.reference_id
		LEFT JOIN menu_items mi ON sm.reference_type = 'menu_item' AND mi.id = sm.reference_id
		WHERE sm.restaurant_id = $1 AND sm.type = 'waste'
		  AND ($2::timestamptz IS NULL OR sm.created_at >= $2)
		  AND ($3::timestamptz IS NULL OR sm.created_at <= $3)
		GROUP BY sm.reference_id, sm.reference_type, COALESCE(i.name, mi.name, ''), COALESCE(i.unit, sm.unit)
		ORDER BY total_cost DESC`
	rows, err := r.q.Query(ctx, query, restaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("waste report: %w", err)
	}
	defer rows.Close()

	var out []repository.WasteReportRow
	for rows.Next() {
		var w repository.WasteReportRow
		err := rows.Scan(&w.ReferenceID, &w.ReferenceType, &w.Name, &w.Unit, &w.TotalQuantity, &w.TotalCost, &w.Entries)
		if err != nil {
			return nil, fmt.Errorf("scan waste row: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *StockMovementRepo) scanRows(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		err := rows.Scan(
			&m.ID, &m.RestaurantID, &m.Type, &m.ReferenceType, &m.ReferenceID,
			&m.Quantity, &m.Unit, &m.PreviousStock, &m.NewStock, &m.Cost,
			&m.OrderID, &m.PurchaseOrderID, &m.SupplierID, &m.PerformedBy, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement row: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
