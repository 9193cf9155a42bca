package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, restaurant_id, order_number, supplier_id, status, subtotal, tax, shipping, total, payment_status, notes, approved_by, approved_at, received_by, received_at, created_by, created_at, updated_at`

// PurchaseOrderRepo implementación del puerto PurchaseOrderRepository sobre PostgreSQL.
// Las líneas viven en purchase_order_items; Update reemplaza el conjunto completo.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador de persistencia para órdenes de compra. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la orden y sus líneas.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + purchaseOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		po.ID, po.RestaurantID, po.OrderNumber, po.SupplierID, po.Status,
		po.Subtotal, po.Tax, po.Shipping, po.Total, po.PaymentStatus, po.Notes,
		po.ApprovedBy, po.ApprovedAt, po.ReceivedBy, po.ReceivedAt,
		po.CreatedBy, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return r.insertItems(ctx, po)
}

// Update actualiza la cabecera y reemplaza las líneas. Se llama dentro de la
// transacción de recepción, con la cabecera ya bloqueada por GetForUpdate.
func (r *PurchaseOrderRepo) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders
		SET status = $3, subtotal = $4, tax = $5, shipping = $6, total = $7, payment_status = $8,
		    notes = $9, approved_by = $10, approved_at = $11, received_by = $12, received_at = $13, updated_at = $14
		WHERE id = $1 AND restaurant_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		po.ID, po.RestaurantID, po.Status, po.Subtotal, po.Tax, po.Shipping, po.Total,
		po.PaymentStatus, po.Notes, po.ApprovedBy, po.ApprovedAt,
		po.ReceivedBy, po.ReceivedAt, po.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, po.ID); err != nil {
		return fmt.Errorf("delete purchase order items: %w", err)
	}
	return r.insertItems(ctx, po)
}

func (r *PurchaseOrderRepo) insertItems(ctx context.Context, po *entity.PurchaseOrder) error {
	for _, it := range po.Items {
		_, err := r.q.Exec(ctx,
			`INSERT INTO purchase_order_items (purchase_order_id, ingredient_id, name, unit, quantity, unit_cost, total_cost, received_quantity)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			po.ID, it.IngredientID, it.Name, it.Unit, it.Quantity, it.UnitCost, it.TotalCost, it.ReceivedQuantity,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una orden por ID con sus líneas.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE id = $1 AND restaurant_id = $2`
	return r.getOne(ctx, query, id, restaurantID)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) para serializar
// recepciones concurrentes de la misma orden.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error) {
	query := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders WHERE id = $1 AND restaurant_id = $2 FOR UPDATE`
	return r.getOne(ctx, query, id, restaurantID)
}

func (r *PurchaseOrderRepo) getOne(ctx context.Context, query string, args ...any) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&po.ID, &po.RestaurantID, &po.OrderNumber, &po.SupplierID, &po.Status,
		&po.Subtotal, &po.Tax, &po.Shipping, &po.Total, &po.PaymentStatus, &po.Notes,
		&po.ApprovedBy, &po.ApprovedAt, &po.ReceivedBy, &po.ReceivedAt,
		&po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if err := r.loadItems(ctx, &po); err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepo) loadItems(ctx context.Context, po *entity.PurchaseOrder) error {
	rows, err := r.q.Query(ctx,
		`SELECT ingredient_id, name, unit, quantity, unit_cost, total_cost, received_quantity
		 FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY ingredient_id`,
		po.ID,
	)
	if err != nil {
		return fmt.Errorf("load purchase order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseOrderItem
		err := rows.Scan(&it.IngredientID, &it.Name, &it.Unit, &it.Quantity, &it.UnitCost, &it.TotalCost, &it.ReceivedQuantity)
		if err != nil {
			return fmt.Errorf("scan purchase order item: %w", err)
		}
		po.Items = append(po.Items, it)
	}
	return rows.Err()
}

// List lista órdenes del restaurante, filtradas opcionalmente por estado,
// más recientes primero.
func (r *PurchaseOrderRepo) List(ctx context.Context, restaurantID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT ` + purchaseOrderColumns + `
		FROM purchase_orders
		WHERE restaurant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, restaurantID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var out []*entity.PurchaseOrder
	for rows.Next() {
		var po entity.PurchaseOrder
		err := rows.Scan(
			&po.ID, &po.RestaurantID, &po.OrderNumber, &po.SupplierID, &po.Status,
			&po.Subtotal, &po.Tax, &po.Shipping, &po.Total, &po.PaymentStatus, &po.Notes,
			&po.ApprovedBy, &po.ApprovedAt, &po.ReceivedBy, &po.ReceivedAt,
			&po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order row: %w", err)
		}
		out = append(out, &po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, po := range out {
		if err := r.loadItems(ctx, po); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NextOrderNumber asigna el siguiente consecutivo PO-<año>-<n> del restaurante.
// El upsert sobre po_sequences serializa la asignación entre transacciones.
func (r *PurchaseOrderRepo) NextOrderNumber(ctx context.Context, restaurantID string, year int) (string, error) {
	var seq int
	err := r.q.QueryRow(ctx, `
		INSERT INTO po_sequences (restaurant_id, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (restaurant_id, year)
		DO UPDATE SET last_number = po_sequences.last_number + 1
		RETURNING last_number`,
		restaurantID, year,
	).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("PO-%d-%04d", year, seq), nil
}
