package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

var _ repository.MenuItemRepository = (*MenuItemRepo)(nil)

const menuItemColumns = `id, restaurant_id, name, description, category, price, amount, min_stock_level, max_stock_level, track_inventory, available, is_active, created_at, updated_at`

// MenuItemRepo implementación del puerto MenuItemRepository sobre PostgreSQL.
// El CRUD completo de la carta vive en otro servicio; aquí solo leemos y
// escribimos los campos de stock.
type MenuItemRepo struct {
	q Querier
}

// NewMenuItemRepository construye el adaptador de lectura/stock de platos. Pasar pool o tx (Querier).
func NewMenuItemRepository(q Querier) *MenuItemRepo {
	return &MenuItemRepo{q: q}
}

func (r *MenuItemRepo) scanOne(row pgx.Row) (*entity.MenuItem, error) {
	var m entity.MenuItem
	err := row.Scan(
		&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Category,
		&m.Price, &m.Amount, &m.MinStockLevel, &m.MaxStockLevel,
		&m.TrackInventory, &m.Available, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan menu item: %w", err)
	}
	return &m, nil
}

// GetByID obtiene un plato por ID dentro del restaurante.
func (r *MenuItemRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1 AND restaurant_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, id, restaurantID))
}

// GetForUpdate obtiene el plato bloqueando la fila (SELECT FOR UPDATE).
func (r *MenuItemRepo) GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1 AND restaurant_id = $2 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id, restaurantID))
}

// UpdateStock escribe amount y available en la misma transacción del ledger.
func (r *MenuItemRepo) UpdateStock(ctx context.Context, id string, amount decimal.Decimal, available bool) error {
	_, err := r.q.Exec(ctx,
		`UPDATE menu_items SET amount = $2, available = $3, updated_at = now() WHERE id = $1`,
		id, amount, available,
	)
	if err != nil {
		return fmt.Errorf("update menu item stock: %w", err)
	}
	return nil
}

// ListActive lista los platos activos del restaurante con paginación.
func (r *MenuItemRepo) ListActive(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items WHERE restaurant_id = $1 AND is_active = true
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, restaurantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var out []*entity.MenuItem
	for rows.Next() {
		var m entity.MenuItem
		err := rows.Scan(
			&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Category,
			&m.Price, &m.Amount, &m.MinStockLevel, &m.MaxStockLevel,
			&m.TrackInventory, &m.Available, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan menu item row: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
