package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

const ingredientColumns = `id, restaurant_id, name, unit, current_stock, min_stock_level, reorder_point, reorder_quantity, cost, category, expiry_date, is_perishable, is_active, created_at, updated_at`

// IngredientRepo implementación del puerto IngredientRepository sobre PostgreSQL (usable con pool o tx).
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador de persistencia para insumos. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

// Create persiste un nuevo insumo.
func (r *IngredientRepo) Create(ctx context.Context, ing *entity.Ingredient) error {
	query := `
		INSERT INTO ingredients (` + ingredientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		ing.ID, ing.RestaurantID, ing.Name, ing.Unit, ing.CurrentStock,
		ing.MinStockLevel, ing.ReorderPoint, ing.ReorderQuantity, ing.Cost,
		ing.Category, ing.ExpiryDate, ing.IsPerishable, ing.IsActive,
		ing.CreatedAt, ing.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ingredient: %w", err)
	}
	return nil
}

func (r *IngredientRepo) scanOne(row pgx.Row) (*entity.Ingredient, error) {
	var i entity.Ingredient
	err := row.Scan(
		&i.ID, &i.RestaurantID, &i.Name, &i.Unit, &i.CurrentStock,
		&i.MinStockLevel, &i.ReorderPoint, &i.ReorderQuantity, &i.Cost,
		&i.Category, &i.ExpiryDate, &i.IsPerishable, &i.IsActive,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ingredient: %w", err)
	}
	return &i, nil
}

// GetByID obtiene un insumo por ID dentro del restaurante.
func (r *IngredientRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = $1 AND restaurant_id = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, id, restaurantID))
}

// GetForUpdate obtiene el insumo bloqueando la fila (SELECT FOR UPDATE).
// Solo tiene sentido dentro de una transacción.
func (r *IngredientRepo) GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = $1 AND restaurant_id = $2 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id, restaurantID))
}

// Update actualiza metadatos del insumo. No toca current_stock ni cost:
// esos campos solo se escriben vía UpdateStock/UpdateCost junto al ledger.
func (r *IngredientRepo) Update(ctx context.Context, ing *entity.Ingredient) error {
	query := `
		UPDATE ingredients
		SET name = $3, unit = $4, min_stock_level = $5, reorder_point = $6, reorder_quantity = $7,
		    category = $8, expiry_date = $9, is_perishable = $10, is_active = $11, updated_at = $12
		WHERE id = $1 AND restaurant_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		ing.ID, ing.RestaurantID, ing.Name, ing.Unit, ing.MinStockLevel,
		ing.ReorderPoint, ing.ReorderQuantity, ing.Category, ing.ExpiryDate,
		ing.IsPerishable, ing.IsActive, ing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock escribe el stock plegado del ledger. Se llama siempre en la misma
// transacción que inserta el movimiento correspondiente.
func (r *IngredientRepo) UpdateStock(ctx context.Context, id string, newStock decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE ingredients SET current_stock = $2, updated_at = now() WHERE id = $1`,
		id, newStock,
	)
	if err != nil {
		return fmt.Errorf("update ingredient stock: %w", err)
	}
	return nil
}

// UpdateCost escribe el costo promedio ponderado tras una recepción.
func (r *IngredientRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE ingredients SET cost = $2, updated_at = now() WHERE id = $1`,
		id, cost,
	)
	if err != nil {
		return fmt.Errorf("update ingredient cost: %w", err)
	}
	return nil
}

// ListByRestaurant lista los insumos activos del restaurante con paginación.
func (r *IngredientRepo) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Ingredient, error) {
	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients WHERE restaurant_id = $1 AND is_active = true
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, restaurantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// ListBelowReorderPoint devuelve los insumos activos con stock por debajo del
// punto de reorden, ordenados por mayor déficit primero.
func (r *IngredientRepo) ListBelowReorderPoint(ctx context.Context, restaurantID string) ([]*entity.Ingredient, error) {
	query := `
		SELECT ` + ingredientColumns + `
		FROM ingredients
		WHERE restaurant_id = $1 AND is_active = true AND current_stock < reorder_point
		ORDER BY (reorder_point - current_stock) DESC`
	rows, err := r.q.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients below reorder point: %w", err)
	}
	defer rows.Close()
	return r.scanRows(rows)
}

// Deactivate marca el insumo como inactivo (soft delete). Su historial de
// movimientos permanece intacto.
func (r *IngredientRepo) Deactivate(ctx context.Context, id, restaurantID string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE ingredients SET is_active = false, updated_at = now() WHERE id = $1 AND restaurant_id = $2`,
		id, restaurantID,
	)
	if err != nil {
		return fmt.Errorf("deactivate ingredient: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *IngredientRepo) scanRows(rows pgx.Rows) ([]*entity.Ingredient, error) {
	var out []*entity.Ingredient
	for rows.Next() {
		var i entity.Ingredient
		err := rows.Scan(
			&i.ID, &i.RestaurantID, &i.Name, &i.Unit, &i.CurrentStock,
			&i.MinStockLevel, &i.ReorderPoint, &i.ReorderQuantity, &i.Cost,
			&i.Category, &i.ExpiryDate, &i.IsPerishable, &i.IsActive,
			&i.CreatedAt, &i.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient row: %w", err)
		}
		out = append(out, &i)
	}
	return out, rows.Err()
}
