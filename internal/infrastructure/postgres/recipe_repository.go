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

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación del puerto RecipeRepository sobre PostgreSQL.
// Las líneas viven en recipe_ingredients; Create/Update reemplazan el conjunto
// completo de líneas (delete + insert) dentro del Querier recibido.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador de persistencia para recetas. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// Create persiste la receta y sus líneas. La restricción UNIQUE sobre
// (restaurant_id, menu_item_id) garantiza a lo sumo una receta por plato.
func (r *RecipeRepo) Create(ctx context.Context, rec *entity.Recipe) error {
	query := `
		INSERT INTO recipes (id, restaurant_id, menu_item_id, preparation_time, cooking_time, yield, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.RestaurantID, rec.MenuItemID,
		rec.PreparationTime, rec.CookingTime, rec.Yield,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert recipe: %w", err)
	}
	return r.insertLines(ctx, rec)
}

// Update actualiza cabecera y reemplaza todas las líneas.
func (r *RecipeRepo) Update(ctx context.Context, rec *entity.Recipe) error {
	query := `
		UPDATE recipes SET preparation_time = $3, cooking_time = $4, yield = $5, updated_at = $6
		WHERE id = $1 AND restaurant_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		rec.ID, rec.RestaurantID, rec.PreparationTime, rec.CookingTime, rec.Yield, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, rec.ID); err != nil {
		return fmt.Errorf("delete recipe lines: %w", err)
	}
	return r.insertLines(ctx, rec)
}

func (r *RecipeRepo) insertLines(ctx context.Context, rec *entity.Recipe) error {
	for _, line := range rec.Ingredients {
		_, err := r.q.Exec(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit) VALUES ($1, $2, $3, $4)`,
			rec.ID, line.IngredientID, line.Quantity, line.Unit,
		)
		if err != nil {
			return fmt.Errorf("insert recipe line: %w", err)
		}
	}
	return nil
}

// Delete elimina la receta y sus líneas (ON DELETE CASCADE en recipe_ingredients).
func (r *RecipeRepo) Delete(ctx context.Context, id, restaurantID string) error {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM recipes WHERE id = $1 AND restaurant_id = $2`,
		id, restaurantID,
	)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una receta por ID con sus líneas.
func (r *RecipeRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.Recipe, error) {
	query := `
		SELECT id, restaurant_id, menu_item_id, preparation_time, cooking_time, yield, created_at, updated_at
		FROM recipes WHERE id = $1 AND restaurant_id = $2`
	return r.getOne(ctx, query, id, restaurantID)
}

// GetByMenuItem obtiene la receta de un plato. Devuelve nil sin error si el
// plato no tiene receta: esa ausencia significa control manual, no un fallo.
func (r *RecipeRepo) GetByMenuItem(ctx context.Context, menuItemID, restaurantID string) (*entity.Recipe, error) {
	query := `
		SELECT id, restaurant_id, menu_item_id, preparation_time, cooking_time, yield, created_at, updated_at
		FROM recipes WHERE menu_item_id = $1 AND restaurant_id = $2`
	return r.getOne(ctx, query, menuItemID, restaurantID)
}

func (r *RecipeRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Recipe, error) {
	var rec entity.Recipe
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&rec.ID, &rec.RestaurantID, &rec.MenuItemID,
		&rec.PreparationTime, &rec.CookingTime, &rec.Yield,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	if err := r.loadLines(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecipeRepo) loadLines(ctx context.Context, rec *entity.Recipe) error {
	rows, err := r.q.Query(ctx,
		`SELECT ingredient_id, quantity, unit FROM recipe_ingredients WHERE recipe_id = $1 ORDER BY ingredient_id`,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("load recipe lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line entity.RecipeIngredient
		if err := rows.Scan(&line.IngredientID, &line.Quantity, &line.Unit); err != nil {
			return fmt.Errorf("scan recipe line: %w", err)
		}
		rec.Ingredients = append(rec.Ingredients, line)
	}
	return rows.Err()
}

// ListByRestaurant lista las recetas del restaurante con sus líneas, paginado.
func (r *RecipeRepo) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Recipe, error) {
	query := `
		SELECT id, restaurant_id, menu_item_id, preparation_time, cooking_time, yield, created_at, updated_at
		FROM recipes WHERE restaurant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, restaurantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Recipe
	for rows.Next() {
		var rec entity.Recipe
		err := rows.Scan(
			&rec.ID, &rec.RestaurantID, &rec.MenuItemID,
			&rec.PreparationTime, &rec.CookingTime, &rec.Yield,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recipe row: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rec := range out {
		if err := r.loadLines(ctx, rec); err != nil {
			return nil, err
		}
	}
	return out, nil
}
