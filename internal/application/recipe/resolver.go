package recipe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/recipe"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

// Invalidator invalida la disponibilidad cacheada de un restaurante cuando su
// recetario cambia (una receta nueva o editada cambia qué platos se pueden hacer).
type Invalidator interface {
	InvalidateRestaurant(restaurantID string)
}

// Resolver responde qué insumos necesita un plato, si se puede preparar ahora y
// cuánto cuesta producirlo. Camino de solo lectura, sin efectos; también cubre
// el mantenimiento del recetario (escritura liviana desde cocina).
type Resolver struct {
	recipeRepo     repository.RecipeRepository
	ingredientRepo repository.IngredientRepository
	menuRepo       repository.MenuItemRepository
	cache          Invalidator
}

// NewResolver construye el resolver de recetas.
func NewResolver(
	recipeRepo repository.RecipeRepository,
	ingredientRepo repository.IngredientRepository,
	menuRepo repository.MenuItemRepository,
	cache Invalidator,
) *Resolver {
	return &Resolver{
		recipeRepo:     recipeRepo,
		ingredientRepo: ingredientRepo,
		menuRepo:       menuRepo,
		cache:          cache,
	}
}

// SetInvalidator liga el invalidador de disponibilidad después de la
// construcción: el servicio de disponibilidad necesita el resolver para
// calcular y el resolver lo necesita para invalidar.
func (r *Resolver) SetInvalidator(cache Invalidator) {
	r.cache = cache
}

func (r *Resolver) invalidate(restaurantID string) {
	if r.cache != nil {
		r.cache.InvalidateRestaurant(restaurantID)
	}
}

// GetRecipe devuelve la receta del plato o nil si no tiene: la ausencia no es
// error, significa que el plato se controla manualmente.
func (r *Resolver) GetRecipe(ctx context.Context, menuItemID, restaurantID string) (*entity.Recipe, error) {
	return r.recipeRepo.GetByMenuItem(ctx, menuItemID, restaurantID)
}

// CheckAvailable indica si hay insumos para producir multiplier unidades del
// plato. Corta en el primer faltante; sin receta devuelve true (control manual).
func (r *Resolver) CheckAvailable(ctx context.Context, menuItemID, restaurantID string, multiplier int) (bool, error) {
	if multiplier <= 0 {
		return false, domain.ErrInvalidInput
	}
	rec, err := r.recipeRepo.GetByMenuItem(ctx, menuItemID, restaurantID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return true, nil
	}
	ingredients, err := r.loadIngredients(ctx, rec, restaurantID)
	if err != nil {
		return false, err
	}
	short := recipe.FirstShortfall(rec, ingredients, decimal.NewFromInt(int64(multiplier)))
	return short == nil, nil
}

// EstimateCost estima el costo de producir una unidad del plato sumando
// cost * quantity por línea; insumos inexistentes aportan cero.
func (r *Resolver) EstimateCost(ctx context.Context, menuItemID, restaurantID string) (decimal.Decimal, error) {
	rec, err := r.recipeRepo.GetByMenuItem(ctx, menuItemID, restaurantID)
	if err != nil {
		return decimal.Zero, err
	}
	if rec == nil {
		return decimal.Zero, nil
	}
	ingredients, err := r.loadIngredients(ctx, rec, restaurantID)
	if err != nil {
		return decimal.Zero, err
	}
	return recipe.EstimateCost(rec, ingredients), nil
}

func (r *Resolver) loadIngredients(ctx context.Context, rec *entity.Recipe, restaurantID string) (map[string]*entity.Ingredient, error) {
	out := make(map[string]*entity.Ingredient, len(rec.Ingredients))
	for _, line := range rec.Ingredients {
		ing, err := r.ingredientRepo.GetByID(ctx, line.IngredientID, restaurantID)
		if err != nil {
			return nil, err
		}
		if ing == nil {
			continue // insumo borrado: FirstShortfall/EstimateCost deciden qué hacer
		}
		out[line.IngredientID] = ing
	}
	return out, nil
}

// RecipeLineInput línea de receta para crear/editar.
type RecipeLineInput struct {
	IngredientID string
	Quantity     decimal.Decimal
	Unit         string
}

// UpsertRecipeInput entrada para Create/Update de receta.
type UpsertRecipeInput struct {
	RestaurantID    string
	MenuItemID      string
	Ingredients     []RecipeLineInput
	PreparationTime int
	CookingTime     int
	Yield           int
}

// Create registra la receta de un plato: al menos una línea, cantidades
// positivas, insumos existentes y a lo sumo una receta por plato.
func (r *Resolver) Create(ctx context.Context, input UpsertRecipeInput) (*entity.Recipe, error) {
	if err := r.validateUpsert(ctx, input); err != nil {
		return nil, err
	}
	existing, err := r.recipeRepo.GetByMenuItem(ctx, input.MenuItemID, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	rec := &entity.Recipe{
		ID:              uuid.New().String(),
		RestaurantID:    input.RestaurantID,
		MenuItemID:      input.MenuItemID,
		Ingredients:     toLines(input.Ingredients),
		PreparationTime: input.PreparationTime,
		CookingTime:     input.CookingTime,
		Yield:           input.Yield,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.recipeRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	r.invalidate(input.RestaurantID)
	return rec, nil
}

// Update reemplaza las líneas y tiempos de la receta existente del plato.
func (r *Resolver) Update(ctx context.Context, input UpsertRecipeInput) (*entity.Recipe, error) {
	if err := r.validateUpsert(ctx, input); err != nil {
		return nil, err
	}
	rec, err := r.recipeRepo.GetByMenuItem(ctx, input.MenuItemID, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	rec.Ingredients = toLines(input.Ingredients)
	rec.PreparationTime = input.PreparationTime
	rec.CookingTime = input.CookingTime
	rec.Yield = input.Yield
	rec.UpdatedAt = time.Now()
	if err := r.recipeRepo.Update(ctx, rec); err != nil {
		return nil, err
	}
	r.invalidate(input.RestaurantID)
	return rec, nil
}

// Delete elimina la receta; el plato pasa a control manual.
func (r *Resolver) Delete(ctx context.Context, id, restaurantID string) error {
	rec, err := r.recipeRepo.GetByID(ctx, id, restaurantID)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrNotFound
	}
	if err := r.recipeRepo.Delete(ctx, id, restaurantID); err != nil {
		return err
	}
	r.invalidate(restaurantID)
	return nil
}

// List lista las recetas del restaurante.
func (r *Resolver) List(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Recipe, error) {
	return r.recipeRepo.ListByRestaurant(ctx, restaurantID, limit, offset)
}

func (r *Resolver) validateUpsert(ctx context.Context, input UpsertRecipeInput) error {
	if input.RestaurantID == "" || input.MenuItemID == "" || len(input.Ingredients) == 0 {
		return domain.ErrInvalidInput
	}
	item, err := r.menuRepo.GetByID(ctx, input.MenuItemID, input.RestaurantID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	for _, line := range input.Ingredients {
		if line.IngredientID == "" || !line.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		ing, err := r.ingredientRepo.GetByID(ctx, line.IngredientID, input.RestaurantID)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

func toLines(in []RecipeLineInput) []entity.RecipeIngredient {
	out := make([]entity.RecipeIngredient, len(in))
	for i, l := range in {
		out[i] = entity.RecipeIngredient{IngredientID: l.IngredientID, Quantity: l.Quantity, Unit: l.Unit}
	}
	return out
}
