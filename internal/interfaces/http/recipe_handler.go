package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Restaurante-api/internal/application/dto"
	apprecipe "github.com/jhoicas/Restaurante-api/internal/application/recipe"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// RecipeHandler maneja las peticiones HTTP de recetas (protegido).
type RecipeHandler struct {
	resolver *apprecipe.Resolver
}

// NewRecipeHandler construye el handler.
func NewRecipeHandler(resolver *apprecipe.Resolver) *RecipeHandler {
	return &RecipeHandler{resolver: resolver}
}

// Create godoc
// @Summary      Registrar la receta de un plato
// @Description  A lo sumo una receta por plato; un segundo intento responde 409.
// @Tags         recipes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertRecipeRequest  true  "Receta"
// @Success      201   {object}  dto.RecipeResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/recipes [post]
func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpsertRecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.resolver.Create(c.Context(), toUpsertInput(restaurantID, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toRecipeResponse(rec))
}

// Update godoc
// @Summary      Editar la receta de un plato
// @Tags         recipes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertRecipeRequest  true  "Receta"
// @Success      200   {object}  dto.RecipeResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/recipes [put]
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpsertRecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.resolver.Update(c.Context(), toUpsertInput(restaurantID, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toRecipeResponse(rec))
}

// Delete godoc
// @Summary      Eliminar una receta
// @Description  El plato vuelve a control manual de stock.
// @Tags         recipes
// @Security     Bearer
// @Param        id  path  string  true  "ID de la receta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id} [delete]
func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.resolver.Delete(c.Context(), c.Params("id"), restaurantID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar recetas del restaurante
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de resultados (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.RecipeResponse
// @Router       /api/recipes [get]
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.resolver.List(c.Context(), restaurantID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.RecipeResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, toRecipeResponse(rec))
	}
	return c.JSON(out)
}

// EstimateCost godoc
// @Summary      Costo estimado de producir una unidad del plato
// @Description  Suma cantidad x costo actual de cada insumo de la receta.
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Param        menuItemId  path  string  true  "ID del plato"
// @Success      200  {object}  dto.RecipeCostResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recipes/menu-items/{menuItemId}/cost [get]
func (h *RecipeHandler) EstimateCost(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	menuItemID := c.Params("menuItemId")
	cost, err := h.resolver.EstimateCost(c.Context(), menuItemID, restaurantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.RecipeCostResponse{MenuItemID: menuItemID, EstimatedCost: cost})
}

func toUpsertInput(restaurantID string, in dto.UpsertRecipeRequest) apprecipe.UpsertRecipeInput {
	lines := make([]apprecipe.RecipeLineInput, 0, len(in.Ingredients))
	for _, l := range in.Ingredients {
		lines = append(lines, apprecipe.RecipeLineInput{
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
			Unit:         l.Unit,
		})
	}
	return apprecipe.UpsertRecipeInput{
		RestaurantID:    restaurantID,
		MenuItemID:      in.MenuItemID,
		Ingredients:     lines,
		PreparationTime: in.PreparationTime,
		CookingTime:     in.CookingTime,
		Yield:           in.Yield,
	}
}

func toRecipeResponse(rec *entity.Recipe) dto.RecipeResponse {
	lines := make([]dto.RecipeLineRequest, 0, len(rec.Ingredients))
	for _, l := range rec.Ingredients {
		lines = append(lines, dto.RecipeLineRequest{
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
			Unit:         l.Unit,
		})
	}
	return dto.RecipeResponse{
		ID:              rec.ID,
		MenuItemID:      rec.MenuItemID,
		Ingredients:     lines,
		PreparationTime: rec.PreparationTime,
		CookingTime:     rec.CookingTime,
		Yield:           rec.Yield,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
