package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Restaurante-api/internal/application/dto"
	"github.com/jhoicas/Restaurante-api/internal/application/inventory"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// IngredientHandler maneja las peticiones HTTP de insumos (protegido).
type IngredientHandler struct {
	uc *inventory.UseCase
}

// NewIngredientHandler construye el handler.
func NewIngredientHandler(uc *inventory.UseCase) *IngredientHandler {
	return &IngredientHandler{uc: uc}
}

// Create godoc
// @Summary      Dar de alta un insumo
// @Description  Si opening_stock > 0, la apertura queda registrada como primera entrada del ledger.
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIngredientRequest  true  "Datos del insumo"
// @Success      201   {object}  dto.IngredientResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/ingredients [post]
func (h *IngredientHandler) Create(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	userID := GetUserID(c)
	if restaurantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateIngredientRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ing, err := h.uc.CreateIngredient(c.Context(), inventory.CreateIngredientInput{
		RestaurantID:    restaurantID,
		UserID:          userID,
		Name:            in.Name,
		Unit:            in.Unit,
		OpeningStock:    in.OpeningStock,
		MinStockLevel:   in.MinStockLevel,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		Cost:            in.Cost,
		Category:        in.Category,
		ExpiryDate:      in.ExpiryDate,
		IsPerishable:    in.IsPerishable,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toIngredientResponse(ing))
}

// Update godoc
// @Summary      Editar metadatos de un insumo
// @Description  No modifica el stock; las correcciones de cantidad van por /api/stock/adjust.
// @Tags         ingredients
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del insumo"
// @Param        body  body  dto.UpdateIngredientRequest  true  "Datos del insumo"
// @Success      200   {object}  dto.IngredientResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [put]
func (h *IngredientHandler) Update(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.UpdateIngredientRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ing, err := h.uc.UpdateIngredient(c.Context(), inventory.UpdateIngredientInput{
		ID:              c.Params("id"),
		RestaurantID:    restaurantID,
		Name:            in.Name,
		Unit:            in.Unit,
		MinStockLevel:   in.MinStockLevel,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		Cost:            in.Cost,
		Category:        in.Category,
		ExpiryDate:      in.ExpiryDate,
		IsPerishable:    in.IsPerishable,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toIngredientResponse(ing))
}

// GetByID godoc
// @Summary      Consultar un insumo
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del insumo"
// @Success      200  {object}  dto.IngredientResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [get]
func (h *IngredientHandler) GetByID(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	ing, err := h.uc.Get(c.Context(), c.Params("id"), restaurantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toIngredientResponse(ing))
}

// List godoc
// @Summary      Listar insumos activos
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de resultados (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  dto.IngredientResponse
// @Router       /api/ingredients [get]
func (h *IngredientHandler) List(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), restaurantID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.IngredientResponse, 0, len(list))
	for _, ing := range list {
		out = append(out, toIngredientResponse(ing))
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar un insumo (soft delete)
// @Description  El historial de movimientos del insumo permanece intacto.
// @Tags         ingredients
// @Security     Bearer
// @Param        id  path  string  true  "ID del insumo"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id} [delete]
func (h *IngredientHandler) Deactivate(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.Deactivate(c.Context(), c.Params("id"), restaurantID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Insumos bajo su punto de reorden con la cantidad sugerida de pedido, ordenados por déficit.
// @Tags         ingredients
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/ingredients/replenishment [get]
func (h *IngredientHandler) ReplenishmentList(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.uc.ReplenishmentList(c.Context(), restaurantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":       len(list),
		"suggestions": list,
	})
}

func toIngredientResponse(ing *entity.Ingredient) dto.IngredientResponse {
	return dto.IngredientResponse{
		ID:              ing.ID,
		Name:            ing.Name,
		Unit:            ing.Unit,
		CurrentStock:    ing.CurrentStock,
		MinStockLevel:   ing.MinStockLevel,
		ReorderPoint:    ing.ReorderPoint,
		ReorderQuantity: ing.ReorderQuantity,
		Cost:            ing.Cost,
		Category:        ing.Category,
		ExpiryDate:      ing.ExpiryDate,
		IsPerishable:    ing.IsPerishable,
		IsActive:        ing.IsActive,
		BelowReorder:    ing.BelowReorderPoint(),
		CreatedAt:       ing.CreatedAt,
		UpdatedAt:       ing.UpdatedAt,
	}
}
