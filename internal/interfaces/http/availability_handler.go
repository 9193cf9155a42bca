package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Restaurante-api/internal/application/availability"
	"github.com/jhoicas/Restaurante-api/internal/application/dto"
)

// AvailabilityHandler responde consultas de disponibilidad de carta (protegido).
// Es solo lectura y cacheado: nunca toca el camino de mutación de stock.
type AvailabilityHandler struct {
	svc *availability.Service
}

// NewAvailabilityHandler construye el handler.
func NewAvailabilityHandler(svc *availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

// ListMenu godoc
// @Summary      Disponibilidad de la carta
// @Description  Cada plato con su flag de disponibilidad actual; lecturas cacheadas con TTL corto.
// @Tags         availability
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo de resultados (default 20)"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}  availability.MenuAvailability
// @Router       /api/availability/menu [get]
func (h *AvailabilityHandler) ListMenu(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.svc.ListMenuAvailability(c.Context(), restaurantID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// CheckItem godoc
// @Summary      Disponibilidad de un plato
// @Tags         availability
// @Security     Bearer
// @Produce      json
// @Param        menuItemId  path  string  true  "ID del plato"
// @Success      200  {object}  map[string]bool
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/availability/menu/{menuItemId} [get]
func (h *AvailabilityHandler) CheckItem(c *fiber.Ctx) error {
	restaurantID := GetRestaurantID(c)
	if restaurantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	available, err := h.svc.CheckItem(c.Context(), restaurantID, c.Params("menuItemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"available": available})
}
