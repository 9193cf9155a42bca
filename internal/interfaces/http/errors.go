package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Restaurante-api/internal/application/dto"
	"github.com/jhoicas/Restaurante-api/internal/domain"
)

// respondError mapea un error de dominio al status y cuerpo HTTP correspondiente.
// Stock insuficiente y transición inválida responden 400: el caso de stock
// lleva el detalle de TODOS los faltantes para que el cliente pueda mostrarlos
// de una vez.
func respondError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.InsufficientStockResponse{
			Code:       "INSUFFICIENT_STOCK",
			Message:    "stock insuficiente para completar la operación",
			Shortfalls: toShortfallDTOs(insufficient.Shortfalls),
		})
	}
	var transition *domain.InvalidTransitionError
	if errors.As(err, &transition) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: transition.Error()})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInvariantViolation):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INVARIANT_VIOLATION", Message: "inconsistencia de stock detectada"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toShortfallDTOs(in []domain.Shortfall) []dto.ShortfallDTO {
	out := make([]dto.ShortfallDTO, 0, len(in))
	for _, s := range in {
		out = append(out, dto.ShortfallDTO{
			IngredientID: s.IngredientID,
			Name:         s.Name,
			Required:     s.Required,
			Available:    s.Available,
		})
	}
	return out
}
