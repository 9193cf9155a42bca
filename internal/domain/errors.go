package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrInvariantViolation = errors.New("violación de invariante de stock")
)

// Shortfall describe un faltante: cuánto se requería y cuánto había.
type Shortfall struct {
	IngredientID string
	Name         string
	Required     decimal.Decimal
	Available    decimal.Decimal
}

// InsufficientStockError lista todos los faltantes detectados en el pre-chequeo
// de un consumo. Satisface errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		name := s.Name
		if name == "" {
			name = s.IngredientID
		}
		parts = append(parts, fmt.Sprintf("%s (requerido %s, disponible %s)", name, s.Required, s.Available))
	}
	return "stock insuficiente: " + strings.Join(parts, ", ")
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// InvalidTransitionError indica una operación de ciclo de vida invocada desde
// un estado que no la permite. Satisface errors.Is(err, ErrInvalidTransition).
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición no permitida: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// InvariantViolationError señala que una escritura habría dejado stock negativo
// pese a un pre-chequeo exitoso (carrera) o que el delta del movimiento no
// coincide con los snapshots. Es señal de bug: se loggea fuerte y se revierte.
type InvariantViolationError struct {
	ReferenceID string
	Detail      string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("violación de invariante de stock en %s: %s", e.ReferenceID, e.Detail)
}

func (e *InvariantViolationError) Is(target error) bool { return target == ErrInvariantViolation }
