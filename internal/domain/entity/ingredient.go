package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient representa un insumo de cocina con su stock actual por restaurante.
// CurrentStock nunca es negativo: solo se muta a través del camino del ledger
// (StockMovement), jamás con escrituras directas al campo.
type Ingredient struct {
	ID              string
	RestaurantID    string
	Name            string
	Unit            string // kg, g, l, ml, unidad...
	CurrentStock    decimal.Decimal
	MinStockLevel   decimal.Decimal // umbral de alerta dura
	ReorderPoint    decimal.Decimal // umbral de reposición (distinto del mínimo)
	ReorderQuantity decimal.Decimal
	Cost            decimal.Decimal // costo por unidad
	Category        string
	ExpiryDate      *time.Time
	IsPerishable    bool
	IsActive        bool // soft delete
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BelowReorderPoint indica si el stock actual está por debajo del punto de reorden.
func (i *Ingredient) BelowReorderPoint() bool {
	return i.CurrentStock.LessThan(i.ReorderPoint)
}

// BelowMinimum indica si el stock actual está por debajo del mínimo de alerta.
func (i *Ingredient) BelowMinimum() bool {
	return i.CurrentStock.LessThan(i.MinStockLevel)
}
