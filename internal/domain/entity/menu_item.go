package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem representa un plato o producto vendible de la carta.
// Los campos de stock embebidos solo son vinculantes cuando TrackInventory es true;
// si es false son informativos y nunca bloquean un pedido.
type MenuItem struct {
	ID             string
	RestaurantID   string
	Name           string
	Description    string
	Category       string
	Price          decimal.Decimal
	Amount         decimal.Decimal // stock directo del plato (si TrackInventory)
	MinStockLevel  decimal.Decimal
	MaxStockLevel  *decimal.Decimal
	TrackInventory bool
	Available      bool // se apaga automáticamente cuando Amount llega a 0
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
