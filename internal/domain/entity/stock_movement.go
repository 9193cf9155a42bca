package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock (ledger).
const (
	MovementTypePurchase    = "purchase"    // recepción de orden de compra (+)
	MovementTypeConsumption = "consumption" // consumo por pedido confirmado (-)
	MovementTypeWaste       = "waste"       // merma / desperdicio (-)
	MovementTypeAdjustment  = "adjustment"  // ajuste manual (cantidad con signo)
	MovementTypeTransfer    = "transfer"    // traslado (cantidad con signo)
	MovementTypeReturn      = "return"      // reverso por cancelación de pedido (+)
)

// Referencias posibles de un movimiento.
const (
	ReferenceTypeIngredient = "ingredient"
	ReferenceTypeMenuItem   = "menu_item"
)

// StockMovement es una entrada inmutable del ledger de stock: un cambio de
// cantidad sobre un Ingredient o MenuItem con snapshot antes/después.
// Nunca se actualiza ni se borra; el stock actual de la entidad referenciada
// es "el ledger plegado hasta ahora".
type StockMovement struct {
	ID              string
	RestaurantID    string
	Type            string // purchase, consumption, waste, adjustment, transfer, return
	ReferenceType   string // ingredient | menu_item
	ReferenceID     string
	Quantity        decimal.Decimal // magnitud positiva; adjustment/transfer llevan signo
	Unit            string
	PreviousStock   decimal.Decimal
	NewStock        decimal.Decimal // PreviousStock + delta firmado según Type
	Cost            *decimal.Decimal // costo TOTAL del movimiento (cantidad × costo unitario), nunca unitario
	OrderID         *string          // procedencia: pedido (consumption/return)
	PurchaseOrderID *string // procedencia: orden de compra (purchase)
	SupplierID      *string
	PerformedBy     string // UserID
	CreatedAt       time.Time
}
