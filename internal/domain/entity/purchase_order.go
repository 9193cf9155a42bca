package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. El ciclo es monótono salvo cancelled,
// alcanzable desde cualquier estado no terminal.
const (
	POStatusDraft     = "draft"
	POStatusPending   = "pending"
	POStatusApproved  = "approved"
	POStatusOrdered   = "ordered"
	POStatusPartial   = "partial"
	POStatusReceived  = "received" // terminal
	POStatusCancelled = "cancelled" // terminal
)

// Estados de pago de la orden de compra.
const (
	POPaymentPending = "pending"
	POPaymentPartial = "partial"
	POPaymentPaid    = "paid"
)

// PurchaseOrder representa una orden de reposición a un proveedor.
// Total = Subtotal + Tax + Shipping siempre; los totales se recalculan
// (purchase.CalculateTotals) antes de cada persistencia que toque Items.
type PurchaseOrder struct {
	ID            string
	RestaurantID  string
	OrderNumber   string // único, formato PO-<año>-<secuencia>
	SupplierID    string
	Items         []PurchaseOrderItem
	Status        string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	PaymentStatus string
	Notes         string
	ApprovedBy    *string
	ApprovedAt    *time.Time
	ReceivedBy    *string
	ReceivedAt    *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PurchaseOrderItem es una línea de la orden. Name y Unit se desnormalizan del
// Ingredient al crear la orden para conservar el histórico aunque el insumo se
// renombre después. ReceivedQuantity acumula entre recepciones parciales y
// nunca supera Quantity.
type PurchaseOrderItem struct {
	IngredientID     string
	Name             string
	Unit             string
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	ReceivedQuantity decimal.Decimal
}
