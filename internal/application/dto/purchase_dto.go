package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderItemRequest línea de una orden de compra nueva.
type PurchaseOrderItemRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id"`
	Items      []PurchaseOrderItemRequest `json:"items"`
	Tax        decimal.Decimal            `json:"tax"`
	Shipping   decimal.Decimal            `json:"shipping"`
	Notes      string                     `json:"notes,omitempty"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receive.
// ReceivedQuantities mapea insumo → cantidad TOTAL acumulada recibida;
// las líneas ausentes se asumen completas.
type ReceivePurchaseOrderRequest struct {
	ReceivedQuantities map[string]decimal.Decimal `json:"received_quantities,omitempty"`
}

// PurchaseOrderItemResponse línea de orden en respuestas.
type PurchaseOrderItemResponse struct {
	IngredientID     string          `json:"ingredient_id"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// PurchaseOrderResponse representación de una orden de compra en respuestas.
type PurchaseOrderResponse struct {
	ID            string                      `json:"id"`
	OrderNumber   string                      `json:"order_number"`
	SupplierID    string                      `json:"supplier_id"`
	Status        string                      `json:"status"`
	Items         []PurchaseOrderItemResponse `json:"items"`
	Subtotal      decimal.Decimal             `json:"subtotal"`
	Tax           decimal.Decimal             `json:"tax"`
	Shipping      decimal.Decimal             `json:"shipping"`
	Total         decimal.Decimal             `json:"total"`
	PaymentStatus string                      `json:"payment_status"`
	Notes         string                      `json:"notes,omitempty"`
	ApprovedBy    *string                     `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time                  `json:"approved_at,omitempty"`
	ReceivedBy    *string                     `json:"received_by,omitempty"`
	ReceivedAt    *time.Time                  `json:"received_at,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// SupplierRequest body de alta/edición de un proveedor.
type SupplierRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

// SupplierResponse representación de un proveedor en respuestas.
type SupplierResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
