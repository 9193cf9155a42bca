package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementResponse entrada del ledger en respuestas.
type StockMovementResponse struct {
	ID              string           `json:"id"`
	Type            string           `json:"type"`
	ReferenceType   string           `json:"reference_type"`
	ReferenceID     string           `json:"reference_id"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Unit            string           `json:"unit"`
	PreviousStock   decimal.Decimal  `json:"previous_stock"`
	NewStock        decimal.Decimal  `json:"new_stock"`
	Cost            *decimal.Decimal `json:"cost,omitempty"`
	OrderID         *string          `json:"order_id,omitempty"`
	PurchaseOrderID *string          `json:"purchase_order_id,omitempty"`
	SupplierID      *string          `json:"supplier_id,omitempty"`
	PerformedBy     string           `json:"performed_by"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ReconcileResponse resultado de la reconciliación ledger vs stock almacenado.
type ReconcileResponse struct {
	ReferenceID   string          `json:"reference_id"`
	ReferenceType string          `json:"reference_type"`
	LedgerTotal   decimal.Decimal `json:"ledger_total"`
	StoredStock   decimal.Decimal `json:"stored_stock"`
	Consistent    bool            `json:"consistent"`
}

// WasteReportRowDTO merma agregada de una referencia en el rango pedido.
type WasteReportRowDTO struct {
	ReferenceID   string          `json:"reference_id"`
	ReferenceType string          `json:"reference_type"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Entries       int             `json:"entries"`
}
