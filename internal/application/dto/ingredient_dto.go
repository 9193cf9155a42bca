package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIngredientRequest body para POST /api/ingredients.
// OpeningStock > 0 genera la primera entrada del ledger (ajuste de apertura).
type CreateIngredientRequest struct {
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	OpeningStock    decimal.Decimal `json:"opening_stock"`
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	Cost            decimal.Decimal `json:"cost"`
	Category        string          `json:"category,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	IsPerishable    bool            `json:"is_perishable"`
}

// UpdateIngredientRequest body para PUT /api/ingredients/:id.
// No lleva stock: las correcciones de cantidad van por /stock/adjust.
type UpdateIngredientRequest struct {
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	Cost            decimal.Decimal `json:"cost"`
	Category        string          `json:"category,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	IsPerishable    bool            `json:"is_perishable"`
}

// IngredientResponse representación de un insumo en respuestas.
type IngredientResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	Cost            decimal.Decimal `json:"cost"`
	Category        string          `json:"category,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	IsPerishable    bool            `json:"is_perishable"`
	IsActive        bool            `json:"is_active"`
	BelowReorder    bool            `json:"below_reorder"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
