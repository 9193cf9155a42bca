package dto

import "github.com/shopspring/decimal"

// OrderLineRequest línea de un pedido a consumir.
type OrderLineRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// ConsumeOrderRequest body para POST /api/stock/consume.
type ConsumeOrderRequest struct {
	OrderID string             `json:"order_id"`
	Lines   []OrderLineRequest `json:"lines"`
}

// WasteRequest body para POST /api/stock/waste. Quantity es magnitud positiva.
type WasteRequest struct {
	ReferenceType string          `json:"reference_type"` // ingredient | menu_item
	ReferenceID   string          `json:"reference_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// AdjustRequest body para POST /api/stock/adjust. Quantity lleva signo.
type AdjustRequest struct {
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// StockChangeDTO snapshot de un registro de stock afectado por una operación.
type StockChangeDTO struct {
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Name          string          `json:"name"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
}

// FulfillmentResultResponse resultado de una operación de stock commiteada.
type FulfillmentResultResponse struct {
	OrderID string           `json:"order_id,omitempty"`
	Changes []StockChangeDTO `json:"changes"`
}

// ShortfallDTO insumo o plato sin stock suficiente para la operación pedida.
type ShortfallDTO struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
}

// InsufficientStockResponse cuerpo 400 con el detalle de todos los faltantes.
type InsufficientStockResponse struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Shortfalls []ShortfallDTO `json:"shortfalls"`
}
