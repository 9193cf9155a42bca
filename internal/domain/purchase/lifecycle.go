// Package purchase contiene la lógica pura del ciclo de vida de órdenes de
// compra: máquina de estados y cálculo de totales.
package purchase

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// transitions define las transiciones legales del ciclo de vida.
// cancelled se agrega aparte porque es alcanzable desde cualquier no terminal.
var transitions = map[string][]string{
	entity.POStatusDraft:    {entity.POStatusPending},
	entity.POStatusPending:  {entity.POStatusApproved},
	entity.POStatusApproved: {entity.POStatusOrdered, entity.POStatusPartial, entity.POStatusReceived},
	entity.POStatusOrdered:  {entity.POStatusPartial, entity.POStatusReceived},
	entity.POStatusPartial:  {entity.POStatusPartial, entity.POStatusReceived},
}

// IsTerminal indica si un estado no admite más transiciones.
func IsTerminal(status string) bool {
	return status == entity.POStatusReceived || status == entity.POStatusCancelled
}

// CanTransition valida una transición de estado de la orden de compra.
func CanTransition(from, to string) bool {
	if to == entity.POStatusCancelled {
		return !IsTerminal(from)
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition valida y devuelve el error tipado si la transición no es legal.
func Transition(po *entity.PurchaseOrder, to string) error {
	if !CanTransition(po.Status, to) {
		return &domain.InvalidTransitionError{From: po.Status, To: to}
	}
	po.Status = to
	return nil
}

// CanReceive indica si la orden admite una recepción de mercadería.
func CanReceive(status string) bool {
	switch status {
	case entity.POStatusApproved, entity.POStatusOrdered, entity.POStatusPartial:
		return true
	}
	return false
}

// CalculateTotals recalcula TotalCost por línea, Subtotal y Total a partir de
// las líneas. Se invoca antes de cada persistencia que toque Items.
func CalculateTotals(po *entity.PurchaseOrder) {
	subtotal := decimal.Zero
	for i := range po.Items {
		po.Items[i].TotalCost = po.Items[i].Quantity.Mul(po.Items[i].UnitCost)
		subtotal = subtotal.Add(po.Items[i].TotalCost)
	}
	po.Subtotal = subtotal
	po.Total = subtotal.Add(po.Tax).Add(po.Shipping)
}

// FullyReceived indica si todas las líneas recibieron su cantidad pedida.
func FullyReceived(po *entity.PurchaseOrder) bool {
	for _, it := range po.Items {
		if it.ReceivedQuantity.LessThan(it.Quantity) {
			return false
		}
	}
	return true
}
