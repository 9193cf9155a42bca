package purchase_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/purchase"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquina de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestCanTransition_CaminoFeliz(t *testing.T) {
	legal := [][2]string{
		{entity.POStatusDraft, entity.POStatusPending},
		{entity.POStatusPending, entity.POStatusApproved},
		{entity.POStatusApproved, entity.POStatusOrdered},
		{entity.POStatusApproved, entity.POStatusPartial},
		{entity.POStatusApproved, entity.POStatusReceived},
		{entity.POStatusOrdered, entity.POStatusPartial},
		{entity.POStatusOrdered, entity.POStatusReceived},
		{entity.POStatusPartial, entity.POStatusPartial}, // otra recepción parcial
		{entity.POStatusPartial, entity.POStatusReceived},
	}
	for _, tr := range legal {
		assert.True(t, purchase.CanTransition(tr[0], tr[1]), "%s -> %s debe ser legal", tr[0], tr[1])
	}
}

func TestCanTransition_SaltosProhibidos(t *testing.T) {
	illegal := [][2]string{
		{entity.POStatusDraft, entity.POStatusApproved},   // saltarse pending
		{entity.POStatusDraft, entity.POStatusReceived},   // saltarse todo
		{entity.POStatusPending, entity.POStatusOrdered},  // sin aprobación
		{entity.POStatusApproved, entity.POStatusPending}, // retroceso
		{entity.POStatusReceived, entity.POStatusPartial}, // desde terminal
		{entity.POStatusReceived, entity.POStatusDraft},
		{entity.POStatusCancelled, entity.POStatusPending},
	}
	for _, tr := range illegal {
		assert.False(t, purchase.CanTransition(tr[0], tr[1]), "%s -> %s no debe ser legal", tr[0], tr[1])
	}
}

func TestCanTransition_CancelledDesdeNoTerminales(t *testing.T) {
	for _, from := range []string{
		entity.POStatusDraft, entity.POStatusPending, entity.POStatusApproved,
		entity.POStatusOrdered, entity.POStatusPartial,
	} {
		assert.True(t, purchase.CanTransition(from, entity.POStatusCancelled),
			"cancelled debe ser alcanzable desde %s", from)
	}
	assert.False(t, purchase.CanTransition(entity.POStatusReceived, entity.POStatusCancelled),
		"una orden recibida no se cancela")
	assert.False(t, purchase.CanTransition(entity.POStatusCancelled, entity.POStatusCancelled),
		"cancelar dos veces no es una transición")
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, purchase.IsTerminal(entity.POStatusReceived))
	assert.True(t, purchase.IsTerminal(entity.POStatusCancelled))
	assert.False(t, purchase.IsTerminal(entity.POStatusDraft))
	assert.False(t, purchase.IsTerminal(entity.POStatusPartial))
}

func TestTransition_MutaOFallaTipado(t *testing.T) {
	po := &entity.PurchaseOrder{Status: entity.POStatusDraft}
	require.NoError(t, purchase.Transition(po, entity.POStatusPending))
	assert.Equal(t, entity.POStatusPending, po.Status)

	err := purchase.Transition(po, entity.POStatusReceived)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	var tr *domain.InvalidTransitionError
	require.True(t, errors.As(err, &tr))
	assert.Equal(t, entity.POStatusPending, tr.From)
	assert.Equal(t, entity.POStatusReceived, tr.To)
	assert.Equal(t, entity.POStatusPending, po.Status, "una transición fallida no muta el estado")
}

func TestCanReceive(t *testing.T) {
	assert.True(t, purchase.CanReceive(entity.POStatusApproved))
	assert.True(t, purchase.CanReceive(entity.POStatusOrdered))
	assert.True(t, purchase.CanReceive(entity.POStatusPartial))
	assert.False(t, purchase.CanReceive(entity.POStatusDraft))
	assert.False(t, purchase.CanReceive(entity.POStatusPending))
	assert.False(t, purchase.CanReceive(entity.POStatusReceived))
	assert.False(t, purchase.CanReceive(entity.POStatusCancelled))
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales y recepción completa
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateTotals(t *testing.T) {
	po := &entity.PurchaseOrder{
		Items: []entity.PurchaseOrderItem{
			{Quantity: dec("10"), UnitCost: dec("2.50")},
			{Quantity: dec("4"), UnitCost: dec("1.25")},
		},
		Tax:      dec("3"),
		Shipping: dec("5"),
	}
	purchase.CalculateTotals(po)

	assert.True(t, po.Items[0].TotalCost.Equal(dec("25")))
	assert.True(t, po.Items[1].TotalCost.Equal(dec("5")))
	assert.True(t, po.Subtotal.Equal(dec("30")), "subtotal = suma de líneas")
	assert.True(t, po.Total.Equal(dec("38")), "total = subtotal + tax + shipping")
}

func TestCalculateTotals_SinLineas(t *testing.T) {
	po := &entity.PurchaseOrder{Tax: dec("1"), Shipping: dec("2")}
	purchase.CalculateTotals(po)
	assert.True(t, po.Subtotal.IsZero())
	assert.True(t, po.Total.Equal(dec("3")))
}

func TestFullyReceived(t *testing.T) {
	po := &entity.PurchaseOrder{
		Items: []entity.PurchaseOrderItem{
			{Quantity: dec("10"), ReceivedQuantity: dec("10")},
			{Quantity: dec("4"), ReceivedQuantity: dec("2")},
		},
	}
	assert.False(t, purchase.FullyReceived(po), "una línea incompleta impide received")

	po.Items[1].ReceivedQuantity = dec("4")
	assert.True(t, purchase.FullyReceived(po))
}

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestWeightedAverageCost(t *testing.T) {
	// 10 unidades a 2.00 + 10 recibidas a 4.00 = 20 unidades a 3.00.
	got := purchase.WeightedAverageCost(dec("10"), dec("2"), dec("10"), dec("4"))
	assert.True(t, got.Equal(dec("3")), "esperado 3, obtenido %s", got)
}

func TestWeightedAverageCost_StockCero(t *testing.T) {
	// Sin stock previo el costo pasa a ser el de la recepción.
	got := purchase.WeightedAverageCost(dec("0"), dec("2"), dec("5"), dec("4"))
	assert.True(t, got.Equal(dec("4")))
}

func TestWeightedAverageCost_SinRecepcionConservaCosto(t *testing.T) {
	// Suma no positiva (nada en juego): se conserva el costo actual.
	got := purchase.WeightedAverageCost(dec("0"), dec("2.75"), dec("0"), dec("9"))
	assert.True(t, got.Equal(dec("2.75")))
}
