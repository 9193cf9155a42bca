package purchase

import "github.com/shopspring/decimal"

// WeightedAverageCost recalcula el costo promedio ponderado de un insumo al
// recibir mercadería:
//
//	nuevo = ((stockActual * costoActual) + (cantRecibida * costoRecibido)) / (stockActual + cantRecibida)
func WeightedAverageCost(currentStock, currentCost, receivedQty, receivedCost decimal.Decimal) decimal.Decimal {
	sum := currentStock.Add(receivedQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return currentCost
	}
	num := currentStock.Mul(currentCost).Add(receivedQty.Mul(receivedCost))
	return num.Div(sum)
}
