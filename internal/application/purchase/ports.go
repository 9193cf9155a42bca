package purchase

import (
	"context"

	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios que necesita la recepción de mercadería atados a esa tx.
type TxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		ingredientRepo repository.IngredientRepository,
		poRepo repository.PurchaseOrderRepository,
	) error) error
}

// PDFGenerator genera la representación imprimible de una orden de compra
// para enviarla al proveedor.
type PDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, po *entity.PurchaseOrder, supplier *entity.Supplier) ([]byte, error)
}
