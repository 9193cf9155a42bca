package repository

import (
	"context"

	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para PurchaseOrder.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la cabecera para serializar recepciones concurrentes.
	GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.PurchaseOrder, error)
	Update(ctx context.Context, po *entity.PurchaseOrder) error
	List(ctx context.Context, restaurantID, status string, limit, offset int) ([]*entity.PurchaseOrder, error)
	// NextOrderNumber asigna el siguiente consecutivo PO-<año>-<n> del restaurante.
	NextOrderNumber(ctx context.Context, restaurantID string, year int) (string, error)
}
