package repository

import (
	"context"

	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id, restaurantID string) (*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) error
	ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Supplier, error)
	Deactivate(ctx context.Context, id, restaurantID string) error
}
