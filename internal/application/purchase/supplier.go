package purchase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// SupplierInput datos de alta/edición de un proveedor.
type SupplierInput struct {
	RestaurantID string
	Name         string
	ContactName  string
	Email        string
	Phone        string
	Address      string
}

// CreateSupplier da de alta un proveedor del restaurante.
func (uc *UseCase) CreateSupplier(ctx context.Context, input SupplierInput) (*entity.Supplier, error) {
	if input.RestaurantID == "" || input.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:           uuid.New().String(),
		RestaurantID: input.RestaurantID,
		Name:         input.Name,
		ContactName:  input.ContactName,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.supplierRepo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSupplier edita los datos de contacto de un proveedor.
func (uc *UseCase) UpdateSupplier(ctx context.Context, id string, input SupplierInput) (*entity.Supplier, error) {
	if id == "" || input.RestaurantID == "" || input.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.supplierRepo.GetByID(ctx, id, input.RestaurantID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	s.Name = input.Name
	s.ContactName = input.ContactName
	s.Email = input.Email
	s.Phone = input.Phone
	s.Address = input.Address
	s.UpdatedAt = time.Now()
	if err := uc.supplierRepo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListSuppliers lista los proveedores del restaurante.
func (uc *UseCase) ListSuppliers(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Supplier, error) {
	return uc.supplierRepo.ListByRestaurant(ctx, restaurantID, limit, offset)
}

// DeactivateSupplier marca el proveedor como inactivo.
func (uc *UseCase) DeactivateSupplier(ctx context.Context, id, restaurantID string) error {
	s, err := uc.supplierRepo.GetByID(ctx, id, restaurantID)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.ErrNotFound
	}
	return uc.supplierRepo.Deactivate(ctx, id, restaurantID)
}
