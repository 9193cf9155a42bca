package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

const supplierColumns = `id, restaurant_id, name, contact_name, email, phone, address, is_active, created_at, updated_at`

// SupplierRepo implementación del puerto SupplierRepository sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de persistencia para proveedores. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// Create persiste un nuevo proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `
		INSERT INTO suppliers (` + supplierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.RestaurantID, s.Name, s.ContactName, s.Email, s.Phone, s.Address,
		s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetByID obtiene un proveedor por ID dentro del restaurante.
func (r *SupplierRepo) GetByID(ctx context.Context, id, restaurantID string) (*entity.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1 AND restaurant_id = $2`
	var s entity.Supplier
	err := r.q.QueryRow(ctx, query, id, restaurantID).Scan(
		&s.ID, &s.RestaurantID, &s.Name, &s.ContactName, &s.Email, &s.Phone, &s.Address,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// Update actualiza un proveedor existente.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $3, contact_name = $4, email = $5, phone = $6, address = $7, is_active = $8, updated_at = $9
		WHERE id = $1 AND restaurant_id = $2`
	cmd, err := r.q.Exec(ctx, query,
		s.ID, s.RestaurantID, s.Name, s.ContactName, s.Email, s.Phone, s.Address,
		s.IsActive, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByRestaurant lista los proveedores del restaurante con paginación.
func (r *SupplierRepo) ListByRestaurant(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.Supplier, error) {
	query := `
		SELECT ` + supplierColumns + `
		FROM suppliers WHERE restaurant_id = $1
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, restaurantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		err := rows.Scan(
			&s.ID, &s.RestaurantID, &s.Name, &s.ContactName, &s.Email, &s.Phone, &s.Address,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan supplier row: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Deactivate marca el proveedor como inactivo (soft delete).
func (r *SupplierRepo) Deactivate(ctx context.Context, id, restaurantID string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE suppliers SET is_active = false, updated_at = now() WHERE id = $1 AND restaurant_id = $2`,
		id, restaurantID,
	)
	if err != nil {
		return fmt.Errorf("deactivate supplier: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
