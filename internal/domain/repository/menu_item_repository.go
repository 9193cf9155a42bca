package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
)

// MenuItemRepository define el puerto de lectura/stock de platos de la carta.
// El CRUD de menú vive fuera del motor; aquí solo importan los campos de stock.
type MenuItemRepository interface {
	GetByID(ctx context.Context, id, restaurantID string) (*entity.MenuItem, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id, restaurantID string) (*entity.MenuItem, error)
	// UpdateStock escribe amount y available en la misma transacción del ledger.
	UpdateStock(ctx context.Context, id string, amount decimal.Decimal, available bool) error
	ListActive(ctx context.Context, restaurantID string, limit, offset int) ([]*entity.MenuItem, error)
}
