package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Restaurante-api/internal/application/fulfillment"
	"github.com/jhoicas/Restaurante-api/internal/application/purchase"
	"github.com/jhoicas/Restaurante-api/internal/domain/repository"
)

// Ensure TxRunner implements fulfillment.TxRunner and purchase.TxRunner.
var _ fulfillment.TxRunner = (*TxRunner)(nil)
var _ purchase.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con los
// repositorios atados a esa tx. Es la unidad de trabajo atómica del motor:
// pre-chequeo, mutaciones y entradas de ledger commitean juntas o nada.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del camino de fulfillment
// y hace Commit si fn retorna nil, Rollback si no.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	menuItemRepo repository.MenuItemRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewStockMovementRepository(tx)
	ingredientRepo := NewIngredientRepository(tx)
	menuItemRepo := NewMenuItemRepository(tx)

	if err := fn(movRepo, ingredientRepo, menuItemRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunPurchase inicia una transacción con los repos del camino de recepción de
// órdenes de compra (MarkAsReceived).
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewStockMovementRepository(tx)
	ingredientRepo := NewIngredientRepository(tx)
	poRepo := NewPurchaseOrderRepository(tx)

	if err := fn(movRepo, ingredientRepo, poRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
