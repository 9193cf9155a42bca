package ledger_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Restaurante-api/internal/domain"
	"github.com/jhoicas/Restaurante-api/internal/domain/entity"
	"github.com/jhoicas/Restaurante-api/internal/domain/ledger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// SignedDelta — el signo que implica cada tipo de movimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestSignedDelta_PorTipo(t *testing.T) {
	cases := []struct {
		name     string
		movType  string
		quantity string
		want     string
	}{
		{"purchase suma", entity.MovementTypePurchase, "5", "5"},
		{"return suma", entity.MovementTypeReturn, "3.5", "3.5"},
		{"consumption resta", entity.MovementTypeConsumption, "2", "-2"},
		{"waste resta", entity.MovementTypeWaste, "0.25", "-0.25"},
		{"adjustment conserva signo positivo", entity.MovementTypeAdjustment, "4", "4"},
		{"adjustment conserva signo negativo", entity.MovementTypeAdjustment, "-4", "-4"},
		{"transfer conserva signo", entity.MovementTypeTransfer, "-1.5", "-1.5"},
		// La magnitud entra en valor absoluto: un consumption con cantidad
		// negativa por error del caller sigue restando, nunca suma.
		{"purchase normaliza magnitud", entity.MovementTypePurchase, "-5", "5"},
		{"consumption normaliza magnitud", entity.MovementTypeConsumption, "-2", "-2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ledger.SignedDelta(tc.movType, dec(tc.quantity))
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.want)), "esperado %s, obtenido %s", tc.want, got)
		})
	}
}

func TestSignedDelta_TipoDesconocido(t *testing.T) {
	_, err := ledger.SignedDelta("teleport", dec("1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput),
		"un tipo de movimiento desconocido debe mapear a ErrInvalidInput")
}

// ──────────────────────────────────────────────────────────────────────────────
// Fold — plegado del historial a la cantidad acumulada
// ──────────────────────────────────────────────────────────────────────────────

func TestFold_HistorialMixto(t *testing.T) {
	entries := []*entity.StockMovement{
		{Type: entity.MovementTypePurchase, Quantity: dec("10")},
		{Type: entity.MovementTypeConsumption, Quantity: dec("3")},
		{Type: entity.MovementTypeWaste, Quantity: dec("1")},
		{Type: entity.MovementTypeAdjustment, Quantity: dec("-2")},
		{Type: entity.MovementTypeReturn, Quantity: dec("3")},
	}
	total, err := ledger.Fold(entries)
	require.NoError(t, err)
	// 10 - 3 - 1 - 2 + 3 = 7
	assert.True(t, total.Equal(dec("7")), "el plegado debe dar 7, dio %s", total)
}

func TestFold_HistorialVacioEsCero(t *testing.T) {
	total, err := ledger.Fold(nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "sin movimientos el acumulado es cero")
}

func TestFold_EntradaCorruptaPropagaError(t *testing.T) {
	entries := []*entity.StockMovement{
		{Type: entity.MovementTypePurchase, Quantity: dec("10")},
		{Type: "???", Quantity: dec("1")},
	}
	_, err := ledger.Fold(entries)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validate — coherencia interna de una entrada antes de persistir
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_EntradaCoherente(t *testing.T) {
	m := &entity.StockMovement{
		Type:          entity.MovementTypeConsumption,
		ReferenceID:   "ing-1",
		Quantity:      dec("2"),
		PreviousStock: dec("10"),
		NewStock:      dec("8"),
	}
	assert.NoError(t, ledger.Validate(m))
}

func TestValidate_DeltaNoCoincideConSnapshots(t *testing.T) {
	m := &entity.StockMovement{
		Type:          entity.MovementTypeConsumption,
		ReferenceID:   "ing-1",
		Quantity:      dec("2"),
		PreviousStock: dec("10"),
		NewStock:      dec("9"), // debería ser 8
	}
	err := ledger.Validate(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))

	var viol *domain.InvariantViolationError
	require.True(t, errors.As(err, &viol))
	assert.Equal(t, "ing-1", viol.ReferenceID)
}

func TestValidate_StockNegativoRechazado(t *testing.T) {
	// El delta coincide pero el resultado queda bajo cero: jamás se persiste.
	m := &entity.StockMovement{
		Type:          entity.MovementTypeAdjustment,
		ReferenceID:   "ing-2",
		Quantity:      dec("-5"),
		PreviousStock: dec("1"),
		NewStock:      dec("-4"),
	}
	err := ledger.Validate(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvariantViolation))
}

func TestValidate_StockExactamenteCeroEsValido(t *testing.T) {
	m := &entity.StockMovement{
		Type:          entity.MovementTypeConsumption,
		ReferenceID:   "ing-3",
		Quantity:      dec("10"),
		PreviousStock: dec("10"),
		NewStock:      dec("0"),
	}
	assert.NoError(t, ledger.Validate(m), "consumir hasta cero exacto es legal")
}
