package accounting_test

import (
	"testing"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/utils/accounting"
	"github.com/fakturko/sef_backoffice/internal/utils/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(qty, price, rate int64) accounting.LineInput {
	return accounting.LineInput{
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(price),
		TaxRate:   decimal.NewFromInt(rate),
	}
}

func TestCalculateLineSingle(t *testing.T) {
	// 10 * 5000 at 20% -> base 50000, tax 10000, total 60000
	amounts, err := accounting.CalculateLine(line(10, 5000, 20))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50000).Equal(amounts.BaseAmount))
	assert.True(t, decimal.NewFromInt(10000).Equal(amounts.TaxAmount))
	assert.True(t, decimal.NewFromInt(60000).Equal(amounts.Amount))
}

func TestCalculateLineRoundsPerComponent(t *testing.T) {
	// 3 * 33.333 = 99.999 -> 100.00; 100.00 * 20% = 20.00
	in := accounting.LineInput{
		Quantity:  decimal.NewFromInt(3),
		UnitPrice: decimal.RequireFromString("33.333"),
		TaxRate:   decimal.NewFromInt(20),
	}
	amounts, err := accounting.CalculateLine(in)
	require.NoError(t, err)
	assert.Equal(t, "100.00", amounts.BaseAmount.StringFixed(2))
	assert.Equal(t, "20.00", amounts.TaxAmount.StringFixed(2))
	assert.Equal(t, "120.00", amounts.Amount.StringFixed(2))
}

func TestCalculateLineRejectsBadInput(t *testing.T) {
	testCases := []struct {
		name string
		in   accounting.LineInput
	}{
		{"zero quantity", line(0, 100, 20)},
		{"negative quantity", line(-1, 100, 20)},
		{"negative price", line(1, -100, 20)},
		{"rate above 100", line(1, 100, 101)},
		{"negative rate", line(1, 100, -1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := accounting.CalculateLine(tc.in)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestCalculateTotalsRoundThenSum(t *testing.T) {
	// Two 20% lines: 20*5000 and 5*8000 -> base 140000, tax 28000, total 168000.
	// Per-line rounding must not accumulate a naive single-rounding drift.
	totals, amounts, err := accounting.CalculateTotals([]accounting.LineInput{
		line(20, 5000, 20),
		line(5, 8000, 20),
	})
	require.NoError(t, err)
	require.Len(t, amounts, 2)
	assert.Equal(t, "140000.00", totals.TaxExclusive.StringFixed(2))
	assert.Equal(t, "28000.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "168000.00", totals.TaxInclusive.StringFixed(2))
}

func TestCalculateTotalsLineIndexInError(t *testing.T) {
	_, _, err := accounting.CalculateTotals([]accounting.LineInput{
		line(1, 100, 20),
		line(1, 100, 200),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestValidateDeclaredTotals(t *testing.T) {
	calculated := accounting.InvoiceTotals{
		TaxExclusive: decimal.NewFromInt(100000),
		Tax:          decimal.NewFromInt(20000),
		TaxInclusive: decimal.NewFromInt(120000),
	}

	t.Run("within tolerance", func(t *testing.T) {
		declared := accounting.InvoiceTotals{
			TaxExclusive: decimal.RequireFromString("100000.01"),
			Tax:          decimal.RequireFromString("19999.99"),
			TaxInclusive: decimal.NewFromInt(120000),
		}
		assert.Empty(t, accounting.ValidateDeclaredTotals(calculated, declared, money.DefaultTolerance))
	})

	t.Run("reports every mismatch", func(t *testing.T) {
		// The sample document's 16666.67 tax on a 100000 base at 20% is
		// inconsistent with round2 arithmetic and must be flagged.
		declared := accounting.InvoiceTotals{
			TaxExclusive: decimal.NewFromInt(100000),
			Tax:          decimal.RequireFromString("16666.67"),
			TaxInclusive: decimal.RequireFromString("116666.67"),
		}
		discrepancies := accounting.ValidateDeclaredTotals(calculated, declared, money.DefaultTolerance)
		require.Len(t, discrepancies, 2)
		assert.Equal(t, "tax", discrepancies[0].Field)
		assert.Equal(t, "taxInclusive", discrepancies[1].Field)
		assert.Equal(t, "20000.00", discrepancies[0].Calculated.StringFixed(2))
		assert.Equal(t, "16666.67", discrepancies[0].Declared.StringFixed(2))
	})
}
