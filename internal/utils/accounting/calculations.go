package accounting

import (
	"fmt"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/utils/money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineInput is the raw material of one invoice position.
type LineInput struct {
	Quantity  decimal.Decimal // > 0
	UnitPrice decimal.Decimal // >= 0
	TaxRate   decimal.Decimal // Percent, within [0, 100]
}

// LineAmounts are the derived per-line monetary fields, each rounded to 2
// decimals at the line level as the statutory rounding requires.
type LineAmounts struct {
	BaseAmount decimal.Decimal // round2(Quantity * UnitPrice)
	TaxAmount  decimal.Decimal // round2(BaseAmount * TaxRate / 100)
	Amount     decimal.Decimal // round2(BaseAmount + TaxAmount)
}

// InvoiceTotals are the aggregate monetary fields of an invoice.
type InvoiceTotals struct {
	TaxExclusive decimal.Decimal `json:"taxExclusive"`
	Tax          decimal.Decimal `json:"tax"`
	TaxInclusive decimal.Decimal `json:"taxInclusive"`
}

// Discrepancy describes a declared total that disagrees with the calculated
// one beyond tolerance. Returned as a list so a batch validation can surface
// all mismatches at once instead of failing on the first.
type Discrepancy struct {
	Field      string          `json:"field"`
	Calculated decimal.Decimal `json:"calculated"`
	Declared   decimal.Decimal `json:"declared"`
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("%s: calculated %s, declared %s", d.Field, d.Calculated.StringFixed(2), d.Declared.StringFixed(2))
}

// ValidateLineInput rejects malformed line inputs before any computation.
func ValidateLineInput(line LineInput) error {
	if !line.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", apperrors.ErrValidation, line.Quantity)
	}
	if line.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative, got %s", apperrors.ErrValidation, line.UnitPrice)
	}
	if line.TaxRate.IsNegative() || line.TaxRate.GreaterThan(hundred) {
		return fmt.Errorf("%w: tax rate must be within [0, 100], got %s", apperrors.ErrValidation, line.TaxRate)
	}
	return nil
}

// CalculateLine derives the monetary fields of a single line.
func CalculateLine(line LineInput) (LineAmounts, error) {
	if err := ValidateLineInput(line); err != nil {
		return LineAmounts{}, err
	}
	base := money.Round2(line.Quantity.Mul(line.UnitPrice))
	tax := money.Round2(base.Mul(line.TaxRate).Div(hundred))
	return LineAmounts{
		BaseAmount: base,
		TaxAmount:  tax,
		Amount:     money.Round2(base.Add(tax)),
	}, nil
}

// CalculateTotals derives per-line amounts and the invoice aggregates.
// Each line is rounded first and the rounded components are then summed;
// sum-then-round is deliberately not used, matching per-line statutory
// rounding.
func CalculateTotals(lines []LineInput) (InvoiceTotals, []LineAmounts, error) {
	amounts := make([]LineAmounts, len(lines))
	totals := InvoiceTotals{
		TaxExclusive: decimal.Zero,
		Tax:          decimal.Zero,
		TaxInclusive: decimal.Zero,
	}
	for i, line := range lines {
		la, err := CalculateLine(line)
		if err != nil {
			return InvoiceTotals{}, nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		amounts[i] = la
		totals.TaxExclusive = totals.TaxExclusive.Add(la.BaseAmount)
		totals.Tax = totals.Tax.Add(la.TaxAmount)
		totals.TaxInclusive = totals.TaxInclusive.Add(la.Amount)
	}
	totals.TaxExclusive = money.Round2(totals.TaxExclusive)
	totals.Tax = money.Round2(totals.Tax)
	totals.TaxInclusive = money.Round2(totals.TaxInclusive)
	return totals, amounts, nil
}

// ValidateDeclaredTotals compares externally declared totals (e.g. from an
// imported document) against calculated ones within the given tolerance and
// returns one discrepancy per mismatching field. An empty result means the
// declaration is consistent.
func ValidateDeclaredTotals(calculated, declared InvoiceTotals, tolerance decimal.Decimal) []Discrepancy {
	var discrepancies []Discrepancy
	if !money.WithinTolerance(calculated.TaxExclusive, declared.TaxExclusive, tolerance) {
		discrepancies = append(discrepancies, Discrepancy{"taxExclusive", calculated.TaxExclusive, declared.TaxExclusive})
	}
	if !money.WithinTolerance(calculated.Tax, declared.Tax, tolerance) {
		discrepancies = append(discrepancies, Discrepancy{"tax", calculated.Tax, declared.Tax})
	}
	if !money.WithinTolerance(calculated.TaxInclusive, declared.TaxInclusive, tolerance) {
		discrepancies = append(discrepancies, Discrepancy{"taxInclusive", calculated.TaxInclusive, declared.TaxInclusive})
	}
	return discrepancies
}
