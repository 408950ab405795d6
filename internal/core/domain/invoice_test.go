package domain_test

import (
	"testing"
	"time"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		name  string
		paid  decimal.Decimal
		total decimal.Decimal
		want  domain.PaymentStatus
	}{
		{
			name:  "nothing paid",
			paid:  decimal.Zero,
			total: decimal.NewFromInt(1200),
			want:  domain.Unpaid,
		},
		{
			name:  "partially paid",
			paid:  decimal.NewFromInt(500),
			total: decimal.NewFromInt(1200),
			want:  domain.PartiallyPaid,
		},
		{
			name:  "fully paid",
			paid:  decimal.NewFromInt(1200),
			total: decimal.NewFromInt(1200),
			want:  domain.Paid,
		},
		{
			name:  "paid above total still counts as paid",
			paid:  decimal.NewFromFloat(1200.01),
			total: decimal.NewFromInt(1200),
			want:  domain.Paid,
		},
		{
			name:  "zero total invoice is never paid",
			paid:  decimal.Zero,
			total: decimal.Zero,
			want:  domain.Unpaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.PaymentStatusFor(tt.paid, tt.total)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvoice_RemainingAmount(t *testing.T) {
	inv := domain.Invoice{
		TotalAmount: decimal.NewFromFloat(1200.50),
		PaidAmount:  decimal.NewFromFloat(200.50),
	}

	assert.True(t, inv.RemainingAmount().Equal(decimal.NewFromInt(1000)))
	assert.True(t, inv.IsOpen())

	inv.PaidAmount = inv.TotalAmount
	assert.True(t, inv.RemainingAmount().IsZero())
	assert.False(t, inv.IsOpen())
}

func TestVATPeriodRange(t *testing.T) {
	tests := []struct {
		name       string
		year       int
		month      int
		periodType domain.VATPeriodType
		wantStart  time.Time
		wantEndDay time.Time
	}{
		{
			name:       "monthly period covers the calendar month",
			year:       2025,
			month:      3,
			periodType: domain.Monthly,
			wantStart:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			wantEndDay: time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "quarterly period snaps to the containing quarter",
			year:       2025,
			month:      5,
			periodType: domain.Quarterly,
			wantStart:  time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
			wantEndDay: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "december of a quarterly payer ends the year",
			year:       2024,
			month:      12,
			periodType: domain.Quarterly,
			wantStart:  time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
			wantEndDay: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "february of a leap year",
			year:       2024,
			month:      2,
			periodType: domain.Monthly,
			wantStart:  time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEndDay: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := domain.VATPeriodRange(tt.year, tt.month, tt.periodType)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEndDay.Year(), end.Year())
			assert.Equal(t, tt.wantEndDay.Month(), end.Month())
			assert.Equal(t, tt.wantEndDay.Day(), end.Day())
		})
	}
}

func TestVATPeriodType_Code(t *testing.T) {
	assert.Equal(t, "M", domain.Monthly.Code())
	assert.Equal(t, "K", domain.Quarterly.Code())
}
