package money_test

import (
	"math"
	"testing"

	"github.com/fakturko/sef_backoffice/internal/utils/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"plain dot decimal", "1234.56", "1234.56", true},
		{"comma decimal", "1234,56", "1234.56", true},
		{"serbian thousands", "1.234,56", "1234.56", true},
		{"english thousands", "1,234.56", "1234.56", true},
		{"whitespace trimmed", "  500,00 ", "500", true},
		{"integer", "60000", "60000", true},
		{"negative comma", "-42,10", "-42.1", true},
		{"empty", "", "0", false},
		{"garbage", "abc", "0", false},
		{"only spaces", "   ", "0", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := money.Parse(tc.input)
			assert.Equal(t, tc.ok, ok)
			expected, err := decimal.NewFromString(tc.expected)
			assert.NoError(t, err)
			assert.True(t, expected.Equal(d), "expected %s got %s", expected, d)
		})
	}
}

func TestParseOrFallsBack(t *testing.T) {
	fallback := decimal.NewFromInt(7)
	assert.True(t, fallback.Equal(money.ParseOr("not-a-number", fallback)))
	assert.True(t, decimal.NewFromFloat(12.5).Equal(money.ParseOr("12,5", fallback)))
}

func TestFromFloatGuardsNonFinite(t *testing.T) {
	fallback := decimal.Zero
	assert.True(t, money.FromFloat(math.NaN(), fallback).Equal(fallback))
	assert.True(t, money.FromFloat(math.Inf(1), fallback).Equal(fallback))
	assert.True(t, money.FromFloat(math.Inf(-1), fallback).Equal(fallback))
	assert.True(t, money.FromFloat(19.99, fallback).Equal(decimal.NewFromFloat(19.99)))
}

func TestRound2HalfUp(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"2.675", "2.68"},
		{"-1.005", "-1.01"},
		{"16666.666666", "16666.67"},
	}
	for _, tc := range testCases {
		in, _ := decimal.NewFromString(tc.input)
		want, _ := decimal.NewFromString(tc.expected)
		assert.True(t, want.Equal(money.Round2(in)), "round2(%s): expected %s got %s", tc.input, want, money.Round2(in))
	}
}

func TestWithinTolerance(t *testing.T) {
	a := decimal.NewFromFloat(100.00)
	b := decimal.NewFromFloat(100.01)
	c := decimal.NewFromFloat(100.02)

	assert.True(t, money.WithinTolerance(a, b, money.DefaultTolerance))
	assert.True(t, money.WithinTolerance(b, a, money.DefaultTolerance))
	assert.False(t, money.WithinTolerance(a, c, money.DefaultTolerance))
	assert.True(t, money.Equal(a, a))
}

func TestSum(t *testing.T) {
	total := money.Sum(
		decimal.NewFromInt(100),
		decimal.NewFromFloat(0.5),
		decimal.NewFromFloat(-0.25),
	)
	assert.True(t, decimal.NewFromFloat(100.25).Equal(total))
	assert.True(t, money.Sum().IsZero())
}

func TestFormatRSD(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"1234.56", "1.234,56 RSD"},
		{"60000", "60.000,00 RSD"},
		{"0", "0,00 RSD"},
		{"-9876543.21", "-9.876.543,21 RSD"},
		{"999", "999,00 RSD"},
		{"1000", "1.000,00 RSD"},
	}
	for _, tc := range testCases {
		in, _ := decimal.NewFromString(tc.input)
		assert.Equal(t, tc.expected, money.FormatRSD(in))
	}
}
