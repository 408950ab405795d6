package utils_test

import (
	"testing"

	"github.com/fakturko/sef_backoffice/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestValidatePIB(t *testing.T) {
	valid := []string{"100001011", "123456788", "105735000", "206534134", "876543219"}
	for _, pib := range valid {
		assert.True(t, utils.ValidatePIB(pib), "expected %s to be valid", pib)
	}

	invalid := []string{
		"",
		"12345678",    // too short
		"1234567890",  // too long
		"123456789",   // wrong check digit
		"12345678a",   // non-digit
		"abcdefghi",   // letters
		" 123456788",  // whitespace
	}
	for _, pib := range invalid {
		assert.False(t, utils.ValidatePIB(pib), "expected %s to be invalid", pib)
	}
}
