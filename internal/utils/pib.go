package utils

// ValidatePIB checks a Serbian tax identification number: exactly 9 digits
// with a valid ISO 7064 MOD 11,10 check digit.
func ValidatePIB(pib string) bool {
	if len(pib) != 9 {
		return false
	}
	for _, r := range pib {
		if r < '0' || r > '9' {
			return false
		}
	}

	sum := 10
	for i := 0; i < 8; i++ {
		sum = (sum + int(pib[i]-'0')) % 10
		if sum == 0 {
			sum = 10
		}
		sum = (sum * 2) % 11
	}
	check := (11 - sum) % 10
	return check == int(pib[8]-'0')
}
