package domain

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "RSD")
	Symbol       string `json:"symbol"`       // e.g., "дин."
	Name         string `json:"name"`         // e.g., "Serbian Dinar"
	Precision    int    `json:"precision"`    // Display decimal places, 2 for RSD
	AuditFields
}
