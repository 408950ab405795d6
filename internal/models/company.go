package models

import "time"

// Company represents a row of the companies table.
type Company struct {
	CompanyID           string  `db:"company_id"`
	Name                string  `db:"name"`
	PIB                 string  `db:"pib"`
	RegistrationNumber  string  `db:"registration_number"`
	Address             string  `db:"address"`
	DefaultCurrencyCode *string `db:"default_currency_code"`
	IsActive            bool    `db:"is_active"`
	AuditFields
}

// UserCompanyRole mirrors domain.UserCompanyRole at the storage layer.
type UserCompanyRole string

// UserCompany represents a row of the user_companies membership table.
type UserCompany struct {
	UserID    string          `db:"user_id"`
	CompanyID string          `db:"company_id"`
	Role      UserCompanyRole `db:"role"`
	JoinedAt  time.Time       `db:"joined_at"`
	AuditFields
}
