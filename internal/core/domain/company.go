package domain

import "time"

// Company represents a tenant: a business registered for Serbian e-invoicing,
// owning its invoices, bank statements, payments and VAT reports.
type Company struct {
	CompanyID           string  `json:"companyID"` // Primary Key (e.g., UUID)
	Name                string  `json:"name"`      // Registered business name
	PIB                 string  `json:"pib"`       // 9-digit tax identification number
	RegistrationNumber  string  `json:"registrationNumber"`
	Address             string  `json:"address"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode"` // e.g., "RSD"
	IsActive            bool    `json:"isActive"`
	AuditFields
}

// UserCompanyRole defines the possible roles a user can have within a company.
type UserCompanyRole string

const (
	RoleAdmin    UserCompanyRole = "ADMIN"
	RoleMember   UserCompanyRole = "MEMBER"
	RoleReadOnly UserCompanyRole = "READONLY"
	RoleRemoved  UserCompanyRole = "REMOVED"
)

// UserCompany represents the membership of a User in a Company.
type UserCompany struct {
	UserID    string          `json:"userID"`
	UserName  string          `json:"userName"`
	CompanyID string          `json:"companyID"`
	Role      UserCompanyRole `json:"role"`
	JoinedAt  time.Time       `json:"joinedAt"`
}
