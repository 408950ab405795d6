package dto

import (
	"time"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// CreateCompanyRequest defines the data needed to create a new company.
type CreateCompanyRequest struct {
	Name                string  `json:"name" binding:"required"`
	PIB                 string  `json:"pib" binding:"required,len=9,numeric"`
	RegistrationNumber  string  `json:"registrationNumber" binding:"omitempty,len=8,numeric"`
	Address             string  `json:"address"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode"` // Optional, defaults to RSD
}

// AddUserToCompanyRequest defines the data for adding a member to a company.
type AddUserToCompanyRequest struct {
	UserID string                 `json:"userID" binding:"required"`
	Role   domain.UserCompanyRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// CompanyResponse defines the data returned for a company.
type CompanyResponse struct {
	CompanyID           string    `json:"companyID"`
	Name                string    `json:"name"`
	PIB                 string    `json:"pib"`
	RegistrationNumber  string    `json:"registrationNumber"`
	Address             string    `json:"address"`
	DefaultCurrencyCode string    `json:"defaultCurrencyCode"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	CreatedBy           string    `json:"createdBy"`
	LastUpdatedAt       time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy       string    `json:"lastUpdatedBy"`
}

// ListCompaniesResponse wraps the list of companies a user belongs to.
type ListCompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
}

// ToCompanyResponse converts a domain.Company to CompanyResponse DTO
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	resp := CompanyResponse{
		CompanyID:          c.CompanyID,
		Name:               c.Name,
		PIB:                c.PIB,
		RegistrationNumber: c.RegistrationNumber,
		Address:            c.Address,
		IsActive:           c.IsActive,
		CreatedAt:          c.CreatedAt,
		CreatedBy:          c.CreatedBy,
		LastUpdatedAt:      c.LastUpdatedAt,
		LastUpdatedBy:      c.LastUpdatedBy,
	}
	if c.DefaultCurrencyCode != nil {
		resp.DefaultCurrencyCode = *c.DefaultCurrencyCode
	}
	return resp
}

// ToListCompaniesResponse converts a slice of domain.Company to ListCompaniesResponse DTO
func ToListCompaniesResponse(companies []domain.Company) ListCompaniesResponse {
	res := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		res[i] = ToCompanyResponse(&c)
	}
	return ListCompaniesResponse{Companies: res}
}
