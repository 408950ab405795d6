package mapping

import (
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	"github.com/fakturko/sef_backoffice/internal/models"
)

// ToModelCompany converts a domain Company to a model Company
func ToModelCompany(d domain.Company) models.Company {
	return models.Company{
		CompanyID:           d.CompanyID,
		Name:                d.Name,
		PIB:                 d.PIB,
		RegistrationNumber:  d.RegistrationNumber,
		Address:             d.Address,
		DefaultCurrencyCode: d.DefaultCurrencyCode,
		IsActive:            d.IsActive,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCompany converts a model Company to a domain Company
func ToDomainCompany(m models.Company) domain.Company {
	return domain.Company{
		CompanyID:           m.CompanyID,
		Name:                m.Name,
		PIB:                 m.PIB,
		RegistrationNumber:  m.RegistrationNumber,
		Address:             m.Address,
		DefaultCurrencyCode: m.DefaultCurrencyCode,
		IsActive:            m.IsActive,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelUserCompany converts a domain UserCompany to a model UserCompany
func ToModelUserCompany(d domain.UserCompany) models.UserCompany {
	return models.UserCompany{
		UserID:    d.UserID,
		CompanyID: d.CompanyID,
		Role:      models.UserCompanyRole(d.Role),
		JoinedAt:  d.JoinedAt,
	}
}

// ToDomainUserCompany converts a model UserCompany to a domain UserCompany.
// UserName is not stored on the membership row; callers join it in when needed.
func ToDomainUserCompany(m models.UserCompany) domain.UserCompany {
	return domain.UserCompany{
		UserID:    m.UserID,
		CompanyID: m.CompanyID,
		Role:      domain.UserCompanyRole(m.Role),
		JoinedAt:  m.JoinedAt,
	}
}
