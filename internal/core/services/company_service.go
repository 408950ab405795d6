package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/utils"
)

// companyService implements the CompanySvcFacade interface
type companyService struct {
	BaseService
	companyRepo  portsrepo.CompanyRepositoryFacade
	currencyRepo portsrepo.CurrencyReader
}

// NewCompanyService creates a new company service with the provided dependencies
func NewCompanyService(
	companyRepo portsrepo.CompanyRepositoryFacade,
	currencyRepo portsrepo.CurrencyReader,
) portssvc.CompanySvcFacade {
	return &companyService{
		companyRepo:  companyRepo,
		currencyRepo: currencyRepo,
	}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// FindCompanyByID retrieves a company by its ID
func (s *companyService) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find company by ID",
				slog.String("company_id", companyID))
		}
		return nil, err
	}
	return company, nil
}

// ListUserCompanies retrieves all companies a user belongs to
func (s *companyService) ListUserCompanies(ctx context.Context, userID string, includeDisabled bool) ([]domain.Company, error) {
	companies, err := s.companyRepo.ListCompaniesByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list companies for user",
			slog.String("user_id", userID))
		return nil, err
	}

	if !includeDisabled {
		active := companies[:0]
		for _, c := range companies {
			if c.IsActive {
				active = append(active, c)
			}
		}
		companies = active
	}

	if companies == nil {
		return []domain.Company{}, nil
	}
	return companies, nil
}

// CreateCompany creates a new company after validating its tax number
func (s *companyService) CreateCompany(ctx context.Context, name, pib, registrationNumber, address, defaultCurrencyCode, creatorUserID string) (*domain.Company, error) {
	if !utils.ValidatePIB(pib) {
		s.LogDebug(ctx, "Rejected company with invalid PIB",
			slog.String("pib", pib))
		return nil, fmt.Errorf("%w: PIB failed checksum validation", apperrors.ErrValidation)
	}

	// Validate currency if specified
	if defaultCurrencyCode != "" && s.currencyRepo != nil {
		_, err := s.currencyRepo.FindCurrencyByCode(ctx, defaultCurrencyCode)
		if err != nil {
			s.LogError(ctx, err, "Invalid default currency code",
				slog.String("currency_code", defaultCurrencyCode))
			return nil, fmt.Errorf("invalid default currency code: %w", err)
		}
	}

	now := time.Now()
	company := domain.Company{
		CompanyID:          uuid.NewString(),
		Name:               name,
		PIB:                pib,
		RegistrationNumber: registrationNumber,
		Address:            address,
		IsActive:           true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if defaultCurrencyCode != "" {
		company.DefaultCurrencyCode = &defaultCurrencyCode
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		s.LogError(ctx, err, "Failed to save company",
			slog.String("company_id", company.CompanyID))
		return nil, err
	}

	// Add creator as an admin to the new company
	if err := s.AddUserToCompany(ctx, creatorUserID, creatorUserID, company.CompanyID, domain.RoleAdmin); err != nil {
		s.LogError(ctx, err, "Failed to add creator as admin to new company",
			slog.String("company_id", company.CompanyID),
			slog.String("user_id", creatorUserID))
	}

	s.LogInfo(ctx, "Company created successfully",
		slog.String("company_id", company.CompanyID),
		slog.String("pib", company.PIB),
		slog.String("creator_id", creatorUserID))
	return &company, nil
}

// DeactivateCompany marks a company as inactive
func (s *companyService) DeactivateCompany(ctx context.Context, companyID string, requestingUserID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return err
	}

	company.IsActive = false
	company.LastUpdatedAt = time.Now()
	company.LastUpdatedBy = requestingUserID

	if err := s.companyRepo.UpdateCompany(ctx, *company); err != nil {
		s.LogError(ctx, err, "Failed to deactivate company",
			slog.String("company_id", companyID))
		return err
	}

	s.LogInfo(ctx, "Company deactivated",
		slog.String("company_id", companyID),
		slog.String("user_id", requestingUserID))
	return nil
}

// AddUserToCompany adds a user to a company with a specific role
func (s *companyService) AddUserToCompany(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.UserCompanyRole) error {
	// Self-assignment is permitted so the creator can add themselves as admin.
	if addingUserID != targetUserID {
		if err := s.AuthorizeUserAction(ctx, addingUserID, companyID, domain.RoleAdmin); err != nil {
			s.LogError(ctx, err, "User not authorized to add members to company",
				slog.String("adding_user_id", addingUserID),
				slog.String("company_id", companyID))
			return err
		}
	}

	membership := domain.UserCompany{
		UserID:    targetUserID,
		CompanyID: companyID,
		Role:      role,
		JoinedAt:  time.Now(),
	}

	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add user to company",
			slog.String("target_user_id", targetUserID),
			slog.String("company_id", companyID))
		return err
	}

	s.LogInfo(ctx, "User added to company successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("company_id", companyID),
		slog.String("role", string(role)))
	return nil
}

// AuthorizeUserAction checks if a user has required permissions for a company
func (s *companyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.UserCompanyRole) error {
	membership, err := s.companyRepo.FindUserCompanyRole(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of company",
				slog.String("user_id", userID),
				slog.String("company_id", companyID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to find user company role",
			slog.String("user_id", userID),
			slog.String("company_id", companyID))
		return err
	}

	if !hasRequiredRole(membership.Role, requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("company_id", companyID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.UserCompanyRole) bool {
	switch requiredRole {
	case domain.RoleReadOnly:
		return userRole == domain.RoleReadOnly || userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleMember:
		return userRole == domain.RoleMember || userRole == domain.RoleAdmin
	case domain.RoleAdmin:
		return userRole == domain.RoleAdmin
	default:
		return false
	}
}
