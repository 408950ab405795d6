package pgsql

import (
	"context"
	"errors"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	"github.com/fakturko/sef_backoffice/internal/models"
	"github.com/fakturko/sef_backoffice/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCompanyRepository struct {
	BaseRepository
}

// newPgxCompanyRepository creates a new repository for company data.
func newPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCompanyRepository implements portsrepo.CompanyRepositoryFacade
var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

const companySelectQuery = `
SELECT c.company_id, c.name, c.pib, c.registration_number, c.address,
       c.default_currency_code, c.is_active,
       c.created_at, c.created_by, c.last_updated_at, c.last_updated_by
FROM companies c
`

func scanCompany(row pgx.Row) (models.Company, error) {
	var m models.Company
	err := row.Scan(
		&m.CompanyID,
		&m.Name,
		&m.PIB,
		&m.RegistrationNumber,
		&m.Address,
		&m.DefaultCurrencyCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	model := mapping.ToModelCompany(company)
	query := `
		INSERT INTO companies (
			company_id, name, pib, registration_number, address,
			default_currency_code, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		model.CompanyID,
		model.Name,
		model.PIB,
		model.RegistrationNumber,
		model.Address,
		model.DefaultCurrencyCode,
		model.IsActive,
		model.CreatedAt,
		model.CreatedBy,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewAppError(409, "company with PIB "+company.PIB+" already exists", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert company", err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := companySelectQuery + `WHERE c.company_id = $1;`
	model, err := scanCompany(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("company " + companyID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query company "+companyID, err)
	}
	company := mapping.ToDomainCompany(model)
	return &company, nil
}

func (r *PgxCompanyRepository) ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error) {
	query := companySelectQuery + `
		JOIN user_companies uc ON uc.company_id = c.company_id
		WHERE uc.user_id = $1 AND uc.role != 'REMOVED'
		ORDER BY c.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query companies for user "+userID, err)
	}
	defer rows.Close()

	modelCompanies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Company, error) {
		return scanCompany(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect company rows", err)
	}

	companies := make([]domain.Company, len(modelCompanies))
	for i, m := range modelCompanies {
		companies[i] = mapping.ToDomainCompany(m)
	}
	return companies, nil
}

func (r *PgxCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	model := mapping.ToModelCompany(company)
	query := `
		UPDATE companies
		SET name = $2, address = $3, default_currency_code = $4, is_active = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE company_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		model.CompanyID,
		model.Name,
		model.Address,
		model.DefaultCurrencyCode,
		model.IsActive,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update company "+company.CompanyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("company " + company.CompanyID + " not found")
	}
	return nil
}

func (r *PgxCompanyRepository) AddUserToCompany(ctx context.Context, membership domain.UserCompany) error {
	model := mapping.ToModelUserCompany(membership)
	// Re-adding a previously removed user revives the membership with the new role.
	query := `
		INSERT INTO user_companies (user_id, company_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, company_id) DO UPDATE SET role = EXCLUDED.role;
	`
	_, err := r.Pool.Exec(ctx, query,
		model.UserID,
		model.CompanyID,
		model.Role,
		model.JoinedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add user to company", err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindUserCompanyRole(ctx context.Context, userID, companyID string) (*domain.UserCompany, error) {
	query := `
		SELECT user_id, company_id, role, joined_at
		FROM user_companies
		WHERE user_id = $1 AND company_id = $2 AND role != 'REMOVED';
	`
	var m models.UserCompany
	err := r.Pool.QueryRow(ctx, query, userID, companyID).Scan(
		&m.UserID,
		&m.CompanyID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user " + userID + " is not a member of company " + companyID)
		}
		return nil, apperrors.NewAppError(500, "failed to query membership", err)
	}
	membership := mapping.ToDomainUserCompany(m)
	return &membership, nil
}
