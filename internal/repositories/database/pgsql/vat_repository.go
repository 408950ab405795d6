package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	"github.com/fakturko/sef_backoffice/internal/models"
	"github.com/fakturko/sef_backoffice/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxVATReportRepository struct {
	BaseRepository
}

// newPgxVATReportRepository creates a new repository for VAT period reports.
func newPgxVATReportRepository(pool *pgxpool.Pool) portsrepo.VATReportRepositoryFacade {
	return &PgxVATReportRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxVATReportRepository implements portsrepo.VATReportRepositoryFacade
var _ portsrepo.VATReportRepositoryFacade = (*PgxVATReportRepository)(nil)

const vatReportColumns = `
	report_id, company_id, year, month, period_type, status, submitted_at,
	output_base_20, output_vat_20, output_base_10, output_vat_10, output_base_0,
	input_base_20, input_vat_20, input_base_10, input_vat_10, input_base_0,
	output_base_total, output_vat_total, input_base_total, input_vat_total,
	vat_payable, vat_refund,
	created_at, created_by, last_updated_at, last_updated_by`

const vatReportSelectQuery = `SELECT` + vatReportColumns + `
FROM vat_reports
`

func scanVATReport(row pgx.Row) (models.VATReport, error) {
	var m models.VATReport
	err := row.Scan(
		&m.ReportID,
		&m.CompanyID,
		&m.Year,
		&m.Month,
		&m.PeriodType,
		&m.Status,
		&m.SubmittedAt,
		&m.OutputBase20,
		&m.OutputVAT20,
		&m.OutputBase10,
		&m.OutputVAT10,
		&m.OutputBase0,
		&m.InputBase20,
		&m.InputVAT20,
		&m.InputBase10,
		&m.InputVAT10,
		&m.InputBase0,
		&m.OutputBaseTotal,
		&m.OutputVATTotal,
		&m.InputBaseTotal,
		&m.InputVATTotal,
		&m.VATPayable,
		&m.VATRefund,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxVATReportRepository) FindReportByID(ctx context.Context, reportID string) (*domain.VATPeriodReport, error) {
	query := vatReportSelectQuery + `WHERE report_id = $1;`
	model, err := scanVATReport(r.Pool.QueryRow(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("VAT report " + reportID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query VAT report "+reportID, err)
	}
	report := mapping.ToDomainVATReport(model)
	return &report, nil
}

func (r *PgxVATReportRepository) FindReportByPeriod(ctx context.Context, companyID string, year, month int) (*domain.VATPeriodReport, error) {
	query := vatReportSelectQuery + `WHERE company_id = $1 AND year = $2 AND month = $3;`
	model, err := scanVATReport(r.Pool.QueryRow(ctx, query, companyID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no VAT report for the requested period")
		}
		return nil, apperrors.NewAppError(500, "failed to query VAT report by period", err)
	}
	report := mapping.ToDomainVATReport(model)
	return &report, nil
}

func (r *PgxVATReportRepository) ListReportsByCompany(ctx context.Context, companyID string) ([]domain.VATPeriodReport, error) {
	query := vatReportSelectQuery + `WHERE company_id = $1 ORDER BY year DESC, month DESC;`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query VAT reports for company "+companyID, err)
	}
	defer rows.Close()

	modelReports, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.VATReport, error) {
		return scanVATReport(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect VAT report rows", err)
	}

	reports := make([]domain.VATPeriodReport, len(modelReports))
	for i, m := range modelReports {
		reports[i] = mapping.ToDomainVATReport(m)
	}
	return reports, nil
}

// UpsertReport inserts or overwrites the report keyed by
// (company_id, year, month). The DO UPDATE clause is guarded so a SUBMITTED
// report is never overwritten; in that case no row comes back and the caller
// gets ErrConflict. The existing report_id and creation audit survive a
// recalculation.
func (r *PgxVATReportRepository) UpsertReport(ctx context.Context, report domain.VATPeriodReport) (*domain.VATPeriodReport, error) {
	model := mapping.ToModelVATReport(report)
	query := `
		INSERT INTO vat_reports (` + vatReportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
		ON CONFLICT (company_id, year, month) DO UPDATE SET
			period_type = EXCLUDED.period_type,
			status = EXCLUDED.status,
			output_base_20 = EXCLUDED.output_base_20,
			output_vat_20 = EXCLUDED.output_vat_20,
			output_base_10 = EXCLUDED.output_base_10,
			output_vat_10 = EXCLUDED.output_vat_10,
			output_base_0 = EXCLUDED.output_base_0,
			input_base_20 = EXCLUDED.input_base_20,
			input_vat_20 = EXCLUDED.input_vat_20,
			input_base_10 = EXCLUDED.input_base_10,
			input_vat_10 = EXCLUDED.input_vat_10,
			input_base_0 = EXCLUDED.input_base_0,
			output_base_total = EXCLUDED.output_base_total,
			output_vat_total = EXCLUDED.output_vat_total,
			input_base_total = EXCLUDED.input_base_total,
			input_vat_total = EXCLUDED.input_vat_total,
			vat_payable = EXCLUDED.vat_payable,
			vat_refund = EXCLUDED.vat_refund,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		WHERE vat_reports.status != 'SUBMITTED'
		RETURNING` + vatReportColumns + `;`

	saved, err := scanVATReport(r.Pool.QueryRow(ctx, query,
		model.ReportID,
		model.CompanyID,
		model.Year,
		model.Month,
		model.PeriodType,
		model.Status,
		model.SubmittedAt,
		model.OutputBase20,
		model.OutputVAT20,
		model.OutputBase10,
		model.OutputVAT10,
		model.OutputBase0,
		model.InputBase20,
		model.InputVAT20,
		model.InputBase10,
		model.InputVAT10,
		model.InputBase0,
		model.OutputBaseTotal,
		model.OutputVATTotal,
		model.InputBaseTotal,
		model.InputVATTotal,
		model.VATPayable,
		model.VATRefund,
		model.CreatedAt,
		model.CreatedBy,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflictError("VAT report for this period is already submitted")
		}
		return nil, apperrors.NewAppError(500, "failed to upsert VAT report", err)
	}

	result := mapping.ToDomainVATReport(saved)
	return &result, nil
}

// MarkSubmitted transitions a CALCULATED report to SUBMITTED. A report that is
// already submitted yields ErrConflict.
func (r *PgxVATReportRepository) MarkSubmitted(ctx context.Context, reportID string, submittedAt time.Time, updatedBy string) error {
	query := `
		UPDATE vat_reports
		SET status = 'SUBMITTED', submitted_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE report_id = $1 AND status = 'CALCULATED';
	`
	tag, err := r.Pool.Exec(ctx, query, reportID, submittedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark VAT report "+reportID+" submitted", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("VAT report " + reportID + " is missing or already submitted")
	}
	return nil
}

// DeleteReport removes a report that has not been submitted.
func (r *PgxVATReportRepository) DeleteReport(ctx context.Context, reportID string) error {
	query := `DELETE FROM vat_reports WHERE report_id = $1 AND status != 'SUBMITTED';`
	tag, err := r.Pool.Exec(ctx, query, reportID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete VAT report "+reportID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("VAT report " + reportID + " is missing or already submitted")
	}
	return nil
}
