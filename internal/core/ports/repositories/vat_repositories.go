package repositories

import (
	"context"
	"time"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// VATReportReader defines read operations for VAT period reports
type VATReportReader interface {
	// FindReportByID retrieves a specific report.
	FindReportByID(ctx context.Context, reportID string) (*domain.VATPeriodReport, error)

	// FindReportByPeriod retrieves the report for (companyID, year, month).
	FindReportByPeriod(ctx context.Context, companyID string, year, month int) (*domain.VATPeriodReport, error)

	// ListReportsByCompany retrieves all reports of a company, newest first.
	ListReportsByCompany(ctx context.Context, companyID string) ([]domain.VATPeriodReport, error)
}

// VATReportWriter defines write operations for VAT period reports
type VATReportWriter interface {
	// UpsertReport inserts or overwrites the report keyed by
	// (companyID, year, month). Overwriting a SUBMITTED report is rejected
	// with ErrConflict.
	UpsertReport(ctx context.Context, report domain.VATPeriodReport) (*domain.VATPeriodReport, error)

	// MarkSubmitted transitions a report to SUBMITTED, stamping the time.
	// Already-submitted reports are rejected with ErrConflict.
	MarkSubmitted(ctx context.Context, reportID string, submittedAt time.Time, updatedBy string) error

	// DeleteReport removes a report. SUBMITTED reports are rejected with
	// ErrConflict, never silently ignored.
	DeleteReport(ctx context.Context, reportID string) error
}

// VATReportRepositoryFacade combines all VAT report repository interfaces
type VATReportRepositoryFacade interface {
	VATReportReader
	VATReportWriter
}
