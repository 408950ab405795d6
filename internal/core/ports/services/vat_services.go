package services

import (
	"context"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// VATReaderSvc defines read operations for VAT period reports
type VATReaderSvc interface {
	// GetVATReportByID retrieves a stored VAT period report.
	GetVATReportByID(ctx context.Context, companyID, reportID, userID string) (*domain.VATPeriodReport, error)

	// ListVATReports retrieves all stored VAT reports for a company.
	ListVATReports(ctx context.Context, companyID, userID string) ([]domain.VATPeriodReport, error)
}

// VATCalculatorSvc defines the period aggregation operations
type VATCalculatorSvc interface {
	// CalculateVATPeriod aggregates invoice lines for the given period
	// into the tax return field set. It does not persist anything.
	CalculateVATPeriod(ctx context.Context, companyID string, year, month int, periodType domain.VATPeriodType, userID string) (*domain.VATPeriodData, error)
}

// VATWriterSvc defines persistence operations for VAT reports
type VATWriterSvc interface {
	// SaveVATReport calculates and stores a report for the period,
	// replacing any previous calculation that was not yet submitted.
	SaveVATReport(ctx context.Context, companyID string, year, month int, periodType domain.VATPeriodType, userID string) (*domain.VATPeriodReport, error)

	// SubmitVATReport marks a report as submitted, freezing it.
	SubmitVATReport(ctx context.Context, companyID, reportID, userID string) (*domain.VATPeriodReport, error)

	// DeleteVATReport removes a report that was not yet submitted.
	DeleteVATReport(ctx context.Context, companyID, reportID, userID string) error
}

// VATExporterSvc defines export operations for VAT reports
type VATExporterSvc interface {
	// ExportVATReportXML renders a stored report as the tax return XML
	// document.
	ExportVATReportXML(ctx context.Context, companyID, reportID, userID string) ([]byte, error)
}

// VATSvcFacade combines all VAT-related service interfaces
type VATSvcFacade interface {
	VATReaderSvc
	VATCalculatorSvc
	VATWriterSvc
	VATExporterSvc
}
