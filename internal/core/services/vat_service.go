package services

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/utils/money"
)

var (
	ErrReportSubmitted = errors.New("submitted report is immutable")
	ErrInvalidPeriod   = errors.New("invalid declaration period")
)

var (
	rate20 = decimal.NewFromInt(20)
	rate10 = decimal.NewFromInt(10)
)

// outputStatuses are the outgoing invoice statuses that enter the declaration.
var outputStatuses = []domain.InvoiceStatus{domain.InvoiceSent, domain.InvoiceDelivered, domain.InvoiceAccepted}

// inputStatuses are the incoming invoice statuses that enter the declaration.
var inputStatuses = []domain.InvoiceStatus{domain.InvoiceAccepted}

// vatService implements the VATSvcFacade interface
type vatService struct {
	BaseService
	vatRepo     portsrepo.VATReportRepositoryFacade
	invoiceRepo portsrepo.InvoiceReader
	companyRepo portsrepo.CompanyReader
}

// NewVATService creates a new VAT service with the provided dependencies
func NewVATService(
	vatRepo portsrepo.VATReportRepositoryFacade,
	invoiceRepo portsrepo.InvoiceReader,
	companyRepo portsrepo.CompanyReader,
	companyAuthorizer portssvc.CompanyAuthorizerSvc,
) portssvc.VATSvcFacade {
	return &vatService{
		BaseService: BaseService{CompanyAuthorizer: companyAuthorizer},
		vatRepo:     vatRepo,
		invoiceRepo: invoiceRepo,
		companyRepo: companyRepo,
	}
}

var _ portssvc.VATSvcFacade = (*vatService)(nil)

// GetVATReportByID retrieves a stored VAT period report
func (s *vatService) GetVATReportByID(ctx context.Context, companyID, reportID, userID string) (*domain.VATPeriodReport, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.reportForCompany(ctx, companyID, reportID)
}

// ListVATReports retrieves all stored VAT reports for a company
func (s *vatService) ListVATReports(ctx context.Context, companyID, userID string) ([]domain.VATPeriodReport, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	reports, err := s.vatRepo.ListReportsByCompany(ctx, companyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list VAT reports", slog.String("company_id", companyID))
		return nil, err
	}
	if reports == nil {
		return []domain.VATPeriodReport{}, nil
	}
	return reports, nil
}

// CalculateVATPeriod aggregates invoice lines for the period into the tax
// return field set without persisting anything
func (s *vatService) CalculateVATPeriod(ctx context.Context, companyID string, year, month int, periodType domain.VATPeriodType, userID string) (*domain.VATPeriodData, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}

	from, to := domain.VATPeriodRange(year, month, periodType)

	outputLines, err := s.invoiceRepo.FindLinesForPeriod(ctx, companyID, domain.Outgoing, outputStatuses, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to load outgoing lines for period", slog.String("company_id", companyID))
		return nil, err
	}
	inputLines, err := s.invoiceRepo.FindLinesForPeriod(ctx, companyID, domain.Incoming, inputStatuses, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to load incoming lines for period", slog.String("company_id", companyID))
		return nil, err
	}

	data := aggregatePeriod(outputLines, inputLines)

	s.LogDebug(ctx, "VAT period calculated",
		slog.String("company_id", companyID),
		slog.Int("year", year),
		slog.Int("month", month),
		slog.String("period_type", string(periodType)),
		slog.Int("output_lines", len(outputLines)),
		slog.Int("input_lines", len(inputLines)))
	return &data, nil
}

// SaveVATReport calculates and stores the report for the period
func (s *vatService) SaveVATReport(ctx context.Context, companyID string, year, month int, periodType domain.VATPeriodType, userID string) (*domain.VATPeriodReport, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	data, err := s.CalculateVATPeriod(ctx, companyID, year, month, periodType, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	report := domain.VATPeriodReport{
		ReportID:      uuid.NewString(),
		CompanyID:     companyID,
		Year:          year,
		Month:         month,
		PeriodType:    periodType,
		Status:        domain.ReportCalculated,
		VATPeriodData: *data,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	saved, err := s.vatRepo.UpsertReport(ctx, report)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: period %d-%02d", ErrReportSubmitted, year, month)
		}
		s.LogError(ctx, err, "Failed to save VAT report",
			slog.String("company_id", companyID),
			slog.Int("year", year),
			slog.Int("month", month))
		return nil, err
	}

	s.LogInfo(ctx, "VAT report saved",
		slog.String("report_id", saved.ReportID),
		slog.Int("year", year),
		slog.Int("month", month),
		slog.String("vat_payable", saved.VATPayable.StringFixed(2)),
		slog.String("vat_refund", saved.VATRefund.StringFixed(2)))
	return saved, nil
}

// SubmitVATReport marks a report as submitted, freezing it
func (s *vatService) SubmitVATReport(ctx context.Context, companyID, reportID, userID string) (*domain.VATPeriodReport, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	report, err := s.reportForCompany(ctx, companyID, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status == domain.ReportSubmitted {
		return nil, fmt.Errorf("%w: report %s", ErrReportSubmitted, reportID)
	}

	submittedAt := time.Now()
	if err := s.vatRepo.MarkSubmitted(ctx, reportID, submittedAt, userID); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to submit VAT report", slog.String("report_id", reportID))
		}
		return nil, err
	}

	report.Status = domain.ReportSubmitted
	report.SubmittedAt = &submittedAt
	report.LastUpdatedAt = submittedAt
	report.LastUpdatedBy = userID

	s.LogInfo(ctx, "VAT report submitted",
		slog.String("report_id", reportID),
		slog.Int("year", report.Year),
		slog.Int("month", report.Month))
	return report, nil
}

// DeleteVATReport removes a report that was not yet submitted
func (s *vatService) DeleteVATReport(ctx context.Context, companyID, reportID, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	report, err := s.reportForCompany(ctx, companyID, reportID)
	if err != nil {
		return err
	}
	if report.Status == domain.ReportSubmitted {
		return fmt.Errorf("%w: report %s", ErrReportSubmitted, reportID)
	}

	if err := s.vatRepo.DeleteReport(ctx, reportID); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to delete VAT report", slog.String("report_id", reportID))
		}
		return err
	}

	s.LogInfo(ctx, "VAT report deleted", slog.String("report_id", reportID))
	return nil
}

// pppdvDocument is the XML shape of the exported declaration.
type pppdvDocument struct {
	XMLName    xml.Name `xml:"PPPDV"`
	PIB        string   `xml:"PIB"`
	Name       string   `xml:"NazivObveznika"`
	Year       int      `xml:"Godina"`
	Month      int      `xml:"Mesec"`
	PeriodType string   `xml:"TipPerioda"`

	OutputBase20 string `xml:"PrometOsnovica20"`
	OutputVAT20  string `xml:"PrometPDV20"`
	OutputBase10 string `xml:"PrometOsnovica10"`
	OutputVAT10  string `xml:"PrometPDV10"`
	OutputBase0  string `xml:"PrometOslobodjen"`

	InputBase20 string `xml:"NabavkaOsnovica20"`
	InputVAT20  string `xml:"NabavkaPDV20"`
	InputBase10 string `xml:"NabavkaOsnovica10"`
	InputVAT10  string `xml:"NabavkaPDV10"`
	InputBase0  string `xml:"NabavkaOslobodjen"`

	OutputBaseTotal string `xml:"UkupanPrometOsnovica"`
	OutputVATTotal  string `xml:"UkupanPrometPDV"`
	InputBaseTotal  string `xml:"UkupnaNabavkaOsnovica"`
	InputVATTotal   string `xml:"UkupnaNabavkaPDV"`

	VATPayable string `xml:"PDVZaUplatu"`
	VATRefund  string `xml:"PDVZaPovracaj"`
}

// ExportVATReportXML renders a stored report as the tax return XML document
func (s *vatService) ExportVATReportXML(ctx context.Context, companyID, reportID, userID string) ([]byte, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	report, err := s.reportForCompany(ctx, companyID, reportID)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	doc := pppdvDocument{
		PIB:        company.PIB,
		Name:       company.Name,
		Year:       report.Year,
		Month:      report.Month,
		PeriodType: report.PeriodType.Code(),

		OutputBase20: report.OutputBase20.StringFixed(2),
		OutputVAT20:  report.OutputVAT20.StringFixed(2),
		OutputBase10: report.OutputBase10.StringFixed(2),
		OutputVAT10:  report.OutputVAT10.StringFixed(2),
		OutputBase0:  report.OutputBase0.StringFixed(2),

		InputBase20: report.InputBase20.StringFixed(2),
		InputVAT20:  report.InputVAT20.StringFixed(2),
		InputBase10: report.InputBase10.StringFixed(2),
		InputVAT10:  report.InputVAT10.StringFixed(2),
		InputBase0:  report.InputBase0.StringFixed(2),

		OutputBaseTotal: report.OutputBaseTotal.StringFixed(2),
		OutputVATTotal:  report.OutputVATTotal.StringFixed(2),
		InputBaseTotal:  report.InputBaseTotal.StringFixed(2),
		InputVATTotal:   report.InputVATTotal.StringFixed(2),

		VATPayable: report.VATPayable.StringFixed(2),
		VATRefund:  report.VATRefund.StringFixed(2),
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.LogError(ctx, err, "Failed to marshal VAT report XML", slog.String("report_id", reportID))
		return nil, err
	}

	return append([]byte(xml.Header), body...), nil
}

// reportForCompany loads a report and verifies tenant ownership.
func (s *vatService) reportForCompany(ctx context.Context, companyID, reportID string) (*domain.VATPeriodReport, error) {
	report, err := s.vatRepo.FindReportByID(ctx, reportID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find VAT report", slog.String("report_id", reportID))
		}
		return nil, err
	}
	if report.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return report, nil
}

// aggregatePeriod buckets line amounts by tax rate into the declaration
// fields. Raw line components are summed first and every declared field is
// then rounded independently.
func aggregatePeriod(outputLines, inputLines []domain.InvoiceLine) domain.VATPeriodData {
	var data domain.VATPeriodData

	outBase20, outVAT20, outBase10, outVAT10, outBase0 := bucketLines(outputLines)
	inBase20, inVAT20, inBase10, inVAT10, inBase0 := bucketLines(inputLines)

	data.OutputBase20 = money.Round2(outBase20)
	data.OutputVAT20 = money.Round2(outVAT20)
	data.OutputBase10 = money.Round2(outBase10)
	data.OutputVAT10 = money.Round2(outVAT10)
	data.OutputBase0 = money.Round2(outBase0)

	data.InputBase20 = money.Round2(inBase20)
	data.InputVAT20 = money.Round2(inVAT20)
	data.InputBase10 = money.Round2(inBase10)
	data.InputVAT10 = money.Round2(inVAT10)
	data.InputBase0 = money.Round2(inBase0)

	data.OutputBaseTotal = money.Round2(outBase20.Add(outBase10).Add(outBase0))
	data.OutputVATTotal = money.Round2(outVAT20.Add(outVAT10))
	data.InputBaseTotal = money.Round2(inBase20.Add(inBase10).Add(inBase0))
	data.InputVATTotal = money.Round2(inVAT20.Add(inVAT10))

	balance := data.OutputVATTotal.Sub(data.InputVATTotal)
	if balance.IsNegative() {
		data.VATPayable = decimal.Zero
		data.VATRefund = balance.Neg()
	} else {
		data.VATPayable = balance
		data.VATRefund = decimal.Zero
	}

	return data
}

// bucketLines splits raw line sums by tax rate. Rates other than 20 and 10
// land in the zero-rated/exempt base bucket.
func bucketLines(lines []domain.InvoiceLine) (base20, vat20, base10, vat10, base0 decimal.Decimal) {
	base20, vat20 = decimal.Zero, decimal.Zero
	base10, vat10 = decimal.Zero, decimal.Zero
	base0 = decimal.Zero
	for _, line := range lines {
		switch {
		case line.TaxRate.Equal(rate20):
			base20 = base20.Add(line.BaseAmount)
			vat20 = vat20.Add(line.TaxAmount)
		case line.TaxRate.Equal(rate10):
			base10 = base10.Add(line.BaseAmount)
			vat10 = vat10.Add(line.TaxAmount)
		default:
			base0 = base0.Add(line.BaseAmount)
		}
	}
	return
}
