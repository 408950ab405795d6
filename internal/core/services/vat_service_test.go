package services_test

import (
	"context"
	"encoding/xml"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/core/services"
)

type VATServiceTestSuite struct {
	suite.Suite
	mockVATRepo     *MockVATRepository
	mockInvoiceRepo *MockInvoiceRepository
	mockCompanyRepo *MockCompanyRepository
	service         portssvc.VATSvcFacade

	ctx       context.Context
	companyID string
	userID    string
}

func (suite *VATServiceTestSuite) SetupTest() {
	suite.mockVATRepo = new(MockVATRepository)
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.mockCompanyRepo = new(MockCompanyRepository)
	suite.service = services.NewVATService(
		suite.mockVATRepo,
		suite.mockInvoiceRepo,
		suite.mockCompanyRepo,
		allowAll(),
	)

	suite.ctx = context.Background()
	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func line(base, tax, rate string) domain.InvoiceLine {
	return domain.InvoiceLine{
		LineID:     uuid.NewString(),
		BaseAmount: decimal.RequireFromString(base),
		TaxAmount:  decimal.RequireFromString(tax),
		TaxRate:    decimal.RequireFromString(rate),
	}
}

func (suite *VATServiceTestSuite) TestCalculateVATPeriod_BucketsByRate() {
	outputLines := []domain.InvoiceLine{
		line("50000", "10000", "20"),
		line("20000", "2000", "10"),
		line("5000", "0", "0"),
	}
	inputLines := []domain.InvoiceLine{
		line("30000", "6000", "20"),
	}

	suite.mockInvoiceRepo.On("FindLinesForPeriod", mock.Anything, suite.companyID, domain.Outgoing,
		mock.Anything, mock.Anything, mock.Anything).Return(outputLines, nil)
	suite.mockInvoiceRepo.On("FindLinesForPeriod", mock.Anything, suite.companyID, domain.Incoming,
		mock.Anything, mock.Anything, mock.Anything).Return(inputLines, nil)

	data, err := suite.service.CalculateVATPeriod(suite.ctx, suite.companyID, 2025, 3, domain.Monthly, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("50000", data.OutputBase20.String())
	suite.Equal("10000", data.OutputVAT20.String())
	suite.Equal("20000", data.OutputBase10.String())
	suite.Equal("2000", data.OutputVAT10.String())
	suite.Equal("5000", data.OutputBase0.String())
	suite.Equal("75000", data.OutputBaseTotal.String())
	suite.Equal("12000", data.OutputVATTotal.String())
	suite.Equal("30000", data.InputBase20.String())
	suite.Equal("6000", data.InputVATTotal.String())
	suite.Equal("6000", data.VATPayable.String())
	suite.True(data.VATRefund.IsZero())
}

func (suite *VATServiceTestSuite) TestCalculateVATPeriod_RefundWhenInputExceedsOutput() {
	outputLines := []domain.InvoiceLine{line("10000", "2000", "20")}
	inputLines := []domain.InvoiceLine{line("40000", "8000", "20")}

	suite.mockInvoiceRepo.On("FindLinesForPeriod", mock.Anything, suite.companyID, domain.Outgoing,
		mock.Anything, mock.Anything, mock.Anything).Return(outputLines, nil)
	suite.mockInvoiceRepo.On("FindLinesForPeriod", mock.Anything, suite.companyID, domain.Incoming,
		mock.Anything, mock.Anything, mock.Anything).Return(inputLines, nil)

	data, err := suite.service.CalculateVATPeriod(suite.ctx, suite.companyID, 2025, 3, domain.Monthly, suite.userID)

	suite.Require().NoError(err)
	suite.True(data.VATPayable.IsZero())
	suite.Equal("6000", data.VATRefund.String())
}

func (suite *VATServiceTestSuite) TestCalculateVATPeriod_QuarterWindow() {
	var capturedFrom, capturedTo time.Time
	empty := []domain.InvoiceLine{}

	suite.mockInvoiceRepo.On("FindLinesForPeriod", mock.Anything, suite.companyID, domain.Outgoing,
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedFrom = args.Get(4).(time.Time)
			capturedTo = args.Get(5).(time.Time)
		}).Return(empty, nil)
	suite.mockInvoiceRepo.On("FindLinesForPeriod", mock.Anything, suite.companyID, domain.Incoming,
		mock.Anything, mock.Anything, mock.Anything).Return(empty, nil)

	// Month 5 belongs to Q2: April through June.
	_, err := suite.service.CalculateVATPeriod(suite.ctx, suite.companyID, 2025, 5, domain.Quarterly, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), capturedFrom)
	suite.Equal(time.Month(6), capturedTo.Month())
	suite.Equal(2025, capturedTo.Year())
}

func (suite *VATServiceTestSuite) TestCalculateVATPeriod_RejectsBadMonth() {
	_, err := suite.service.CalculateVATPeriod(suite.ctx, suite.companyID, 2025, 13, domain.Monthly, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidPeriod)
}

func (suite *VATServiceTestSuite) TestSaveVATReport_Upserts() {
	empty := []domain.InvoiceLine{}
	suite.mockInvoiceRepo.On("FindLinesForPeriod", mock.Anything, suite.companyID, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(empty, nil)
	suite.mockVATRepo.On("UpsertReport", mock.Anything, mock.MatchedBy(func(r domain.VATPeriodReport) bool {
		return r.CompanyID == suite.companyID &&
			r.Year == 2025 && r.Month == 3 &&
			r.Status == domain.ReportCalculated
	})).Return(&domain.VATPeriodReport{
		ReportID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Year:      2025,
		Month:     3,
		Status:    domain.ReportCalculated,
	}, nil)

	report, err := suite.service.SaveVATReport(suite.ctx, suite.companyID, 2025, 3, domain.Monthly, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.ReportCalculated, report.Status)
	suite.mockVATRepo.AssertExpectations(suite.T())
}

func (suite *VATServiceTestSuite) TestSubmitVATReport_Transitions() {
	report := &domain.VATPeriodReport{
		ReportID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Year:      2025,
		Month:     3,
		Status:    domain.ReportCalculated,
	}
	suite.mockVATRepo.On("FindReportByID", mock.Anything, report.ReportID).Return(report, nil)
	suite.mockVATRepo.On("MarkSubmitted", mock.Anything, report.ReportID, mock.Anything, suite.userID).Return(nil)

	submitted, err := suite.service.SubmitVATReport(suite.ctx, suite.companyID, report.ReportID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.ReportSubmitted, submitted.Status)
	suite.NotNil(submitted.SubmittedAt)
}

func (suite *VATServiceTestSuite) TestSubmitVATReport_AlreadySubmittedRejected() {
	submittedAt := time.Now()
	report := &domain.VATPeriodReport{
		ReportID:    uuid.NewString(),
		CompanyID:   suite.companyID,
		Status:      domain.ReportSubmitted,
		SubmittedAt: &submittedAt,
	}
	suite.mockVATRepo.On("FindReportByID", mock.Anything, report.ReportID).Return(report, nil)

	_, err := suite.service.SubmitVATReport(suite.ctx, suite.companyID, report.ReportID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrReportSubmitted)
	suite.mockVATRepo.AssertNotCalled(suite.T(), "MarkSubmitted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VATServiceTestSuite) TestDeleteVATReport_SubmittedRejected() {
	submittedAt := time.Now()
	report := &domain.VATPeriodReport{
		ReportID:    uuid.NewString(),
		CompanyID:   suite.companyID,
		Status:      domain.ReportSubmitted,
		SubmittedAt: &submittedAt,
	}
	suite.mockVATRepo.On("FindReportByID", mock.Anything, report.ReportID).Return(report, nil)

	err := suite.service.DeleteVATReport(suite.ctx, suite.companyID, report.ReportID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrReportSubmitted)
	suite.mockVATRepo.AssertNotCalled(suite.T(), "DeleteReport", mock.Anything, mock.Anything)
}

func (suite *VATServiceTestSuite) TestExportVATReportXML() {
	report := &domain.VATPeriodReport{
		ReportID:   uuid.NewString(),
		CompanyID:  suite.companyID,
		Year:       2025,
		Month:      3,
		PeriodType: domain.Monthly,
		Status:     domain.ReportCalculated,
		VATPeriodData: domain.VATPeriodData{
			OutputBase20:    decimal.RequireFromString("50000"),
			OutputVAT20:     decimal.RequireFromString("10000"),
			OutputBaseTotal: decimal.RequireFromString("50000"),
			OutputVATTotal:  decimal.RequireFromString("10000"),
			VATPayable:      decimal.RequireFromString("10000"),
			VATRefund:       decimal.Zero,
		},
	}
	company := &domain.Company{
		CompanyID: suite.companyID,
		Name:      "Preduzeće \"Zvezda\" & sinovi",
		PIB:       "100001011",
	}
	suite.mockVATRepo.On("FindReportByID", mock.Anything, report.ReportID).Return(report, nil)
	suite.mockCompanyRepo.On("FindCompanyByID", mock.Anything, suite.companyID).Return(company, nil)

	raw, err := suite.service.ExportVATReportXML(suite.ctx, suite.companyID, report.ReportID, suite.userID)

	suite.Require().NoError(err)
	suite.Contains(string(raw), "<PIB>100001011</PIB>")
	suite.Contains(string(raw), "<TipPerioda>M</TipPerioda>")
	suite.Contains(string(raw), "<PrometPDV20>10000.00</PrometPDV20>")
	suite.Contains(string(raw), "&amp;") // company name stays entity-escaped

	// The document must round-trip through the stdlib decoder.
	var decoded struct {
		PIB   string `xml:"PIB"`
		Name  string `xml:"NazivObveznika"`
		Year  int    `xml:"Godina"`
		Month int    `xml:"Mesec"`
	}
	suite.Require().NoError(xml.Unmarshal(raw, &decoded))
	suite.Equal(company.Name, decoded.Name)
	suite.Equal(2025, decoded.Year)
}

func TestVATService(t *testing.T) {
	suite.Run(t, new(VATServiceTestSuite))
}
