package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/core/services"
	"github.com/fakturko/sef_backoffice/internal/dto"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	mockInvoiceRepo  *MockInvoiceRepository
	mockPaymentRepo  *MockPaymentRepository
	mockCurrencyRepo *MockCurrencyRepository
	service          portssvc.InvoiceSvcFacade

	ctx       context.Context
	companyID string
	userID    string
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.service = services.NewInvoiceService(
		suite.mockInvoiceRepo,
		suite.mockPaymentRepo,
		suite.mockCurrencyRepo,
		allowAll(),
	)

	suite.ctx = context.Background()
	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.mockCurrencyRepo.On("FindCurrencyByCode", mock.Anything, "RSD").
		Return(&domain.Currency{CurrencyCode: "RSD", Precision: 2}, nil).Maybe()
}

func (suite *InvoiceServiceTestSuite) createRequest(lines []dto.CreateInvoiceLineRequest) dto.CreateInvoiceRequest {
	issue := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return dto.CreateInvoiceRequest{
		InvoiceNumber: "2025-0042",
		Direction:     domain.Outgoing,
		PartnerName:   "Kupac DOO",
		PartnerPIB:    "100001011",
		CurrencyCode:  "RSD",
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
		Lines:         lines,
	}
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_ComputesTotals() {
	req := suite.createRequest([]dto.CreateInvoiceLineRequest{
		{Description: "Usluga", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5000), TaxRate: decimal.NewFromInt(20)},
	})

	suite.mockInvoiceRepo.On("SaveInvoice", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	invoice, err := suite.service.CreateInvoice(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("60000", invoice.TotalAmount.String())
	suite.Equal("10000", invoice.TaxAmount.String())
	suite.Equal(domain.InvoiceDraft, invoice.Status)
	suite.Equal(domain.Unpaid, invoice.PaymentStatus)
	suite.Require().Len(invoice.Lines, 1)
	suite.Equal("50000", invoice.Lines[0].BaseAmount.String())
	suite.Equal(1, invoice.Lines[0].LineNumber)
	suite.mockInvoiceRepo.AssertExpectations(suite.T())
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_RoundsPerLine() {
	// Three lines at 33.335: per-line rounding gives 33.34 each, so the
	// base total is 100.02 rather than round(100.005) = 100.01.
	line := dto.CreateInvoiceLineRequest{
		Description: "Artikal",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString("33.335"),
		TaxRate:     decimal.NewFromInt(20),
	}
	req := suite.createRequest([]dto.CreateInvoiceLineRequest{line, line, line})

	suite.mockInvoiceRepo.On("SaveInvoice", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	invoice, err := suite.service.CreateInvoice(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("100.02", invoice.TotalAmount.Sub(invoice.TaxAmount).StringFixed(2))
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_RejectsBadLine() {
	req := suite.createRequest([]dto.CreateInvoiceLineRequest{
		{Description: "Negativna kolicina", Quantity: decimal.NewFromInt(-1), UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(20)},
	})

	_, err := suite.service.CreateInvoice(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "SaveInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_RejectsInvalidPIB() {
	req := suite.createRequest([]dto.CreateInvoiceLineRequest{
		{Description: "Usluga", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(20)},
	})
	req.PartnerPIB = "123456789" // bad checksum

	_, err := suite.service.CreateInvoice(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_RejectsDivergingDeclaredTotals() {
	req := suite.createRequest([]dto.CreateInvoiceLineRequest{
		{Description: "Usluga", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5000), TaxRate: decimal.NewFromInt(20)},
	})
	declaredTotal := decimal.NewFromInt(60100)
	declaredTax := decimal.NewFromInt(10000)
	req.DeclaredTotalAmount = &declaredTotal
	req.DeclaredTaxAmount = &declaredTax

	_, err := suite.service.CreateInvoice(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDeclaredTotalsDiffer)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "SaveInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_AcceptsDeclaredTotalsWithinTolerance() {
	req := suite.createRequest([]dto.CreateInvoiceLineRequest{
		{Description: "Usluga", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5000), TaxRate: decimal.NewFromInt(20)},
	})
	declaredTotal := decimal.RequireFromString("60000.01")
	declaredTax := decimal.NewFromInt(10000)
	req.DeclaredTotalAmount = &declaredTotal
	req.DeclaredTaxAmount = &declaredTax

	suite.mockInvoiceRepo.On("SaveInvoice", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := suite.service.CreateInvoice(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoiceStatus_ValidTransition() {
	invoice := &domain.Invoice{
		InvoiceID: uuid.NewString(),
		CompanyID: suite.companyID,
		Direction: domain.Outgoing,
		Status:    domain.InvoiceDraft,
	}
	suite.mockInvoiceRepo.On("FindInvoiceByID", mock.Anything, invoice.InvoiceID).Return(invoice, nil)
	suite.mockInvoiceRepo.On("UpdateInvoiceStatus", mock.Anything, invoice.InvoiceID, domain.InvoiceSent, suite.userID, mock.Anything).Return(nil)

	updated, err := suite.service.UpdateInvoiceStatus(suite.ctx, suite.companyID, invoice.InvoiceID, domain.InvoiceSent, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.InvoiceSent, updated.Status)
}

func (suite *InvoiceServiceTestSuite) TestUpdateInvoiceStatus_InvalidTransition() {
	invoice := &domain.Invoice{
		InvoiceID: uuid.NewString(),
		CompanyID: suite.companyID,
		Direction: domain.Outgoing,
		Status:    domain.InvoiceDraft,
	}
	suite.mockInvoiceRepo.On("FindInvoiceByID", mock.Anything, invoice.InvoiceID).Return(invoice, nil)

	_, err := suite.service.UpdateInvoiceStatus(suite.ctx, suite.companyID, invoice.InvoiceID, domain.InvoiceAccepted, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
}

func (suite *InvoiceServiceTestSuite) TestCancelInvoice_RejectedWhenPaid() {
	invoice := &domain.Invoice{
		InvoiceID:  uuid.NewString(),
		CompanyID:  suite.companyID,
		Direction:  domain.Outgoing,
		Status:     domain.InvoiceSent,
		PaidAmount: decimal.NewFromInt(100),
	}
	suite.mockInvoiceRepo.On("FindInvoiceByID", mock.Anything, invoice.InvoiceID).Return(invoice, nil)

	_, err := suite.service.CancelInvoice(suite.ctx, suite.companyID, invoice.InvoiceID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCancelWithPayments)
	suite.mockInvoiceRepo.AssertNotCalled(suite.T(), "UpdateInvoiceStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestGetInvoiceByID_CrossTenantReadsAsNotFound() {
	invoice := &domain.Invoice{
		InvoiceID: uuid.NewString(),
		CompanyID: uuid.NewString(), // different tenant
	}
	suite.mockInvoiceRepo.On("FindInvoiceByID", mock.Anything, invoice.InvoiceID).Return(invoice, nil)

	_, err := suite.service.GetInvoiceByID(suite.ctx, suite.companyID, invoice.InvoiceID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *InvoiceServiceTestSuite) TestVerifyDeclaredTotals_ReportsEachMismatch() {
	req := dto.VerifyTotalsRequest{
		Lines: []dto.CreateInvoiceLineRequest{
			{Description: "Usluga", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(20)},
		},
		DeclaredTotalAmount: decimal.NewFromInt(250), // calculated 240
		DeclaredTaxAmount:   decimal.NewFromInt(40),
	}

	totals, discrepancies, err := suite.service.VerifyDeclaredTotals(suite.ctx, req)

	suite.Require().NoError(err)
	suite.Equal("240", totals.TaxInclusive.String())
	suite.Require().Len(discrepancies, 2) // taxExclusive and taxInclusive both off by 10
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
