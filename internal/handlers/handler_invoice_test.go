package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/core/services"
	"github.com/fakturko/sef_backoffice/internal/dto"
	"github.com/fakturko/sef_backoffice/internal/middleware"
	"github.com/fakturko/sef_backoffice/internal/utils/accounting"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) GetInvoiceByID(ctx context.Context, companyID, invoiceID, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, companyID, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListInvoices(ctx context.Context, companyID string, req dto.ListInvoicesRequest, userID string) ([]domain.Invoice, string, error) {
	args := m.Called(ctx, companyID, req, userID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.String(1), args.Error(2)
}

func (m *MockInvoiceService) ListOpenInvoices(ctx context.Context, companyID, userID string) ([]domain.Invoice, error) {
	args := m.Called(ctx, companyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, companyID string, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) UpdateInvoiceStatus(ctx context.Context, companyID, invoiceID string, newStatus domain.InvoiceStatus, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, companyID, invoiceID, newStatus, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) CancelInvoice(ctx context.Context, companyID, invoiceID, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, companyID, invoiceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) VerifyDeclaredTotals(ctx context.Context, req dto.VerifyTotalsRequest) (*accounting.InvoiceTotals, []accounting.Discrepancy, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var discrepancies []accounting.Discrepancy
	if args.Get(1) != nil {
		discrepancies = args.Get(1).([]accounting.Discrepancy)
	}
	return args.Get(0).(*accounting.InvoiceTotals), discrepancies, args.Error(2)
}

// Ensure mock implements the interface
var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Test Suite ---
type InvoiceHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockInvoiceService *MockInvoiceService
	jwtSecret          string
}

func (suite *InvoiceHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "sef-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *InvoiceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockInvoiceService = new(MockInvoiceService)

	v1 := suite.router.Group("/api/v1/companies/:company_id")
	registerInvoiceRoutes(v1, suite.mockInvoiceService)
}

func (suite *InvoiceHandlerTestSuite) doRequest(method, url string, body any, userID string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_Success() {
	companyID := uuid.NewString()
	invoiceID := uuid.NewString()
	userID := uuid.NewString()

	expected := &domain.Invoice{
		InvoiceID:     invoiceID,
		CompanyID:     companyID,
		InvoiceNumber: "2025-001",
		Direction:     domain.Outgoing,
		Status:        domain.InvoiceSent,
		PaymentStatus: domain.Unpaid,
		CurrencyCode:  "RSD",
		TotalAmount:   decimal.NewFromInt(1200),
		TaxAmount:     decimal.NewFromInt(200),
		PaidAmount:    decimal.Zero,
	}

	suite.mockInvoiceService.On("GetInvoiceByID",
		mock.Anything, companyID, invoiceID, userID,
	).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/invoices/%s", companyID, invoiceID)
	w := suite.doRequest(http.MethodGet, url, nil, userID)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.InvoiceResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(invoiceID, body.InvoiceID)
	suite.Equal("2025-001", body.InvoiceNumber)
	suite.True(body.RemainingAmount.Equal(decimal.NewFromInt(1200)))

	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_NotFound() {
	companyID := uuid.NewString()
	invoiceID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockInvoiceService.On("GetInvoiceByID",
		mock.Anything, companyID, invoiceID, userID,
	).Return(nil, apperrors.NewNotFoundError("invoice not found")).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/invoices/%s", companyID, invoiceID)
	w := suite.doRequest(http.MethodGet, url, nil, userID)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_Unauthorized() {
	url := fmt.Sprintf("/api/v1/companies/%s/invoices/%s", uuid.NewString(), uuid.NewString())
	req, _ := http.NewRequest(http.MethodGet, url, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "GetInvoiceByID")
}

func (suite *InvoiceHandlerTestSuite) TestCreateInvoice_DeclaredTotalsDiffer() {
	companyID := uuid.NewString()
	userID := uuid.NewString()

	req := dto.CreateInvoiceRequest{
		InvoiceNumber: "2025-002",
		Direction:     domain.Outgoing,
		PartnerName:   "Kupac d.o.o.",
		CurrencyCode:  "RSD",
		IssueDate:     time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		Lines: []dto.CreateInvoiceLineRequest{
			{Description: "Usluga", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000), TaxRate: decimal.NewFromInt(20)},
		},
	}

	suite.mockInvoiceService.On("CreateInvoice",
		mock.Anything, companyID, mock.AnythingOfType("dto.CreateInvoiceRequest"), userID,
	).Return(nil, services.ErrDeclaredTotalsDiffer).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/invoices", companyID)
	w := suite.doRequest(http.MethodPost, url, req, userID)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestUpdateInvoiceStatus_InvalidTransition() {
	companyID := uuid.NewString()
	invoiceID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockInvoiceService.On("UpdateInvoiceStatus",
		mock.Anything, companyID, invoiceID, domain.InvoiceDraft, userID,
	).Return(nil, services.ErrInvalidTransition).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/invoices/%s/status", companyID, invoiceID)
	w := suite.doRequest(http.MethodPatch, url, dto.UpdateInvoiceStatusRequest{Status: domain.InvoiceDraft}, userID)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestVerifyTotals_ReportsDiscrepancies() {
	companyID := uuid.NewString()
	userID := uuid.NewString()

	req := dto.VerifyTotalsRequest{
		Lines: []dto.CreateInvoiceLineRequest{
			{Description: "Roba", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(500), TaxRate: decimal.NewFromInt(20)},
		},
		DeclaredTotalAmount: decimal.NewFromInt(1100),
		DeclaredTaxAmount:   decimal.NewFromInt(200),
	}

	totals := &accounting.InvoiceTotals{
		TaxExclusive: decimal.NewFromInt(1000),
		Tax:          decimal.NewFromInt(200),
		TaxInclusive: decimal.NewFromInt(1200),
	}
	discrepancies := []accounting.Discrepancy{
		{Field: "totalAmount", Calculated: decimal.NewFromInt(1200), Declared: decimal.NewFromInt(1100)},
	}

	suite.mockInvoiceService.On("VerifyDeclaredTotals",
		mock.Anything, mock.AnythingOfType("dto.VerifyTotalsRequest"),
	).Return(totals, discrepancies, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/invoices/verify-totals", companyID)
	w := suite.doRequest(http.MethodPost, url, req, userID)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.VerifyTotalsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.False(body.Valid)
	suite.Len(body.Discrepancies, 1)
	suite.Equal("totalAmount", body.Discrepancies[0].Field)

	suite.mockInvoiceService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestInvoiceHandler(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerTestSuite))
}
