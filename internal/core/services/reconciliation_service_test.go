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

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockBankRepo    *MockBankRepository
	mockInvoiceRepo *MockInvoiceRepository
	mockPaymentRepo *MockPaymentRepository
	service         portssvc.ReconciliationSvcFacade

	ctx         context.Context
	companyID   string
	userID      string
	statementID string
	statement   *domain.BankStatement
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockBankRepo = new(MockBankRepository)
	suite.mockInvoiceRepo = new(MockInvoiceRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.service = services.NewReconciliationService(
		suite.mockBankRepo,
		suite.mockInvoiceRepo,
		suite.mockPaymentRepo,
		allowAll(),
	)

	suite.ctx = context.Background()
	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.statementID = uuid.NewString()
	suite.statement = &domain.BankStatement{
		StatementID:  suite.statementID,
		CompanyID:    suite.companyID,
		CurrencyCode: "RSD",
	}
}

func (suite *ReconciliationServiceTestSuite) creditTxn(amount string) domain.BankTransaction {
	return domain.BankTransaction{
		TransactionID: uuid.NewString(),
		StatementID:   suite.statementID,
		CompanyID:     suite.companyID,
		Direction:     domain.Credit,
		Amount:        decimal.RequireFromString(amount),
		ValueDate:     time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		MatchStatus:   domain.Unmatched,
	}
}

func (suite *ReconciliationServiceTestSuite) openInvoice(total string, due time.Time) domain.Invoice {
	return domain.Invoice{
		InvoiceID:     uuid.NewString(),
		CompanyID:     suite.companyID,
		Direction:     domain.Outgoing,
		Status:        domain.InvoiceSent,
		PaymentStatus: domain.Unpaid,
		CurrencyCode:  "RSD",
		DueDate:       due,
		TotalAmount:   decimal.RequireFromString(total),
		TaxAmount:     decimal.Zero,
		PaidAmount:    decimal.Zero,
	}
}

func (suite *ReconciliationServiceTestSuite) TestImportStatement_BalancedStatementSaved() {
	req := dto.ImportStatementRequest{
		AccountNumber:   "160-0000000012345-78",
		StatementNumber: "42",
		StatementDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		CurrencyCode:    "RSD",
		OpeningBalance:  decimal.NewFromInt(1000),
		ClosingBalance:  decimal.NewFromInt(1500),
		Transactions: []dto.ImportTransactionRequest{
			{Direction: domain.Credit, Amount: decimal.NewFromInt(800), ValueDate: time.Now()},
			{Direction: domain.Debit, Amount: decimal.NewFromInt(300), ValueDate: time.Now()},
		},
	}
	suite.mockBankRepo.On("SaveStatement", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	statement, err := suite.service.ImportStatement(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("800", statement.TotalCredit.String())
	suite.Equal("300", statement.TotalDebit.String())
	suite.Require().Len(statement.Transactions, 2)
	suite.Equal(domain.Unmatched, statement.Transactions[0].MatchStatus)
	suite.mockBankRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestImportStatement_UnbalancedRejected() {
	req := dto.ImportStatementRequest{
		AccountNumber:   "160-0000000012345-78",
		StatementNumber: "43",
		StatementDate:   time.Now(),
		CurrencyCode:    "RSD",
		OpeningBalance:  decimal.NewFromInt(1000),
		ClosingBalance:  decimal.NewFromInt(2000), // off by 500
		Transactions: []dto.ImportTransactionRequest{
			{Direction: domain.Credit, Amount: decimal.NewFromInt(800), ValueDate: time.Now()},
			{Direction: domain.Debit, Amount: decimal.NewFromInt(300), ValueDate: time.Now()},
		},
	}

	_, err := suite.service.ImportStatement(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrStatementUnbalanced)
	suite.mockBankRepo.AssertNotCalled(suite.T(), "SaveStatement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestRunAutoMatch_ExactAmountMatches() {
	txn := suite.creditTxn("60000")
	invoice := suite.openInvoice("60000", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	other := suite.openInvoice("45000", time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC))

	suite.mockBankRepo.On("FindStatementByID", mock.Anything, suite.statementID).Return(suite.statement, nil)
	suite.mockBankRepo.On("FindUnmatchedCreditTransactions", mock.Anything, suite.statementID).
		Return([]domain.BankTransaction{txn}, nil)
	suite.mockInvoiceRepo.On("FindOpenInvoices", mock.Anything, suite.companyID, domain.Outgoing, "RSD").
		Return([]domain.Invoice{invoice, other}, nil)
	suite.mockPaymentRepo.On("CreatePaymentAndApply", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.InvoiceID == invoice.InvoiceID &&
			p.Amount.Equal(txn.Amount) &&
			p.Method == domain.BankTransfer &&
			p.BankTransactionID != nil && *p.BankTransactionID == txn.TransactionID
	})).Return(&invoice, nil)

	result, err := suite.service.RunAutoMatch(suite.ctx, suite.companyID, suite.statementID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.Examined)
	suite.Equal(1, result.Matched)
	suite.Equal(0, result.StillUnmatched)
	suite.Require().Len(result.PaymentIDs, 1)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunAutoMatch_PartnerIdentityBreaksTie() {
	txn := suite.creditTxn("60000")
	txn.PartnerAccount = "205-0000000054321-10"

	due := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	matching := suite.openInvoice("60000", due)
	matching.PartnerAccount = "205-0000000054321-10"
	decoy := suite.openInvoice("60000", due.AddDate(0, 0, -5)) // earlier due date but wrong partner
	decoy.PartnerAccount = "160-0000000099999-55"

	suite.mockBankRepo.On("FindStatementByID", mock.Anything, suite.statementID).Return(suite.statement, nil)
	suite.mockBankRepo.On("FindUnmatchedCreditTransactions", mock.Anything, suite.statementID).
		Return([]domain.BankTransaction{txn}, nil)
	suite.mockInvoiceRepo.On("FindOpenInvoices", mock.Anything, suite.companyID, domain.Outgoing, "RSD").
		Return([]domain.Invoice{decoy, matching}, nil)
	suite.mockPaymentRepo.On("CreatePaymentAndApply", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.InvoiceID == matching.InvoiceID
	})).Return(&matching, nil)

	result, err := suite.service.RunAutoMatch(suite.ctx, suite.companyID, suite.statementID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.Matched)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunAutoMatch_EarliestDueDateBreaksTie() {
	txn := suite.creditTxn("60000")

	earlier := suite.openInvoice("60000", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	later := suite.openInvoice("60000", time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC))

	suite.mockBankRepo.On("FindStatementByID", mock.Anything, suite.statementID).Return(suite.statement, nil)
	suite.mockBankRepo.On("FindUnmatchedCreditTransactions", mock.Anything, suite.statementID).
		Return([]domain.BankTransaction{txn}, nil)
	suite.mockInvoiceRepo.On("FindOpenInvoices", mock.Anything, suite.companyID, domain.Outgoing, "RSD").
		Return([]domain.Invoice{later, earlier}, nil)
	suite.mockPaymentRepo.On("CreatePaymentAndApply", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.InvoiceID == earlier.InvoiceID
	})).Return(&earlier, nil)

	result, err := suite.service.RunAutoMatch(suite.ctx, suite.companyID, suite.statementID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, result.Matched)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRunAutoMatch_AmbiguousTieLeftUnmatched() {
	txn := suite.creditTxn("60000")

	due := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	first := suite.openInvoice("60000", due)
	second := suite.openInvoice("60000", due)

	suite.mockBankRepo.On("FindStatementByID", mock.Anything, suite.statementID).Return(suite.statement, nil)
	suite.mockBankRepo.On("FindUnmatchedCreditTransactions", mock.Anything, suite.statementID).
		Return([]domain.BankTransaction{txn}, nil)
	suite.mockInvoiceRepo.On("FindOpenInvoices", mock.Anything, suite.companyID, domain.Outgoing, "RSD").
		Return([]domain.Invoice{first, second}, nil)

	result, err := suite.service.RunAutoMatch(suite.ctx, suite.companyID, suite.statementID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(0, result.Matched)
	suite.Equal(1, result.StillUnmatched)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "CreatePaymentAndApply", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestRunAutoMatch_NoAmountMatchLeftUnmatched() {
	txn := suite.creditTxn("12345.67")
	invoice := suite.openInvoice("60000", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))

	suite.mockBankRepo.On("FindStatementByID", mock.Anything, suite.statementID).Return(suite.statement, nil)
	suite.mockBankRepo.On("FindUnmatchedCreditTransactions", mock.Anything, suite.statementID).
		Return([]domain.BankTransaction{txn}, nil)
	suite.mockInvoiceRepo.On("FindOpenInvoices", mock.Anything, suite.companyID, domain.Outgoing, "RSD").
		Return([]domain.Invoice{invoice}, nil)

	result, err := suite.service.RunAutoMatch(suite.ctx, suite.companyID, suite.statementID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(0, result.Matched)
	suite.Equal(1, result.StillUnmatched)
}

func (suite *ReconciliationServiceTestSuite) TestRunAutoMatch_ConcurrentSettlementSkipped() {
	// A conflict from the unique payment constraint means another run won
	// the race; the transaction is skipped and the run carries on.
	txn := suite.creditTxn("60000")
	invoice := suite.openInvoice("60000", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))

	suite.mockBankRepo.On("FindStatementByID", mock.Anything, suite.statementID).Return(suite.statement, nil)
	suite.mockBankRepo.On("FindUnmatchedCreditTransactions", mock.Anything, suite.statementID).
		Return([]domain.BankTransaction{txn}, nil)
	suite.mockInvoiceRepo.On("FindOpenInvoices", mock.Anything, suite.companyID, domain.Outgoing, "RSD").
		Return([]domain.Invoice{invoice}, nil)
	suite.mockPaymentRepo.On("CreatePaymentAndApply", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrConflict)

	result, err := suite.service.RunAutoMatch(suite.ctx, suite.companyID, suite.statementID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(0, result.Matched)
	suite.Equal(1, result.StillUnmatched)
}

func (suite *ReconciliationServiceTestSuite) TestMatchTransaction_OverPaymentRejected() {
	txn := suite.creditTxn("70000")
	invoice := suite.openInvoice("60000", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))

	suite.mockBankRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(&txn, nil)
	suite.mockInvoiceRepo.On("FindInvoiceByID", mock.Anything, invoice.InvoiceID).Return(&invoice, nil)

	_, err := suite.service.MatchTransaction(suite.ctx, suite.companyID, txn.TransactionID, invoice.InvoiceID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrOverPayment)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "CreatePaymentAndApply", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestMatchTransaction_AlreadyPaidRejected() {
	txn := suite.creditTxn("60000")
	existingPaymentID := uuid.NewString()
	txn.MatchStatus = domain.Matched
	txn.PaymentID = &existingPaymentID

	suite.mockBankRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(&txn, nil)

	_, err := suite.service.MatchTransaction(suite.ctx, suite.companyID, txn.TransactionID, uuid.NewString(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrTxnAlreadyMatched)
}

func (suite *ReconciliationServiceTestSuite) TestCreatePaymentFromMatchedTransaction() {
	txn := suite.creditTxn("60000")
	invoiceID := uuid.NewString()
	txn.MatchStatus = domain.Matched
	txn.MatchedInvoiceID = &invoiceID

	suite.mockBankRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(&txn, nil)
	suite.mockPaymentRepo.On("CreatePaymentAndApply", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.InvoiceID == invoiceID && p.Amount.Equal(txn.Amount)
	})).Return(&domain.Invoice{InvoiceID: invoiceID}, nil)

	payment, err := suite.service.CreatePaymentFromMatchedTransaction(suite.ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(invoiceID, payment.InvoiceID)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestIgnoreTransaction() {
	txn := suite.creditTxn("999.99")

	suite.mockBankRepo.On("FindTransactionByID", mock.Anything, txn.TransactionID).Return(&txn, nil)
	suite.mockBankRepo.On("UpdateTransactionMatch", mock.Anything, txn.TransactionID, domain.Ignored,
		(*string)(nil), (*string)(nil), suite.userID, mock.Anything).Return(nil)

	err := suite.service.IgnoreTransaction(suite.ctx, suite.companyID, txn.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.mockBankRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestRecordManualPayment() {
	invoice := suite.openInvoice("45000", time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	req := dto.RecordPaymentRequest{
		InvoiceID:   invoice.InvoiceID,
		Amount:      decimal.NewFromInt(45000),
		PaymentDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Method:      domain.Cash,
		Reference:   "blagajna 12",
	}

	suite.mockInvoiceRepo.On("FindInvoiceByID", mock.Anything, invoice.InvoiceID).Return(&invoice, nil)
	suite.mockPaymentRepo.On("CreatePaymentAndApply", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.InvoiceID == invoice.InvoiceID &&
			p.Method == domain.Cash &&
			p.BankTransactionID == nil
	})).Return(&invoice, nil)

	payment, err := suite.service.RecordManualPayment(suite.ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Cash, payment.Method)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
