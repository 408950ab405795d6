package services

import (
	"context"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
	"github.com/fakturko/sef_backoffice/internal/dto"
)

// StatementReaderSvc defines read operations for bank statements
type StatementReaderSvc interface {
	// GetStatementByID retrieves a bank statement with its transactions.
	GetStatementByID(ctx context.Context, companyID, statementID, userID string) (*domain.BankStatement, error)

	// ListStatements retrieves bank statements for a company.
	ListStatements(ctx context.Context, companyID, userID string) ([]domain.BankStatement, error)

	// ListUnmatchedCredits retrieves unmatched incoming transactions for a
	// company, optionally limited to one statement.
	ListUnmatchedCredits(ctx context.Context, companyID string, statementID *string, userID string) ([]domain.BankTransaction, error)
}

// StatementWriterSvc defines import operations for bank statements
type StatementWriterSvc interface {
	// ImportStatement validates and persists a bank statement with its
	// transactions. Statement balances must reconcile with the
	// transaction totals.
	ImportStatement(ctx context.Context, companyID string, req dto.ImportStatementRequest, userID string) (*domain.BankStatement, error)
}

// MatcherSvc defines operations that pair bank transactions with invoices
type MatcherSvc interface {
	// RunAutoMatch attempts to match every unmatched credit transaction
	// of a statement against the company's open outgoing invoices and
	// records a payment for each confident match.
	RunAutoMatch(ctx context.Context, companyID, statementID, userID string) (*dto.AutoMatchResult, error)

	// MatchTransaction manually pairs a transaction with an invoice and
	// records the payment.
	MatchTransaction(ctx context.Context, companyID, transactionID, invoiceID, userID string) (*domain.Payment, error)

	// CreatePaymentFromMatchedTransaction records the payment for a
	// transaction already carrying an invoice reference but no payment.
	CreatePaymentFromMatchedTransaction(ctx context.Context, companyID, transactionID, userID string) (*domain.Payment, error)

	// IgnoreTransaction marks a transaction as not relevant for matching.
	IgnoreTransaction(ctx context.Context, companyID, transactionID, userID string) error
}

// PaymentSvc defines operations for recording and reading payments
type PaymentSvc interface {
	// RecordManualPayment records a payment against an invoice that did
	// not arrive through a bank statement (cash, card, compensation).
	RecordManualPayment(ctx context.Context, companyID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error)

	// ListInvoicePayments retrieves all payments applied to an invoice.
	ListInvoicePayments(ctx context.Context, companyID, invoiceID, userID string) ([]domain.Payment, error)
}

// ReconciliationSvcFacade combines all reconciliation-related service interfaces
type ReconciliationSvcFacade interface {
	StatementReaderSvc
	StatementWriterSvc
	MatcherSvc
	PaymentSvc
}
