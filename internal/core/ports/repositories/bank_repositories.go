package repositories

import (
	"context"
	"time"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// BankStatementReader defines read operations for bank statement data
type BankStatementReader interface {
	// FindStatementByID retrieves a statement header (without transactions).
	FindStatementByID(ctx context.Context, statementID string) (*domain.BankStatement, error)

	// ListStatementsByCompany retrieves a paginated list of statements using
	// token-based pagination.
	ListStatementsByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.BankStatement, *string, error)
}

// BankStatementWriter defines write operations for bank statement data
type BankStatementWriter interface {
	// SaveStatement persists a statement and its transactions atomically.
	SaveStatement(ctx context.Context, statement domain.BankStatement, transactions []domain.BankTransaction) error
}

// BankTransactionReader defines read operations for bank transaction data
type BankTransactionReader interface {
	// FindTransactionByID retrieves a specific bank transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error)

	// FindTransactionsByStatementID retrieves all transactions of a statement.
	FindTransactionsByStatementID(ctx context.Context, statementID string) ([]domain.BankTransaction, error)

	// FindUnmatchedCreditTransactions retrieves the UNMATCHED CREDIT
	// transactions of a statement, the auto-match work list.
	FindUnmatchedCreditTransactions(ctx context.Context, statementID string) ([]domain.BankTransaction, error)
}

// BankTransactionWriter defines write operations for bank transaction data
type BankTransactionWriter interface {
	// UpdateTransactionMatch updates the match status and references of a
	// transaction outside of payment creation (e.g. the IGNORED override).
	UpdateTransactionMatch(ctx context.Context, transactionID string, status domain.MatchStatus, matchedInvoiceID *string, paymentID *string, updatedBy string, updatedAt time.Time) error
}

// BankRepositoryFacade combines all bank-related repository interfaces
type BankRepositoryFacade interface {
	BankStatementReader
	BankStatementWriter
	BankTransactionReader
	BankTransactionWriter
}
