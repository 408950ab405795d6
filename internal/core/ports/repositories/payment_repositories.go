package repositories

import (
	"context"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// PaymentReader defines read operations for payment data
type PaymentReader interface {
	// FindPaymentByID retrieves a specific payment.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// FindPaymentByBankTransactionID retrieves the payment created from a bank
	// transaction, if any.
	FindPaymentByBankTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)

	// ListPaymentsByInvoiceID retrieves all payments applied to an invoice.
	ListPaymentsByInvoiceID(ctx context.Context, invoiceID string) ([]domain.Payment, error)
}

// PaymentWriter defines the ledger update for applying money to an invoice.
type PaymentWriter interface {
	// CreatePaymentAndApply executes the balance update as one database
	// transaction: it locks the invoice row, re-checks that the payment does
	// not push paidAmount above totalAmount beyond tolerance (ErrConflict),
	// inserts the payment (a unique constraint on bank_transaction_id turns a
	// double-match race into ErrConflict), increments the invoice paid amount
	// with its payment status, and, when the payment originates from a bank
	// transaction, marks that transaction MATCHED. Returns the updated invoice.
	CreatePaymentAndApply(ctx context.Context, payment domain.Payment) (*domain.Invoice, error)
}

// PaymentRepositoryFacade combines all payment-related repository interfaces
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
