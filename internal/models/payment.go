package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents a row of the payments table. bank_transaction_id
// carries a UNIQUE constraint so a bank transaction can never produce
// two payments.
type Payment struct {
	PaymentID         string          `db:"payment_id"`
	CompanyID         string          `db:"company_id"`
	InvoiceID         string          `db:"invoice_id"`
	BankTransactionID *string         `db:"bank_transaction_id"`
	Amount            decimal.Decimal `db:"amount"`
	PaymentDate       time.Time       `db:"payment_date"`
	Method            string          `db:"method"`
	Reference         string          `db:"reference"`
	AuditFields
}
