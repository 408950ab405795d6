package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	BankTransfer PaymentMethod = "BANK_TRANSFER"
	Cash         PaymentMethod = "CASH"
	Card         PaymentMethod = "CARD"
	Compensation PaymentMethod = "COMPENSATION"
)

// Payment immutably records money applied to an invoice. Creating a payment is
// the only way Invoice.PaidAmount changes. At most one payment may exist per
// bank transaction.
type Payment struct {
	PaymentID         string          `json:"paymentID"` // Primary Key (e.g., UUID)
	CompanyID         string          `json:"companyID"`
	InvoiceID         string          `json:"invoiceID"`                   // FK -> invoices.invoice_id
	BankTransactionID *string         `json:"bankTransactionID,omitempty"` // Set when created by the matcher
	Amount            decimal.Decimal `json:"amount"`                      // Positive value
	PaymentDate       time.Time       `json:"paymentDate"`
	Method            PaymentMethod   `json:"method"`
	Reference         string          `json:"reference"`
	AuditFields
}
