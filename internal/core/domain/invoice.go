package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceDirection distinguishes sales invoices from purchase invoices.
type InvoiceDirection string

const (
	Outgoing InvoiceDirection = "OUTGOING"
	Incoming InvoiceDirection = "INCOMING"
)

// InvoiceStatus is the lifecycle status of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoiceDelivered InvoiceStatus = "DELIVERED"
	InvoiceReceived  InvoiceStatus = "RECEIVED"
	InvoiceAccepted  InvoiceStatus = "ACCEPTED"
	InvoiceRejected  InvoiceStatus = "REJECTED"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// PaymentStatus tracks how much of an invoice has been settled.
type PaymentStatus string

const (
	Unpaid        PaymentStatus = "UNPAID"
	PartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	Paid          PaymentStatus = "PAID"
)

// Invoice represents a sales or purchase document, identified uniquely by
// (companyID, invoiceNumber, direction). TotalAmount and TaxAmount are derived
// from the lines; PaidAmount only changes through Payment creation.
type Invoice struct {
	InvoiceID      string           `json:"invoiceID"` // Primary Key (e.g., UUID)
	CompanyID      string           `json:"companyID"` // FK -> companies.company_id
	InvoiceNumber  string           `json:"invoiceNumber"`
	Direction      InvoiceDirection `json:"direction"`
	Status         InvoiceStatus    `json:"status"`
	PaymentStatus  PaymentStatus    `json:"paymentStatus"`
	PartnerName    string           `json:"partnerName"`
	PartnerPIB     string           `json:"partnerPIB"`
	PartnerAccount string           `json:"partnerAccount"` // Partner's registered bank account number
	CurrencyCode   string           `json:"currencyCode"`
	IssueDate      time.Time        `json:"issueDate"`
	DueDate        time.Time        `json:"dueDate"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"` // Gross, == sum(line.Amount)
	TaxAmount      decimal.Decimal  `json:"taxAmount"`   // == sum(line.TaxAmount)
	PaidAmount     decimal.Decimal  `json:"paidAmount"`  // Monotonically non-decreasing, <= TotalAmount
	Lines          []InvoiceLine    `json:"lines,omitempty"`
	AuditFields
}

// InvoiceLine is a single ordered position on an invoice. Lines are immutable
// once the parent invoice leaves DRAFT status.
type InvoiceLine struct {
	LineID      string          `json:"lineID"`    // Primary Key (e.g., UUID)
	InvoiceID   string          `json:"invoiceID"` // FK -> invoices.invoice_id
	LineNumber  int             `json:"lineNumber"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`   // > 0
	UnitPrice   decimal.Decimal `json:"unitPrice"`  // >= 0
	TaxRate     decimal.Decimal `json:"taxRate"`    // Percent, within [0, 100]
	BaseAmount  decimal.Decimal `json:"baseAmount"` // round2(Quantity * UnitPrice)
	TaxAmount   decimal.Decimal `json:"taxAmount"`  // round2(BaseAmount * TaxRate / 100)
	Amount      decimal.Decimal `json:"amount"`     // round2(BaseAmount + TaxAmount)
}

// RemainingAmount returns TotalAmount - PaidAmount.
func (i *Invoice) RemainingAmount() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// IsOpen reports whether the invoice still has an unsettled remainder.
func (i *Invoice) IsOpen() bool {
	return i.RemainingAmount().IsPositive()
}

// PaymentStatusFor derives the payment status from a paid amount. The caller
// guarantees paid has already been clamped to [0, total].
func PaymentStatusFor(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total) && total.IsPositive():
		return Paid
	case paid.IsPositive():
		return PartiallyPaid
	default:
		return Unpaid
	}
}
