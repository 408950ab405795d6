package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice represents a row of the invoices table.
type Invoice struct {
	InvoiceID      string          `db:"invoice_id"`
	CompanyID      string          `db:"company_id"`
	InvoiceNumber  string          `db:"invoice_number"`
	Direction      string          `db:"direction"`
	Status         string          `db:"status"`
	PaymentStatus  string          `db:"payment_status"`
	PartnerName    string          `db:"partner_name"`
	PartnerPIB     string          `db:"partner_pib"`
	PartnerAccount string          `db:"partner_account"`
	CurrencyCode   string          `db:"currency_code"`
	IssueDate      time.Time       `db:"issue_date"`
	DueDate        time.Time       `db:"due_date"`
	TotalAmount    decimal.Decimal `db:"total_amount"`
	TaxAmount      decimal.Decimal `db:"tax_amount"`
	PaidAmount     decimal.Decimal `db:"paid_amount"`
	AuditFields
}

// InvoiceLine represents a row of the invoice_lines table.
type InvoiceLine struct {
	LineID      string          `db:"line_id"`
	InvoiceID   string          `db:"invoice_id"`
	LineNumber  int             `db:"line_number"`
	Description string          `db:"description"`
	Quantity    decimal.Decimal `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	TaxRate     decimal.Decimal `db:"tax_rate"`
	BaseAmount  decimal.Decimal `db:"base_amount"`
	TaxAmount   decimal.Decimal `db:"tax_amount"`
	Amount      decimal.Decimal `db:"amount"`
}
