package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatement represents a row of the bank_statements table.
type BankStatement struct {
	StatementID     string          `db:"statement_id"`
	CompanyID       string          `db:"company_id"`
	AccountNumber   string          `db:"account_number"`
	StatementNumber string          `db:"statement_number"`
	StatementDate   time.Time       `db:"statement_date"`
	CurrencyCode    string          `db:"currency_code"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	ClosingBalance  decimal.Decimal `db:"closing_balance"`
	TotalCredit     decimal.Decimal `db:"total_credit"`
	TotalDebit      decimal.Decimal `db:"total_debit"`
	AuditFields
}

// BankTransaction represents a row of the bank_transactions table.
type BankTransaction struct {
	TransactionID    string          `db:"transaction_id"`
	StatementID      string          `db:"statement_id"`
	CompanyID        string          `db:"company_id"`
	Direction        string          `db:"direction"`
	Amount           decimal.Decimal `db:"amount"`
	ValueDate        time.Time       `db:"value_date"`
	PartnerName      string          `db:"partner_name"`
	PartnerAccount   string          `db:"partner_account"`
	Reference        string          `db:"reference"`
	Description      string          `db:"description"`
	MatchStatus      string          `db:"match_status"`
	MatchedInvoiceID *string         `db:"matched_invoice_id"`
	PaymentID        *string         `db:"payment_id"`
	AuditFields
}
