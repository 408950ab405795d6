package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection indicates whether a bank transaction is money in or out.
type TransactionDirection string

const (
	Credit TransactionDirection = "CREDIT"
	Debit  TransactionDirection = "DEBIT"
)

// MatchStatus is the reconciliation state of a bank transaction.
type MatchStatus string

const (
	Unmatched MatchStatus = "UNMATCHED"
	Partial   MatchStatus = "PARTIAL"
	Matched   MatchStatus = "MATCHED"
	Ignored   MatchStatus = "IGNORED" // Terminal manual override
)

// BankStatement is one imported batch of bank transactions. The statement
// exclusively owns its transactions.
// Invariant: ClosingBalance == OpeningBalance + TotalCredit - TotalDebit
// within the monetary tolerance.
type BankStatement struct {
	StatementID     string          `json:"statementID"` // Primary Key (e.g., UUID)
	CompanyID       string          `json:"companyID"`   // FK -> companies.company_id
	AccountNumber   string          `json:"accountNumber"`
	StatementNumber string          `json:"statementNumber"`
	StatementDate   time.Time       `json:"statementDate"`
	CurrencyCode    string          `json:"currencyCode"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	ClosingBalance  decimal.Decimal `json:"closingBalance"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	Transactions    []BankTransaction `json:"transactions,omitempty"`
	AuditFields
}

// BankTransaction is a single already-parsed statement entry. It is created
// UNMATCHED and transitions only through the reconciliation matcher, except
// for the IGNORED manual override.
type BankTransaction struct {
	TransactionID    string               `json:"transactionID"` // Primary Key (e.g., UUID)
	StatementID      string               `json:"statementID"`   // FK -> bank_statements.statement_id
	CompanyID        string               `json:"companyID"`
	Direction        TransactionDirection `json:"direction"`
	Amount           decimal.Decimal      `json:"amount"` // Positive value
	ValueDate        time.Time            `json:"valueDate"`
	PartnerName      string               `json:"partnerName"`
	PartnerAccount   string               `json:"partnerAccount"`
	Reference        string               `json:"reference"`
	Description      string               `json:"description"`
	MatchStatus      MatchStatus          `json:"matchStatus"`
	MatchedInvoiceID *string              `json:"matchedInvoiceID,omitempty"` // Set once MATCHED
	PaymentID        *string              `json:"paymentID,omitempty"`        // Weak back-reference to the payment it produced
	AuditFields
}
