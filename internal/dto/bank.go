package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// ImportTransactionRequest defines a single statement entry in an import.
type ImportTransactionRequest struct {
	Direction      domain.TransactionDirection `json:"direction" binding:"required,oneof=CREDIT DEBIT"`
	Amount         decimal.Decimal             `json:"amount" binding:"required"`
	ValueDate      time.Time                   `json:"valueDate" binding:"required"`
	PartnerName    string                      `json:"partnerName"`
	PartnerAccount string                      `json:"partnerAccount"`
	Reference      string                      `json:"reference"`
	Description    string                      `json:"description"`
}

// ImportStatementRequest defines the data needed to import a bank statement.
// The statement balances must reconcile with the transaction totals.
type ImportStatementRequest struct {
	AccountNumber   string                     `json:"accountNumber" binding:"required"`
	StatementNumber string                     `json:"statementNumber" binding:"required"`
	StatementDate   time.Time                  `json:"statementDate" binding:"required"`
	CurrencyCode    string                     `json:"currencyCode" binding:"required,len=3"`
	OpeningBalance  decimal.Decimal            `json:"openingBalance"`
	ClosingBalance  decimal.Decimal            `json:"closingBalance"`
	Transactions    []ImportTransactionRequest `json:"transactions" binding:"dive"`
}

// MatchTransactionRequest manually pairs a bank transaction with an invoice.
type MatchTransactionRequest struct {
	InvoiceID string `json:"invoiceID" binding:"required"`
}

// AutoMatchResult summarises one auto-match run over a statement.
type AutoMatchResult struct {
	StatementID    string   `json:"statementID"`
	Examined       int      `json:"examined"`
	Matched        int      `json:"matched"`
	StillUnmatched int      `json:"stillUnmatched"`
	PaymentIDs     []string `json:"paymentIDs,omitempty"`
}

// BankTransactionResponse defines the data returned for a bank transaction.
type BankTransactionResponse struct {
	TransactionID    string                      `json:"transactionID"`
	StatementID      string                      `json:"statementID"`
	Direction        domain.TransactionDirection `json:"direction"`
	Amount           decimal.Decimal             `json:"amount"`
	ValueDate        time.Time                   `json:"valueDate"`
	PartnerName      string                      `json:"partnerName,omitempty"`
	PartnerAccount   string                      `json:"partnerAccount,omitempty"`
	Reference        string                      `json:"reference,omitempty"`
	Description      string                      `json:"description,omitempty"`
	MatchStatus      domain.MatchStatus          `json:"matchStatus"`
	MatchedInvoiceID *string                     `json:"matchedInvoiceID,omitempty"`
	PaymentID        *string                     `json:"paymentID,omitempty"`
}

// BankStatementResponse defines the data returned for a bank statement.
type BankStatementResponse struct {
	StatementID     string                    `json:"statementID"`
	CompanyID       string                    `json:"companyID"`
	AccountNumber   string                    `json:"accountNumber"`
	StatementNumber string                    `json:"statementNumber"`
	StatementDate   time.Time                 `json:"statementDate"`
	CurrencyCode    string                    `json:"currencyCode"`
	OpeningBalance  decimal.Decimal           `json:"openingBalance"`
	ClosingBalance  decimal.Decimal           `json:"closingBalance"`
	TotalCredit     decimal.Decimal           `json:"totalCredit"`
	TotalDebit      decimal.Decimal           `json:"totalDebit"`
	Transactions    []BankTransactionResponse `json:"transactions,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
	CreatedBy       string                    `json:"createdBy"`
}

// ListStatementsResponse wraps the list of bank statements.
type ListStatementsResponse struct {
	Statements []BankStatementResponse `json:"statements"`
}

// ListTransactionsResponse wraps a list of bank transactions.
type ListTransactionsResponse struct {
	Transactions []BankTransactionResponse `json:"transactions"`
}

// ToBankTransactionResponse converts a domain.BankTransaction to its DTO
func ToBankTransactionResponse(txn *domain.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		TransactionID:    txn.TransactionID,
		StatementID:      txn.StatementID,
		Direction:        txn.Direction,
		Amount:           txn.Amount,
		ValueDate:        txn.ValueDate,
		PartnerName:      txn.PartnerName,
		PartnerAccount:   txn.PartnerAccount,
		Reference:        txn.Reference,
		Description:      txn.Description,
		MatchStatus:      txn.MatchStatus,
		MatchedInvoiceID: txn.MatchedInvoiceID,
		PaymentID:        txn.PaymentID,
	}
}

// ToBankTransactionResponses converts a slice of domain.BankTransaction to DTOs
func ToBankTransactionResponses(txns []domain.BankTransaction) []BankTransactionResponse {
	responses := make([]BankTransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToBankTransactionResponse(&txn)
	}
	return responses
}

// ToBankStatementResponse converts a domain.BankStatement to its DTO
func ToBankStatementResponse(st *domain.BankStatement) BankStatementResponse {
	return BankStatementResponse{
		StatementID:     st.StatementID,
		CompanyID:       st.CompanyID,
		AccountNumber:   st.AccountNumber,
		StatementNumber: st.StatementNumber,
		StatementDate:   st.StatementDate,
		CurrencyCode:    st.CurrencyCode,
		OpeningBalance:  st.OpeningBalance,
		ClosingBalance:  st.ClosingBalance,
		TotalCredit:     st.TotalCredit,
		TotalDebit:      st.TotalDebit,
		Transactions:    ToBankTransactionResponses(st.Transactions),
		CreatedAt:       st.CreatedAt,
		CreatedBy:       st.CreatedBy,
	}
}

// ToListStatementsResponse converts a slice of domain.BankStatement to ListStatementsResponse DTO
func ToListStatementsResponse(statements []domain.BankStatement) ListStatementsResponse {
	res := make([]BankStatementResponse, len(statements))
	for i, st := range statements {
		res[i] = ToBankStatementResponse(&st)
	}
	return ListStatementsResponse{Statements: res}
}
