package mapping

import (
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	"github.com/fakturko/sef_backoffice/internal/models"
)

// ToModelBankStatement converts a domain BankStatement to a model
// BankStatement. Transactions are persisted separately.
func ToModelBankStatement(d domain.BankStatement) models.BankStatement {
	return models.BankStatement{
		StatementID:     d.StatementID,
		CompanyID:       d.CompanyID,
		AccountNumber:   d.AccountNumber,
		StatementNumber: d.StatementNumber,
		StatementDate:   d.StatementDate,
		CurrencyCode:    d.CurrencyCode,
		OpeningBalance:  d.OpeningBalance,
		ClosingBalance:  d.ClosingBalance,
		TotalCredit:     d.TotalCredit,
		TotalDebit:      d.TotalDebit,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankStatement converts a model BankStatement to a domain BankStatement
func ToDomainBankStatement(m models.BankStatement) domain.BankStatement {
	return domain.BankStatement{
		StatementID:     m.StatementID,
		CompanyID:       m.CompanyID,
		AccountNumber:   m.AccountNumber,
		StatementNumber: m.StatementNumber,
		StatementDate:   m.StatementDate,
		CurrencyCode:    m.CurrencyCode,
		OpeningBalance:  m.OpeningBalance,
		ClosingBalance:  m.ClosingBalance,
		TotalCredit:     m.TotalCredit,
		TotalDebit:      m.TotalDebit,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBankTransaction converts a domain BankTransaction to a model BankTransaction
func ToModelBankTransaction(d domain.BankTransaction) models.BankTransaction {
	return models.BankTransaction{
		TransactionID:    d.TransactionID,
		StatementID:      d.StatementID,
		CompanyID:        d.CompanyID,
		Direction:        string(d.Direction),
		Amount:           d.Amount,
		ValueDate:        d.ValueDate,
		PartnerName:      d.PartnerName,
		PartnerAccount:   d.PartnerAccount,
		Reference:        d.Reference,
		Description:      d.Description,
		MatchStatus:      string(d.MatchStatus),
		MatchedInvoiceID: d.MatchedInvoiceID,
		PaymentID:        d.PaymentID,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankTransaction converts a model BankTransaction to a domain BankTransaction
func ToDomainBankTransaction(m models.BankTransaction) domain.BankTransaction {
	return domain.BankTransaction{
		TransactionID:    m.TransactionID,
		StatementID:      m.StatementID,
		CompanyID:        m.CompanyID,
		Direction:        domain.TransactionDirection(m.Direction),
		Amount:           m.Amount,
		ValueDate:        m.ValueDate,
		PartnerName:      m.PartnerName,
		PartnerAccount:   m.PartnerAccount,
		Reference:        m.Reference,
		Description:      m.Description,
		MatchStatus:      domain.MatchStatus(m.MatchStatus),
		MatchedInvoiceID: m.MatchedInvoiceID,
		PaymentID:        m.PaymentID,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBankTransactions converts a slice of model BankTransaction to domain values
func ToDomainBankTransactions(ms []models.BankTransaction) []domain.BankTransaction {
	txns := make([]domain.BankTransaction, len(ms))
	for i, m := range ms {
		txns[i] = ToDomainBankTransaction(m)
	}
	return txns
}
