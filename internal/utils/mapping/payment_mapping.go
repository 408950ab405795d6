package mapping

import (
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	"github.com/fakturko/sef_backoffice/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:         d.PaymentID,
		CompanyID:         d.CompanyID,
		InvoiceID:         d.InvoiceID,
		BankTransactionID: d.BankTransactionID,
		Amount:            d.Amount,
		PaymentDate:       d.PaymentDate,
		Method:            string(d.Method),
		Reference:         d.Reference,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:         m.PaymentID,
		CompanyID:         m.CompanyID,
		InvoiceID:         m.InvoiceID,
		BankTransactionID: m.BankTransactionID,
		Amount:            m.Amount,
		PaymentDate:       m.PaymentDate,
		Method:            domain.PaymentMethod(m.Method),
		Reference:         m.Reference,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}
