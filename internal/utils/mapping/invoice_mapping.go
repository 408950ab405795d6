package mapping

import (
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	"github.com/fakturko/sef_backoffice/internal/models"
)

// ToModelInvoice converts a domain Invoice to a model Invoice. Lines are
// persisted separately.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:      d.InvoiceID,
		CompanyID:      d.CompanyID,
		InvoiceNumber:  d.InvoiceNumber,
		Direction:      string(d.Direction),
		Status:         string(d.Status),
		PaymentStatus:  string(d.PaymentStatus),
		PartnerName:    d.PartnerName,
		PartnerPIB:     d.PartnerPIB,
		PartnerAccount: d.PartnerAccount,
		CurrencyCode:   d.CurrencyCode,
		IssueDate:      d.IssueDate,
		DueDate:        d.DueDate,
		TotalAmount:    d.TotalAmount,
		TaxAmount:      d.TaxAmount,
		PaidAmount:     d.PaidAmount,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:      m.InvoiceID,
		CompanyID:      m.CompanyID,
		InvoiceNumber:  m.InvoiceNumber,
		Direction:      domain.InvoiceDirection(m.Direction),
		Status:         domain.InvoiceStatus(m.Status),
		PaymentStatus:  domain.PaymentStatus(m.PaymentStatus),
		PartnerName:    m.PartnerName,
		PartnerPIB:     m.PartnerPIB,
		PartnerAccount: m.PartnerAccount,
		CurrencyCode:   m.CurrencyCode,
		IssueDate:      m.IssueDate,
		DueDate:        m.DueDate,
		TotalAmount:    m.TotalAmount,
		TaxAmount:      m.TaxAmount,
		PaidAmount:     m.PaidAmount,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInvoiceLine converts a domain InvoiceLine to a model InvoiceLine
func ToModelInvoiceLine(d domain.InvoiceLine) models.InvoiceLine {
	return models.InvoiceLine{
		LineID:      d.LineID,
		InvoiceID:   d.InvoiceID,
		LineNumber:  d.LineNumber,
		Description: d.Description,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		TaxRate:     d.TaxRate,
		BaseAmount:  d.BaseAmount,
		TaxAmount:   d.TaxAmount,
		Amount:      d.Amount,
	}
}

// ToDomainInvoiceLine converts a model InvoiceLine to a domain InvoiceLine
func ToDomainInvoiceLine(m models.InvoiceLine) domain.InvoiceLine {
	return domain.InvoiceLine{
		LineID:      m.LineID,
		InvoiceID:   m.InvoiceID,
		LineNumber:  m.LineNumber,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TaxRate:     m.TaxRate,
		BaseAmount:  m.BaseAmount,
		TaxAmount:   m.TaxAmount,
		Amount:      m.Amount,
	}
}

// ToDomainInvoiceLines converts a slice of model InvoiceLine to domain InvoiceLines
func ToDomainInvoiceLines(ms []models.InvoiceLine) []domain.InvoiceLine {
	lines := make([]domain.InvoiceLine, len(ms))
	for i, m := range ms {
		lines[i] = ToDomainInvoiceLine(m)
	}
	return lines
}
