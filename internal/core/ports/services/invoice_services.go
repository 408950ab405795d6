package services

import (
	"context"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
	"github.com/fakturko/sef_backoffice/internal/dto"
	"github.com/fakturko/sef_backoffice/internal/utils/accounting"
)

// InvoiceReaderSvc defines read operations for invoices
type InvoiceReaderSvc interface {
	// GetInvoiceByID retrieves a specific invoice with its lines.
	GetInvoiceByID(ctx context.Context, companyID, invoiceID, userID string) (*domain.Invoice, error)

	// ListInvoices retrieves invoices for a company, filtered and paginated.
	ListInvoices(ctx context.Context, companyID string, req dto.ListInvoicesRequest, userID string) ([]domain.Invoice, string, error)

	// ListOpenInvoices retrieves outgoing invoices that still have an
	// outstanding amount, ordered by due date.
	ListOpenInvoices(ctx context.Context, companyID, userID string) ([]domain.Invoice, error)
}

// InvoiceWriterSvc defines write operations for invoices
type InvoiceWriterSvc interface {
	// CreateInvoice validates the request, computes line and document
	// totals and persists the invoice with its lines.
	CreateInvoice(ctx context.Context, companyID string, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error)

	// UpdateInvoiceStatus transitions an invoice to a new document status.
	UpdateInvoiceStatus(ctx context.Context, companyID, invoiceID string, newStatus domain.InvoiceStatus, userID string) (*domain.Invoice, error)

	// CancelInvoice cancels an invoice that has no payments applied.
	CancelInvoice(ctx context.Context, companyID, invoiceID, userID string) (*domain.Invoice, error)
}

// InvoiceVerifierSvc defines verification operations over declared totals
type InvoiceVerifierSvc interface {
	// VerifyDeclaredTotals recomputes totals from the given lines and
	// reports any discrepancy against the declared document totals.
	VerifyDeclaredTotals(ctx context.Context, req dto.VerifyTotalsRequest) (*accounting.InvoiceTotals, []accounting.Discrepancy, error)
}

// InvoiceSvcFacade combines all invoice-related service interfaces
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
	InvoiceVerifierSvc
}
