package repositories

import (
	"context"
	"time"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// InvoiceListFilter narrows invoice listing queries.
type InvoiceListFilter struct {
	Direction     *domain.InvoiceDirection
	Status        *domain.InvoiceStatus
	PaymentStatus *domain.PaymentStatus
	Limit         int
	NextToken     *string
}

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its lines.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoicesByCompany retrieves a paginated, filtered list of invoices
	// (without lines) using token-based pagination.
	ListInvoicesByCompany(ctx context.Context, companyID string, filter InvoiceListFilter) ([]domain.Invoice, *string, error)

	// FindOpenInvoices retrieves invoices of the given direction and currency
	// with a positive remaining amount, candidates for payment matching.
	FindOpenInvoices(ctx context.Context, companyID string, direction domain.InvoiceDirection, currencyCode string) ([]domain.Invoice, error)

	// FindLinesForPeriod retrieves all lines of invoices with the given
	// direction and statuses whose issue date falls within [from, to].
	// This feeds the VAT period aggregation.
	FindLinesForPeriod(ctx context.Context, companyID string, direction domain.InvoiceDirection, statuses []domain.InvoiceStatus, from, to time.Time) ([]domain.InvoiceLine, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice persists an invoice and its lines atomically.
	SaveInvoice(ctx context.Context, invoice domain.Invoice, lines []domain.InvoiceLine) error

	// UpdateInvoiceStatus updates the lifecycle status of an invoice.
	UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
}
