package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/dto"
	"github.com/fakturko/sef_backoffice/internal/utils"
	"github.com/fakturko/sef_backoffice/internal/utils/accounting"
	"github.com/fakturko/sef_backoffice/internal/utils/money"
)

var (
	ErrInvoiceNotDraft      = errors.New("invoice lines are immutable once the invoice leaves draft")
	ErrInvalidTransition    = errors.New("invalid invoice status transition")
	ErrCancelWithPayments   = errors.New("invoice with applied payments cannot be cancelled")
	ErrDeclaredTotalsDiffer = errors.New("declared totals disagree with calculated totals")
)

// validTransitions lists the allowed document status moves per direction.
var validTransitions = map[domain.InvoiceDirection]map[domain.InvoiceStatus][]domain.InvoiceStatus{
	domain.Outgoing: {
		domain.InvoiceDraft:     {domain.InvoiceSent, domain.InvoiceCancelled},
		domain.InvoiceSent:      {domain.InvoiceDelivered, domain.InvoiceRejected, domain.InvoiceCancelled},
		domain.InvoiceDelivered: {domain.InvoiceAccepted, domain.InvoiceRejected},
	},
	domain.Incoming: {
		domain.InvoiceReceived: {domain.InvoiceAccepted, domain.InvoiceRejected},
	},
}

// invoiceService implements the InvoiceSvcFacade interface
type invoiceService struct {
	BaseService
	invoiceRepo  portsrepo.InvoiceRepositoryFacade
	paymentRepo  portsrepo.PaymentReader
	currencyRepo portsrepo.CurrencyReader
}

// NewInvoiceService creates a new invoice service with the provided dependencies
func NewInvoiceService(
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	paymentRepo portsrepo.PaymentReader,
	currencyRepo portsrepo.CurrencyReader,
	companyAuthorizer portssvc.CompanyAuthorizerSvc,
) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		BaseService:  BaseService{CompanyAuthorizer: companyAuthorizer},
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		currencyRepo: currencyRepo,
	}
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// GetInvoiceByID retrieves an invoice with its lines
func (s *invoiceService) GetInvoiceByID(ctx context.Context, companyID, invoiceID, userID string) (*domain.Invoice, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find invoice", slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}
	if invoice.CompanyID != companyID {
		// Cross-tenant probes read as missing resources.
		return nil, apperrors.ErrNotFound
	}
	return invoice, nil
}

// ListInvoices retrieves invoices for a company with filters and pagination
func (s *invoiceService) ListInvoices(ctx context.Context, companyID string, req dto.ListInvoicesRequest, userID string) ([]domain.Invoice, string, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, "", err
	}

	filter := portsrepo.InvoiceListFilter{
		Direction:     req.Direction,
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		Limit:         req.Limit,
	}
	if req.NextToken != "" {
		filter.NextToken = &req.NextToken
	}

	invoices, nextToken, err := s.invoiceRepo.ListInvoicesByCompany(ctx, companyID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices", slog.String("company_id", companyID))
		return nil, "", err
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	token := ""
	if nextToken != nil {
		token = *nextToken
	}
	return invoices, token, nil
}

// ListOpenInvoices retrieves outgoing invoices with an outstanding amount
func (s *invoiceService) ListOpenInvoices(ctx context.Context, companyID, userID string) ([]domain.Invoice, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindOpenInvoices(ctx, companyID, domain.Outgoing, "")
	if err != nil {
		s.LogError(ctx, err, "Failed to list open invoices", slog.String("company_id", companyID))
		return nil, err
	}
	if invoices == nil {
		return []domain.Invoice{}, nil
	}
	return invoices, nil
}

// CreateInvoice validates the request, computes totals and persists the invoice
func (s *invoiceService) CreateInvoice(ctx context.Context, companyID string, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.PartnerPIB != "" && !utils.ValidatePIB(req.PartnerPIB) {
		return nil, fmt.Errorf("%w: partner PIB failed checksum validation", apperrors.ErrValidation)
	}
	if req.DueDate.Before(req.IssueDate) {
		return nil, fmt.Errorf("%w: due date precedes issue date", apperrors.ErrValidation)
	}
	if s.currencyRepo != nil {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
			return nil, fmt.Errorf("invalid currency code %q: %w", req.CurrencyCode, err)
		}
	}

	lineInputs := make([]accounting.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lineInputs[i] = accounting.LineInput{
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			TaxRate:   l.TaxRate,
		}
	}

	totals, amounts, err := accounting.CalculateTotals(lineInputs)
	if err != nil {
		return nil, err
	}

	// Imported documents carry declared totals; reject silently diverging ones.
	if req.DeclaredTotalAmount != nil || req.DeclaredTaxAmount != nil {
		declared := accounting.InvoiceTotals{
			TaxExclusive: totals.TaxExclusive,
			Tax:          totals.Tax,
			TaxInclusive: totals.TaxInclusive,
		}
		if req.DeclaredTaxAmount != nil {
			declared.Tax = *req.DeclaredTaxAmount
		}
		if req.DeclaredTotalAmount != nil {
			declared.TaxInclusive = *req.DeclaredTotalAmount
			declared.TaxExclusive = declared.TaxInclusive.Sub(declared.Tax)
		}
		if discrepancies := accounting.ValidateDeclaredTotals(totals, declared, money.DefaultTolerance); len(discrepancies) > 0 {
			s.LogInfo(ctx, "Declared totals rejected",
				slog.String("company_id", companyID),
				slog.String("invoice_number", req.InvoiceNumber),
				slog.Int("discrepancies", len(discrepancies)))
			return nil, fmt.Errorf("%w: %s", ErrDeclaredTotalsDiffer, discrepancies[0].String())
		}
	}

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	status := domain.InvoiceDraft
	if req.Direction == domain.Incoming {
		// Purchase documents enter the system already issued by the partner.
		status = domain.InvoiceReceived
	}

	invoice := domain.Invoice{
		InvoiceID:      uuid.NewString(),
		CompanyID:      companyID,
		InvoiceNumber:  req.InvoiceNumber,
		Direction:      req.Direction,
		Status:         status,
		PaymentStatus:  domain.Unpaid,
		PartnerName:    req.PartnerName,
		PartnerPIB:     req.PartnerPIB,
		PartnerAccount: req.PartnerAccount,
		CurrencyCode:   req.CurrencyCode,
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		TotalAmount:    totals.TaxInclusive,
		TaxAmount:      totals.Tax,
		PaidAmount:     decimal.Zero,
		AuditFields:    audit,
	}

	lines := make([]domain.InvoiceLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.InvoiceLine{
			LineID:      uuid.NewString(),
			InvoiceID:   invoice.InvoiceID,
			LineNumber:  i + 1,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			BaseAmount:  amounts[i].BaseAmount,
			TaxAmount:   amounts[i].TaxAmount,
			Amount:      amounts[i].Amount,
		}
	}
	invoice.Lines = lines

	if err := s.invoiceRepo.SaveInvoice(ctx, invoice, lines); err != nil {
		s.LogError(ctx, err, "Failed to save invoice",
			slog.String("company_id", companyID),
			slog.String("invoice_number", req.InvoiceNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_number", invoice.InvoiceNumber),
		slog.String("direction", string(invoice.Direction)),
		slog.String("total", invoice.TotalAmount.StringFixed(2)))
	return &invoice, nil
}

// UpdateInvoiceStatus transitions an invoice to a new document status
func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, companyID, invoiceID string, newStatus domain.InvoiceStatus, userID string) (*domain.Invoice, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	invoice, err := s.GetInvoiceByID(ctx, companyID, invoiceID, userID)
	if err != nil {
		return nil, err
	}

	if newStatus == domain.InvoiceCancelled {
		return s.CancelInvoice(ctx, companyID, invoiceID, userID)
	}

	if !transitionAllowed(invoice.Direction, invoice.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, invoice.Status, newStatus)
	}

	now := time.Now()
	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, invoiceID, newStatus, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to update invoice status",
			slog.String("invoice_id", invoiceID),
			slog.String("new_status", string(newStatus)))
		return nil, err
	}

	invoice.Status = newStatus
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = userID

	s.LogInfo(ctx, "Invoice status updated",
		slog.String("invoice_id", invoiceID),
		slog.String("status", string(newStatus)))
	return invoice, nil
}

// CancelInvoice cancels an invoice that has no payments applied
func (s *invoiceService) CancelInvoice(ctx context.Context, companyID, invoiceID, userID string) (*domain.Invoice, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	invoice, err := s.GetInvoiceByID(ctx, companyID, invoiceID, userID)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(invoice.Direction, invoice.Status, domain.InvoiceCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, invoice.Status, domain.InvoiceCancelled)
	}
	if invoice.PaidAmount.IsPositive() {
		return nil, fmt.Errorf("%w: %s already paid", ErrCancelWithPayments, invoice.PaidAmount.StringFixed(2))
	}
	// Belt and braces: PaidAmount is authoritative, but verify against the
	// payment records when a reader is wired.
	if s.paymentRepo != nil {
		payments, err := s.paymentRepo.ListPaymentsByInvoiceID(ctx, invoiceID)
		if err != nil {
			return nil, err
		}
		if len(payments) > 0 {
			return nil, ErrCancelWithPayments
		}
	}

	now := time.Now()
	if err := s.invoiceRepo.UpdateInvoiceStatus(ctx, invoiceID, domain.InvoiceCancelled, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to cancel invoice", slog.String("invoice_id", invoiceID))
		return nil, err
	}

	invoice.Status = domain.InvoiceCancelled
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = userID

	s.LogInfo(ctx, "Invoice cancelled", slog.String("invoice_id", invoiceID))
	return invoice, nil
}

// VerifyDeclaredTotals recomputes totals from lines and reports discrepancies
func (s *invoiceService) VerifyDeclaredTotals(ctx context.Context, req dto.VerifyTotalsRequest) (*accounting.InvoiceTotals, []accounting.Discrepancy, error) {
	lineInputs := make([]accounting.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lineInputs[i] = accounting.LineInput{
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			TaxRate:   l.TaxRate,
		}
	}

	totals, _, err := accounting.CalculateTotals(lineInputs)
	if err != nil {
		return nil, nil, err
	}

	declared := accounting.InvoiceTotals{
		TaxExclusive: req.DeclaredTotalAmount.Sub(req.DeclaredTaxAmount),
		Tax:          req.DeclaredTaxAmount,
		TaxInclusive: req.DeclaredTotalAmount,
	}
	discrepancies := accounting.ValidateDeclaredTotals(totals, declared, money.DefaultTolerance)
	return &totals, discrepancies, nil
}

// transitionAllowed checks the status machine for the given direction
func transitionAllowed(direction domain.InvoiceDirection, from, to domain.InvoiceStatus) bool {
	next, ok := validTransitions[direction][from]
	if !ok {
		return false
	}
	for _, allowed := range next {
		if allowed == to {
			return true
		}
	}
	return false
}
