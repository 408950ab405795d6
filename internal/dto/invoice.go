package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// CreateInvoiceLineRequest defines a single line of a new invoice.
// Line amounts are never accepted from the client; they are computed
// server-side from quantity, unit price and tax rate.
type CreateInvoiceLineRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// CreateInvoiceRequest defines the data needed to create a new invoice.
type CreateInvoiceRequest struct {
	InvoiceNumber  string                     `json:"invoiceNumber" binding:"required"`
	Direction      domain.InvoiceDirection    `json:"direction" binding:"required,oneof=OUTGOING INCOMING"`
	PartnerName    string                     `json:"partnerName" binding:"required"`
	PartnerPIB     string                     `json:"partnerPIB" binding:"omitempty,len=9,numeric"`
	PartnerAccount string                     `json:"partnerAccount"`
	CurrencyCode   string                     `json:"currencyCode" binding:"required,len=3"`
	IssueDate      time.Time                  `json:"issueDate" binding:"required"`
	DueDate        time.Time                  `json:"dueDate" binding:"required"`
	Lines          []CreateInvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`

	// Declared totals are optional. When present (e.g. for documents
	// imported from the invoicing portal) they are verified against the
	// computed totals and any discrepancy rejects the request.
	DeclaredTotalAmount *decimal.Decimal `json:"declaredTotalAmount"`
	DeclaredTaxAmount   *decimal.Decimal `json:"declaredTaxAmount"`
}

// UpdateInvoiceStatusRequest defines a document status transition.
type UpdateInvoiceStatusRequest struct {
	Status domain.InvoiceStatus `json:"status" binding:"required,oneof=DRAFT SENT DELIVERED RECEIVED ACCEPTED REJECTED CANCELLED"`
}

// ListInvoicesRequest defines query parameters for listing invoices.
type ListInvoicesRequest struct {
	Direction     *domain.InvoiceDirection `form:"direction" binding:"omitempty,oneof=OUTGOING INCOMING"`
	Status        *domain.InvoiceStatus    `form:"status"`
	PaymentStatus *domain.PaymentStatus    `form:"paymentStatus" binding:"omitempty,oneof=UNPAID PARTIALLY_PAID PAID"`
	Limit         int                      `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken     string                   `form:"nextToken"`
}

// VerifyTotalsRequest defines lines plus declared totals to check.
type VerifyTotalsRequest struct {
	Lines               []CreateInvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
	DeclaredTotalAmount decimal.Decimal            `json:"declaredTotalAmount" binding:"required"`
	DeclaredTaxAmount   decimal.Decimal            `json:"declaredTaxAmount" binding:"required"`
}

// DiscrepancyResponse describes one field where declared and computed
// totals disagree beyond tolerance.
type DiscrepancyResponse struct {
	Field      string          `json:"field"`
	Calculated decimal.Decimal `json:"calculated"`
	Declared   decimal.Decimal `json:"declared"`
}

// VerifyTotalsResponse is the outcome of a totals verification.
type VerifyTotalsResponse struct {
	Valid              bool                  `json:"valid"`
	TaxExclusiveAmount decimal.Decimal       `json:"taxExclusiveAmount"`
	TaxAmount          decimal.Decimal       `json:"taxAmount"`
	TaxInclusiveAmount decimal.Decimal       `json:"taxInclusiveAmount"`
	Discrepancies      []DiscrepancyResponse `json:"discrepancies,omitempty"`
}

// InvoiceLineResponse defines the data returned for an invoice line.
type InvoiceLineResponse struct {
	LineID      string          `json:"lineID"`
	LineNumber  int             `json:"lineNumber"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	BaseAmount  decimal.Decimal `json:"baseAmount"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID       string                  `json:"invoiceID"`
	CompanyID       string                  `json:"companyID"`
	InvoiceNumber   string                  `json:"invoiceNumber"`
	Direction       domain.InvoiceDirection `json:"direction"`
	Status          domain.InvoiceStatus    `json:"status"`
	PaymentStatus   domain.PaymentStatus    `json:"paymentStatus"`
	PartnerName     string                  `json:"partnerName"`
	PartnerPIB      string                  `json:"partnerPIB,omitempty"`
	PartnerAccount  string                  `json:"partnerAccount,omitempty"`
	CurrencyCode    string                  `json:"currencyCode"`
	IssueDate       time.Time               `json:"issueDate"`
	DueDate         time.Time               `json:"dueDate"`
	TotalAmount     decimal.Decimal         `json:"totalAmount"`
	TaxAmount       decimal.Decimal         `json:"taxAmount"`
	PaidAmount      decimal.Decimal         `json:"paidAmount"`
	RemainingAmount decimal.Decimal         `json:"remainingAmount"`
	Lines           []InvoiceLineResponse   `json:"lines,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	CreatedBy       string                  `json:"createdBy"`
	LastUpdatedAt   time.Time               `json:"lastUpdatedAt"`
	LastUpdatedBy   string                  `json:"lastUpdatedBy"`
}

// ListInvoicesResponse wraps a paginated list of invoices.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken string            `json:"nextToken,omitempty"`
}

// ToInvoiceLineResponse converts a domain.InvoiceLine to InvoiceLineResponse DTO
func ToInvoiceLineResponse(line *domain.InvoiceLine) InvoiceLineResponse {
	return InvoiceLineResponse{
		LineID:      line.LineID,
		LineNumber:  line.LineNumber,
		Description: line.Description,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		TaxRate:     line.TaxRate,
		BaseAmount:  line.BaseAmount,
		TaxAmount:   line.TaxAmount,
		Amount:      line.Amount,
	}
}

// ToInvoiceResponse converts a domain.Invoice to InvoiceResponse DTO
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, line := range inv.Lines {
		lines[i] = ToInvoiceLineResponse(&line)
	}
	return InvoiceResponse{
		InvoiceID:       inv.InvoiceID,
		CompanyID:       inv.CompanyID,
		InvoiceNumber:   inv.InvoiceNumber,
		Direction:       inv.Direction,
		Status:          inv.Status,
		PaymentStatus:   inv.PaymentStatus,
		PartnerName:     inv.PartnerName,
		PartnerPIB:      inv.PartnerPIB,
		PartnerAccount:  inv.PartnerAccount,
		CurrencyCode:    inv.CurrencyCode,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		TotalAmount:     inv.TotalAmount,
		TaxAmount:       inv.TaxAmount,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount(),
		Lines:           lines,
		CreatedAt:       inv.CreatedAt,
		CreatedBy:       inv.CreatedBy,
		LastUpdatedAt:   inv.LastUpdatedAt,
		LastUpdatedBy:   inv.LastUpdatedBy,
	}
}

// ToListInvoicesResponse converts a slice of domain.Invoice to ListInvoicesResponse DTO
func ToListInvoicesResponse(invoices []domain.Invoice, nextToken string) ListInvoicesResponse {
	res := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		res[i] = ToInvoiceResponse(&inv)
	}
	return ListInvoicesResponse{Invoices: res, NextToken: nextToken}
}
