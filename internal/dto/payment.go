package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// RecordPaymentRequest defines a payment made outside a bank statement.
type RecordPaymentRequest struct {
	InvoiceID   string               `json:"invoiceID" binding:"required"`
	Amount      decimal.Decimal      `json:"amount" binding:"required"`
	PaymentDate time.Time            `json:"paymentDate" binding:"required"`
	Method      domain.PaymentMethod `json:"method" binding:"required,oneof=CASH CARD COMPENSATION"`
	Reference   string               `json:"reference"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID         string               `json:"paymentID"`
	CompanyID         string               `json:"companyID"`
	InvoiceID         string               `json:"invoiceID"`
	BankTransactionID *string              `json:"bankTransactionID,omitempty"`
	Amount            decimal.Decimal      `json:"amount"`
	PaymentDate       time.Time            `json:"paymentDate"`
	Method            domain.PaymentMethod `json:"method"`
	Reference         string               `json:"reference,omitempty"`
	CreatedAt         time.Time            `json:"createdAt"`
	CreatedBy         string               `json:"createdBy"`
}

// ListPaymentsResponse wraps the list of payments on an invoice.
type ListPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:         p.PaymentID,
		CompanyID:         p.CompanyID,
		InvoiceID:         p.InvoiceID,
		BankTransactionID: p.BankTransactionID,
		Amount:            p.Amount,
		PaymentDate:       p.PaymentDate,
		Method:            p.Method,
		Reference:         p.Reference,
		CreatedAt:         p.CreatedAt,
		CreatedBy:         p.CreatedBy,
	}
}

// ToListPaymentsResponse converts a slice of domain.Payment to ListPaymentsResponse DTO
func ToListPaymentsResponse(payments []domain.Payment) ListPaymentsResponse {
	res := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		res[i] = ToPaymentResponse(&p)
	}
	return ListPaymentsResponse{Payments: res}
}
