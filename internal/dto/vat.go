package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fakturko/sef_backoffice/internal/core/domain"
)

// VATPeriodRequest identifies a VAT declaration period. For quarterly
// payers any month of the quarter selects the whole quarter.
type VATPeriodRequest struct {
	Year       int                  `json:"year" binding:"required,min=2000,max=2100"`
	Month      int                  `json:"month" binding:"required,min=1,max=12"`
	PeriodType domain.VATPeriodType `json:"periodType" binding:"required,oneof=MONTHLY QUARTERLY"`
}

// VATPeriodDataResponse carries the declared field set of a PPPDV form.
type VATPeriodDataResponse struct {
	OutputBase20 decimal.Decimal `json:"outputBase20"`
	OutputVAT20  decimal.Decimal `json:"outputVAT20"`
	OutputBase10 decimal.Decimal `json:"outputBase10"`
	OutputVAT10  decimal.Decimal `json:"outputVAT10"`
	OutputBase0  decimal.Decimal `json:"outputBase0"`

	InputBase20 decimal.Decimal `json:"inputBase20"`
	InputVAT20  decimal.Decimal `json:"inputVAT20"`
	InputBase10 decimal.Decimal `json:"inputBase10"`
	InputVAT10  decimal.Decimal `json:"inputVAT10"`
	InputBase0  decimal.Decimal `json:"inputBase0"`

	OutputBaseTotal decimal.Decimal `json:"outputBaseTotal"`
	OutputVATTotal  decimal.Decimal `json:"outputVATTotal"`
	InputBaseTotal  decimal.Decimal `json:"inputBaseTotal"`
	InputVATTotal   decimal.Decimal `json:"inputVATTotal"`

	VATPayable decimal.Decimal `json:"vatPayable"`
	VATRefund  decimal.Decimal `json:"vatRefund"`
}

// VATReportResponse defines the data returned for a VAT period report.
type VATReportResponse struct {
	ReportID    string                 `json:"reportID"`
	CompanyID   string                 `json:"companyID"`
	Year        int                    `json:"year"`
	Month       int                    `json:"month"`
	PeriodType  domain.VATPeriodType   `json:"periodType"`
	PeriodStart time.Time              `json:"periodStart"`
	PeriodEnd   time.Time              `json:"periodEnd"`
	Status      domain.VATReportStatus `json:"status"`
	SubmittedAt *time.Time             `json:"submittedAt,omitempty"`
	Data        VATPeriodDataResponse  `json:"data"`
	CreatedAt   time.Time              `json:"createdAt"`
	CreatedBy   string                 `json:"createdBy"`
}

// ListVATReportsResponse wraps the list of VAT reports for a company.
type ListVATReportsResponse struct {
	Reports []VATReportResponse `json:"reports"`
}

// ToVATPeriodDataResponse converts domain.VATPeriodData to its DTO
func ToVATPeriodDataResponse(d *domain.VATPeriodData) VATPeriodDataResponse {
	return VATPeriodDataResponse{
		OutputBase20:    d.OutputBase20,
		OutputVAT20:     d.OutputVAT20,
		OutputBase10:    d.OutputBase10,
		OutputVAT10:     d.OutputVAT10,
		OutputBase0:     d.OutputBase0,
		InputBase20:     d.InputBase20,
		InputVAT20:      d.InputVAT20,
		InputBase10:     d.InputBase10,
		InputVAT10:      d.InputVAT10,
		InputBase0:      d.InputBase0,
		OutputBaseTotal: d.OutputBaseTotal,
		OutputVATTotal:  d.OutputVATTotal,
		InputBaseTotal:  d.InputBaseTotal,
		InputVATTotal:   d.InputVATTotal,
		VATPayable:      d.VATPayable,
		VATRefund:       d.VATRefund,
	}
}

// ToVATReportResponse converts a domain.VATPeriodReport to VATReportResponse DTO
func ToVATReportResponse(r *domain.VATPeriodReport) VATReportResponse {
	start, end := domain.VATPeriodRange(r.Year, r.Month, r.PeriodType)
	return VATReportResponse{
		ReportID:    r.ReportID,
		CompanyID:   r.CompanyID,
		Year:        r.Year,
		Month:       r.Month,
		PeriodType:  r.PeriodType,
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      r.Status,
		SubmittedAt: r.SubmittedAt,
		Data:        ToVATPeriodDataResponse(&r.VATPeriodData),
		CreatedAt:   r.CreatedAt,
		CreatedBy:   r.CreatedBy,
	}
}

// ToListVATReportsResponse converts a slice of domain.VATPeriodReport to ListVATReportsResponse DTO
func ToListVATReportsResponse(reports []domain.VATPeriodReport) ListVATReportsResponse {
	res := make([]VATReportResponse, len(reports))
	for i, r := range reports {
		res[i] = ToVATReportResponse(&r)
	}
	return ListVATReportsResponse{Reports: res}
}
