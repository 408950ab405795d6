package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VATPeriodType selects monthly or quarterly VAT declaration periods.
type VATPeriodType string

const (
	Monthly   VATPeriodType = "MONTHLY"
	Quarterly VATPeriodType = "QUARTERLY"
)

// Code returns the period-type code used on the PPPDV form: "M" or "K".
func (t VATPeriodType) Code() string {
	if t == Quarterly {
		return "K"
	}
	return "M"
}

// VATReportStatus is the lifecycle status of a VAT period report.
type VATReportStatus string

const (
	ReportCalculated VATReportStatus = "CALCULATED"
	ReportSubmitted  VATReportStatus = "SUBMITTED" // Terminal: the report becomes immutable
)

// VATPeriodData holds the 16 declared numeric fields of a PPPDV declaration.
// Every field is independently rounded to 2 decimals from the summed raw line
// totals. VATPayable and VATRefund are mutually exclusive: one is always zero.
type VATPeriodData struct {
	OutputBase20 decimal.Decimal `json:"outputBase20"` // Taxable base of outgoing lines at 20%
	OutputVAT20  decimal.Decimal `json:"outputVAT20"`
	OutputBase10 decimal.Decimal `json:"outputBase10"` // Taxable base of outgoing lines at 10%
	OutputVAT10  decimal.Decimal `json:"outputVAT10"`
	OutputBase0  decimal.Decimal `json:"outputBase0"` // Zero-rated and exempt outgoing base

	InputBase20 decimal.Decimal `json:"inputBase20"` // Mirrored buckets for incoming invoices
	InputVAT20  decimal.Decimal `json:"inputVAT20"`
	InputBase10 decimal.Decimal `json:"inputBase10"`
	InputVAT10  decimal.Decimal `json:"inputVAT10"`
	InputBase0  decimal.Decimal `json:"inputBase0"`

	OutputBaseTotal decimal.Decimal `json:"outputBaseTotal"`
	OutputVATTotal  decimal.Decimal `json:"outputVATTotal"`
	InputBaseTotal  decimal.Decimal `json:"inputBaseTotal"`
	InputVATTotal   decimal.Decimal `json:"inputVATTotal"`

	VATPayable decimal.Decimal `json:"vatPayable"` // max(outputVAT - inputVAT, 0)
	VATRefund  decimal.Decimal `json:"vatRefund"`  // max(inputVAT - outputVAT, 0)
}

// VATPeriodReport is a periodic VAT declaration, uniquely keyed by
// (companyID, year, month). Once SUBMITTED it may not be recomputed or deleted.
type VATPeriodReport struct {
	ReportID    string        `json:"reportID"` // Primary Key (e.g., UUID)
	CompanyID   string        `json:"companyID"`
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	PeriodType  VATPeriodType `json:"periodType"`
	Status      VATReportStatus `json:"status"`
	SubmittedAt *time.Time      `json:"submittedAt,omitempty"`
	VATPeriodData
	AuditFields
}

// VATPeriodRange resolves (year, month, periodType) to the inclusive date
// window of the declaration period. MONTHLY covers the calendar month;
// QUARTERLY maps month to its containing quarter and covers three months.
func VATPeriodRange(year, month int, periodType VATPeriodType) (time.Time, time.Time) {
	if periodType == Quarterly {
		quarter := (month + 2) / 3
		startMonth := time.Month((quarter-1)*3 + 1)
		start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 3, 0).Add(-time.Nanosecond)
		return start, end
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
