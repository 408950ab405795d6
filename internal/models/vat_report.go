package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VATReport represents a row of the vat_reports table. The pair
// (company_id, year, month) carries a UNIQUE constraint.
type VATReport struct {
	ReportID    string     `db:"report_id"`
	CompanyID   string     `db:"company_id"`
	Year        int        `db:"year"`
	Month       int        `db:"month"`
	PeriodType  string     `db:"period_type"`
	Status      string     `db:"status"`
	SubmittedAt *time.Time `db:"submitted_at"`

	OutputBase20 decimal.Decimal `db:"output_base_20"`
	OutputVAT20  decimal.Decimal `db:"output_vat_20"`
	OutputBase10 decimal.Decimal `db:"output_base_10"`
	OutputVAT10  decimal.Decimal `db:"output_vat_10"`
	OutputBase0  decimal.Decimal `db:"output_base_0"`

	InputBase20 decimal.Decimal `db:"input_base_20"`
	InputVAT20  decimal.Decimal `db:"input_vat_20"`
	InputBase10 decimal.Decimal `db:"input_base_10"`
	InputVAT10  decimal.Decimal `db:"input_vat_10"`
	InputBase0  decimal.Decimal `db:"input_base_0"`

	OutputBaseTotal decimal.Decimal `db:"output_base_total"`
	OutputVATTotal  decimal.Decimal `db:"output_vat_total"`
	InputBaseTotal  decimal.Decimal `db:"input_base_total"`
	InputVATTotal   decimal.Decimal `db:"input_vat_total"`

	VATPayable decimal.Decimal `db:"vat_payable"`
	VATRefund  decimal.Decimal `db:"vat_refund"`
	AuditFields
}
