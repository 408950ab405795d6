package mapping

import (
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	"github.com/fakturko/sef_backoffice/internal/models"
)

// ToModelVATReport converts a domain VATPeriodReport to a model VATReport
func ToModelVATReport(d domain.VATPeriodReport) models.VATReport {
	return models.VATReport{
		ReportID:    d.ReportID,
		CompanyID:   d.CompanyID,
		Year:        d.Year,
		Month:       d.Month,
		PeriodType:  string(d.PeriodType),
		Status:      string(d.Status),
		SubmittedAt: d.SubmittedAt,

		OutputBase20: d.OutputBase20,
		OutputVAT20:  d.OutputVAT20,
		OutputBase10: d.OutputBase10,
		OutputVAT10:  d.OutputVAT10,
		OutputBase0:  d.OutputBase0,

		InputBase20: d.InputBase20,
		InputVAT20:  d.InputVAT20,
		InputBase10: d.InputBase10,
		InputVAT10:  d.InputVAT10,
		InputBase0:  d.InputBase0,

		OutputBaseTotal: d.OutputBaseTotal,
		OutputVATTotal:  d.OutputVATTotal,
		InputBaseTotal:  d.InputBaseTotal,
		InputVATTotal:   d.InputVATTotal,

		VATPayable:  d.VATPayable,
		VATRefund:   d.VATRefund,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainVATReport converts a model VATReport to a domain VATPeriodReport
func ToDomainVATReport(m models.VATReport) domain.VATPeriodReport {
	return domain.VATPeriodReport{
		ReportID:    m.ReportID,
		CompanyID:   m.CompanyID,
		Year:        m.Year,
		Month:       m.Month,
		PeriodType:  domain.VATPeriodType(m.PeriodType),
		Status:      domain.VATReportStatus(m.Status),
		SubmittedAt: m.SubmittedAt,
		VATPeriodData: domain.VATPeriodData{
			OutputBase20: m.OutputBase20,
			OutputVAT20:  m.OutputVAT20,
			OutputBase10: m.OutputBase10,
			OutputVAT10:  m.OutputVAT10,
			OutputBase0:  m.OutputBase0,

			InputBase20: m.InputBase20,
			InputVAT20:  m.InputVAT20,
			InputBase10: m.InputBase10,
			InputVAT10:  m.InputVAT10,
			InputBase0:  m.InputBase0,

			OutputBaseTotal: m.OutputBaseTotal,
			OutputVATTotal:  m.OutputVATTotal,
			InputBaseTotal:  m.InputBaseTotal,
			InputVATTotal:   m.InputVATTotal,

			VATPayable: m.VATPayable,
			VATRefund:  m.VATRefund,
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
