package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/core/services"
	"github.com/fakturko/sef_backoffice/internal/dto"
	"github.com/fakturko/sef_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// vatHandler handles HTTP requests for VAT period reports.
type vatHandler struct {
	vatService portssvc.VATSvcFacade
}

// newVATHandler creates a new vatHandler.
func newVATHandler(vs portssvc.VATSvcFacade) *vatHandler {
	return &vatHandler{
		vatService: vs,
	}
}

// registerVATRoutes registers VAT routes nested under a company.
func registerVATRoutes(rg *gin.RouterGroup, vatService portssvc.VATSvcFacade) {
	h := newVATHandler(vatService)

	vat := rg.Group("/vat")
	{
		vat.POST("/calculate", h.calculatePeriod)

		reports := vat.Group("/reports")
		{
			reports.POST("", h.saveReport)
			reports.GET("", h.listReports)
			reports.GET("/:report_id", h.getReport)
			reports.GET("/:report_id/xml", h.exportReportXML)
			reports.POST("/:report_id/submit", h.submitReport)
			reports.DELETE("/:report_id", h.deleteReport)
		}
	}
}

// calculatePeriod godoc
// @Summary Calculate a VAT period
// @Description Aggregates the company's invoice lines for the declaration period into the PPPDV field set. Nothing is persisted.
// @Tags vat
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param period body dto.VATPeriodRequest true "Declaration period"
// @Success 200 {object} dto.VATPeriodDataResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/vat/calculate [post]
func (h *vatHandler) calculatePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.VATPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	data, err := h.vatService.CalculateVATPeriod(c.Request.Context(), companyID, req.Year, req.Month, req.PeriodType, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPeriod), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to calculate VAT period", slog.String("error", err.Error()),
				slog.String("company_id", companyID), slog.Int("year", req.Year), slog.Int("month", req.Month))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to calculate VAT period"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToVATPeriodDataResponse(data))
}

// saveReport godoc
// @Summary Calculate and store a VAT report
// @Description Calculates the period and stores the result, replacing any previous calculation for the same period that was not yet submitted.
// @Tags vat
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param period body dto.VATPeriodRequest true "Declaration period"
// @Success 201 {object} dto.VATReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "A submitted report already exists for the period"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/vat/reports [post]
func (h *vatHandler) saveReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.VATPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	report, err := h.vatService.SaveVATReport(c.Request.Context(), companyID, req.Year, req.Month, req.PeriodType, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPeriod), errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrReportSubmitted), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to save VAT report", slog.String("error", err.Error()),
				slog.String("company_id", companyID), slog.Int("year", req.Year), slog.Int("month", req.Month))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save VAT report"})
		}
		return
	}

	logger.Info("VAT report saved",
		slog.String("report_id", report.ReportID),
		slog.Int("year", report.Year),
		slog.Int("month", report.Month))
	c.JSON(http.StatusCreated, dto.ToVATReportResponse(report))
}

// listReports godoc
// @Summary List VAT reports
// @Description Retrieves stored VAT reports for a company, newest period first.
// @Tags vat
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} dto.ListVATReportsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/vat/reports [get]
func (h *vatHandler) listReports(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	reports, err := h.vatService.ListVATReports(c.Request.Context(), companyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
			return
		}
		logger.Error("Failed to list VAT reports", slog.String("error", err.Error()), slog.String("company_id", companyID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list VAT reports"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListVATReportsResponse(reports))
}

// getReport godoc
// @Summary Get VAT report by ID
// @Description Retrieves a single stored VAT report.
// @Tags vat
// @Produce json
// @Param company_id path string true "Company ID"
// @Param report_id path string true "Report ID"
// @Success 200 {object} dto.VATReportResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/vat/reports/{report_id} [get]
func (h *vatHandler) getReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	reportID := c.Param("report_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	report, err := h.vatService.GetVATReportByID(c.Request.Context(), companyID, reportID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "VAT report not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to get VAT report", slog.String("error", err.Error()), slog.String("report_id", reportID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get VAT report"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToVATReportResponse(report))
}

// exportReportXML godoc
// @Summary Export a VAT report as PPPDV XML
// @Description Renders a stored VAT report as the PPPDV tax return XML document.
// @Tags vat
// @Produce xml
// @Param company_id path string true "Company ID"
// @Param report_id path string true "Report ID"
// @Success 200 {string} string "PPPDV XML document"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/vat/reports/{report_id}/xml [get]
func (h *vatHandler) exportReportXML(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	reportID := c.Param("report_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	raw, err := h.vatService.ExportVATReportXML(c.Request.Context(), companyID, reportID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "VAT report not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to export VAT report", slog.String("error", err.Error()), slog.String("report_id", reportID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to export VAT report"})
		}
		return
	}

	c.Data(http.StatusOK, "application/xml", raw)
}

// submitReport godoc
// @Summary Submit a VAT report
// @Description Marks a calculated report as submitted. Submitted reports are frozen and cannot be recalculated or deleted.
// @Tags vat
// @Produce json
// @Param company_id path string true "Company ID"
// @Param report_id path string true "Report ID"
// @Success 200 {object} dto.VATReportResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Report already submitted"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/vat/reports/{report_id}/submit [post]
func (h *vatHandler) submitReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	reportID := c.Param("report_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	report, err := h.vatService.SubmitVATReport(c.Request.Context(), companyID, reportID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportSubmitted), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "VAT report not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to submit VAT report", slog.String("error", err.Error()), slog.String("report_id", reportID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to submit VAT report"})
		}
		return
	}

	logger.Info("VAT report submitted", slog.String("report_id", reportID))
	c.JSON(http.StatusOK, dto.ToVATReportResponse(report))
}

// deleteReport godoc
// @Summary Delete a VAT report
// @Description Deletes a stored report that was not yet submitted.
// @Tags vat
// @Produce json
// @Param company_id path string true "Company ID"
// @Param report_id path string true "Report ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Submitted reports cannot be deleted"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/vat/reports/{report_id} [delete]
func (h *vatHandler) deleteReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	reportID := c.Param("report_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.vatService.DeleteVATReport(c.Request.Context(), companyID, reportID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrReportSubmitted), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "VAT report not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to delete VAT report", slog.String("error", err.Error()), slog.String("report_id", reportID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete VAT report"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
