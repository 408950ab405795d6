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

// reconciliationHandler handles HTTP requests for bank statements,
// transaction matching and payments.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

// newReconciliationHandler creates a new reconciliationHandler.
func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: rs,
	}
}

// registerReconciliationRoutes registers statement, transaction and payment
// routes nested under a company.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	statements := rg.Group("/statements")
	{
		statements.POST("", h.importStatement)
		statements.GET("", h.listStatements)
		statements.GET("/:statement_id", h.getStatement)
		statements.GET("/:statement_id/unmatched", h.listUnmatchedCredits)
		statements.POST("/:statement_id/automatch", h.runAutoMatch)
	}

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/:transaction_id/match", h.matchTransaction)
		transactions.POST("/:transaction_id/payment", h.createPaymentFromTransaction)
		transactions.POST("/:transaction_id/ignore", h.ignoreTransaction)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordManualPayment)
	}

	rg.GET("/invoices/:invoice_id/payments", h.listInvoicePayments)
}

// importStatement godoc
// @Summary Import a bank statement
// @Description Imports a bank statement with its transactions. The opening/closing balances must reconcile with the credit and debit totals.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param statement body dto.ImportStatementRequest true "Statement details"
// @Success 201 {object} dto.BankStatementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Statement already imported"
// @Failure 422 {object} ErrorResponse "Balances do not reconcile"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/statements [post]
func (h *reconciliationHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.ImportStatementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	statement, err := h.reconciliationService.ImportStatement(c.Request.Context(), companyID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStatementUnbalanced):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Statement already imported"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to import statement", slog.String("error", err.Error()), slog.String("company_id", companyID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to import statement"})
		}
		return
	}

	logger.Info("Statement imported",
		slog.String("statement_id", statement.StatementID),
		slog.Int("transactions", len(statement.Transactions)))
	c.JSON(http.StatusCreated, dto.ToBankStatementResponse(statement))
}

// listStatements godoc
// @Summary List bank statements
// @Description Retrieves imported bank statements for a company, newest first.
// @Tags reconciliation
// @Produce json
// @Param company_id path string true "Company ID"
// @Success 200 {object} dto.ListStatementsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/statements [get]
func (h *reconciliationHandler) listStatements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	statements, err := h.reconciliationService.ListStatements(c.Request.Context(), companyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
			return
		}
		logger.Error("Failed to list statements", slog.String("error", err.Error()), slog.String("company_id", companyID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list statements"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListStatementsResponse(statements))
}

// getStatement godoc
// @Summary Get bank statement by ID
// @Description Retrieves a single bank statement with all of its transactions.
// @Tags reconciliation
// @Produce json
// @Param company_id path string true "Company ID"
// @Param statement_id path string true "Statement ID"
// @Success 200 {object} dto.BankStatementResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/statements/{statement_id} [get]
func (h *reconciliationHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	statementID := c.Param("statement_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	statement, err := h.reconciliationService.GetStatementByID(c.Request.Context(), companyID, statementID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Statement not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to get statement", slog.String("error", err.Error()), slog.String("statement_id", statementID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to get statement"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBankStatementResponse(statement))
}

// listUnmatchedCredits godoc
// @Summary List unmatched credit transactions
// @Description Retrieves the incoming transactions of a statement that are still awaiting a match.
// @Tags reconciliation
// @Produce json
// @Param company_id path string true "Company ID"
// @Param statement_id path string true "Statement ID"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/statements/{statement_id}/unmatched [get]
func (h *reconciliationHandler) listUnmatchedCredits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	statementID := c.Param("statement_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	transactions, err := h.reconciliationService.ListUnmatchedCredits(c.Request.Context(), companyID, &statementID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Statement not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to list unmatched transactions", slog.String("error", err.Error()), slog.String("statement_id", statementID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list unmatched transactions"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: dto.ToBankTransactionResponses(transactions)})
}

// runAutoMatch godoc
// @Summary Auto-match a statement
// @Description Runs the matcher over every unmatched credit transaction of the statement. Confident matches produce payments immediately; ambiguous transactions are left for manual review.
// @Tags reconciliation
// @Produce json
// @Param company_id path string true "Company ID"
// @Param statement_id path string true "Statement ID"
// @Success 200 {object} dto.AutoMatchResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/statements/{statement_id}/automatch [post]
func (h *reconciliationHandler) runAutoMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	statementID := c.Param("statement_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.reconciliationService.RunAutoMatch(c.Request.Context(), companyID, statementID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Statement not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Auto-match run failed", slog.String("error", err.Error()), slog.String("statement_id", statementID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Auto-match run failed"})
		}
		return
	}

	logger.Info("Auto-match completed",
		slog.String("statement_id", statementID),
		slog.Int("examined", result.Examined),
		slog.Int("matched", result.Matched))
	c.JSON(http.StatusOK, result)
}

// matchTransaction godoc
// @Summary Manually match a transaction
// @Description Pairs a credit transaction with an open invoice and records the payment in one step.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Param match body dto.MatchTransactionRequest true "Invoice to match against"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Transaction already matched or payment exceeds invoice total"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id}/match [post]
func (h *reconciliationHandler) matchTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")

	var req dto.MatchTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	payment, err := h.reconciliationService.MatchTransaction(c.Request.Context(), companyID, transactionID, req.InvoiceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotCreditTxn), errors.Is(err, services.ErrTxnIgnored):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrTxnAlreadyMatched), errors.Is(err, services.ErrOverPayment):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transaction or invoice not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to match transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to match transaction"})
		}
		return
	}

	logger.Info("Transaction matched",
		slog.String("transaction_id", transactionID),
		slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// createPaymentFromTransaction godoc
// @Summary Record payment for a matched transaction
// @Description Records the payment for a transaction that already carries an invoice reference but no payment yet.
// @Tags reconciliation
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse "Transaction carries no invoice reference"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id}/payment [post]
func (h *reconciliationHandler) createPaymentFromTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	payment, err := h.reconciliationService.CreatePaymentFromMatchedTransaction(c.Request.Context(), companyID, transactionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoMatchedInvoice):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrTxnAlreadyMatched), errors.Is(err, services.ErrOverPayment), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transaction not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to record payment for transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to record payment"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// ignoreTransaction godoc
// @Summary Ignore a transaction
// @Description Marks a transaction as not relevant for invoice matching (bank fees, internal transfers).
// @Tags reconciliation
// @Produce json
// @Param company_id path string true "Company ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Transaction already produced a payment"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/transactions/{transaction_id}/ignore [post]
func (h *reconciliationHandler) ignoreTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	transactionID := c.Param("transaction_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.reconciliationService.IgnoreTransaction(c.Request.Context(), companyID, transactionID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrTxnAlreadyMatched):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Transaction not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to ignore transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to ignore transaction"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// recordManualPayment godoc
// @Summary Record a manual payment
// @Description Records a payment that did not arrive through a bank statement (cash, card, compensation) and applies it to the invoice.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param company_id path string true "Company ID"
// @Param payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Payment exceeds invoice total"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/payments [post]
func (h *reconciliationHandler) recordManualPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	payment, err := h.reconciliationService.RecordManualPayment(c.Request.Context(), companyID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrOverPayment), errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Invoice not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to record manual payment", slog.String("error", err.Error()), slog.String("invoice_id", req.InvoiceID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to record payment"})
		}
		return
	}

	logger.Info("Manual payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("invoice_id", payment.InvoiceID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// listInvoicePayments godoc
// @Summary List payments on an invoice
// @Description Retrieves every payment applied to an invoice, newest first.
// @Tags reconciliation
// @Produce json
// @Param company_id path string true "Company ID"
// @Param invoice_id path string true "Invoice ID"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /companies/{company_id}/invoices/{invoice_id}/payments [get]
func (h *reconciliationHandler) listInvoicePayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	invoiceID := c.Param("invoice_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	payments, err := h.reconciliationService.ListInvoicePayments(c.Request.Context(), companyID, invoiceID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Invoice not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		default:
			logger.Error("Failed to list payments", slog.String("error", err.Error()), slog.String("invoice_id", invoiceID))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list payments"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListPaymentsResponse(payments))
}
