package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/dto"
	"github.com/fakturko/sef_backoffice/internal/utils/money"
)

var (
	ErrStatementUnbalanced = errors.New("statement closing balance does not reconcile with transactions")
	ErrNotCreditTxn        = errors.New("only credit transactions can be matched against outgoing invoices")
	ErrTxnAlreadyMatched   = errors.New("transaction already produced a payment")
	ErrTxnIgnored          = errors.New("transaction is ignored")
	ErrNoMatchedInvoice    = errors.New("transaction carries no invoice reference")
	ErrOverPayment         = errors.New("payment would exceed the invoice total")
)

// reconciliationService implements the ReconciliationSvcFacade interface
type reconciliationService struct {
	BaseService
	bankRepo    portsrepo.BankRepositoryFacade
	invoiceRepo portsrepo.InvoiceReader
	paymentRepo portsrepo.PaymentRepositoryFacade
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	bankRepo portsrepo.BankRepositoryFacade,
	invoiceRepo portsrepo.InvoiceReader,
	paymentRepo portsrepo.PaymentRepositoryFacade,
	companyAuthorizer portssvc.CompanyAuthorizerSvc,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		BaseService: BaseService{CompanyAuthorizer: companyAuthorizer},
		bankRepo:    bankRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// GetStatementByID retrieves a bank statement with its transactions
func (s *reconciliationService) GetStatementByID(ctx context.Context, companyID, statementID, userID string) (*domain.BankStatement, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	statement, err := s.bankRepo.FindStatementByID(ctx, statementID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find statement", slog.String("statement_id", statementID))
		}
		return nil, err
	}
	if statement.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	txns, err := s.bankRepo.FindTransactionsByStatementID(ctx, statementID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load statement transactions", slog.String("statement_id", statementID))
		return nil, err
	}
	statement.Transactions = txns
	return statement, nil
}

// ListStatements retrieves bank statements for a company
func (s *reconciliationService) ListStatements(ctx context.Context, companyID, userID string) ([]domain.BankStatement, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	statements, _, err := s.bankRepo.ListStatementsByCompany(ctx, companyID, 100, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list statements", slog.String("company_id", companyID))
		return nil, err
	}
	if statements == nil {
		return []domain.BankStatement{}, nil
	}
	return statements, nil
}

// ListUnmatchedCredits retrieves unmatched incoming transactions
func (s *reconciliationService) ListUnmatchedCredits(ctx context.Context, companyID string, statementID *string, userID string) ([]domain.BankTransaction, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	if statementID == nil {
		return nil, fmt.Errorf("%w: statement ID is required", apperrors.ErrValidation)
	}
	if _, err := s.statementForCompany(ctx, companyID, *statementID); err != nil {
		return nil, err
	}

	txns, err := s.bankRepo.FindUnmatchedCreditTransactions(ctx, *statementID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unmatched credits", slog.String("statement_id", *statementID))
		return nil, err
	}
	if txns == nil {
		return []domain.BankTransaction{}, nil
	}
	return txns, nil
}

// ImportStatement validates and persists a bank statement with its transactions
func (s *reconciliationService) ImportStatement(ctx context.Context, companyID string, req dto.ImportStatementRequest, userID string) (*domain.BankStatement, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	totalCredit := decimal.Zero
	totalDebit := decimal.Zero
	for i, t := range req.Transactions {
		if !t.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: transaction %d: amount must be positive", apperrors.ErrValidation, i+1)
		}
		switch t.Direction {
		case domain.Credit:
			totalCredit = totalCredit.Add(t.Amount)
		case domain.Debit:
			totalDebit = totalDebit.Add(t.Amount)
		default:
			return nil, fmt.Errorf("%w: transaction %d: unknown direction %q", apperrors.ErrValidation, i+1, t.Direction)
		}
	}
	totalCredit = money.Round2(totalCredit)
	totalDebit = money.Round2(totalDebit)

	expectedClosing := req.OpeningBalance.Add(totalCredit).Sub(totalDebit)
	if !money.WithinTolerance(expectedClosing, req.ClosingBalance, money.DefaultTolerance) {
		return nil, fmt.Errorf("%w: expected closing %s, declared %s",
			ErrStatementUnbalanced, expectedClosing.StringFixed(2), req.ClosingBalance.StringFixed(2))
	}

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	statement := domain.BankStatement{
		StatementID:     uuid.NewString(),
		CompanyID:       companyID,
		AccountNumber:   req.AccountNumber,
		StatementNumber: req.StatementNumber,
		StatementDate:   req.StatementDate,
		CurrencyCode:    req.CurrencyCode,
		OpeningBalance:  req.OpeningBalance,
		ClosingBalance:  req.ClosingBalance,
		TotalCredit:     totalCredit,
		TotalDebit:      totalDebit,
		AuditFields:     audit,
	}

	txns := make([]domain.BankTransaction, len(req.Transactions))
	for i, t := range req.Transactions {
		txns[i] = domain.BankTransaction{
			TransactionID:  uuid.NewString(),
			StatementID:    statement.StatementID,
			CompanyID:      companyID,
			Direction:      t.Direction,
			Amount:         t.Amount,
			ValueDate:      t.ValueDate,
			PartnerName:    t.PartnerName,
			PartnerAccount: t.PartnerAccount,
			Reference:      t.Reference,
			Description:    t.Description,
			MatchStatus:    domain.Unmatched,
			AuditFields:    audit,
		}
	}
	statement.Transactions = txns

	if err := s.bankRepo.SaveStatement(ctx, statement, txns); err != nil {
		s.LogError(ctx, err, "Failed to save statement",
			slog.String("company_id", companyID),
			slog.String("statement_number", req.StatementNumber))
		return nil, err
	}

	s.LogInfo(ctx, "Statement imported",
		slog.String("statement_id", statement.StatementID),
		slog.Int("transactions", len(txns)),
		slog.String("total_credit", totalCredit.StringFixed(2)),
		slog.String("total_debit", totalDebit.StringFixed(2)))
	return &statement, nil
}

// RunAutoMatch matches unmatched credit transactions against open invoices
func (s *reconciliationService) RunAutoMatch(ctx context.Context, companyID, statementID, userID string) (*dto.AutoMatchResult, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	statement, err := s.statementForCompany(ctx, companyID, statementID)
	if err != nil {
		return nil, err
	}

	txns, err := s.bankRepo.FindUnmatchedCreditTransactions(ctx, statementID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load unmatched credits", slog.String("statement_id", statementID))
		return nil, err
	}

	result := &dto.AutoMatchResult{StatementID: statementID, Examined: len(txns)}

	for _, txn := range txns {
		// Candidates are reloaded per transaction: each applied payment
		// changes the remaining amounts of the open set.
		candidates, err := s.invoiceRepo.FindOpenInvoices(ctx, companyID, domain.Outgoing, statement.CurrencyCode)
		if err != nil {
			s.LogError(ctx, err, "Failed to load open invoices", slog.String("company_id", companyID))
			return nil, err
		}

		invoice := pickMatch(txn, candidates)
		if invoice == nil {
			result.StillUnmatched++
			continue
		}

		payment, err := s.applyPayment(ctx, txn, invoice.InvoiceID, txn.Amount, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				// A concurrent run already settled this transaction; the
				// run stays idempotent by skipping it.
				s.LogDebug(ctx, "Transaction settled concurrently, skipping",
					slog.String("transaction_id", txn.TransactionID))
				result.StillUnmatched++
				continue
			}
			return nil, err
		}

		result.Matched++
		result.PaymentIDs = append(result.PaymentIDs, payment.PaymentID)
	}

	s.LogInfo(ctx, "Auto-match run completed",
		slog.String("statement_id", statementID),
		slog.Int("examined", result.Examined),
		slog.Int("matched", result.Matched),
		slog.Int("still_unmatched", result.StillUnmatched))
	return result, nil
}

// MatchTransaction manually pairs a transaction with an invoice and records the payment
func (s *reconciliationService) MatchTransaction(ctx context.Context, companyID, transactionID, invoiceID, userID string) (*domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	txn, err := s.transactionForCompany(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Direction != domain.Credit {
		return nil, ErrNotCreditTxn
	}
	if txn.MatchStatus == domain.Ignored {
		return nil, fmt.Errorf("%w: unignore is not supported", ErrTxnIgnored)
	}
	if txn.PaymentID != nil {
		return nil, fmt.Errorf("%w: payment %s", ErrTxnAlreadyMatched, *txn.PaymentID)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	if remaining := invoice.RemainingAmount(); txn.Amount.Sub(remaining).GreaterThan(money.DefaultTolerance) {
		return nil, fmt.Errorf("%w: amount %s, remaining %s",
			ErrOverPayment, txn.Amount.StringFixed(2), remaining.StringFixed(2))
	}

	return s.applyPayment(ctx, *txn, invoiceID, txn.Amount, userID)
}

// CreatePaymentFromMatchedTransaction records the payment for a transaction
// already carrying an invoice reference but no payment
func (s *reconciliationService) CreatePaymentFromMatchedTransaction(ctx context.Context, companyID, transactionID, userID string) (*domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	txn, err := s.transactionForCompany(ctx, companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.MatchedInvoiceID == nil {
		return nil, ErrNoMatchedInvoice
	}
	if txn.PaymentID != nil {
		return nil, fmt.Errorf("%w: payment %s", ErrTxnAlreadyMatched, *txn.PaymentID)
	}

	return s.applyPayment(ctx, *txn, *txn.MatchedInvoiceID, txn.Amount, userID)
}

// IgnoreTransaction marks a transaction as not relevant for matching
func (s *reconciliationService) IgnoreTransaction(ctx context.Context, companyID, transactionID, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return err
	}

	txn, err := s.transactionForCompany(ctx, companyID, transactionID)
	if err != nil {
		return err
	}
	if txn.PaymentID != nil {
		return fmt.Errorf("%w: payment %s", ErrTxnAlreadyMatched, *txn.PaymentID)
	}

	if err := s.bankRepo.UpdateTransactionMatch(ctx, transactionID, domain.Ignored, nil, nil, userID, time.Now()); err != nil {
		s.LogError(ctx, err, "Failed to ignore transaction", slog.String("transaction_id", transactionID))
		return err
	}

	s.LogInfo(ctx, "Transaction ignored", slog.String("transaction_id", transactionID))
	return nil
}

// RecordManualPayment records a payment that did not arrive through a statement
func (s *reconciliationService) RecordManualPayment(ctx context.Context, companyID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	if remaining := invoice.RemainingAmount(); req.Amount.Sub(remaining).GreaterThan(money.DefaultTolerance) {
		return nil, fmt.Errorf("%w: amount %s, remaining %s",
			ErrOverPayment, req.Amount.StringFixed(2), remaining.StringFixed(2))
	}

	now := time.Now()
	payment := domain.Payment{
		PaymentID:   uuid.NewString(),
		CompanyID:   companyID,
		InvoiceID:   req.InvoiceID,
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Method:      req.Method,
		Reference:   req.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if _, err := s.paymentRepo.CreatePaymentAndApply(ctx, payment); err != nil {
		s.LogError(ctx, err, "Failed to record manual payment",
			slog.String("invoice_id", req.InvoiceID),
			slog.String("amount", req.Amount.StringFixed(2)))
		return nil, err
	}

	s.LogInfo(ctx, "Manual payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("invoice_id", req.InvoiceID),
		slog.String("method", string(req.Method)))
	return &payment, nil
}

// ListInvoicePayments retrieves all payments applied to an invoice
func (s *reconciliationService) ListInvoicePayments(ctx context.Context, companyID, invoiceID, userID string) ([]domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	payments, err := s.paymentRepo.ListPaymentsByInvoiceID(ctx, invoiceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list payments", slog.String("invoice_id", invoiceID))
		return nil, err
	}
	if payments == nil {
		return []domain.Payment{}, nil
	}
	return payments, nil
}

// applyPayment builds the payment for a bank transaction and hands it to the
// atomic repository apply.
func (s *reconciliationService) applyPayment(ctx context.Context, txn domain.BankTransaction, invoiceID string, amount decimal.Decimal, userID string) (*domain.Payment, error) {
	now := time.Now()
	txnID := txn.TransactionID
	payment := domain.Payment{
		PaymentID:         uuid.NewString(),
		CompanyID:         txn.CompanyID,
		InvoiceID:         invoiceID,
		BankTransactionID: &txnID,
		Amount:            amount,
		PaymentDate:       txn.ValueDate,
		Method:            domain.BankTransfer,
		Reference:         txn.Reference,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if _, err := s.paymentRepo.CreatePaymentAndApply(ctx, payment); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to apply payment",
				slog.String("transaction_id", txn.TransactionID),
				slog.String("invoice_id", invoiceID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Payment applied",
		slog.String("payment_id", payment.PaymentID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("invoice_id", invoiceID),
		slog.String("amount", amount.StringFixed(2)))
	return &payment, nil
}

// statementForCompany loads a statement and verifies tenant ownership.
func (s *reconciliationService) statementForCompany(ctx context.Context, companyID, statementID string) (*domain.BankStatement, error) {
	statement, err := s.bankRepo.FindStatementByID(ctx, statementID)
	if err != nil {
		return nil, err
	}
	if statement.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return statement, nil
}

// transactionForCompany loads a transaction and verifies tenant ownership.
func (s *reconciliationService) transactionForCompany(ctx context.Context, companyID, transactionID string) (*domain.BankTransaction, error) {
	txn, err := s.bankRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return txn, nil
}

// pickMatch selects the invoice a credit transaction settles, or nil when no
// confident choice exists. An exact amount match within tolerance is required;
// partner identity narrows multiple hits; the earliest due date breaks the
// remaining tie unless two invoices share it, which leaves the transaction
// unmatched for manual review.
func pickMatch(txn domain.BankTransaction, candidates []domain.Invoice) *domain.Invoice {
	var amountMatches []domain.Invoice
	for _, inv := range candidates {
		if money.WithinTolerance(inv.RemainingAmount(), txn.Amount, money.DefaultTolerance) {
			amountMatches = append(amountMatches, inv)
		}
	}

	switch len(amountMatches) {
	case 0:
		return nil
	case 1:
		return &amountMatches[0]
	}

	if txn.PartnerAccount != "" || txn.PartnerName != "" {
		var partnerMatches []domain.Invoice
		for _, inv := range amountMatches {
			if samePartner(txn, inv) {
				partnerMatches = append(partnerMatches, inv)
			}
		}
		if len(partnerMatches) == 1 {
			return &partnerMatches[0]
		}
		if len(partnerMatches) > 1 {
			amountMatches = partnerMatches
		}
	}

	best := 0
	for i := 1; i < len(amountMatches); i++ {
		if amountMatches[i].DueDate.Before(amountMatches[best].DueDate) {
			best = i
		}
	}
	for i := range amountMatches {
		if i != best && amountMatches[i].DueDate.Equal(amountMatches[best].DueDate) {
			return nil // Ambiguous: two equally plausible invoices.
		}
	}
	return &amountMatches[best]
}

// samePartner reports whether the transaction counterparty plausibly equals
// the invoice partner. Account numbers are authoritative; names are compared
// case-insensitively as a fallback.
func samePartner(txn domain.BankTransaction, inv domain.Invoice) bool {
	if txn.PartnerAccount != "" && inv.PartnerAccount != "" {
		return txn.PartnerAccount == inv.PartnerAccount
	}
	if txn.PartnerName != "" && inv.PartnerName != "" {
		return strings.EqualFold(strings.TrimSpace(txn.PartnerName), strings.TrimSpace(inv.PartnerName))
	}
	return false
}
