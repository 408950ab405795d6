package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	"github.com/fakturko/sef_backoffice/internal/models"
	"github.com/fakturko/sef_backoffice/internal/utils/mapping"
	"github.com/fakturko/sef_backoffice/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBankRepository struct {
	BaseRepository
}

// newPgxBankRepository creates a new repository for bank statement and
// transaction data.
func newPgxBankRepository(pool *pgxpool.Pool) portsrepo.BankRepositoryFacade {
	return &PgxBankRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxBankRepository implements portsrepo.BankRepositoryFacade
var _ portsrepo.BankRepositoryFacade = (*PgxBankRepository)(nil)

const statementSelectQuery = `
SELECT s.statement_id, s.company_id, s.account_number, s.statement_number,
       s.statement_date, s.currency_code, s.opening_balance, s.closing_balance,
       s.total_credit, s.total_debit,
       s.created_at, s.created_by, s.last_updated_at, s.last_updated_by
FROM bank_statements s
`

const transactionSelectQuery = `
SELECT t.transaction_id, t.statement_id, t.company_id, t.direction, t.amount,
       t.value_date, t.partner_name, t.partner_account, t.reference, t.description,
       t.match_status, t.matched_invoice_id, t.payment_id,
       t.created_at, t.created_by, t.last_updated_at, t.last_updated_by
FROM bank_transactions t
`

func scanStatement(row pgx.Row) (models.BankStatement, error) {
	var m models.BankStatement
	err := row.Scan(
		&m.StatementID,
		&m.CompanyID,
		&m.AccountNumber,
		&m.StatementNumber,
		&m.StatementDate,
		&m.CurrencyCode,
		&m.OpeningBalance,
		&m.ClosingBalance,
		&m.TotalCredit,
		&m.TotalDebit,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanTransaction(row pgx.Row) (models.BankTransaction, error) {
	var m models.BankTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.StatementID,
		&m.CompanyID,
		&m.Direction,
		&m.Amount,
		&m.ValueDate,
		&m.PartnerName,
		&m.PartnerAccount,
		&m.Reference,
		&m.Description,
		&m.MatchStatus,
		&m.MatchedInvoiceID,
		&m.PaymentID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveStatement persists the statement header and all its transactions in one
// transaction, so a half-imported statement can never be observed.
func (r *PgxBankRepository) SaveStatement(ctx context.Context, statement domain.BankStatement, transactions []domain.BankTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	model := mapping.ToModelBankStatement(statement)
	insertStatement := `
		INSERT INTO bank_statements (
			statement_id, company_id, account_number, statement_number,
			statement_date, currency_code, opening_balance, closing_balance,
			total_credit, total_debit,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, insertStatement,
		model.StatementID,
		model.CompanyID,
		model.AccountNumber,
		model.StatementNumber,
		model.StatementDate,
		model.CurrencyCode,
		model.OpeningBalance,
		model.ClosingBalance,
		model.TotalCredit,
		model.TotalDebit,
		model.CreatedAt,
		model.CreatedBy,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewAppError(409, "statement "+statement.StatementNumber+" already imported for account "+statement.AccountNumber, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert bank statement", err)
	}

	insertTransaction := `
		INSERT INTO bank_transactions (
			transaction_id, statement_id, company_id, direction, amount,
			value_date, partner_name, partner_account, reference, description,
			match_status, matched_invoice_id, payment_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	batch := &pgx.Batch{}
	for _, txn := range transactions {
		tm := mapping.ToModelBankTransaction(txn)
		batch.Queue(insertTransaction,
			tm.TransactionID,
			tm.StatementID,
			tm.CompanyID,
			tm.Direction,
			tm.Amount,
			tm.ValueDate,
			tm.PartnerName,
			tm.PartnerAccount,
			tm.Reference,
			tm.Description,
			tm.MatchStatus,
			tm.MatchedInvoiceID,
			tm.PaymentID,
			tm.CreatedAt,
			tm.CreatedBy,
			tm.LastUpdatedAt,
			tm.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range transactions {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return apperrors.NewAppError(500, "failed to insert bank transaction", err)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close bank transaction batch", err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxBankRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	query := statementSelectQuery + `WHERE s.statement_id = $1;`
	model, err := scanStatement(r.Pool.QueryRow(ctx, query, statementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("bank statement " + statementID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query bank statement "+statementID, err)
	}
	statement := mapping.ToDomainBankStatement(model)
	return &statement, nil
}

// ListStatementsByCompany retrieves a page of statements, newest first, using
// token-based pagination over (statement_date, created_at).
func (r *PgxBankRepository) ListStatementsByCompany(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.BankStatement, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := statementSelectQuery + `WHERE s.company_id = $1`
	args := []interface{}{companyID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` AND (s.statement_date, s.created_at) < ($2, $3)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY s.statement_date DESC, s.created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query bank statements for company "+companyID, err)
	}
	defer rows.Close()

	modelStatements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BankStatement, error) {
		return scanStatement(row)
	})
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to collect bank statement rows", err)
	}

	var nextTokenVal *string
	if len(modelStatements) > limit {
		last := modelStatements[limit-1]
		token := pagination.EncodeToken(last.StatementDate, last.CreatedAt)
		nextTokenVal = &token
		modelStatements = modelStatements[:limit]
	}

	statements := make([]domain.BankStatement, len(modelStatements))
	for i, m := range modelStatements {
		statements[i] = mapping.ToDomainBankStatement(m)
	}
	return statements, nextTokenVal, nil
}

func (r *PgxBankRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankTransaction, error) {
	query := transactionSelectQuery + `WHERE t.transaction_id = $1;`
	model, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("bank transaction " + transactionID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query bank transaction "+transactionID, err)
	}
	txn := mapping.ToDomainBankTransaction(model)
	return &txn, nil
}

func (r *PgxBankRepository) FindTransactionsByStatementID(ctx context.Context, statementID string) ([]domain.BankTransaction, error) {
	query := transactionSelectQuery + `WHERE t.statement_id = $1 ORDER BY t.value_date, t.created_at;`
	return r.collectTransactions(ctx, query, statementID)
}

// FindUnmatchedCreditTransactions returns the auto-match work list of a
// statement: inflows that are still UNMATCHED.
func (r *PgxBankRepository) FindUnmatchedCreditTransactions(ctx context.Context, statementID string) ([]domain.BankTransaction, error) {
	query := transactionSelectQuery + `
		WHERE t.statement_id = $1
		  AND t.direction = 'CREDIT'
		  AND t.match_status = 'UNMATCHED'
		ORDER BY t.value_date, t.created_at;
	`
	return r.collectTransactions(ctx, query, statementID)
}

func (r *PgxBankRepository) collectTransactions(ctx context.Context, query string, args ...interface{}) ([]domain.BankTransaction, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bank transactions", err)
	}
	defer rows.Close()

	modelTxns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BankTransaction, error) {
		return scanTransaction(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect bank transaction rows", err)
	}

	return mapping.ToDomainBankTransactions(modelTxns), nil
}

// UpdateTransactionMatch updates the match bookkeeping of a transaction
// outside of payment creation, e.g. the IGNORED override.
func (r *PgxBankRepository) UpdateTransactionMatch(ctx context.Context, transactionID string, status domain.MatchStatus, matchedInvoiceID *string, paymentID *string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE bank_transactions
		SET match_status = $2, matched_invoice_id = $3, payment_id = $4,
		    last_updated_at = $5, last_updated_by = $6
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, string(status), matchedInvoiceID, paymentID, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update match status of transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("bank transaction " + transactionID + " not found")
	}
	return nil
}
