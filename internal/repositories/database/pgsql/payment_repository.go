package pgsql

import (
	"context"
	"errors"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	"github.com/fakturko/sef_backoffice/internal/models"
	"github.com/fakturko/sef_backoffice/internal/utils/mapping"
	"github.com/fakturko/sef_backoffice/internal/utils/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPaymentRepository struct {
	BaseRepository
}

// newPgxPaymentRepository creates a new repository for payment data.
func newPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPaymentRepository implements portsrepo.PaymentRepositoryFacade
var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentSelectQuery = `
SELECT p.payment_id, p.company_id, p.invoice_id, p.bank_transaction_id,
       p.amount, p.payment_date, p.method, p.reference,
       p.created_at, p.created_by, p.last_updated_at, p.last_updated_by
FROM payments p
`

func scanPayment(row pgx.Row) (models.Payment, error) {
	var m models.Payment
	err := row.Scan(
		&m.PaymentID,
		&m.CompanyID,
		&m.InvoiceID,
		&m.BankTransactionID,
		&m.Amount,
		&m.PaymentDate,
		&m.Method,
		&m.Reference,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreatePaymentAndApply runs the whole balance update as one database
// transaction. The invoice row is locked first, the outstanding amount is
// re-checked under the lock, the payment is inserted (the unique constraint
// on bank_transaction_id turns a double-match race into ErrConflict), the
// invoice paid amount and payment status are advanced, and the originating
// bank transaction, if any, is marked MATCHED.
func (r *PgxPaymentRepository) CreatePaymentAndApply(ctx context.Context, payment domain.Payment) (*domain.Invoice, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := invoiceSelectQuery + `WHERE i.invoice_id = $1 FOR UPDATE;`
	invoiceModel, err := scanInvoice(tx.QueryRow(ctx, lockQuery, payment.InvoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("invoice " + payment.InvoiceID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to lock invoice "+payment.InvoiceID, err)
	}
	invoice := mapping.ToDomainInvoice(invoiceModel)

	newPaid := invoice.PaidAmount.Add(payment.Amount)
	if newPaid.Sub(invoice.TotalAmount).GreaterThan(money.DefaultTolerance) {
		return nil, apperrors.NewConflictError("payment of " + payment.Amount.String() +
			" exceeds the remaining amount of invoice " + invoice.InvoiceID)
	}

	paymentModel := mapping.ToModelPayment(payment)
	insertPayment := `
		INSERT INTO payments (
			payment_id, company_id, invoice_id, bank_transaction_id,
			amount, payment_date, method, reference,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, insertPayment,
		paymentModel.PaymentID,
		paymentModel.CompanyID,
		paymentModel.InvoiceID,
		paymentModel.BankTransactionID,
		paymentModel.Amount,
		paymentModel.PaymentDate,
		paymentModel.Method,
		paymentModel.Reference,
		paymentModel.CreatedAt,
		paymentModel.CreatedBy,
		paymentModel.LastUpdatedAt,
		paymentModel.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("bank transaction already settled by another payment")
		}
		return nil, apperrors.NewAppError(500, "failed to insert payment", err)
	}

	newStatus := domain.PaymentStatusFor(newPaid, invoice.TotalAmount)
	updateInvoice := `
		UPDATE invoices
		SET paid_amount = $2, payment_status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE invoice_id = $1;
	`
	_, err = tx.Exec(ctx, updateInvoice,
		invoice.InvoiceID,
		newPaid,
		string(newStatus),
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to apply payment to invoice "+invoice.InvoiceID, err)
	}

	if payment.BankTransactionID != nil {
		updateTxn := `
			UPDATE bank_transactions
			SET match_status = $2, matched_invoice_id = $3, payment_id = $4,
			    last_updated_at = $5, last_updated_by = $6
			WHERE transaction_id = $1;
		`
		_, err = tx.Exec(ctx, updateTxn,
			*payment.BankTransactionID,
			string(domain.Matched),
			invoice.InvoiceID,
			payment.PaymentID,
			payment.LastUpdatedAt,
			payment.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to mark bank transaction matched", err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	invoice.PaidAmount = newPaid
	invoice.PaymentStatus = newStatus
	invoice.LastUpdatedAt = payment.LastUpdatedAt
	invoice.LastUpdatedBy = payment.LastUpdatedBy
	return &invoice, nil
}

func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := paymentSelectQuery + `WHERE p.payment_id = $1;`
	model, err := scanPayment(r.Pool.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("payment " + paymentID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query payment "+paymentID, err)
	}
	payment := mapping.ToDomainPayment(model)
	return &payment, nil
}

func (r *PgxPaymentRepository) FindPaymentByBankTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	query := paymentSelectQuery + `WHERE p.bank_transaction_id = $1;`
	model, err := scanPayment(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no payment for bank transaction " + transactionID)
		}
		return nil, apperrors.NewAppError(500, "failed to query payment by bank transaction", err)
	}
	payment := mapping.ToDomainPayment(model)
	return &payment, nil
}

func (r *PgxPaymentRepository) ListPaymentsByInvoiceID(ctx context.Context, invoiceID string) ([]domain.Payment, error) {
	query := paymentSelectQuery + `WHERE p.invoice_id = $1 ORDER BY p.payment_date, p.created_at;`
	rows, err := r.Pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payments of invoice "+invoiceID, err)
	}
	defer rows.Close()

	modelPayments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Payment, error) {
		return scanPayment(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect payment rows", err)
	}

	payments := make([]domain.Payment, len(modelPayments))
	for i, m := range modelPayments {
		payments[i] = mapping.ToDomainPayment(m)
	}
	return payments, nil
}
