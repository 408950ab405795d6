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

type PgxInvoiceRepository struct {
	BaseRepository
}

// newPgxInvoiceRepository creates a new repository for invoice data.
func newPgxInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxInvoiceRepository implements portsrepo.InvoiceRepositoryFacade
var _ portsrepo.InvoiceRepositoryFacade = (*PgxInvoiceRepository)(nil)

const invoiceSelectQuery = `
SELECT i.invoice_id, i.company_id, i.invoice_number, i.direction, i.status, i.payment_status,
       i.partner_name, i.partner_pib, i.partner_account, i.currency_code,
       i.issue_date, i.due_date, i.total_amount, i.tax_amount, i.paid_amount,
       i.created_at, i.created_by, i.last_updated_at, i.last_updated_by
FROM invoices i
`

const invoiceLineSelectQuery = `
SELECT l.line_id, l.invoice_id, l.line_number, l.description,
       l.quantity, l.unit_price, l.tax_rate, l.base_amount, l.tax_amount, l.amount
FROM invoice_lines l
`

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.CompanyID,
		&m.InvoiceNumber,
		&m.Direction,
		&m.Status,
		&m.PaymentStatus,
		&m.PartnerName,
		&m.PartnerPIB,
		&m.PartnerAccount,
		&m.CurrencyCode,
		&m.IssueDate,
		&m.DueDate,
		&m.TotalAmount,
		&m.TaxAmount,
		&m.PaidAmount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanInvoiceLine(row pgx.Row) (models.InvoiceLine, error) {
	var m models.InvoiceLine
	err := row.Scan(
		&m.LineID,
		&m.InvoiceID,
		&m.LineNumber,
		&m.Description,
		&m.Quantity,
		&m.UnitPrice,
		&m.TaxRate,
		&m.BaseAmount,
		&m.TaxAmount,
		&m.Amount,
	)
	return m, err
}

// SaveInvoice persists the invoice header and its lines in one transaction.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice, lines []domain.InvoiceLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	model := mapping.ToModelInvoice(invoice)
	insertInvoice := `
		INSERT INTO invoices (
			invoice_id, company_id, invoice_number, direction, status, payment_status,
			partner_name, partner_pib, partner_account, currency_code,
			issue_date, due_date, total_amount, tax_amount, paid_amount,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err = tx.Exec(ctx, insertInvoice,
		model.InvoiceID,
		model.CompanyID,
		model.InvoiceNumber,
		model.Direction,
		model.Status,
		model.PaymentStatus,
		model.PartnerName,
		model.PartnerPIB,
		model.PartnerAccount,
		model.CurrencyCode,
		model.IssueDate,
		model.DueDate,
		model.TotalAmount,
		model.TaxAmount,
		model.PaidAmount,
		model.CreatedAt,
		model.CreatedBy,
		model.LastUpdatedAt,
		model.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewAppError(409, "invoice number "+invoice.InvoiceNumber+" already exists for this company and direction", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert invoice", err)
	}

	insertLine := `
		INSERT INTO invoice_lines (
			line_id, invoice_id, line_number, description,
			quantity, unit_price, tax_rate, base_amount, tax_amount, amount
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		lm := mapping.ToModelInvoiceLine(line)
		batch.Queue(insertLine,
			lm.LineID,
			lm.InvoiceID,
			lm.LineNumber,
			lm.Description,
			lm.Quantity,
			lm.UnitPrice,
			lm.TaxRate,
			lm.BaseAmount,
			lm.TaxAmount,
			lm.Amount,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return apperrors.NewAppError(500, "failed to insert invoice line", err)
		}
	}
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close invoice line batch", err)
	}

	return r.Commit(ctx, tx)
}

// FindInvoiceByID retrieves an invoice together with its lines.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := invoiceSelectQuery + `WHERE i.invoice_id = $1;`
	model, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("invoice " + invoiceID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query invoice "+invoiceID, err)
	}

	lineQuery := invoiceLineSelectQuery + `WHERE l.invoice_id = $1 ORDER BY l.line_number;`
	rows, err := r.Pool.Query(ctx, lineQuery, invoiceID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines of invoice "+invoiceID, err)
	}
	defer rows.Close()

	modelLines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.InvoiceLine, error) {
		return scanInvoiceLine(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect invoice line rows", err)
	}

	invoice := mapping.ToDomainInvoice(model)
	invoice.Lines = mapping.ToDomainInvoiceLines(modelLines)
	return &invoice, nil
}

// ListInvoicesByCompany retrieves a filtered page of invoices without lines,
// ordered by issue date descending with created_at as the tie-breaker.
func (r *PgxInvoiceRepository) ListInvoicesByCompany(ctx context.Context, companyID string, filter portsrepo.InvoiceListFilter) ([]domain.Invoice, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	query := invoiceSelectQuery + `WHERE i.company_id = $1`
	args := []interface{}{companyID}

	if filter.Direction != nil {
		args = append(args, string(*filter.Direction))
		query += ` AND i.direction = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += ` AND i.status = $` + strconv.Itoa(len(args))
	}
	if filter.PaymentStatus != nil {
		args = append(args, string(*filter.PaymentStatus))
		query += ` AND i.payment_status = $` + strconv.Itoa(len(args))
	}

	if filter.NextToken != nil && *filter.NextToken != "" {
		lastIssueDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*filter.NextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastIssueDate, lastCreatedAt)
		query += ` AND (i.issue_date, i.created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY i.issue_date DESC, i.created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query invoices for company "+companyID, err)
	}
	defer rows.Close()

	modelInvoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to collect invoice rows", err)
	}

	var nextTokenVal *string
	if len(modelInvoices) > limit {
		last := modelInvoices[limit-1]
		token := pagination.EncodeToken(last.IssueDate, last.CreatedAt)
		nextTokenVal = &token
		modelInvoices = modelInvoices[:limit]
	}

	invoices := make([]domain.Invoice, len(modelInvoices))
	for i, m := range modelInvoices {
		invoices[i] = mapping.ToDomainInvoice(m)
	}
	return invoices, nextTokenVal, nil
}

// FindOpenInvoices retrieves the non-terminal invoices of a direction that
// still have money outstanding. An empty currencyCode matches all currencies.
func (r *PgxInvoiceRepository) FindOpenInvoices(ctx context.Context, companyID string, direction domain.InvoiceDirection, currencyCode string) ([]domain.Invoice, error) {
	query := invoiceSelectQuery + `
		WHERE i.company_id = $1
		  AND i.direction = $2
		  AND i.status NOT IN ('DRAFT', 'REJECTED', 'CANCELLED')
		  AND i.payment_status != 'PAID'
		  AND ($3 = '' OR i.currency_code = $3)
		ORDER BY i.due_date, i.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, string(direction), currencyCode)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query open invoices for company "+companyID, err)
	}
	defer rows.Close()

	modelInvoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect open invoice rows", err)
	}

	invoices := make([]domain.Invoice, len(modelInvoices))
	for i, m := range modelInvoices {
		invoices[i] = mapping.ToDomainInvoice(m)
	}
	return invoices, nil
}

// FindLinesForPeriod retrieves the lines of invoices matching the direction
// and statuses whose issue date falls within [from, to].
func (r *PgxInvoiceRepository) FindLinesForPeriod(ctx context.Context, companyID string, direction domain.InvoiceDirection, statuses []domain.InvoiceStatus, from, to time.Time) ([]domain.InvoiceLine, error) {
	statusStrs := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrs[i] = string(s)
	}
	query := invoiceLineSelectQuery + `
		JOIN invoices i ON i.invoice_id = l.invoice_id
		WHERE i.company_id = $1
		  AND i.direction = $2
		  AND i.status = ANY($3)
		  AND i.issue_date >= $4
		  AND i.issue_date <= $5
		ORDER BY i.issue_date, l.line_number;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, string(direction), statusStrs, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invoice lines for period", err)
	}
	defer rows.Close()

	modelLines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.InvoiceLine, error) {
		return scanInvoiceLine(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect period line rows", err)
	}

	return mapping.ToDomainInvoiceLines(modelLines), nil
}

// UpdateInvoiceStatus updates the lifecycle status of an invoice.
func (r *PgxInvoiceRepository) UpdateInvoiceStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE invoices
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, invoiceID, string(status), updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of invoice "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("invoice " + invoiceID + " not found")
	}
	return nil
}
