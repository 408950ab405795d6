package pgsql

import (
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CompanyRepo:  newPgxCompanyRepository(dbPool),
		CurrencyRepo: newPgxCurrencyRepository(dbPool),
		UserRepo:     newPgxUserRepository(dbPool),
		InvoiceRepo:  newPgxInvoiceRepository(dbPool),
		BankRepo:     newPgxBankRepository(dbPool),
		PaymentRepo:  newPgxPaymentRepository(dbPool),
		VATRepo:      newPgxVATReportRepository(dbPool),
	}
}
