package services

import (
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
	"github.com/fakturko/sef_backoffice/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Company service first: the other services depend on its authorizer.
	container.Company = NewCompanyService(
		repos.CompanyRepo,
		repos.CurrencyRepo,
	)
	companyAuthorizer := container.Company.(portssvc.CompanyAuthorizerSvc)

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg, container.User)

	container.Invoice = NewInvoiceService(
		repos.InvoiceRepo,
		repos.PaymentRepo,
		repos.CurrencyRepo,
		companyAuthorizer,
	)
	container.Reconciliation = NewReconciliationService(
		repos.BankRepo,
		repos.InvoiceRepo,
		repos.PaymentRepo,
		companyAuthorizer,
	)
	container.VAT = NewVATService(
		repos.VATRepo,
		repos.InvoiceRepo,
		repos.CompanyRepo,
		companyAuthorizer,
	)

	return container
}

// Compile-time checks that the implementations satisfy their facades.
var (
	_ portssvc.CompanySvcFacade        = (*companyService)(nil)
	_ portssvc.CurrencySvcFacade       = (*currencyService)(nil)
	_ portssvc.UserSvcFacade           = (*userService)(nil)
	_ portssvc.TokenSvcFacade          = (*tokenService)(nil)
	_ portssvc.InvoiceSvcFacade        = (*invoiceService)(nil)
	_ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)
	_ portssvc.VATSvcFacade            = (*vatService)(nil)
)
