package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fakturko/sef_backoffice/internal/apperrors"
	"github.com/fakturko/sef_backoffice/internal/core/domain"
	portsrepo "github.com/fakturko/sef_backoffice/internal/core/ports/repositories"
	portssvc "github.com/fakturko/sef_backoffice/internal/core/ports/services"
)

// currencyService implements the CurrencySvcFacade interface
type currencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCurrencyService creates a new currency service with the provided repository
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// GetCurrencyByCode retrieves a currency by its code
func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find currency", slog.String("currency_code", currencyCode))
		}
		return nil, err
	}
	return currency, nil
}

// ListCurrencies retrieves all available currencies
func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, err
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// CreateCurrency registers a new currency
func (s *currencyService) CreateCurrency(ctx context.Context, currency domain.Currency, creatorUserID string) (*domain.Currency, error) {
	now := time.Now()
	currency.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		s.LogError(ctx, err, "Failed to save currency", slog.String("currency_code", currency.CurrencyCode))
		return nil, err
	}

	s.LogInfo(ctx, "Currency created",
		slog.String("currency_code", currency.CurrencyCode),
		slog.String("creator_id", creatorUserID))
	return &currency, nil
}
