package ports

import (
	"context"

	"fx-converter/internal/domain/model"
)

type ExchangeService interface {
	GetRate(ctx context.Context, from, to model.Currency) (*model.RateQuote, error)
	Convert(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error)
	CachedRates(ctx context.Context) map[string]model.RateEntry
}
