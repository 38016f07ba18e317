package ports

import (
	"context"
	"errors"

	"fx-converter/internal/domain/model"
)

// ErrRateUnavailable is returned when no remote provider produced a usable rate.
// Causes (network, status, body shape, missing rate) are intentionally not distinguished.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

type RateSource interface {
	Resolve(ctx context.Context, pair model.CurrencyPair) (*model.RateEntry, error)
}
