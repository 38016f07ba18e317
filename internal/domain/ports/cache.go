package ports

import (
	"context"
	"errors"

	"fx-converter/internal/domain/model"
)

var ErrCacheMiss = errors.New("no cached rate for pair")

// RateStore persists resolved rates for offline use. Writes are best-effort and never fail.
type RateStore interface {
	Put(ctx context.Context, pair model.CurrencyPair, entry model.RateEntry)
	Get(ctx context.Context, pair model.CurrencyPair) (*model.RateEntry, bool)
	Seed(ctx context.Context)
	Entries(ctx context.Context) map[string]model.RateEntry
}
