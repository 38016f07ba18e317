package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"fx-converter/internal/domain/model"
	"fx-converter/internal/domain/ports"
	"fx-converter/internal/metrics"
	"fx-converter/pkg/logger"
	"fx-converter/pkg/utils"
)

// FailureMessage is the single user-facing text for a conversion with no usable rate.
const FailureMessage = "Conversion failed and no cached data available."

var (
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrConversionFailed = errors.New("conversion failed")
)

var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

type ExchangeService struct {
	source  ports.RateSource
	store   ports.RateStore
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewExchangeService(source ports.RateSource, store ports.RateStore, log *logger.Logger, metrics *metrics.Metrics) *ExchangeService {
	return &ExchangeService{
		source:  source,
		store:   store,
		log:     log,
		metrics: metrics,
		now:     time.Now,
	}
}

// ParseAmount accepts plain positive decimals such as "12" or "0.5".
func ParseAmount(amount string) (decimal.Decimal, error) {
	if amount == "" || !amountPattern.MatchString(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !value.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return value, nil
}

// GetRate resolves a live rate, persisting it, and falls back to the last cached rate
// when every provider fails. Equal codes short-circuit to 1 without any I/O.
func (s *ExchangeService) GetRate(ctx context.Context, from, to model.Currency) (*model.RateQuote, error) {
	if !from.IsSupported() || !to.IsSupported() {
		return nil, ErrInvalidCurrency
	}

	pair := model.CurrencyPair{From: from, To: to}
	if from == to {
		return &model.RateQuote{Pair: pair, Rate: 1, Source: model.SourceIdentity}, nil
	}

	log := s.log.With("pair", pair.String())

	s.metrics.ResolvingInFlight.Inc()
	defer s.metrics.ResolvingInFlight.Dec()
	log.Debug("Conversion state changed", "state", model.StateResolving)

	entry, err := s.source.Resolve(ctx, pair)
	if err == nil {
		// a fetched rate is persisted even if the caller has gone away
		s.store.Put(context.WithoutCancel(ctx), pair, *entry)
		return &model.RateQuote{
			Pair:   pair,
			Rate:   entry.Rate,
			Date:   entry.Date,
			Source: model.SourceLive,
		}, nil
	}

	log.Warn("Live rate unavailable, trying cache", "error", err)

	cached, found := s.store.Get(ctx, pair)
	if !found {
		log.Error("No cached rate for pair")
		return nil, fmt.Errorf("%w: %w", ErrConversionFailed, ports.ErrCacheMiss)
	}

	log.Info("Using cached exchange rate",
		"rate", cached.Rate,
		"date", cached.Date,
		"age_days", utils.AgeInDays(cached.Date, s.now()),
	)
	return &model.RateQuote{
		Pair:   pair,
		Rate:   cached.Rate,
		Date:   cached.Date,
		Source: model.SourceCached,
		Stale:  true,
	}, nil
}

// Convert validates amount before any resolution, then multiplies it by the resolved rate.
func (s *ExchangeService) Convert(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error) {
	value, err := ParseAmount(amount)
	if err != nil {
		s.metrics.ConversionOutcomesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	if !from.IsSupported() || !to.IsSupported() {
		s.metrics.ConversionOutcomesTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, ErrInvalidCurrency
	}

	quote, err := s.GetRate(ctx, from, to)
	if err != nil {
		s.metrics.ConversionOutcomesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.log.Debug("Conversion state changed", "pair", from.String()+"-"+to.String(), "state", model.StateFailed)
		return nil, err
	}

	result := &model.ConversionResult{
		Status: model.StatusOK,
		State:  model.StateSucceededLive,
		From:   from,
		To:     to,
		Amount: value,
		Rate:   quote.Rate,
	}

	if quote.Source == model.SourceIdentity {
		result.Converted = value
	} else {
		result.Converted = value.Mul(decimal.NewFromFloat(quote.Rate))
	}

	if quote.Stale {
		result.Status = model.StatusOKStale
		result.State = model.StateSucceededCached
		result.AsOfDate = quote.Date
		s.metrics.ConversionOutcomesTotal.WithLabelValues(metrics.OutcomeCached).Inc()
	} else {
		s.metrics.ConversionOutcomesTotal.WithLabelValues(metrics.OutcomeLive).Inc()
	}

	s.log.Debug("Conversion state changed", "pair", quote.Pair.String(), "state", result.State)
	return result, nil
}

func (s *ExchangeService) CachedRates(ctx context.Context) map[string]model.RateEntry {
	return s.store.Entries(ctx)
}
