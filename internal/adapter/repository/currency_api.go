package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"fx-converter/internal/domain/model"
	"fx-converter/internal/domain/ports"
	"fx-converter/internal/metrics"
	"fx-converter/pkg/logger"
	"fx-converter/pkg/utils"
)

const (
	PrimaryURLTemplate  = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1/currencies/%s.json"
	FallbackURLTemplate = "https://latest.currency-api.pages.dev/v1/currencies/%s.json"

	// maxProviders bounds resolution to the primary plus exactly one fallback.
	maxProviders = 2
)

var (
	errBadStatus   = errors.New("provider returned non-success status")
	errBadBody     = errors.New("provider response has unexpected shape")
	errMissingRate = errors.New("rate missing from provider table")
)

// Provider describes one endpoint serving daily rate tables per base currency.
type Provider struct {
	Name        string
	URLTemplate string
}

func (p Provider) URL(base model.Currency) string {
	return fmt.Sprintf(p.URLTemplate, base.Lower())
}

func DefaultProviders() []Provider {
	return []Provider{
		{Name: "jsdelivr", URLTemplate: PrimaryURLTemplate},
		{Name: "pages.dev", URLTemplate: FallbackURLTemplate},
	}
}

// rateTable is a decoded provider response for a single base currency.
type rateTable struct {
	Date  string
	Rates map[string]float64
}

// CurrencyAPI resolves pairs against an ordered list of providers, strictly sequentially.
type CurrencyAPI struct {
	providers  []Provider
	httpClient *http.Client
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewCurrencyAPI keeps at most the first two providers. A nil client gets a default
// http.Client without a timeout.
func NewCurrencyAPI(providers []Provider, client *http.Client, log *logger.Logger, metrics *metrics.Metrics) *CurrencyAPI {
	if client == nil {
		client = &http.Client{}
	}
	if len(providers) > maxProviders {
		providers = providers[:maxProviders]
	}
	return &CurrencyAPI{
		providers:  providers,
		httpClient: client,
		log:        log,
		metrics:    metrics,
	}
}

// Resolve returns the rate for pair from the first provider that yields one. Any failure
// at every provider collapses into ports.ErrRateUnavailable.
func (c *CurrencyAPI) Resolve(ctx context.Context, pair model.CurrencyPair) (*model.RateEntry, error) {
	for i, provider := range c.providers {
		if i > 0 {
			c.log.Info("Falling back to next rate provider", "provider", provider.Name, "pair", pair.String())
		}

		entry, err := c.fetchRate(ctx, provider, pair)
		if err != nil {
			c.metrics.ProviderRequestsTotal.WithLabelValues(provider.Name, metrics.ResultFailure).Inc()
			c.log.Warn("Rate provider failed", "provider", provider.Name, "pair", pair.String(), "error", err)
			continue
		}

		c.metrics.ProviderRequestsTotal.WithLabelValues(provider.Name, metrics.ResultSuccess).Inc()
		c.log.Info("Resolved exchange rate", "provider", provider.Name, "pair", pair.String(), "rate", entry.Rate, "date", entry.Date)
		return entry, nil
	}

	return nil, ports.ErrRateUnavailable
}

func (c *CurrencyAPI) fetchRate(ctx context.Context, provider Provider, pair model.CurrencyPair) (*model.RateEntry, error) {
	table, err := c.fetchTable(ctx, provider, pair.From)
	if err != nil {
		return nil, err
	}

	rate, exists := table.Rates[pair.To.Lower()]
	if !exists {
		return nil, fmt.Errorf("%w: %s", errMissingRate, pair.To)
	}
	if rate == 0 {
		// A rate rounded to 0 by the provider is indistinguishable from a missing one.
		c.log.Warn("Provider returned zero rate, treating as missing", "provider", provider.Name, "pair", pair.String())
		return nil, fmt.Errorf("%w: zero rate for %s", errMissingRate, pair.To)
	}
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w: invalid rate %v for %s", errMissingRate, rate, pair.To)
	}

	return &model.RateEntry{Rate: rate, Date: table.Date}, nil
}

func (c *CurrencyAPI) fetchTable(ctx context.Context, provider Provider, base model.Currency) (*rateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, provider.URL(base), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", errBadStatus, resp.StatusCode)
	}

	return decodeTable(resp.Body, base)
}

// decodeTable parses {"date": "YYYY-MM-DD", "<base>": {"<code>": <number>, ...}}.
// Any deviation from that shape is an error.
func decodeTable(body io.Reader, base model.Currency) (*rateTable, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}

	dateRaw, exists := raw["date"]
	if !exists {
		return nil, fmt.Errorf("%w: missing date", errBadBody)
	}
	var date string
	if err := json.Unmarshal(dateRaw, &date); err != nil {
		return nil, fmt.Errorf("%w: date: %v", errBadBody, err)
	}
	parsed, err := utils.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q: %v", errBadBody, date, err)
	}

	ratesRaw, exists := raw[base.Lower()]
	if !exists {
		return nil, fmt.Errorf("%w: missing %s table", errBadBody, base.Lower())
	}
	var rates map[string]float64
	if err := json.Unmarshal(ratesRaw, &rates); err != nil {
		return nil, fmt.Errorf("%w: %s table: %v", errBadBody, base.Lower(), err)
	}

	return &rateTable{Date: utils.FormatDate(parsed), Rates: rates}, nil
}
