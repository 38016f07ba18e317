package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RateEntry is a rate such that amountInTo = amountInFrom * Rate, effective on Date (YYYY-MM-DD).
type RateEntry struct {
	Rate float64 `json:"rate"`
	Date string  `json:"date"`
}

// CurrencyPair is ordered: From_To and To_From are independent entries.
type CurrencyPair struct {
	From Currency `json:"from"`
	To   Currency `json:"to"`
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%s-%s", p.From, p.To)
}

// Key is the persistent cache key, e.g. "JPY_CZK".
func (p CurrencyPair) Key() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

type RateSourceKind string

const (
	SourceIdentity RateSourceKind = "identity"
	SourceLive     RateSourceKind = "live"
	SourceCached   RateSourceKind = "cached"
)

type RateQuote struct {
	Pair   CurrencyPair   `json:"pair"`
	Rate   float64        `json:"rate"`
	Date   string         `json:"date,omitempty"`
	Source RateSourceKind `json:"source"`
	Stale  bool           `json:"stale"`
}

type ConversionStatus string

const (
	StatusOK      ConversionStatus = "ok"
	StatusOKStale ConversionStatus = "ok-stale"
	StatusError   ConversionStatus = "error"
)

// ConversionState tracks a single conversion request.
type ConversionState string

const (
	StateIdle            ConversionState = "idle"
	StateResolving       ConversionState = "resolving"
	StateSucceededLive   ConversionState = "succeeded_live"
	StateSucceededCached ConversionState = "succeeded_cached"
	StateFailed          ConversionState = "failed"
)

type ConversionResult struct {
	Status    ConversionStatus `json:"status"`
	State     ConversionState  `json:"-"`
	From      Currency         `json:"from"`
	To        Currency         `json:"to"`
	Amount    decimal.Decimal  `json:"amount"`
	Converted decimal.Decimal  `json:"converted"`
	Rate      float64          `json:"rate"`
	AsOfDate  string           `json:"asOfDate,omitempty"`
}
