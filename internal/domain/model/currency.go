package model

import (
	"strings"

	"github.com/samber/lo"
)

type Currency string

const (
	AUD Currency = "AUD"
	BGN Currency = "BGN"
	BRL Currency = "BRL"
	CAD Currency = "CAD"
	CHF Currency = "CHF"
	CNY Currency = "CNY"
	CZK Currency = "CZK"
	DKK Currency = "DKK"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	HKD Currency = "HKD"
	HUF Currency = "HUF"
	IDR Currency = "IDR"
	ILS Currency = "ILS"
	INR Currency = "INR"
	ISK Currency = "ISK"
	JPY Currency = "JPY"
	KRW Currency = "KRW"
	MXN Currency = "MXN"
	MYR Currency = "MYR"
	NOK Currency = "NOK"
	NZD Currency = "NZD"
	PHP Currency = "PHP"
	PLN Currency = "PLN"
	RON Currency = "RON"
	SEK Currency = "SEK"
	SGD Currency = "SGD"
	THB Currency = "THB"
	TRY Currency = "TRY"
	USD Currency = "USD"
	ZAR Currency = "ZAR"
)

var currencyNames = map[Currency]string{
	AUD: "Australian Dollar",
	BGN: "Bulgarian Lev",
	BRL: "Brazilian Real",
	CAD: "Canadian Dollar",
	CHF: "Swiss Franc",
	CNY: "Chinese Renminbi Yuan",
	CZK: "Czech Koruna",
	DKK: "Danish Krone",
	EUR: "Euro",
	GBP: "British Pound",
	HKD: "Hong Kong Dollar",
	HUF: "Hungarian Forint",
	IDR: "Indonesian Rupiah",
	ILS: "Israeli New Sheqel",
	INR: "Indian Rupee",
	ISK: "Icelandic Krona",
	JPY: "Japanese Yen",
	KRW: "South Korean Won",
	MXN: "Mexican Peso",
	MYR: "Malaysian Ringgit",
	NOK: "Norwegian Krone",
	NZD: "New Zealand Dollar",
	PHP: "Philippine Peso",
	PLN: "Polish Zloty",
	RON: "Romanian Leu",
	SEK: "Swedish Krona",
	SGD: "Singapore Dollar",
	THB: "Thai Baht",
	TRY: "Turkish Lira",
	USD: "US Dollar",
	ZAR: "South African Rand",
}

// SupportedCurrencies is the closed set of codes, in display order.
var SupportedCurrencies = []Currency{
	AUD, BGN, BRL, CAD, CHF, CNY, CZK, DKK, EUR, GBP, HKD,
	HUF, IDR, ILS, INR, ISK, JPY, KRW, MXN, MYR, NOK, NZD,
	PHP, PLN, RON, SEK, SGD, THB, TRY, USD, ZAR,
}

// ParseCurrency normalizes s to upper case. The result may still be unsupported.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

func (c Currency) IsSupported() bool {
	return lo.Contains(SupportedCurrencies, c)
}

func (c Currency) Name() string {
	return currencyNames[c]
}

// Lower is the form used in provider URLs and response keys.
func (c Currency) Lower() string {
	return strings.ToLower(string(c))
}

func (c Currency) String() string {
	return string(c)
}

type CurrencyInfo struct {
	Code Currency `json:"code"`
	Name string   `json:"name"`
}

func CurrencyList() []CurrencyInfo {
	return lo.Map(SupportedCurrencies, func(c Currency, _ int) CurrencyInfo {
		return CurrencyInfo{Code: c, Name: c.Name()}
	})
}
