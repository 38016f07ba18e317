package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-converter/internal/domain/model"
	"fx-converter/internal/domain/ports"
	"fx-converter/internal/metrics"
	"fx-converter/internal/service"
	"fx-converter/pkg/logger"
)

type MockExchangeService struct {
	GetRateFunc     func(ctx context.Context, from, to model.Currency) (*model.RateQuote, error)
	ConvertFunc     func(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error)
	CachedRatesFunc func(ctx context.Context) map[string]model.RateEntry
}

func (m *MockExchangeService) GetRate(ctx context.Context, from, to model.Currency) (*model.RateQuote, error) {
	return m.GetRateFunc(ctx, from, to)
}

func (m *MockExchangeService) Convert(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error) {
	return m.ConvertFunc(ctx, amount, from, to)
}

func (m *MockExchangeService) CachedRates(ctx context.Context) map[string]model.RateEntry {
	return m.CachedRatesFunc(ctx)
}

func newTestServer(t *testing.T, svc ports.ExchangeService) *httptest.Server {
	t.Helper()
	log := logger.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	router := NewRouter(NewHandler(svc, log, m), log, m, reg)
	srv := httptest.NewServer(router.SetupRoutes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestConvertCurrencyHandler(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		convertFunc    func(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error)
		expectedStatus int
		expectedBody   map[string]interface{}
	}{
		{
			name:  "Success - Live",
			query: "?amount=100&from=usd&to=CZK",
			convertFunc: func(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error) {
				assert.Equal(t, "100", amount)
				assert.Equal(t, model.USD, from)
				assert.Equal(t, model.CZK, to)
				return &model.ConversionResult{
					Status:    model.StatusOK,
					From:      from,
					To:        to,
					Amount:    decimal.NewFromInt(100),
					Converted: decimal.RequireFromString("2345"),
					Rate:      23.45,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"status": "ok", "from": "USD", "to": "CZK", "amount": "100", "converted": 2345.0, "rate": 23.45,
			},
		},
		{
			name:  "Success - Stale",
			query: "?amount=100&from=JPY&to=CZK",
			convertFunc: func(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error) {
				return &model.ConversionResult{
					Status:    model.StatusOKStale,
					From:      from,
					To:        to,
					Amount:    decimal.NewFromInt(100),
					Converted: decimal.RequireFromString("16.3"),
					Rate:      0.163,
					AsOfDate:  "2026-02-01",
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"status": "ok-stale", "from": "JPY", "to": "CZK", "amount": "100", "converted": 16.3, "rate": 0.163, "asOfDate": "2026-02-01",
			},
		},
		{
			name:  "Defaults",
			query: "",
			convertFunc: func(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error) {
				assert.Equal(t, "1", amount)
				assert.Equal(t, model.JPY, from)
				assert.Equal(t, model.CZK, to)
				return &model.ConversionResult{
					Status: model.StatusOK, From: from, To: to,
					Amount: decimal.NewFromInt(1), Converted: decimal.RequireFromString("0.16"), Rate: 0.16,
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"status": "ok", "from": "JPY", "to": "CZK", "amount": "1", "converted": 0.16, "rate": 0.16,
			},
		},
		{
			name:           "Error - Unknown Currency",
			query:          "?amount=1&from=BTC&to=CZK",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"status": "error", "message": "invalid currency"},
		},
		{
			name:  "Error - Invalid Amount",
			query: "?amount=0&from=EUR&to=CZK",
			convertFunc: func(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error) {
				return nil, service.ErrInvalidAmount
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"status": "error", "message": "invalid amount"},
		},
		{
			name:  "Error - No Rate",
			query: "?amount=5&from=EUR&to=THB",
			convertFunc: func(ctx context.Context, amount string, from, to model.Currency) (*model.ConversionResult, error) {
				return nil, fmt.Errorf("%w: %w", service.ErrConversionFailed, ports.ErrCacheMiss)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   map[string]interface{}{"status": "error", "message": service.FailureMessage},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &MockExchangeService{ConvertFunc: tc.convertFunc})

			var body map[string]interface{}
			resp := getJSON(t, srv.URL+"/api/v1/convert"+tc.query, &body)

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			assert.Equal(t, tc.expectedBody, body)
			assert.NotEmpty(t, resp.Header.Get(correlationIDHeader))
		})
	}
}

func TestGetRateHandler(t *testing.T) {
	srv := newTestServer(t, &MockExchangeService{
		GetRateFunc: func(ctx context.Context, from, to model.Currency) (*model.RateQuote, error) {
			return &model.RateQuote{
				Pair:   model.CurrencyPair{From: from, To: to},
				Rate:   1.048,
				Date:   "2026-10-16",
				Source: model.SourceLive,
			}, nil
		},
	})

	var body Response
	resp := getJSON(t, srv.URL+"/api/v1/rates?from=EUR&to=USD", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, 1.048, data["rate"])
	assert.Equal(t, "live", data["source"])

	var bad Response
	resp = getJSON(t, srv.URL+"/api/v1/rates?from=EUR", &bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, bad.Success)
}

func TestCachedRatesAndCurrencies(t *testing.T) {
	srv := newTestServer(t, &MockExchangeService{
		CachedRatesFunc: func(ctx context.Context) map[string]model.RateEntry {
			return map[string]model.RateEntry{"JPY_CZK": {Rate: 0.163, Date: "2026-02-01"}}
		},
	})

	var cached struct {
		Success bool                       `json:"success"`
		Data    map[string]model.RateEntry `json:"data"`
	}
	getJSON(t, srv.URL+"/api/v1/rates/cached", &cached)
	assert.Equal(t, model.RateEntry{Rate: 0.163, Date: "2026-02-01"}, cached.Data["JPY_CZK"])

	var currencies struct {
		Data []model.CurrencyInfo `json:"data"`
	}
	getJSON(t, srv.URL+"/api/v1/currencies", &currencies)
	require.Len(t, currencies.Data, len(model.SupportedCurrencies))
	assert.Equal(t, model.CurrencyInfo{Code: model.AUD, Name: "Australian Dollar"}, currencies.Data[0])
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, &MockExchangeService{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCorrelationIDIsPropagated(t *testing.T) {
	srv := newTestServer(t, &MockExchangeService{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(correlationIDHeader, "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(correlationIDHeader))
}

func TestNewValidator(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })

	assert.NoError(t, v.Struct(pairQuery{From: "jpy", To: "CZK"}))
	assert.Error(t, v.Struct(pairQuery{From: "JPY", To: "XXX"}))
	assert.Error(t, v.Struct(pairQuery{From: "", To: "CZK"}))
}

func TestRequestMetricsUseRoutePattern(t *testing.T) {
	log := logger.NewNop()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	svc := &MockExchangeService{
		CachedRatesFunc: func(ctx context.Context) map[string]model.RateEntry {
			return map[string]model.RateEntry{}
		},
	}
	srv := httptest.NewServer(NewRouter(NewHandler(svc, log, m), log, m, reg).SetupRoutes())
	t.Cleanup(srv.Close)

	for _, path := range []string{"/api/v1/rates/cached", "/nope/1", "/nope/2", "/api/v1/unknown"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/api/v1/rates/cached", "GET", "2xx")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(unmatchedRoute, "GET", "4xx")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestsTotal))
}
