package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"fx-converter/internal/domain/model"
	"fx-converter/internal/domain/ports"
	"fx-converter/internal/metrics"
	"fx-converter/internal/service"
	"fx-converter/pkg/logger"
)

// Defaults applied when a query parameter is absent.
const (
	defaultAmount = "1"
	defaultFrom   = model.JPY
	defaultTo     = model.CZK
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ConversionResponse is the ok / ok-stale body of /api/v1/convert.
type ConversionResponse struct {
	Status    model.ConversionStatus `json:"status"`
	From      model.Currency         `json:"from"`
	To        model.Currency         `json:"to"`
	Amount    string                 `json:"amount"`
	Converted float64                `json:"converted"`
	Rate      float64                `json:"rate"`
	AsOfDate  string                 `json:"asOfDate,omitempty"`
}

type ConversionErrorResponse struct {
	Status  model.ConversionStatus `json:"status"`
	Message string                 `json:"message"`
}

type pairQuery struct {
	From string `validate:"required,currency"`
	To   string `validate:"required,currency"`
}

type Handler struct {
	service  ports.ExchangeService
	log      *logger.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return model.ParseCurrency(fl.Field().String()).IsSupported()
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register currency validation: %v", err))
	}
	return v
}

func NewHandler(service ports.ExchangeService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		log:      log,
		metrics:  metrics,
		validate: newValidator(),
	}
}

func queryOrDefault(r *http.Request, key, fallback string) string {
	if !r.URL.Query().Has(key) {
		return fallback
	}
	return r.URL.Query().Get(key)
}

func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.ConversionRequestsTotal.Inc()

	amount := queryOrDefault(r, "amount", defaultAmount)
	query := pairQuery{
		From: queryOrDefault(r, "from", defaultFrom.String()),
		To:   queryOrDefault(r, "to", defaultTo.String()),
	}

	if err := h.validate.Struct(query); err != nil {
		h.sendConversionError(w, http.StatusBadRequest, "invalid currency")
		return
	}

	ctx := r.Context()
	result, err := h.service.Convert(ctx, amount, model.ParseCurrency(query.From), model.ParseCurrency(query.To))
	if err != nil {
		statusCode, message := mapServiceError(err)
		h.log.Error("Conversion failed", "error", err, "status_code", statusCode)
		h.sendConversionError(w, statusCode, message)
		return
	}

	h.writeJSON(w, http.StatusOK, ConversionResponse{
		Status:    result.Status,
		From:      result.From,
		To:        result.To,
		Amount:    result.Amount.String(),
		Converted: result.Converted.InexactFloat64(),
		Rate:      result.Rate,
		AsOfDate:  result.AsOfDate,
	})
}

func (h *Handler) GetRateHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.RateRequestsTotal.Inc()

	query := pairQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if err := h.validate.Struct(query); err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing or invalid parameters: from and to")
		return
	}

	ctx := r.Context()
	quote, err := h.service.GetRate(ctx, model.ParseCurrency(query.From), model.ParseCurrency(query.To))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, quote)
}

func (h *Handler) CachedRatesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.service.CachedRates(r.Context()))
}

func (h *Handler) CurrenciesHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, model.CurrencyList())
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendConversionError(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, ConversionErrorResponse{
		Status:  model.StatusError,
		Message: message,
	})
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, Response{
		Success: false,
		Error:   message,
	})
}

func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidCurrency):
		return http.StatusBadRequest, "invalid currency"
	case errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	case errors.Is(err, service.ErrConversionFailed):
		return http.StatusServiceUnavailable, service.FailureMessage
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode, message := mapServiceError(err)
	h.log.Error("Service error", "error", err, "status_code", statusCode)
	h.sendErrorResponse(w, statusCode, message)
}
