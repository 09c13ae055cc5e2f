package handler

import (
	"errors"
	"net/http"

	"github.com/damon-houk/currency-widget/internal/application/service"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-widget/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// RateHandler exposes the current rates and on-demand refresh
type RateHandler struct {
	rates  *service.RateService
	logger logger.Logger
}

// NewRateHandler creates a new rate handler
func NewRateHandler(rates *service.RateService, log logger.Logger) *RateHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateHandler{
		rates:  rates,
		logger: log,
	}
}

// GetRates handles GET /rates
func (h *RateHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, h.ratesResponse())
}

// RefreshRates handles POST /rates/refresh
func (h *RateHandler) RefreshRates(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if _, err := h.rates.Refresh(r.Context()); err != nil {
		if errors.Is(err, service.ErrNoRateData) {
			h.logger.Error("No rate data after refresh", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Exchange rates unavailable",
				"Unable to retrieve exchange rate data. Please try again later.",
				http.StatusServiceUnavailable, requestID)
			return
		}

		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, h.ratesResponse())
}

// Health handles GET /healthz; it is unhealthy until some rate data is loaded
func (h *RateHandler) Health(w http.ResponseWriter, r *http.Request) {
	snapshot := h.rates.Store().Snapshot()

	resp := HealthResponse{
		Status:    "ok",
		HasFiat:   snapshot.HasFiat(),
		HasCrypto: snapshot.HasCrypto(),
	}

	status := http.StatusOK
	if snapshot.Empty() {
		resp.Status = "no rate data"
		status = http.StatusServiceUnavailable
	}

	sendJSON(w, h.logger, status, resp)
}

func (h *RateHandler) ratesResponse() RatesResponse {
	snapshot := h.rates.Store().Snapshot()

	return RatesResponse{
		FiatRates:   snapshot.FiatRates,
		CryptoRates: snapshot.CryptoRates,
		BTCToUSD:    snapshot.BTCToUSD,
		Status:      h.rates.Status(),
	}
}

// RegisterRoutes registers the rate handler routes
func (h *RateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rates", h.GetRates).Methods(http.MethodGet)
	router.HandleFunc("/rates/refresh", h.RefreshRates).Methods(http.MethodPost)
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	h.logger.Info("Rate routes registered", map[string]interface{}{
		"routes": []string{
			"GET /rates",
			"POST /rates/refresh",
			"GET /healthz",
		},
	})
}
