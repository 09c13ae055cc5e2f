// Package handler internal/infrastructure/handler/conversion_handler.go
package handler

import (
	"errors"
	"net/http"

	"github.com/damon-houk/currency-widget/internal/application/service"
	"github.com/damon-houk/currency-widget/internal/domain/conversion"
	"github.com/damon-houk/currency-widget/internal/domain/format"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-widget/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// ConversionHandler handles one-off conversion and formatting requests
type ConversionHandler struct {
	service *service.ConversionService
	logger  logger.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service *service.ConversionService, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionHandler{
		service: service,
		logger:  log,
	}
}

// Convert handles GET /convert?amount=&from=&to=
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	from := service.NormalizeCode(query.Get("from"))
	to := service.NormalizeCode(query.Get("to"))
	if from == "" || to == "" {
		sendErrorResponse(w, h.logger, "Missing currency parameter",
			"Both 'from' and 'to' query parameters are required", http.StatusBadRequest, requestID)
		return
	}

	amount, err := format.ParseFormattedNumber(query.Get("amount"))
	if err != nil {
		h.logger.Warn("Invalid amount", map[string]interface{}{
			"request_id": requestID,
			"amount":     query.Get("amount"),
		})
		sendErrorResponse(w, h.logger, "Invalid amount",
			"The 'amount' query parameter must be a number", http.StatusBadRequest, requestID)
		return
	}

	result, err := h.service.Convert(r.Context(), amount, from, to)
	if err != nil {
		if errors.Is(err, conversion.ErrUnavailableRate) {
			sendErrorResponse(w, h.logger, "Exchange rate not available",
				err.Error(), http.StatusUnprocessableEntity, requestID)
			return
		}

		h.logger.Error("Unexpected error in conversion handler", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, ConvertResponse{
		Amount:    result.Amount,
		From:      string(result.From),
		FromKind:  string(result.FromKind),
		To:        string(result.To),
		ToKind:    string(result.ToKind),
		Result:    result.Result,
		Formatted: result.Formatted,
	})
}

// FormatResult handles GET /format/result?value=
func (h *ConversionHandler) FormatResult(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	value, err := format.ParseFormattedNumber(r.URL.Query().Get("value"))
	if err != nil {
		sendErrorResponse(w, h.logger, "Invalid value",
			"The 'value' query parameter must be a number", http.StatusBadRequest, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, FormatResponse{
		Formatted: format.FormatConversionResult(value),
		Value:     &value,
	})
}

// FormatInput handles POST /format/input
func (h *ConversionHandler) FormatInput(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req FormatInputRequest
	if err := decodeBody(r, &req); err != nil {
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	resp := FormatResponse{Formatted: format.FormatUserInput(req.Input)}
	if value, err := format.ParseFormattedNumber(resp.Formatted); err == nil {
		resp.Value = &value
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/convert", h.Convert).Methods(http.MethodGet)
	router.HandleFunc("/format/result", h.FormatResult).Methods(http.MethodGet)
	router.HandleFunc("/format/input", h.FormatInput).Methods(http.MethodPost)

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{
			"GET /convert",
			"GET /format/result",
			"POST /format/input",
		},
	})
}
