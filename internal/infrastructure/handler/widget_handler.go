package handler

import (
	"errors"
	"net/http"

	"github.com/damon-houk/currency-widget/internal/application/service"
	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-widget/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// WidgetHandler serves the widget state to the popup
type WidgetHandler struct {
	widget *service.WidgetService
	logger logger.Logger
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(widget *service.WidgetService, log logger.Logger) *WidgetHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &WidgetHandler{
		widget: widget,
		logger: log,
	}
}

// GetWidget handles GET /widget
func (h *WidgetHandler) GetWidget(w http.ResponseWriter, r *http.Request) {
	view := h.widget.View()
	h.respond(w, r, view, view.Err())
}

// EditAmount handles PUT /widget/amount
func (h *WidgetHandler) EditAmount(w http.ResponseWriter, r *http.Request) {
	var req EditAmountRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.widget.Edit(r.Context(), service.NormalizeCode(req.Currency), req.Input)
	h.respond(w, r, view, err)
}

// Blur handles POST /widget/blur
func (h *WidgetHandler) Blur(w http.ResponseWriter, r *http.Request) {
	var req BlurRequest
	if !h.decode(w, r, &req) {
		return
	}

	sendJSON(w, h.logger, http.StatusOK, FormatResponse{Formatted: h.widget.Blur(req.Input)})
}

// AddCurrency handles POST /widget/currencies
func (h *WidgetHandler) AddCurrency(w http.ResponseWriter, r *http.Request) {
	var req AddCurrencyRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.widget.Add(r.Context(), service.NormalizeCode(req.Currency))
	h.respond(w, r, view, err)
}

// RemoveCurrency handles DELETE /widget/currencies/{code}
func (h *WidgetHandler) RemoveCurrency(w http.ResponseWriter, r *http.Request) {
	code := service.NormalizeCode(mux.Vars(r)["code"])

	view, err := h.widget.Remove(r.Context(), code)
	h.respond(w, r, view, err)
}

// Reorder handles PUT /widget/order
func (h *WidgetHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !h.decode(w, r, &req) {
		return
	}

	order := make([]entity.CurrencyCode, 0, len(req.Order))
	for _, code := range req.Order {
		order = append(order, service.NormalizeCode(code))
	}

	view, err := h.widget.Reorder(r.Context(), order)
	h.respond(w, r, view, err)
}

// SetLanguage handles PUT /widget/language
func (h *WidgetHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.widget.SetLanguage(r.Context(), req.Language)
	if err != nil {
		sendErrorResponse(w, h.logger, "Unsupported language", err.Error(),
			http.StatusBadRequest, middleware.GetRequestID(r.Context()))
		return
	}

	sendJSON(w, h.logger, http.StatusOK, view)
}

// ListCurrencies handles GET /currencies?search=&lang=
func (h *WidgetHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	results := h.widget.SearchLanguage(query.Get("search"), query.Get("lang"))

	resp := make([]CurrencyResponse, 0, len(results))
	for _, cur := range results {
		resp = append(resp, CurrencyResponse{
			Code:     string(cur.Code),
			Kind:     string(cur.Kind),
			Symbol:   cur.Symbol,
			Name:     cur.Name,
			Selected: cur.Selected,
		})
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// Refresh handles POST /widget/refresh. A source that failed while the other
// half of the rates is still usable does not fail the request.
func (h *WidgetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	view, err := h.widget.Refresh(r.Context())
	if err != nil {
		h.logger.Warn("Widget refresh without rate data", map[string]interface{}{
			"request_id": middleware.GetRequestID(r.Context()),
			"error":      err.Error(),
		})
	}

	h.respond(w, r, view, view.Err())
}

func (h *WidgetHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeBody(r, v); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": middleware.GetRequestID(r.Context()),
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest,
			middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// respond writes view, or the error for err. A view rendered without rate
// data is answered as unavailable.
func (h *WidgetHandler) respond(w http.ResponseWriter, r *http.Request, view service.View, err error) {
	if err == nil {
		err = view.Err()
	}
	if err == nil {
		sendJSON(w, h.logger, http.StatusOK, view)
		return
	}

	requestID := middleware.GetRequestID(r.Context())

	switch {
	case errors.Is(err, service.ErrNoRateData):
		sendErrorResponse(w, h.logger, "Exchange rates unavailable",
			"Unable to retrieve exchange rate data. Please try again later.",
			http.StatusServiceUnavailable, requestID)
	case errors.Is(err, service.ErrUnknownCurrency):
		sendErrorResponse(w, h.logger, "Unknown currency", err.Error(), http.StatusNotFound, requestID)
	case errors.Is(err, service.ErrDuplicateCurrency):
		sendErrorResponse(w, h.logger, "Currency already added", err.Error(), http.StatusConflict, requestID)
	case errors.Is(err, service.ErrLastCurrency):
		sendErrorResponse(w, h.logger, "Cannot remove currency", err.Error(), http.StatusConflict, requestID)
	case errors.Is(err, service.ErrInvalidOrder):
		sendErrorResponse(w, h.logger, "Invalid order", err.Error(), http.StatusBadRequest, requestID)
	default:
		h.logger.Error("Unexpected error in widget handler", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Internal server error",
			"An unexpected error occurred. Please try again later.", http.StatusInternalServerError, requestID)
	}
}

// RegisterRoutes registers the widget handler routes
func (h *WidgetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/widget", h.GetWidget).Methods(http.MethodGet)
	router.HandleFunc("/widget/amount", h.EditAmount).Methods(http.MethodPut)
	router.HandleFunc("/widget/blur", h.Blur).Methods(http.MethodPost)
	router.HandleFunc("/widget/currencies", h.AddCurrency).Methods(http.MethodPost)
	router.HandleFunc("/widget/currencies/{code}", h.RemoveCurrency).Methods(http.MethodDelete)
	router.HandleFunc("/widget/order", h.Reorder).Methods(http.MethodPut)
	router.HandleFunc("/widget/language", h.SetLanguage).Methods(http.MethodPut)
	router.HandleFunc("/widget/refresh", h.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/currencies", h.ListCurrencies).Methods(http.MethodGet)

	h.logger.Info("Widget routes registered", map[string]interface{}{
		"routes": []string{
			"GET /widget",
			"PUT /widget/amount",
			"POST /widget/blur",
			"POST /widget/currencies",
			"DELETE /widget/currencies/{code}",
			"PUT /widget/order",
			"PUT /widget/language",
			"POST /widget/refresh",
			"GET /currencies",
		},
	})
}
