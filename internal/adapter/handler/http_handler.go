package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wastefront/pricing-service/internal/core/service"
)

// Resetter clears request-spanning state when a new scenario starts.
type Resetter interface {
	Reset(ctx context.Context) error
}

type HTTPHandler struct {
	calculator *service.PriceCalculator
	resetters  []Resetter
	logger     *zap.Logger
}

func NewHTTPHandler(calculator *service.PriceCalculator, resetters []Resetter, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{calculator: calculator, resetters: resetters, logger: logger}
}

// NewRouter registers all routes on a fresh mux.
func (h *HTTPHandler) NewRouter() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/calculatePrice", h.CalculatePrice)
	mux.HandleFunc("/startScenario", h.StartScenario)
	return mux
}

type droppedFractionBody struct {
	AmountDropped decimal.Decimal `json:"amount_dropped"`
	FractionType  string          `json:"fraction_type"`
}

type calculatePriceRequest struct {
	Date             string                `json:"date"`
	PersonID         string                `json:"person_id"`
	VisitID          string                `json:"visit_id"`
	DroppedFractions []droppedFractionBody `json:"dropped_fractions"`
}

type calculatePriceResponse struct {
	PriceAmount   float64 `json:"price_amount"`
	PriceCurrency string  `json:"price_currency"`
	PersonID      string  `json:"person_id"`
	VisitID       string  `json:"visit_id"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *HTTPHandler) CalculatePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req calculatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	if req.Date == "" || req.PersonID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing required fields"})
		return
	}

	svcReq := service.CalculateRequest{
		Date:     req.Date,
		PersonID: req.PersonID,
		VisitID:  req.VisitID,
	}
	for _, f := range req.DroppedFractions {
		svcReq.Fractions = append(svcReq.Fractions, service.FractionInput{
			Type:          f.FractionType,
			AmountDropped: f.AmountDropped,
		})
	}

	resp, err := h.calculator.CalculatePrice(r.Context(), svcReq)
	if err != nil {
		if errors.Is(err, service.ErrInvalidVisit) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid visit", Details: err.Error()})
			return
		}
		h.logger.Error("price calculation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, calculatePriceResponse{
		PriceAmount:   resp.PriceAmount.InexactFloat64(),
		PriceCurrency: string(resp.PriceCurrency),
		PersonID:      resp.PersonID,
		VisitID:       resp.VisitID,
	})
}

// StartScenario clears stored visits, visitors and exemption usage so test
// scenarios start from a clean slate.
func (h *HTTPHandler) StartScenario(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	for _, res := range h.resetters {
		if err := res.Reset(r.Context()); err != nil {
			h.logger.Error("scenario reset failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "reset failed"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
