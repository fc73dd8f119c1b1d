package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fraudstream/internal/repository"
)

// maxRecordSize caps injected transaction payloads; anything larger is
// rejected before it reaches the pipeline.
const maxRecordSize = 64 * 1024

type APIHandler struct {
	ingest         chan<- []byte
	store          repository.AlertRepository
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(ingest chan<- []byte, store repository.AlertRepository, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		ingest:         ingest,
		store:          store,
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

type IngestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type StatsResponse struct {
	Alerts      int64            `json:"alerts"`
	Errors      int64            `json:"errors"`
	ByFraudType map[string]int64 `json:"by_fraud_type"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// IngestTransactionHandler feeds a raw transaction record into the
// running pipeline. The body is accepted as-is; validation happens in the
// pipeline, so a malformed payload still gets a 202 here and surfaces as
// an error record downstream.
func (h *APIHandler) IngestTransactionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRecordSize+1))
	if err != nil {
		h.sendError(w, "Failed to read request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}
	if len(raw) == 0 {
		h.sendError(w, "Request body is required", http.StatusBadRequest, "EMPTY_BODY")
		return
	}
	if len(raw) > maxRecordSize {
		h.sendError(w, "Request body too large", http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE")
		return
	}

	select {
	case h.ingest <- raw:
		h.sendJSON(w, IngestResponse{Status: "accepted", Message: "Transaction queued for evaluation"}, http.StatusAccepted)
	case <-ctx.Done():
		h.sendError(w, "Pipeline is not accepting records", http.StatusServiceUnavailable, "INGEST_TIMEOUT")
	}
}

func (h *APIHandler) GetAlertsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			h.sendError(w, "limit must be a positive integer", http.StatusBadRequest, "INVALID_LIMIT")
			return
		}
		limit = parsed
	}

	alerts, err := h.store.RecentAlerts(ctx, limit)
	if err != nil {
		h.sendError(w, "Failed to load alerts", http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	h.sendJSON(w, alerts, http.StatusOK)
}

func (h *APIHandler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.sendError(w, "Failed to load stats", http.StatusInternalServerError, "SERVER_ERROR")
		return
	}

	byType := make(map[string]int64, len(stats.ByFraudType))
	for fraudType, count := range stats.ByFraudType {
		byType[string(fraudType)] = count
	}

	h.sendJSON(w, StatsResponse{
		Alerts:      stats.Alerts,
		Errors:      stats.Errors,
		ByFraudType: byType,
	}, http.StatusOK)
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code})

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/transactions", h.IngestTransactionHandler)
	mux.HandleFunc("GET /api/v1/alerts", h.GetAlertsHandler)
	mux.HandleFunc("GET /api/v1/stats", h.GetStatsHandler)
	mux.HandleFunc("GET /api/health", h.HealthCheckHandler)
}
