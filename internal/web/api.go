package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"energy-predictor/internal/features"
	"energy-predictor/internal/ml"
	"energy-predictor/internal/storage"

	"github.com/rs/zerolog/log"
)

// PredictRequest is the body of POST /api/v1/predict and of each websocket
// message. An empty Model selects the default model. Omitted input categories
// take the form defaults (see features.RawInput).
type PredictRequest struct {
	Model string            `json:"model"`
	Input features.RawInput `json:"input"`
}

// ErrorResponse is returned with every non-2xx API status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FeaturesResponse lists derived features in schema order.
type FeaturesResponse struct {
	Features []features.Named `json:"features"`
}

// ModelsResponse describes the model catalog.
type ModelsResponse struct {
	Default string         `json:"default"`
	Models  []ml.ModelInfo `json:"models"`
}

// HistoryResponse lists predictions, newest first.
type HistoryResponse struct {
	Predictions []storage.PredictionRecord `json:"predictions"`
}

// HealthResponse is served at /health.
type HealthResponse struct {
	Status      string    `json:"status"`
	Models      int       `json:"models"`
	Predictions *int      `json:"predictions,omitempty"` // stored records, when a store is configured
	Timestamp   time.Time `json:"timestamp"`
}

// statusFor maps a predictor error to an HTTP status.
func statusFor(err error) int {
	switch {
	case ml.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) predict(ctx context.Context, req PredictRequest) (ml.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.predictTimeout)
	defer cancel()
	return s.predictor.Predict(ctx, req.Model, req.Input)
}

func (s *Server) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.predict(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAPIFeatures(w http.ResponseWriter, r *http.Request) {
	var raw features.RawInput
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	vec, err := features.Derive(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, FeaturesResponse{Features: vec.Ordered()})
}

func (s *Server) handleAPIModels(w http.ResponseWriter, r *http.Request) {
	models := s.predictor.Models()
	writeJSON(w, http.StatusOK, ModelsResponse{
		Default: models.DefaultName(),
		Models:  models.ListModels(),
	})
}

// historyQuery is the parsed query string of GET /api/v1/history.
type historyQuery struct {
	limit    int
	model    string
	since    time.Time
	until    time.Time
	filtered bool
}

func (s *Server) parseHistoryQuery(r *http.Request) (historyQuery, error) {
	q := r.URL.Query()
	hq := historyQuery{limit: s.historyLimit, model: q.Get("model")}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return hq, errors.New("limit must be a positive integer")
		}
		if n < hq.limit {
			hq.limit = n
		}
	}

	hq.since = time.Unix(0, 0).UTC()
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return hq, fmt.Errorf("since must be an RFC 3339 timestamp: %w", err)
		}
		hq.since = t
	}
	hq.until = time.Now().UTC()
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return hq, fmt.Errorf("until must be an RFC 3339 timestamp: %w", err)
		}
		hq.until = t
	}
	if hq.until.Before(hq.since) {
		return hq, errors.New("until is before since")
	}

	hq.filtered = hq.model != "" || q.Has("since") || q.Has("until")
	return hq, nil
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	hq, err := s.parseHistoryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := HistoryResponse{Predictions: []storage.PredictionRecord{}}
	if s.history == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	var records []storage.PredictionRecord
	if hq.filtered {
		records, err = s.history.GetPredictions(hq.model, hq.since, hq.until)
		// GetPredictions walks oldest first; keep the newest limit records.
		slices.Reverse(records)
		if len(records) > hq.limit {
			records = records[:hq.limit]
		}
	} else {
		records, err = s.history.Recent(hq.limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if records != nil {
		resp.Predictions = records
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Models:    len(s.predictor.Models().Names()),
		Timestamp: time.Now().UTC(),
	}
	if s.history != nil {
		if n, err := s.history.Count(); err == nil {
			resp.Predictions = &n
		} else {
			log.Warn().Err(err).Msg("Failed to count stored predictions")
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
