package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"diabetes/internal/metrics"
	"diabetes/internal/score"
)

// maxBodyBytes limits the size of a prediction request body.
const maxBodyBytes = 1 << 20

// ApiV1Router manages the prediction routes.
type ApiV1Router struct {
	// scorer — assesses decoded request payloads
	scorer score.Scorer
	// metrics — prediction and request collectors, also served on /metrics
	metrics *metrics.Metrics
	// requestTimeout — deadline of a single scoring call
	requestTimeout time.Duration
}

// Mux returns a configured *http.ServeMux with registered handlers.
// Registers the following routes:
// - POST /predictions — scores a patient payload
// - GET /predictions — liveness probe
// - GET /metrics — Prometheus metrics
func (ar *ApiV1Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predictions", ar.predictionHandler)
	mux.HandleFunc("GET /predictions", ar.healthHandler)
	mux.Handle("GET /metrics", ar.metrics.Handler())
	return mux
}

// Handler returns the mux wrapped into request ID and access log middleware.
func (ar *ApiV1Router) Handler() http.Handler {
	return withRequestID(withAccessLog(ar.metrics, ar.Mux()))
}

// predictionHandler handles POST requests with patient attributes.
// Missing fields are answered with 400, any other failure with 500 carrying the error text.
func (ar *ApiV1Router) predictionHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := RequestID(r.Context())
	defer r.Body.Close()

	payload, err := decodePayload(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Warn("Unable to decode prediction request body", "request_id", requestID, "error", err)
		ar.metrics.ObservePrediction(metrics.OutcomeError, 0, time.Since(start))
		writeEnvelope(w, errorEnvelope(http.StatusInternalServerError, err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ar.requestTimeout)
	defer cancel()

	assessment, err := ar.scorer.Score(ctx, payload)
	if err != nil {
		var validationErr *score.ValidationError
		if errors.As(err, &validationErr) {
			slog.Warn("Missing required fields", "request_id", requestID, "missing", validationErr.Detail())
			ar.metrics.ObservePrediction(metrics.OutcomeInvalid, 0, time.Since(start))
			writeEnvelope(w, errorEnvelope(http.StatusBadRequest, score.MissingFieldsMessage))
			return
		}

		slog.Error("Prediction failed", "request_id", requestID, "error", err)
		ar.metrics.ObservePrediction(metrics.OutcomeError, 0, time.Since(start))
		writeEnvelope(w, errorEnvelope(http.StatusInternalServerError, err.Error()))
		return
	}

	slog.Info("Prediction made",
		"request_id", requestID,
		"probability", assessment.Probability,
		"prediction", assessment.Prediction,
		"bucket", assessment.Bucket,
	)
	ar.metrics.ObservePrediction(metrics.OutcomeSuccess, assessment.Bucket, time.Since(start))
	writeEnvelope(w, successEnvelope(assessment))
}

// healthHandler answers the liveness probe. It never touches the model.
func (ar *ApiV1Router) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

var (
	errEmptyBody    = errors.New("request body must be a JSON object")
	errTrailingData = errors.New("invalid character after top-level value in request body")
)

// decodePayload reads exactly one JSON value from the body. Numbers are kept as json.Number.
// Arrays and strings decode to an empty payload and fail on missing fields;
// null, numbers and booleans have no fields to look up and are rejected.
func decodePayload(body io.Reader) (map[string]any, error) {
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyBody
		}
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case []any, string:
		return nil, nil
	default:
		return nil, fmt.Errorf("request body must be a JSON object, got %s", jsonKind(value))
	}
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}

// NewApiV1Router creates a new API v1 router.
// Parameters:
// - scorer: risk scorer over the loaded artifacts
// - m: metrics collectors
// - requestTimeout: deadline of a single scoring call
func NewApiV1Router(scorer score.Scorer, m *metrics.Metrics, requestTimeout time.Duration) *ApiV1Router {
	return &ApiV1Router{
		scorer:         scorer,
		metrics:        m,
		requestTimeout: requestTimeout,
	}
}
