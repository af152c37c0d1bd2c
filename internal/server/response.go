package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the uniform response body of the prediction endpoint.
// ResponseCode mirrors the HTTP status; Data is null on every failure.
type Envelope struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ResponseCode int    `json:"response_code"`
	Data         any    `json:"data"`
}

// PredictionSuccessMessage is the envelope message of a successful prediction.
const PredictionSuccessMessage = "Prediction made successfully"

// HealthResponse is the body of the liveness probe.
type HealthResponse struct {
	Status string `json:"status"`
}

func successEnvelope(data any) Envelope {
	return Envelope{
		Success:      true,
		Message:      PredictionSuccessMessage,
		ResponseCode: http.StatusOK,
		Data:         data,
	}
}

func errorEnvelope(status int, message string) Envelope {
	return Envelope{
		Success:      false,
		Message:      message,
		ResponseCode: status,
		Data:         nil,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("Unable to write response", "error", err)
	}
}

func writeEnvelope(w http.ResponseWriter, envelope Envelope) {
	writeJSON(w, envelope.ResponseCode, envelope)
}
