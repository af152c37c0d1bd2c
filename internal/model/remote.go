package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemotePredictor is a Predictor that sends normalized rows to an external
// model server speaking the TensorFlow Serving REST predict API.
// Uses HTTP requests with context and timeout.
type RemotePredictor struct {
	url    string       // predict endpoint, e.g. http://tf-serving:8501/v1/models/diabetes:predict
	client *http.Client // HTTP client configured with timeout
}

type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// Predict posts the rows as {"instances": rows} and returns the "predictions" field.
//
// In case of network error, invalid status (not 200), or incorrect JSON - returns an error.
func (rp *RemotePredictor) Predict(ctx context.Context, rows [][]float64) ([][]float64, error) {
	requestBody, err := json.Marshal(predictRequest{Instances: rows})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rp.url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := rp.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result predictResponse
	decodeErr := json.Unmarshal(body, &result)
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && result.Error != "" {
			return nil, fmt.Errorf("model server error code=%d: %s", resp.StatusCode, result.Error)
		}
		return nil, fmt.Errorf("model server error code=%d status=%s", resp.StatusCode, resp.Status)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if len(result.Predictions) != len(rows) {
		return nil, fmt.Errorf("model server returned %d predictions for %d rows", len(result.Predictions), len(rows))
	}

	return result.Predictions, nil
}

// NewRemotePredictor creates a predictor for the given predict endpoint.
// Internally uses *http.Client with the specified timeout to manage request duration.
func NewRemotePredictor(url string, timeout time.Duration) *RemotePredictor {
	client := http.Client{
		Timeout: timeout,
	}

	return &RemotePredictor{
		url:    url,
		client: &client,
	}
}
