package score

import (
	"context"

	"diabetes/internal/score/rule"
)

// Transformer normalizes raw feature rows.
type Transformer interface {
	Transform(rows [][]float64) ([][]float64, error)
}

// Predictor turns normalized rows into model outputs, one row per input row.
type Predictor interface {
	Predict(ctx context.Context, rows [][]float64) ([][]float64, error)
}

// Classifier maps a probability percentage to a message bucket.
type Classifier interface {
	Classify(probability float64) rule.Bucket
}

// Scorer assesses a decoded request payload.
type Scorer interface {
	Score(ctx context.Context, payload map[string]any) (*Assessment, error)
}

// Assessment is the result of scoring one feature vector.
type Assessment struct {
	Message       string      `json:"message"`
	Probability   float64     `json:"probability"`
	Prediction    int         `json:"prediction"`
	Probabilities [][]float64 `json:"probabilities"`
	// Bucket — index of the message bucket, rule.InvalidBucket for the fallback message
	Bucket int `json:"-"`
}
