package score

import (
	"context"
	"fmt"
	"math"
)

// PositiveThreshold is the model output above which the prediction is positive.
const PositiveThreshold = 0.5

// RiskScorer turns a patient payload into a diabetes risk assessment:
// features are extracted, normalized by the scaler, scored by the model and
// the resulting probability is mapped to a message bucket.
//
// RiskScorer holds no mutable state; it is safe for concurrent use as long as
// the scaler, model and classifier are (the loaded artifacts are read-only).
type RiskScorer struct {
	scaler     Transformer
	model      Predictor
	classifier Classifier
}

// Score assesses one payload.
//
// Returns *ValidationError when a required field is absent and *ScoringError
// when conversion, scaling or prediction fails, including context cancellation.
func (rs *RiskScorer) Score(ctx context.Context, payload map[string]any) (*Assessment, error) {
	row, err := ExtractFeatures(payload)
	if err != nil {
		return nil, err
	}

	scaled, err := rs.scaler.Transform([][]float64{row})
	if err != nil {
		return nil, NewScoringError(err)
	}

	outputs, err := rs.model.Predict(ctx, scaled)
	if err != nil {
		return nil, NewScoringError(err)
	}
	if len(outputs) != 1 || len(outputs[0]) != 1 {
		return nil, NewScoringError(fmt.Errorf("model returned %s output, expected a single probability", shape(outputs)))
	}

	output := outputs[0][0]
	if math.IsNaN(output) || math.IsInf(output, 0) {
		return nil, NewScoringError(fmt.Errorf("model returned a non-finite value %v", output))
	}
	probability := output * 100
	bucket := rs.classifier.Classify(probability)

	prediction := 0
	if output > PositiveThreshold {
		prediction = 1
	}

	return &Assessment{
		Message:       bucket.Message,
		Probability:   probability,
		Prediction:    prediction,
		Probabilities: outputs,
		Bucket:        bucket.Index,
	}, nil
}

func shape(rows [][]float64) string {
	if len(rows) == 0 {
		return "(0,)"
	}
	return fmt.Sprintf("(%d, %d)", len(rows), len(rows[0]))
}

// NewRiskScorer creates a scorer over the loaded scaler, model and message classifier.
func NewRiskScorer(scaler Transformer, model Predictor, classifier Classifier) *RiskScorer {
	return &RiskScorer{
		scaler:     scaler,
		model:      model,
		classifier: classifier,
	}
}
