package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RequiredFields lists the payload fields in the order the model expects them.
var RequiredFields = []string{
	"gender",
	"age",
	"hypertension",
	"heart_disease",
	"bmi",
	"HbA1c_level",
	"blood_glucose_level",
}

var (
	errNaN      = errors.New("Input X contains NaN")
	errInfinity = errors.New("Input X contains infinity or a value too large for dtype('float64')")
	errSequence = errors.New("setting an array element with a sequence")
)

// ExtractFeatures builds the feature row from the payload.
// Presence of every required field is checked first and reported as *ValidationError;
// extra fields are ignored. Values that are not numbers are converted the way the
// model's numeric pipeline does (booleans to 0/1, numeric strings parsed); anything
// else is reported as *ScoringError.
func ExtractFeatures(payload map[string]any) ([]float64, error) {
	var missing []string
	for _, field := range RequiredFields {
		if _, found := payload[field]; !found {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, NewValidationError(missing)
	}

	row := make([]float64, len(RequiredFields))
	for i, field := range RequiredFields {
		v, err := toFloat(payload[field])
		if err != nil {
			return nil, NewScoringError(err)
		}
		row[i] = v
	}

	for _, v := range row {
		switch {
		case math.IsNaN(v):
			return nil, NewScoringError(errNaN)
		case math.IsInf(v, 0):
			return nil, NewScoringError(errInfinity)
		}
	}

	return row, nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return parseFloat(v.String())
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		return parseFloat(v)
	case []any, map[string]any:
		return 0, errSequence
	default:
		return 0, fmt.Errorf("unsupported feature value of type %T", value)
	}
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v, nil
		}
		return 0, fmt.Errorf("could not convert string to float: '%s'", s)
	}
	return v, nil
}
