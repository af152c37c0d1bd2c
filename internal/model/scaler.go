package model

import (
	"errors"
	"fmt"
)

const (
	ScalerTypeStandard = "standard"
	ScalerTypeMinMax   = "minmax"
)

// Scaler is a fixed per-feature linear transform applied to raw features before scoring.
// Standard: (x - mean) / scale. MinMax: x*scale + min.
// A Scaler is never mutated after loading and can be shared between goroutines.
type Scaler struct {
	// Type — standard or minmax
	Type string `yaml:"type"`
	// Mean — per feature offset of a standard scaler
	Mean []float64 `yaml:"mean"`
	// Min — per feature offset of a minmax scaler
	Min []float64 `yaml:"min"`
	// Scale — per feature factor (divisor for standard, multiplier for minmax)
	Scale []float64 `yaml:"scale"`
}

// Features returns the number of input features the scaler was fitted on.
func (s *Scaler) Features() int {
	return len(s.Scale)
}

func (s *Scaler) name() string {
	if s.Type == ScalerTypeMinMax {
		return "MinMaxScaler"
	}
	return "StandardScaler"
}

func (s *Scaler) validate() error {
	var offsets []float64
	switch s.Type {
	case ScalerTypeStandard:
		offsets = s.Mean
		for i, v := range s.Scale {
			if v == 0 {
				return fmt.Errorf("scaler: scale[%d] is zero", i)
			}
		}
	case ScalerTypeMinMax:
		offsets = s.Min
	default:
		return fmt.Errorf("scaler: unsupported type '%s'", s.Type)
	}

	if len(s.Scale) == 0 {
		return errors.New("scaler: scale must be specified")
	}
	if len(offsets) != len(s.Scale) {
		return fmt.Errorf("scaler: %d offsets for %d scale values", len(offsets), len(s.Scale))
	}
	return nil
}

// Transform scales every row and returns new rows; the input is left untouched.
func (s *Scaler) Transform(rows [][]float64) ([][]float64, error) {
	result := make([][]float64, len(rows))
	for r, row := range rows {
		if len(row) != s.Features() {
			return nil, fmt.Errorf("X has %d features, but %s is expecting %d features as input",
				len(row), s.name(), s.Features())
		}

		scaled := make([]float64, len(row))
		for i, x := range row {
			if s.Type == ScalerTypeMinMax {
				scaled[i] = x*s.Scale[i] + s.Min[i]
			} else {
				scaled[i] = (x - s.Mean[i]) / s.Scale[i]
			}
		}
		result[r] = scaled
	}
	return result, nil
}
