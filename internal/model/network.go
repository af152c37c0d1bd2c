package model

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Activation functions supported by dense layers.
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
	ActivationTanh    = "tanh"
	ActivationSoftmax = "softmax"
)

// Layer is a fully connected layer: activation(x · Weights + Bias).
type Layer struct {
	// Activation — name of the activation function, linear when empty
	Activation string `yaml:"activation"`
	// Weights — kernel in [inputs][units] layout
	Weights [][]float64 `yaml:"weights"`
	// Bias — one value per unit
	Bias []float64 `yaml:"bias"`
}

// Inputs returns the width of the layer input.
func (l *Layer) Inputs() int {
	return len(l.Weights)
}

// Units returns the width of the layer output.
func (l *Layer) Units() int {
	return len(l.Bias)
}

func (l *Layer) validate() error {
	switch l.Activation {
	case "", ActivationLinear, ActivationReLU, ActivationSigmoid, ActivationTanh, ActivationSoftmax:
	default:
		return fmt.Errorf("unsupported activation '%s'", l.Activation)
	}

	if l.Inputs() == 0 || l.Units() == 0 {
		return errors.New("weights and bias must be specified")
	}
	for i, row := range l.Weights {
		if len(row) != l.Units() {
			return fmt.Errorf("weights[%d] has %d units, bias has %d", i, len(row), l.Units())
		}
	}
	return nil
}

func (l *Layer) forward(x []float64) []float64 {
	out := make([]float64, l.Units())
	for u := range out {
		sum := l.Bias[u]
		for i, v := range x {
			sum += v * l.Weights[i][u]
		}
		out[u] = sum
	}
	activate(l.Activation, out)
	return out
}

func activate(name string, v []float64) {
	switch name {
	case ActivationReLU:
		for i := range v {
			v[i] = math.Max(0, v[i])
		}
	case ActivationSigmoid:
		for i := range v {
			v[i] = 1 / (1 + math.Exp(-v[i]))
		}
	case ActivationTanh:
		for i := range v {
			v[i] = math.Tanh(v[i])
		}
	case ActivationSoftmax:
		peak := math.Inf(-1)
		for _, x := range v {
			peak = math.Max(peak, x)
		}
		var total float64
		for i := range v {
			v[i] = math.Exp(v[i] - peak)
			total += v[i]
		}
		for i := range v {
			v[i] /= total
		}
	}
}

// Network is a sequential stack of dense layers, the exported form of the
// pre-trained classifier. It is read-only after loading.
type Network struct {
	Layers []Layer `yaml:"layers"`
}

// Features returns the input width of the network.
func (n *Network) Features() int {
	return n.Layers[0].Inputs()
}

// Outputs returns the output width of the network.
func (n *Network) Outputs() int {
	return n.Layers[len(n.Layers)-1].Units()
}

func (n *Network) validate() error {
	if len(n.Layers) == 0 {
		return errors.New("model: at least one layer must be specified")
	}
	for i := range n.Layers {
		if err := n.Layers[i].validate(); err != nil {
			return fmt.Errorf("model: layer %d: %w", i, err)
		}
		if i > 0 && n.Layers[i].Inputs() != n.Layers[i-1].Units() {
			return fmt.Errorf("model: layer %d expects %d inputs, layer %d has %d units",
				i, n.Layers[i].Inputs(), i-1, n.Layers[i-1].Units())
		}
	}
	return nil
}

// Predict runs every row through the network and returns one output row per input row.
// The context is checked between layers.
func (n *Network) Predict(ctx context.Context, rows [][]float64) ([][]float64, error) {
	result := make([][]float64, len(rows))
	for r, row := range rows {
		if len(row) != n.Features() {
			return nil, fmt.Errorf("input has incompatible shape: expected %d features, found %d",
				n.Features(), len(row))
		}

		x := row
		for i := range n.Layers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			x = n.Layers[i].forward(x)
		}
		result[r] = x
	}
	return result, nil
}
