package rule

import (
	_ "embed"
	"errors"
	"log/slog"
	"math"
	"os"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultMessages []byte

// InvalidBucket is the bucket index of probabilities no rule matches.
const InvalidBucket = 0

// Bucket is the outcome of classifying a probability.
type Bucket struct {
	// Index — 1-based position of the matching rule, InvalidBucket for the fallback
	Index int
	// Message — human readable risk message
	Message string
}

// Messages is an ordered set of rules; the first matching rule selects the message.
// It is immutable after loading and safe for concurrent use.
type Messages struct {
	Fallback string `yaml:"fallback"`
	Rules    []Rule `yaml:"rules"`
}

// Classify returns the bucket of the probability.
// Rules failing at runtime are logged and skipped. NaN matches no rule.
func (m *Messages) Classify(probability float64) Bucket {
	if math.IsNaN(probability) {
		return Bucket{Index: InvalidBucket, Message: m.Fallback}
	}

	for i := range m.Rules {
		matched, err := m.Rules[i].Eval(probability)
		if err != nil {
			slog.Error("rule eval", "error", err, "rule", m.Rules[i].When, "probability", probability)
			continue
		}
		if matched {
			return Bucket{Index: i + 1, Message: m.Rules[i].Then}
		}
	}
	return Bucket{Index: InvalidBucket, Message: m.Fallback}
}

// Parse decodes a YAML rules document and compiles every rule.
//
// The document has the form:
//
//	fallback: "..."
//	rules:
//	  - when: probability <= 10.0
//	    then: "..."
func Parse(content []byte, envProvider func() (*cel.Env, error)) (*Messages, error) {
	messages := Messages{}
	if err := yaml.Unmarshal(content, &messages); err != nil {
		return nil, err
	}

	if len(messages.Rules) == 0 {
		return nil, errors.New("messages: at least one rule must be specified")
	}

	for i := range messages.Rules {
		env, err := envProvider()
		if err != nil {
			return nil, err
		}

		err = messages.Rules[i].Init(env)
		if err != nil {
			return nil, err
		}
	}
	return &messages, nil
}

// LoadFromFile reads rules from file, or the built-in table when file is empty.
func LoadFromFile(file string, envProvider func() (*cel.Env, error)) (*Messages, error) {
	if file == "" {
		return Parse(defaultMessages, envProvider)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return Parse(content, envProvider)
}

// Default returns the built-in Indonesian message table.
func Default() (*Messages, error) {
	return Parse(defaultMessages, NewProbabilityEnv)
}
