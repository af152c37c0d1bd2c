package rule

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/cel-go/cel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Init_Success(t *testing.T) {
	env, err := NewProbabilityEnv()
	require.NoError(t, err)

	rule := &Rule{
		When: "probability > 10.0",
	}

	err = rule.Init(env)
	assert.NoError(t, err)
	assert.NotNil(t, rule.program, "program should be compiled and assigned")
}

func TestRule_Init_ParseError(t *testing.T) {
	env, err := NewProbabilityEnv()
	require.NoError(t, err)

	rule := &Rule{
		When: "probability > ", // invalid syntax
	}

	err = rule.Init(env)
	assert.Error(t, err, "expected parse error for invalid expression")
}

func TestRule_Init_CheckError(t *testing.T) {
	env, err := cel.NewEnv()
	require.NoError(t, err)

	rule := &Rule{
		When: "probability > 10.0", // undeclared variable
	}

	err = rule.Init(env)
	assert.Error(t, err, "expected check error for undeclared variable")
}

func TestRule_Init_NotBool(t *testing.T) {
	env, err := NewProbabilityEnv()
	require.NoError(t, err)

	rule := &Rule{
		When: "probability * 2.0",
	}

	err = rule.Init(env)
	assert.Error(t, err, "expected error for non-boolean expression")
}

func TestRule_Eval(t *testing.T) {
	env, err := NewProbabilityEnv()
	require.NoError(t, err)

	rule := &Rule{
		When: "probability > 20.0 && probability <= 30.0",
		Then: "medium",
	}
	require.NoError(t, rule.Init(env))

	matched, err := rule.Eval(25)
	assert.NoError(t, err)
	assert.True(t, matched)

	matched, err = rule.Eval(20)
	assert.NoError(t, err)
	assert.False(t, matched)
}

func TestDefault_Buckets(t *testing.T) {
	messages, err := Default()
	require.NoError(t, err)
	require.Len(t, messages.Rules, 10)

	tests := []struct {
		name        string
		probability float64
		bucket      int
	}{
		{name: "zero", probability: 0, bucket: 1},
		{name: "first upper bound", probability: 10.0, bucket: 1},
		{name: "just above first bound", probability: 10.0001, bucket: 2},
		{name: "second upper bound", probability: 20.0, bucket: 2},
		{name: "middle", probability: 45.5, bucket: 5},
		{name: "fifty", probability: 50.0, bucket: 5},
		{name: "just above fifty", probability: 50.000001, bucket: 6},
		{name: "ninety", probability: 90.0, bucket: 9},
		{name: "hundred", probability: 100.0, bucket: 10},
		{name: "negative", probability: -5, bucket: 1},
		{name: "above hundred", probability: 100.5, bucket: InvalidBucket},
		{name: "NaN", probability: math.NaN(), bucket: InvalidBucket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket := messages.Classify(tt.probability)
			assert.Equal(t, tt.bucket, bucket.Index)
			if tt.bucket == InvalidBucket {
				assert.Equal(t, "Data tidak valid. Silakan coba lagi.", bucket.Message)
			} else {
				assert.Equal(t, messages.Rules[tt.bucket-1].Then, bucket.Message)
			}
		})
	}
}

func TestDefault_Messages(t *testing.T) {
	messages, err := Default()
	require.NoError(t, err)

	assert.Equal(t,
		"Risiko sangat rendah untuk terkena diabetes. Pola hidup sehat disarankan untuk mempertahankan kondisi ini.",
		messages.Classify(10).Message)
	assert.Equal(t,
		"Risiko rendah. Terus pertahankan gaya hidup sehat, termasuk pola makan dan olahraga teratur.",
		messages.Classify(10.0001).Message)
	assert.Equal(t,
		"Kondisi diabetes sudah sangat serius. Anda perlu segera mendapatkan pengobatan dan perawatan jangka panjang.",
		messages.Classify(100).Message)
}

func TestClassify_IsPure(t *testing.T) {
	messages, err := Default()
	require.NoError(t, err)

	assert.Equal(t, messages.Classify(63.2), messages.Classify(63.2))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.yaml")
	content := `
fallback: invalid
rules:
  - when: probability <= 50.0
    then: low
  - when: probability <= 100.0
    then: high
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	messages, err := LoadFromFile(path, NewProbabilityEnv)
	require.NoError(t, err)

	assert.Equal(t, Bucket{Index: 1, Message: "low"}, messages.Classify(12))
	assert.Equal(t, Bucket{Index: 2, Message: "high"}, messages.Classify(77))
	assert.Equal(t, Bucket{Index: InvalidBucket, Message: "invalid"}, messages.Classify(170))
}

func TestLoadFromFile_EmptyPathUsesDefault(t *testing.T) {
	messages, err := LoadFromFile("", NewProbabilityEnv)
	require.NoError(t, err)
	assert.Len(t, messages.Rules, 10)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"), NewProbabilityEnv)
	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"invalid yaml": "rules: [[[[",
		"no rules":     "fallback: x\nrules: []\n",
		"bad rule":     "rules:\n  - when: unknown > 1\n    then: x\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content), NewProbabilityEnv)
			assert.Error(t, err)
		})
	}
}
