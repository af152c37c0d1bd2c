package rule

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// ProbabilityVariable is the name under which rules see the risk probability (0..100).
const ProbabilityVariable = "probability"

// NewProbabilityEnv returns the CEL environment rules are compiled against.
func NewProbabilityEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(ProbabilityVariable, cel.DoubleType),
	)
}

// Rule maps a probability range to a message.
// The When field contains a CEL expression that defines the trigger condition.
// The Then field contains the message returned when the condition is true.
// The CEL program is compiled when Init is called and used during evaluation.
type Rule struct {
	// When — CEL expression over probability, must return a boolean value.
	When string `yaml:"when"`
	// Then — message for probabilities matching When.
	Then string `yaml:"then"`
	// program — compiled CEL program used to execute the condition.
	program cel.Program
}

// Init compiles the string expression in the When field into an executable CEL program
// using the provided env environment.
// In case of syntax or semantic errors, or a non-boolean expression, returns the corresponding error.
func (r *Rule) Init(env *cel.Env) error {
	ast, iss := env.Parse(r.When)
	if iss.Err() != nil {
		return iss.Err()
	}

	checked, iss := env.Check(ast)
	if iss.Err() != nil {
		return iss.Err()
	}

	if !checked.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("rule '%s' must return bool, got %s", r.When, checked.OutputType())
	}

	var err error
	r.program, err = env.Program(checked)
	if err != nil {
		return err
	}

	return nil
}

// Eval reports whether the rule matches the probability.
func (r *Rule) Eval(probability float64) (bool, error) {
	result, _, err := r.program.Eval(map[string]any{ProbabilityVariable: probability})
	if err != nil {
		return false, err
	}

	return result.Value() == true, nil
}
