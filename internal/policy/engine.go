// Package policy gates tool dispatch through an OPA rego policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision values returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine evaluates the dispatch policy for each requested operation.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the given rego policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.rental_policy.decision"),
		rego.Module("rental_policy.rego", policyContent),
	)
	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}
	return &Engine{query: query}, nil
}

// Evaluate checks one operation dispatch. Input carries the operation
// name and its parsed arguments. Returns the decision and an optional
// reason.
func (e *Engine) Evaluate(ctx context.Context, input any) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, "", nil
	}

	switch v := results[0].Expressions[0].Value.(type) {
	case string:
		return v, "", nil
	case map[string]any:
		decision, _ := v["decision"].(string)
		reason, _ := v["reason"].(string)
		if decision == "" {
			decision = DecisionAllow
		}
		return decision, reason, nil
	}
	return DecisionAllow, "", nil
}

// DefaultPolicy allows every registered operation and blocks oversized
// reservations as a business guardrail.
const DefaultPolicy = `
package rental_policy

import rego.v1

default decision := {"decision": "allow", "reason": ""}

decision := {"decision": "block", "reason": "quantity exceeds the reservation limit of 10 units"} if {
	input.operation == "create_reservation"
	input.args.quantity > 10
}
`
