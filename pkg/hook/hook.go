// Package hook provides the request and decision types shared by every policy
// hook, together with the Policy interface the evaluators implement.
package hook

import (
	"context"
)

// Policy defines the base interface with common functionality
type Policy interface {
	// Name returns a human-readable name for this policy
	Name() string

	// Evaluate inspects a single request and reports a verdict.
	// Implementations never return an error: anything they cannot decide
	// is reported as VerdictUnknown.
	Evaluate(ctx context.Context, req *Request) Result
}

// Decide evaluates req against p and maps the result onto a decision.
func Decide(ctx context.Context, p Policy, req *Request) Decision {
	if p == nil || req == nil {
		return Allow()
	}
	return p.Evaluate(ctx, req).Decision()
}
