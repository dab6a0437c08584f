// Package wrapper adapts the hook invocation shapes (process arguments and
// environment, or a JSON payload on standard input) onto a single policy
// evaluation, and frames the decision the way each shape expects.
package wrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/codysoyland/policyhooks/pkg/hook"
)

const (
	// MaxPayloadBytes caps the JSON payload read from stdin. Larger payloads
	// are treated as malformed.
	MaxPayloadBytes = 1 << 20 // 1 MiB

	// DefaultEvaluateTimeout bounds a whole evaluation, all external calls included.
	DefaultEvaluateTimeout = 30 * time.Second

	// EnvOverride names the environment variable carrying a raw command override.
	EnvOverride = "GIT_COMMAND"
)

// Exit codes of argument mode.
const (
	ExitAllow = 0
	ExitBlock = 1
)

// Wrapper runs one policy for one invocation
type Wrapper struct {
	Policy          hook.Policy
	Stdout          io.Writer
	Override        string
	Verbose         bool
	EvaluateTimeout time.Duration
}

// WrapperOption is a functional option for configuring Wrapper
type WrapperOption func(*Wrapper)

// WithStdout sets where decisions are written
func WithStdout(w io.Writer) WrapperOption {
	return func(wr *Wrapper) {
		wr.Stdout = w
	}
}

// WithOverride sets the raw command override checked in argument mode
func WithOverride(override string) WrapperOption {
	return func(w *Wrapper) {
		w.Override = override
	}
}

// WithVerbose enables/disables verbose output
func WithVerbose(verbose bool) WrapperOption {
	return func(w *Wrapper) {
		w.Verbose = verbose
	}
}

// WithEvaluateTimeout bounds the whole evaluation
func WithEvaluateTimeout(d time.Duration) WrapperOption {
	return func(w *Wrapper) {
		if d > 0 {
			w.EvaluateTimeout = d
		}
	}
}

// FromEnv returns the options implied by the process environment.
func FromEnv() []WrapperOption {
	var opts []WrapperOption
	if override := os.Getenv(EnvOverride); override != "" {
		opts = append(opts, WithOverride(override))
	}
	return opts
}

// NewWrapper creates a Wrapper with functional options
func NewWrapper(p hook.Policy, opts ...WrapperOption) *Wrapper {
	w := &Wrapper{
		Policy:          p,
		Stdout:          os.Stdout,
		EvaluateTimeout: DefaultEvaluateTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wrapper) logf(format string, args ...any) {
	if w.Verbose {
		log.Printf(format, args...)
	}
}

// evaluate runs the policy under the evaluation deadline.
func (w *Wrapper) evaluate(ctx context.Context, req *hook.Request) hook.Decision {
	if w.Policy == nil {
		return hook.Allow()
	}
	ctx, cancel := context.WithTimeout(ctx, w.EvaluateTimeout)
	defer cancel()

	result := w.Policy.Evaluate(ctx, req)
	switch result.Verdict {
	case hook.VerdictBlock:
		w.logf("✗ %s: blocked", w.Policy.Name())
	case hook.VerdictUnknown:
		w.logf("? %s: no context (%s), allowing", w.Policy.Name(), result.Message)
	default:
		w.logf("✓ %s: allowed", w.Policy.Name())
	}
	return result.Decision()
}

// RunArgs evaluates the command given as process arguments and returns the
// process exit code: ExitAllow, or ExitBlock after printing the message.
func (w *Wrapper) RunArgs(ctx context.Context, args []string) int {
	req := &hook.Request{
		Mode:     hook.ModeArgs,
		Command:  strings.Join(args, " "),
		Override: w.Override,
	}
	w.logf("Wrapper: evaluating %q", req.Command)

	decision := w.evaluate(ctx, req)
	if !decision.Block {
		return ExitAllow
	}
	if _, err := fmt.Fprintln(w.Stdout, decision.Message); err != nil {
		w.logf("Failed to write decision: %v", err)
	}
	return ExitBlock
}

// RunPayload reads a JSON request from r and writes the JSON decision.
// Unreadable or malformed input is allowed. The only error is a failure to
// write the decision.
func (w *Wrapper) RunPayload(ctx context.Context, r io.Reader) error {
	decision := hook.Allow()

	req, err := readRequest(r)
	if err != nil {
		w.logf("Request read/parse error, allowing: %v", err)
	} else {
		decision = w.evaluate(ctx, req)
	}

	return writeDecision(w.Stdout, decision)
}

// readRequest reads and unmarshals a bounded JSON request
func readRequest(r io.Reader) (*hook.Request, error) {
	if r == nil {
		return nil, fmt.Errorf("no input")
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	if len(data) > MaxPayloadBytes {
		return nil, fmt.Errorf("request exceeds %d bytes", MaxPayloadBytes)
	}
	return hook.ParseRequest(data)
}

// writeDecision marshals and writes a JSON decision as a single line
func writeDecision(w io.Writer, d hook.Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write decision: %w", err)
	}
	return nil
}
