package hook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode represents the invocation shape a request arrived in
type Mode string

const (
	ModeArgs    Mode = "args"    // Command passed as process arguments / environment
	ModePayload Mode = "payload" // JSON document on standard input
)

// Tool describes a tool invocation proposed by the assistant
type Tool struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Request represents a complete request to be evaluated by a policy.
// Only the fields relevant to the invocation mode are populated.
type Request struct {
	Mode Mode `json:"-"`

	// Argument mode fields
	Command  string `json:"command,omitempty"`
	Override string `json:"-"` // Raw command override from the environment

	// Payload mode: tool descriptor, in either of the two accepted shapes
	Tool      *Tool          `json:"tool,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolInput map[string]any `json:"tool_input,omitempty"`

	// Payload mode: free-text prompt
	UserPrompt string `json:"user_prompt,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
}

// ParseRequest decodes a JSON payload into a Request in payload mode.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	req.Mode = ModePayload
	return &req, nil
}

// ToolCall returns the tool name and its command parameter. The nested
// {"tool": {...}} shape wins when both shapes are present.
func (r *Request) ToolCall() (name, command string) {
	if r.Tool != nil {
		return r.Tool.Name, stringParam(r.Tool.Parameters, "command")
	}
	return r.ToolName, stringParam(r.ToolInput, "command")
}

// PromptText returns the free-text prompt of the request, if any.
func (r *Request) PromptText() string {
	if r.UserPrompt != "" {
		return r.UserPrompt
	}
	return r.Prompt
}

func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	s, _ := params[key].(string)
	return s
}

// Decision is the serialized outcome of a hook invocation
type Decision struct {
	Block   bool   `json:"block"`
	Message string `json:"message,omitempty"`
}

// Allow returns a decision that lets the action proceed.
func Allow() Decision {
	return Decision{}
}

// Verdict is the typed outcome of a policy evaluation
type Verdict int

const (
	VerdictUnknown Verdict = iota // Context could not be determined
	VerdictAllow
	VerdictBlock
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Result is what a Policy reports for a single request
type Result struct {
	Verdict Verdict
	Policy  string
	// Message explains a block, or records why the verdict is unknown.
	Message string
}

// Allowed creates a result that lets the action proceed.
func Allowed() Result {
	return Result{Verdict: VerdictAllow}
}

// Blocked creates a result that rejects the action.
func Blocked(policy, message string) Result {
	return Result{Verdict: VerdictBlock, Policy: policy, Message: message}
}

// Unknown creates a result for a request whose context could not be established.
func Unknown(policy, reason string) Result {
	return Result{Verdict: VerdictUnknown, Policy: policy, Message: reason}
}

// Decision maps the result onto the wire decision. Unknown maps to allow.
func (r Result) Decision() Decision {
	if r.Verdict != VerdictBlock {
		return Allow()
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = fmt.Sprintf("Blocked by policy %q.", r.Policy)
	}
	return Decision{Block: true, Message: msg}
}
