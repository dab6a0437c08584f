// Package policy implements the team policies enforced by the hooks: the
// forbidden --no-verify commit detector, the branch-safety guard and the
// advisory branch status report.
package policy

import (
	"context"
	"regexp"
	"strings"

	"github.com/codysoyland/policyhooks/pkg/hook"
)

// NoVerifyName identifies the --no-verify policy in results and logs.
const NoVerifyName = "no-verify"

// DefaultShellTool is the tool name the assistant uses for shell execution.
const DefaultShellTool = "Bash"

// NoVerifyMessage is returned whenever a commit tries to skip hooks.
const NoVerifyMessage = `BLOCKED: git commit --no-verify is forbidden by team policy.

Every commit must pass the pre-commit hooks. They enforce formatting, linting
and tests so that quality problems are caught before they reach the branch.

If a genuine emergency requires bypassing the hooks:
  1. Open a GitHub issue explaining the situation
  2. Get explicit team approval in the issue comments
  3. Run the commit yourself from a terminal, outside the assistant
  4. Create a follow-up story to fix the underlying problem

Alternatives:
  - Fix the failing checks instead of bypassing them
  - Stage only the files that pass the checks
  - Make a smaller, focused commit that passes the hooks`

// NoVerifyOverrideMessage prefixes NoVerifyMessage when the forbidden command
// arrived through the environment override rather than the command itself.
const NoVerifyOverrideMessage = "BLOCKED: --no-verify detected in the GIT_COMMAND environment override."

// shellWord matches one character of a shell word, or a whole quoted segment.
const shellWord = `(?:[^\s"']|"[^"]*"|'[^']*')`

var (
	// git, optional global options (-C dir, -c key=value, --no-pager), then commit.
	// Option words may contain quoted segments: -C "my repo", -c user.name="a b".
	gitCommitPattern = regexp.MustCompile(`\bgit(?:\s+-{1,2}` + shellWord + `+(?:\s+(?:[^\s"'-]|"[^"]*"|'[^']*')` + shellWord + `*)?)*\s+commit(?:$|[^\w-])`)
	noVerifyPattern  = regexp.MustCompile(`--no-verify\b`)
	commitPattern    = regexp.MustCompile(`\bcommit(?:$|[^\w-])`)
)

// Normalize collapses runs of whitespace to single spaces and lowercases.
func Normalize(command string) string {
	return strings.ToLower(strings.Join(strings.Fields(command), " "))
}

// IsGitCommitNoVerify reports whether command runs git commit with --no-verify,
// regardless of flag position, spacing or case.
func IsGitCommitNoVerify(command string) bool {
	normalized := Normalize(command)
	if normalized == "" {
		return false
	}
	return gitCommitPattern.MatchString(normalized) && noVerifyPattern.MatchString(normalized)
}

// OverrideRequestsNoVerify reports whether a raw override string mentions both
// commit and --no-verify as whole words. It does not require "git".
func OverrideRequestsNoVerify(override string) bool {
	normalized := Normalize(override)
	if normalized == "" {
		return false
	}
	return commitPattern.MatchString(normalized) && noVerifyPattern.MatchString(normalized)
}

// NoVerify blocks git commits that bypass hooks
type NoVerify struct {
	shellTools map[string]struct{}
}

var _ hook.Policy = (*NoVerify)(nil)

// NewNoVerify creates the detector. Only tool calls whose name is one of
// shellTools are inspected; with none given, DefaultShellTool is used.
func NewNoVerify(shellTools ...string) *NoVerify {
	tools := make(map[string]struct{})
	for _, t := range shellTools {
		if t = strings.TrimSpace(t); t != "" {
			tools[t] = struct{}{}
		}
	}
	if len(tools) == 0 {
		tools[DefaultShellTool] = struct{}{}
	}
	return &NoVerify{shellTools: tools}
}

// Name returns the policy name
func (n *NoVerify) Name() string {
	return NoVerifyName
}

// IsShellTool reports whether tool names a shell-execution tool.
func (n *NoVerify) IsShellTool(tool string) bool {
	_, ok := n.shellTools[tool]
	return ok
}

// Evaluate checks the command carried by req.
func (n *NoVerify) Evaluate(ctx context.Context, req *hook.Request) hook.Result {
	command := req.Command
	if req.Mode == hook.ModePayload {
		tool, cmd := req.ToolCall()
		if !n.IsShellTool(tool) {
			return hook.Allowed()
		}
		command = cmd
	}

	if IsGitCommitNoVerify(command) {
		return hook.Blocked(NoVerifyName, NoVerifyMessage)
	}
	if OverrideRequestsNoVerify(req.Override) {
		return hook.Blocked(NoVerifyName, NoVerifyOverrideMessage+"\n\n"+NoVerifyMessage)
	}
	return hook.Allowed()
}
