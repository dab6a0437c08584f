package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codysoyland/policyhooks/pkg/hook"
)

func TestIsGitCommitNoVerify(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    bool
	}{
		{name: "flag after message", command: `git commit -m "fix" --no-verify`, want: true},
		{name: "flag before message", command: `git commit --no-verify -m "fix"`, want: true},
		{name: "flag only", command: "git commit --no-verify", want: true},
		{name: "upper case", command: "GIT COMMIT --NO-VERIFY", want: true},
		{name: "tabs and repeated spaces", command: "git\t\tcommit   -am 'x'\t--no-verify", want: true},
		{name: "newline between words", command: "git\ncommit\n--no-verify", want: true},
		{name: "chained after other command", command: "make fmt && git add . && git commit -m wip --no-verify", want: true},
		{name: "nested in shell", command: `bash -c "git commit --no-verify -m x"`, want: true},
		{name: "global option with value", command: "git -C /repo commit --no-verify", want: true},
		{name: "global config option", command: "git -c user.name=bot commit -m x --no-verify", want: true},
		{name: "global flag without value", command: "git --no-pager commit --no-verify", want: true},
		{name: "quoted config value with space", command: `git -c user.name="Release Bot" commit -m x --no-verify`, want: true},
		{name: "quoted directory with space", command: `git -C "my repo" commit --no-verify`, want: true},
		{name: "single quoted directory", command: `git -C 'my repo' commit -m x --no-verify`, want: true},
		{name: "quoted option value", command: `git --git-dir="a b/.git" commit --no-verify`, want: true},
		{name: "quoted directory plain commit", command: `git -C "my repo" commit -m x`, want: false},
		{name: "absolute git path", command: "/usr/bin/git commit --no-verify", want: true},
		{name: "plain commit", command: `git commit -m "fix"`, want: false},
		{name: "no-verify on log", command: "git log --no-verify", want: false},
		{name: "no-verify on push", command: "git push --no-verify", want: false},
		{name: "commit word elsewhere", command: "git log --grep commit --no-verify", want: false},
		{name: "commit-tree is not commit", command: "git commit-tree HEAD^{tree} --no-verify", want: false},
		{name: "no git at all", command: "commit --no-verify", want: false},
		{name: "legit is not git", command: "legit commit --no-verify", want: false},
		{name: "empty", command: "", want: false},
		{name: "whitespace only", command: " \t\n ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGitCommitNoVerify(tt.command))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	commands := []string{
		"git   commit  --no-verify",
		"\tGit\tCommit\n-m  'Msg'",
		"",
		"echo hello",
	}
	for _, c := range commands {
		once := Normalize(c)
		assert.Equal(t, once, Normalize(once), "command %q", c)
		assert.Equal(t, IsGitCommitNoVerify(c), IsGitCommitNoVerify(once), "command %q", c)
	}
	assert.Equal(t, "git commit -m 'msg'", Normalize("\tGit\tCommit\n-m  'Msg'"))
}

func TestOverrideRequestsNoVerify(t *testing.T) {
	assert.True(t, OverrideRequestsNoVerify("git commit --no-verify"))
	assert.True(t, OverrideRequestsNoVerify("commit -m x --no-verify"))
	assert.True(t, OverrideRequestsNoVerify("COMMIT --NO-VERIFY"))
	assert.False(t, OverrideRequestsNoVerify("git push --no-verify"))
	assert.False(t, OverrideRequestsNoVerify("git commit -m x"))
	assert.False(t, OverrideRequestsNoVerify("recommit --no-verify"))
	assert.False(t, OverrideRequestsNoVerify(""))
}

func TestNoVerifyArgsMode(t *testing.T) {
	p := NewNoVerify()
	ctx := context.Background()

	tests := []struct {
		name      string
		req       *hook.Request
		wantBlock bool
		wantMsg   string
	}{
		{
			name:      "forbidden command",
			req:       &hook.Request{Mode: hook.ModeArgs, Command: `git commit -m "fix" --no-verify`},
			wantBlock: true,
			wantMsg:   "git commit --no-verify is forbidden",
		},
		{
			name: "allowed command",
			req:  &hook.Request{Mode: hook.ModeArgs, Command: `git commit -m "fix"`},
		},
		{
			name:      "override alone triggers",
			req:       &hook.Request{Mode: hook.ModeArgs, Override: "commit --no-verify"},
			wantBlock: true,
			wantMsg:   "environment override",
		},
		{
			name:      "override with harmless command",
			req:       &hook.Request{Mode: hook.ModeArgs, Command: "ls", Override: "git commit --no-verify"},
			wantBlock: true,
			wantMsg:   "environment override",
		},
		{
			name: "harmless override",
			req:  &hook.Request{Mode: hook.ModeArgs, Command: "ls", Override: "git status"},
		},
		{
			name: "empty request",
			req:  &hook.Request{Mode: hook.ModeArgs},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Evaluate(ctx, tt.req).Decision()
			assert.Equal(t, tt.wantBlock, d.Block)
			if tt.wantBlock {
				assert.Contains(t, d.Message, tt.wantMsg)
				assert.Contains(t, d.Message, "GitHub issue")
			} else {
				assert.Empty(t, d.Message)
			}
		})
	}
}

func TestNoVerifyPayloadMode(t *testing.T) {
	p := NewNoVerify()
	ctx := context.Background()
	forbidden := "git commit --no-verify -m wip"

	t.Run("shell tool is inspected", func(t *testing.T) {
		req := &hook.Request{
			Mode: hook.ModePayload,
			Tool: &hook.Tool{Name: "Bash", Parameters: map[string]any{"command": forbidden}},
		}
		result := p.Evaluate(ctx, req)
		assert.Equal(t, hook.VerdictBlock, result.Verdict)
		assert.Equal(t, NoVerifyName, result.Policy)
	})

	t.Run("flat tool shape is inspected", func(t *testing.T) {
		req := &hook.Request{
			Mode:      hook.ModePayload,
			ToolName:  "Bash",
			ToolInput: map[string]any{"command": forbidden},
		}
		assert.True(t, p.Evaluate(ctx, req).Decision().Block)
	})

	t.Run("other tools always allowed", func(t *testing.T) {
		for _, tool := range []string{"Edit", "Write", "bash", "BASH", ""} {
			req := &hook.Request{
				Mode: hook.ModePayload,
				Tool: &hook.Tool{Name: tool, Parameters: map[string]any{"command": forbidden}},
			}
			assert.False(t, p.Evaluate(ctx, req).Decision().Block, "tool %q", tool)
		}
	})

	t.Run("missing command", func(t *testing.T) {
		req := &hook.Request{Mode: hook.ModePayload, Tool: &hook.Tool{Name: "Bash"}}
		assert.False(t, p.Evaluate(ctx, req).Decision().Block)
	})

	t.Run("configured shell tools", func(t *testing.T) {
		custom := NewNoVerify("Shell", " ")
		assert.True(t, custom.IsShellTool("Shell"))
		assert.False(t, custom.IsShellTool("Bash"))

		req := &hook.Request{
			Mode: hook.ModePayload,
			Tool: &hook.Tool{Name: "Shell", Parameters: map[string]any{"command": forbidden}},
		}
		assert.True(t, custom.Evaluate(ctx, req).Decision().Block)
	})
}

func TestNoVerifyName(t *testing.T) {
	assert.Equal(t, "no-verify", NewNoVerify().Name())
	assert.True(t, NewNoVerify().IsShellTool(DefaultShellTool))
}
