package vcs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/codysoyland/policyhooks/pkg/executor"
)

// Git answers Repository and StatusReader queries by shelling out to the git
// and gh command-line tools.
type Git struct {
	runner  executor.Runner
	git     string
	gh      string
	verbose bool
}

// GitOption is a functional option for configuring Git
type GitOption func(*Git)

// WithGitCommand overrides the git binary
func WithGitCommand(name string) GitOption {
	return func(g *Git) {
		if name != "" {
			g.git = name
		}
	}
}

// WithGHCommand overrides the GitHub CLI binary
func WithGHCommand(name string) GitOption {
	return func(g *Git) {
		if name != "" {
			g.gh = name
		}
	}
}

// WithVerbose enables/disables verbose output
func WithVerbose(verbose bool) GitOption {
	return func(g *Git) {
		g.verbose = verbose
	}
}

// NewGit creates a Git collaborator that runs commands through runner.
func NewGit(runner executor.Runner, opts ...GitOption) *Git {
	g := &Git{
		runner: runner,
		git:    "git",
		gh:     "gh",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var (
	_ Repository   = (*Git)(nil)
	_ StatusReader = (*Git)(nil)
)

func (g *Git) logf(format string, args ...any) {
	if g.verbose {
		log.Printf(format, args...)
	}
}

// CurrentBranch returns the checked-out branch. Detached HEAD, a missing
// repository and tool failures all report no information.
func (g *Git) CurrentBranch(ctx context.Context) (string, bool) {
	out, err := g.runner.Run(ctx, g.git, "branch", "--show-current")
	if err != nil {
		g.logf("current branch unavailable: %v", err)
		return "", false
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		g.logf("current branch unavailable: detached HEAD")
		return "", false
	}
	return branch, true
}

// PullRequestState asks gh for the state of pull request id.
func (g *Git) PullRequestState(ctx context.Context, id string) (string, bool) {
	if !ValidPullRequest(id) {
		g.logf("pull request state unavailable: %v: %q", ErrInvalidPullRequest, id)
		return "", false
	}
	out, err := g.runner.Run(ctx, g.gh, "pr", "view", id, "--json", "state", "--jq", ".state")
	if err != nil {
		g.logf("pull request state unavailable: %v", err)
		return "", false
	}
	state := strings.ToUpper(strings.TrimSpace(out))
	if state == "" {
		return "", false
	}
	return state, true
}

// IsRepository reports whether git recognizes the working directory.
func (g *Git) IsRepository(ctx context.Context) bool {
	_, err := g.runner.Run(ctx, g.git, "rev-parse", "--git-dir")
	if err != nil {
		g.logf("%v: %v", ErrNotRepository, err)
		return false
	}
	return true
}

// Changes reports staged and unstaged work from porcelain status.
func (g *Git) Changes(ctx context.Context) (Changes, error) {
	out, err := g.runner.Run(ctx, g.git, "status", "--porcelain")
	if err != nil {
		return Changes{}, fmt.Errorf("git status: %w", err)
	}
	return ParsePorcelain(out), nil
}

// Upstream returns the abbreviated name of branch's tracking branch.
func (g *Git) Upstream(ctx context.Context, branch string) (string, error) {
	out, err := g.runner.Run(ctx, g.git, "rev-parse", "--abbrev-ref", branch+"@{upstream}")
	if err != nil {
		var exitErr *executor.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", ErrNoUpstream, branch)
		}
		return "", fmt.Errorf("resolve upstream: %w", err)
	}
	upstream := strings.TrimSpace(out)
	if upstream == "" {
		return "", fmt.Errorf("%w: %s", ErrNoUpstream, branch)
	}
	return upstream, nil
}

// AheadBehind counts commits on each side of local...upstream.
func (g *Git) AheadBehind(ctx context.Context, local, upstream string) (int, int, error) {
	ahead, err := g.countRange(ctx, upstream+".."+local)
	if err != nil {
		return 0, 0, err
	}
	behind, err := g.countRange(ctx, local+".."+upstream)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

func (g *Git) countRange(ctx context.Context, rng string) (int, error) {
	out, err := g.runner.Run(ctx, g.git, "rev-list", "--count", rng)
	if err != nil {
		return 0, fmt.Errorf("git rev-list %s: %w", rng, err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parse rev-list count %q: %w", strings.TrimSpace(out), err)
	}
	return n, nil
}
